package imageset

import (
	"path/filepath"
	"strings"
)

// FilterFunc returns true when a file name should be kept as an item.
type FilterFunc func(string) bool

// FilterForExtensions keeps visible files whose extension is in exts.
// An empty list keeps every visible file.
func FilterForExtensions(exts []string) FilterFunc {
	allowed := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}
	return func(name string) bool {
		if name == "" || strings.HasPrefix(name, ".") {
			return false
		}
		if len(allowed) == 0 {
			return true
		}
		_, ok := allowed[strings.ToLower(filepath.Ext(name))]
		return ok
	}
}
