// Package imageset loads the four image categories from directories.
package imageset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/verte-zerg/realpick/internal/model"
	"github.com/verte-zerg/realpick/internal/quizerr"
)

// Set holds the ordered items of every category.
type Set struct {
	items map[model.Category][]model.Item
	n     int
}

// New builds a Set from already ordered sequences. Every category must be present.
func New(items map[model.Category][]model.Item) (*Set, error) {
	n := -1
	copied := make(map[model.Category][]model.Item, len(model.Categories))
	for _, cat := range model.Categories {
		seq, ok := items[cat]
		if !ok {
			return nil, quizerr.Configuration("category %s is not configured", cat)
		}
		copied[cat] = append([]model.Item(nil), seq...)
		if n < 0 || len(seq) < n {
			n = len(seq)
		}
	}
	if n <= 0 {
		return nil, quizerr.Configuration("no valid questions: every category needs at least one image")
	}
	return &Set{items: copied, n: n}, nil
}

// Load lists the directory of every category and sorts its items by path.
func Load(dirs map[model.Category]string, filter FilterFunc) (*Set, error) {
	if filter == nil {
		filter = FilterForExtensions(nil)
	}
	items := make(map[model.Category][]model.Item, len(model.Categories))
	for _, cat := range model.Categories {
		dir, ok := dirs[cat]
		if !ok || dir == "" {
			return nil, quizerr.Configuration("no directory configured for category %s", cat)
		}
		seq, err := loadDir(cat, dir, filter)
		if err != nil {
			return nil, err
		}
		items[cat] = seq
	}
	return New(items)
}

func loadDir(cat model.Category, dir string, filter FilterFunc) ([]model.Item, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, quizerr.Configuration("directory for category %s not found: %s", cat, dir)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, quizerr.Configuration("location for category %s is not a directory: %s", cat, dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	var items []model.Item
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !filter(entry.Name()) {
			continue
		}
		items = append(items, model.Item(filepath.Join(dir, entry.Name())))
	}
	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })
	return items, nil
}

// Len returns the number of valid questions.
func (s *Set) Len() int {
	return s.n
}

// Items returns the full ordered sequence of a category, including items past Len.
func (s *Set) Items(cat model.Category) []model.Item {
	return append([]model.Item(nil), s.items[cat]...)
}

// Item returns the item of a category at question index i.
func (s *Set) Item(cat model.Category, i int) model.Item {
	s.mustIndex(i)
	return s.items[cat][i]
}

// Correct returns the item that counts as the right pick for question i.
func (s *Set) Correct(i int) model.Item {
	return s.Item(model.CorrectCategory, i)
}

// Counts returns the number of loaded items per category.
func (s *Set) Counts() map[model.Category]int {
	out := make(map[model.Category]int, len(s.items))
	for cat, seq := range s.items {
		out[cat] = len(seq)
	}
	return out
}

func (s *Set) mustIndex(i int) {
	if i < 0 || i >= s.n {
		panic(fmt.Sprintf("imageset: question index %d out of range [0, %d)", i, s.n))
	}
}
