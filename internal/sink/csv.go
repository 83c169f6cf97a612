package sink

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verte-zerg/realpick/internal/model"
)

// CSV appends session rows to a CSV file and, when AnswersPath is set,
// per-question rows to a second file. A record persisted again only reaches
// the files that did not take it the first time.
type CSV struct {
	Path        string
	AnswersPath string

	written map[string]map[string]bool
}

// Persist implements ResultSink.
func (c *CSV) Persist(_ context.Context, rec model.SessionRecord) error {
	if c.Path == "" {
		return fmt.Errorf("csv path is empty")
	}
	if c.written == nil {
		c.written = map[string]map[string]bool{}
	}
	done := c.written[rec.ID]
	if done == nil {
		done = map[string]bool{}
		c.written[rec.ID] = done
	}
	if !done[c.Path] {
		if err := appendCSV(c.Path, SessionHeader, [][]string{SessionRow(rec)}); err != nil {
			return err
		}
		done[c.Path] = true
	}
	if c.AnswersPath != "" && !done[c.AnswersPath] {
		if err := appendCSV(c.AnswersPath, AnswerHeader, AnswerRows(rec)); err != nil {
			return err
		}
		done[c.AnswersPath] = true
	}
	return nil
}

// appendCSV writes rows in a single append, preceded by header when the file is new.
func appendCSV(path string, header []string, rows [][]string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create csv dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if info.Size() == 0 {
		if err := writer.Write(header); err != nil {
			return err
		}
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to encode csv: %w", err)
	}
	if _, err := file.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
