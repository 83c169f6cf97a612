package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/verte-zerg/realpick/internal/model"
)

// ParquetRow is one answered question joined with its session summary.
type ParquetRow struct {
	SessionID      string `parquet:"session_id"`
	StartedAtMs    int64  `parquet:"started_at_ms"`
	SubmittedAtMs  int64  `parquet:"submitted_at_ms"`
	Name           string `parquet:"name"`
	Age            int64  `parquet:"age"`
	Profession     string `parquet:"profession"`
	Experience     string `parquet:"experience"`
	Consent        *bool  `parquet:"consent,optional"`
	TotalCorrect   int64  `parquet:"total_correct"`
	TotalQuestions int64  `parquet:"total_questions"`
	QuestionIndex  int64  `parquet:"question_index"`
	Chosen         string `parquet:"chosen"`
	ChosenCategory string `parquet:"chosen_category"`
	Correct        string `parquet:"correct"`
	IsCorrect      bool   `parquet:"is_correct"`
}

// Parquet writes one file per session into Dir. Parquet files cannot be
// appended to, so each record is a new file.
type Parquet struct {
	Dir string
}

// Persist implements ResultSink.
func (p *Parquet) Persist(_ context.Context, rec model.SessionRecord) error {
	if p.Dir == "" {
		return fmt.Errorf("parquet dir is empty")
	}
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create parquet dir: %w", err)
	}
	rows := ParquetRows(rec)

	name := fmt.Sprintf("%s-%s.parquet", rec.SubmittedAt.UTC().Format("20060102T150405Z"), rec.ID)
	path := filepath.Join(p.Dir, name)
	tmpPath := path + ".tmp"
	defer func() {
		_ = os.Remove(tmpPath)
	}()
	if err := parquet.WriteFile(tmpPath, rows); err != nil {
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	return nil
}

// ParquetRows flattens a record. A record without answers yields one row with
// QuestionIndex -1 so the session summary is still kept.
func ParquetRows(rec model.SessionRecord) []ParquetRow {
	base := ParquetRow{
		SessionID:      rec.ID,
		StartedAtMs:    rec.StartedAt.UnixMilli(),
		SubmittedAtMs:  rec.SubmittedAt.UnixMilli(),
		Name:           rec.Participant.Name,
		Age:            int64(rec.Participant.Age),
		Profession:     rec.Participant.Profession,
		Experience:     rec.Participant.Experience,
		Consent:        rec.Participant.Consent,
		TotalCorrect:   int64(rec.TotalCorrect),
		TotalQuestions: int64(rec.TotalQuestions),
		QuestionIndex:  -1,
	}
	if len(rec.Questions) == 0 {
		return []ParquetRow{base}
	}
	rows := make([]ParquetRow, 0, len(rec.Questions))
	for _, q := range rec.Questions {
		row := base
		row.QuestionIndex = int64(q.Index)
		row.Chosen = string(q.Chosen)
		row.ChosenCategory = string(q.ChosenCategory)
		row.Correct = string(q.Correct)
		row.IsCorrect = q.IsCorrect
		rows = append(rows, row)
	}
	return rows
}
