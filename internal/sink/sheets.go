package sink

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/verte-zerg/realpick/internal/model"
)

// DefaultSheetsRange is where rows are appended when no range is configured.
const DefaultSheetsRange = "Results!A1"

// Sheets appends one row per session to a Google spreadsheet. The row holds the
// session summary followed by the chosen category of every question.
type Sheets struct {
	svc           *sheets.Service
	spreadsheetID string
	rng           string
}

// NewSheets creates a Sheets sink. Without options the client uses
// application default credentials.
func NewSheets(ctx context.Context, spreadsheetID, rng string, opts ...option.ClientOption) (*Sheets, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is empty")
	}
	if rng == "" {
		rng = DefaultSheetsRange
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return &Sheets{svc: svc, spreadsheetID: spreadsheetID, rng: rng}, nil
}

// Persist implements ResultSink.
func (s *Sheets) Persist(ctx context.Context, rec model.SessionRecord) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{SheetsRow(rec)}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append to spreadsheet: %w", err)
	}
	return nil
}

// SheetsRow builds the appended row.
func SheetsRow(rec model.SessionRecord) []interface{} {
	summary := SessionRow(rec)
	row := make([]interface{}, 0, len(summary)+len(rec.Questions))
	for _, cell := range summary {
		row = append(row, cell)
	}
	for _, q := range rec.Questions {
		row = append(row, string(q.ChosenCategory))
	}
	return row
}
