package stats

import (
	"context"
	"os"

	"golang.org/x/term"

	"github.com/verte-zerg/realpick/internal/model"
)

const terminalWidthBackup = 80

// Source is the read side of the session store.
type Source interface {
	ListSessions(ctx context.Context, cfg model.HistoryConfig) ([]model.SessionAggregate, error)
	ListQuestionAggregates(ctx context.Context, sessionIDs []string) ([]model.QuestionAggregate, error)
	ListWrongPicks(ctx context.Context, sessionIDs []string) ([]model.CategoryAggregate, error)
}

// Report contains precomputed data for history rendering.
type Report struct {
	Sessions   []model.SessionAggregate
	Questions  []model.QuestionAggregate
	WrongPicks []model.CategoryAggregate
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, src Source, cfg model.HistoryConfig) (Report, error) {
	sessions, err := src.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	questions, err := src.ListQuestionAggregates(ctx, ids)
	if err != nil {
		return Report{}, err
	}
	wrong, err := src.ListWrongPicks(ctx, ids)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Sessions:   sessions,
		Questions:  questions,
		WrongPicks: wrong,
	}, nil
}

// TerminalWidth returns the stdout width, or a fallback when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
