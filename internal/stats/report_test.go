package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/realpick/internal/model"
	"github.com/verte-zerg/realpick/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	st, err := store.Open(ctx, store.DriverSQLite, filepath.Join(dir, "realpick.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	for i := 0; i < 3; i++ {
		submitted := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		rec := model.SessionRecord{
			ID:             string(rune('a' + i)),
			StartedAt:      submitted.Add(-30 * time.Second),
			SubmittedAt:    submitted,
			Participant:    model.ParticipantMetadata{Name: "p", Age: 20},
			TotalCorrect:   1,
			TotalQuestions: 2,
			Questions: []model.QuestionResult{
				{Index: 0, Chosen: "u1", ChosenCategory: model.RealUnfiltered, Correct: "u1", IsCorrect: true},
				{Index: 1, Chosen: "g2", ChosenCategory: model.SyntheticUnfiltered, Correct: "u2"},
			},
		}
		if err := st.Persist(ctx, rec); err != nil {
			t.Fatalf("persist: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, model.HistoryConfig{Last: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if report.Sessions[0].ID != "b" || report.Sessions[1].ID != "c" {
		t.Fatalf("unexpected session ids: %+v", report.Sessions)
	}
	if len(report.Questions) != 2 || report.Questions[1].Incorrect != 2 {
		t.Fatalf("unexpected question aggregates: %+v", report.Questions)
	}
	if len(report.WrongPicks) != 1 || report.WrongPicks[0].Category != model.SyntheticUnfiltered || report.WrongPicks[0].Picks != 2 {
		t.Fatalf("unexpected wrong picks: %+v", report.WrongPicks)
	}
}
