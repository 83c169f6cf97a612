package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/realpick/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "nested", "realpick.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func sampleRecord(id string, submitted time.Time, picks ...model.Category) model.SessionRecord {
	consent := true
	rec := model.SessionRecord{
		ID:          id,
		StartedAt:   submitted.Add(-5 * time.Minute),
		SubmittedAt: submitted,
		Participant: model.ParticipantMetadata{
			Name:       "Ana " + id,
			Age:        30,
			Profession: "radiologist",
			Experience: "5",
			Consent:    &consent,
		},
		TotalQuestions: len(picks),
	}
	for i, cat := range picks {
		correct := model.Item(fmt.Sprintf("u%d", i))
		chosen := model.Item(fmt.Sprintf("%s-%d", cat, i))
		if cat == model.RealUnfiltered {
			chosen = correct
		}
		q := model.QuestionResult{Index: i, Chosen: chosen, ChosenCategory: cat, Correct: correct, IsCorrect: chosen == correct}
		if q.IsCorrect {
			rec.TotalCorrect++
		}
		rec.Questions = append(rec.Questions, q)
	}
	return rec
}

func TestPersistAndList(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)

	recs := []model.SessionRecord{
		sampleRecord("s1", base, model.RealUnfiltered, model.SyntheticFiltered, model.RealUnfiltered),
		sampleRecord("s2", base.Add(time.Hour), model.RealFiltered, model.RealUnfiltered, model.SyntheticFiltered),
		sampleRecord("s3", base.Add(2*time.Hour), model.RealUnfiltered, model.RealUnfiltered, model.RealUnfiltered),
	}
	for _, rec := range recs {
		if err := st.Persist(ctx, rec); err != nil {
			t.Fatalf("persist %s: %v", rec.ID, err)
		}
	}

	sessions, err := st.ListSessions(ctx, model.HistoryConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != "s1" || sessions[2].ID != "s3" {
		t.Fatalf("unexpected order: %+v", sessions)
	}
	if !sessions[1].SubmittedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("unexpected submitted_at: %v", sessions[1].SubmittedAt)
	}
	if sessions[0].TotalCorrect != 2 || sessions[0].TotalQuestions != 3 {
		t.Fatalf("unexpected totals: %+v", sessions[0])
	}

	last, err := st.ListSessions(ctx, model.HistoryConfig{Last: 2})
	if err != nil {
		t.Fatalf("list last: %v", err)
	}
	if len(last) != 2 || last[0].ID != "s2" {
		t.Fatalf("unexpected last sessions: %+v", last)
	}

	since := base.Add(90 * time.Minute)
	recent, err := st.ListSessions(ctx, model.HistoryConfig{Since: &since})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != "s3" {
		t.Fatalf("unexpected recent sessions: %+v", recent)
	}

	answers, err := st.ListAnswers(ctx, "s1")
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	if diff := cmp.Diff(recs[0].Questions, answers); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}
}

func TestPersistIgnoresDuplicateID(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	rec := sampleRecord("dup", time.Unix(0, 0), model.RealUnfiltered, model.RealFiltered)
	for i := 0; i < 2; i++ {
		if err := st.Persist(ctx, rec); err != nil {
			t.Fatalf("persist #%d: %v", i, err)
		}
	}
	sessions, err := st.ListSessions(ctx, model.HistoryConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	answers, err := st.ListAnswers(ctx, "dup")
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(answers))
	}
}

func TestAggregates(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Unix(1000, 0)
	if err := st.Persist(ctx, sampleRecord("a", base, model.RealUnfiltered, model.SyntheticFiltered)); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if err := st.Persist(ctx, sampleRecord("b", base.Add(time.Second), model.SyntheticUnfiltered, model.SyntheticFiltered)); err != nil {
		t.Fatalf("persist: %v", err)
	}

	questions, err := st.ListQuestionAggregates(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatalf("question aggregates: %v", err)
	}
	want := []model.QuestionAggregate{
		{Index: 0, Correct: 1, Incorrect: 1},
		{Index: 1, Correct: 0, Incorrect: 2},
	}
	if diff := cmp.Diff(want, questions); diff != "" {
		t.Fatalf("question aggregates mismatch (-want +got):\n%s", diff)
	}

	wrong, err := st.ListWrongPicks(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatalf("wrong picks: %v", err)
	}
	wantWrong := []model.CategoryAggregate{
		{Category: model.SyntheticFiltered, Picks: 2},
		{Category: model.SyntheticUnfiltered, Picks: 1},
	}
	if diff := cmp.Diff(wantWrong, wrong); diff != "" {
		t.Fatalf("wrong picks mismatch (-want +got):\n%s", diff)
	}

	empty, err := st.ListQuestionAggregates(ctx, nil)
	if err != nil || empty != nil {
		t.Fatalf("expected nil aggregates for no sessions, got %v, %v", empty, err)
	}
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: DriverPostgres}
	if got := pg.rebind("a = ? AND b IN (?, ?)"); got != "a = $1 AND b IN ($2, $3)" {
		t.Fatalf("unexpected rebind: %q", got)
	}
	lite := &Store{driver: DriverSQLite}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("sqlite query must be unchanged: %q", got)
	}
}

func TestParseDriver(t *testing.T) {
	tests := map[string]Driver{"": DriverSQLite, "SQLite": DriverSQLite, "postgres": DriverPostgres, "pgx": DriverPostgres}
	for in, want := range tests {
		got, err := ParseDriver(in)
		if err != nil || got != want {
			t.Fatalf("ParseDriver(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseDriver("mysql"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestPostgresRoundTrip(t *testing.T) {
	dsn := os.Getenv("REALPICK_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("REALPICK_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	st, err := Open(ctx, DriverPostgres, dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	id := fmt.Sprintf("pg-%d", time.Now().UnixNano())
	rec := sampleRecord(id, time.Now(), model.RealUnfiltered, model.SyntheticFiltered)
	if err := st.Persist(ctx, rec); err != nil {
		t.Fatalf("persist: %v", err)
	}
	answers, err := st.ListAnswers(ctx, id)
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	if diff := cmp.Diff(rec.Questions, answers); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}
}
