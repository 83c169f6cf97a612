// Package store handles SQL persistence of completed sessions.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver.
	_ "modernc.org/sqlite"             // SQLite driver.

	"github.com/verte-zerg/realpick/internal/model"
)

// Driver selects the SQL backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQL access for session data.
type Store struct {
	db     *sql.DB
	driver Driver
}

// ParseDriver maps a config value to a Driver.
func ParseDriver(name string) (Driver, error) {
	switch Driver(strings.ToLower(strings.TrimSpace(name))) {
	case "", DriverSQLite:
		return DriverSQLite, nil
	case DriverPostgres, "pgx":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported db driver %q", name)
	}
}

// Open opens or creates the database and applies migrations. For SQLite the
// dsn is a file path.
func Open(ctx context.Context, driver Driver, dsn string) (*Store, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite"
		if dsn == "" {
			return nil, fmt.Errorf("sqlite path is empty")
		}
		if strings.Contains(dsn, "://") {
			return nil, fmt.Errorf("sqlite path %q looks like a connection URL", dsn)
		}
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, err
		}
	case DriverPostgres:
		drvName = "pgx"
		if dsn == "" {
			return nil, fmt.Errorf("postgres dsn is empty")
		}
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, driver: driver}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.migrate(ctx); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			submitted_at TEXT NOT NULL,
			name TEXT NOT NULL,
			age INTEGER NOT NULL,
			profession TEXT NOT NULL,
			experience TEXT NOT NULL,
			consent INTEGER,
			total_correct INTEGER NOT NULL,
			total_questions INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS session_answers (
			session_id TEXT NOT NULL,
			question_index INTEGER NOT NULL,
			chosen TEXT NOT NULL,
			chosen_category TEXT NOT NULL,
			correct TEXT NOT NULL,
			is_correct INTEGER NOT NULL,
			PRIMARY KEY (session_id, question_index)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_submitted_at ON sessions(submitted_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Persist stores a completed session and its answers in one transaction.
// A record whose id is already stored is ignored.
func (s *Store) Persist(ctx context.Context, rec model.SessionRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	var consent any
	if rec.Participant.Consent != nil {
		consent = boolInt(*rec.Participant.Consent)
	}
	res, err := tx.ExecContext(ctx, s.rebind(
		`INSERT INTO sessions (id, started_at, submitted_at, name, age, profession, experience, consent, total_correct, total_questions)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`),
		rec.ID,
		formatTime(rec.StartedAt),
		formatTime(rec.SubmittedAt),
		rec.Participant.Name,
		rec.Participant.Age,
		rec.Participant.Profession,
		rec.Participant.Experience,
		consent,
		rec.TotalCorrect,
		rec.TotalQuestions,
	)
	if err != nil {
		return err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if inserted > 0 && len(rec.Questions) > 0 {
		stmt, err := tx.PrepareContext(ctx, s.rebind(
			`INSERT INTO session_answers (session_id, question_index, chosen, chosen_category, correct, is_correct)
			 VALUES (?, ?, ?, ?, ?, ?)`))
		if err != nil {
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, q := range rec.Questions {
			if _, err := stmt.ExecContext(ctx, rec.ID, q.Index, string(q.Chosen), string(q.ChosenCategory), string(q.Correct), boolInt(q.IsCorrect)); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// ListSessions returns stored sessions ordered by submit time.
func (s *Store) ListSessions(ctx context.Context, cfg model.HistoryConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "submitted_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	query := fmt.Sprintf(`SELECT id, submitted_at, name, total_correct, total_questions
		FROM sessions
		WHERE %s
		ORDER BY submitted_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var submittedAt string
		if err := rows.Scan(&agg.ID, &submittedAt, &agg.Name, &agg.TotalCorrect, &agg.TotalQuestions); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, submittedAt)
		if err != nil {
			return nil, err
		}
		agg.SubmittedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	return sessions, nil
}

// ListAnswers returns the stored answers of one session by question index.
func (s *Store) ListAnswers(ctx context.Context, sessionID string) ([]model.QuestionResult, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT question_index, chosen, chosen_category, correct, is_correct
		 FROM session_answers
		 WHERE session_id = ?
		 ORDER BY question_index ASC`), sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.QuestionResult
	for rows.Next() {
		var q model.QuestionResult
		var chosen, category, correct string
		var isCorrect int
		if err := rows.Scan(&q.Index, &chosen, &category, &correct, &isCorrect); err != nil {
			return nil, err
		}
		q.Chosen = model.Item(chosen)
		q.ChosenCategory = model.Category(category)
		q.Correct = model.Item(correct)
		q.IsCorrect = isCorrect != 0
		result = append(result, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListQuestionAggregates aggregates correctness per question index across sessions.
func (s *Store) ListQuestionAggregates(ctx context.Context, sessionIDs []string) ([]model.QuestionAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(sessionIDs)
	query := fmt.Sprintf(`SELECT question_index, SUM(is_correct) AS correct, COUNT(*) - SUM(is_correct) AS incorrect
		FROM session_answers
		WHERE session_id IN (%s)
		GROUP BY question_index
		ORDER BY question_index ASC`, placeholders)
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.QuestionAggregate
	for rows.Next() {
		var agg model.QuestionAggregate
		if err := rows.Scan(&agg.Index, &agg.Correct, &agg.Incorrect); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListWrongPicks counts incorrect picks per chosen category across sessions.
func (s *Store) ListWrongPicks(ctx context.Context, sessionIDs []string) ([]model.CategoryAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(sessionIDs)
	query := fmt.Sprintf(`SELECT chosen_category, COUNT(*) AS picks
		FROM session_answers
		WHERE session_id IN (%s) AND is_correct = 0
		GROUP BY chosen_category
		ORDER BY chosen_category ASC`, placeholders)
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.CategoryAggregate
	for rows.Next() {
		var agg model.CategoryAggregate
		var category string
		if err := rows.Scan(&category, &agg.Picks); err != nil {
			return nil, err
		}
		agg.Category = model.Category(category)
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func inClause(ids []string) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ","), args
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
