// Package session drives one participant's attempt through its phases.
package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/realpick/internal/model"
	"github.com/verte-zerg/realpick/internal/question"
	"github.com/verte-zerg/realpick/internal/quizerr"
	"github.com/verte-zerg/realpick/internal/score"
	"github.com/verte-zerg/realpick/internal/sink"
)

// Phase is the coarse stage of a session.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseTesting
	PhaseResult
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseTesting:
		return "testing"
	case PhaseResult:
		return "result"
	default:
		return "unknown"
	}
}

// MaxAge is the largest accepted participant age.
const MaxAge = 120

// Options configures a Session.
type Options struct {
	RequireConsent bool
	Now            func() time.Time
	NewID          func() string
}

// Session holds the state of one attempt. It is not safe for concurrent use.
type Session struct {
	builder *question.Builder
	opts    Options

	phase   Phase
	index   int
	answers map[int]model.Answer
	meta    model.ParticipantMetadata

	id          string
	startedAt   time.Time
	submittedAt time.Time
	result      score.Result
	saved       bool
}

// New returns a Session in the start phase.
func New(builder *question.Builder, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Session{
		builder: builder,
		opts:    opts,
		answers: map[int]model.Answer{},
	}
}

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Index returns the current question index.
func (s *Session) Index() int { return s.index }

// Len returns the number of questions.
func (s *Session) Len() int { return s.builder.Len() }

// ID returns the attempt id assigned when testing started.
func (s *Session) ID() string { return s.id }

// RequireConsent reports whether starting needs an affirmed consent flag.
func (s *Session) RequireConsent() bool { return s.opts.RequireConsent }

// Metadata returns the participant metadata.
func (s *Session) Metadata() model.ParticipantMetadata { return s.meta }

// AnsweredCount returns the number of questions answered at least once.
func (s *Session) AnsweredCount() int { return len(s.answers) }

// Answer returns the recorded answer for question i.
func (s *Session) Answer(i int) (model.Answer, bool) {
	ans, ok := s.answers[i]
	return ans, ok
}

// Answers returns a copy of the recorded answers.
func (s *Session) Answers() map[int]model.Answer {
	out := make(map[int]model.Answer, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Question returns the current question.
func (s *Session) Question() question.Question {
	return s.builder.Build(s.index)
}

// Start validates meta and moves to the testing phase.
func (s *Session) Start(meta model.ParticipantMetadata) error {
	if s.phase != PhaseStart {
		return quizerr.StateViolation("cannot start from phase %s", s.phase)
	}
	meta.Name = strings.TrimSpace(meta.Name)
	meta.Profession = strings.TrimSpace(meta.Profession)
	meta.Experience = strings.TrimSpace(meta.Experience)
	if meta.Name == "" {
		return quizerr.Validation("name is required")
	}
	if meta.Age < 0 || meta.Age > MaxAge {
		return quizerr.Validation("age must be between 0 and %d", MaxAge)
	}
	if s.opts.RequireConsent && (meta.Consent == nil || !*meta.Consent) {
		return quizerr.Validation("consent must be given before starting")
	}
	if meta.Consent != nil {
		consent := *meta.Consent
		meta.Consent = &consent
	}
	s.meta = meta
	s.index = 0
	s.answers = map[int]model.Answer{}
	s.id = s.opts.NewID()
	s.startedAt = s.opts.Now()
	s.phase = PhaseTesting
	return nil
}

// RecordAnswer stores item as the pick for question i, replacing an earlier pick.
func (s *Session) RecordAnswer(i int, item model.Item) error {
	if s.phase != PhaseTesting {
		return quizerr.StateViolation("cannot answer in phase %s", s.phase)
	}
	if i < 0 || i >= s.Len() {
		return quizerr.StateViolation("question %d out of range [0, %d)", i, s.Len())
	}
	q := s.builder.Build(i)
	cand, ok := q.Candidate(item)
	if !ok {
		return quizerr.StateViolation("%s is not a candidate of question %d", item, i)
	}
	s.answers[i] = model.Answer{
		Chosen:         cand.Item,
		ChosenCategory: cand.Category,
		Correct:        q.Correct,
	}
	return nil
}

// Choose records the candidate at display position pos of the current question.
func (s *Session) Choose(pos int) error {
	if s.phase != PhaseTesting {
		return quizerr.StateViolation("cannot answer in phase %s", s.phase)
	}
	q := s.Question()
	if pos < 0 || pos >= len(q.Candidates) {
		return quizerr.StateViolation("position %d out of range [0, %d)", pos, len(q.Candidates))
	}
	return s.RecordAnswer(q.Index, q.Candidates[pos].Item)
}

// CanPrevious reports whether Previous moves.
func (s *Session) CanPrevious() bool {
	return s.phase == PhaseTesting && s.index > 0
}

// CanNext reports whether Next moves.
func (s *Session) CanNext() bool {
	return s.phase == PhaseTesting && s.index < s.Len()-1
}

// Previous moves to the previous question. It reports whether the index changed.
func (s *Session) Previous() bool {
	if !s.CanPrevious() {
		return false
	}
	s.index--
	return true
}

// Next moves to the next question. It reports whether the index changed.
func (s *Session) Next() bool {
	if !s.CanNext() {
		return false
	}
	s.index++
	return true
}

// CanSubmit reports whether every question has been answered.
func (s *Session) CanSubmit() bool {
	return s.phase == PhaseTesting && len(s.answers) == s.Len()
}

// Submit scores the answers and moves to the result phase.
func (s *Session) Submit() (score.Result, error) {
	if s.phase != PhaseTesting {
		return score.Result{}, quizerr.StateViolation("cannot submit in phase %s", s.phase)
	}
	if !s.CanSubmit() {
		return score.Result{}, quizerr.StateViolation("%d of %d questions answered", len(s.answers), s.Len())
	}
	s.result = score.Score(s.answers, s.Len())
	s.submittedAt = s.opts.Now()
	s.saved = false
	s.phase = PhaseResult
	return s.result, nil
}

// Result returns the score computed at submit.
func (s *Session) Result() score.Result {
	return s.result
}

// Record builds the persisted form of a submitted session.
func (s *Session) Record() (model.SessionRecord, error) {
	if s.phase != PhaseResult {
		return model.SessionRecord{}, quizerr.StateViolation("no result in phase %s", s.phase)
	}
	return model.SessionRecord{
		ID:             s.id,
		StartedAt:      s.startedAt,
		SubmittedAt:    s.submittedAt,
		Participant:    s.meta,
		TotalCorrect:   s.result.TotalCorrect,
		TotalQuestions: s.result.TotalQuestions,
		Questions:      s.result.Rows(),
	}, nil
}

// Persist hands the record to rs. On failure the session keeps its data so the
// call can be repeated.
func (s *Session) Persist(ctx context.Context, rs sink.ResultSink) error {
	rec, err := s.Record()
	if err != nil {
		return err
	}
	if err := rs.Persist(ctx, rec); err != nil {
		return quizerr.Persistence(err, "session %s", rec.ID)
	}
	return s.MarkSaved(rec.ID)
}

// MarkSaved records that the result with the given id was persisted elsewhere.
// A stale id, such as one from before a Reset, is rejected.
func (s *Session) MarkSaved(id string) error {
	if s.phase != PhaseResult || id != s.id {
		return quizerr.StateViolation("session %s has no pending result", id)
	}
	s.saved = true
	return nil
}

// Saved reports whether the current result has been persisted.
func (s *Session) Saved() bool { return s.saved }

// Reset discards the attempt and returns to the start phase.
func (s *Session) Reset() {
	s.phase = PhaseStart
	s.index = 0
	s.answers = map[int]model.Answer{}
	s.meta = model.ParticipantMetadata{}
	s.id = ""
	s.startedAt = time.Time{}
	s.submittedAt = time.Time{}
	s.result = score.Result{}
	s.saved = false
}
