// Package score compares recorded picks with the correct items.
package score

import "github.com/verte-zerg/realpick/internal/model"

// Outcome is the scored state of one question.
type Outcome struct {
	Index          int
	Answered       bool
	Chosen         model.Item
	ChosenCategory model.Category
	Correct        model.Item
	IsCorrect      bool
}

// Result holds totals and per-question outcomes.
type Result struct {
	TotalCorrect   int
	TotalQuestions int
	Answered       int
	Outcomes       []Outcome
}

// Score evaluates answers for questions [0, n). Questions without an answer are
// reported as unanswered and do not count as incorrect.
func Score(answers map[int]model.Answer, n int) Result {
	if n < 0 {
		n = 0
	}
	res := Result{TotalQuestions: n, Outcomes: make([]Outcome, n)}
	for i := 0; i < n; i++ {
		out := Outcome{Index: i}
		if ans, ok := answers[i]; ok {
			out.Answered = true
			out.Chosen = ans.Chosen
			out.ChosenCategory = ans.ChosenCategory
			out.Correct = ans.Correct
			out.IsCorrect = ans.Chosen == ans.Correct
			res.Answered++
			if out.IsCorrect {
				res.TotalCorrect++
			}
		}
		res.Outcomes[i] = out
	}
	return res
}

// Accuracy returns the fraction of questions answered correctly.
func (r Result) Accuracy() float64 {
	if r.TotalQuestions == 0 {
		return 0
	}
	return float64(r.TotalCorrect) / float64(r.TotalQuestions)
}

// Mismatches returns answered questions whose pick was wrong.
func (r Result) Mismatches() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Answered && !o.IsCorrect {
			out = append(out, o)
		}
	}
	return out
}

// Rows converts answered outcomes into persisted rows.
func (r Result) Rows() []model.QuestionResult {
	rows := make([]model.QuestionResult, 0, r.Answered)
	for _, o := range r.Outcomes {
		if !o.Answered {
			continue
		}
		rows = append(rows, model.QuestionResult{
			Index:          o.Index,
			Chosen:         o.Chosen,
			ChosenCategory: o.ChosenCategory,
			Correct:        o.Correct,
			IsCorrect:      o.IsCorrect,
		})
	}
	return rows
}
