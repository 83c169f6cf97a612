// Package question builds the shuffled candidate list for a question.
package question

import (
	"math/rand"

	"github.com/verte-zerg/realpick/internal/imageset"
	"github.com/verte-zerg/realpick/internal/model"
)

// Question is one round of four candidates at a shared index.
type Question struct {
	Index      int
	Candidates []model.Candidate
	Correct    model.Item
}

// Builder produces questions from a loaded image set.
type Builder struct {
	set *imageset.Set
}

// NewBuilder returns a Builder over set.
func NewBuilder(set *imageset.Set) *Builder {
	return &Builder{set: set}
}

// Len returns the number of valid questions.
func (b *Builder) Len() int {
	return b.set.Len()
}

// Build returns question i with its candidates in a shuffled order that depends only on i.
// It panics when i is outside [0, Len()).
func (b *Builder) Build(i int) Question {
	candidates := make([]model.Candidate, 0, len(model.Categories))
	for _, cat := range model.Categories {
		candidates = append(candidates, model.Candidate{Item: b.set.Item(cat, i), Category: cat})
	}
	rnd := rand.New(rand.NewSource(seedFor(i)))
	rnd.Shuffle(len(candidates), func(x, y int) {
		candidates[x], candidates[y] = candidates[y], candidates[x]
	})
	return Question{
		Index:      i,
		Candidates: candidates,
		Correct:    b.set.Correct(i),
	}
}

// Candidate returns the candidate holding item, if presented in q.
func (q Question) Candidate(item model.Item) (model.Candidate, bool) {
	for _, c := range q.Candidates {
		if c.Item == item {
			return c, true
		}
	}
	return model.Candidate{}, false
}

// Position returns the display position of item, or -1.
func (q Question) Position(item model.Item) int {
	for pos, c := range q.Candidates {
		if c.Item == item {
			return pos
		}
	}
	return -1
}

func seedFor(i int) int64 {
	return int64(i) + 1
}
