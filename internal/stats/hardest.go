package stats

import (
	"sort"

	"github.com/verte-zerg/realpick/internal/model"
)

// HardestQuestions orders aggregates by lowest accuracy and keeps the first top.
// top <= 0 keeps all.
func HardestQuestions(aggs []model.QuestionAggregate, top int) []model.QuestionAggregate {
	candidates := make([]model.QuestionAggregate, len(aggs))
	copy(candidates, aggs)
	sort.SliceStable(candidates, func(i, j int) bool {
		ai := questionAccuracy(candidates[i])
		aj := questionAccuracy(candidates[j])
		if ai == aj {
			return candidates[i].Index < candidates[j].Index
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	return candidates[:top]
}

func questionAccuracy(agg model.QuestionAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}
