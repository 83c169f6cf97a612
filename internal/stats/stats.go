// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/realpick/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionAccuracy returns the fraction of correct picks in a session.
func SessionAccuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		den := float64(i + 1)
		if i >= window {
			sum -= values[i-window]
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Tail keeps at most width trailing values.
func Tail(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return values
	}
	return values[len(values)-width:]
}

// RenderSummary prints a summary of stored sessions. width bounds the sparkline.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate, width int) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	accs := make([]float64, len(sessions))
	var totalAcc, best float64
	for i, s := range sessions {
		acc := SessionAccuracy(s.TotalCorrect, s.TotalQuestions)
		accs[i] = acc
		totalAcc += acc
		best = math.Max(best, acc)
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Avg Accuracy: %.2f%%", totalAcc/count*100),
		fmt.Sprintf("Best Accuracy: %.2f%%", best*100),
		fmt.Sprintf("Last: %s (%d/%d)", sessions[len(sessions)-1].Name, sessions[len(sessions)-1].TotalCorrect, sessions[len(sessions)-1].TotalQuestions),
	}
	if len(sessions) > 1 {
		lines = append(lines, "Trend: "+Sparkline(Tail(MovingAverage(accs, 3), width)))
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderQuestionTable prints per-question accuracy, hardest first.
func RenderQuestionTable(w io.Writer, aggs []model.QuestionAggregate, top int) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No answers found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Hardest Questions"); err != nil {
		return err
	}
	headers := []string{"Question", "Accuracy", "Correct", "Incorrect"}
	rows := make([][]string, 0, len(aggs))
	for _, agg := range HardestQuestions(aggs, top) {
		rows = append(rows, []string{
			fmt.Sprintf("%d", agg.Index+1),
			fmt.Sprintf("%.2f%%", questionAccuracy(agg)*100),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{0: true, 1: true, 2: true, 3: true}))
}

// RenderWrongPicks prints which categories wrong picks came from.
func RenderWrongPicks(w io.Writer, aggs []model.CategoryAggregate) error {
	total := 0
	for _, agg := range aggs {
		total += agg.Picks
	}
	if total == 0 {
		_, err := fmt.Fprintln(w, "No wrong picks recorded.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Fooled By"); err != nil {
		return err
	}
	headers := []string{"Category", "Picks", "Share"}
	rows := make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, []string{
			string(agg.Category),
			fmt.Sprintf("%d", agg.Picks),
			fmt.Sprintf("%.1f%%", float64(agg.Picks)/float64(total)*100),
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{1: true, 2: true}))
}

// RenderAnswers prints the stored answers of one session.
func RenderAnswers(w io.Writer, answers []model.QuestionResult) error {
	if len(answers) == 0 {
		_, err := fmt.Fprintln(w, "No answers stored for this session.")
		return err
	}
	headers := []string{"Question", "Result", "Chosen", "Category", "Correct"}
	rows := make([][]string, 0, len(answers))
	for _, a := range answers {
		result := "wrong"
		if a.IsCorrect {
			result = "ok"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", a.Index+1),
			result,
			string(a.Chosen),
			string(a.ChosenCategory),
			string(a.Correct),
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{0: true}))
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
