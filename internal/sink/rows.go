package sink

import (
	"strconv"
	"time"

	"github.com/verte-zerg/realpick/internal/model"
)

// SessionHeader names the columns of SessionRow.
var SessionHeader = []string{
	"id", "started_at", "submitted_at", "name", "age", "profession",
	"experience", "consent", "total_correct", "total_questions",
}

// AnswerHeader names the columns of AnswerRows.
var AnswerHeader = []string{
	"session_id", "question_index", "chosen", "chosen_category", "correct", "is_correct",
}

// SessionRow flattens the session summary into one tabular row.
func SessionRow(rec model.SessionRecord) []string {
	return []string{
		rec.ID,
		rec.StartedAt.UTC().Format(time.RFC3339),
		rec.SubmittedAt.UTC().Format(time.RFC3339),
		rec.Participant.Name,
		strconv.Itoa(rec.Participant.Age),
		rec.Participant.Profession,
		rec.Participant.Experience,
		consentCell(rec.Participant.Consent),
		strconv.Itoa(rec.TotalCorrect),
		strconv.Itoa(rec.TotalQuestions),
	}
}

// AnswerRows flattens per-question results, one row each.
func AnswerRows(rec model.SessionRecord) [][]string {
	rows := make([][]string, 0, len(rec.Questions))
	for _, q := range rec.Questions {
		rows = append(rows, []string{
			rec.ID,
			strconv.Itoa(q.Index),
			string(q.Chosen),
			string(q.ChosenCategory),
			string(q.Correct),
			strconv.FormatBool(q.IsCorrect),
		})
	}
	return rows
}

func consentCell(consent *bool) string {
	if consent == nil {
		return ""
	}
	return strconv.FormatBool(*consent)
}
