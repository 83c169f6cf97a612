package sink

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/realpick/internal/model"
)

// YAMLParticipant is the participant section of a YAML document.
type YAMLParticipant struct {
	Name       string `yaml:"name"`
	Age        int    `yaml:"age"`
	Profession string `yaml:"profession"`
	Experience string `yaml:"experience"`
	Consent    *bool  `yaml:"consent,omitempty"`
}

// YAMLAnswer is one per-question entry of a YAML document.
type YAMLAnswer struct {
	Index          int    `yaml:"index"`
	Chosen         string `yaml:"chosen"`
	ChosenCategory string `yaml:"chosencategory"`
	Correct        string `yaml:"correct"`
	IsCorrect      bool   `yaml:"iscorrect"`
}

// YAMLSession is one document appended per completed session.
type YAMLSession struct {
	ID             string          `yaml:"id"`
	StartedAt      string          `yaml:"startedat"`
	SubmittedAt    string          `yaml:"submittedat"`
	Participant    YAMLParticipant `yaml:"participant"`
	TotalCorrect   int             `yaml:"totalcorrect"`
	TotalQuestions int             `yaml:"totalquestions"`
	Answers        []YAMLAnswer    `yaml:"answers"`
}

// YAML appends one YAML document per session to a multi-document file.
type YAML struct {
	Path string
}

// Persist implements ResultSink.
func (y *YAML) Persist(_ context.Context, rec model.SessionRecord) error {
	if y.Path == "" {
		return fmt.Errorf("yaml path is empty")
	}
	doc := YAMLSession{
		ID:          rec.ID,
		StartedAt:   rec.StartedAt.UTC().Format(time.RFC3339),
		SubmittedAt: rec.SubmittedAt.UTC().Format(time.RFC3339),
		Participant: YAMLParticipant{
			Name:       rec.Participant.Name,
			Age:        rec.Participant.Age,
			Profession: rec.Participant.Profession,
			Experience: rec.Participant.Experience,
			Consent:    rec.Participant.Consent,
		},
		TotalCorrect:   rec.TotalCorrect,
		TotalQuestions: rec.TotalQuestions,
		Answers:        make([]YAMLAnswer, 0, len(rec.Questions)),
	}
	for _, q := range rec.Questions {
		doc.Answers = append(doc.Answers, YAMLAnswer{
			Index:          q.Index,
			Chosen:         string(q.Chosen),
			ChosenCategory: string(q.ChosenCategory),
			Correct:        string(q.Correct),
			IsCorrect:      q.IsCorrect,
		})
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(y.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create yaml dir: %w", err)
	}
	file, err := os.OpenFile(y.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", y.Path, err)
	}
	if _, err := file.Write(buf.Bytes()); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write YAML file: %w", err)
	}
	return file.Close()
}
