// Package model defines shared data structures.
package model

import "time"

// Category names one of the four fixed image groups.
type Category string

// The four categories compared in every question.
const (
	RealFiltered        Category = "real-filtered"
	RealUnfiltered      Category = "real-unfiltered"
	SyntheticFiltered   Category = "synthetic-filtered"
	SyntheticUnfiltered Category = "synthetic-unfiltered"
)

// Categories lists every category in canonical presentation order.
var Categories = []Category{RealFiltered, RealUnfiltered, SyntheticFiltered, SyntheticUnfiltered}

// CorrectCategory holds the item that counts as the right pick.
const CorrectCategory = RealUnfiltered

// Item identifies a displayable image, usually a file path.
type Item string

// Candidate is one presented image together with the category it came from.
type Candidate struct {
	Item     Item
	Category Category
}

// ParticipantMetadata describes the person taking the test.
type ParticipantMetadata struct {
	Name       string
	Age        int
	Profession string
	Experience string
	// Consent is nil when no consent step is configured.
	Consent *bool
}

// Answer is the recorded pick for one question.
type Answer struct {
	Chosen         Item
	ChosenCategory Category
	Correct        Item
}

// QuestionResult is a scored row for one question.
type QuestionResult struct {
	Index          int
	Chosen         Item
	ChosenCategory Category
	Correct        Item
	IsCorrect      bool
}

// SessionRecord is everything persisted for one completed attempt.
type SessionRecord struct {
	ID             string
	StartedAt      time.Time
	SubmittedAt    time.Time
	Participant    ParticipantMetadata
	TotalCorrect   int
	TotalQuestions int
	Questions      []QuestionResult
}

// QuizConfig defines test settings.
type QuizConfig struct {
	Dirs           map[Category]string
	Extensions     []string
	RequireConsent bool
	ConsentFile    string
	ShowNames      bool
	Viewer         string
}

// SinkConfig selects and configures result backends.
type SinkConfig struct {
	Backends            []string
	SQLitePath          string
	DBDriver            string
	DBDSN               string
	CSVPath             string
	CSVAnswersPath      string
	YAMLPath            string
	ParquetDir          string
	SheetsSpreadsheetID string
	SheetsRange         string
	SheetsCredentials   string
}

// HistoryConfig defines filters for history output.
type HistoryConfig struct {
	Since *time.Time
	Last  int
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	ID             string
	SubmittedAt    time.Time
	Name           string
	TotalCorrect   int
	TotalQuestions int
}

// QuestionAggregate aggregates outcomes of one question index across sessions.
type QuestionAggregate struct {
	Index     int
	Correct   int
	Incorrect int
}

// CategoryAggregate counts picks of one category across sessions.
type CategoryAggregate struct {
	Category Category
	Picks    int
}
