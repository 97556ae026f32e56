package domain

import (
	"fmt"
	"time"
)

// Answer is a per-document answer extracted for a query. At most one
// Answer is produced per distinct document id per query.
type Answer struct {
	DocumentID string
	Filename   string
	AnswerText string
	Citation   string
	Page       int
	Paragraph  int
}

// NewCitation formats the canonical citation string for a page/paragraph pair
func NewCitation(page, paragraph int) string {
	return fmt.Sprintf("Page %d, Para %d", page, paragraph)
}

// Theme is a named cluster of per-document answers sharing a conceptual
// thread, with a summary and the answers that support it.
type Theme struct {
	Name              string
	Summary           string
	SupportingAnswers []Answer
	SupportingCount   int
}

// ThemeAnalysis is the synthesizer's output: the identified themes plus
// one overall synthesis paragraph.
type ThemeAnalysis struct {
	Themes    []Theme
	Synthesis string
}

// QueryResult is the full response for one query. TotalDocsSearched
// counts distinct document ids among the retrieved hits, not among the
// extracted answers.
type QueryResult struct {
	Query             string
	Timestamp         time.Time
	Answers           []Answer
	Themes            []Theme
	Synthesis         string
	TotalDocsSearched int
}
