package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/doclens/doclens/internal/domain"
)

// CompletionClient defines the interface for chat completions
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// maxChunksPerDocument caps how many retrieved paragraphs feed one
// document's answer prompt.
const maxChunksPerDocument = 3

const noRelevantSentinel = "no relevant information"

const answerPromptFormat = `Based on this document content, answer: "%s"

Content: %s

Instructions:
1. Provide a direct, specific answer if the information is available
2. If no relevant information is found, respond with "No relevant information found"
3. Keep the answer concise and factual
4. Focus on the most relevant information

Answer:`

// AnswerExtractor produces at most one answer per distinct document
// from a ranked hit list. A document whose completion fails or declines
// is skipped; the rest still answer.
type AnswerExtractor struct {
	completion CompletionClient
}

func NewAnswerExtractor(completion CompletionClient) *AnswerExtractor {
	return &AnswerExtractor{completion: completion}
}

// ExtractAnswers walks hits in rank order, grouping them by document
// first seen. The top hit of each document supplies the citation.
func (e *AnswerExtractor) ExtractAnswers(ctx context.Context, query string, hits []domain.RetrievedHit) []domain.Answer {
	byDoc := make(map[string][]domain.RetrievedHit)
	var order []string
	for _, h := range hits {
		id := h.Unit.DocumentID
		if _, seen := byDoc[id]; !seen {
			order = append(order, id)
		}
		byDoc[id] = append(byDoc[id], h)
	}

	var answers []domain.Answer
	for _, docID := range order {
		docHits := byDoc[docID]
		if len(docHits) > maxChunksPerDocument {
			docHits = docHits[:maxChunksPerDocument]
		}

		texts := make([]string, 0, len(docHits))
		for _, h := range docHits {
			texts = append(texts, h.Text)
		}

		prompt := fmt.Sprintf(answerPromptFormat, query, strings.Join(texts, "\n"))
		answerText, err := e.completion.Complete(ctx, prompt)
		if err != nil {
			log.Printf("answers: extraction failed for %s: %v", docID, err)
			continue
		}

		answerText = strings.TrimSpace(answerText)
		if answerText == "" || strings.Contains(strings.ToLower(answerText), noRelevantSentinel) {
			continue
		}

		best := docHits[0]
		answers = append(answers, domain.Answer{
			DocumentID: docID,
			Filename:   best.Unit.Filename,
			AnswerText: answerText,
			Citation:   domain.NewCitation(best.Unit.Page, best.Unit.Index),
			Page:       best.Unit.Page,
			Paragraph:  best.Unit.Index,
		})
	}

	return answers
}
