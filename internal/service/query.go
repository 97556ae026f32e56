package service

import (
	"context"
	"time"

	"github.com/doclens/doclens/internal/domain"
	"github.com/doclens/doclens/internal/telemetry"
)

// Searcher retrieves ranked paragraph hits for a query.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.RetrievedHit, error)
}

// AnswerProvider produces per-document answers from ranked hits.
type AnswerProvider interface {
	ExtractAnswers(ctx context.Context, query string, hits []domain.RetrievedHit) []domain.Answer
}

// ThemeProvider clusters answers into themes.
type ThemeProvider interface {
	Synthesize(ctx context.Context, query string, answers []domain.Answer) domain.ThemeAnalysis
}

// QueryService orchestrates the full query pipeline: retrieve, answer
// per document, synthesize themes.
type QueryService struct {
	searcher    Searcher
	answers     AnswerProvider
	themes      ThemeProvider
	searchLimit int
	now         func() time.Time
}

func NewQueryService(searcher Searcher, answers AnswerProvider, themes ThemeProvider, searchLimit int) *QueryService {
	if searchLimit <= 0 {
		searchLimit = DefaultSearchLimit
	}
	return &QueryService{
		searcher:    searcher,
		answers:     answers,
		themes:      themes,
		searchLimit: searchLimit,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Process answers the query across the corpus. Retrieval failures
// propagate; an empty corpus short-circuits with an empty result.
func (s *QueryService) Process(ctx context.Context, query string) (*domain.QueryResult, error) {
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	ctx, span := telemetry.StartSpan(ctx, "QueryService.Process", telemetry.SpanAttributes{
		Query:     query,
		Operation: "query",
	})
	defer span.End()

	hits, err := s.searcher.Search(ctx, query, s.searchLimit)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	if len(hits) == 0 {
		return &domain.QueryResult{
			Query:             query,
			Timestamp:         s.now(),
			Answers:           []domain.Answer{},
			Themes:            []domain.Theme{},
			Synthesis:         "No relevant documents found.",
			TotalDocsSearched: 0,
		}, nil
	}

	answers := s.answers.ExtractAnswers(ctx, query, hits)
	analysis := s.themes.Synthesize(ctx, query, answers)

	return &domain.QueryResult{
		Query:             query,
		Timestamp:         s.now(),
		Answers:           answers,
		Themes:            analysis.Themes,
		Synthesis:         analysis.Synthesis,
		TotalDocsSearched: domain.DistinctDocumentCount(hits),
	}, nil
}
