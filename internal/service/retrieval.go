package service

import (
	"context"

	"github.com/doclens/doclens/internal/domain"
	"github.com/doclens/doclens/internal/telemetry"
)

// DefaultSearchLimit is the number of paragraphs retrieved per query
// when the caller does not say otherwise.
const DefaultSearchLimit = 20

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// UnitRepositoryInterface defines the repository interface for indexed
// paragraph units.
type UnitRepositoryInterface interface {
	SetEmbedding(ctx context.Context, documentID, paragraphID string, embedding []float32) error
	SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]domain.RetrievedHit, error)
	DeleteByDocument(ctx context.Context, documentID string) (int, error)
	ListPending(ctx context.Context, limit int) ([]domain.IndexedUnit, error)
	CountPending(ctx context.Context) (int, error)
}

// RetrievalService indexes paragraph units and answers similarity
// queries against them. Index and search failures always surface to the
// caller as retrieval errors.
type RetrievalService struct {
	embedder EmbeddingClient
	units    UnitRepositoryInterface
}

func NewRetrievalService(embedder EmbeddingClient, units UnitRepositoryInterface) *RetrievalService {
	return &RetrievalService{embedder: embedder, units: units}
}

// Index embeds each unit's text and stores the vector. It stops at the
// first failure; units already embedded stay indexed, the rest remain
// pending for a later retry.
func (s *RetrievalService) Index(ctx context.Context, units []domain.IndexedUnit) error {
	for _, u := range units {
		embedding, err := s.embedder.GenerateEmbedding(ctx, u.Text)
		if err != nil {
			return domain.NewRetrievalError("index", err)
		}
		if err := s.units.SetEmbedding(ctx, u.DocumentID, u.ParagraphID, embedding); err != nil {
			return domain.NewRetrievalError("index", err)
		}
	}
	return nil
}

// Search returns the limit closest indexed paragraphs for the query,
// nearest first.
func (s *RetrievalService) Search(ctx context.Context, query string, limit int) ([]domain.RetrievedHit, error) {
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	ctx, span := telemetry.StartSpan(ctx, "RetrievalService.Search", telemetry.SpanAttributes{
		Query:     query,
		Operation: "search",
	})
	defer span.End()

	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewRetrievalError("search", err)
	}

	hits, err := s.units.SearchByEmbedding(ctx, embedding, limit)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewRetrievalError("search", err)
	}
	return hits, nil
}

// Delete removes a document's index entries and reports whether any
// existed.
func (s *RetrievalService) Delete(ctx context.Context, documentID string) (bool, error) {
	n, err := s.units.DeleteByDocument(ctx, documentID)
	if err != nil {
		return false, domain.NewRetrievalError("delete", err)
	}
	return n > 0, nil
}
