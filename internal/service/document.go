package service

import (
	"context"
	"errors"
	"log"

	"github.com/doclens/doclens/internal/domain"
	"github.com/doclens/doclens/internal/pagination"
	"github.com/doclens/doclens/internal/telemetry"
)

// IndexRemover clears a document's entries from the search index.
type IndexRemover interface {
	Delete(ctx context.Context, documentID string) (bool, error)
}

// DocumentService handles document listing, lookup and removal.
type DocumentService struct {
	docs  DocumentRepositoryInterface
	index IndexRemover
	raw   RawStore
}

func NewDocumentService(docs DocumentRepositoryInterface, index IndexRemover, raw RawStore) *DocumentService {
	return &DocumentService{docs: docs, index: index, raw: raw}
}

// DocumentPageResult is one page of a cursor-paginated document
// listing, as produced by the repository.
type DocumentPageResult struct {
	Items      []*domain.Document
	NextCursor string
	HasMore    bool
}

type ListDocumentsInput struct {
	Cursor string
	Limit  int
}

type ListDocumentsOutput struct {
	Items   []*domain.Document
	Cursor  string
	HasMore bool
}

func (s *DocumentService) List(ctx context.Context, input ListDocumentsInput) (*ListDocumentsOutput, error) {
	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	page, err := s.docs.ListWithCursor(ctx, cursor, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ListDocumentsOutput{
		Items:   page.Items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	}, nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.docs.GetByID(ctx, id)
}

// Delete removes a document everywhere: index entries, the stored
// document with its paragraphs, and the raw object.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Delete", telemetry.SpanAttributes{
		DocumentID: id,
		Operation:  "delete",
	})
	defer span.End()

	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return err
	}

	indexDeleted, err := s.index.Delete(ctx, id)
	if err != nil {
		span.SetError(err)
		return err
	}
	if !indexDeleted {
		log.Printf("document: no index entries for %s at delete time", id)
	}

	if err := s.docs.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrDocumentNotFound) {
		span.SetError(err)
		return err
	}

	if s.raw != nil {
		key := RawObjectKey(doc.ID, doc.Kind)
		if err := s.raw.DeleteObject(ctx, key); err != nil {
			log.Printf("document: failed to delete raw object %s: %v", key, err)
		}
	}

	return nil
}
