package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/doclens/doclens/internal/domain"
	"github.com/doclens/doclens/internal/pagination"
	"github.com/doclens/doclens/internal/telemetry"
)

// DocumentRepositoryInterface defines the repository interface for
// document persistence.
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}

// IdentifierAllocator issues document ids for a batch position.
type IdentifierAllocator interface {
	Next(ctx context.Context, existingCount, seqPos int) (string, error)
}

// TextExtractor turns raw file bytes into page-marked text.
type TextExtractor interface {
	Extract(ctx context.Context, content []byte, kind domain.FileKind) string
}

// Segmenter splits extracted text into addressable paragraphs.
type Segmenter func(text string) []domain.Paragraph

// RawStore keeps the original uploaded bytes. Optional; a nil store
// disables raw retention.
type RawStore interface {
	PutObject(ctx context.Context, key string, content []byte, contentType string) error
	DeleteObject(ctx context.Context, key string) error
}

// Indexer makes stored paragraph units searchable.
type Indexer interface {
	Index(ctx context.Context, units []domain.IndexedUnit) error
}

// UploadFile is one file of an upload batch.
type UploadFile struct {
	Filename string
	Content  []byte
}

// IngestService runs the upload pipeline: identify, extract, segment,
// persist, index. One file's failure never blocks the rest of the
// batch.
type IngestService struct {
	docs      DocumentRepositoryInterface
	allocator IdentifierAllocator
	extractor TextExtractor
	segment   Segmenter
	raw       RawStore
	indexer   Indexer
	txRunner  TxRunner
	now       func() time.Time
}

func NewIngestService(
	docs DocumentRepositoryInterface,
	allocator IdentifierAllocator,
	extractor TextExtractor,
	segment Segmenter,
	raw RawStore,
	indexer Indexer,
	txRunner TxRunner,
) *IngestService {
	return &IngestService{
		docs:      docs,
		allocator: allocator,
		extractor: extractor,
		segment:   segment,
		raw:       raw,
		indexer:   indexer,
		txRunner:  txRunner,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ProcessFiles ingests an upload batch and returns one result per file,
// in input order.
func (s *IngestService) ProcessFiles(ctx context.Context, files []UploadFile) []domain.FileResult {
	ctx, span := telemetry.StartSpan(ctx, "IngestService.ProcessFiles", telemetry.SpanAttributes{
		Operation: "ingest",
	})
	defer span.End()

	existingCount, err := s.docs.Count(ctx)
	if err != nil {
		log.Printf("ingest: failed to count documents, allocator falls back to issued numbers: %v", err)
		existingCount = 0
	}

	results := make([]domain.FileResult, 0, len(files))
	for i, f := range files {
		results = append(results, s.processFile(ctx, f, existingCount, i+1))
	}
	return results
}

func (s *IngestService) processFile(ctx context.Context, f UploadFile, existingCount, seqPos int) domain.FileResult {
	fail := func(msg string) domain.FileResult {
		return domain.FileResult{
			Filename: f.Filename,
			Status:   domain.FileStatusError,
			Message:  msg,
		}
	}

	if f.Filename == "" {
		return fail(domain.ErrMissingFilename.Message)
	}

	kind, err := domain.ParseFileKind(f.Filename)
	if err != nil {
		return fail(fmt.Sprintf("unsupported file format: %s", f.Filename))
	}

	docID, err := s.allocator.Next(ctx, existingCount, seqPos)
	if err != nil {
		log.Printf("ingest: id allocation failed for %s: %v", f.Filename, err)
		return fail("failed to allocate document id")
	}

	text := s.extractor.Extract(ctx, f.Content, kind)
	paragraphs := s.segment(text)

	doc := &domain.Document{
		ID:             docID,
		Filename:       f.Filename,
		Kind:           kind,
		SizeBytes:      int64(len(f.Content)),
		UploadedAt:     s.now(),
		FullText:       text,
		Paragraphs:     paragraphs,
		ParagraphCount: len(paragraphs),
	}

	if err := s.persist(ctx, doc); err != nil {
		log.Printf("ingest: failed to persist %s as %s: %v", f.Filename, docID, err)
		return fail("failed to store document")
	}

	if s.raw != nil {
		key := RawObjectKey(docID, kind)
		if err := s.raw.PutObject(ctx, key, f.Content, contentTypeFor(kind)); err != nil {
			// raw retention is best effort; the extracted text is durable
			log.Printf("ingest: failed to store raw object %s: %v", key, err)
		}
	}

	if err := s.indexer.Index(ctx, domain.UnitsForDocument(doc)); err != nil {
		// paragraphs stay pending; the background worker retries them
		log.Printf("ingest: indexing deferred for %s: %v", docID, err)
		return domain.FileResult{
			Document: doc,
			Filename: f.Filename,
			Status:   domain.FileStatusSuccess,
			Message:  fmt.Sprintf("stored %d paragraphs, indexing pending", len(paragraphs)),
		}
	}

	return domain.FileResult{
		Document: doc,
		Filename: f.Filename,
		Status:   domain.FileStatusSuccess,
		Message:  fmt.Sprintf("indexed %d paragraphs", len(paragraphs)),
	}
}

func (s *IngestService) persist(ctx context.Context, doc *domain.Document) error {
	if s.txRunner == nil {
		return s.docs.Create(ctx, doc)
	}
	return s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		return repos.Documents().Create(ctx, doc)
	})
}

// RawObjectKey is the storage key for a document's original bytes.
func RawObjectKey(docID string, kind domain.FileKind) string {
	return fmt.Sprintf("%s.%s", docID, kind)
}

func contentTypeFor(kind domain.FileKind) string {
	switch kind {
	case domain.FileKindPDF:
		return "application/pdf"
	case domain.FileKindTXT:
		return "text/plain"
	case domain.FileKindPNG:
		return "image/png"
	case domain.FileKindJPG, domain.FileKindJPEG:
		return "image/jpeg"
	}
	return "application/octet-stream"
}
