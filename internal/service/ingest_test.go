package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/doclens/doclens/internal/domain"
	"github.com/doclens/doclens/internal/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDocumentRepo mocks the document repository
type MockDocumentRepo struct {
	mock.Mock
}

func (m *MockDocumentRepo) Create(ctx context.Context, d *domain.Document) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocumentRepo) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DocumentPageResult), args.Error(1)
}

func (m *MockDocumentRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// seqAllocator issues sequential ids the way the production allocator
// does for a fresh batch.
type seqAllocator struct {
	calls [][2]int
	fail  bool
}

func (a *seqAllocator) Next(_ context.Context, existingCount, seqPos int) (string, error) {
	if a.fail {
		return "", errors.New("registry unavailable")
	}
	a.calls = append(a.calls, [2]int{existingCount, seqPos})
	return fmt.Sprintf("DOC%03d", existingCount+seqPos), nil
}

// stubExtractor returns a canned page-marked text per file size
type stubExtractor struct {
	text string
}

func (e *stubExtractor) Extract(_ context.Context, _ []byte, _ domain.FileKind) string {
	return e.text
}

// MockIndexer mocks the retrieval indexer
type MockIndexer struct {
	mock.Mock
}

func (m *MockIndexer) Index(ctx context.Context, units []domain.IndexedUnit) error {
	args := m.Called(ctx, units)
	return args.Error(0)
}

// MockRawStore mocks raw object storage
type MockRawStore struct {
	mock.Mock
}

func (m *MockRawStore) PutObject(ctx context.Context, key string, content []byte, contentType string) error {
	args := m.Called(ctx, key, content, contentType)
	return args.Error(0)
}

func (m *MockRawStore) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func stubSegmenter(text string) []domain.Paragraph {
	if text == "" {
		return nil
	}
	return []domain.Paragraph{{ID: "p1_1", Page: 1, Index: 1, Text: text}}
}

func newTestIngest(docs *MockDocumentRepo, alloc IdentifierAllocator, indexer Indexer, raw RawStore) *IngestService {
	return NewIngestService(docs, alloc, &stubExtractor{text: "extracted body"}, stubSegmenter, raw, indexer, nil)
}

func TestIngestService_ProcessFiles_Success(t *testing.T) {
	mockDocs := new(MockDocumentRepo)
	mockIndexer := new(MockIndexer)
	alloc := &seqAllocator{}
	svc := newTestIngest(mockDocs, alloc, mockIndexer, nil)

	ctx := context.Background()
	mockDocs.On("Count", ctx).Return(0, nil)
	mockDocs.On("Create", ctx, mock.AnythingOfType("*domain.Document")).Return(nil)
	mockIndexer.On("Index", ctx, mock.AnythingOfType("[]domain.IndexedUnit")).Return(nil)

	results := svc.ProcessFiles(ctx, []UploadFile{
		{Filename: "a.txt", Content: []byte("alpha")},
		{Filename: "b.pdf", Content: []byte("beta")},
	})

	require.Len(t, results, 2)
	assert.Equal(t, domain.FileStatusSuccess, results[0].Status)
	assert.Equal(t, "DOC001", results[0].Document.ID)
	assert.Equal(t, domain.FileKindTXT, results[0].Document.Kind)
	assert.Equal(t, domain.FileStatusSuccess, results[1].Status)
	assert.Equal(t, "DOC002", results[1].Document.ID)
	assert.Equal(t, domain.FileKindPDF, results[1].Document.Kind)

	// batch positions are 1-based over a single count snapshot
	assert.Equal(t, [][2]int{{0, 1}, {0, 2}}, alloc.calls)
}

func TestIngestService_ProcessFiles_UnsupportedKindIsolated(t *testing.T) {
	mockDocs := new(MockDocumentRepo)
	mockIndexer := new(MockIndexer)
	svc := newTestIngest(mockDocs, &seqAllocator{}, mockIndexer, nil)

	ctx := context.Background()
	mockDocs.On("Count", ctx).Return(0, nil)
	mockDocs.On("Create", ctx, mock.AnythingOfType("*domain.Document")).Return(nil)
	mockIndexer.On("Index", ctx, mock.AnythingOfType("[]domain.IndexedUnit")).Return(nil)

	results := svc.ProcessFiles(ctx, []UploadFile{
		{Filename: "notes.docx", Content: []byte("nope")},
		{Filename: "ok.txt", Content: []byte("fine")},
	})

	require.Len(t, results, 2)
	assert.Equal(t, domain.FileStatusError, results[0].Status)
	assert.Nil(t, results[0].Document)
	assert.Contains(t, results[0].Message, "unsupported file format")
	assert.Equal(t, domain.FileStatusSuccess, results[1].Status)
}

func TestIngestService_ProcessFiles_MissingFilename(t *testing.T) {
	mockDocs := new(MockDocumentRepo)
	svc := newTestIngest(mockDocs, &seqAllocator{}, new(MockIndexer), nil)

	ctx := context.Background()
	mockDocs.On("Count", ctx).Return(0, nil)

	results := svc.ProcessFiles(ctx, []UploadFile{{Filename: "", Content: []byte("x")}})

	require.Len(t, results, 1)
	assert.Equal(t, domain.FileStatusError, results[0].Status)
}

func TestIngestService_ProcessFiles_PersistFailureIsolated(t *testing.T) {
	mockDocs := new(MockDocumentRepo)
	mockIndexer := new(MockIndexer)
	svc := newTestIngest(mockDocs, &seqAllocator{}, mockIndexer, nil)

	ctx := context.Background()
	mockDocs.On("Count", ctx).Return(0, nil)
	mockDocs.On("Create", ctx, mock.MatchedBy(func(d *domain.Document) bool {
		return d.Filename == "bad.txt"
	})).Return(errors.New("constraint violation"))
	mockDocs.On("Create", ctx, mock.MatchedBy(func(d *domain.Document) bool {
		return d.Filename == "good.txt"
	})).Return(nil)
	mockIndexer.On("Index", ctx, mock.AnythingOfType("[]domain.IndexedUnit")).Return(nil)

	results := svc.ProcessFiles(ctx, []UploadFile{
		{Filename: "bad.txt", Content: []byte("x")},
		{Filename: "good.txt", Content: []byte("y")},
	})

	require.Len(t, results, 2)
	assert.Equal(t, domain.FileStatusError, results[0].Status)
	assert.Equal(t, domain.FileStatusSuccess, results[1].Status)
}

func TestIngestService_ProcessFiles_IndexingDeferredOnFailure(t *testing.T) {
	mockDocs := new(MockDocumentRepo)
	mockIndexer := new(MockIndexer)
	svc := newTestIngest(mockDocs, &seqAllocator{}, mockIndexer, nil)

	ctx := context.Background()
	mockDocs.On("Count", ctx).Return(0, nil)
	mockDocs.On("Create", ctx, mock.AnythingOfType("*domain.Document")).Return(nil)
	mockIndexer.On("Index", ctx, mock.AnythingOfType("[]domain.IndexedUnit")).
		Return(domain.NewRetrievalError("index", errors.New("backend down")))

	results := svc.ProcessFiles(ctx, []UploadFile{{Filename: "a.txt", Content: []byte("alpha")}})

	require.Len(t, results, 1)
	// the document is durable; only its index entries are pending
	assert.Equal(t, domain.FileStatusSuccess, results[0].Status)
	assert.Contains(t, results[0].Message, "indexing pending")
}

func TestIngestService_ProcessFiles_AllocatorFailure(t *testing.T) {
	mockDocs := new(MockDocumentRepo)
	svc := newTestIngest(mockDocs, &seqAllocator{fail: true}, new(MockIndexer), nil)

	ctx := context.Background()
	mockDocs.On("Count", ctx).Return(0, nil)

	results := svc.ProcessFiles(ctx, []UploadFile{{Filename: "a.txt", Content: []byte("alpha")}})

	require.Len(t, results, 1)
	assert.Equal(t, domain.FileStatusError, results[0].Status)
}

func TestIngestService_ProcessFiles_StoresRawObject(t *testing.T) {
	mockDocs := new(MockDocumentRepo)
	mockIndexer := new(MockIndexer)
	mockRaw := new(MockRawStore)
	svc := newTestIngest(mockDocs, &seqAllocator{}, mockIndexer, mockRaw)

	ctx := context.Background()
	content := []byte("alpha")
	mockDocs.On("Count", ctx).Return(4, nil)
	mockDocs.On("Create", ctx, mock.AnythingOfType("*domain.Document")).Return(nil)
	mockRaw.On("PutObject", ctx, "DOC005.txt", content, "text/plain").Return(nil)
	mockIndexer.On("Index", ctx, mock.AnythingOfType("[]domain.IndexedUnit")).Return(nil)

	results := svc.ProcessFiles(ctx, []UploadFile{{Filename: "a.txt", Content: content}})

	require.Len(t, results, 1)
	assert.Equal(t, domain.FileStatusSuccess, results[0].Status)
	mockRaw.AssertExpectations(t)
}
