package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/doclens/doclens/internal/domain"
	"github.com/doclens/doclens/internal/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockIndexRemover mocks index deletion
type MockIndexRemover struct {
	mock.Mock
}

func (m *MockIndexRemover) Delete(ctx context.Context, documentID string) (bool, error) {
	args := m.Called(ctx, documentID)
	return args.Bool(0), args.Error(1)
}

func storedDoc(id string) *domain.Document {
	return &domain.Document{
		ID:         id,
		Filename:   "report.pdf",
		Kind:       domain.FileKindPDF,
		SizeBytes:  100,
		UploadedAt: time.Now().UTC(),
	}
}

func TestDocumentService_List(t *testing.T) {
	mockDocs := new(MockDocumentRepo)
	svc := NewDocumentService(mockDocs, new(MockIndexRemover), nil)

	ctx := context.Background()
	page := &DocumentPageResult{
		Items:      []*domain.Document{storedDoc("DOC001")},
		NextCursor: "next",
		HasMore:    true,
	}
	mockDocs.On("ListWithCursor", ctx, (*pagination.Cursor)(nil), 10).Return(page, nil)

	out, err := svc.List(ctx, ListDocumentsInput{Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, page.Items, out.Items)
	assert.Equal(t, "next", out.Cursor)
	assert.True(t, out.HasMore)
}

func TestDocumentService_List_InvalidCursor(t *testing.T) {
	svc := NewDocumentService(new(MockDocumentRepo), new(MockIndexRemover), nil)

	_, err := svc.List(context.Background(), ListDocumentsInput{Cursor: "not base64!!"})

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
}

func TestDocumentService_Delete_RemovesEverywhere(t *testing.T) {
	mockDocs := new(MockDocumentRepo)
	mockIndex := new(MockIndexRemover)
	mockRaw := new(MockRawStore)
	svc := NewDocumentService(mockDocs, mockIndex, mockRaw)

	ctx := context.Background()
	mockDocs.On("GetByID", ctx, "DOC001").Return(storedDoc("DOC001"), nil)
	mockIndex.On("Delete", mock.Anything, "DOC001").Return(true, nil)
	mockDocs.On("Delete", mock.Anything, "DOC001").Return(nil)
	mockRaw.On("DeleteObject", mock.Anything, "DOC001.pdf").Return(nil)

	err := svc.Delete(ctx, "DOC001")

	require.NoError(t, err)
	mockDocs.AssertExpectations(t)
	mockIndex.AssertExpectations(t)
	mockRaw.AssertExpectations(t)
}

func TestDocumentService_Delete_NotFound(t *testing.T) {
	mockDocs := new(MockDocumentRepo)
	svc := NewDocumentService(mockDocs, new(MockIndexRemover), nil)

	ctx := context.Background()
	mockDocs.On("GetByID", ctx, "DOC404").Return(nil, domain.ErrDocumentNotFound)

	err := svc.Delete(ctx, "DOC404")

	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestDocumentService_Delete_IndexFailurePropagates(t *testing.T) {
	mockDocs := new(MockDocumentRepo)
	mockIndex := new(MockIndexRemover)
	svc := NewDocumentService(mockDocs, mockIndex, nil)

	ctx := context.Background()
	mockDocs.On("GetByID", ctx, "DOC001").Return(storedDoc("DOC001"), nil)
	mockIndex.On("Delete", mock.Anything, "DOC001").Return(false, domain.NewRetrievalError("delete", errors.New("down")))

	err := svc.Delete(ctx, "DOC001")

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeRetrieval, domainErr.Code)
	mockDocs.AssertNotCalled(t, "Delete")
}

func TestDocumentService_Delete_RawFailureIsBestEffort(t *testing.T) {
	mockDocs := new(MockDocumentRepo)
	mockIndex := new(MockIndexRemover)
	mockRaw := new(MockRawStore)
	svc := NewDocumentService(mockDocs, mockIndex, mockRaw)

	ctx := context.Background()
	mockDocs.On("GetByID", ctx, "DOC001").Return(storedDoc("DOC001"), nil)
	mockIndex.On("Delete", mock.Anything, "DOC001").Return(true, nil)
	mockDocs.On("Delete", mock.Anything, "DOC001").Return(nil)
	mockRaw.On("DeleteObject", mock.Anything, "DOC001.pdf").Return(errors.New("bucket gone"))

	err := svc.Delete(ctx, "DOC001")

	assert.NoError(t, err)
}
