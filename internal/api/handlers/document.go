package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/doclens/doclens/internal/api"
	"github.com/doclens/doclens/internal/domain"
	"github.com/doclens/doclens/internal/service"
	"github.com/go-chi/chi/v5"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing;
// larger parts spill to temp files.
const maxUploadMemory = 32 << 20

type IngestProvider interface {
	ProcessFiles(ctx context.Context, files []service.UploadFile) []domain.FileResult
}

type DocumentProvider interface {
	List(ctx context.Context, input service.ListDocumentsInput) (*service.ListDocumentsOutput, error)
	Get(ctx context.Context, id string) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
}

type DocumentHandler struct {
	ingest IngestProvider
	docs   DocumentProvider
}

func NewDocumentHandler(ingest IngestProvider, docs DocumentProvider) *DocumentHandler {
	return &DocumentHandler{ingest: ingest, docs: docs}
}

type FileResultResponse struct {
	ID             string `json:"id,omitempty"`
	Filename       string `json:"filename"`
	Type           string `json:"type,omitempty"`
	Size           int64  `json:"size,omitempty"`
	UploadTime     string `json:"upload_time,omitempty"`
	ParagraphCount int    `json:"paragraph_count,omitempty"`
	Status         string `json:"status"`
	Message        string `json:"message"`
}

type UploadResponse struct {
	Results []FileResultResponse `json:"results"`
}

func fileResultToResponse(r domain.FileResult) FileResultResponse {
	resp := FileResultResponse{
		Filename: r.Filename,
		Status:   string(r.Status),
		Message:  r.Message,
	}
	if r.Document != nil {
		resp.ID = r.Document.ID
		resp.Type = string(r.Document.Kind)
		resp.Size = r.Document.SizeBytes
		resp.UploadTime = r.Document.UploadedAt.Format(time.RFC3339)
		resp.ParagraphCount = r.Document.ParagraphCount
	}
	return resp
}

func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	defer r.MultipartForm.RemoveAll()

	parts := r.MultipartForm.File["files"]
	if len(parts) == 0 {
		api.Error(w, http.StatusBadRequest, "no files provided")
		return
	}

	files := make([]service.UploadFile, 0, len(parts))
	for _, part := range parts {
		f, err := part.Open()
		if err != nil {
			api.Error(w, http.StatusBadRequest, "failed to read uploaded file")
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			api.Error(w, http.StatusBadRequest, "failed to read uploaded file")
			return
		}
		files = append(files, service.UploadFile{
			Filename: part.Filename,
			Content:  content,
		})
	}

	results := h.ingest.ProcessFiles(r.Context(), files)

	responses := make([]FileResultResponse, len(results))
	for i, res := range results {
		responses[i] = fileResultToResponse(res)
		if res.Status == domain.FileStatusError {
			log.Printf("upload: %s: %s", res.Filename, res.Message)
		}
	}

	api.Success(w, http.StatusOK, UploadResponse{Results: responses})
}

type DocumentResponse struct {
	ID             string `json:"id"`
	Filename       string `json:"filename"`
	Type           string `json:"type"`
	Size           int64  `json:"size"`
	UploadTime     string `json:"upload_time"`
	ParagraphCount int    `json:"paragraph_count"`
}

func documentToResponse(d *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:             d.ID,
		Filename:       d.Filename,
		Type:           string(d.Kind),
		Size:           d.SizeBytes,
		UploadTime:     d.UploadedAt.Format(time.RFC3339),
		ParagraphCount: d.ParagraphCount,
	}
}

type DocumentListResponse struct {
	Items   []*DocumentResponse `json:"items"`
	Cursor  string              `json:"cursor,omitempty"`
	HasMore bool                `json:"has_more"`
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")
	limitStr := r.URL.Query().Get("limit")
	limit := 20
	if limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	output, err := h.docs.List(r.Context(), service.ListDocumentsInput{
		Cursor: cursor,
		Limit:  limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*DocumentResponse, len(output.Items))
	for i, d := range output.Items {
		responses[i] = documentToResponse(d)
	}

	api.Success(w, http.StatusOK, DocumentListResponse{
		Items:   responses,
		Cursor:  output.Cursor,
		HasMore: output.HasMore,
	})
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	doc, err := h.docs.Get(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(doc))
}

type DeleteDocumentResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.docs.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DeleteDocumentResponse{Deleted: true, ID: id})
}
