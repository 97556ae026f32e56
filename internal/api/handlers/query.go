package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/doclens/doclens/internal/api"
	"github.com/doclens/doclens/internal/domain"
)

type QueryProvider interface {
	Process(ctx context.Context, query string) (*domain.QueryResult, error)
}

type SearchProvider interface {
	Search(ctx context.Context, query string, limit int) ([]domain.RetrievedHit, error)
}

type QueryHandler struct {
	query     QueryProvider
	search    SearchProvider
	chatModel string
}

func NewQueryHandler(query QueryProvider, search SearchProvider, chatModel string) *QueryHandler {
	return &QueryHandler{query: query, search: search, chatModel: chatModel}
}

type QueryRequest struct {
	Query string `json:"query"`
}

type AnswerResponse struct {
	DocID     string `json:"doc_id"`
	Filename  string `json:"filename"`
	Answer    string `json:"answer"`
	Citation  string `json:"citation"`
	Page      int    `json:"page"`
	Paragraph int    `json:"paragraph"`
}

type ThemeResponse struct {
	Name                string           `json:"name"`
	Summary             string           `json:"summary"`
	SupportingDocuments []AnswerResponse `json:"supporting_documents"`
	DocumentCount       int              `json:"document_count"`
}

type ThemeAnalysisResponse struct {
	Themes    []ThemeResponse `json:"themes"`
	Synthesis string          `json:"synthesis"`
}

type QueryResponse struct {
	Query             string                `json:"query"`
	Timestamp         string                `json:"timestamp"`
	Answers           []AnswerResponse      `json:"answers"`
	Themes            ThemeAnalysisResponse `json:"themes"`
	TotalDocsSearched int                   `json:"total_docs_searched"`
}

func answerToResponse(a domain.Answer) AnswerResponse {
	return AnswerResponse{
		DocID:     a.DocumentID,
		Filename:  a.Filename,
		Answer:    a.AnswerText,
		Citation:  a.Citation,
		Page:      a.Page,
		Paragraph: a.Paragraph,
	}
}

func queryResultToResponse(r *domain.QueryResult) QueryResponse {
	answers := make([]AnswerResponse, len(r.Answers))
	for i, a := range r.Answers {
		answers[i] = answerToResponse(a)
	}

	themes := make([]ThemeResponse, len(r.Themes))
	for i, t := range r.Themes {
		supporting := make([]AnswerResponse, len(t.SupportingAnswers))
		for j, a := range t.SupportingAnswers {
			supporting[j] = answerToResponse(a)
		}
		themes[i] = ThemeResponse{
			Name:                t.Name,
			Summary:             t.Summary,
			SupportingDocuments: supporting,
			DocumentCount:       t.SupportingCount,
		}
	}

	return QueryResponse{
		Query:     r.Query,
		Timestamp: r.Timestamp.Format(time.RFC3339),
		Answers:   answers,
		Themes: ThemeAnalysisResponse{
			Themes:    themes,
			Synthesis: r.Synthesis,
		},
		TotalDocsSearched: r.TotalDocsSearched,
	}
}

func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	result, err := h.query.Process(r.Context(), req.Query)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, queryResultToResponse(result))
}

type SearchRequest struct {
	Query    string `json:"query"`
	NResults int    `json:"n_results"`
}

type HitMetadataResponse struct {
	DocID       string `json:"doc_id"`
	ParagraphID string `json:"paragraph_id"`
	Filename    string `json:"filename"`
	Type        string `json:"type"`
	Size        int64  `json:"size"`
	UploadTime  string `json:"upload_time"`
	Page        int    `json:"page"`
	Paragraph   int    `json:"paragraph"`
}

type HitResponse struct {
	Text     string              `json:"text"`
	Metadata HitMetadataResponse `json:"metadata"`
	Distance float64             `json:"distance"`
}

type SearchResponse struct {
	Results []HitResponse `json:"results"`
	Total   int           `json:"total"`
}

func hitToResponse(h domain.RetrievedHit) HitResponse {
	return HitResponse{
		Text: h.Text,
		Metadata: HitMetadataResponse{
			DocID:       h.Unit.DocumentID,
			ParagraphID: h.Unit.ParagraphID,
			Filename:    h.Unit.Filename,
			Type:        string(h.Unit.Kind),
			Size:        h.Unit.SizeBytes,
			UploadTime:  h.Unit.UploadedAt.Format(time.RFC3339),
			Page:        h.Unit.Page,
			Paragraph:   h.Unit.Index,
		},
		Distance: h.Distance,
	}
}

func (h *QueryHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	hits, err := h.search.Search(r.Context(), req.Query, req.NResults)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	results := make([]HitResponse, len(hits))
	for i, hit := range hits {
		results[i] = hitToResponse(hit)
	}

	api.Success(w, http.StatusOK, SearchResponse{
		Results: results,
		Total:   len(results),
	})
}

type HealthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}

func (h *QueryHandler) Health(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, HealthResponse{Status: "healthy", Model: h.chatModel})
}
