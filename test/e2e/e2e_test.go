//go:build e2e

package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reportText = `Solar panel efficiency degrades by roughly half a percent per year under normal operating conditions in temperate climates.

Regular cleaning of panel surfaces restores between three and five percent of lost output, making quarterly maintenance visits worthwhile for most installations.`

func TestDocumentPipeline(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("upload assigns identifier and segments paragraphs", func(t *testing.T) {
		resp, err := env.UploadFiles(map[string][]byte{
			"solar_report.txt": []byte(reportText),
		})
		require.NoError(t, err)

		var upload struct {
			Results []struct {
				ID             string `json:"id"`
				Filename       string `json:"filename"`
				Type           string `json:"type"`
				ParagraphCount int    `json:"paragraph_count"`
				Status         string `json:"status"`
			} `json:"results"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &upload))
		require.Len(t, upload.Results, 1)

		result := upload.Results[0]
		assert.Equal(t, "success", result.Status)
		assert.Equal(t, "DOC001", result.ID)
		assert.Equal(t, "solar_report.txt", result.Filename)
		assert.Equal(t, "txt", result.Type)
		assert.Equal(t, 2, result.ParagraphCount)
	})

	t.Run("list and get return the stored document", func(t *testing.T) {
		resp, err := env.Get("/api/v1/documents")
		require.NoError(t, err)

		var list struct {
			Items []struct {
				ID             string `json:"id"`
				Filename       string `json:"filename"`
				ParagraphCount int    `json:"paragraph_count"`
			} `json:"items"`
			HasMore bool `json:"has_more"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &list))
		require.Len(t, list.Items, 1)
		assert.Equal(t, "DOC001", list.Items[0].ID)
		assert.Equal(t, 2, list.Items[0].ParagraphCount)
		assert.False(t, list.HasMore)

		resp, err = env.Get("/api/v1/documents/DOC001")
		require.NoError(t, err)

		var doc struct {
			Filename string `json:"filename"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &doc))
		assert.Equal(t, "solar_report.txt", doc.Filename)
	})

	t.Run("vector search finds the matching paragraph", func(t *testing.T) {
		resp, err := env.Post("/api/v1/vector/search", map[string]interface{}{
			"query":     "cleaning panel surfaces restores lost output",
			"n_results": 5,
		})
		require.NoError(t, err)

		var search struct {
			Results []struct {
				Text     string `json:"text"`
				Metadata struct {
					DocID     string `json:"doc_id"`
					Page      int    `json:"page"`
					Paragraph int    `json:"paragraph"`
				} `json:"metadata"`
				Distance float64 `json:"distance"`
			} `json:"results"`
			Total int `json:"total"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &search))
		require.Equal(t, 2, search.Total)

		top := search.Results[0]
		assert.Equal(t, "DOC001", top.Metadata.DocID)
		assert.Equal(t, 1, top.Metadata.Page)
		assert.Contains(t, top.Text, "cleaning")
		assert.Equal(t, 2, top.Metadata.Paragraph)
		assert.Less(t, top.Distance, search.Results[1].Distance)
	})

	t.Run("chat query answers and synthesizes themes", func(t *testing.T) {
		resp, err := env.Post("/api/v1/chat/query", map[string]interface{}{
			"query": "How much output does panel cleaning restore?",
		})
		require.NoError(t, err)

		var query struct {
			Query   string `json:"query"`
			Answers []struct {
				DocID    string `json:"doc_id"`
				Filename string `json:"filename"`
				Answer   string `json:"answer"`
				Citation string `json:"citation"`
				Page     int    `json:"page"`
			} `json:"answers"`
			Themes struct {
				Themes []struct {
					Name                string `json:"name"`
					Summary             string `json:"summary"`
					DocumentCount       int    `json:"document_count"`
					SupportingDocuments []struct {
						DocID string `json:"doc_id"`
					} `json:"supporting_documents"`
				} `json:"themes"`
				Synthesis string `json:"synthesis"`
			} `json:"themes"`
			TotalDocsSearched int `json:"total_docs_searched"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &query))

		assert.Equal(t, "How much output does panel cleaning restore?", query.Query)
		assert.Equal(t, 1, query.TotalDocsSearched)
		require.Len(t, query.Answers, 1)
		assert.Equal(t, "DOC001", query.Answers[0].DocID)
		assert.Equal(t, "solar_report.txt", query.Answers[0].Filename)
		assert.NotEmpty(t, query.Answers[0].Answer)
		assert.Contains(t, query.Answers[0].Citation, "Page 1")

		require.Len(t, query.Themes.Themes, 1)
		theme := query.Themes.Themes[0]
		assert.Equal(t, "Shared Findings", theme.Name)
		assert.Equal(t, 1, theme.DocumentCount)
		require.Len(t, theme.SupportingDocuments, 1)
		assert.Equal(t, "DOC001", theme.SupportingDocuments[0].DocID)
		assert.NotEmpty(t, query.Themes.Synthesis)
	})

	t.Run("chat health reports the configured model", func(t *testing.T) {
		resp, err := http.Get(env.ServerURL + "/api/v1/chat/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		var health struct {
			Status string `json:"status"`
			Model  string `json:"model"`
		}
		require.NoError(t, json.Unmarshal(body, &health))
		assert.Equal(t, "healthy", health.Status)
		assert.Equal(t, "fake-model", health.Model)
	})

	t.Run("delete removes the document and its index entries", func(t *testing.T) {
		resp, err := env.Delete("/api/v1/documents/DOC001")
		require.NoError(t, err)

		var deleted struct {
			Deleted bool   `json:"deleted"`
			ID      string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &deleted))
		assert.True(t, deleted.Deleted)
		assert.Equal(t, "DOC001", deleted.ID)

		resp, err = env.Post("/api/v1/vector/search", map[string]interface{}{
			"query": "cleaning panel surfaces",
		})
		require.NoError(t, err)

		var search struct {
			Total int `json:"total"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &search))
		assert.Equal(t, 0, search.Total)

		_, err = env.Get("/api/v1/documents/DOC001")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("delete of unknown document returns 404", func(t *testing.T) {
		_, err := env.Delete("/api/v1/documents/DOC999")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})
}

func TestQueryAcrossDocuments(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	files := map[string][]byte{
		"north_region.txt": []byte("Wind turbine output in the northern region exceeded projections by twelve percent during the first quarter of the year."),
		"south_region.txt": []byte("Wind turbine output in the southern region fell short of projections by four percent, mostly due to scheduled gearbox maintenance."),
	}
	_, err := env.UploadFiles(files)
	require.NoError(t, err)

	resp, err := env.Post("/api/v1/chat/query", map[string]interface{}{
		"query": "How did wind turbine output compare to projections?",
	})
	require.NoError(t, err)

	var query struct {
		Answers []struct {
			DocID string `json:"doc_id"`
		} `json:"answers"`
		Themes struct {
			Themes []struct {
				DocumentCount int `json:"document_count"`
			} `json:"themes"`
		} `json:"themes"`
		TotalDocsSearched int `json:"total_docs_searched"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &query))

	assert.Equal(t, 2, query.TotalDocsSearched)
	require.Len(t, query.Answers, 2)

	seen := make(map[string]bool)
	for _, a := range query.Answers {
		seen[a.DocID] = true
	}
	assert.True(t, seen["DOC001"])
	assert.True(t, seen["DOC002"])

	require.Len(t, query.Themes.Themes, 1)
	assert.Equal(t, 2, query.Themes.Themes[0].DocumentCount)
}

func TestCLISmoke(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	env.BuildBinaries()

	workDir := t.TempDir()
	reportPath := filepath.Join(workDir, "findings.txt")
	require.NoError(t, os.WriteFile(reportPath, []byte(reportText), 0o644))

	out, err := env.RunDoclens(workDir, "status")
	require.NoError(t, err, "status output: %s", out)
	assert.Contains(t, out, "fake-model")

	out, err = env.RunDoclens(workDir, "upload", "findings.txt", "--output")
	require.NoError(t, err, "upload output: %s", out)
	assert.Contains(t, out, "DOC001")

	out, err = env.RunDoclens(workDir, "list")
	require.NoError(t, err, "list output: %s", out)
	assert.Contains(t, out, "findings.txt")

	out, err = env.RunDoclens(workDir, "delete", "DOC001")
	require.NoError(t, err, "delete output: %s", out)
	assert.Contains(t, out, "DOC001")

	out, err = env.RunDoclens(workDir, "delete", "DOC001")
	require.Error(t, err)
	assert.True(t, strings.Contains(out, "404") || strings.Contains(fmt.Sprint(err), "exit"),
		"expected failure output, got: %s", out)
}
