package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// SearchAPIRequest represents the search API request.
type SearchAPIRequest struct {
	Query    string `json:"query"`
	NResults int    `json:"n_results,omitempty"`
}

type SearchHitMetadata struct {
	DocID       string `json:"doc_id"`
	ParagraphID string `json:"paragraph_id"`
	Filename    string `json:"filename"`
	Type        string `json:"type"`
	Size        int64  `json:"size"`
	UploadTime  string `json:"upload_time"`
	Page        int    `json:"page"`
	Paragraph   int    `json:"paragraph"`
}

type SearchHit struct {
	Text     string            `json:"text"`
	Metadata SearchHitMetadata `json:"metadata"`
	Distance float64           `json:"distance"`
}

// SearchAPIResponse represents the search API response.
type SearchAPIResponse struct {
	Results []SearchHit `json:"results"`
	Total   int         `json:"total"`
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search paragraphs by similarity",
		Long:  "Returns the raw ranked paragraphs for a query, without answer extraction or themes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSearch(cmd, args[0], limit, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, limit int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/api/v1/vector/search", SearchAPIRequest{
		Query:    query,
		NResults: limit,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var searchResp SearchAPIResponse
	if err := json.Unmarshal(resp.Data, &searchResp); err != nil {
		return fmt.Errorf("failed to parse search results: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(searchResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(searchResp.Results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results:\n\n", searchResp.Total)
	for i, hit := range searchResp.Results {
		text := hit.Text
		if len(text) > 200 {
			text = text[:197] + "..."
		}
		fmt.Printf("%d. %s  Page %d, Para %d  (distance %.4f)\n", i+1,
			hit.Metadata.DocID, hit.Metadata.Page, hit.Metadata.Paragraph, hit.Distance)
		fmt.Printf("   %s\n", text)
		if i < len(searchResp.Results)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}
