package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type QueryAPIRequest struct {
	Query string `json:"query"`
}

type QueryAnswer struct {
	DocID     string `json:"doc_id"`
	Filename  string `json:"filename"`
	Answer    string `json:"answer"`
	Citation  string `json:"citation"`
	Page      int    `json:"page"`
	Paragraph int    `json:"paragraph"`
}

type QueryTheme struct {
	Name                string        `json:"name"`
	Summary             string        `json:"summary"`
	SupportingDocuments []QueryAnswer `json:"supporting_documents"`
	DocumentCount       int           `json:"document_count"`
}

type QueryThemes struct {
	Themes    []QueryTheme `json:"themes"`
	Synthesis string       `json:"synthesis"`
}

type QueryAPIResponse struct {
	Query             string        `json:"query"`
	Timestamp         string        `json:"timestamp"`
	Answers           []QueryAnswer `json:"answers"`
	Themes            QueryThemes   `json:"themes"`
	TotalDocsSearched int           `json:"total_docs_searched"`
}

// QueryCmd creates the query command.
func QueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Ask a question across all documents",
		Long:  "Retrieves relevant paragraphs, extracts per-document answers, and synthesizes cross-document themes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runQuery(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runQuery(cmd *cobra.Command, query string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/api/v1/chat/query", QueryAPIRequest{Query: query})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	var queryResp QueryAPIResponse
	if err := json.Unmarshal(resp.Data, &queryResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(queryResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	renderQueryResponse(&queryResp)
	return nil
}

func renderQueryResponse(r *QueryAPIResponse) {
	heading := color.New(color.FgCyan, color.Bold)
	docID := color.New(color.FgYellow)

	if len(r.Answers) > 0 {
		heading.Printf("Answers (%d documents searched)\n", r.TotalDocsSearched)
		for _, a := range r.Answers {
			fmt.Println(strings.Repeat("-", 60))
			docID.Printf("%s", a.DocID)
			fmt.Printf("  %s  [%s]\n", a.Filename, a.Citation)
			fmt.Println(a.Answer)
		}
		fmt.Println()
	}

	if len(r.Themes.Themes) > 0 {
		heading.Println("Themes")
		for i, t := range r.Themes.Themes {
			ids := make([]string, len(t.SupportingDocuments))
			for j, a := range t.SupportingDocuments {
				ids[j] = a.DocID
			}
			fmt.Printf("%d. %s", i+1, t.Name)
			if len(ids) > 0 {
				fmt.Printf(" (%s)", strings.Join(ids, ", "))
			}
			fmt.Println()
			fmt.Printf("   %s\n", t.Summary)
		}
		fmt.Println()
	}

	heading.Println("Synthesis")
	fmt.Println(r.Themes.Synthesis)
}
