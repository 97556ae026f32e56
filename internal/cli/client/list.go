package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// ListItemResponse represents a single document in the list response.
type ListItemResponse struct {
	ID             string `json:"id"`
	Filename       string `json:"filename"`
	Type           string `json:"type"`
	Size           int64  `json:"size"`
	UploadTime     string `json:"upload_time"`
	ParagraphCount int    `json:"paragraph_count"`
}

// ListAPIResponse represents the list API response.
type ListAPIResponse struct {
	Items   []ListItemResponse `json:"items"`
	Cursor  string             `json:"cursor,omitempty"`
	HasMore bool               `json:"has_more"`
}

// ListCmd creates the document list command.
func ListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runList(cmd, limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runList(cmd *cobra.Command, limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	resp, err := api.Get("/api/v1/documents?" + params.Encode())
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	var listResp ListAPIResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(listResp.Items) == 0 {
		fmt.Println("No documents uploaded.")
		return nil
	}

	fmt.Printf("%-8s %-30s %-6s %10s %8s  %s\n", "ID", "FILENAME", "TYPE", "SIZE", "PARAS", "UPLOADED")
	for _, item := range listResp.Items {
		filename := item.Filename
		if len(filename) > 30 {
			filename = filename[:27] + "..."
		}
		fmt.Printf("%-8s %-30s %-6s %10d %8d  %s\n",
			item.ID, filename, item.Type, item.Size, item.ParagraphCount, item.UploadTime)
	}

	if listResp.HasMore && listResp.Cursor != "" {
		fmt.Printf("\nMore results available. Use --cursor %s\n", listResp.Cursor)
	}

	return nil
}
