package client

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type DeleteAPIResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// DeleteCmd creates the delete command.
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document by ID",
		Long:  "Deletes the document, its paragraphs, its index entries, and the stored original.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDelete(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runDelete(cmd *cobra.Command, id string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Delete("/api/v1/documents/" + id)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	var deleteResp DeleteAPIResponse
	if err := json.Unmarshal(resp.Data, &deleteResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(deleteResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	color.Green("✓ deleted %s", deleteResp.ID)
	return nil
}
