package client

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type ChatHealthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}

// StatusCmd creates the status command.
func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runStatus(cmd, outputJSON)
		},
	}

	return cmd
}

func runStatus(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	if _, err := api.Get("/health"); err != nil {
		if outputJSON {
			fmt.Println(`{"status":"unreachable"}`)
		} else {
			color.Red("✗ server unreachable: %v", err)
		}
		return err
	}

	raw, err := api.GetRaw("/api/v1/chat/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	var health ChatHealthResponse
	if err := json.Unmarshal(raw, &health); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(health, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	color.Green("✓ server %s (model %s)", health.Status, health.Model)
	return nil
}
