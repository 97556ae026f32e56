package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// UploadResult is one file's outcome in the upload response.
type UploadResult struct {
	ID             string `json:"id,omitempty"`
	Filename       string `json:"filename"`
	Type           string `json:"type,omitempty"`
	Size           int64  `json:"size,omitempty"`
	UploadTime     string `json:"upload_time,omitempty"`
	ParagraphCount int    `json:"paragraph_count,omitempty"`
	Status         string `json:"status"`
	Message        string `json:"message"`
}

type UploadAPIResponse struct {
	Results []UploadResult `json:"results"`
}

// UploadCmd creates the upload command.
func UploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload documents",
		Long: `Upload one or more documents (pdf, txt, png, jpg, jpeg) for indexing.

Examples:
  doclens upload report.pdf
  doclens upload notes.txt scan1.png scan2.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runUpload(cmd, args, outputJSON)
		},
	}

	return cmd
}

func runUpload(cmd *cobra.Command, paths []string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, path := range paths {
		if err := addFilePart(mw, path); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finalize upload body: %w", err)
	}

	size := int64(buf.Len())
	var body io.Reader = &buf
	if !outputJSON {
		bar := progressbar.DefaultBytes(size, "uploading")
		body = io.TeeReader(&buf, bar)
	}

	resp, err := api.PostMultipart("/api/v1/documents/upload", body, size, mw.FormDataContentType())
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	var uploadResp UploadAPIResponse
	if err := json.Unmarshal(resp.Data, &uploadResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(uploadResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println()
	failed := 0
	for _, r := range uploadResp.Results {
		if r.Status == "success" {
			color.Green("✓ %s → %s (%s)", r.Filename, r.ID, r.Message)
		} else {
			failed++
			color.Red("✗ %s: %s", r.Filename, r.Message)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(uploadResp.Results))
	}
	return nil
}

func addFilePart(mw *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	part, err := mw.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to create form part for %s: %w", path, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}
