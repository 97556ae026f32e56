package extract

import (
	"context"
	"log"
	"os"
	"path/filepath"
)

// ocrImage runs tesseract over raster image bytes and returns the
// recognized text. Recognizer failures are logged and degrade to an
// empty string, never surfaced to the caller.
func (e *Extractor) ocrImage(ctx context.Context, content []byte) string {
	tmpDir, err := os.MkdirTemp("", "doclens-ocr-")
	if err != nil {
		log.Printf("extract: failed to create temp dir for ocr: %v", err)
		return ""
	}
	defer os.RemoveAll(tmpDir)

	imgPath := filepath.Join(tmpDir, "image")
	if err := os.WriteFile(imgPath, content, 0o600); err != nil {
		log.Printf("extract: failed to write temp image: %v", err)
		return ""
	}

	out, err := e.runner.Run(ctx, "tesseract", imgPath, "stdout")
	if err != nil {
		log.Printf("extract: ocr failed: %v", err)
		return ""
	}

	return string(out)
}
