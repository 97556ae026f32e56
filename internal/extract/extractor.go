// Package extract converts raw uploaded file bytes into a single
// normalized text string tagged by source page. PDF page text comes
// from pdftotext, embedded raster images from pdfimages, and OCR from
// tesseract, all behind a CommandRunner so tests inject canned output.
//
// Extraction never fails a whole document for one bad page or image:
// unit-level failures are logged and the result degrades to partial
// (or empty) text.
package extract

import (
	"context"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/doclens/doclens/internal/domain"
)

// Extractor turns raw file bytes plus a declared kind into normalized text.
type Extractor struct {
	runner CommandRunner
}

// New creates an Extractor backed by the system tools.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates an Extractor with an injected CommandRunner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// Extract returns the normalized text for the given content. The result
// is right-trimmed; failures degrade to an empty string and are logged,
// never returned.
func (e *Extractor) Extract(ctx context.Context, content []byte, kind domain.FileKind) string {
	switch {
	case kind == domain.FileKindTXT:
		return e.extractPlainText(content)
	case kind == domain.FileKindPDF:
		return e.extractPDF(ctx, content)
	case kind.IsImage():
		return strings.TrimSpace(e.ocrImage(ctx, content))
	default:
		log.Printf("extract: unsupported file kind %q", kind)
		return ""
	}
}

// extractPlainText decodes TXT content as UTF-8 verbatim. Invalid byte
// sequences degrade to an empty string rather than aborting the batch.
func (e *Extractor) extractPlainText(content []byte) string {
	if !utf8.Valid(content) {
		log.Printf("extract: invalid UTF-8 in text file, returning empty text")
		return ""
	}
	return string(content)
}
