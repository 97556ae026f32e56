package extract

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// pageDelimiter separates pages in pdftotext output
const pageDelimiter = "\f"

// extractPDF emits, per page in order, a "[Page N]" header followed by
// the page's text, then an "[Image Text Page N]" block for every
// embedded raster image on that page whose OCR output is non-empty.
// Image blocks are interleaved per page, not batched at the end.
func (e *Extractor) extractPDF(ctx context.Context, content []byte) string {
	tmpDir, err := os.MkdirTemp("", "doclens-pdf-")
	if err != nil {
		log.Printf("extract: failed to create temp dir: %v", err)
		return ""
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(pdfPath, content, 0o600); err != nil {
		log.Printf("extract: failed to write temp pdf: %v", err)
		return ""
	}

	pages, err := e.pdfPageTexts(ctx, pdfPath)
	if err != nil {
		log.Printf("extract: pdf text extraction failed: %v", err)
		return ""
	}

	imageText := e.pdfImageTexts(ctx, pdfPath, tmpDir)

	var b strings.Builder
	for i, pageText := range pages {
		pageNum := i + 1
		fmt.Fprintf(&b, "[Page %d]\n%s\n\n", pageNum, pageText)
		for _, ocr := range imageText[pageNum] {
			fmt.Fprintf(&b, "[Image Text Page %d]\n%s\n\n", pageNum, ocr)
		}
	}

	return strings.TrimSpace(b.String())
}

// pdfPageTexts runs pdftotext and splits its output into per-page text.
func (e *Extractor) pdfPageTexts(ctx context.Context, pdfPath string) ([]string, error) {
	out, err := e.runner.Run(ctx, "pdftotext", pdfPath, "-")
	if err != nil {
		return nil, err
	}

	pages := strings.Split(string(out), pageDelimiter)
	// pdftotext terminates every page with a form feed, leaving a
	// trailing empty element
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages, nil
}

// pdfImageTexts extracts every embedded raster image and OCRs it,
// returning recognized text grouped by page number. Any image-level
// failure is logged and skipped; a listing or extraction failure
// degrades to no image text at all.
func (e *Extractor) pdfImageTexts(ctx context.Context, pdfPath, tmpDir string) map[int][]string {
	entries, err := e.pdfImageList(ctx, pdfPath)
	if err != nil {
		log.Printf("extract: pdf image listing failed: %v", err)
		return nil
	}
	if len(entries) == 0 {
		return nil
	}

	prefix := filepath.Join(tmpDir, "img")
	if _, err := e.runner.Run(ctx, "pdfimages", "-png", pdfPath, prefix); err != nil {
		log.Printf("extract: pdf image extraction failed: %v", err)
		return nil
	}

	texts := make(map[int][]string)
	for _, entry := range entries {
		imgPath := fmt.Sprintf("%s-%03d.png", prefix, entry.num)
		imgContent, err := os.ReadFile(imgPath)
		if err != nil {
			log.Printf("extract: failed to read pdf image %d: %v", entry.num, err)
			continue
		}

		ocr := strings.TrimSpace(e.ocrImage(ctx, imgContent))
		if ocr == "" {
			continue
		}
		texts[entry.page] = append(texts[entry.page], ocr)
	}

	return texts
}

type pdfImageEntry struct {
	page int
	num  int
}

// pdfImageList parses `pdfimages -list` output into page/number pairs.
func (e *Extractor) pdfImageList(ctx context.Context, pdfPath string) ([]pdfImageEntry, error) {
	out, err := e.runner.Run(ctx, "pdfimages", "-list", pdfPath)
	if err != nil {
		return nil, err
	}

	var entries []pdfImageEntry
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		page, err := strconv.Atoi(fields[0])
		if err != nil {
			continue // header or separator row
		}
		num, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		entries = append(entries, pdfImageEntry{page: page, num: num})
	}

	return entries, nil
}
