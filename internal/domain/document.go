package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FileKind represents the declared type of an uploaded file
type FileKind string

const (
	FileKindPDF  FileKind = "pdf"
	FileKindTXT  FileKind = "txt"
	FileKindPNG  FileKind = "png"
	FileKindJPG  FileKind = "jpg"
	FileKindJPEG FileKind = "jpeg"
)

// ParseFileKind derives the FileKind from a filename extension
func ParseFileKind(filename string) (FileKind, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	kind := FileKind(ext)
	if !isValidFileKind(kind) {
		return "", NewDomainErrorWithCause(ErrCodeValidation,
			fmt.Sprintf("unsupported file format: %s", ext), ErrUnsupportedFileKind)
	}
	return kind, nil
}

// IsImage reports whether the kind is a raster image processed with OCR
func (k FileKind) IsImage() bool {
	switch k {
	case FileKindPNG, FileKindJPG, FileKindJPEG:
		return true
	}
	return false
}

// Paragraph is an addressable text unit produced by segmentation.
// ID has the form "p<page>_<index>"; Index is the 1-based candidate
// position within the page prior to length filtering, so indices are
// not necessarily contiguous.
type Paragraph struct {
	ID    string
	Page  int
	Index int
	Text  string
}

// ParagraphID builds the canonical paragraph identifier
func ParagraphID(page, index int) string {
	return fmt.Sprintf("p%d_%d", page, index)
}

// Document represents an ingested document with its derived paragraphs.
// Immutable after creation except for deletion. ParagraphCount is always
// populated; listings carry it without loading Paragraphs.
type Document struct {
	ID             string
	Filename       string
	Kind           FileKind
	SizeBytes      int64
	UploadedAt     time.Time
	FullText       string
	Paragraphs     []Paragraph
	ParagraphCount int
}

// FileStatus is the per-file outcome of a batch upload
type FileStatus string

const (
	FileStatusSuccess FileStatus = "success"
	FileStatusError   FileStatus = "error"
)

// FileResult is the per-file ingestion result. One file's failure never
// blocks the rest of the batch; failed files carry only Filename,
// Status and Message.
type FileResult struct {
	Document *Document
	Filename string
	Status   FileStatus
	Message  string
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.Filename == "" {
		return fmt.Errorf("document Filename is required")
	}

	if !isValidFileKind(d.Kind) {
		return fmt.Errorf("document Kind is invalid: %s", d.Kind)
	}

	seen := make(map[string]struct{}, len(d.Paragraphs))
	for _, p := range d.Paragraphs {
		if p.Page < 1 || p.Index < 1 {
			return fmt.Errorf("paragraph %s has invalid page/index", p.ID)
		}
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("duplicate paragraph id: %s", p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	return nil
}

// isValidFileKind checks if a FileKind is valid
func isValidFileKind(k FileKind) bool {
	switch k {
	case FileKindPDF, FileKindTXT, FileKindPNG, FileKindJPG, FileKindJPEG:
		return true
	}
	return false
}
