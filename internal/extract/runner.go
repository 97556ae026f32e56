package extract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrPDFToolNotFound is returned when the poppler utilities are not installed
	ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")
	// ErrOCRToolNotFound is returned when tesseract is not installed
	ErrOCRToolNotFound = errors.New("tesseract not found in PATH")
)

// CommandRunner abstracts external tool execution so tests can inject
// canned output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%s failed: %s", name, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	return out, nil
}

// CheckPDFAvailable reports whether the poppler utilities are installed
func CheckPDFAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	if _, err := exec.LookPath("pdfimages"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// CheckOCRAvailable reports whether tesseract is installed
func CheckOCRAvailable() error {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return ErrOCRToolNotFound
	}
	return nil
}

// InstallInstructions returns human-readable install hints for the
// external extraction tools.
func InstallInstructions() string {
	return strings.Join([]string{
		"PDF text extraction requires pdftotext and pdfimages (poppler):",
		"  macOS:  brew install poppler",
		"  Debian: apt install poppler-utils",
		"Image OCR requires tesseract:",
		"  macOS:  brew install tesseract",
		"  Debian: apt install tesseract-ocr",
	}, "\n")
}
