// Package segment splits extracted text into addressable paragraph
// units keyed by the extractor's "[Page N]" markers.
package segment

import (
	"log"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/doclens/doclens/internal/domain"
)

// MinParagraphChars is the substantial-paragraph threshold: candidates
// whose trimmed length falls below it are discarded.
const MinParagraphChars = 100

// pageMarker is the literal page-header prefix emitted by the extractor
const pageMarker = "[Page "

// Segment splits normalized text into paragraph units. Text is split on
// the extractor's page markers; each section's content is split on
// blank lines into candidates, and only substantial candidates are
// kept. A paragraph's Index is its 1-based candidate position BEFORE
// the length filter, so indices are not necessarily contiguous.
// Malformed sections are logged and skipped, never aborting the text.
func Segment(text string) []domain.Paragraph {
	var paragraphs []domain.Paragraph
	currentPage := 1

	for _, section := range strings.Split(text, pageMarker) {
		if strings.TrimSpace(section) == "" {
			continue
		}

		content := section
		if section[0] >= '0' && section[0] <= '9' {
			pageStr, rest, found := strings.Cut(section, "]")
			if !found {
				log.Printf("segment: malformed page section, missing ']': %.40q", section)
				continue
			}
			page, err := strconv.Atoi(pageStr)
			if err != nil {
				log.Printf("segment: malformed page number %q: %v", pageStr, err)
				continue
			}
			currentPage = page
			content = rest
		}

		for candidateIdx, candidate := range strings.Split(content, "\n\n") {
			trimmed := strings.TrimSpace(candidate)
			if utf8.RuneCountInString(trimmed) < MinParagraphChars {
				continue
			}
			paragraphs = append(paragraphs, domain.Paragraph{
				ID:    domain.ParagraphID(currentPage, candidateIdx+1),
				Page:  currentPage,
				Index: candidateIdx + 1,
				Text:  trimmed,
			})
		}
	}

	return paragraphs
}
