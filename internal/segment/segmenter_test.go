package segment

import (
	"fmt"
	"strings"
	"testing"

	"github.com/doclens/doclens/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// longText returns a paragraph comfortably above the threshold.
func longText(label string) string {
	return label + ": " + strings.Repeat("sufficiently long paragraph content ", 4)
}

func TestSegment_ThresholdFiltering(t *testing.T) {
	text := "[Page 3]\n\nShort\n\n" + longText("kept")

	paragraphs := Segment(text)
	require.Len(t, paragraphs, 1)

	p := paragraphs[0]
	assert.Equal(t, 3, p.Page)
	assert.Contains(t, p.Text, "kept")
}

func TestSegment_IndexCountsPreFilterCandidates(t *testing.T) {
	// candidate 1 ("Short") is discarded, candidate 2 is kept: the kept
	// paragraph carries index 2, leaving indices non-contiguous
	text := "[Page 1]\nShort\n\n" + longText("second candidate")

	paragraphs := Segment(text)
	require.Len(t, paragraphs, 1)

	assert.Equal(t, 2, paragraphs[0].Index)
	assert.Equal(t, "p1_2", paragraphs[0].ID)
}

func TestSegment_DefaultPageForUnmarkedText(t *testing.T) {
	paragraphs := Segment(longText("no page marker at all"))
	require.Len(t, paragraphs, 1)
	assert.Equal(t, 1, paragraphs[0].Page)
}

func TestSegment_CarriesPageAcrossUnmarkedSections(t *testing.T) {
	// "[Image Text Page N]" blocks contain "Page " but not the "[Page "
	// marker, so they stay in the current page's section
	text := "[Page 2]\n\n" + longText("page two body") +
		"\n\n[Image Text Page 2]\n" + longText("page two image")

	paragraphs := Segment(text)
	require.NotEmpty(t, paragraphs)
	for _, p := range paragraphs {
		assert.Equal(t, 2, p.Page)
	}
}

func TestSegment_MalformedSectionSkipped(t *testing.T) {
	// section starts with a digit but has no closing bracket
	text := "[Page 9 oops no bracket\n\n" + longText("lost") +
		"[Page 2]\n\n" + longText("still parsed")

	paragraphs := Segment(text)
	require.Len(t, paragraphs, 1)
	assert.Equal(t, 2, paragraphs[0].Page)
	assert.Contains(t, paragraphs[0].Text, "still parsed")
}

func TestSegment_MultiplePagesAndParagraphs(t *testing.T) {
	text := fmt.Sprintf("[Page 1]\n%s\n\n%s\n\n[Page 2]\n%s\n\n",
		longText("one-a"), longText("one-b"), longText("two-a"))

	paragraphs := Segment(text)
	require.Len(t, paragraphs, 3)

	assert.Equal(t, domain.Paragraph{ID: "p1_1", Page: 1, Index: 1, Text: paragraphs[0].Text}, paragraphs[0])
	assert.Equal(t, "p1_2", paragraphs[1].ID)
	assert.Equal(t, "p2_1", paragraphs[2].ID)
	assert.Equal(t, 2, paragraphs[2].Page)
}

func TestSegment_Idempotence(t *testing.T) {
	original := fmt.Sprintf("[Page 1]\n%s\n\n%s\n\n[Page 4]\n%s\n\n",
		longText("alpha"), longText("beta"), longText("gamma"))

	first := Segment(original)
	require.Len(t, first, 3)

	// rebuild the text from the segmented paragraphs with correct page
	// headers and re-segment: the paragraph set must be reproduced
	var b strings.Builder
	currentPage := 0
	for _, p := range first {
		if p.Page != currentPage {
			fmt.Fprintf(&b, "[Page %d]\n", p.Page)
			currentPage = p.Page
		}
		b.WriteString(p.Text + "\n\n")
	}

	second := Segment(b.String())
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Page, second[i].Page)
		assert.Equal(t, first[i].Text, second[i].Text)
	}
}

func TestSegment_EmptyInput(t *testing.T) {
	assert.Empty(t, Segment(""))
	assert.Empty(t, Segment("   \n\n  "))
}
