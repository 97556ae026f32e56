package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/doclens/doclens/internal/domain"
)

const themePromptFormat = `Analyze these document answers for the query: "%s"

Answers:
%s

Instructions:
1. Identify 2-4 main themes that emerge across these documents
2. For each theme, provide:
   - A clear theme name
   - A summary of what documents support this theme
   - The specific document IDs that relate to this theme
3. Provide an overall synthesis that combines insights from all themes
4. Ensure themes are distinct and meaningful

Format as:
THEME [Serial Number]: [Name]
Documents: [Doc IDs]
Summary: [Description]

OVERALL SYNTHESIS:
[Combined insights and conclusions]`

const synthesisMarker = "OVERALL SYNTHESIS:"

var (
	themeHeaderRe = regexp.MustCompile(`THEME \d+: `)
	docIDRe       = regexp.MustCompile(`DOC\w+`)
)

// ThemeSynthesizer clusters per-document answers into named themes with
// an overall synthesis. Completion failures degrade to a single
// "General Analysis" theme rather than failing the query.
type ThemeSynthesizer struct {
	completion CompletionClient
}

func NewThemeSynthesizer(completion CompletionClient) *ThemeSynthesizer {
	return &ThemeSynthesizer{completion: completion}
}

// Synthesize identifies themes across answers for the query.
func (s *ThemeSynthesizer) Synthesize(ctx context.Context, query string, answers []domain.Answer) domain.ThemeAnalysis {
	if len(answers) == 0 {
		return domain.ThemeAnalysis{Themes: []domain.Theme{}, Synthesis: "No relevant information found."}
	}

	lines := make([]string, 0, len(answers))
	for _, a := range answers {
		lines = append(lines, fmt.Sprintf("Document %s: %s", a.DocumentID, a.AnswerText))
	}

	prompt := fmt.Sprintf(themePromptFormat, query, strings.Join(lines, "\n"))
	raw, err := s.completion.Complete(ctx, prompt)
	if err != nil {
		log.Printf("themes: synthesis failed: %v", err)
		return domain.ThemeAnalysis{
			Themes: []domain.Theme{{
				Name:              "General Analysis",
				Summary:           "Error analyzing themes",
				SupportingAnswers: []domain.Answer{},
			}},
			Synthesis: "Error analyzing themes across documents.",
		}
	}

	return parseThemes(raw, answers)
}

// parseThemes extracts the themed sections and the synthesis paragraph
// from the model's response. A response missing the synthesis marker
// degrades to one theme carrying the full text.
func parseThemes(raw string, answers []domain.Answer) domain.ThemeAnalysis {
	idx := strings.Index(raw, synthesisMarker)
	if idx < 0 {
		return domain.ThemeAnalysis{
			Themes: []domain.Theme{{
				Name:              "General Analysis",
				Summary:           raw,
				SupportingAnswers: answers,
				SupportingCount:   len(answers),
			}},
			Synthesis: strings.TrimSpace(raw),
		}
	}

	themeSection := raw[:idx]
	synthesis := strings.TrimSpace(raw[idx+len(synthesisMarker):])

	var themes []domain.Theme
	starts := themeHeaderRe.FindAllStringIndex(themeSection, -1)
	for i, start := range starts {
		end := len(themeSection)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}

		theme, ok := parseThemeBlock(themeSection[start[1]:end], answers)
		if !ok {
			continue
		}
		themes = append(themes, theme)
	}

	// a marker with no parseable blocks is still a parse failure
	if len(themes) == 0 {
		themes = []domain.Theme{{
			Name:              "General Analysis",
			Summary:           raw,
			SupportingAnswers: answers,
			SupportingCount:   len(answers),
		}}
	}

	return domain.ThemeAnalysis{Themes: themes, Synthesis: synthesis}
}

// parseThemeBlock parses one "name / Documents: / Summary:" block. The
// block starts right after its "THEME n: " header.
func parseThemeBlock(block string, answers []domain.Answer) (domain.Theme, bool) {
	name, rest, found := strings.Cut(block, "\n")
	if !found {
		return domain.Theme{}, false
	}

	docsLine, rest, found := strings.Cut(rest, "\n")
	if !found || !strings.HasPrefix(docsLine, "Documents: ") {
		return domain.Theme{}, false
	}
	docRefs := strings.TrimPrefix(docsLine, "Documents: ")

	if !strings.HasPrefix(rest, "Summary: ") {
		return domain.Theme{}, false
	}
	summary := strings.TrimPrefix(rest, "Summary: ")

	mentioned := make(map[string]bool)
	for _, id := range docIDRe.FindAllString(docRefs, -1) {
		mentioned[id] = true
	}

	var supporting []domain.Answer
	for _, a := range answers {
		if mentioned[a.DocumentID] || strings.Contains(docRefs, a.DocumentID) {
			supporting = append(supporting, a)
		}
	}

	return domain.Theme{
		Name:              strings.TrimSpace(name),
		Summary:           strings.TrimSpace(summary),
		SupportingAnswers: supporting,
		SupportingCount:   len(supporting),
	}, true
}
