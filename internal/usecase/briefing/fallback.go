package briefing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/docbrief/nlp-engine/internal/entity"
)

// Deterministic degraded responses: when generation or parsing fails,
// the pipeline answers from the source text itself so the caller still
// receives a schema-conformant payload.

var (
	sentenceSplit  = regexp.MustCompile(`[.!?]+`)
	headingPrefix  = regexp.MustCompile(`^[#\-*>\d.]+\s*`)
	fallbackImage  = "A simple infographic summarizing the key points"
	excerptLimit   = 200
	answerExcerpt  = 500
	fallbackPoints = 7
)

func sentences(text string) []string {
	return sentenceSplit.Split(text, -1)
}

func headRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// fallbackPage builds a simplified page from the page text alone:
// heading from the first line, bullets from the leading sentences.
func fallbackPage(pageText string, pageNumber int, audience entity.AudienceLevel) entity.SimplifiedPage {
	lines := strings.Split(strings.TrimSpace(pageText), "\n")
	title := ""
	if len(lines) > 0 {
		title = headRunes(headingPrefix.ReplaceAllString(lines[0], ""), 80)
	}
	if title == "" {
		title = fmt.Sprintf("Section %d Summary", pageNumber)
	}

	var bullets []string
	for _, s := range sentences(pageText) {
		if s = strings.TrimSpace(s); len(s) > 20 {
			bullets = append(bullets, s)
		}
		if len(bullets) == 5 {
			break
		}
	}

	var b strings.Builder
	b.WriteString("Here's what this section is about in simple terms:\n\n")
	if len(bullets) == 0 {
		fmt.Fprintf(&b, "- %s...\n", headRunes(pageText, 300))
	} else {
		for _, s := range bullets {
			fmt.Fprintf(&b, "- %s.\n", s)
		}
	}
	fmt.Fprintf(&b, "\nThis section is written for a %s audience.", audience)

	return entity.SimplifiedPage{
		PageNumber:     pageNumber,
		Title:          title,
		SimplifiedText: b.String(),
		ImagePrompt:    fallbackImage,
	}
}

func fallbackAsk(text string) *entity.AskResult {
	return &entity.AskResult{
		Success: true,
		Answer: fmt.Sprintf(
			"Based on the document, here is what I found related to your question:\n\n%s...\n\n(Note: the AI service returned no structured answer, showing a document excerpt instead.)",
			headRunes(text, answerExcerpt)),
		Confidence:      "low",
		RelevantExcerpt: headRunes(text, excerptLimit),
	}
}

func fallbackSummarize(text string) *entity.SummarizeResult {
	var key []string
	for _, s := range sentences(text) {
		if s = strings.TrimSpace(s); len(s) > 15 {
			key = append(key, s)
		}
		if len(key) == 3 {
			break
		}
	}
	summary := headRunes(text, 300)
	if len(key) > 0 {
		summary = strings.Join(key, ". ") + "."
	}
	return &entity.SummarizeResult{
		Success:   true,
		Summary:   summary,
		WordCount: len(strings.Fields(summary)),
		KeyTopics: []string{},
	}
}

func fallbackExtract(text string) *entity.ExtractResult {
	var points []entity.KeyPoint
	for _, s := range sentences(text) {
		if s = strings.TrimSpace(s); len(s) > 20 {
			points = append(points, entity.KeyPoint{Point: s, Importance: "medium"})
		}
		if len(points) == fallbackPoints {
			break
		}
	}
	if len(points) == 0 {
		points = []entity.KeyPoint{{Point: headRunes(text, excerptLimit), Importance: "medium"}}
	}
	return &entity.ExtractResult{
		Success:      true,
		KeyPoints:    points,
		OverallTheme: "Document analysis",
		ActionItems:  []string{},
	}
}
