package briefing

import (
	"regexp"
	"strings"
)

// Explicit page breaks: "---" separator lines, form feeds, or bare
// "Page N" lines left behind by document extraction.
var pageBreakPattern = regexp.MustCompile(`(?i)\n\s*---\s*\n|\f|\n\s*Page\s+\d+\s*\n`)

// segmentPages splits a document into display-sized pages for
// simplify mode. Explicit page-break markers win; otherwise paragraphs
// are packed greedily up to maxChars. A document without breaks or
// oversized paragraphs yields a single page.
func segmentPages(text string, maxChars int) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	marked := pageBreakPattern.Split(text, -1)
	pages := make([]string, 0, len(marked))
	for _, p := range marked {
		if p = strings.TrimSpace(p); p != "" {
			pages = append(pages, p)
		}
	}
	if len(pages) > 1 {
		return pages
	}

	paragraphs := strings.Split(trimmed, "\n\n")
	pages = pages[:0]
	current := ""
	for _, para := range paragraphs {
		if len(current)+len(para) > maxChars && current != "" {
			pages = append(pages, strings.TrimSpace(current))
			current = para
		} else if current == "" {
			current = para
		} else {
			current += "\n\n" + para
		}
	}
	if strings.TrimSpace(current) != "" {
		pages = append(pages, strings.TrimSpace(current))
	}
	if len(pages) == 0 {
		return []string{trimmed}
	}
	return pages
}
