package formatter

import (
	"bytes"
	"fmt"

	"github.com/docbrief/nlp-engine/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(pages []entity.SimplifiedPage) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", baseTitle)
	for _, page := range pages {
		fmt.Fprintf(&buf, "\n## %d. %s\n\n%s\n", page.PageNumber, page.Title, page.SimplifiedText)
	}
	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
