// Package formatter renders simplified briefing pages into
// downloadable documents.
package formatter

import (
	"fmt"

	"github.com/docbrief/nlp-engine/internal/entity"
)

const baseTitle = "Simplified Briefing"

type Formatter interface {
	Format(pages []entity.SimplifiedPage) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
