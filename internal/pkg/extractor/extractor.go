// Package extractor turns uploaded files into plain text for the
// pipeline: txt/md pass through, DOCX is read locally, PDF and images
// are sent to the remote recognition capability.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/docbrief/nlp-engine/internal/entity"
	"github.com/unidoc/unioffice/document"
)

// OCRConnector recognizes text in binary documents (PDF, images).
type OCRConnector interface {
	Recognize(ctx context.Context, filename string, data []byte) (string, error)
}

type Extractor struct {
	ocr OCRConnector
}

func New(ocr OCRConnector) *Extractor {
	return &Extractor{ocr: ocr}
}

// Extract returns the plain text of an uploaded file, dispatching on
// the file extension.
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md":
		return string(data), nil
	case ".docx":
		return extractDOCX(data)
	case ".pdf", ".png", ".jpg", ".jpeg":
		return e.ocr.Recognize(ctx, filename, data)
	default:
		return "", fmt.Errorf("file %q: %w", filename, entity.ErrInvalidExtension)
	}
}

func extractDOCX(data []byte) (string, error) {
	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer doc.Close()

	var b strings.Builder
	for _, para := range doc.Paragraphs() {
		for _, run := range para.Runs() {
			b.WriteString(run.Text())
		}
		b.WriteString("\n")
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("docx contains no text: %w", entity.ErrInvalidFile)
	}
	return text, nil
}
