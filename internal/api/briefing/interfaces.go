package briefing

import (
	"context"

	"github.com/docbrief/nlp-engine/internal/entity"
	"github.com/docbrief/nlp-engine/internal/pkg/formatter"
)

// Usecase is the engine call contract consumed by the HTTP layer.
type Usecase interface {
	Process(ctx context.Context, q entity.Query) (*entity.GenerationResponse, error)
	ResetIndex(ctx context.Context, ownerID string) error
}

// Extractor turns uploaded files into plain text.
type Extractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// FormatterFactory creates export renderers for simplify results.
type FormatterFactory interface {
	Create(format entity.ResultFormat) (formatter.Formatter, error)
}
