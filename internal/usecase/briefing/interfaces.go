package briefing

import (
	"context"

	"github.com/docbrief/nlp-engine/internal/entity"
)

// GenerationConnector is the external text-generation capability.
type GenerationConnector interface {
	Generate(ctx context.Context, req *entity.GenerationRequest) (string, error)
}

// Retriever performs top-k semantic search over the request document.
type Retriever interface {
	Retrieve(ctx context.Context, ownerID, text, query string) ([]entity.RetrievalResult, error)
}

// IndexStore exposes the owner-index lifecycle operation the pipeline
// needs beyond retrieval.
type IndexStore interface {
	Reset(ctx context.Context, ownerID string) error
}

// PromptBuilder assembles mode- and audience-specific generation
// instructions.
type PromptBuilder interface {
	System(mode entity.Mode) string
	Simplify(pageText string, pageNumber int, audience entity.AudienceLevel, context string) string
	Ask(context, documentText, question string) string
	Summarize(text string) string
	Extract(text string) string
}
