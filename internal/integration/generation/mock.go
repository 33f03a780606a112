package generation

import (
	"context"

	"github.com/docbrief/nlp-engine/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector fabricates schema-conformant generation output for
// local development without an API key.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) Generate(ctx context.Context, req *entity.GenerationRequest) (string, error) {
	ctxzap.Info(ctx, "[MOCK] generation call", zap.String("mode", string(req.Mode)))

	switch req.Mode {
	case entity.ModeSimplify:
		return `{
  "page_number": 1,
  "title": "Project Update",
  "simplified_text": "The team made progress this period. The main goals stayed on track and no blocking problems came up.",
  "image_prompt": "A team collaboration infographic showing project milestones"
}`, nil
	case entity.ModeAsk:
		return `{
  "answer": "Based on the provided document, the information you asked about is covered in the retrieved passages.",
  "confidence": "high",
  "relevant_excerpt": "the retrieved passages"
}`, nil
	case entity.ModeExtract:
		return `{
  "key_points": [
    {"point": "The document describes an ongoing project", "importance": "high"},
    {"point": "Several workstreams report steady progress", "importance": "medium"}
  ],
  "overall_theme": "A status update on project execution",
  "action_items": ["Review the next milestone plan"]
}`, nil
	case entity.ModeSummarize:
		return `{
  "summary": "The document is a project status update. Work is progressing as planned and the key risks remain under control.",
  "word_count": 20,
  "key_topics": ["project status", "progress", "risks"]
}`, nil
	}
	return "{}", nil
}
