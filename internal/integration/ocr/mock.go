package ocr

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector returns placeholder text for recognized files.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) Recognize(ctx context.Context, filename string, data []byte) (string, error) {
	ctxzap.Info(ctx, "[MOCK] recognizing document text", zap.String("filename", filename))
	return fmt.Sprintf("Recognized text of %s (%d bytes).", filename, len(data)), nil
}

func (m *MockConnector) Healthcheck(ctx context.Context) error {
	return nil
}
