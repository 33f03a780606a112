// Package ocr calls the external document-text-recognition capability
// used for PDF and image uploads.
package ocr

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/docbrief/nlp-engine/internal/config"
	"github.com/docbrief/nlp-engine/internal/entity"
	"github.com/docbrief/nlp-engine/internal/integration/common"
	pkghttp "github.com/docbrief/nlp-engine/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.OCRConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(cfg config.OCRConnectorConfig, logger *zap.Logger) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

type recognizeResponse struct {
	Text string `json:"text"`
}

// Recognize uploads a document binary and returns the extracted plain
// text. Retried with the connector's backoff policy; on exhaustion the
// last error is returned for the extractor to surface.
func (c *Connector) Recognize(ctx context.Context, filename string, data []byte) (string, error) {
	ctxzap.Info(ctx, "recognizing document text via OCR service",
		zap.String("filename", filename),
		zap.Int("size", len(data)),
	)

	var resp recognizeResponse
	err := retry.Do(func() error {
		return c.connector.DoMultipartRequest(ctx, http.MethodPost, c.config.RecognizeEndpoint,
			func(w *multipart.Writer) error {
				part, err := w.CreateFormFile("file", filename)
				if err != nil {
					return fmt.Errorf("create form file: %w", err)
				}
				if _, err := part.Write(data); err != nil {
					return fmt.Errorf("write file part: %w", err)
				}
				return nil
			}, &resp)
	}, append(c.config.Retry.ToRetryOptions(), retry.Context(ctx), retry.LastErrorOnly(true))...)
	if err != nil {
		return "", fmt.Errorf("recognize %q: %w", filename, err)
	}

	if resp.Text == "" {
		return "", fmt.Errorf("recognize %q: %w", filename, entity.ErrInvalidFile)
	}

	ctxzap.Info(ctx, "document text recognized", zap.Int("text_length", len(resp.Text)))
	return resp.Text, nil
}

// Healthcheck pings the OCR service; used at startup to log whether
// the capability is reachable.
func (c *Connector) Healthcheck(ctx context.Context) error {
	return c.connector.DoRequest(ctx, http.MethodGet, "/health", nil, nil)
}
