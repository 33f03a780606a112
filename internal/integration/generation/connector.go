// Package generation calls the external text-generation capability
// (an OpenAI-compatible chat completion API, Perplexity by default)
// with bounded timeouts and retries.
package generation

import (
	"context"
	"errors"
	"net"

	"github.com/avast/retry-go/v4"
	"github.com/docbrief/nlp-engine/internal/config"
	"github.com/docbrief/nlp-engine/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type Connector struct {
	config config.GenerationConfig
	client *openai.Client
	logger *zap.Logger
}

func NewConnector(cfg config.GenerationConfig, logger *zap.Logger) *Connector {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Connector{
		config: cfg,
		client: openai.NewClientWithConfig(clientCfg),
		logger: logger,
	}
}

// Generate runs one chat completion for the assembled prompt and
// returns the raw response text. Transient failures (timeouts,
// 5xx-equivalent statuses) are retried with exponential backoff; on
// exhaustion a typed GenerationError is returned so the pipeline can
// apply its mode-specific fallback. Summarize calls use the shorter
// timeout; everything else gets the document-scale one.
func (c *Connector) Generate(ctx context.Context, req *entity.GenerationRequest) (string, error) {
	ctxzap.Info(ctx, "calling generation service",
		zap.String("mode", string(req.Mode)),
		zap.String("model", c.config.Model),
		zap.Int("prompt_length", len(req.Prompt)),
	)

	timeout := c.config.RequestTimeout
	if req.Mode == entity.ModeSummarize {
		timeout = c.config.SummarizeTimeout
	}

	chatReq := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: float32(c.config.Temperature),
		MaxTokens:   c.config.MaxTokens,
	}

	var result string
	opts := append(c.config.Retry.ToRetryOptions(),
		retry.Context(ctx),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
	)
	err := retry.Do(func() error {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(callCtx, chatReq)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("generation returned no choices")
		}
		result = resp.Choices[0].Message.Content
		return nil
	}, opts...)
	if err != nil {
		return "", &entity.GenerationError{Attempts: int(c.config.Retry.Attempts), Err: err}
	}

	ctxzap.Info(ctx, "generation completed", zap.Int("response_length", len(result)))
	return result, nil
}

// isTransient classifies retryable failures: per-call timeouts,
// network errors and 5xx responses. Auth and 4xx errors fail fast.
func isTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == 429
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
