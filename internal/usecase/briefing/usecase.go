// Package briefing orchestrates the document pipeline: ingest,
// retrieve (ask mode), build prompt, generate, parse, respond. Every
// path past input validation returns a usable payload; generation and
// parsing failures degrade to deterministic local fallbacks.
package briefing

import (
	"context"
	"fmt"
	"strings"

	"github.com/docbrief/nlp-engine/internal/config"
	"github.com/docbrief/nlp-engine/internal/entity"
	"github.com/docbrief/nlp-engine/internal/pkg/llmjson"
	"github.com/docbrief/nlp-engine/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const contextSeparator = "\n\n---\n\n"

// Usecase is the pipeline orchestrator.
type Usecase struct {
	cfg       config.PipelineConfig
	retriever Retriever
	store     IndexStore
	prompts   PromptBuilder
	generator GenerationConnector
	logger    *zap.Logger
}

func NewUsecase(
	cfg config.PipelineConfig,
	retriever Retriever,
	store IndexStore,
	prompts PromptBuilder,
	generator GenerationConnector,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		cfg:       cfg,
		retriever: retriever,
		store:     store,
		prompts:   prompts,
		generator: generator,
		logger:    logger,
	}
}

// Process runs one query through the pipeline. The only error paths
// are caller-contract violations (entity.IsClientError); internal
// failures are logged and converted into degraded payloads.
func (uc *Usecase) Process(ctx context.Context, q entity.Query) (*entity.GenerationResponse, error) {
	if err := validator.ValidateQuery(&q); err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "processing document",
		zap.String("mode", string(q.Mode)),
		zap.String("owner_id", q.OwnerID),
		zap.Int("text_length", len(q.Text)),
	)

	switch q.Mode {
	case entity.ModeSimplify:
		return uc.simplify(ctx, q)
	case entity.ModeAsk:
		return uc.ask(ctx, q)
	case entity.ModeSummarize:
		return uc.summarize(ctx, q)
	case entity.ModeExtract:
		return uc.extract(ctx, q)
	}
	return nil, entity.ErrInvalidMode
}

// ResetIndex discards the owner's persisted corpus.
func (uc *Usecase) ResetIndex(ctx context.Context, ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		ownerID = entity.DefaultOwnerID
	}
	if err := uc.store.Reset(ctx, ownerID); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}
	ctxzap.Info(ctx, "owner index reset", zap.String("owner_id", ownerID))
	return nil
}

// simplify segments the document into display pages and generates a
// simplified rendition of each page concurrently. A failed page falls
// back individually; the response is degraded if any page fell back.
func (uc *Usecase) simplify(ctx context.Context, q entity.Query) (*entity.GenerationResponse, error) {
	audience := q.Audience
	if audience == "" {
		audience = entity.AudienceManager
	}

	pages := segmentPages(q.Text, uc.cfg.MaxPageChars)
	ctxzap.Info(ctx, "document segmented", zap.Int("page_count", len(pages)))

	results := make([]entity.SimplifiedPage, len(pages))
	degraded := make([]bool, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.cfg.PageConcurrency)
	for i, pageText := range pages {
		g.Go(func() error {
			page, fellBack := uc.simplifyPage(gctx, pageText, i+1, audience)
			results[i] = page
			degraded[i] = fellBack
			return nil
		})
	}
	// Workers never return errors; they degrade in place.
	_ = g.Wait()

	anyDegraded := false
	for _, d := range degraded {
		anyDegraded = anyDegraded || d
	}

	return &entity.GenerationResponse{
		Mode:     entity.ModeSimplify,
		Degraded: anyDegraded,
		Simplify: &entity.SimplifyResult{Success: true, Pages: results},
	}, nil
}

func (uc *Usecase) simplifyPage(ctx context.Context, pageText string, pageNumber int, audience entity.AudienceLevel) (entity.SimplifiedPage, bool) {
	req := &entity.GenerationRequest{
		Mode:   entity.ModeSimplify,
		System: uc.prompts.System(entity.ModeSimplify),
		Prompt: uc.prompts.Simplify(pageText, pageNumber, audience, ""),
	}

	raw, err := uc.generator.Generate(ctx, req)
	if err != nil {
		ctxzap.Warn(ctx, "page generation failed, using fallback",
			zap.Int("page_number", pageNumber), zap.Error(err))
		return fallbackPage(pageText, pageNumber, audience), true
	}

	var page entity.SimplifiedPage
	if err := llmjson.Decode(raw, &page); err != nil || page.SimplifiedText == "" {
		parseErr := &entity.ParseError{Mode: entity.ModeSimplify, Err: err}
		ctxzap.Warn(ctx, "page response unparseable, using fallback",
			zap.Int("page_number", pageNumber), zap.Error(parseErr))
		return fallbackPage(pageText, pageNumber, audience), true
	}
	page.PageNumber = pageNumber
	return page, false
}

// ask is the only mode that exercises retrieval: the question is
// grounded on the top-k chunks of the supplied document.
func (uc *Usecase) ask(ctx context.Context, q entity.Query) (*entity.GenerationResponse, error) {
	retrieved, err := uc.retriever.Retrieve(ctx, q.OwnerID, q.Text, q.Question)
	if err != nil {
		ctxzap.Warn(ctx, "retrieval failed, prompting with raw document", zap.Error(err))
	}

	contextText := joinRetrieved(retrieved)
	ctxzap.Info(ctx, "context retrieved", zap.Int("chunk_count", len(retrieved)))

	req := &entity.GenerationRequest{
		Mode:   entity.ModeAsk,
		System: uc.prompts.System(entity.ModeAsk),
		Prompt: uc.prompts.Ask(contextText, q.Text, q.Question),
	}

	raw, err := uc.generator.Generate(ctx, req)
	if err != nil {
		ctxzap.Warn(ctx, "ask generation failed, using fallback", zap.Error(err))
		return degradedResponse(entity.ModeAsk, fallbackAsk(q.Text)), nil
	}

	var result entity.AskResult
	if err := llmjson.Decode(raw, &result); err != nil || result.Answer == "" {
		parseErr := &entity.ParseError{Mode: entity.ModeAsk, Err: err}
		ctxzap.Warn(ctx, "ask response unparseable, using fallback", zap.Error(parseErr))
		return degradedResponse(entity.ModeAsk, fallbackAsk(q.Text)), nil
	}
	result.Success = true

	return &entity.GenerationResponse{Mode: entity.ModeAsk, Ask: &result}, nil
}

func (uc *Usecase) summarize(ctx context.Context, q entity.Query) (*entity.GenerationResponse, error) {
	req := &entity.GenerationRequest{
		Mode:   entity.ModeSummarize,
		System: uc.prompts.System(entity.ModeSummarize),
		Prompt: uc.prompts.Summarize(q.Text),
	}

	raw, err := uc.generator.Generate(ctx, req)
	if err != nil {
		ctxzap.Warn(ctx, "summarize generation failed, using fallback", zap.Error(err))
		return degradedResponse(entity.ModeSummarize, fallbackSummarize(q.Text)), nil
	}

	var result entity.SummarizeResult
	if err := llmjson.Decode(raw, &result); err != nil || result.Summary == "" {
		parseErr := &entity.ParseError{Mode: entity.ModeSummarize, Err: err}
		ctxzap.Warn(ctx, "summarize response unparseable, using fallback", zap.Error(parseErr))
		return degradedResponse(entity.ModeSummarize, fallbackSummarize(q.Text)), nil
	}
	result.Success = true
	if result.WordCount == 0 {
		result.WordCount = len(strings.Fields(result.Summary))
	}

	return &entity.GenerationResponse{Mode: entity.ModeSummarize, Summarize: &result}, nil
}

func (uc *Usecase) extract(ctx context.Context, q entity.Query) (*entity.GenerationResponse, error) {
	req := &entity.GenerationRequest{
		Mode:   entity.ModeExtract,
		System: uc.prompts.System(entity.ModeExtract),
		Prompt: uc.prompts.Extract(q.Text),
	}

	raw, err := uc.generator.Generate(ctx, req)
	if err != nil {
		ctxzap.Warn(ctx, "extract generation failed, using fallback", zap.Error(err))
		return degradedResponse(entity.ModeExtract, fallbackExtract(q.Text)), nil
	}

	var result entity.ExtractResult
	if err := llmjson.Decode(raw, &result); err != nil || len(result.KeyPoints) == 0 {
		parseErr := &entity.ParseError{Mode: entity.ModeExtract, Err: err}
		ctxzap.Warn(ctx, "extract response unparseable, using fallback", zap.Error(parseErr))
		return degradedResponse(entity.ModeExtract, fallbackExtract(q.Text)), nil
	}
	result.Success = true

	return &entity.GenerationResponse{Mode: entity.ModeExtract, Extract: &result}, nil
}

func joinRetrieved(results []entity.RetrievalResult) string {
	if len(results) == 0 {
		return ""
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Chunk.Text
	}
	return strings.Join(parts, contextSeparator)
}

func degradedResponse(mode entity.Mode, payload any) *entity.GenerationResponse {
	resp := &entity.GenerationResponse{Mode: mode, Degraded: true}
	switch mode {
	case entity.ModeAsk:
		resp.Ask = payload.(*entity.AskResult)
	case entity.ModeSummarize:
		resp.Summarize = payload.(*entity.SummarizeResult)
	case entity.ModeExtract:
		resp.Extract = payload.(*entity.ExtractResult)
	}
	return resp
}
