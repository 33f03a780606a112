package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/docbrief/nlp-engine/internal/api"
	briefingapi "github.com/docbrief/nlp-engine/internal/api/briefing"
	"github.com/docbrief/nlp-engine/internal/config"
	"github.com/docbrief/nlp-engine/internal/integration/generation"
	"github.com/docbrief/nlp-engine/internal/integration/ocr"
	"github.com/docbrief/nlp-engine/internal/pkg/extractor"
	"github.com/docbrief/nlp-engine/internal/pkg/formatter"
	"github.com/docbrief/nlp-engine/internal/pkg/validator"
	"github.com/docbrief/nlp-engine/internal/prompt"
	"github.com/docbrief/nlp-engine/internal/rag/embedding"
	"github.com/docbrief/nlp-engine/internal/rag/index"
	"github.com/docbrief/nlp-engine/internal/rag/retriever"
	"github.com/docbrief/nlp-engine/internal/rag/splitter"
	"github.com/docbrief/nlp-engine/internal/usecase/briefing"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Initialize the RAG core
	store, err := index.NewStore(index.Config{
		Dir:       cfg.IndexCfg.Dir,
		Dimension: cfg.IndexCfg.Dimension,
		Persist:   cfg.IndexCfg.Persist,
		CacheTTL:  cfg.IndexCfg.CacheTTL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("setup index store: %w", err)
	}

	embedder := embedding.NewProvider()
	split := splitter.New(cfg.PipelineCfg.ChunkSize, cfg.PipelineCfg.ChunkOverlap)
	retr := retriever.New(retriever.Config{
		TopK:             cfg.PipelineCfg.TopK,
		PersistentCorpus: cfg.PipelineCfg.PersistentCorpus,
	}, split, embedder, store)
	logger.Info("RAG core initialized",
		zap.Int("dimension", embedder.Dimension()),
		zap.Bool("persistent_corpus", cfg.PipelineCfg.PersistentCorpus),
	)

	// Initialize external service connectors (with mock support)
	var generator briefing.GenerationConnector
	var ocrConnector extractor.OCRConnector

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		generator = generation.NewMockConnector(logger)
		ocrConnector = ocr.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		generator = generation.NewConnector(cfg.GenerationCfg, logger)
		realOCR := ocr.NewConnector(cfg.OCRCfg, logger)
		checkCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := realOCR.Healthcheck(checkCtx); err != nil {
			logger.Warn("OCR service unreachable, uploads needing recognition will fail", zap.Error(err))
		}
		cancel()
		ocrConnector = realOCR
	}

	// Initialize validators
	fileValidator := validator.NewFileValidator(cfg.FileUploadCfg)

	// Initialize use case
	briefingUC := briefing.NewUsecase(
		cfg.PipelineCfg,
		retr,
		store,
		prompt.NewBuilder(),
		generator,
		logger,
	)
	logger.Info("Use cases initialized")

	// Setup API handlers
	briefingHandler := briefingapi.NewHandler(
		briefingUC,
		extractor.New(ocrConnector),
		formatter.NewFactory(),
		fileValidator,
	)

	// Setup router
	router := api.SetupRouter(briefingHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		logger: logger,
	}, nil
}
