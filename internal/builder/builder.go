package builder

import (
	"context"
	"fmt"
	"net/http"

	"github.com/futig/planner-backend/internal/api"
	questionapi "github.com/futig/planner-backend/internal/api/question"
	"github.com/futig/planner-backend/internal/config"
	"github.com/futig/planner-backend/internal/integration/embedding"
	"github.com/futig/planner-backend/internal/integration/llm"
	"github.com/futig/planner-backend/internal/pkg/formatter"
	"github.com/futig/planner-backend/internal/pkg/tokenizer"
	"github.com/futig/planner-backend/internal/pkg/validator"
	"github.com/futig/planner-backend/internal/repository"
	"github.com/futig/planner-backend/internal/usecase/preprocess"
	"github.com/futig/planner-backend/internal/usecase/question"
	"github.com/futig/planner-backend/internal/usecase/retrieval"
	"go.uber.org/zap"
)

type completionConnector interface {
	retrieval.Completer
	question.LLMConnector
}

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerCfg.Addr),
		zap.String("model", cfg.PlannerCfg.Model),
		zap.String("kb_backend", cfg.KnowledgeBaseCfg.Backend),
	)

	tok, err := tokenizer.New(cfg.PlannerCfg.Model)
	if err != nil {
		return nil, fmt.Errorf("setup tokenizer: %w", err)
	}

	// Initialize external service connectors (with mock support)
	var llmConnector completionConnector
	var embedder repository.Embedder

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		llmConnector = llm.NewMockConnector(logger)
		embedder = embedding.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		llmConnector = llm.NewConnector(cfg.LLMConnectorCfg, cfg.PlannerCfg.Model, logger)
		embedder = embedding.NewConnector(cfg.EmbeddingConnectorCfg, logger)
	}

	store, db, err := setupVectorStore(ctx, cfg.KnowledgeBaseCfg, logger)
	if err != nil {
		return nil, err
	}
	knowledgeBase := repository.NewKnowledgeBase(embedder, store)
	logger.Info("Knowledge base initialized")

	// Initialize use cases
	p := cfg.PlannerCfg
	preprocessor := preprocess.NewPreprocessor(tok, preprocess.Config{
		ModelMaxTokens:     p.ModelMaxTokens,
		SafetyBufferTokens: p.SafetyBufferTokens,
		OverlapTokens:      p.OverlapTokens,
	})

	orchestrator := retrieval.NewOrchestrator(preprocessor, llmConnector, knowledgeBase, retrieval.Config{
		TopK:                   p.TopK,
		MaxParallelAttachments: p.MaxParallelAttachments,
		SummaryMaxOutputTokens: p.SummaryMaxOutputTokens,
		Temperature:            p.Temperature,
	})

	questionUC := question.NewUsecase(orchestrator, llmConnector, formatter.NewFactory(), p.Temperature)
	logger.Info("Use cases initialized")

	// Setup API handlers
	questionHandler := questionapi.NewHandler(questionUC, validator.New(cfg.FileUploadCfg))

	router := api.SetupRouter(questionHandler, logger, cfg.ServerCfg.HandlerTimeout)
	logger.Info("HTTP router configured")

	server := &http.Server{
		Addr:         cfg.ServerCfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ServerCfg.ReadTimeout,
		WriteTimeout: cfg.ServerCfg.WriteTimeout,
		IdleTimeout:  cfg.ServerCfg.IdleTimeout,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:        server,
		knowledgeBase: knowledgeBase,
		db:            db,
		logger:        logger,
	}, nil
}
