package bootstrap

import (
	"context"
	"fmt"

	"github.com/devbot-ai/rag-backend/internal/config"
	"github.com/devbot-ai/rag-backend/internal/core/ports"
	"github.com/devbot-ai/rag-backend/internal/core/usecase"
	"github.com/devbot-ai/rag-backend/internal/infrastructure/chunking"
	"github.com/devbot-ai/rag-backend/internal/infrastructure/extractor"
	"github.com/devbot-ai/rag-backend/internal/infrastructure/llm/ollama"
	"github.com/devbot-ai/rag-backend/internal/infrastructure/llm/openai"
	"github.com/devbot-ai/rag-backend/internal/infrastructure/queue/nats"
	"github.com/devbot-ai/rag-backend/internal/infrastructure/repository/postgres"
	"github.com/devbot-ai/rag-backend/internal/infrastructure/storage/localfs"
	"github.com/devbot-ai/rag-backend/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Queue ports.MessageQueue
	Repo  ports.DocumentRepository

	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	QueryUC   ports.QueryService
	DeleteUC  ports.DocumentDeleter

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	embedder := ollama.NewEmbedder(cfg.OllamaURL, cfg.OllamaEmbedModel, cfg.EmbedDimension, cfg.EmbedBatchSize)
	chatModel := openai.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection, cfg.EmbedDimension, cfg.UpsertBatchSize)
	pageExtractor := extractor.NewRegistry(storage)

	chunker, err := buildChunker(cfg, embedder)
	if err != nil {
		return nil, err
	}

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, pageExtractor, chunker, embedder, vectorDB)
	queryUC := usecase.NewQueryUseCase(embedder, vectorDB, chatModel, cfg.RAGTopK)
	deleteUC := usecase.NewDeleteDocumentUseCase(repo, vectorDB)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		QueryUC:   queryUC,
		DeleteUC:  deleteUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

// buildChunker selects exactly one chunking strategy; overlap and dedupe
// always apply on top of it.
func buildChunker(cfg config.Config, embedder ports.Embedder) (ports.Chunker, error) {
	var base ports.Chunker
	switch cfg.ChunkStrategy {
	case "section":
		base = chunking.NewSectionChunker(cfg.ChunkMinLen)
	case "semantic":
		base = chunking.NewSemanticGrouper(embedder, cfg.ChunkSize, cfg.SemanticThreshold)
	default:
		return nil, fmt.Errorf("unknown chunk strategy %q (want section or semantic)", cfg.ChunkStrategy)
	}
	return chunking.NewPipeline(base, cfg.OverlapSentences), nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
