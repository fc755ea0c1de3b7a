package bootstrap

import (
	"context"
	"net/http"

	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/customHttpClient"
	"github.com/akolanti/PolicyRAG/internal/data/redisStore"
	"github.com/akolanti/PolicyRAG/internal/data/store"
	"github.com/akolanti/PolicyRAG/internal/domain/jobModel"
	"github.com/akolanti/PolicyRAG/internal/rag"
	"github.com/akolanti/PolicyRAG/internal/rag/embedding"
	"github.com/akolanti/PolicyRAG/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/PolicyRAG/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/PolicyRAG/internal/rag/ingest"
	"github.com/akolanti/PolicyRAG/internal/rag/llm"
	"github.com/akolanti/PolicyRAG/internal/rag/llm/gemini"
	"github.com/akolanti/PolicyRAG/internal/rag/llm/openaiLLM"
	"github.com/akolanti/PolicyRAG/internal/rag/vectorDB"
	"github.com/akolanti/PolicyRAG/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/PolicyRAG/internal/rag/workflow"
	"github.com/akolanti/PolicyRAG/pkg/logger_i"
)

// App holds the wired components shared by the server and the CLI.
type App struct {
	Settings *config.Settings
	Index    *vectorDB.Manager
	Engine   *workflow.Engine
	Service  rag.Service
	JobStore jobModel.JobStore
}

type Options struct {
	// Remote enables redis and qdrant when the settings ask for them.
	Remote bool
}

// Build wires every component from settings. Missing providers and offline
// stores degrade the service instead of failing startup.
func Build(ctx context.Context, settings *config.Settings, opts Options) *App {
	log := logger_i.NewLogger("bootstrap")
	httpClient := customHttpClient.GetHttpClient()

	embedder := newEmbedder(ctx, settings.Embedding, httpClient)
	index := vectorDB.NewManager(embedder, vectorDB.Options{Path: settings.VectorStorePath})
	if err := index.Initialize(ctx); err != nil {
		log.Error("Vector index not initialized", "error", err)
	}

	provider, err := llm.Select(ctx, newProviders(ctx, settings.LLMProviders, httpClient)...)
	if err != nil {
		log.Error("Running without a language model", "error", err)
	}

	app := &App{Settings: settings, Index: index}

	checkpoints, jobStore := newStores(ctx, settings, opts.Remote, log)
	app.JobStore = jobStore
	app.Engine = workflow.NewEngine(provider, checkpoints, workflow.Options{
		MaxSessions:        settings.MaxSessions,
		SessionTTL:         settings.SessionTTL,
		HistoryTokenBudget: settings.HistoryTokenBudget,
	})

	var purger rag.CachePurger
	if opts.Remote && settings.QdrantEnabled {
		if cache := newAnswerCache(ctx, settings, embedder); cache != nil {
			app.Engine.SetAnswerCache(cache)
			purger = cache
		} else {
			log.Warn("Semantic answer cache unavailable")
		}
	}

	app.Service = rag.NewService(index, app.Engine, ingest.NewChunker(config.ChunkSize, config.ChunkOverlap), purger)
	return app
}

func newEmbedder(ctx context.Context, cfg config.EmbeddingConfig, httpClient *http.Client) embedding.Embedder {
	switch cfg.Provider {
	case "openai":
		return openaiEmbedding.GetOpenAIEmbeddingClient(cfg, httpClient)
	default:
		return googleEmbedding.GetGoogleEmbeddingClient(ctx, cfg, httpClient)
	}
}

// newProviders builds the ranked candidates. Unknown names are skipped.
func newProviders(ctx context.Context, ranked []config.ProviderConfig, httpClient *http.Client) []llm.Provider {
	log := logger_i.NewLogger("bootstrap")
	providers := make([]llm.Provider, 0, len(ranked))
	for _, cfg := range ranked {
		switch cfg.Name {
		case "gemini":
			providers = append(providers, gemini.GetGeminiClient(ctx, cfg, httpClient))
		case "openai", "groq":
			providers = append(providers, openaiLLM.NewClient(cfg, httpClient))
		default:
			log.Warn("Unknown language model provider", "name", cfg.Name)
		}
	}
	return providers
}

func newStores(ctx context.Context, settings *config.Settings, remote bool, log *logger_i.Logger) (workflow.Checkpointer, jobModel.JobStore) {
	if remote && settings.RedisEnabled {
		sessions := store.NewRedisHistoryStore(redisStore.GetRedisStore(ctx, redisStore.Options{
			Addr:     settings.RedisAddr,
			Password: settings.RedisPassword,
			DB:       config.RedisSessionDB,
		}), config.RedisSessionTTL)
		jobs := store.NewRedisJobStore(redisStore.GetRedisStore(ctx, redisStore.Options{
			Addr:     settings.RedisAddr,
			Password: settings.RedisPassword,
			DB:       config.RedisJobDB,
		}))
		if sessions != nil && jobs != nil {
			return sessions, jobs
		}
		log.Error("Redis stores are offline, keeping history in memory")
	}
	return store.InitInMemoryHistoryStore(), store.InitInMemoryJobStore()
}

func newAnswerCache(ctx context.Context, settings *config.Settings, embedder embedding.Embedder) *qdrantDB.SemanticCache {
	client := qdrantDB.GetQdrantClient(ctx, settings.QdrantHost, settings.QdrantPort)
	if client == nil || embedder == nil {
		return nil
	}
	return qdrantDB.NewSemanticCache(ctx, client, embedder, settings.Embedding.Dimensions)
}
