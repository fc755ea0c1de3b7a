package googleEmbedding

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/metrics"
	"github.com/akolanti/PolicyRAG/internal/rag/embedding"
	"github.com/akolanti/PolicyRAG/pkg/logger_i"
	"google.golang.org/genai"
)

const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client

type client struct {
	genAi     *genai.Client
	model     string
	dimension int32
}

func newGoogleEmbedder(ctx context.Context, cfg config.EmbeddingConfig, httpClient *http.Client) {
	if cfg.APIKey == "" {
		logger.Error("Google embedding API key is not set", "env", cfg.APIKeyEnv)
		return
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		logger.Error("Error creating Google Embedding client", "error", err)
		return
	}
	embeddingClient = &client{
		genAi:     c,
		model:     cfg.Model,
		dimension: cfg.Dimensions,
	}
	logger.Info("Google Embedding client created", "model", cfg.Model, "dimension", cfg.Dimensions)
	go closeClient(ctx, embeddingClient)
}

func closeClient(ctx context.Context, embeddingClient *client) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
	embeddingClient.genAi = nil
}

// GetGoogleEmbeddingClient returns nil when the client cannot be created.
func GetGoogleEmbeddingClient(ctx context.Context, cfg config.EmbeddingConfig, httpClient *http.Client) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, cfg, httpClient)
	})

	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("google_embedding_query", time.Since(start)) }()

	res, err := c.doCall(ctx, getContent([]string{query}), taskQuery)
	if err != nil {
		logger.WithTrace(ctx, config.TRACE_ID_KEY).Error("Error getting query embedding from Google", "error", err)
		return nil, err
	}
	if len(res.Embeddings) == 0 {
		return nil, fmt.Errorf("google embedding returned no vectors")
	}
	return res.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	log := logger.WithTrace(ctx, config.TRACE_ID_KEY)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("google_embedding_batch", time.Since(start)) }()

	res, err := c.doCall(ctx, getContent(texts), taskDocument)
	if err != nil && doRetry(err, log) {
		log.Debug("Retrying embedding batch", "delay", config.EmbeddingRetryDelay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(config.EmbeddingRetryDelay):
		}
		res, err = c.doCall(ctx, getContent(texts), taskDocument)
	}
	if err != nil {
		log.Error("Error getting Embeddings from Google", "error", err, "batch", len(texts))
		return nil, err
	}

	embeddingResults := make([][]float32, 0, len(res.Embeddings))
	for _, r := range res.Embeddings {
		embeddingResults = append(embeddingResults, r.Values)
	}
	return embeddingResults, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, task string) (*genai.EmbedContentResponse, error) {
	if c.genAi == nil {
		return nil, fmt.Errorf("google embedding client is closed")
	}
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             task,
	})
}
