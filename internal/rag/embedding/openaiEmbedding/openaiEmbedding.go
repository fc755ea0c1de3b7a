package openaiEmbedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/metrics"
	"github.com/akolanti/PolicyRAG/internal/rag/embedding"
	"github.com/akolanti/PolicyRAG/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client

type client struct {
	api       openai.Client
	model     string
	dimension int32
}

// GetOpenAIEmbeddingClient returns nil when no API key is configured.
func GetOpenAIEmbeddingClient(cfg config.EmbeddingConfig, httpClient *http.Client) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("openai_embedding")
		if cfg.APIKey == "" {
			logger.Error("OpenAI embedding API key is not set", "env", cfg.APIKeyEnv)
			return
		}
		opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
		if httpClient != nil {
			opts = append(opts, option.WithHTTPClient(httpClient))
		}
		embeddingClient = &client{
			api:       openai.NewClient(opts...),
			model:     cfg.Model,
			dimension: cfg.Dimensions,
		}
		logger.Info("OpenAI Embedding client created", "model", cfg.Model)
	})

	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{query}, "openai_embedding_query")
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	return c.embed(ctx, texts, "openai_embedding_batch")
}

func (c *client) embed(ctx context.Context, texts []string, label string) ([][]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics(label, time.Since(start)) }()

	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(c.model),
	}
	// only the v3 models accept a reduced dimension
	if c.dimension > 0 && strings.HasPrefix(c.model, "text-embedding-3") {
		params.Dimensions = openai.Int(int64(c.dimension))
	}

	res, err := c.api.Embeddings.New(ctx, params)
	if err != nil {
		logger.WithTrace(ctx, config.TRACE_ID_KEY).Error("Error getting embeddings from OpenAI", "error", err)
		return nil, err
	}
	if len(res.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(res.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range res.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) {
			return nil, fmt.Errorf("openai returned out of range index %d", d.Index)
		}
		vectors[d.Index] = toFloat32(d.Embedding)
	}
	return vectors, nil
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
