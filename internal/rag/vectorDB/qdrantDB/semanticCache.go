package qdrantDB

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/domain/chatModel"
	"github.com/akolanti/PolicyRAG/internal/metrics"
	"github.com/akolanti/PolicyRAG/internal/rag/embedding"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// SemanticCache stores answers keyed by the embedding of the standalone
// question. A lookup hits when the closest stored question is at least
// CacheSimilarityCutoff similar.
type SemanticCache struct {
	client     *qdrant.Client
	embedder   embedding.Embedder
	collection string
	dimension  uint64

	// purging blocks lookups and stores while the collection is recreated
	purging sync.RWMutex
}

// NewSemanticCache returns nil when client or embedder is nil or the
// collection cannot be created.
func NewSemanticCache(ctx context.Context, client *qdrant.Client, e embedding.Embedder, dimension int32) *SemanticCache {
	if client == nil || e == nil {
		return nil
	}
	c := &SemanticCache{
		client:     client,
		embedder:   e,
		collection: config.SemanticCacheName,
		dimension:  uint64(dimension),
	}
	if err := createCollection(ctx, client, c.collection, c.dimension); err != nil {
		logger.Error("Semantic cache collection creation failed", "error", err)
		return nil
	}
	return c
}

func (c *SemanticCache) Lookup(ctx context.Context, question string) (chatModel.CachedAnswer, bool) {
	loggr := logger.WithTrace(ctx, config.TRACE_ID_KEY)
	c.purging.RLock()
	defer c.purging.RUnlock()

	vector, err := c.embedder.GetEmbedding(ctx, question)
	if err != nil {
		loggr.Warn("Embedding question for cache failed", "error", err)
		return chatModel.CachedAnswer{}, false
	}

	searchResult, err := c.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: c.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Cache query failed", "error", err)
		metrics.CaptureCacheLookup(false)
		return chatModel.CachedAnswer{}, false
	}
	if len(searchResult) == 0 || searchResult[0].Score < config.CacheSimilarityCutoff {
		metrics.CaptureCacheLookup(false)
		return chatModel.CachedAnswer{}, false
	}

	var cached chatModel.CachedAnswer
	if err := json.Unmarshal([]byte(searchResult[0].Payload["cached"].GetStringValue()), &cached); err != nil {
		loggr.Warn("Undecodable cache entry", "error", err)
		metrics.CaptureCacheLookup(false)
		return chatModel.CachedAnswer{}, false
	}
	loggr.Info("Answer cache hit", "score", searchResult[0].Score)
	metrics.CaptureCacheLookup(true)
	return cached, true
}

func (c *SemanticCache) Store(ctx context.Context, question string, answer chatModel.CachedAnswer) {
	loggr := logger.WithTrace(ctx, config.TRACE_ID_KEY)
	c.purging.RLock()
	defer c.purging.RUnlock()

	vector, err := c.embedder.GetEmbedding(ctx, question)
	if err != nil {
		loggr.Warn("Embedding question for cache failed", "error", err)
		return
	}
	data, err := json.Marshal(answer)
	if err != nil {
		loggr.Error("Encoding cache entry failed", "error", err)
		return
	}

	_, err = c.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.collection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(uuid.NewString()),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"question":  question,
					"cached":    string(data),
					"timestamp": time.Now().Unix(),
				}),
			},
		},
	})
	if err != nil {
		loggr.Error("Saving answer to cache failed", "error", err)
	}
}

// Purge forgets every cached answer. Called whenever the index changes.
func (c *SemanticCache) Purge(ctx context.Context) error {
	c.purging.Lock()
	defer c.purging.Unlock()
	if err := recreateCollection(ctx, c.client, c.collection, c.dimension); err != nil {
		logger.WithTrace(ctx, config.TRACE_ID_KEY).Error("Purging answer cache failed", "error", err)
		return err
	}
	logger.WithTrace(ctx, config.TRACE_ID_KEY).Debug("Answer cache purged")
	return nil
}
