package vectorDB

import (
	"context"
	"fmt"

	"github.com/akolanti/PolicyRAG/internal/domain/commonModels"
	"github.com/akolanti/PolicyRAG/internal/rag/embedding"
)

// Retriever runs similarity search against one fixed index snapshot.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]commonModels.ScoredChunk, error)
}

type snapshotRetriever struct {
	snap     *snapshot
	embedder embedding.Embedder
}

func (r *snapshotRetriever) Search(ctx context.Context, query string, k int) ([]commonModels.ScoredChunk, error) {
	return searchSnapshot(ctx, r.snap, r.embedder, query, k)
}

func searchSnapshot(ctx context.Context, snap *snapshot, e embedding.Embedder, query string, k int) ([]commonModels.ScoredChunk, error) {
	if snap == nil || snap.size() == 0 || k <= 0 {
		return []commonModels.ScoredChunk{}, nil
	}
	vec, err := e.GetEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return snap.search(vec, k)
}
