package embedding_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/akolanti/PolicyRAG/internal/rag/embedding"
)

type mockEmbedder struct {
	calls     int32
	batchFunc func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return []float32{float32(len(query))}, nil
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.batchFunc != nil {
		return m.batchFunc(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func TestEmbedInBatches(t *testing.T) {
	texts := make([]string, 250)
	for i := range texts {
		texts[i] = string(make([]byte, i))
	}

	tests := []struct {
		name      string
		batchSize int
		wantCalls int32
	}{
		{"three batches", 100, 3},
		{"single batch", 0, 1},
		{"exact", 250, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockEmbedder{}
			vectors, err := embedding.EmbedInBatches(context.Background(), m, texts, tt.batchSize, 2)
			if err != nil {
				t.Fatalf("EmbedInBatches failed: %v", err)
			}
			if m.calls != tt.wantCalls {
				t.Errorf("calls got %d, want %d", m.calls, tt.wantCalls)
			}
			for i, v := range vectors {
				if int(v[0]) != i {
					t.Fatalf("vector %d out of order: %v", i, v)
				}
			}
		})
	}
}

func TestEmbedInBatches_Errors(t *testing.T) {
	t.Run("provider error", func(t *testing.T) {
		m := &mockEmbedder{batchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("quota")
		}}
		if _, err := embedding.EmbedInBatches(context.Background(), m, []string{"a", "b"}, 1, 1); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("short batch", func(t *testing.T) {
		m := &mockEmbedder{batchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1}}, nil
		}}
		if _, err := embedding.EmbedInBatches(context.Background(), m, []string{"a", "b"}, 2, 1); err == nil {
			t.Error("expected length mismatch error")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		vectors, err := embedding.EmbedInBatches(context.Background(), &mockEmbedder{}, nil, 10, 1)
		if err != nil || vectors != nil {
			t.Errorf("got %v, %v", vectors, err)
		}
	})
}
