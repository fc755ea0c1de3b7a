package rag

import (
	"context"
	"time"

	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/domain/chatModel"
	"github.com/akolanti/PolicyRAG/internal/domain/commonModels"
	"github.com/akolanti/PolicyRAG/internal/metrics"
)

const previewEllipsis = "..."

func (s *service) executeWorkflowStep(ctx context.Context, sessionID string, query string) (chatModel.ConversationState, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("workflow_turn", time.Since(start)) }()

	return s.engine.Run(ctx, sessionID, query)
}

func (s *service) executeChunkingStep(ctx context.Context, path string, filename string) ([]commonModels.Chunk, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("chunking", time.Since(start)) }()

	return s.chunker.ChunkFile(ctx, path, filename)
}

// projectSources turns the retrieved context into citations. Scores default
// to 0 when the retrieval produced none.
func projectSources(state chatModel.ConversationState) []chatModel.Source {
	sources := make([]chatModel.Source, len(state.RetrievedContext))
	for i, c := range state.RetrievedContext {
		var score float32
		if i < len(state.RelevanceScores) {
			score = state.RelevanceScores[i]
		}
		sources[i] = chatModel.Source{
			ID:             c.ID,
			DocumentName:   documentName(c),
			ContentPreview: preview(c.Text, config.SourcePreviewSize),
			Page:           c.Page,
			RelevanceScore: score,
		}
	}
	return sources
}

func documentName(c commonModels.Chunk) string {
	if c.Filename != "" {
		return c.Filename
	}
	if name, ok := c.Metadata["source"].(string); ok {
		return name
	}
	return "Unknown"
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + previewEllipsis
}
