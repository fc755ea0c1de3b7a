package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/domain/chatModel"
	"github.com/akolanti/PolicyRAG/internal/domain/commonModels"
	"github.com/akolanti/PolicyRAG/internal/metrics"
	"github.com/akolanti/PolicyRAG/internal/rag/llm"
	"github.com/akolanti/PolicyRAG/pkg/logger_i"
)

// Retriever is the similarity search a workflow is bound to.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]commonModels.ScoredChunk, error)
}

// graph is one session's workflow: contextualize, retrieve, generate.
// It is bound to the retriever that was current when it was built.
type graph struct {
	llm       llm.Provider
	retriever Retriever
	cache     AnswerCache
	k         int
	budget    int
	logger    *logger_i.Logger
}

// run fills state in place. state.ChatHistory is read but never modified.
func (g *graph) run(ctx context.Context, state *chatModel.ConversationState) error {
	history := trimHistory(state.ChatHistory, g.budget)

	standalone, err := g.executeContextualizeStep(ctx, state.Question, history)
	if err != nil {
		return fmt.Errorf("contextualize: %w", err)
	}
	state.Question = standalone

	if g.cache != nil {
		if hit, ok := g.cache.Lookup(ctx, standalone); ok {
			state.RetrievedContext = hit.Context
			state.RelevanceScores = hit.Scores
			state.Answer = hit.Answer
			return nil
		}
	}

	if err := g.executeRetrieveStep(ctx, state); err != nil {
		return fmt.Errorf("retrieve: %w", err)
	}

	answer, err := g.executeGenerateStep(ctx, state, history)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	state.Answer = answer

	if g.cache != nil {
		g.cache.Store(ctx, standalone, chatModel.CachedAnswer{
			Answer:  answer,
			Context: state.RetrievedContext,
			Scores:  state.RelevanceScores,
		})
	}
	return nil
}

func (g *graph) executeContextualizeStep(ctx context.Context, question string, history []chatModel.Turn) (string, error) {
	if len(history) == 0 {
		return question, nil
	}
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("workflow_contextualize", time.Since(start)) }()

	rewritten, err := g.llm.Complete(ctx, contextualizePrompt, history, question)
	if err != nil {
		return "", err
	}
	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return question, nil
	}
	g.logger.WithTrace(ctx, config.TRACE_ID_KEY).Debug("Question reformulated", "standalone", rewritten)
	return rewritten, nil
}

func (g *graph) executeRetrieveStep(ctx context.Context, state *chatModel.ConversationState) error {
	state.RetrievedContext = []commonModels.Chunk{}
	state.RelevanceScores = []float32{}
	if g.retriever == nil {
		return nil
	}
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("workflow_retrieve", time.Since(start)) }()

	hits, err := g.retriever.Search(ctx, state.Question, g.k)
	if err != nil {
		return err
	}
	for _, h := range hits {
		state.RetrievedContext = append(state.RetrievedContext, h.Chunk)
		state.RelevanceScores = append(state.RelevanceScores, h.Score)
	}
	return nil
}

func (g *graph) executeGenerateStep(ctx context.Context, state *chatModel.ConversationState, history []chatModel.Turn) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("workflow_generate", time.Since(start)) }()

	return g.llm.Complete(ctx, qaPrompt(state.RetrievedContext), history, state.Question)
}
