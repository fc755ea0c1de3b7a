package workflow

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/domain/chatModel"
	"github.com/akolanti/PolicyRAG/internal/metrics"
	"github.com/akolanti/PolicyRAG/internal/rag/llm"
	"github.com/akolanti/PolicyRAG/pkg/logger_i"
)

// Checkpointer stores the turns of each session.
type Checkpointer interface {
	LoadHistory(ctx context.Context, sessionID string) ([]chatModel.Turn, error)
	AppendTurn(ctx context.Context, sessionID string, turn chatModel.Turn) error
	ClearHistory(ctx context.Context, sessionID string) error
}

// AnswerCache short-circuits retrieval and generation for standalone
// questions that were answered before.
type AnswerCache interface {
	Lookup(ctx context.Context, question string) (chatModel.CachedAnswer, bool)
	Store(ctx context.Context, question string, answer chatModel.CachedAnswer)
}

type Options struct {
	MaxSessions        int
	SessionTTL         time.Duration
	HistoryTokenBudget int
	K                  int
}

// session is the cache entry of one conversation. turnMu orders the turns of
// the session and outlives graph invalidation.
type session struct {
	id       string
	turnMu   sync.Mutex
	graph    *graph
	lastUsed time.Time
	inUse    int
}

// Engine runs conversation turns and owns the bounded session cache.
type Engine struct {
	llm         llm.Provider
	checkpoints Checkpointer
	cache       AnswerCache
	opts        Options
	logger      *logger_i.Logger

	mu        sync.Mutex
	retriever Retriever
	sessions  map[string]*list.Element
	lru       *list.List

	now func() time.Time
}

func NewEngine(provider llm.Provider, checkpoints Checkpointer, opts Options) *Engine {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = config.MaxSessions
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = config.SessionTTL
	}
	if opts.HistoryTokenBudget <= 0 {
		opts.HistoryTokenBudget = config.HistoryTokenBudget
	}
	if opts.K <= 0 {
		opts.K = config.RetrievalK
	}
	return &Engine{
		llm:         provider,
		checkpoints: checkpoints,
		opts:        opts,
		logger:      logger_i.NewLogger("Workflow"),
		sessions:    make(map[string]*list.Element),
		lru:         list.New(),
		now:         time.Now,
	}
}

// SetAnswerCache installs cache for workflows built from now on.
func (e *Engine) SetAnswerCache(cache AnswerCache) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = cache
	e.invalidateLocked()
}

// UpdateRetriever binds future turns to r. Every cached workflow is dropped;
// checkpointed history is kept.
func (e *Engine) UpdateRetriever(r Retriever) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.retriever = r
	e.invalidateLocked()
	e.logger.Debug("Retriever swapped, session workflows invalidated", "sessions", e.lru.Len())
}

func (e *Engine) invalidateLocked() {
	for el := e.lru.Front(); el != nil; el = el.Next() {
		el.Value.(*session).graph = nil
	}
}

// Run executes one turn. Turns of the same session run one at a time in
// arrival order; a failed turn leaves the history untouched.
func (e *Engine) Run(ctx context.Context, sessionID, question string) (chatModel.ConversationState, error) {
	log := e.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("sessionId", sessionID)
	if e.llm == nil {
		return chatModel.ConversationState{}, errors.New("no language model configured")
	}

	s := e.acquire(ctx, sessionID)
	defer e.release(s)

	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	g := e.graphFor(s)

	history, err := e.checkpoints.LoadHistory(ctx, sessionID)
	if err != nil {
		return chatModel.ConversationState{}, fmt.Errorf("loading history: %w", err)
	}

	state := chatModel.ConversationState{Question: question, ChatHistory: history}
	if err := g.run(ctx, &state); err != nil {
		log.Error("Workflow turn failed", "error", err)
		return chatModel.ConversationState{}, err
	}

	turn := chatModel.Turn{Human: question, AI: state.Answer}
	if err := e.checkpoints.AppendTurn(ctx, sessionID, turn); err != nil {
		log.Error("Checkpointing turn failed, answer returned without history update", "error", err)
		state.ChatHistory = history
		return state, nil
	}
	state.ChatHistory = append(history, turn)
	log.Debug("Turn complete", "historyTurns", len(state.ChatHistory), "chunks", len(state.RetrievedContext))
	return state, nil
}

// ClearSession drops the session workflow and its history. It waits for a
// running turn of that session to finish first.
func (e *Engine) ClearSession(ctx context.Context, sessionID string) error {
	s := e.acquire(ctx, sessionID)
	defer e.release(s)

	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	e.mu.Lock()
	s.graph = nil
	e.mu.Unlock()

	if err := e.checkpoints.ClearHistory(ctx, sessionID); err != nil {
		return fmt.Errorf("clearing session %s: %w", sessionID, err)
	}
	e.logger.WithTrace(ctx, config.TRACE_ID_KEY).Info("Session cleared", "sessionId", sessionID)
	return nil
}

func (e *Engine) HasLanguageModel() bool {
	return e.llm != nil
}

// SessionCount is the number of cached sessions.
func (e *Engine) SessionCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lru.Len()
}

func (e *Engine) graphFor(s *session) *graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s.graph == nil {
		s.graph = &graph{
			llm:       e.llm,
			retriever: e.retriever,
			cache:     e.cache,
			k:         e.opts.K,
			budget:    e.opts.HistoryTokenBudget,
			logger:    e.logger,
		}
	}
	return s.graph
}

// acquire returns the pinned entry for id, creating it when needed.
func (e *Engine) acquire(ctx context.Context, id string) *session {
	e.mu.Lock()
	now := e.now()
	var s *session
	if el, ok := e.sessions[id]; ok {
		s = el.Value.(*session)
		e.lru.MoveToFront(el)
	} else {
		s = &session{id: id}
		e.sessions[id] = e.lru.PushFront(s)
	}
	s.inUse++
	s.lastUsed = now

	evicted := e.evictLocked(now)
	e.mu.Unlock()

	e.dropHistory(ctx, evicted)
	return s
}

func (e *Engine) release(s *session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s.inUse--
	s.lastUsed = e.now()
	if el, ok := e.sessions[s.id]; ok && el.Value.(*session) == s {
		e.lru.MoveToFront(el)
	}
}

// EvictExpired drops sessions idle for longer than the session TTL.
func (e *Engine) EvictExpired(ctx context.Context) {
	e.mu.Lock()
	evicted := e.evictLocked(e.now())
	e.mu.Unlock()

	e.dropHistory(ctx, evicted)
}

// evictLocked walks from the least recently used end, dropping idle sessions
// that expired or that push the cache over capacity. Pinned sessions stay.
// It returns the evicted ids; their history is cleared once mu is released.
func (e *Engine) evictLocked(now time.Time) []string {
	var evicted []string
	for el := e.lru.Back(); el != nil; {
		prev := el.Prev()
		s := el.Value.(*session)
		expired := now.Sub(s.lastUsed) > e.opts.SessionTTL
		over := e.lru.Len() > e.opts.MaxSessions
		if !expired && !over {
			break
		}
		if s.inUse == 0 {
			e.lru.Remove(el)
			delete(e.sessions, s.id)
			evicted = append(evicted, s.id)
		}
		el = prev
	}
	metrics.SetCachedSessions(e.lru.Len())
	return evicted
}

func (e *Engine) dropHistory(ctx context.Context, ids []string) {
	for _, id := range ids {
		clearCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.RedisPingTimeout)
		err := e.checkpoints.ClearHistory(clearCtx, id)
		cancel()
		if err != nil {
			e.logger.Warn("Clearing evicted session history failed", "sessionId", id, "error", err)
			continue
		}
		e.logger.Debug("Session evicted", "sessionId", id)
	}
}

// StartJanitor evicts expired sessions every interval until ctx is done.
func (e *Engine) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.EvictExpired(ctx)
			}
		}
	}()
}
