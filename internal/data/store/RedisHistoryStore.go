package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/data/redisStore"
	"github.com/akolanti/PolicyRAG/internal/domain/chatModel"
	"github.com/akolanti/PolicyRAG/pkg/logger_i"
)

const sessionKeyPrefix = "session:"

// RedisHistoryStore checkpoints conversation turns as a JSON list per session.
type RedisHistoryStore struct {
	store  *redisStore.Store
	ttl    time.Duration
	logger *logger_i.Logger
}

func NewRedisHistoryStore(store *redisStore.Store, ttl time.Duration) *RedisHistoryStore {
	if store == nil {
		return nil
	}
	return &RedisHistoryStore{
		store:  store,
		ttl:    ttl,
		logger: logger_i.NewLogger("HistoryStore"),
	}
}

func (s *RedisHistoryStore) LoadHistory(ctx context.Context, sessionID string) ([]chatModel.Turn, error) {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("sessionId", sessionID)
	raw, err := s.store.ListGetAll(ctx, sessionKeyPrefix+sessionID)
	if err != nil && !s.store.IsNil(err) {
		log.Error("Error getting history", "error", err)
		return nil, fmt.Errorf("loading history for %s: %w", sessionID, err)
	}

	turns := make([]chatModel.Turn, 0, len(raw))
	for _, item := range raw {
		var turn chatModel.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			log.Warn("Skipping undecodable turn", "error", err)
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *RedisHistoryStore) AppendTurn(ctx context.Context, sessionID string, turn chatModel.Turn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return err
	}
	if err := s.store.ListPushWithTTL(ctx, sessionKeyPrefix+sessionID, data, s.ttl); err != nil {
		s.logger.WithTrace(ctx, config.TRACE_ID_KEY).Error("Error saving turn", "sessionId", sessionID, "error", err)
		return fmt.Errorf("saving turn for %s: %w", sessionID, err)
	}
	return nil
}

func (s *RedisHistoryStore) ClearHistory(ctx context.Context, sessionID string) error {
	if err := s.store.Del(ctx, sessionKeyPrefix+sessionID); err != nil {
		return fmt.Errorf("clearing history for %s: %w", sessionID, err)
	}
	s.logger.WithTrace(ctx, config.TRACE_ID_KEY).Debug("History cleared", "sessionId", sessionID)
	return nil
}
