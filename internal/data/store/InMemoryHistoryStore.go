package store

import (
	"context"
	"slices"
	"sync"

	"github.com/akolanti/PolicyRAG/internal/domain/chatModel"
)

type InMemoryHistoryStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string][]chatModel.Turn
}

func InitInMemoryHistoryStore() *InMemoryHistoryStore {
	return &InMemoryHistoryStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string][]chatModel.Turn),
	}
}

func (store *InMemoryHistoryStore) LoadHistory(ctx context.Context, sessionID string) ([]chatModel.Turn, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	return slices.Clone(store.chatMap[sessionID]), nil
}

func (store *InMemoryHistoryStore) AppendTurn(ctx context.Context, sessionID string, turn chatModel.Turn) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[sessionID] = append(store.chatMap[sessionID], turn)
	return nil
}

func (store *InMemoryHistoryStore) ClearHistory(ctx context.Context, sessionID string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	delete(store.chatMap, sessionID)
	return nil
}
