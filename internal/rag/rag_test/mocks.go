package rag_test

import (
	"context"
	"sync"

	"github.com/akolanti/PolicyRAG/internal/domain/chatModel"
	"github.com/akolanti/PolicyRAG/internal/domain/commonModels"
	"github.com/akolanti/PolicyRAG/internal/domain/ragErrors"
	"github.com/akolanti/PolicyRAG/internal/rag/vectorDB"
)

// MockIndex implements rag.IndexManager
type MockIndex struct {
	mu sync.Mutex

	OnAddDocument    func(ctx context.Context, id string, chunks []commonModels.Chunk, filename string) error
	OnDeleteDocument func(ctx context.Context, id string) error
	OnSearch         func(ctx context.Context, query string, k int) ([]commonModels.ScoredChunk, error)
	Documents        bool

	Statuses       []commonModels.DocumentStatus
	Failed         map[string]error
	RetrieverCalls int
}

func (m *MockIndex) AddDocument(ctx context.Context, id string, chunks []commonModels.Chunk, filename string) error {
	if m.OnAddDocument != nil {
		return m.OnAddDocument(ctx, id, chunks, filename)
	}
	m.Documents = true
	return nil
}

func (m *MockIndex) DeleteDocument(ctx context.Context, id string) error {
	if m.OnDeleteDocument != nil {
		return m.OnDeleteDocument(ctx, id)
	}
	return ragErrors.ErrNotFound
}

func (m *MockIndex) HasDocuments() bool  { return m.Documents }
func (m *MockIndex) IsInitialized() bool { return true }

func (m *MockIndex) GetDocumentsInfo() []commonModels.DocumentInfo {
	return []commonModels.DocumentInfo{}
}

func (m *MockIndex) GetDocument(id string) (commonModels.DocumentInfo, error) {
	return commonModels.DocumentInfo{}, ragErrors.ErrNotFound
}

func (m *MockIndex) RegisterUpload(id string, filename string, size int64) {}

func (m *MockIndex) UpdateStatus(id string, status commonModels.DocumentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Statuses = append(m.Statuses, status)
	return nil
}

func (m *MockIndex) MarkFailed(id string, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Failed == nil {
		m.Failed = map[string]error{}
	}
	m.Failed[id] = cause
}

func (m *MockIndex) Retriever() vectorDB.Retriever {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RetrieverCalls++
	return &MockRetriever{OnSearch: m.OnSearch}
}

type MockRetriever struct {
	OnSearch func(ctx context.Context, query string, k int) ([]commonModels.ScoredChunk, error)
}

func (m *MockRetriever) Search(ctx context.Context, query string, k int) ([]commonModels.ScoredChunk, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, query, k)
	}
	return []commonModels.ScoredChunk{}, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnComplete func(ctx context.Context, system string, history []chatModel.Turn, question string) (string, error)
}

func (m *MockLLM) Name() string { return "mock" }

func (m *MockLLM) Complete(ctx context.Context, system string, history []chatModel.Turn, question string) (string, error) {
	if m.OnComplete != nil {
		return m.OnComplete(ctx, system, history, question)
	}
	return "mocked llm response", nil
}

func (m *MockLLM) Ping(ctx context.Context) error { return nil }

// MockChunker implements rag.ChunkProducer
type MockChunker struct {
	OnChunkFile func(ctx context.Context, path string, filename string) ([]commonModels.Chunk, error)
}

func (m *MockChunker) ChunkFile(ctx context.Context, path string, filename string) ([]commonModels.Chunk, error) {
	if m.OnChunkFile != nil {
		return m.OnChunkFile(ctx, path, filename)
	}
	return []commonModels.Chunk{{ID: filename + "_0", Text: "chunk", Filename: filename}}, nil
}

// MockPurger implements rag.CachePurger
type MockPurger struct {
	Purges int
	Err    error
}

func (m *MockPurger) Purge(ctx context.Context) error {
	m.Purges++
	return m.Err
}
