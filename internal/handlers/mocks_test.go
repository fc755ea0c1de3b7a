package handlers_test

import (
	"context"
	"sync"

	"github.com/akolanti/PolicyRAG/internal/domain/chatModel"
	"github.com/akolanti/PolicyRAG/internal/domain/commonModels"
	"github.com/akolanti/PolicyRAG/internal/domain/jobModel"
	"github.com/akolanti/PolicyRAG/internal/domain/ragErrors"
)

// MockService implements rag.Service
type MockService struct {
	mu sync.Mutex

	OnGenerateAnswer  func(ctx context.Context, query, sessionID string) (chatModel.Answer, error)
	OnDeleteDocument  func(ctx context.Context, id string) error
	OnGetDocument     func(id string) (commonModels.DocumentInfo, error)
	OnClearSession    func(ctx context.Context, id string) error
	Documents         []commonModels.DocumentInfo
	Registered        map[string]string
	Failed            map[string]error
	LastSessionID     string
	HasDocs, HasModel bool
}

func (m *MockService) GenerateAnswer(ctx context.Context, query, sessionID string) (chatModel.Answer, error) {
	m.LastSessionID = sessionID
	if m.OnGenerateAnswer != nil {
		return m.OnGenerateAnswer(ctx, query, sessionID)
	}
	return chatModel.Answer{Answer: "mocked", Sources: []chatModel.Source{}}, nil
}

func (m *MockService) AddDocument(ctx context.Context, id string, chunks []commonModels.Chunk, filename string) error {
	return nil
}

func (m *MockService) DeleteDocument(ctx context.Context, id string) error {
	if m.OnDeleteDocument != nil {
		return m.OnDeleteDocument(ctx, id)
	}
	return nil
}

func (m *MockService) IngestFile(ctx context.Context, id, path, filename string) error {
	return nil
}

func (m *MockService) RegisterUpload(id string, filename string, size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Registered == nil {
		m.Registered = map[string]string{}
	}
	m.Registered[id] = filename
}

func (m *MockService) MarkFailed(id string, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Failed == nil {
		m.Failed = map[string]error{}
	}
	m.Failed[id] = cause
}

func (m *MockService) ClearSession(ctx context.Context, id string) error {
	if m.OnClearSession != nil {
		return m.OnClearSession(ctx, id)
	}
	return nil
}

func (m *MockService) HasDocuments() bool     { return m.HasDocs }
func (m *MockService) IsInitialized() bool    { return true }
func (m *MockService) HasLanguageModel() bool { return m.HasModel }

func (m *MockService) GetDocumentsInfo() []commonModels.DocumentInfo {
	if m.Documents == nil {
		return []commonModels.DocumentInfo{}
	}
	return m.Documents
}

func (m *MockService) GetDocument(id string) (commonModels.DocumentInfo, error) {
	if m.OnGetDocument != nil {
		return m.OnGetDocument(id)
	}
	return commonModels.DocumentInfo{}, ragErrors.ErrNotFound
}

// MockQueue implements handlers.JobQueue
type MockQueue struct {
	mu   sync.Mutex
	Err  error
	Jobs []jobModel.IngestJob
}

func (m *MockQueue) Enqueue(ctx context.Context, job jobModel.IngestJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Jobs = append(m.Jobs, job)
	return nil
}

func (m *MockQueue) GetJob(ctx context.Context, id string) (jobModel.IngestJob, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Jobs) - 1; i >= 0; i-- {
		if m.Jobs[i].Id == id {
			return m.Jobs[i], true
		}
	}
	return jobModel.IngestJob{}, false
}
