package rag

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/domain/chatModel"
	"github.com/akolanti/PolicyRAG/internal/domain/commonModels"
	"github.com/akolanti/PolicyRAG/internal/domain/ragErrors"
	"github.com/akolanti/PolicyRAG/internal/metrics"
	"github.com/akolanti/PolicyRAG/internal/rag/vectorDB"
	"github.com/akolanti/PolicyRAG/internal/rag/workflow"
	"github.com/akolanti/PolicyRAG/pkg/logger_i"
)

/*
ARCHITECTURE NOTE: OPAQUE INTERFACE PATTERN
---------------------------------------------------------

1. Service (Interface):
  - This is the PUBLIC contract the handlers, the worker, the MCP tools
    and the CLI talk to.

2. service (Private Struct):
  - Holds the index manager, the conversation engine, the chunker and
    the answer cache. Nothing outside this package reaches them directly.

3. NewService:
  - Links the private struct to the public interface so tests can swap
    the index and the chunker for mocks.
*/

// Service is the single entry point for answering and document lifecycle.
type Service interface {
	GenerateAnswer(ctx context.Context, query string, sessionID string) (chatModel.Answer, error)
	AddDocument(ctx context.Context, documentID string, chunks []commonModels.Chunk, filename string) error
	DeleteDocument(ctx context.Context, documentID string) error
	IngestFile(ctx context.Context, documentID string, path string, filename string) error
	RegisterUpload(documentID string, filename string, size int64)
	MarkFailed(documentID string, cause error)
	ClearSession(ctx context.Context, sessionID string) error

	HasDocuments() bool
	IsInitialized() bool
	HasLanguageModel() bool
	GetDocumentsInfo() []commonModels.DocumentInfo
	GetDocument(documentID string) (commonModels.DocumentInfo, error)
}

// IndexManager is the part of vectorDB.Manager the service drives.
type IndexManager interface {
	AddDocument(ctx context.Context, documentID string, chunks []commonModels.Chunk, filename string) error
	DeleteDocument(ctx context.Context, documentID string) error
	HasDocuments() bool
	IsInitialized() bool
	GetDocumentsInfo() []commonModels.DocumentInfo
	GetDocument(documentID string) (commonModels.DocumentInfo, error)
	RegisterUpload(documentID string, filename string, size int64)
	UpdateStatus(documentID string, status commonModels.DocumentStatus) error
	MarkFailed(documentID string, cause error)
	Retriever() vectorDB.Retriever
}

// ChunkProducer splits an uploaded file into chunks.
type ChunkProducer interface {
	ChunkFile(ctx context.Context, path string, filename string) ([]commonModels.Chunk, error)
}

// CachePurger forgets cached answers when the index changes.
type CachePurger interface {
	Purge(ctx context.Context) error
}

type service struct {
	index   IndexManager
	engine  *workflow.Engine
	chunker ChunkProducer
	cache   CachePurger
	logger  *logger_i.Logger
}

// NewService binds engine to the index's current retriever. cache may be nil.
func NewService(index IndexManager, engine *workflow.Engine, chunker ChunkProducer, cache CachePurger) Service {
	s := &service{
		index:   index,
		engine:  engine,
		chunker: chunker,
		cache:   cache,
		logger:  logger_i.NewLogger("RAG Service"),
	}
	engine.UpdateRetriever(index.Retriever())
	return s
}

func (s *service) GenerateAnswer(ctx context.Context, query string, sessionID string) (chatModel.Answer, error) {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("sessionId", sessionID)

	if strings.TrimSpace(query) == "" {
		return chatModel.Answer{}, fmt.Errorf("%w: empty question", ragErrors.ErrInvalidInput)
	}
	if !s.engine.HasLanguageModel() {
		return chatModel.Answer{}, ragErrors.ErrNoLanguageModel
	}
	if !s.index.HasDocuments() {
		return chatModel.Answer{}, ragErrors.ErrNoDocuments
	}

	state, err := s.executeWorkflowStep(ctx, sessionID, query)
	if err != nil {
		log.Error("Answer generation failed", "error", err)
		return chatModel.Answer{}, fmt.Errorf("%w: %w", ragErrors.ErrGeneration, err)
	}

	return chatModel.Answer{
		Answer:  state.Answer,
		Sources: projectSources(state),
	}, nil
}

func (s *service) AddDocument(ctx context.Context, documentID string, chunks []commonModels.Chunk, filename string) error {
	if err := s.index.AddDocument(ctx, documentID, chunks, filename); err != nil {
		return err
	}
	s.indexChanged(ctx)
	return nil
}

func (s *service) DeleteDocument(ctx context.Context, documentID string) error {
	if err := s.index.DeleteDocument(ctx, documentID); err != nil {
		return err
	}
	s.indexChanged(ctx)
	return nil
}

// indexChanged rebinds every session to the new snapshot and drops answers
// grounded on the old one.
func (s *service) indexChanged(ctx context.Context) {
	s.engine.UpdateRetriever(s.index.Retriever())
	if s.cache != nil {
		if err := s.cache.Purge(context.WithoutCancel(ctx)); err != nil {
			s.logger.WithTrace(ctx, config.TRACE_ID_KEY).Warn("Answer cache not purged", "error", err)
		}
	}
}

// IngestFile runs the detached ingestion pipeline for one upload. Failures
// are recorded on the document record; the returned error is for logging.
func (s *service) IngestFile(ctx context.Context, documentID string, path string, filename string) error {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("documentId", documentID, "filename", filename)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("Error removing uploaded file", "path", path, "error", err)
		}
	}()

	err := s.ingest(ctx, documentID, path, filename)
	if err != nil {
		s.index.MarkFailed(documentID, err)
		metrics.CaptureIngestOutcome(string(commonModels.StatusError))
		log.Error("Document ingestion failed", "error", err)
		return err
	}
	metrics.CaptureIngestOutcome(string(commonModels.StatusReady))
	log.Info("Document ingested")
	return nil
}

func (s *service) ingest(ctx context.Context, documentID string, path string, filename string) error {
	if err := s.index.UpdateStatus(documentID, commonModels.StatusChunking); err != nil {
		return ragErrors.NewIngestionError(filename, "chunking", err)
	}
	chunks, err := s.executeChunkingStep(ctx, path, filename)
	if err != nil {
		return err
	}
	if err := s.index.UpdateStatus(documentID, commonModels.StatusEmbedding); err != nil {
		return ragErrors.NewIngestionError(filename, "embedding", err)
	}
	return s.AddDocument(ctx, documentID, chunks, filename)
}

func (s *service) RegisterUpload(documentID string, filename string, size int64) {
	s.index.RegisterUpload(documentID, filename, size)
}

func (s *service) MarkFailed(documentID string, cause error) {
	s.index.MarkFailed(documentID, cause)
	metrics.CaptureIngestOutcome(string(commonModels.StatusError))
}

func (s *service) ClearSession(ctx context.Context, sessionID string) error {
	return s.engine.ClearSession(ctx, sessionID)
}

func (s *service) HasDocuments() bool {
	return s.index.HasDocuments()
}

func (s *service) IsInitialized() bool {
	return s.index.IsInitialized()
}

func (s *service) HasLanguageModel() bool {
	return s.engine.HasLanguageModel()
}

func (s *service) GetDocumentsInfo() []commonModels.DocumentInfo {
	return s.index.GetDocumentsInfo()
}

func (s *service) GetDocument(documentID string) (commonModels.DocumentInfo, error) {
	return s.index.GetDocument(documentID)
}
