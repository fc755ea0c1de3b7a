package vectorDB

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/domain/commonModels"
	"github.com/akolanti/PolicyRAG/internal/domain/ragErrors"
	"github.com/akolanti/PolicyRAG/internal/metrics"
	"github.com/akolanti/PolicyRAG/internal/rag/embedding"
	"github.com/akolanti/PolicyRAG/pkg/logger_i"
	"github.com/google/uuid"
)

type Options struct {
	Path        string
	BatchSize   int
	Concurrency int
}

// Manager owns the similarity index, the document record table and their
// on-disk bundle. Mutations are serialised by mu and published by swapping
// the snapshot pointer, so searches never see a half-built index.
type Manager struct {
	embedder embedding.Embedder
	store    *bundleStore
	logger   *logger_i.Logger
	opts     Options

	mu          sync.Mutex
	current     atomic.Pointer[snapshot]
	initialized atomic.Bool

	recMu   sync.RWMutex
	records map[string]commonModels.DocumentRecord
	// ids deleted while their ingestion was still running
	withdrawn map[string]struct{}

	now func() time.Time
}

func NewManager(e embedding.Embedder, opts Options) *Manager {
	if opts.Path == "" {
		opts.Path = config.VectorStorePath
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = config.EmbeddingBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = config.EmbeddingConcurrency
	}
	m := &Manager{
		embedder: e,
		store:    &bundleStore{dir: opts.Path},
		logger:   logger_i.NewLogger("VectorIndex"),
		opts:     opts,
		records:   make(map[string]commonModels.DocumentRecord),
		withdrawn: make(map[string]struct{}),
		now:       time.Now,
	}
	m.current.Store(emptySnapshot())
	return m
}

// Initialize loads the persisted bundle or starts with an empty index.
// A missing, partial or corrupt bundle is never an error.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized.Load() {
		return nil
	}
	if m.embedder == nil {
		return fmt.Errorf("%w: no embedding provider", ragErrors.ErrNotReady)
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("index_load", time.Since(start)) }()

	b, err := m.store.load(ctx)
	switch {
	case errors.Is(err, errBundleAbsent):
		m.logger.Info("No vector store found, starting empty", "path", m.opts.Path)
		m.reset()
	case err != nil:
		m.logger.Warn("Vector store unusable, starting empty", "path", m.opts.Path, "error", err)
		m.reset()
	default:
		if err := m.restore(b); err != nil {
			m.logger.Warn("Vector store inconsistent, starting empty", "path", m.opts.Path, "error", err)
			m.reset()
		}
	}

	m.initialized.Store(true)
	m.reportSize()
	m.logger.Info("Vector index ready", "vectors", m.current.Load().size(), "documents", len(m.recordList()))
	return nil
}

func (m *Manager) reset() {
	m.current.Store(emptySnapshot())
	m.recMu.Lock()
	m.records = make(map[string]commonModels.DocumentRecord)
	m.withdrawn = make(map[string]struct{})
	m.recMu.Unlock()
}

func (m *Manager) restore(b *bundle) error {
	records := make(map[string]commonModels.DocumentRecord, len(b.records))
	for _, r := range b.records {
		// an ingestion that was running when the process stopped will never finish
		if !r.Status.IsTerminal() {
			r.Status = commonModels.StatusError
			r.Error = "ingestion interrupted by restart"
		}
		records[r.DocumentID] = r
	}

	entries := make([]commonModels.IndexedVector, 0, len(b.entries))
	for _, e := range b.entries {
		if _, ok := records[e.DocumentID]; !ok {
			m.logger.Warn("Dropping vector of unknown document", "documentId", e.DocumentID, "chunk", e.Chunk.ID)
			continue
		}
		entries = append(entries, e)
	}

	snap, err := newSnapshot(b.generation, entries)
	if err != nil {
		return err
	}
	m.current.Store(snap)
	m.recMu.Lock()
	m.records = records
	m.recMu.Unlock()
	return nil
}

func (m *Manager) IsInitialized() bool {
	return m.initialized.Load()
}

// AddDocument embeds chunks and appends them to the index under documentID.
// On failure nothing in memory or on disk changes.
func (m *Manager) AddDocument(ctx context.Context, documentID string, chunks []commonModels.Chunk, filename string) error {
	log := m.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("documentId", documentID, "filename", filename)
	if !m.initialized.Load() {
		return ragErrors.NewIngestionError(filename, "index", errors.New("index not initialized"))
	}
	if len(chunks) == 0 {
		return ragErrors.NewIngestionError(filename, "chunking", errors.New("no text content extracted"))
	}

	texts := make([]string, len(chunks))
	var size int64
	for i, c := range chunks {
		texts[i] = c.Text
		size += int64(c.CharCount)
	}

	start := time.Now()
	vectors, err := embedding.EmbedInBatches(ctx, m.embedder, texts, m.opts.BatchSize, m.opts.Concurrency)
	metrics.CaptureExecutionMetrics("index_embed", time.Since(start))
	if err != nil {
		log.Error("Embedding chunks failed", "error", err)
		return ragErrors.NewIngestionError(filename, "embedding", err)
	}

	entries := make([]commonModels.IndexedVector, len(chunks))
	for i, c := range chunks {
		meta := make(map[string]any, len(c.Metadata)+1)
		maps.Copy(meta, c.Metadata)
		meta["document_id"] = documentID
		c.Metadata = meta
		entries[i] = commonModels.IndexedVector{DocumentID: documentID, Chunk: c, Vector: vectors[i]}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.recMu.Lock()
	_, withdrawn := m.withdrawn[documentID]
	delete(m.withdrawn, documentID)
	m.recMu.Unlock()
	if withdrawn {
		log.Warn("Dropping vectors of a document deleted during ingestion")
		return ragErrors.NewIngestionError(filename, "index", errDeletedDuringIngestion)
	}

	next, err := m.current.Load().with(uuid.NewString(), documentID, entries)
	if err != nil {
		log.Error("Inserting vectors failed", "error", err)
		return ragErrors.NewIngestionError(filename, "index", err)
	}

	m.recMu.Lock()
	record := commonModels.DocumentRecord{
		DocumentID:  documentID,
		Filename:    filename,
		ChunksCount: len(chunks),
		UploadedAt:  m.now().UTC(),
		Size:        size,
		Status:      commonModels.StatusReady,
	}
	if prev, ok := m.records[documentID]; ok && !prev.UploadedAt.IsZero() {
		record.UploadedAt = prev.UploadedAt
	}
	m.records[documentID] = record
	m.recMu.Unlock()

	m.current.Store(next)
	m.persist(ctx, next, log)
	log.Info("Document indexed", "chunks", len(chunks), "vectors", next.size())
	return nil
}

// SearchSimilarChunks returns up to k chunks by descending cosine similarity.
func (m *Manager) SearchSimilarChunks(ctx context.Context, query string, k int) ([]commonModels.ScoredChunk, error) {
	if !m.initialized.Load() {
		return []commonModels.ScoredChunk{}, nil
	}
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()
	return searchSnapshot(ctx, m.current.Load(), m.embedder, query, k)
}

// Retriever returns a retriever bound to the snapshot published right now,
// or nil before Initialize.
func (m *Manager) Retriever() Retriever {
	if !m.initialized.Load() {
		return nil
	}
	return &snapshotRetriever{snap: m.current.Load(), embedder: m.embedder}
}

// DeleteDocument removes the record and rebuilds the index from the vectors of
// every other document. If the rebuild fails the index is emptied rather than
// left diverging from the record table.
func (m *Manager) DeleteDocument(ctx context.Context, documentID string) error {
	log := m.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("documentId", documentID)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.recMu.RLock()
	record, ok := m.records[documentID]
	m.recMu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ragErrors.ErrNotFound, documentID)
	}

	start := time.Now()
	next, err := m.current.Load().without(uuid.NewString(), documentID)
	metrics.CaptureExecutionMetrics("index_rebuild", time.Since(start))
	if err != nil {
		log.Error("Index rebuild failed, falling back to an empty index", "error", err)
		next = &snapshot{generation: uuid.NewString()}
	}

	// publish the index first so no reader sees vectors of a removed record
	m.current.Store(next)
	m.recMu.Lock()
	delete(m.records, documentID)
	if !record.Status.IsTerminal() {
		m.withdrawn[documentID] = struct{}{}
	}
	m.recMu.Unlock()

	m.persist(ctx, next, log)
	log.Info("Document deleted", "vectors", next.size())
	return nil
}

// persist must be called with mu held. Failures are logged, memory is kept.
func (m *Manager) persist(ctx context.Context, snap *snapshot, log *logger_i.Logger) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("index_save", time.Since(start)) }()
	m.reportSize()

	if err := m.store.save(context.WithoutCancel(ctx), snap, m.recordList()); err != nil {
		metrics.CapturePersistenceFailure()
		log.Error("Persisting vector store failed", "error", fmt.Errorf("%w: %w", ragErrors.ErrPersistence, err))
	}
}

func (m *Manager) reportSize() {
	m.recMu.RLock()
	docs := len(m.records)
	m.recMu.RUnlock()
	metrics.SetIndexSize(docs, m.current.Load().size())
}

func (m *Manager) HasDocuments() bool {
	m.recMu.RLock()
	defer m.recMu.RUnlock()
	return len(m.records) > 0
}

// VectorCount is the size of the published snapshot.
func (m *Manager) VectorCount() int {
	return m.current.Load().size()
}

func (m *Manager) recordList() []commonModels.DocumentRecord {
	m.recMu.RLock()
	defer m.recMu.RUnlock()
	list := slices.Collect(maps.Values(m.records))
	slices.SortFunc(list, func(a, b commonModels.DocumentRecord) int {
		if c := a.UploadedAt.Compare(b.UploadedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.DocumentID, b.DocumentID)
	})
	return list
}

// GetDocumentsInfo lists records oldest first. Records without a filename or
// upload time are skipped.
func (m *Manager) GetDocumentsInfo() []commonModels.DocumentInfo {
	list := m.recordList()
	out := make([]commonModels.DocumentInfo, 0, len(list))
	for _, r := range list {
		if r.DocumentID == "" || r.Filename == "" || r.UploadedAt.IsZero() {
			m.logger.Warn("Skipping malformed document record", "documentId", r.DocumentID)
			continue
		}
		out = append(out, toInfo(r))
	}
	return out
}

func toInfo(r commonModels.DocumentRecord) commonModels.DocumentInfo {
	return commonModels.DocumentInfo{
		DocumentID:  r.DocumentID,
		Filename:    r.Filename,
		ChunksCount: r.ChunksCount,
		UploadedAt:  r.UploadedAt.UTC().Format(time.RFC3339),
		Size:        r.Size,
		Status:      r.Status,
		Error:       r.Error,
	}
}

func (m *Manager) GetDocument(documentID string) (commonModels.DocumentInfo, error) {
	m.recMu.RLock()
	r, ok := m.records[documentID]
	m.recMu.RUnlock()
	if !ok {
		return commonModels.DocumentInfo{}, fmt.Errorf("%w: %s", ragErrors.ErrNotFound, documentID)
	}
	return toInfo(r), nil
}

// RegisterUpload creates the record for a freshly uploaded file.
func (m *Manager) RegisterUpload(documentID, filename string, size int64) {
	m.recMu.Lock()
	defer m.recMu.Unlock()
	delete(m.withdrawn, documentID)
	m.records[documentID] = commonModels.DocumentRecord{
		DocumentID: documentID,
		Filename:   filename,
		UploadedAt: m.now().UTC(),
		Size:       size,
		Status:     commonModels.StatusProcessing,
	}
}

var errDeletedDuringIngestion = errors.New("document deleted during ingestion")

var allowedTransitions = map[commonModels.DocumentStatus][]commonModels.DocumentStatus{
	commonModels.StatusProcessing: {commonModels.StatusChunking},
	commonModels.StatusChunking:   {commonModels.StatusEmbedding},
	commonModels.StatusEmbedding:  {commonModels.StatusReady},
}

// UpdateStatus moves a record one step along the ingestion pipeline.
func (m *Manager) UpdateStatus(documentID string, status commonModels.DocumentStatus) error {
	m.recMu.Lock()
	defer m.recMu.Unlock()
	r, ok := m.records[documentID]
	if !ok {
		return fmt.Errorf("%w: %s", ragErrors.ErrNotFound, documentID)
	}
	if !slices.Contains(allowedTransitions[r.Status], status) {
		return fmt.Errorf("document %s cannot move from %s to %s", documentID, r.Status, status)
	}
	r.Status = status
	m.records[documentID] = r
	return nil
}

// MarkFailed puts a record into the terminal error state. Unknown ids are
// ignored since the document may have been deleted mid-ingestion.
func (m *Manager) MarkFailed(documentID string, cause error) {
	m.recMu.Lock()
	defer m.recMu.Unlock()
	r, ok := m.records[documentID]
	if !ok {
		delete(m.withdrawn, documentID)
		return
	}
	if r.Status.IsTerminal() {
		return
	}
	r.Status = commonModels.StatusError
	if cause != nil {
		r.Error = cause.Error()
	}
	m.records[documentID] = r
}
