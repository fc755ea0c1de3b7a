package commonModels

import "time"

// Chunk is a bounded span of a source document. Immutable once created.
type Chunk struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Filename  string         `json:"filename"`
	ChunkID   int            `json:"chunk_id"`
	Page      *int           `json:"page,omitempty"`
	WordCount int            `json:"word_count"`
	CharCount int            `json:"char_count"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// IndexedVector is a chunk embedding stored in the similarity index.
type IndexedVector struct {
	DocumentID string    `json:"document_id"`
	Chunk      Chunk     `json:"chunk"`
	Vector     []float32 `json:"-"`
}

// ScoredChunk is a search hit. Score is cosine similarity, higher is closer.
type ScoredChunk struct {
	DocumentID string
	Chunk      Chunk
	Score      float32
}

type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusChunking   DocumentStatus = "chunking"
	StatusEmbedding  DocumentStatus = "embedding"
	StatusReady      DocumentStatus = "ready"
	StatusError      DocumentStatus = "error"
)

// IsTerminal reports whether no further transitions are allowed.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusReady || s == StatusError
}

type DocumentRecord struct {
	DocumentID  string         `json:"document_id"`
	Filename    string         `json:"filename"`
	ChunksCount int            `json:"chunks_count"`
	UploadedAt  time.Time      `json:"uploaded_at"`
	Size        int64          `json:"size"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
}

// DocumentInfo is the serializable projection of a DocumentRecord.
type DocumentInfo struct {
	DocumentID  string         `json:"document_id"`
	Filename    string         `json:"filename"`
	ChunksCount int            `json:"chunks_count"`
	UploadedAt  string         `json:"uploaded_at"`
	Size        int64          `json:"size"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
}

type DocType string

var PDF DocType = "PDF"
var TXT DocType = "TXT"
var ERR DocType = "ERROR"
