package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/domain/commonModels"
	"github.com/akolanti/PolicyRAG/internal/domain/ragErrors"
	"github.com/akolanti/PolicyRAG/internal/metrics"
	"github.com/akolanti/PolicyRAG/pkg/logger_i"
	"github.com/akolanti/PolicyRAG/pkg/tokens"
)

var logger = logger_i.NewLogger("Document Ingestion")

// Chunker turns an uploaded file into indexable chunks.
type Chunker struct {
	splitter    *splitter
	pageTimeout time.Duration
}

func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = config.ChunkSize
	}
	if overlap < 0 {
		overlap = config.ChunkOverlap
	}
	return &Chunker{splitter: newSplitter(size, overlap), pageTimeout: config.PageExtractTimeout}
}

func GetDocType(filename string) commonModels.DocType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return commonModels.PDF
	case ".txt":
		return commonModels.TXT
	default:
		return commonModels.ERR
	}
}

// ChunkFile extracts the text of path and splits it page by page. Chunk ids
// are filename_n with n running over the whole document.
func (c *Chunker) ChunkFile(ctx context.Context, path, filename string) ([]commonModels.Chunk, error) {
	log := logger.WithTrace(ctx, config.TRACE_ID_KEY).With("filename", filename)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("ingest_chunking", time.Since(start)) }()

	var pages []rawPage
	var err error
	switch docType := GetDocType(filename); docType {
	case commonModels.PDF:
		pages, err = extractPDF(ctx, path, c.pageTimeout)
	case commonModels.TXT:
		pages, err = extractTxt(path)
	default:
		err = fmt.Errorf("unsupported file type %q", filepath.Ext(filename))
	}
	if err != nil {
		log.Error("Extracting document text failed", "error", err)
		return nil, ragErrors.NewIngestionError(filename, "extraction", err)
	}

	chunks := c.prepareChunks(pages, filename)
	if len(chunks) == 0 {
		return nil, ragErrors.NewIngestionError(filename, "chunking", fmt.Errorf("no text content extracted"))
	}
	log.Debug("Document chunked", "pages", len(pages), "chunks", len(chunks))
	return chunks, nil
}

func (c *Chunker) prepareChunks(pages []rawPage, filename string) []commonModels.Chunk {
	var chunks []commonModels.Chunk
	for _, page := range pages {
		for _, text := range c.splitter.splitText(page.Content) {
			chunk := commonModels.Chunk{
				ID:        fmt.Sprintf("%s_%d", filename, len(chunks)),
				Text:      text,
				Filename:  filename,
				ChunkID:   len(chunks),
				WordCount: len(strings.Fields(text)),
				CharCount: runeLen(text),
				Metadata: map[string]any{
					"source":      filename,
					"token_count": tokens.Count(text),
				},
			}
			if page.Number > 0 {
				n := page.Number
				chunk.Page = &n
				chunk.Metadata["page"] = n
			}
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
