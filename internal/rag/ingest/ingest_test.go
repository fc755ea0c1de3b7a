package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/PolicyRAG/internal/domain/commonModels"
	"github.com/akolanti/PolicyRAG/internal/domain/ragErrors"
)

func TestGetDocType(t *testing.T) {
	tests := []struct {
		path     string
		expected commonModels.DocType
	}{
		{"test.pdf", commonModels.PDF},
		{"POLICY.PDF", commonModels.PDF},
		{"notes.txt", commonModels.TXT},
		{"DOC.DOCX", commonModels.ERR},
		{"image.png", commonModels.ERR},
		{"noext", commonModels.ERR},
	}

	for _, tt := range tests {
		if got := GetDocType(tt.path); got != tt.expected {
			t.Errorf("GetDocType(%s) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestSplitText(t *testing.T) {
	sentence := "The insured vehicle is covered for collision damage. "
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
		want    int
	}{
		{"short text is one chunk", "Page one content.", 100, 10, 1},
		{"empty text", "", 100, 10, 0},
		{"whitespace only", "   \n\n  ", 100, 10, 0},
		{"paragraphs merge under the limit", "alpha beta\n\ngamma delta", 100, 10, 1},
		{"long text splits", strings.Repeat(sentence, 40), 200, 40, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := newSplitter(tt.size, tt.overlap).splitText(tt.text)
			if tt.want > 0 && len(chunks) != tt.want {
				t.Fatalf("got %d chunks, want %d: %q", len(chunks), tt.want, chunks)
			}
			if tt.want == 0 && tt.text != "" && strings.TrimSpace(tt.text) != "" && len(chunks) < 2 {
				t.Fatalf("expected several chunks, got %d", len(chunks))
			}
			if strings.TrimSpace(tt.text) == "" && len(chunks) != 0 {
				t.Fatalf("expected no chunks, got %q", chunks)
			}
			for i, c := range chunks {
				if runeLen(c) > tt.size {
					t.Errorf("chunk %d has %d runes, limit %d", i, runeLen(c), tt.size)
				}
				if c != strings.TrimSpace(c) || c == "" {
					t.Errorf("chunk %d not trimmed: %q", i, c)
				}
			}
		})
	}
}

func TestSplitText_Overlap(t *testing.T) {
	var words []string
	for i := 0; i < 300; i++ {
		words = append(words, "w"+strings.Repeat("x", i%5))
	}
	text := strings.Join(words, " ")

	chunks := newSplitter(100, 30).splitText(text)
	if len(chunks) < 3 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1])
		last := prevWords[len(prevWords)-1]
		if !strings.Contains(chunks[i], last) {
			t.Errorf("chunk %d does not overlap chunk %d", i, i-1)
		}
	}
}

func TestSplitText_PrefersParagraphs(t *testing.T) {
	para := strings.Repeat("a", 60)
	text := para + "\n\n" + para + "\n\n" + para
	chunks := newSplitter(100, 0).splitText(text)
	if len(chunks) != 3 {
		t.Fatalf("expected one chunk per paragraph, got %d: %q", len(chunks), chunks)
	}
	for _, c := range chunks {
		if c != para {
			t.Errorf("paragraph cut mid-way: %q", c)
		}
	}
}

func TestSplitText_HardCutWithoutSeparators(t *testing.T) {
	text := strings.Repeat("é", 250)
	chunks := newSplitter(100, 0).splitText(text)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if strings.Join(chunks, "") != text {
		t.Error("hard cut lost runes")
	}
}

func TestPrepareChunks(t *testing.T) {
	pages := []rawPage{
		{Number: 1, Content: "Page one content."},
		{Number: 2, Content: "Page two content."},
	}

	chunks := NewChunker(1000, 200).prepareChunks(pages, "policy.pdf")

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks (one per page), got %d", len(chunks))
	}
	if chunks[0].ID != "policy.pdf_0" || chunks[1].ID != "policy.pdf_1" {
		t.Errorf("chunk ids not unique across pages: %s, %s", chunks[0].ID, chunks[1].ID)
	}
	if chunks[1].Page == nil || *chunks[1].Page != 2 {
		t.Errorf("page mismatch in chunk 1: %+v", chunks[1])
	}
	if chunks[0].WordCount != 3 || chunks[0].CharCount != len("Page one content.") {
		t.Errorf("counts wrong: %+v", chunks[0])
	}
	if chunks[0].Metadata["token_count"].(int) <= 0 {
		t.Error("token count missing")
	}
}

func TestPrepareChunks_OrdinalSpansPages(t *testing.T) {
	pages := []rawPage{
		{Number: 1, Content: "collision coverage pays for damage after an accident"},
		{Number: 2, Content: "towing included"},
	}

	chunks := NewChunker(20, 0).prepareChunks(pages, "auto.pdf")

	if len(chunks) < 3 {
		t.Fatalf("expected page one to split, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if c.ChunkID != i || c.ID != fmt.Sprintf("auto.pdf_%d", i) {
			t.Errorf("chunk %d has ChunkID %d and id %s", i, c.ChunkID, c.ID)
		}
	}
	last := chunks[len(chunks)-1]
	if last.Page == nil || *last.Page != 2 || last.ChunkID == 0 {
		t.Errorf("second page chunk should continue the document ordinal: %+v", last)
	}
}

func TestChunkFile_Text(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "upload-1.txt")
	body := strings.Repeat("Flood damage is excluded unless a rider is purchased. ", 50)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	chunks, err := NewChunker(500, 100).ChunkFile(context.Background(), path, "home.txt")
	if err != nil {
		t.Fatalf("ChunkFile failed: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if c.Filename != "home.txt" {
			t.Errorf("filename got %s", c.Filename)
		}
		if c.Page != nil {
			t.Error("text files have no pages")
		}
	}
}

func TestChunkFile_Failures(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	_ = os.WriteFile(empty, nil, 0o600)
	notPDF := filepath.Join(dir, "broken.pdf")
	_ = os.WriteFile(notPDF, []byte("definitely not a pdf"), 0o600)

	tests := []struct {
		name     string
		path     string
		filename string
	}{
		{"unsupported type", empty, "slides.pptx"},
		{"empty text", empty, "empty.txt"},
		{"corrupt pdf", notPDF, "broken.pdf"},
		{"missing file", filepath.Join(dir, "ghost.txt"), "ghost.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunker(1000, 200).ChunkFile(context.Background(), tt.path, tt.filename)
			var ingestErr *ragErrors.IngestionError
			if !errors.As(err, &ingestErr) {
				t.Fatalf("expected IngestionError, got %v", err)
			}
			if ingestErr.Filename != tt.filename {
				t.Errorf("error names %s, want %s", ingestErr.Filename, tt.filename)
			}
		})
	}
}
