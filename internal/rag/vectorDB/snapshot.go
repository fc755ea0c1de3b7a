package vectorDB

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/akolanti/PolicyRAG/internal/domain/commonModels"
)

var errDimensionMismatch = errors.New("vector dimension mismatch")

// snapshot is an immutable index. Mutations build a new snapshot and publish it.
type snapshot struct {
	generation string
	entries    []commonModels.IndexedVector
	norms      []float64
	dim        int
}

func emptySnapshot() *snapshot {
	return &snapshot{}
}

func newSnapshot(generation string, entries []commonModels.IndexedVector) (*snapshot, error) {
	s := &snapshot{
		generation: generation,
		entries:    entries,
		norms:      make([]float64, len(entries)),
	}
	for i, e := range entries {
		if len(e.Vector) == 0 {
			return nil, fmt.Errorf("entry %s has no vector: %w", e.Chunk.ID, errDimensionMismatch)
		}
		if s.dim == 0 {
			s.dim = len(e.Vector)
		} else if len(e.Vector) != s.dim {
			return nil, fmt.Errorf("entry %s has %d dims, index has %d: %w", e.Chunk.ID, len(e.Vector), s.dim, errDimensionMismatch)
		}
		s.norms[i] = norm(e.Vector)
	}
	return s, nil
}

func (s *snapshot) size() int {
	return len(s.entries)
}

// with returns a new snapshot holding the current entries followed by added.
// Earlier vectors of documentID are replaced.
func (s *snapshot) with(generation, documentID string, added []commonModels.IndexedVector) (*snapshot, error) {
	entries := make([]commonModels.IndexedVector, 0, len(s.entries)+len(added))
	for _, e := range s.entries {
		if e.DocumentID != documentID {
			entries = append(entries, e)
		}
	}
	entries = append(entries, added...)
	return newSnapshot(generation, entries)
}

// without rebuilds the index from every entry not owned by documentID.
func (s *snapshot) without(generation, documentID string) (*snapshot, error) {
	kept := make([]commonModels.IndexedVector, 0, len(s.entries))
	for _, e := range s.entries {
		if e.DocumentID != documentID {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		return &snapshot{generation: generation}, nil
	}
	return newSnapshot(generation, kept)
}

// search is exact cosine kNN. Results are sorted by descending similarity,
// ties keep insertion order.
func (s *snapshot) search(query []float32, k int) ([]commonModels.ScoredChunk, error) {
	if k <= 0 || len(s.entries) == 0 {
		return []commonModels.ScoredChunk{}, nil
	}
	if len(query) != s.dim {
		return nil, fmt.Errorf("query has %d dims, index has %d: %w", len(query), s.dim, errDimensionMismatch)
	}

	qNorm := norm(query)
	type hit struct {
		idx   int
		score float64
	}
	hits := make([]hit, len(s.entries))
	for i, e := range s.entries {
		hits[i] = hit{idx: i, score: cosine(query, qNorm, e.Vector, s.norms[i])}
	}
	slices.SortStableFunc(hits, func(a, b hit) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return 0
	})

	k = min(k, len(hits))
	out := make([]commonModels.ScoredChunk, k)
	for i := 0; i < k; i++ {
		e := s.entries[hits[i].idx]
		out[i] = commonModels.ScoredChunk{
			DocumentID: e.DocumentID,
			Chunk:      e.Chunk,
			Score:      float32(hits[i].score),
		}
	}
	return out, nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (aNorm * bNorm)
}
