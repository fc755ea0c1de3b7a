package ingest

import (
	"strings"
	"unicode/utf8"
)

var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// splitter breaks text on the coarsest separator that occurs in it, merges
// the pieces back up to size runes and recurses into pieces that are still
// too long using the finer separators.
type splitter struct {
	size       int
	overlap    int
	separators []string
}

func newSplitter(size, overlap int) *splitter {
	if overlap >= size {
		overlap = size / 5
	}
	return &splitter{size: size, overlap: overlap, separators: defaultSeparators}
}

func (s *splitter) splitText(text string) []string {
	return s.split(text, s.separators)
}

func (s *splitter) split(text string, separators []string) []string {
	sep := separators[len(separators)-1]
	var finer []string
	for i, candidate := range separators {
		if candidate == "" {
			sep = ""
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			finer = separators[i+1:]
			break
		}
	}

	var pieces []string
	for _, p := range strings.Split(text, sep) {
		if p != "" {
			pieces = append(pieces, p)
		}
	}

	var chunks, small []string
	for _, p := range pieces {
		if runeLen(p) < s.size {
			small = append(small, p)
			continue
		}
		if len(small) > 0 {
			chunks = append(chunks, s.merge(small, sep)...)
			small = nil
		}
		if len(finer) == 0 {
			chunks = append(chunks, p)
		} else {
			chunks = append(chunks, s.split(p, finer)...)
		}
	}
	if len(small) > 0 {
		chunks = append(chunks, s.merge(small, sep)...)
	}
	return chunks
}

// merge joins pieces into chunks of at most size runes. Each new chunk starts
// with up to overlap runes worth of trailing pieces from the previous one.
func (s *splitter) merge(pieces []string, sep string) []string {
	sepLen := runeLen(sep)
	var chunks []string
	var window []string
	total := 0

	joinedLen := func(extra int) int {
		if len(window) > 0 {
			return total + extra + sepLen
		}
		return total + extra
	}

	for _, p := range pieces {
		l := runeLen(p)
		if joinedLen(l) > s.size && len(window) > 0 {
			if chunk := strings.TrimSpace(strings.Join(window, sep)); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > s.overlap || (joinedLen(l) > s.size && total > 0) {
				total -= runeLen(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
			}
		}
		total = joinedLen(l)
		window = append(window, p)
	}
	if chunk := strings.TrimSpace(strings.Join(window, sep)); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
