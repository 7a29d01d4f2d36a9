package agent

import (
	"fmt"
	"unicode"

	"github.com/nao1215/prodscout/internal/config"
	"github.com/nao1215/prodscout/internal/model"
)

// defaultSeparators are tried in order when choosing where a chunk ends.
// When none of them fits, the chunk is cut at the size limit.
var defaultSeparators = []string{"\n\n", "\n", " "}

// TextSplitter cuts text into overlapping chunks of at most ChunkSize runes.
// Each chunk ends after the latest separator that still leaves room for
// the overlap, preferring paragraph breaks over line breaks over spaces.
// The next chunk starts at most ChunkOverlap runes before the previous end,
// moved forward to a word boundary.
type TextSplitter struct {
	chunkSize    int
	chunkOverlap int
	separators   [][]rune
}

// NewTextSplitter creates a splitter. The overlap must be smaller than the
// chunk size.
func NewTextSplitter(chunkSize, chunkOverlap int) (*TextSplitter, error) {
	if chunkSize <= 0 || chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("%w: size %d, overlap %d", config.ErrInvalidChunkConfig, chunkSize, chunkOverlap)
	}
	seps := make([][]rune, 0, len(defaultSeparators))
	for _, s := range defaultSeparators {
		seps = append(seps, []rune(s))
	}
	return &TextSplitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   seps,
	}, nil
}

// Split returns the chunks of text in order. Empty text has no chunks.
// model.JoinDocuments(Split(text)) == text.
func (s *TextSplitter) Split(text string) []model.Document {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	var docs []model.Document
	start := 0
	for {
		end := start + s.chunkSize
		if end >= n {
			end = n
		} else {
			end = s.cutPoint(runes, start, end)
		}

		docs = append(docs, model.Document{
			Index:   len(docs),
			Content: string(runes[start:end]),
			Start:   start,
			End:     end,
		})
		if end == n {
			return docs
		}
		start = alignToWord(runes, end-s.chunkOverlap, end)
	}
}

// cutPoint picks the end of a chunk in (start+overlap, limit].
func (s *TextSplitter) cutPoint(runes []rune, start, limit int) int {
	minCut := start + s.chunkOverlap + 1
	for _, sep := range s.separators {
		for i := limit - len(sep); i >= start && i+len(sep) >= minCut; i-- {
			if hasPrefix(runes[i:], sep) {
				return i + len(sep)
			}
		}
	}
	return limit
}

// alignToWord moves pos forward to the start of the next word, staying
// below end.
func alignToWord(runes []rune, pos, end int) int {
	if pos <= 0 || unicode.IsSpace(runes[pos-1]) {
		return pos
	}
	for i := pos; i < end; i++ {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return pos
}

func hasPrefix(runes, prefix []rune) bool {
	if len(runes) < len(prefix) {
		return false
	}
	for i, r := range prefix {
		if runes[i] != r {
			return false
		}
	}
	return true
}
