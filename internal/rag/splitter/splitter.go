// Package splitter segments raw document text into overlapping
// fixed-size windows suitable for embedding and retrieval.
package splitter

import (
	"unicode"

	"github.com/docbrief/nlp-engine/internal/entity"
	"github.com/google/uuid"
)

const (
	DefaultChunkSize = 500
	DefaultOverlap   = 50

	// How far back from the raw cut point we search for a sentence
	// or whitespace boundary before giving up and cutting mid-word.
	boundaryLookback = 80
)

// Splitter produces deterministic overlapping chunks. Identical input
// text always yields identical chunk boundaries; only chunk IDs vary.
type Splitter struct {
	chunkSize int
	overlap   int
}

func New(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultOverlap
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

// Split cuts text into chunks of roughly chunkSize runes with overlap
// runes shared between neighbors. Cuts prefer sentence ends, then
// whitespace, within boundaryLookback of the raw cut point. Offsets
// are rune offsets, so stitching chunk texts by offset reconstructs
// the input exactly. Text shorter than one window yields one chunk.
func (s *Splitter) Split(ownerID, text string) []entity.Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []entity.Chunk
	start := 0
	for ordinal := 0; ; ordinal++ {
		end := start + s.chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = s.adjustCut(runes, start, end)
		}

		chunks = append(chunks, entity.Chunk{
			ID:        uuid.New().String(),
			OwnerID:   ownerID,
			Ordinal:   ordinal,
			Text:      string(runes[start:end]),
			CharStart: start,
			CharEnd:   end,
		})

		if end == len(runes) {
			break
		}
		start = end - s.overlap
	}
	return chunks
}

// adjustCut walks back from the raw cut point looking for a natural
// boundary. A candidate must leave the next window a real advance
// (past the overlap region), otherwise the raw cut stands.
func (s *Splitter) adjustCut(runes []rune, start, rawEnd int) int {
	minEnd := start + s.overlap + 1
	lookback := rawEnd - boundaryLookback
	if lookback < minEnd {
		lookback = minEnd
	}

	// Sentence boundaries win over plain whitespace.
	for i := rawEnd; i > lookback; i-- {
		if isSentenceEnd(runes[i-1]) {
			return i
		}
	}
	for i := rawEnd; i > lookback; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return rawEnd
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '\n':
		return true
	}
	return false
}
