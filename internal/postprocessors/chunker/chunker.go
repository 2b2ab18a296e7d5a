// Package chunker splits cleaned text into overlapping, boundary-aware chunks.
package chunker

import (
	"fmt"
	"strings"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// minBreakRatio is the fraction of a window that must precede a sentence
// break for the break to be used.
const minBreakRatio = 0.4

// Split divides text into chunks of at most chunkSize characters.
//
// Whitespace is normalised first (every run becomes one space, ends are
// trimmed) and offsets are rune offsets into that normalised text. When a
// window ends before the text does, it is shortened to just after the last
// '.' or '\n' inside it, provided that break lies past 40% of the window.
// The next window starts overlap characters before the previous end.
// Whitespace-only slices are skipped without consuming an index.
//
// The returned chunks have no ID or DocumentID; callers assign them.
func Split(text string, chunkSize, overlap int) ([]domain.TextChunk, error) {
	if err := validate(chunkSize, overlap); err != nil {
		return nil, err
	}

	runes := []rune(strings.Join(strings.Fields(text), " "))
	n := len(runes)
	if n == 0 {
		return nil, nil
	}

	chunks := make([]domain.TextChunk, 0, n/(chunkSize-overlap)+1)
	minBreak := float64(chunkSize) * minBreakRatio
	start, index := 0, 0

	for start < n {
		end := start + chunkSize
		if end > n {
			end = n
		}

		sliceEnd := end
		if end < n {
			if bp := lastBreak(runes, start, end); bp >= 0 && float64(bp) > float64(start)+minBreak {
				sliceEnd = bp + 1
			}
		}

		if body := strings.TrimSpace(string(runes[start:sliceEnd])); body != "" {
			chunks = append(chunks, domain.TextChunk{
				Index:       index,
				StartOffset: start,
				EndOffset:   sliceEnd,
				Text:        body,
			})
			index++
		}

		if sliceEnd >= n {
			break
		}

		next := sliceEnd - overlap
		if next < 0 {
			next = 0
		}
		if next <= start {
			next = sliceEnd
		}
		start = next
	}

	return chunks, nil
}

// lastBreak returns the index of the last '.' or '\n' in runes[start:end], or -1.
func lastBreak(runes []rune, start, end int) int {
	for i := end - 1; i > start; i-- {
		if runes[i] == '.' || runes[i] == '\n' {
			return i
		}
	}
	return -1
}

func validate(chunkSize, overlap int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidChunkConfig, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return fmt.Errorf("%w: overlap %d must be in [0, %d)", domain.ErrInvalidChunkConfig, overlap, chunkSize)
	}
	return nil
}
