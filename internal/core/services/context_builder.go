package services

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

// BuildContext concatenates retrieved chunks into a prompt context of at
// most maxChars runes. Each chunk is preceded by a "[source N]" header
// where N is its index in the document. Chunks are taken in order and
// never truncated: the first chunk that does not fit ends the context.
// maxChars <= 0 uses domain.DefaultContextChars.
func BuildContext(chunks []domain.RetrievedChunk, maxChars int) domain.BuiltContext {
	if maxChars <= 0 {
		maxChars = domain.DefaultContextChars
	}

	var b strings.Builder
	used := make([]domain.RetrievedChunk, 0, len(chunks))
	total := 0
	for _, c := range chunks {
		header := "\n[source " + strconv.Itoa(c.Index) + "]\n"
		cost := utf8.RuneCountInString(header) + utf8.RuneCountInString(c.Text)
		if total+cost > maxChars {
			break
		}
		b.WriteString(header)
		b.WriteString(c.Text)
		total += cost
		used = append(used, c)
	}

	return domain.BuiltContext{
		Context:    strings.TrimSpace(b.String()),
		ChunksUsed: used,
	}
}

// joinChunkTexts builds the study-material context: chunk texts separated
// by blank lines.
func joinChunkTexts(chunks []domain.TextChunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return strings.Join(texts, "\n\n")
}
