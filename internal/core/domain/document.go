package domain

import (
	"strings"
	"time"
)

// SourceKind is how a document entered the system.
type SourceKind string

// Available source kinds.
const (
	// SourceKindUpload is an uploaded file (PDF, DOCX, text).
	SourceKindUpload SourceKind = "upload"

	// SourceKindURL is a web page fetched by URL.
	SourceKindURL SourceKind = "url"

	// SourceKindText is text pasted directly by the user.
	SourceKindText SourceKind = "text"
)

// IsValid returns true if the source kind is recognised.
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceKindUpload, SourceKindURL, SourceKindText:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k SourceKind) String() string {
	return string(k)
}

// DefaultLabel returns the label used when the caller supplies none.
// URL documents are labelled with the URL itself, so ref is returned.
func (k SourceKind) DefaultLabel(ref string) string {
	switch k {
	case SourceKindURL:
		if ref != "" {
			return ref
		}
		return "Web page"
	case SourceKindText:
		return "Pasted text"
	default:
		if ref != "" {
			return ref
		}
		return "Uploaded PDF"
	}
}

// Document is an ingested study source.
// It is owned by exactly one user and deleting it removes its chunks
// and every artifact generated from it.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// OwnerID is the user who ingested the document.
	OwnerID OwnerID

	// Label is the human-readable name shown in the library.
	Label string

	// Kind is how the document was ingested.
	Kind SourceKind

	// SourceRef is the original location (URL or file name). Empty for pasted text.
	SourceRef string

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// DocumentSummary is a library entry: a document plus the number of
// artifacts generated from it.
type DocumentSummary struct {
	Document

	QuizCount      int
	FlashcardCount int
	NoteCount      int
	ChunkCount     int
}

// TextChunk is a contiguous slice of a document's cleaned text.
// Offsets are rune offsets into the whitespace-normalised text the
// chunker operated on. Text is the trimmed content of that slice.
type TextChunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Index is the sequential position within the document, starting at 0.
	Index int

	// StartOffset is the inclusive start of the slice.
	StartOffset int

	// EndOffset is the exclusive end of the slice.
	EndOffset int

	// Text is the chunk content.
	Text string
}

// Len returns the number of runes spanned by the chunk offsets.
func (c TextChunk) Len() int {
	return c.EndOffset - c.StartOffset
}

// JoinChunks reassembles the normalised document text from ordered chunks,
// dropping the overlap between neighbours. Offsets are in runes.
func JoinChunks(chunks []TextChunk) string {
	var b strings.Builder
	covered := 0
	for _, c := range chunks {
		text := []rune(c.Text)
		if c.StartOffset < covered {
			skip := covered - c.StartOffset
			if skip >= len(text) {
				continue
			}
			text = text[skip:]
		} else if covered > 0 && c.StartOffset > covered {
			b.WriteByte(' ')
		}
		b.WriteString(string(text))
		if c.EndOffset > covered {
			covered = c.EndOffset
		}
	}
	return b.String()
}

// RetrievedChunk is a chunk returned by a similarity query together
// with its distance to the query embedding. It is never persisted.
type RetrievedChunk struct {
	TextChunk

	// Distance is the cosine distance to the query (0 is identical).
	Distance float64
}

// DefaultRetrievalLimit is the number of chunks returned when no limit is given.
const DefaultRetrievalLimit = 8

// RetrievalQuery describes a similarity query against the chunk store.
type RetrievalQuery struct {
	// Embedding is the query vector.
	Embedding []float32

	// Model identifies the embedding provider configuration that produced
	// Embedding. Only chunks embedded by the same model are eligible.
	Model string

	// OwnerID is mandatory: only this owner's chunks are eligible.
	OwnerID OwnerID

	// DocumentID optionally restricts results to one document.
	DocumentID string

	// Limit is the maximum number of results. Zero means DefaultRetrievalLimit.
	Limit int
}

// EffectiveLimit returns Limit, or the default when Limit is not positive.
func (q RetrievalQuery) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultRetrievalLimit
	}
	return q.Limit
}

// Validate checks the query before it reaches a store.
func (q RetrievalQuery) Validate() error {
	if err := q.OwnerID.Validate(); err != nil {
		return err
	}
	if len(q.Embedding) == 0 {
		return ErrInvalidInput
	}
	return nil
}

// DefaultContextChars is the default context budget in characters.
const DefaultContextChars = 8000

// BuiltContext is the prompt context assembled from retrieved chunks.
type BuiltContext struct {
	// Context is the concatenated, trimmed context text.
	Context string

	// ChunksUsed is the prefix of the input chunks that fit the budget.
	ChunksUsed []RetrievedChunk
}

// IsEmpty reports whether no chunk fitted the budget.
func (b BuiltContext) IsEmpty() bool {
	return len(b.ChunksUsed) == 0
}
