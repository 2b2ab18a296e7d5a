package driving

import (
	"context"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

// IngestService turns a source into a stored, chunked and embedded document.
type IngestService interface {
	// Ingest extracts, cleans, chunks and embeds the source, then stores the
	// document and its chunks. Nothing is stored if any step fails.
	Ingest(ctx context.Context, owner domain.OwnerID, req IngestRequest) (*IngestResult, error)
}

// IngestRequest describes a source to ingest.
type IngestRequest struct {
	// Kind selects which of the fields below is used.
	Kind domain.SourceKind

	// Label overrides the default library label.
	Label string

	// Text is the pasted text (SourceKindText).
	Text string

	// URL is the page to fetch (SourceKindURL).
	URL string

	// FileName, MIMEType and Content describe an upload (SourceKindUpload).
	// MIMEType is inferred from FileName when empty.
	FileName string
	MIMEType string
	Content  []byte
}

// IngestResult reports what was stored.
type IngestResult struct {
	Document   domain.Document
	ChunkCount int
}
