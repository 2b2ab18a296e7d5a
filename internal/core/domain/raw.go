package domain

// RawDocument represents opaque bytes handed to ingestion.
// It is the input to normalisation, before any text is extracted.
type RawDocument struct {
	// URI is the original location (file name, URL, etc).
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains source-specific key-value pairs.
	Metadata map[string]any
}

// SourceText is the extracted text of a document as it moves through
// the post-processing pipeline. Processors may rewrite Text before
// the chunker splits it.
type SourceText struct {
	// DocumentID links the text to its Document, if one exists yet.
	DocumentID string

	// Text is the current text content.
	Text string
}
