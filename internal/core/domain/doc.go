// Package domain defines the core business entities for QuizBolt.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested study source owned by one user
//   - TextChunk: A contiguous slice of a document's cleaned text
//   - RetrievedChunk: A chunk plus its distance to a query embedding
//   - Quiz, FlashcardSet, Note: Artifacts generated from a document
//   - OwnerID: The identity every store and service call is scoped to
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
