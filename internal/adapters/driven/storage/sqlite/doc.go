// Package sqlite provides the default persistent store for documents,
// chunks and study artifacts.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database holds:
//
//   - DocumentStore: ingested documents
//   - ChunkStore: chunk text with embedding vectors
//   - ArtifactStore: quizzes, attempts, flashcard sets and notes
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Every artifact table references documents with ON DELETE CASCADE, so deleting
// a document removes everything generated from it in one statement.
//
// # Similarity Search
//
// Vectors are stored as little-endian float32 blobs. Retrieval loads the
// owner's chunks for the query's model and dimension and ranks them by cosine
// distance in Go. This is linear in the owner's chunk count.
//
// # Data Location
//
// By default, the database is stored at ~/.quizbolt/data/quizbolt.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
