// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EmbeddingService: Turns text into fixed-dimension vectors
//   - LLMService: Generates answers, quizzes, flashcards and notes
//   - DocumentStore, ChunkStore, ArtifactStore: Owner-scoped persistence
//   - NormaliserRegistry: Extracts text from uploaded bytes
//   - PostProcessorPipeline: Cleans and chunks extracted text
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - URLFetcher: Without it, URL ingestion is rejected as unsupported.
//   - PromptStore: Without it, built-in prompt templates are used.
//   - Metrics: Without it, nothing is recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
