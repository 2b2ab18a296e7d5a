package domain

import "fmt"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderFake is the deterministic offline provider used for
	// development and tests. Its output is not semantically meaningful.
	AIProviderFake AIProvider = "fake"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API (chat only).
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderFake, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderFake
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderFake:
		return "Fake (deterministic, offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or an OpenAI-compatible proxy).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the vector size. Zero uses the model's known size.
	Dimensions int

	// RequestsPerSecond throttles provider calls. Zero disables throttling.
	RequestsPerSecond float64

	// CacheURL is a redis:// URL for the embedding cache. Empty disables caching.
	CacheURL string

	// CacheTTLSeconds is how long cached vectors live. Zero keeps them forever.
	CacheTTLSeconds int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the chat model used for question answering.
	Model string

	// GenerationModel is the model used for quizzes, flashcards and notes.
	// Empty means Model.
	GenerationModel string

	// BaseURL is the API endpoint (for Ollama or an OpenAI-compatible proxy).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// EffectiveGenerationModel returns GenerationModel, falling back to Model.
func (l LLMSettings) EffectiveGenerationModel() string {
	if l.GenerationModel != "" {
		return l.GenerationModel
	}
	return l.Model
}

// RAG defaults.
const (
	DefaultChunkSize      = 800
	DefaultChunkOverlap   = 150
	DefaultEmbedBatchSize = 64
)

// RAGSettings holds retrieval-augmented generation tuning.
type RAGSettings struct {
	// ChunkSize is the target chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters shared by adjacent chunks.
	ChunkOverlap int

	// RetrievalLimit is the number of chunks retrieved per question.
	RetrievalLimit int

	// ContextChars is the prompt context budget in characters.
	ContextChars int

	// EmbedBatchSize is the number of chunks embedded per provider call.
	EmbedBatchSize int
}

// Validate rejects chunk configurations that cannot make progress.
func (r RAGSettings) Validate() error {
	if r.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidChunkConfig, r.ChunkSize)
	}
	if r.ChunkOverlap < 0 || r.ChunkOverlap >= r.ChunkSize {
		return fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidChunkConfig, r.ChunkOverlap, r.ChunkSize)
	}
	if r.RetrievalLimit <= 0 || r.ContextChars <= 0 || r.EmbedBatchSize <= 0 {
		return fmt.Errorf("%w: retrieval limit, context budget and batch size must be positive", ErrInvalidInput)
	}
	return nil
}

// PipelineConfig returns the post-processor pipeline derived from these settings.
func (r RAGSettings) PipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"cleaner", "chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": r.ChunkSize,
				"overlap":    r.ChunkOverlap,
			},
		},
	}
}

// StoreBackend selects the persistence adapter.
type StoreBackend string

// Available store backends.
const (
	StoreBackendSQLite   StoreBackend = "sqlite"
	StoreBackendPostgres StoreBackend = "postgres"
	StoreBackendMemory   StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendSQLite, StoreBackendPostgres, StoreBackendMemory:
		return true
	default:
		return false
	}
}

// StoreSettings holds persistence configuration.
type StoreSettings struct {
	// Backend is the store implementation.
	Backend StoreBackend

	// Path is the SQLite data directory.
	Path string

	// DSN is the Postgres connection string.
	DSN string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// User is the default owner for local commands.
	User OwnerID

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// RAG holds chunking, retrieval and context settings.
	RAG RAGSettings

	// Store holds persistence settings.
	Store StoreSettings

	// ServerAddr is the HTTP API listen address.
	ServerAddr string

	// LogFormat is "console" or "json".
	LogFormat string
}

// DefaultAppSettings returns settings with sensible defaults.
// Providers default to the fake implementation so the tool works offline;
// switching to a real provider requires an API key or a local Ollama.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		User: "local",
		Embedding: EmbeddingSettings{
			Provider: AIProviderFake,
			Model:    DefaultEmbeddingModels()[AIProviderFake],
		},
		LLM: LLMSettings{
			Provider: AIProviderFake,
			Model:    DefaultLLMModels()[AIProviderFake],
		},
		RAG: RAGSettings{
			ChunkSize:      DefaultChunkSize,
			ChunkOverlap:   DefaultChunkOverlap,
			RetrievalLimit: DefaultRetrievalLimit,
			ContextChars:   DefaultContextChars,
			EmbedBatchSize: DefaultEmbedBatchSize,
		},
		Store: StoreSettings{
			Backend: StoreBackendSQLite,
		},
		ServerAddr: ":8080",
		LogFormat:  "console",
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderFake,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderFake,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderFake:   "fake-embedding-128",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default chat models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderFake:      "fake-chat",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4.1-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// DefaultGenerationModels returns default models for quiz, flashcard and
// note generation. Providers missing here use their chat model.
func DefaultGenerationModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOpenAI: "gpt-4o-mini",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Fake provider
		"fake-embedding-128": 128,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration:
// clean, then chunk at 800 characters with 150 characters of overlap.
func DefaultPipelineConfig() PipelineConfig {
	return DefaultAppSettings().RAG.PipelineConfig()
}
