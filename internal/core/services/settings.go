package services

import (
	"fmt"
	"os"
	"slices"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
	"github.com/quizbolt/quizbolt/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyUser              = "user.id"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedDims         = "embedding.dimensions"
	keyEmbedRPS          = "embedding.requests_per_second"
	keyEmbedCacheURL     = "embedding.cache_url"
	keyEmbedCacheTTL     = "embedding.cache_ttl_seconds"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMGenModel       = "llm.generation_model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyRAGChunkSize      = "rag.chunk_size"
	keyRAGChunkOverlap   = "rag.chunk_overlap"
	keyRAGRetrievalLimit = "rag.retrieval_limit"
	keyRAGContextChars   = "rag.context_chars"
	keyRAGEmbedBatch     = "rag.embed_batch_size"
	keyStoreBackend      = "store.backend"
	keyStorePath         = "store.path"
	keyStoreDSN          = "store.dsn"
	keyServerAddr        = "server.addr"
	keyLogFormat         = "log.format"
)

// Environment variables that override the config file.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvOpenAIKey       = "OPENAI_API_KEY"
	EnvAnthropicKey    = "ANTHROPIC_API_KEY"
	EnvFakeProviders   = "QUIZBOLT_FAKE_PROVIDERS"
	EnvLegacyFakeAI    = "DEV_FAKE_OPENAI"
	EnvEmbeddingModel  = "QUIZBOLT_EMBEDDING_MODEL"
	EnvChatModel       = "QUIZBOLT_CHAT_MODEL"
	EnvGenerationModel = "QUIZBOLT_GENERATION_MODEL"
	EnvDatabaseURL     = "QUIZBOLT_DATABASE_URL"
	EnvRedisURL        = "QUIZBOLT_REDIS_URL"
	EnvUser            = "QUIZBOLT_USER"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
// The config file is the source of truth; environment variables are
// layered on top by Get and never written back.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// aiValidator is optional; without it provider changes are saved unchecked.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings with environment overrides applied.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.load()
	s.applyEnv(settings)
	return settings, nil
}

// load reads settings from the config store only.
func (s *SettingsService) load() *domain.AppSettings {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		User: domain.OwnerID(s.getString(keyUser, defaults.User.String())),
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // Empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			Dimensions:        s.configStore.GetInt(keyEmbedDims),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
			CacheURL:          s.configStore.GetString(keyEmbedCacheURL),
			CacheTTLSeconds:   s.configStore.GetInt(keyEmbedCacheTTL),
		},
		LLM: domain.LLMSettings{
			Provider:        s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			GenerationModel: s.configStore.GetString(keyLLMGenModel),
			BaseURL:         s.configStore.GetString(keyLLMBaseURL),
			APIKey:          s.configStore.GetString(keyLLMAPIKey),
		},
		RAG: domain.RAGSettings{
			ChunkSize:      s.getInt(keyRAGChunkSize, defaults.RAG.ChunkSize),
			ChunkOverlap:   s.getInt(keyRAGChunkOverlap, defaults.RAG.ChunkOverlap),
			RetrievalLimit: s.getInt(keyRAGRetrievalLimit, defaults.RAG.RetrievalLimit),
			ContextChars:   s.getInt(keyRAGContextChars, defaults.RAG.ContextChars),
			EmbedBatchSize: s.getInt(keyRAGEmbedBatch, defaults.RAG.EmbedBatchSize),
		},
		Store: domain.StoreSettings{
			Backend: s.getBackend(defaults.Store.Backend),
			Path:    s.configStore.GetString(keyStorePath),
			DSN:     s.configStore.GetString(keyStoreDSN),
		},
		ServerAddr: s.getString(keyServerAddr, defaults.ServerAddr),
		LogFormat:  s.getString(keyLogFormat, defaults.LogFormat),
	}
	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])

	return settings
}

// applyEnv layers environment variables over file settings.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if s.getenv(EnvFakeProviders) == "1" || s.getenv(EnvLegacyFakeAI) == "1" {
		logger.Debug("Fake AI providers forced by environment")
		settings.Embedding.Provider = domain.AIProviderFake
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[domain.AIProviderFake]
		settings.LLM.Provider = domain.AIProviderFake
		settings.LLM.Model = domain.DefaultLLMModels()[domain.AIProviderFake]
		settings.LLM.GenerationModel = ""
	}

	if settings.Embedding.APIKey == "" && settings.Embedding.Provider == domain.AIProviderOpenAI {
		settings.Embedding.APIKey = s.getenv(EnvOpenAIKey)
	}
	if settings.LLM.APIKey == "" {
		switch settings.LLM.Provider {
		case domain.AIProviderOpenAI:
			settings.LLM.APIKey = s.getenv(EnvOpenAIKey)
		case domain.AIProviderAnthropic:
			settings.LLM.APIKey = s.getenv(EnvAnthropicKey)
		}
	}

	if v := s.getenv(EnvEmbeddingModel); v != "" {
		settings.Embedding.Model = v
	}
	if v := s.getenv(EnvChatModel); v != "" {
		settings.LLM.Model = v
	}
	if v := s.getenv(EnvGenerationModel); v != "" {
		settings.LLM.GenerationModel = v
	}
	if settings.LLM.GenerationModel == "" {
		settings.LLM.GenerationModel = domain.DefaultGenerationModels()[settings.LLM.Provider]
	}

	if v := s.getenv(EnvDatabaseURL); v != "" {
		settings.Store.DSN = v
		if _, set := s.configStore.Get(keyStoreBackend); !set {
			settings.Store.Backend = domain.StoreBackendPostgres
		}
	}
	if v := s.getenv(EnvRedisURL); v != "" {
		settings.Embedding.CacheURL = v
	}
	if v := s.getenv(EnvUser); v != "" {
		settings.User = domain.OwnerID(v)
	}
}

type configValue struct {
	key   string
	value any
}

// save persists file settings. API keys are only written when set.
func (s *SettingsService) save(settings *domain.AppSettings) error {
	values := []configValue{
		{keyUser, settings.User.String()},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyRAGChunkSize, settings.RAG.ChunkSize},
		{keyRAGChunkOverlap, settings.RAG.ChunkOverlap},
		{keyRAGRetrievalLimit, settings.RAG.RetrievalLimit},
		{keyRAGContextChars, settings.RAG.ContextChars},
		{keyRAGEmbedBatch, settings.RAG.EmbedBatchSize},
	}
	if settings.Embedding.APIKey != "" {
		values = append(values, configValue{keyEmbedAPIKey, settings.Embedding.APIKey})
	}
	if settings.LLM.APIKey != "" {
		values = append(values, configValue{keyLLMAPIKey, settings.LLM.APIKey})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetUser sets the default owner for local commands.
func (s *SettingsService) SetUser(owner domain.OwnerID) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	if err := s.configStore.Set(keyUser, owner.String()); err != nil {
		return fmt.Errorf("save %s: %w", keyUser, err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
// With a validator attached, the new configuration must answer a ping
// before it is saved.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrConfiguration, provider)
	}

	settings := s.load()
	settings.Embedding.Provider = provider

	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	if provider == domain.AIProviderOllama {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaURL
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	if s.aiValidator != nil {
		if err := s.aiValidator.ValidateEmbedding(&settings.Embedding); err != nil {
			return fmt.Errorf("validate embedding provider: %w", err)
		}
	}

	return s.save(settings)
}

// SetLLMProvider configures the LLM provider.
// With a validator attached, the new configuration must answer a ping
// before it is saved.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrConfiguration, provider)
	}

	settings := s.load()
	settings.LLM.Provider = provider

	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	if provider == domain.AIProviderOllama {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	if s.aiValidator != nil {
		if err := s.aiValidator.ValidateLLM(&settings.LLM); err != nil {
			return fmt.Errorf("validate LLM provider: %w", err)
		}
	}

	return s.save(settings)
}

// SetRAG updates chunking, retrieval and context settings.
func (s *SettingsService) SetRAG(rag domain.RAGSettings) error {
	if err := rag.Validate(); err != nil {
		return err
	}
	settings := s.load()
	settings.RAG = rag
	return s.save(settings)
}

// Validate checks that the current settings can run the pipeline.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.User.Validate(); err != nil {
		return err
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrConfiguration, settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %q is not configured",
			domain.ErrConfiguration, settings.LLM.Provider)
	}
	if err := settings.RAG.Validate(); err != nil {
		return err
	}
	if settings.Store.Backend == domain.StoreBackendPostgres && settings.Store.DSN == "" {
		return fmt.Errorf("%w: postgres store requires a DSN (%s)", domain.ErrConfiguration, EnvDatabaseURL)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getInt distinguishes an explicit zero from a missing key.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	backend := domain.StoreBackend(s.configStore.GetString(keyStoreBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
