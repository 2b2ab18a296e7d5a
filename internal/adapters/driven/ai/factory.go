// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/quizbolt/quizbolt/internal/adapters/driven/embedding/cache"
	fakeembed "github.com/quizbolt/quizbolt/internal/adapters/driven/embedding/fake"
	ollamaembed "github.com/quizbolt/quizbolt/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/quizbolt/quizbolt/internal/adapters/driven/embedding/openai"
	"github.com/quizbolt/quizbolt/internal/adapters/driven/embedding/throttle"
	anthropicllm "github.com/quizbolt/quizbolt/internal/adapters/driven/llm/anthropic"
	fakellm "github.com/quizbolt/quizbolt/internal/adapters/driven/llm/fake"
	ollamallm "github.com/quizbolt/quizbolt/internal/adapters/driven/llm/ollama"
	openaillm "github.com/quizbolt/quizbolt/internal/adapters/driven/llm/openai"
	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
	"github.com/quizbolt/quizbolt/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string // Non-fatal issues, such as an unreachable embedding cache.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates both AI services from settings and checks they respond.
// Provider failures are fatal. A cache that cannot be reached is dropped
// with a warning and embeddings go straight to the provider.
func Init(ctx context.Context, settings *domain.AppSettings) (*InitResult, error) {
	result := &InitResult{}

	embedding := settings.Embedding
	if embedding.CacheURL != "" {
		if err := pingCache(ctx, &embedding); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("embedding cache disabled: %v", err))
			embedding.CacheURL = ""
		}
	}

	emb, err := CreateAndValidateEmbeddingService(ctx, &embedding)
	if err != nil {
		return nil, err
	}
	result.EmbeddingService = emb

	llm, err := CreateAndValidateLLMService(ctx, &settings.LLM)
	if err != nil {
		result.Close()
		return nil, err
	}
	result.LLMService = llm

	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}
	return result, nil
}

func pingCache(ctx context.Context, settings *domain.EmbeddingSettings) error {
	c, err := cache.NewEmbeddingService(fakeembed.NewEmbeddingService("", 0), cache.Options{URL: settings.CacheURL})
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.Ping(ctx)
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'quizbolt settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'quizbolt settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the embedding service selected by settings,
// wrapped in the throttle and cache decorators when they are configured.
// Missing or incomplete settings are a domain.ErrConfiguration.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: embedding settings are missing", domain.ErrConfiguration)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: embedding provider %q is not configured", domain.ErrConfiguration, settings.Provider)
	}

	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}

	var svc driven.EmbeddingService
	switch settings.Provider {
	case domain.AIProviderFake:
		svc = fakeembed.NewEmbeddingService(settings.Model, dimensions)

	case domain.AIProviderOllama:
		svc = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})

	case domain.AIProviderOpenAI:
		openai, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})
		if err != nil {
			return nil, err
		}
		svc = openai

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s", domain.ErrConfiguration, settings.Provider)
	}

	if settings.RequestsPerSecond > 0 {
		svc = throttle.NewEmbeddingService(svc, settings.RequestsPerSecond)
	}
	if settings.CacheURL != "" {
		cached, err := cache.NewEmbeddingService(svc, cache.Options{
			URL: settings.CacheURL,
			TTL: time.Duration(settings.CacheTTLSeconds) * time.Second,
		})
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("%w: embedding cache: %w", domain.ErrConfiguration, err)
		}
		svc = cached
	}
	return svc, nil
}

// CreateLLMService creates the LLM service selected by settings.
// Missing or incomplete settings are a domain.ErrConfiguration.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: llm settings are missing", domain.ErrConfiguration)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: llm provider %q is not configured", domain.ErrConfiguration, settings.Provider)
	}

	switch settings.Provider {
	case domain.AIProviderFake:
		return fakellm.NewLLMService(settings.Model), nil

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", domain.ErrConfiguration, settings.Provider)
	}
}
