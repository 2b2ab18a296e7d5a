// Package cache wraps an embedding service with a Redis-backed vector cache.
//
// Keys combine the model name, the vector size and a SHA-256 of the text,
// so switching models never serves stale vectors. Cache failures are logged
// and the wrapped service is called instead.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
	"github.com/quizbolt/quizbolt/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultPrefix namespaces cache keys.
const DefaultPrefix = "quizbolt:embedding:"

// Options configures the cache.
type Options struct {
	// URL is a redis:// connection URL.
	URL string

	// TTL is how long vectors live. Zero keeps them until evicted.
	TTL time.Duration

	// Prefix overrides DefaultPrefix.
	Prefix string
}

// EmbeddingService is a caching decorator.
type EmbeddingService struct {
	inner  driven.EmbeddingService
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewEmbeddingService connects to Redis and wraps inner.
func NewEmbeddingService(inner driven.EmbeddingService, opts Options) (*EmbeddingService, error) {
	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewWithClient(inner, redis.NewClient(redisOpts), opts.TTL, opts.Prefix), nil
}

// NewWithClient wraps inner using an existing Redis client.
func NewWithClient(inner driven.EmbeddingService, client *redis.Client, ttl time.Duration, prefix string) *EmbeddingService {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &EmbeddingService{inner: inner, client: client, prefix: prefix, ttl: ttl}
}

// Key returns the cache key for text under the wrapped model.
func (s *EmbeddingService) Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s%s:%d:%s", s.prefix, s.inner.ModelName(), s.inner.Dimensions(), hex.EncodeToString(sum[:]))
}

// Embed returns the cached vector for text, embedding it on a miss.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch serves hits from Redis and sends only the misses to the
// wrapped service, preserving input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = s.Key(text)
	}

	out := make([][]float32, len(texts))
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		logger.Warn("embedding cache read failed: %v", err)
		values = make([]any, len(texts))
	}

	var missIdx []int
	var missTexts []string
	for i, v := range values {
		raw, ok := v.(string)
		if ok {
			if vec, err := decodeVector(raw); err == nil {
				out[i] = vec
				continue
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, texts[i])
	}
	logger.Debug("embedding cache: %d hits, %d misses", len(texts)-len(missIdx), len(missIdx))

	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := s.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("%w: provider returned %d vectors for %d texts",
			domain.ErrEmbeddingMismatch, len(fresh), len(missTexts))
	}

	pipe := s.client.Pipeline()
	for j, i := range missIdx {
		out[i] = fresh[j]
		pipe.Set(ctx, keys[i], encodeVector(fresh[j]), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("embedding cache write failed: %v", err)
	}
	return out, nil
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the wrapped service's model name.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping checks both Redis and the wrapped service.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("embedding cache: %w", err)
	}
	return s.inner.Ping(ctx)
}

// Close closes the Redis client and the wrapped service.
func (s *EmbeddingService) Close() error {
	return errors.Join(s.client.Close(), s.inner.Close())
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(raw string) ([]float32, error) {
	if len(raw) == 0 || len(raw)%4 != 0 {
		return nil, errors.New("corrupt cached vector")
	}
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32([]byte(raw[i*4 : i*4+4])))
	}
	return vec, nil
}
