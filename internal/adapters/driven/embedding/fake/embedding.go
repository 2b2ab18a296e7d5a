// Package fake provides a deterministic offline embedding service.
//
// Vectors are derived from a SHA-256 digest of the input, so equal texts
// always embed identically and different texts almost never do. They carry
// no semantic meaning.
package fake

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"

	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Defaults for the fake provider.
const (
	DefaultModel      = "fake-embedding-128"
	DefaultDimensions = 128
)

// EmbeddingService produces hash-derived unit vectors.
type EmbeddingService struct {
	model      string
	dimensions int
}

// NewEmbeddingService creates a fake embedding service. Zero dimensions
// uses DefaultDimensions.
func NewEmbeddingService(model string, dimensions int) *EmbeddingService {
	if model == "" {
		model = DefaultModel
	}
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{model: model, dimensions: dimensions}
}

// Embed returns the vector for text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.vector(text), nil
}

// EmbedBatch returns one vector per text.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = s.vector(text)
	}
	return out, nil
}

// vector stretches the digest by rehashing it with a counter until every
// component is filled, then normalises to unit length.
func (s *EmbeddingService) vector(text string) []float32 {
	vec := make([]float32, s.dimensions)
	seed := sha256.Sum256([]byte(text))

	var block [sha256.Size]byte
	var counter [4]byte
	var norm float64
	for i := 0; i < s.dimensions; i++ {
		if i%8 == 0 {
			binary.BigEndian.PutUint32(counter[:], uint32(i/8))
			block = sha256.Sum256(append(seed[:], counter[:]...))
		}
		word := binary.BigEndian.Uint32(block[(i%8)*4:])
		v := float64(word)/math.MaxUint32*2 - 1
		vec[i] = float32(v)
		norm += v * v
	}

	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}

// Dimensions returns the vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the configured model name.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
