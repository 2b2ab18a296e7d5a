package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"scaled", []float32{1, 1}, []float32{3, 3}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 2},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 2},
		{"empty", nil, nil, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineDistance(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSortRetrieved_TieBreaks(t *testing.T) {
	chunks := []RetrievedChunk{
		{TextChunk: TextChunk{ID: "c", DocumentID: "d2", Index: 1}, Distance: 0.5},
		{TextChunk: TextChunk{ID: "b", DocumentID: "d1", Index: 1}, Distance: 0.5},
		{TextChunk: TextChunk{ID: "a", DocumentID: "d1", Index: 2}, Distance: 0.5},
		{TextChunk: TextChunk{ID: "z", DocumentID: "d9", Index: 9}, Distance: 0.1},
		{TextChunk: TextChunk{ID: "y", DocumentID: "d1", Index: 1}, Distance: 0.5},
	}

	SortRetrieved(chunks)

	got := make([]string, len(chunks))
	for i, c := range chunks {
		got[i] = c.ID
	}
	assert.Equal(t, []string{"z", "b", "y", "c", "a"}, got)
}

func TestValidateEmbeddings(t *testing.T) {
	chunks := []TextChunk{{ID: "1"}, {ID: "2"}}

	dim, err := ValidateEmbeddings(chunks, [][]float32{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, 2, dim)

	_, err = ValidateEmbeddings(chunks, [][]float32{{1, 2}})
	assert.ErrorIs(t, err, ErrEmbeddingMismatch)

	_, err = ValidateEmbeddings(chunks, [][]float32{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrEmbeddingMismatch)

	_, err = ValidateEmbeddings(chunks, [][]float32{{}, {}})
	assert.ErrorIs(t, err, ErrEmbeddingMismatch)

	dim, err = ValidateEmbeddings(nil, nil)
	require.NoError(t, err)
	assert.Zero(t, dim)
}
