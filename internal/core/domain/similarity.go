package domain

import (
	"math"
	"sort"
)

// MaxDistance is the distance of vectors that cannot be compared: a
// zero-magnitude vector or a length mismatch. Every store reports it.
const MaxDistance = 2.0

// CosineDistance returns 1 - cos(a, b), in [0, 2].
// Vectors of different length, or with zero magnitude, are maximally
// distant (2) so they sort last rather than matching by accident.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return MaxDistance
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return MaxDistance
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return 1 - cos
}

// SortRetrieved orders chunks by ascending distance. Ties break by chunk
// index, then document ID, then chunk ID, so results are deterministic.
func SortRetrieved(chunks []RetrievedChunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		a, b := chunks[i], chunks[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		if a.DocumentID != b.DocumentID {
			return a.DocumentID < b.DocumentID
		}
		return a.ID < b.ID
	})
}

// ValidateEmbeddings checks that there is one vector per chunk and that all
// vectors share a single non-zero dimension, which it returns.
func ValidateEmbeddings(chunks []TextChunk, embeddings [][]float32) (int, error) {
	if len(chunks) != len(embeddings) {
		return 0, ErrEmbeddingMismatch
	}
	if len(embeddings) == 0 {
		return 0, nil
	}
	dim := len(embeddings[0])
	if dim == 0 {
		return 0, ErrEmbeddingMismatch
	}
	for _, e := range embeddings[1:] {
		if len(e) != dim {
			return 0, ErrEmbeddingMismatch
		}
	}
	return dim, nil
}
