package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	assert.Contains(t, mimeTypes, "text/plain")
	assert.Contains(t, mimeTypes, "text/markdown")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 5, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/notes/cell_biology-week-1.txt",
		MIMEType: "text/plain",
		Content:  []byte("Mitochondria produce ATP."),
	}

	result, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "cell biology week 1", result.Title)
	assert.Equal(t, "Mitochondria produce ATP.", result.Text)
	assert.Equal(t, "text", result.Format)
}

func TestNormalise_MetadataTitle(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "upload.txt",
		Content:  []byte("x"),
		Metadata: map[string]any{"title": "Lecture 3"},
	}

	result, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "Lecture 3", result.Title)
}

func TestNormalise_InvalidUTF8(t *testing.T) {
	raw := &domain.RawDocument{Content: []byte{'a', 0xff, 'b'}}

	result, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "a�b", result.Text)
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}
