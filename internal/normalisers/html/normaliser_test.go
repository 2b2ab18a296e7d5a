package html

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	assert.Contains(t, mimeTypes, "text/html")
	assert.Contains(t, mimeTypes, "application/xhtml+xml")
	assert.Len(t, mimeTypes, 2)
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "https://example.com/cells",
		MIMEType: "text/html",
		Content: []byte(`<html><head><title>Cell Biology</title><style>p{color:red}</style></head>
<body>
  <header>Site header</header>
  <nav><a href="/">Home</a></nav>
  <h1>The Cell</h1>
  <p>Cells are the   basic unit of life.</p>
  <ul><li>Nucleus</li><li>Mitochondria</li></ul>
  <script>alert("x")</script>
  <noscript>Enable JS</noscript>
  <footer>Copyright</footer>
</body></html>`),
	}

	result, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "Cell Biology", result.Title)
	assert.Equal(t, "html", result.Format)
	assert.Equal(t, "The Cell\nCells are the basic unit of life.\nNucleus\nMitochondria", result.Text)
}

func TestNormalise_TitleFallsBackToURI(t *testing.T) {
	raw := &domain.RawDocument{URI: "/tmp/my-page.html", Content: []byte("<p>Body</p>")}

	result, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "my page", result.Title)
	assert.Equal(t, "Body", result.Text)
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtract_Entities(t *testing.T) {
	_, text, err := Extract(strings.NewReader("<p>Fish &amp; chips &lt;3</p>"))

	require.NoError(t, err)
	assert.Equal(t, "Fish & chips <3", text)
}
