package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

// createTestDOCX creates a minimal DOCX archive in memory.
func createTestDOCX(t *testing.T, documentXML, coreXML string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	if documentXML != "" {
		doc, err := w.Create("word/document.xml")
		require.NoError(t, err)
		_, err = doc.Write([]byte(documentXML))
		require.NoError(t, err)
	}
	if coreXML != "" {
		core, err := w.Create("docProps/core.xml")
		require.NoError(t, err)
		_, err = core.Write([]byte(coreXML))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		New().SupportedMIMETypes())
}

func TestNormalise_ParagraphsAndTables(t *testing.T) {
	documentXML := `<w:document ` + wordNS + `><w:body>
<w:p><w:r><w:t>Chapter 1</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">Cells are </w:t></w:r><w:r><w:t>small.</w:t></w:r></w:p>
<w:p></w:p>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Organelle</w:t><w:tab/><w:t>Role</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
</w:body></w:document>`
	coreXML := `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Biology Notes</dc:title></cp:coreProperties>`

	raw := &domain.RawDocument{URI: "bio.docx", Content: createTestDOCX(t, documentXML, coreXML)}
	result, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "Biology Notes", result.Title)
	assert.Equal(t, "docx", result.Format)
	assert.Equal(t, "Chapter 1\nCells are small.\nOrganelle Role", result.Text)
}

func TestNormalise_TitleFromFilename(t *testing.T) {
	documentXML := `<w:document ` + wordNS + `><w:body><w:p><w:r><w:t>Hi</w:t></w:r></w:p></w:body></w:document>`
	raw := &domain.RawDocument{URI: "/uploads/exam_prep-2.docx", Content: createTestDOCX(t, documentXML, "")}

	result, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "exam prep 2", result.Title)
}

func TestNormalise_MissingDocumentXML(t *testing.T) {
	raw := &domain.RawDocument{Content: createTestDOCX(t, "", "")}

	result, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Empty(t, result.Text)
}

func TestNormalise_NotAZip(t *testing.T) {
	_, err := New().Normalise(context.Background(), &domain.RawDocument{Content: []byte("plain text")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
