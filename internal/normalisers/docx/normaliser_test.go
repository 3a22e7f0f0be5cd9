package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// createTestDOCX builds a minimal DOCX archive.
func createTestDOCX(documentXML string) []byte {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, _ := w.Create("[Content_Types].xml")
	contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))

	if documentXML != "" {
		doc, _ := w.Create("word/document.xml")
		doc.Write([]byte(documentXML))
	}

	w.Close()
	return buf.Bytes()
}

func wordXML(paragraphs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		b.WriteString(p)
	}
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = New()
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []domain.Format{domain.FormatDOCX}, New().Formats())
}

func TestNormalise_Paragraphs(t *testing.T) {
	data := createTestDOCX(wordXML(
		`<w:p><w:r><w:t>Rate Confirmation</w:t></w:r></w:p>`,
		`<w:p><w:r><w:t>Shipper: </w:t></w:r><w:r><w:t>Acme Corp</w:t></w:r></w:p>`,
		`<w:p></w:p>`,
		`<w:p><w:r><w:t xml:space="preserve">   </w:t></w:r></w:p>`,
		`<w:p><w:r><w:t>Rate:</w:t></w:r><w:r><w:tab/><w:t>1500 USD</w:t></w:r></w:p>`,
	))

	text, err := New().Normalise(context.Background(), data)

	require.NoError(t, err)
	assert.Equal(t, "Rate Confirmation\n\nShipper: Acme Corp\n\nRate:\t1500 USD", text)
}

func TestNormalise_EmptyBody(t *testing.T) {
	text, err := New().Normalise(context.Background(), createTestDOCX(wordXML()))

	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestNormalise_InvalidZip(t *testing.T) {
	_, err := New().Normalise(context.Background(), []byte("not a zip archive"))
	assert.Error(t, err)
}

func TestNormalise_MissingDocumentPart(t *testing.T) {
	_, err := New().Normalise(context.Background(), createTestDOCX(""))
	assert.ErrorIs(t, err, ErrNoDocumentPart)
}

func TestNormalise_MalformedXML(t *testing.T) {
	_, err := New().Normalise(context.Background(), createTestDOCX("<w:document><w:body>"))
	assert.Error(t, err)
}

func BenchmarkNormalise(b *testing.B) {
	paras := make([]string, 200)
	for i := range paras {
		paras[i] = `<w:p><w:r><w:t>Line item with freight details and charges</w:t></w:r></w:p>`
	}
	data := createTestDOCX(wordXML(paras...))
	n := New()

	b.ResetTimer()
	for range b.N {
		_, _ = n.Normalise(context.Background(), data)
	}
}
