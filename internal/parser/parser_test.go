package parser

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestParsePlainText(t *testing.T) {
	t.Run("txt decodes as-is", func(t *testing.T) {
		assert.Equal(t, "hello\n\nworld", Parse([]byte("hello\n\nworld"), "notes.txt"))
	})
	t.Run("markdown decodes as-is", func(t *testing.T) {
		assert.Equal(t, "# Title", Parse([]byte("# Title"), "README.md"))
	})
	t.Run("invalid utf8 degrades to placeholder", func(t *testing.T) {
		assert.Equal(t, Placeholder("bad.txt"), Parse([]byte{0xff, 0xfe, 0xfd}, "bad.txt"))
	})
}

func TestParseDOCX(t *testing.T) {
	docXML := `<?xml version="1.0"?>
<document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <body>
    <p><r><t>First paragraph.</t></r></p>
    <p><r><t>Second </t></r><r><t>paragraph.</t></r></p>
    <p><r><t>   </t></r></p>
  </body>
</document>`

	t.Run("paragraphs joined with blank lines", func(t *testing.T) {
		data := zipArchive(t, map[string]string{"word/document.xml": docXML})
		got := Parse(data, "spec.docx")
		assert.Equal(t, "First paragraph.\n\nSecond paragraph.", got)
	})

	t.Run("archive without document.xml degrades", func(t *testing.T) {
		data := zipArchive(t, map[string]string{"word/other.xml": "<x/>"})
		assert.Equal(t, Placeholder("spec.docx"), Parse(data, "spec.docx"))
	})

	t.Run("corrupt bytes degrade", func(t *testing.T) {
		assert.Equal(t, Placeholder("spec.docx"), Parse([]byte("not a zip"), "spec.docx"))
	})
}

func TestParsePPTX(t *testing.T) {
	slide := func(texts ...string) string {
		body := ""
		for _, s := range texts {
			body += "<sp><t>" + s + "</t></sp>"
		}
		return `<?xml version="1.0"?><sld>` + body + `</sld>`
	}

	t.Run("per-shape text across slides in order", func(t *testing.T) {
		data := zipArchive(t, map[string]string{
			"ppt/slides/slide1.xml": slide("Title", "Subtitle"),
			"ppt/slides/slide2.xml": slide("Body"),
		})
		got := Parse(data, "deck.pptx")
		assert.Equal(t, "Title\nSubtitle\n\nBody", got)
	})

	t.Run("no slides degrades", func(t *testing.T) {
		data := zipArchive(t, map[string]string{"ppt/other.xml": "<x/>"})
		assert.Equal(t, Placeholder("deck.pptx"), Parse(data, "deck.pptx"))
	})
}

func TestParsePDF(t *testing.T) {
	t.Run("corrupt pdf degrades", func(t *testing.T) {
		assert.Equal(t, Placeholder("doc.pdf"), Parse([]byte("%PDF-1.4 garbage"), "doc.pdf"))
	})
}

func TestParseUnsupported(t *testing.T) {
	assert.Equal(t, Placeholder("image.png"), Parse([]byte{1, 2, 3}, "image.png"))
	assert.Equal(t, Placeholder("archive"), Parse([]byte("data"), "archive"))
}

func TestDocumentID(t *testing.T) {
	assert.Equal(t, "custom", DocumentID("custom", "file.txt"))
	assert.Equal(t, "file.txt", DocumentID("", "dir/file.txt"))
	assert.NotEmpty(t, DocumentID("", ""))
	assert.NotEqual(t, DocumentID("", ""), DocumentID("", ""))
}
