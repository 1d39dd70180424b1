package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// documentXML mirrors the parts of word/document.xml we care about.
type documentXML struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []struct {
		Texts []string `xml:"t"`
	} `xml:"r"`
}

// extractDOCX reads word/document.xml from the OOXML archive and joins
// paragraph texts with blank lines.
func extractDOCX(data []byte) (string, bool) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", false
	}
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", false
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", false
		}

		var doc documentXML
		if err := xml.Unmarshal(raw, &doc); err != nil {
			return "", false
		}
		var paragraphs []string
		for _, p := range doc.Body.Paragraphs {
			var b strings.Builder
			for _, r := range p.Runs {
				for _, t := range r.Texts {
					b.WriteString(t)
				}
			}
			if s := strings.TrimSpace(b.String()); s != "" {
				paragraphs = append(paragraphs, s)
			}
		}
		if len(paragraphs) == 0 {
			return "", false
		}
		return strings.Join(paragraphs, "\n\n"), true
	}
	return "", false
}
