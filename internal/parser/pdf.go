package parser

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF concatenates per-page plain text with paragraph breaks between
// pages. The pdf library panics on some malformed files, so the whole
// extraction runs under a recover.
func extractPDF(data []byte) (text string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			text, ok = "", false
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", false
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if s := strings.TrimSpace(content); s != "" {
			pages = append(pages, s)
		}
	}
	if len(pages) == 0 {
		return "", false
	}
	return strings.Join(pages, "\n\n"), true
}
