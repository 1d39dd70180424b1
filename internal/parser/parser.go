// Package parser extracts normalized text from uploaded files. Extraction
// is best-effort: unsupported formats and failed extractions degrade to a
// placeholder naming the file, never to an error, so a bad attachment can
// not abort an upload.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Parse extracts text from the given file content. The format is inferred
// from the filename extension.
func Parse(data []byte, filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		if text, ok := extractPDF(data); ok {
			return text
		}
	case ".docx":
		if text, ok := extractDOCX(data); ok {
			return text
		}
	case ".pptx":
		if text, ok := extractPPTX(data); ok {
			return text
		}
	case ".txt", ".md", ".markdown", ".csv":
		if utf8.Valid(data) {
			return string(data)
		}
	}
	return Placeholder(filename)
}

// Placeholder is the degraded extraction result for a file.
func Placeholder(filename string) string {
	return fmt.Sprintf("# %s\n\n[content extraction unavailable]", filename)
}

// DocumentID returns a stable document id: the caller-supplied id if any,
// else the filename, else a fresh UUID.
func DocumentID(provided, filename string) string {
	if provided != "" {
		return provided
	}
	if filename != "" {
		return filepath.Base(filename)
	}
	return uuid.New().String()
}
