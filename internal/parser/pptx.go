package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"strings"
)

// extractPPTX concatenates the text of every shape on every slide. Slides
// are visited in deck order, separated by blank lines.
func extractPPTX(data []byte) (string, bool) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", false
	}
	var names []string
	files := make(map[string]*zip.File)
	for _, file := range reader.File {
		if strings.HasPrefix(file.Name, "ppt/slides/slide") && strings.HasSuffix(file.Name, ".xml") {
			names = append(names, file.Name)
			files[file.Name] = file
		}
	}
	if len(names) == 0 {
		return "", false
	}
	// slide2.xml sorts before slide10.xml only with a length-aware order
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) < len(names[j])
		}
		return names[i] < names[j]
	})

	var slides []string
	for _, name := range names {
		rc, err := files[name].Open()
		if err != nil {
			continue
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		if text := slideText(raw); text != "" {
			slides = append(slides, text)
		}
	}
	if len(slides) == 0 {
		return "", false
	}
	return strings.Join(slides, "\n\n"), true
}

// slideText collects the character data of every DrawingML <a:t> element.
func slideText(raw []byte) string {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	var parts []string
	inText := false
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch el := tok.(type) {
		case xml.StartElement:
			inText = el.Name.Local == "t"
		case xml.EndElement:
			inText = false
		case xml.CharData:
			if inText {
				if s := strings.TrimSpace(string(el)); s != "" {
					parts = append(parts, s)
				}
			}
		}
	}
	return strings.Join(parts, "\n")
}
