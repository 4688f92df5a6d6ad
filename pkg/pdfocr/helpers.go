package pdfocr

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

func unescapePDFString(s string) string {
	s = strings.ReplaceAll(s, "\\(", "(")
	s = strings.ReplaceAll(s, "\\)", ")")
	s = strings.ReplaceAll(s, "\\\\", "\\")
	return s
}

// decodePDFString unescapes a literal string and decodes it from UTF-16BE
// when it starts with a byte order mark.
func decodePDFString(s string) string {
	s = unescapePDFString(s)
	if !strings.HasPrefix(s, "\xfe\xff") {
		return s
	}
	decoded, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().String(s)
	if err != nil {
		return s
	}
	return decoded
}
