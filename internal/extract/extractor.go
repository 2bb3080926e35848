// Package extract provides text extraction from the supported document
// formats. The extracted text feeds the tokenizer; formatting does not
// survive, only word content matters.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extractor extracts plain text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content. PDF, DOCX,
// XLSX, and PPTX are unpacked; everything else is treated as UTF-8 text with
// invalid sequences repaired. An error means the document has no extractable
// text, not that the caller should abort.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, strings.ToLower(filepath.Ext(path)))
}

// ExtractBytes extracts text from content based on the given extension,
// which includes the leading dot.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".xlsx":
		return extractExcel(content)
	case ".pptx":
		return extractPPTX(content)
	default:
		// .txt, .md, .rst, extensionless, and anything unrecognized.
		return extractPlain(content)
	}
}
