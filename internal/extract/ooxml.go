package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Office Open XML documents are zip archives; the indexable words live in
// text nodes (<w:t> for Word, <a:t> for PowerPoint). Pulling those nodes out
// directly is robust against the run and paragraph attributes real documents
// carry, which trip up stricter parsers.
var (
	wordTextNode  = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
	slideTextNode = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)
)

const wordMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"

// Attribute order inside the Override element is not fixed.
var wordMainPartPatterns = []*regexp.Regexp{
	regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(wordMainContentType) + `"`),
	regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(wordMainContentType) + `"[^>]+PartName="([^"]+)"`),
}

// extractDOCX pulls the text nodes out of the main document part. The part
// location comes from [Content_Types].xml when declared, falling back to the
// conventional word/document.xml.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("docx: not a zip archive: %w", err)
	}
	part := wordMainPart(zr)
	xml, err := readZipEntry(zr, part)
	if err != nil {
		return "", fmt.Errorf("docx: %w", err)
	}
	return joinMatches(wordTextNode, string(xml)), nil
}

// extractPPTX pulls the text nodes out of every slide, in archive order.
func extractPPTX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("pptx: not a zip archive: %w", err)
	}
	var parts []string
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "ppt/slides/slide") || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		xml, err := readZipEntry(zr, f.Name)
		if err != nil {
			return "", fmt.Errorf("pptx: %w", err)
		}
		if text := joinMatches(slideTextNode, string(xml)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}

// wordMainPart resolves the main document part name, without leading slash.
func wordMainPart(zr *zip.Reader) string {
	data, err := readZipEntry(zr, "[Content_Types].xml")
	if err != nil {
		return "word/document.xml"
	}
	for _, pattern := range wordMainPartPatterns {
		if m := pattern.FindSubmatch(data); len(m) > 1 {
			return strings.TrimPrefix(string(m[1]), "/")
		}
	}
	return "word/document.xml"
}

func readZipEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}

// joinMatches joins the first capture group of every match with single
// spaces, trimming surrounding whitespace from each piece.
func joinMatches(pattern *regexp.Regexp, xml string) string {
	var b strings.Builder
	for _, m := range pattern.FindAllStringSubmatch(xml, -1) {
		piece := strings.TrimSpace(m[1])
		if piece == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(piece)
	}
	return b.String()
}
