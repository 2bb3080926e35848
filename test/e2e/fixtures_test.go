package e2e

import (
	"strings"
	"testing"

	"github.com/hyperjump/sakuin/internal/extract"
)

// Every fixture format must survive the engine's own extractor, or the
// file-based run would silently test nothing.
func TestEncodeFileRoundTripsThroughExtractor(t *testing.T) {
	const text = "migratory geese counted at the estuary"
	extractor := extract.NewExtractor()

	for _, ext := range FileExtensions {
		content, err := EncodeFile(ext, text)
		if err != nil {
			t.Fatalf("%s: encode: %v", ext, err)
		}
		if len(content) == 0 {
			t.Fatalf("%s: empty fixture", ext)
		}
		got, err := extractor.ExtractBytes(content, ext)
		if err != nil {
			t.Fatalf("%s: extract: %v", ext, err)
		}
		if !strings.Contains(got, "estuary") {
			t.Errorf("%s: extracted %q, want the original text back", ext, got)
		}
	}
}
