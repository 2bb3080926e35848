package benchmark

import (
	"fmt"
	"testing"

	"github.com/hyperjump/sakuin/internal/index"
	"github.com/hyperjump/sakuin/internal/models"
	"github.com/hyperjump/sakuin/internal/search"
	"github.com/hyperjump/sakuin/internal/tokenizer"
)

// syntheticDocs builds n documents over a shared vocabulary with a few
// rare terms, roughly the shape of a real notes corpus.
func syntheticDocs(n int) map[string]*models.DocumentRecord {
	docs := make(map[string]*models.DocumentRecord, n)
	for i := 0; i < n; i++ {
		counts := map[string]int{
			"report":                     3,
			"summary":                    2,
			"notes":                      1,
			fmt.Sprintf("topic%d", i%50): 4,
			fmt.Sprintf("detail%d", i%7): 1,
		}
		total := 0
		for _, c := range counts {
			total += c
		}
		path := fmt.Sprintf("/corpus/doc%04d.txt", i)
		docs[path] = &models.DocumentRecord{
			Path:       path,
			Name:       fmt.Sprintf("doc%04d.txt", i),
			TermCounts: counts,
			TotalTerms: total,
		}
	}
	return docs
}

func BenchmarkBuildModel(b *testing.B) {
	docs := syntheticDocs(1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = index.BuildModel(docs)
	}
}

func BenchmarkRank(b *testing.B) {
	model := index.BuildModel(syntheticDocs(1000))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = search.Rank(model, "report summary topic3", 10)
	}
}

func BenchmarkTokenize(b *testing.B) {
	text := "The quarterly report includes a summary of topic3 findings, " +
		"cross-referenced against last season's notes and detail4 tables."
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tokenizer.Tokenize(text)
	}
}
