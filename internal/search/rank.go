// Package search ranks corpus documents against free-text queries by cosine
// similarity over TF-IDF vectors.
package search

import (
	"math"
	"sort"

	"github.com/hyperjump/sakuin/internal/models"
	"github.com/hyperjump/sakuin/internal/tokenizer"
)

// Rank scores every document in m against query and returns at most limit
// results with strictly positive scores, best first. Tied scores keep the
// model's document order. The model is read-only here; Rank is pure and safe
// to call concurrently on the same model. A nil model, a non-positive limit,
// or a query with no terms known to the model yields no results.
func Rank(m *models.CorpusModel, query string, limit int) []*models.SearchResult {
	if m == nil || limit <= 0 {
		return nil
	}
	vector, norm := queryVector(m, query)
	if norm == 0 {
		return nil
	}

	var results []*models.SearchResult
	for _, path := range m.Order {
		docVector := m.Vectors[path]
		var dot float64
		for term, qw := range vector {
			if dw, ok := docVector[term]; ok {
				dot += qw * dw
			}
		}
		if dot <= 0 {
			continue
		}
		docNorm := m.Norms[path]
		if docNorm == 0 {
			continue
		}
		score := dot / (norm * docNorm)
		if score <= 0 {
			continue
		}
		doc := m.Documents[path]
		results = append(results, &models.SearchResult{
			File:  doc.Name,
			Path:  doc.Path,
			Score: math.Round(score*1e6) / 1e6,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// queryVector builds the TF-IDF vector for query against the model's
// vocabulary. Tokens the model has never seen are ignored entirely: they
// contribute neither weight nor term-frequency mass.
func queryVector(m *models.CorpusModel, query string) (map[string]float64, float64) {
	counts := make(map[string]int)
	total := 0
	for _, tok := range tokenizer.Tokenize(query) {
		if _, ok := m.IDF[tok]; ok {
			counts[tok]++
			total++
		}
	}
	if total == 0 {
		return nil, 0
	}
	vector := make(map[string]float64, len(counts))
	var sum float64
	for tok, count := range counts {
		w := float64(count) / float64(total) * m.IDF[tok]
		vector[tok] = w
		sum += w * w
	}
	return vector, math.Sqrt(sum)
}
