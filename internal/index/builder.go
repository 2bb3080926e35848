// Package index builds, refreshes, and publishes the TF-IDF corpus model.
package index

import (
	"math"
	"sort"
	"time"

	"github.com/hyperjump/sakuin/internal/models"
)

// BuildModel computes a fresh corpus model over the given records: a global
// smoothed IDF table, one sparse TF-IDF vector per document, and the vector
// norms. Records are referenced, never mutated. Documents whose vectors come
// out empty are dropped from the model entirely.
func BuildModel(docs map[string]*models.DocumentRecord) *models.CorpusModel {
	order := make([]string, 0, len(docs))
	for path := range docs {
		order = append(order, path)
	}
	sort.Strings(order)
	return assembleModel(docs, order, computeIDF(docs))
}

// computeIDF returns ln((1+N)/(1+df)) + 1 for every term appearing in at
// least one record. The +1 smoothing keeps every weight strictly positive,
// so a term present in all documents still contributes to scores.
func computeIDF(docs map[string]*models.DocumentRecord) map[string]float64 {
	df := make(map[string]int)
	for _, doc := range docs {
		for term := range doc.TermCounts {
			df[term]++
		}
	}
	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for term, count := range df {
		idf[term] = math.Log((1+n)/(1+float64(count))) + 1
	}
	return idf
}

// assembleModel vectorizes every record against the given idf table, in the
// given order. Terms absent from idf contribute nothing; a document whose
// weights all vanish is dropped along with its order slot.
func assembleModel(docs map[string]*models.DocumentRecord, order []string, idf map[string]float64) *models.CorpusModel {
	m := &models.CorpusModel{
		Documents: make(map[string]*models.DocumentRecord, len(docs)),
		Order:     make([]string, 0, len(docs)),
		IDF:       idf,
		Vectors:   make(map[string]map[string]float64, len(docs)),
		Norms:     make(map[string]float64, len(docs)),
		BuiltAt:   time.Now(),
	}
	for _, path := range order {
		doc := docs[path]
		vector := make(map[string]float64, len(doc.TermCounts))
		var sum float64
		for term, count := range doc.TermCounts {
			weight, ok := idf[term]
			if !ok {
				continue
			}
			w := float64(count) / float64(doc.TotalTerms) * weight
			vector[term] = w
			sum += w * w
		}
		norm := math.Sqrt(sum)
		if norm == 0 {
			continue
		}
		m.Documents[path] = doc
		m.Order = append(m.Order, path)
		m.Vectors[path] = vector
		m.Norms[path] = norm
	}
	return m
}
