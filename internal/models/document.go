// Package models defines core data structures for documents, the corpus
// model, queries, and search results.
package models

import (
	"fmt"
	"time"
)

// DocumentRecord is the stored form of one indexed document. TermCounts and
// TotalTerms come from tokenizing the extracted text; ModTimeNS and Size are
// the staleness fingerprint compared against the filesystem on refresh.
type DocumentRecord struct {
	Path       string         `json:"path"`
	Name       string         `json:"file"`
	ModTimeNS  int64          `json:"mtime_ns"`
	Size       int64          `json:"size"`
	TermCounts map[string]int `json:"term_counts"`
	TotalTerms int            `json:"total_terms"`
}

// SameFingerprint reports whether the stored fingerprint matches the given
// modification time and size.
func (d *DocumentRecord) SameFingerprint(modTimeNS, size int64) bool {
	return d.ModTimeNS == modTimeNS && d.Size == size
}

// FileInfo identifies a discovered candidate document and carries the
// fingerprint data staleness checks need.
type FileInfo struct {
	Path      string
	Name      string
	ModTimeNS int64
	Size      int64
}

// CorpusModel is a complete TF-IDF model over the indexed corpus. Models are
// built as a unit, published by pointer swap, and never mutated afterwards;
// any corpus change produces a whole new model.
type CorpusModel struct {
	// Documents maps path to record for every document that survived
	// vectorization.
	Documents map[string]*DocumentRecord `json:"documents"`
	// Order lists the document paths in deterministic discovery order.
	// Ranking iterates it so equal scores keep a stable relative order.
	Order []string `json:"order"`
	// IDF maps term to smoothed inverse document frequency, always > 0.
	IDF map[string]float64 `json:"idf"`
	// Vectors maps path to the document's sparse TF-IDF weight vector.
	Vectors map[string]map[string]float64 `json:"vectors"`
	// Norms maps path to the Euclidean norm of the document's vector.
	Norms map[string]float64 `json:"norms"`
	// BuiltAt records when the model was assembled. Informational only.
	BuiltAt time.Time `json:"built_at"`
}

// Len returns the number of documents in the model.
func (m *CorpusModel) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Documents)
}

// Terms returns the vocabulary size of the model.
func (m *CorpusModel) Terms() int {
	if m == nil {
		return 0
	}
	return len(m.IDF)
}

// Validate checks the structural invariants every published model holds:
// Documents, Order, Vectors, and Norms describe exactly the same path set,
// every record carries terms, and every stored weight is strictly positive.
// Snapshots that fail validation are discarded as corrupt.
func (m *CorpusModel) Validate() error {
	if m.Documents == nil || m.IDF == nil || m.Vectors == nil || m.Norms == nil {
		return fmt.Errorf("model has nil sections")
	}
	if len(m.Order) != len(m.Documents) || len(m.Vectors) != len(m.Documents) || len(m.Norms) != len(m.Documents) {
		return fmt.Errorf("model sections diverge: %d documents, %d ordered, %d vectors, %d norms",
			len(m.Documents), len(m.Order), len(m.Vectors), len(m.Norms))
	}
	seen := make(map[string]struct{}, len(m.Order))
	for _, path := range m.Order {
		if _, dup := seen[path]; dup {
			return fmt.Errorf("duplicate path in order: %s", path)
		}
		seen[path] = struct{}{}
		doc, ok := m.Documents[path]
		if !ok || doc == nil {
			return fmt.Errorf("ordered path missing from documents: %s", path)
		}
		if doc.TotalTerms <= 0 {
			return fmt.Errorf("document without terms: %s", path)
		}
		vector, ok := m.Vectors[path]
		if !ok {
			return fmt.Errorf("document without vector: %s", path)
		}
		for term, weight := range vector {
			if weight <= 0 {
				return fmt.Errorf("non-positive weight %g for term %q in %s", weight, term, path)
			}
		}
		if m.Norms[path] <= 0 {
			return fmt.Errorf("non-positive norm for %s", path)
		}
	}
	for term, weight := range m.IDF {
		if weight <= 0 {
			return fmt.Errorf("non-positive idf for term %q", term)
		}
	}
	return nil
}
