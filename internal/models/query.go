package models

import (
	"fmt"
	"strings"
)

// SearchQuery represents a search request. A zero Limit means "use the
// configured default"; the engine clamps it before ranking.
type SearchQuery struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// Validate rejects blank queries. A query that tokenizes to nothing is still
// valid and simply yields no results.
func (q *SearchQuery) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Limit < 0 {
		return fmt.Errorf("limit cannot be negative")
	}
	return nil
}
