package models

import "time"

// SearchResult is a single ranked hit. Score is cosine similarity rounded to
// six decimals, always > 0.
type SearchResult struct {
	File  string  `json:"file"`
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// SearchResponse is the payload returned for a search request.
type SearchResponse struct {
	Query     string          `json:"query"`
	Total     int             `json:"total"`
	Items     []*SearchResult `json:"items"`
	QueryTime int64           `json:"query_time_ms"`
}

// SearchEntry is one logged search from the history store.
type SearchEntry struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Results   int       `json:"results"`
	TopScore  float64   `json:"top_score"`
	TookMS    int64     `json:"took_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// RefreshStats summarizes one refresh run. Changed counts documents that were
// new or had a stale fingerprint, before extraction; Failed counts the subset
// of those that produced no indexable text.
type RefreshStats struct {
	RunID      string `json:"run_id"`
	Discovered int    `json:"discovered"`
	Reused     int    `json:"reused"`
	Changed    int    `json:"changed"`
	Removed    int    `json:"removed"`
	Failed     int    `json:"failed"`
	Rebuilt    bool   `json:"rebuilt"`
	Documents  int    `json:"documents"`
	Terms      int    `json:"terms"`
	TookMS     int64  `json:"took_ms"`
}
