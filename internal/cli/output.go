// Package cli renders search and refresh output for the command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/sakuin/internal/models"
)

// OutputFormat selects how results are rendered.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one result per line, score then path.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		writeSearchResultsCompact(w, response)
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsCompact(w io.Writer, response *models.SearchResponse) {
	for _, item := range response.Items {
		fmt.Fprintf(w, "%.6f %s\n", item.Score, item.Path)
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	if response.Total == 0 {
		fmt.Fprintf(w, "No results for %q (%dms)\n", response.Query, response.QueryTime)
		return
	}
	fmt.Fprintf(w, "Found %d results for %q in %dms\n\n", response.Total, response.Query, response.QueryTime)
	for i, item := range response.Items {
		fmt.Fprintf(w, "%3d. %.6f  %s\n", i+1, item.Score, item.File)
		fmt.Fprintf(w, "     %s\n", item.Path)
	}
}

// WriteRefreshStats writes a refresh summary to w in the given format.
func WriteRefreshStats(w io.Writer, stats *models.RefreshStats, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, stats)
	}
	writeRefreshStatsText(w, stats)
	return nil
}

func writeRefreshStatsText(w io.Writer, stats *models.RefreshStats) {
	fmt.Fprintf(w, "Refresh finished in %dms\n", stats.TookMS)
	fmt.Fprintf(w, "  discovered: %d\n", stats.Discovered)
	fmt.Fprintf(w, "  reused:     %d\n", stats.Reused)
	fmt.Fprintf(w, "  changed:    %d\n", stats.Changed)
	fmt.Fprintf(w, "  removed:    %d\n", stats.Removed)
	if stats.Failed > 0 {
		fmt.Fprintf(w, "  failed:     %d\n", stats.Failed)
	}
	state := "unchanged"
	if stats.Rebuilt {
		state = "rebuilt"
	}
	fmt.Fprintf(w, "Index %s: %d documents, %d terms\n", state, stats.Documents, stats.Terms)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
