package search

import (
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/sakuin/internal/config"
	"github.com/hyperjump/sakuin/internal/index"
	"github.com/hyperjump/sakuin/internal/models"
)

// Engine serves queries against whatever model the holder currently
// publishes. Scoring touches no I/O; every search runs against one model
// pointer for its whole duration, so a concurrent refresh never changes a
// ranking mid-flight.
type Engine struct {
	holder *index.Holder
	config *config.SearchConfig
	logger *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger for per-query debug output.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a search engine reading from holder.
func NewEngine(holder *index.Holder, cfg *config.SearchConfig, opts ...EngineOption) *Engine {
	e := &Engine{holder: holder, config: cfg}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search ranks the current model against the query. The limit is clamped to
// the configured bounds, with zero meaning the default. A query that matches
// nothing, including one whose terms the corpus has never seen, returns an
// empty response rather than an error.
func (e *Engine) Search(query *models.SearchQuery) (*models.SearchResponse, error) {
	start := time.Now()
	if err := query.Validate(); err != nil {
		return nil, err
	}
	limit := query.Limit
	if limit <= 0 {
		limit = e.config.DefaultLimit
	}
	if limit > e.config.MaxLimit {
		limit = e.config.MaxLimit
	}

	items := Rank(e.holder.Current(), query.Query, limit)
	if items == nil {
		items = []*models.SearchResult{}
	}
	resp := &models.SearchResponse{
		Query:     query.Query,
		Total:     len(items),
		Items:     items,
		QueryTime: time.Since(start).Milliseconds(),
	}
	if e.logger != nil {
		e.logger.Debug("search served",
			zap.String("query", query.Query),
			zap.Int("results", resp.Total),
			zap.Int64("took_ms", resp.QueryTime))
	}
	return resp, nil
}
