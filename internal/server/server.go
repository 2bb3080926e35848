package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hyperjump/sakuin/internal/config"
	"github.com/hyperjump/sakuin/internal/index"
	"github.com/hyperjump/sakuin/internal/metrics"
	"github.com/hyperjump/sakuin/internal/models"
	"github.com/hyperjump/sakuin/internal/search"
)

// ErrRefreshBusy is returned when a refresh is requested while another
// one is still running. Refreshes are serialized; callers retry later.
var ErrRefreshBusy = errors.New("refresh already in progress")

// HistoryStore records searches and refreshes for later inspection.
// It is optional; a nil store disables the history endpoints.
type HistoryStore interface {
	RecordSearch(ctx context.Context, response *models.SearchResponse) error
	RecordRefresh(ctx context.Context, stats *models.RefreshStats) error
	RecentSearches(ctx context.Context, limit int) ([]*models.SearchEntry, error)
	Totals(ctx context.Context) (searches, refreshes int64, err error)
}

// Server exposes the search engine over HTTP.
type Server struct {
	engine    *search.Engine
	refresher *index.Refresher
	holder    *index.Holder
	history   HistoryStore
	metrics   *metrics.Metrics
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server

	// refreshMu serializes refresh runs across HTTP, the watcher, and
	// startup. TryLock keeps concurrent requests from queueing up.
	refreshMu sync.Mutex
}

// NewServer creates a new HTTP server. history and met may be nil.
func NewServer(
	engine *search.Engine,
	refresher *index.Refresher,
	holder *index.Holder,
	history HistoryStore,
	met *metrics.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:    engine,
		refresher: refresher,
		holder:    holder,
		history:   history,
		metrics:   met,
		config:    cfg,
		logger:    logger,
	}
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/status", s.handleStatus)
		r.Get("/history", s.handleHistory)
		r.Get("/health", s.handleHealth)
	})

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Start begins listening for HTTP requests. It blocks until the server
// stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	s.logger.Info("Starting server", zap.String("addr", addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("Stopping server")
	return s.server.Shutdown(ctx)
}

// RunRefresh executes one refresh cycle and swaps the new model in.
// Only one refresh runs at a time; a second caller gets ErrRefreshBusy
// instead of blocking.
func (s *Server) RunRefresh(ctx context.Context) (*models.RefreshStats, error) {
	if !s.refreshMu.TryLock() {
		return nil, ErrRefreshBusy
	}
	defer s.refreshMu.Unlock()

	model, stats, err := s.refresher.Refresh(ctx)
	if s.metrics != nil {
		s.metrics.ObserveRefresh(stats, err)
	}
	if err != nil {
		return nil, err
	}

	s.holder.Replace(model)

	if s.history != nil {
		if herr := s.history.RecordRefresh(ctx, stats); herr != nil {
			s.logger.Warn("failed to record refresh history", zap.Error(herr))
		}
	}
	return stats, nil
}

// HandleCorpusChange runs a refresh in response to a filesystem change
// signal. A refresh already in flight absorbs the signal; the next
// change re-triggers it.
func (s *Server) HandleCorpusChange() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := s.RunRefresh(ctx); err != nil {
		if errors.Is(err, ErrRefreshBusy) {
			s.logger.Debug("change signal ignored, refresh already running")
			return
		}
		s.logger.Error("watch-triggered refresh failed", zap.Error(err))
	}
}
