package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/sakuin/internal/models"
	"github.com/hyperjump/sakuin/pkg/utils"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// handleSearch serves GET /api/v1/search?q=...&limit=N.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "missing query parameter 'q'")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	response, err := s.engine.Search(&models.SearchQuery{Query: query, Limit: limit})
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.metrics != nil {
		s.metrics.ObserveSearch(time.Since(start), response.Total)
	}
	if s.history != nil {
		if err := s.history.RecordSearch(r.Context(), response); err != nil {
			s.logger.Warn("failed to record search history", zap.Error(err))
		}
	}

	s.respondJSON(w, http.StatusOK, response)
}

// handleRefresh serves POST /api/v1/refresh. A refresh already in
// progress yields 409 rather than a queued second run.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	stats, err := s.RunRefresh(r.Context())
	if err != nil {
		if errors.Is(err, ErrRefreshBusy) {
			s.respondError(w, http.StatusConflict, "refresh already in progress")
			return
		}
		s.logger.Error("Refresh failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

// handleStatus serves GET /api/v1/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"documents": 0,
		"terms":     0,
	}

	if model := s.holder.Current(); model != nil {
		response["documents"] = model.Len()
		response["terms"] = model.Terms()
		response["built_at"] = model.BuiltAt
	}

	if s.config != nil {
		response["directories"] = s.config.Index.Directories
		response["snapshot_path"] = s.config.Storage.SnapshotPath
		if usage, err := utils.DiskUsageBytes(s.config.Storage.SnapshotPath, s.config.Storage.HistoryPath); err == nil {
			response["disk_usage_bytes"] = usage
		}
	}

	if s.history != nil {
		if searches, refreshes, err := s.history.Totals(r.Context()); err == nil {
			response["total_searches"] = searches
			response["total_refreshes"] = refreshes
		}
	}

	s.respondJSON(w, http.StatusOK, response)
}

// handleHistory serves GET /api/v1/history?limit=N.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, http.StatusNotImplemented, "history not enabled")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.history.RecentSearches(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to load search history", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": entries,
		"total": len(entries),
	})
}

// handleHealth serves the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
