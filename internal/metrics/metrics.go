// Package metrics exposes Prometheus instrumentation for the search service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hyperjump/sakuin/internal/models"
)

// Metrics bundles the collectors the server updates.
type Metrics struct {
	SearchesTotal   prometheus.Counter
	SearchDuration  prometheus.Histogram
	SearchResults   prometheus.Histogram
	RefreshesTotal  *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	ModelDocuments  prometheus.Gauge
	ModelTerms      prometheus.Gauge
}

// New registers the collectors with reg and returns them. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh registry so
// repeated construction does not collide.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SearchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "sakuin_searches_total",
			Help: "Number of search requests served.",
		}),
		SearchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sakuin_search_duration_seconds",
			Help:    "Search latency.",
			Buckets: prometheus.DefBuckets,
		}),
		SearchResults: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sakuin_search_results",
			Help:    "Results returned per search.",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		RefreshesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sakuin_refreshes_total",
			Help: "Refresh runs by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sakuin_refresh_duration_seconds",
			Help:    "Refresh run duration.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		ModelDocuments: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sakuin_model_documents",
			Help: "Documents in the current corpus model.",
		}),
		ModelTerms: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sakuin_model_terms",
			Help: "Vocabulary size of the current corpus model.",
		}),
	}
}

// ObserveSearch records one served search.
func (m *Metrics) ObserveSearch(d time.Duration, results int) {
	m.SearchesTotal.Inc()
	m.SearchDuration.Observe(d.Seconds())
	m.SearchResults.Observe(float64(results))
}

// ObserveRefresh records one refresh run and, on success, the size of the
// resulting model.
func (m *Metrics) ObserveRefresh(stats *models.RefreshStats, err error) {
	outcome := "unchanged"
	switch {
	case err != nil:
		outcome = "error"
	case stats != nil && stats.Rebuilt:
		outcome = "rebuilt"
	}
	m.RefreshesTotal.WithLabelValues(outcome).Inc()
	if stats == nil {
		return
	}
	m.RefreshDuration.Observe(float64(stats.TookMS) / 1000)
	if err == nil {
		m.ModelDocuments.Set(float64(stats.Documents))
		m.ModelTerms.Set(float64(stats.Terms))
	}
}
