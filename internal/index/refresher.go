package index

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/sakuin/internal/models"
	"github.com/hyperjump/sakuin/internal/tokenizer"
)

const defaultExtractWorkers = 4

// TextExtractor produces the text content of one document. An error means
// the document yields no text and stays out of the index until it changes
// again; it never aborts a refresh.
type TextExtractor interface {
	Extract(path string) (string, error)
}

// Discoverer lists the candidate documents currently present under the
// configured directories, with fingerprint data.
type Discoverer interface {
	Discover(dirs []string) []models.FileInfo
}

// SnapshotStore persists corpus models between runs. Load returns nil when
// no usable snapshot exists.
type SnapshotStore interface {
	Load() *models.CorpusModel
	Save(*models.CorpusModel) error
}

// Refresher reconciles the persisted corpus model with the filesystem. It is
// not safe for concurrent use with itself; callers serialize refresh runs.
type Refresher struct {
	directories []string
	store       SnapshotStore
	extractor   TextExtractor
	discoverer  Discoverer
	workers     int
	logger      *zap.Logger
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithLogger sets the logger used for refresh progress and summaries.
func WithLogger(logger *zap.Logger) RefresherOption {
	return func(r *Refresher) {
		r.logger = logger
	}
}

// WithWorkers bounds the number of concurrent extractions.
func WithWorkers(n int) RefresherOption {
	return func(r *Refresher) {
		if n > 0 {
			r.workers = n
		}
	}
}

// NewRefresher creates a refresher over the given directories.
func NewRefresher(directories []string, store SnapshotStore, extractor TextExtractor, discoverer Discoverer, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		directories: directories,
		store:       store,
		extractor:   extractor,
		discoverer:  discoverer,
		workers:     defaultExtractWorkers,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh discovers the current document set, reuses records from the
// persisted model for files whose fingerprint is unchanged, re-extracts
// changed or new files, and drops removed ones. If nothing changed the prior
// model is returned as is and nothing is written; otherwise the model is
// rebuilt from scratch over the merged records and persisted before being
// returned. Extraction failures skip the document, not the run.
func (r *Refresher) Refresh(ctx context.Context) (*models.CorpusModel, *models.RefreshStats, error) {
	start := time.Now()
	stats := &models.RefreshStats{RunID: uuid.NewString()}

	prior := r.store.Load()
	if prior == nil && r.logger != nil {
		r.logger.Info("no usable snapshot, building from scratch")
	}

	discovered := r.discoverer.Discover(r.directories)
	stats.Discovered = len(discovered)

	next := make(map[string]*models.DocumentRecord, len(discovered))
	var pending []models.FileInfo
	for _, f := range discovered {
		if prior != nil {
			if old, ok := prior.Documents[f.Path]; ok && old.SameFingerprint(f.ModTimeNS, f.Size) {
				next[f.Path] = old
				stats.Reused++
				continue
			}
		}
		pending = append(pending, f)
	}
	stats.Changed = len(pending)

	if prior != nil {
		current := make(map[string]struct{}, len(discovered))
		for _, f := range discovered {
			current[f.Path] = struct{}{}
		}
		for path := range prior.Documents {
			if _, ok := current[path]; !ok {
				stats.Removed++
			}
		}
	}

	if prior != nil && stats.Changed == 0 && stats.Removed == 0 {
		stats.Documents = prior.Len()
		stats.Terms = prior.Terms()
		stats.TookMS = time.Since(start).Milliseconds()
		if r.logger != nil {
			r.logger.Info("corpus unchanged, reusing model",
				zap.Int("documents", stats.Documents),
				zap.String("run_id", stats.RunID))
		}
		return prior, stats, nil
	}

	extracted, failed, err := r.extractAll(ctx, pending)
	if err != nil {
		return nil, stats, err
	}
	stats.Failed = failed
	for path, rec := range extracted {
		next[path] = rec
	}

	model := BuildModel(next)
	stats.Rebuilt = true
	stats.Documents = model.Len()
	stats.Terms = model.Terms()

	if err := r.store.Save(model); err != nil {
		return nil, stats, fmt.Errorf("persist corpus model: %w", err)
	}
	stats.TookMS = time.Since(start).Milliseconds()
	if r.logger != nil {
		r.logger.Info("corpus model rebuilt",
			zap.Int("documents", stats.Documents),
			zap.Int("terms", stats.Terms),
			zap.Int("reused", stats.Reused),
			zap.Int("changed", stats.Changed),
			zap.Int("removed", stats.Removed),
			zap.Int("failed", stats.Failed),
			zap.Int64("took_ms", stats.TookMS),
			zap.String("run_id", stats.RunID))
	}
	return model, stats, nil
}

// extractAll extracts the pending files with a bounded worker pool. It
// returns the successfully tokenized records and the number of files that
// produced none. Only context cancellation is an error.
func (r *Refresher) extractAll(ctx context.Context, files []models.FileInfo) (map[string]*models.DocumentRecord, int, error) {
	if len(files) == 0 {
		return nil, 0, nil
	}
	var (
		mu     sync.Mutex
		out    = make(map[string]*models.DocumentRecord, len(files))
		failed int
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, f := range files {
		f := f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec := r.extractOne(f)
			mu.Lock()
			if rec != nil {
				out[f.Path] = rec
			} else {
				failed++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return out, failed, nil
}

// extractOne turns one file into a document record, or nil when the file
// yields no indexable text.
func (r *Refresher) extractOne(f models.FileInfo) *models.DocumentRecord {
	text, err := r.extractor.Extract(f.Path)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("extraction failed, document skipped",
				zap.String("path", f.Path),
				zap.Error(err))
		}
		return nil
	}
	counts, total := tokenizer.Counts(text)
	if total == 0 {
		if r.logger != nil {
			r.logger.Debug("document has no terms, skipped", zap.String("path", f.Path))
		}
		return nil
	}
	return &models.DocumentRecord{
		Path:       f.Path,
		Name:       f.Name,
		ModTimeNS:  f.ModTimeNS,
		Size:       f.Size,
		TermCounts: counts,
		TotalTerms: total,
	}
}
