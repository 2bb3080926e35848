// Package snapshot persists the corpus model as a single versioned JSON file
// written atomically, so the file on disk is always a complete model from
// some prior run.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hyperjump/sakuin/internal/models"
)

// SchemaVersion identifies the snapshot layout. Files written under a
// different version are ignored on load.
const SchemaVersion = 1

type envelope struct {
	SchemaVersion int                 `json:"schema_version"`
	Model         *models.CorpusModel `json:"model"`
}

// Store reads and writes corpus model snapshots at a fixed path.
type Store struct {
	path   string
	logger *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used to report discarded snapshots and saves.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a snapshot store backed by the file at path.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the snapshot file location.
func (s *Store) Path() string { return s.path }

// Load returns the persisted model, or nil when no usable snapshot exists.
// A missing file, unreadable file, malformed JSON, schema mismatch, or
// structurally invalid model all count as "no snapshot"; they are logged and
// the caller rebuilds from scratch. Load never fails the process.
func (s *Store) Load() *models.CorpusModel {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.warn("snapshot unreadable, ignoring", zap.Error(err))
		}
		return nil
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.warn("snapshot corrupt, ignoring", zap.Error(err))
		return nil
	}
	if env.SchemaVersion != SchemaVersion {
		s.warn("snapshot schema mismatch, ignoring",
			zap.Int("got", env.SchemaVersion),
			zap.Int("want", SchemaVersion))
		return nil
	}
	if env.Model == nil {
		s.warn("snapshot has no model, ignoring")
		return nil
	}
	if err := env.Model.Validate(); err != nil {
		s.warn("snapshot structurally invalid, ignoring", zap.Error(err))
		return nil
	}
	return env.Model
}

// Save writes model to a temporary file next to the snapshot and renames it
// into place. A crash mid-write leaves the previous snapshot intact.
func (s *Store) Save(model *models.CorpusModel) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot directory: %w", err)
		}
	}
	data, err := json.Marshal(envelope{SchemaVersion: SchemaVersion, Model: model})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("snapshot saved",
			zap.String("path", s.path),
			zap.Int("documents", model.Len()),
			zap.Int("bytes", len(data)))
	}
	return nil
}

func (s *Store) warn(msg string, fields ...zap.Field) {
	if s.logger != nil {
		s.logger.Warn(msg, append([]zap.Field{zap.String("path", s.path)}, fields...)...)
	}
}
