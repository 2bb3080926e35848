// Package discover walks the configured corpus roots and lists the candidate
// documents, with the fingerprint data staleness checks need.
package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/sakuin/internal/models"
)

// Scanner finds indexable files under directory trees.
type Scanner struct {
	extensions map[string]struct{}
	logger     *zap.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithLogger sets the logger used to report skipped directories.
func WithLogger(logger *zap.Logger) ScannerOption {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// NewScanner creates a scanner that accepts the given extensions, compared
// case-insensitively. An empty list accepts every file.
func NewScanner(extensions []string, opts ...ScannerOption) *Scanner {
	s := &Scanner{}
	if len(extensions) > 0 {
		s.extensions = make(map[string]struct{}, len(extensions))
		for _, ext := range extensions {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			s.extensions[ext] = struct{}{}
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Discover walks each directory recursively and returns every regular file
// with an accepted extension. Results carry absolute paths and are sorted by
// path, so repeated scans over the same tree agree on both content and
// order. Directories that are missing or unreadable are logged and skipped;
// discovery itself never fails.
func (s *Scanner) Discover(dirs []string) []models.FileInfo {
	var files []models.FileInfo
	seen := make(map[string]struct{})
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			s.warn("cannot resolve directory, skipping", dir, err)
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			s.warn("directory missing, skipping", dir, err)
			continue
		}
		walkErr := filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				s.warn("walk error, entry skipped", path, err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if !s.allowed(filepath.Ext(path)) {
				return nil
			}
			// Stat rather than d.Info so symlinked files carry the
			// target's fingerprint.
			finfo, err := os.Stat(path)
			if err != nil || !finfo.Mode().IsRegular() {
				return nil
			}
			clean := filepath.Clean(path)
			if _, dup := seen[clean]; dup {
				return nil
			}
			seen[clean] = struct{}{}
			files = append(files, models.FileInfo{
				Path:      clean,
				Name:      filepath.Base(clean),
				ModTimeNS: finfo.ModTime().UnixNano(),
				Size:      finfo.Size(),
			})
			return nil
		})
		if walkErr != nil {
			s.warn("walk aborted", dir, walkErr)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}

func (s *Scanner) allowed(ext string) bool {
	if len(s.extensions) == 0 {
		return true
	}
	_, ok := s.extensions[strings.ToLower(ext)]
	return ok
}

func (s *Scanner) warn(msg, path string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, zap.String("path", path), zap.Error(err))
	}
}
