package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/peterbourgon/diskv/v3"
	"github.com/sirupsen/logrus"

	"github.com/csheth/dumpling/internal/paper"
)

// EntryPattern is the naming convention for entry files inside the store.
const EntryPattern = "*" + paper.Extension

var entryGlob = glob.MustCompile(EntryPattern, '/')

// Store keeps one TOML file per paper inside a single flat directory.
type Store struct {
	d       *diskv.Diskv
	baseDir string
	log     logrus.FieldLogger
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger routes store diagnostics to log.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// Open prepares dir for use as an entry store, creating it if necessary.
func Open(dir string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("store: directory required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("store: resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure %s: %w", abs, err)
	}
	s := &Store{
		baseDir: abs,
		log:     logrus.StandardLogger(),
		d: diskv.New(diskv.Options{
			BasePath:          abs,
			AdvancedTransform: flatTransform,
			InverseTransform:  flatInverseTransform,
			// Entries are re-read from disk on every access so a file that
			// changed underneath the program is noticed.
			CacheSizeMax: 0,
		}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the absolute directory backing the store.
func (s *Store) Dir() string {
	return s.baseDir
}

// Scan lists the paths of all entry files. When tagFilter is non-empty only
// entries that parse and carry that exact tag are returned; entries that fail
// to parse are logged and left out.
func (s *Store) Scan(ctx context.Context, tagFilter string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.baseDir); err != nil {
		return nil, fmt.Errorf("store: scan %s: %w", s.baseDir, err)
	}
	paths := []string{}
	for key := range s.d.Keys(ctx.Done()) {
		if !entryGlob.Match(key) {
			continue
		}
		path := s.pathFor(key)
		if tagFilter == "" {
			paths = append(paths, path)
			continue
		}
		p, err := s.Read(path)
		if err != nil {
			s.log.WithError(err).WithField("path", path).Warn("store: skipping unreadable entry while filtering by tag")
			continue
		}
		if p.HasTag(tagFilter) {
			paths = append(paths, path)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return paths, nil
}

// All reads every entry in the store, skipping unreadable files.
func (s *Store) All(ctx context.Context) ([]paper.Paper, error) {
	paths, err := s.Scan(ctx, "")
	if err != nil {
		return nil, err
	}
	papers := make([]paper.Paper, 0, len(paths))
	for _, path := range paths {
		p, err := s.Read(path)
		if err != nil {
			s.log.WithError(err).WithField("path", path).Warn("store: skipping unreadable entry")
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// Read loads the entry stored at path. Any I/O or decode failure is returned;
// a partially decoded entry is never produced.
func (s *Store) Read(path string) (paper.Paper, error) {
	key, err := s.keyFor(path)
	if err != nil {
		return paper.Paper{}, err
	}
	data, err := s.d.Read(key)
	if err != nil {
		return paper.Paper{}, fmt.Errorf("store: read %s: %w", path, err)
	}
	p, err := paper.Decode(data)
	if err != nil {
		return paper.Paper{}, fmt.Errorf("store: %s: %w", path, err)
	}
	return p, nil
}

// Write stores p under a name derived from its encoded content and returns the
// resulting path. Writing identical content twice yields the same path.
func (s *Store) Write(p paper.Paper) (string, error) {
	data, err := paper.Encode(p)
	if err != nil {
		return "", err
	}
	key := paper.FileName(data)
	if err := s.d.Write(key, data); err != nil {
		return "", fmt.Errorf("store: write %s: %w", key, err)
	}
	return s.pathFor(key), nil
}

// Remove deletes the entry file at path. A missing file yields an error that
// matches fs.ErrNotExist.
func (s *Store) Remove(path string) error {
	key, err := s.keyFor(path)
	if err != nil {
		return err
	}
	if !s.d.Has(key) {
		return fmt.Errorf("store: remove %s: %w", path, fs.ErrNotExist)
	}
	if err := s.d.Erase(key); err != nil {
		return fmt.Errorf("store: remove %s: %w", path, err)
	}
	return nil
}

func (s *Store) pathFor(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}

func (s *Store) keyFor(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.baseDir, path)
	}
	rel, err := filepath.Rel(s.baseDir, filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("store: %s: %w", path, err)
	}
	if rel == "." || strings.HasPrefix(rel, "..") || strings.ContainsRune(rel, filepath.Separator) {
		return "", fmt.Errorf("store: %s is not an entry of %s", path, s.baseDir)
	}
	return rel, nil
}

func flatTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{Path: []string{}, FileName: key}
}

func flatInverseTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return strings.Join(pathKey.Path, "/") + "/" + pathKey.FileName
}
