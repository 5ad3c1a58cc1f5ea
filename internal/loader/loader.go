// Package loader keeps a bounded window of parsed papers over the full list of
// entry files so large collections never have to be held in memory at once.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/csheth/dumpling/internal/desktop"
	"github.com/csheth/dumpling/internal/paper"
)

var (
	// ErrCorruptEntry marks an entry that was listed as valid but failed to
	// parse while scrolling. The window can no longer be trusted.
	ErrCorruptEntry = errors.New("loader: corrupt entry")
	// ErrNotRemoved is returned when a removal was aborted and nothing changed.
	ErrNotRemoved = errors.New("loader: entry not removed")
	// ErrNoSelection is returned when the cursor does not address a loaded entry.
	ErrNoSelection = errors.New("loader: no entry selected")
)

// CorruptEntryError describes the entry that broke a scroll.
type CorruptEntryError struct {
	Path     string
	Position int
	Err      error
}

func (e *CorruptEntryError) Error() string {
	return fmt.Sprintf("loader: entry %d (%s) can no longer be parsed: %v", e.Position, e.Path, e.Err)
}

func (e *CorruptEntryError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrCorruptEntry.
func (e *CorruptEntryError) Is(target error) bool { return target == ErrCorruptEntry }

// Source reads and deletes entry files.
type Source interface {
	Read(path string) (paper.Paper, error)
	Remove(path string) error
}

// Loader owns the entry index and the window of loaded papers. positions and
// papers always have the same length.
type Loader struct {
	capacity  int
	index     []string
	positions []int
	papers    []paper.Paper

	source    Source
	clipboard desktop.Clipboard
	launcher  desktop.Launcher
	expand    func(string) (string, error)
	log       logrus.FieldLogger
}

// Option customizes a Loader.
type Option func(*Loader)

// WithClipboard overrides the clipboard used by CopyBibtex.
func WithClipboard(c desktop.Clipboard) Option {
	return func(l *Loader) {
		if c != nil {
			l.clipboard = c
		}
	}
}

// WithLauncher overrides how external programs are started.
func WithLauncher(launcher desktop.Launcher) Option {
	return func(l *Loader) {
		if launcher != nil {
			l.launcher = launcher
		}
	}
}

// WithPathExpander overrides home directory expansion for PDF paths.
func WithPathExpander(expand func(string) (string, error)) Option {
	return func(l *Loader) {
		if expand != nil {
			l.expand = expand
		}
	}
}

// WithLogger routes loader diagnostics to log.
func WithLogger(log logrus.FieldLogger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// New builds a loader over index and fills the window with positions
// 0 through capacity. Entries that fail to parse are logged and skipped.
func New(capacity int, index []string, source Source, opts ...Option) *Loader {
	if capacity < 0 {
		capacity = 0
	}
	l := &Loader{
		capacity:  capacity,
		index:     append([]string(nil), index...),
		source:    source,
		clipboard: desktop.SystemClipboard{Notify: "Bibtex copied"},
		launcher:  desktop.ExecLauncher{},
		expand:    desktop.ExpandPath,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.fill(0)
	return l
}

// fill loads up to capacity+1 entries starting at start into an empty window.
func (l *Loader) fill(start int) {
	for pos := start; pos <= start+l.capacity && pos < len(l.index); pos++ {
		p, err := l.source.Read(l.index[pos])
		if err != nil {
			l.log.WithError(err).WithFields(logrus.Fields{
				"path":     l.index[pos],
				"position": pos,
			}).Warn("loader: skipping entry that could not be parsed")
			continue
		}
		l.positions = append(l.positions, pos)
		l.papers = append(l.papers, p)
	}
}

// Len reports the number of loaded entries.
func (l *Loader) Len() int { return len(l.papers) }

// IndexLen reports the number of entries in the index.
func (l *Loader) IndexLen() int { return len(l.index) }

// Positions returns a copy of the loaded index positions.
func (l *Loader) Positions() []int {
	return append([]int(nil), l.positions...)
}

// Papers returns a copy of the loaded papers in window order.
func (l *Loader) Papers() []paper.Paper {
	return append([]paper.Paper(nil), l.papers...)
}

// Paper returns the loaded paper at cursor.
func (l *Loader) Paper(cursor int) (paper.Paper, bool) {
	if cursor < 0 || cursor >= len(l.papers) {
		return paper.Paper{}, false
	}
	return l.papers[cursor], true
}

// Path returns the backing file of the entry at cursor.
func (l *Loader) Path(cursor int) (string, bool) {
	if cursor < 0 || cursor >= len(l.positions) {
		return "", false
	}
	pos := l.positions[cursor]
	if pos < 0 || pos >= len(l.index) {
		return "", false
	}
	return l.index[pos], true
}

// ScrollForward slides the window one entry towards the end of the index and
// keeps the cursor in place. Once the index is exhausted the cursor moves
// instead, stopping at the last loaded entry.
func (l *Loader) ScrollForward(cursor int) (int, error) {
	if len(l.index) == 0 || len(l.papers) == 0 {
		return 0, nil
	}
	next := l.positions[len(l.positions)-1] + 1
	if next >= len(l.index) {
		return clamp(cursor+1, len(l.papers)-1), nil
	}
	p, err := l.load(next)
	if err != nil {
		return cursor, err
	}
	l.positions = append(l.positions[1:], next)
	l.papers = append(l.papers[1:], p)
	return cursor, nil
}

// ScrollBackward slides the window one entry towards the start of the index.
// When position 0 is already loaded the cursor moves instead, never below 0.
func (l *Loader) ScrollBackward(cursor int) (int, error) {
	if len(l.index) == 0 || len(l.papers) == 0 {
		return 0, nil
	}
	first := l.positions[0]
	if first <= 0 {
		return clamp(cursor-1, len(l.papers)-1), nil
	}
	prev := first - 1
	p, err := l.load(prev)
	if err != nil {
		return cursor, err
	}
	l.positions = append([]int{prev}, l.positions[:len(l.positions)-1]...)
	l.papers = append([]paper.Paper{p}, l.papers[:len(l.papers)-1]...)
	return cursor, nil
}

func (l *Loader) load(pos int) (paper.Paper, error) {
	path := l.index[pos]
	p, err := l.source.Read(path)
	if err != nil {
		l.log.WithError(err).WithFields(logrus.Fields{
			"path":     path,
			"position": pos,
		}).Error("loader: listed entry failed to parse while scrolling")
		return paper.Paper{}, &CorruptEntryError{Path: path, Position: pos, Err: err}
	}
	return p, nil
}

// CopyBibtex puts the bibtex of the entry at cursor on the clipboard.
func (l *Loader) CopyBibtex(cursor int) error {
	p, ok := l.Paper(cursor)
	if !ok {
		l.log.WithField("cursor", cursor).Warn("loader: no entry selected, not copying bibtex")
		return ErrNoSelection
	}
	if err := l.clipboard.WriteText(p.Bibtex); err != nil {
		l.log.WithError(err).WithField("cursor", cursor).Warn("loader: copying bibtex failed")
		return err
	}
	return nil
}

// Remove deletes the backing file of the entry at cursor and drops it from the
// index and the window. Loaded positions past the removed one shift down by
// one. On any failure nothing in memory changes and the error wraps
// ErrNotRemoved.
func (l *Loader) Remove(cursor int) error {
	path, ok := l.Path(cursor)
	if !ok {
		l.log.WithField("cursor", cursor).Warn("loader: no entry selected, not removing")
		return fmt.Errorf("%w: %w", ErrNotRemoved, ErrNoSelection)
	}
	if err := l.source.Remove(path); err != nil {
		l.log.WithError(err).WithField("path", path).Warn("loader: removing entry failed")
		return fmt.Errorf("%w: %w", ErrNotRemoved, err)
	}
	removed := l.positions[cursor]
	for i, pos := range l.positions {
		if pos > removed {
			l.positions[i] = pos - 1
		}
	}
	l.index = append(l.index[:removed], l.index[removed+1:]...)
	l.positions = append(l.positions[:cursor], l.positions[cursor+1:]...)
	l.papers = append(l.papers[:cursor], l.papers[cursor+1:]...)
	l.log.WithFields(logrus.Fields{"path": path, "position": removed}).Info("loader: removed entry")

	// Refill once the last loaded entry is gone but others remain on disk.
	if len(l.papers) == 0 && len(l.index) > 0 {
		start := removed
		if start+l.capacity >= len(l.index) {
			start = max(0, len(l.index)-l.capacity-1)
		}
		l.fill(start)
	}
	return nil
}

// OpenInEditor starts command with the backing file of the entry at cursor
// appended as its last argument.
func (l *Loader) OpenInEditor(cursor int, command string) error {
	path, ok := l.Path(cursor)
	if !ok {
		l.log.WithField("cursor", cursor).Warn("loader: no entry selected, not opening editor")
		return ErrNoSelection
	}
	name, args, err := desktop.SplitCommand(command)
	if err != nil {
		l.log.WithError(err).Warn("loader: editor command is empty")
		return err
	}
	if err := l.launcher.Start(name, append(args, path)...); err != nil {
		l.log.WithError(err).WithField("command", command).Warn("loader: opening editor failed")
		return err
	}
	return nil
}

// OpenInViewer starts command with the PDF named by the selected entry,
// resolved against baseDir. The PDF must exist.
func (l *Loader) OpenInViewer(cursor int, command, baseDir string) error {
	p, ok := l.Paper(cursor)
	if !ok {
		l.log.WithField("cursor", cursor).Warn("loader: no entry selected, not opening viewer")
		return ErrNoSelection
	}
	target, err := l.expand(filepath.Join(baseDir, p.DocName))
	if err != nil {
		l.log.WithError(err).Warn("loader: expanding pdf path failed")
		return err
	}
	if _, err := os.Stat(target); err != nil {
		l.log.WithError(err).WithField("path", target).Warn("loader: pdf not found")
		return fmt.Errorf("loader: pdf %s: %w", target, err)
	}
	name, args, err := desktop.SplitCommand(command)
	if err != nil {
		l.log.WithError(err).Warn("loader: pdf viewer command is empty")
		return err
	}
	if err := l.launcher.Start(name, append(args, target)...); err != nil {
		l.log.WithError(err).WithField("command", command).Warn("loader: opening pdf viewer failed")
		return err
	}
	return nil
}

func clamp(v, hi int) int {
	if v > hi {
		v = hi
	}
	if v < 0 {
		v = 0
	}
	return v
}
