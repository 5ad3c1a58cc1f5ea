package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/dumpling/internal/paper"
	"github.com/csheth/dumpling/internal/store"
)

type memorySource struct {
	papers  map[string]paper.Paper
	broken  map[string]bool
	removed []string
}

func newMemorySource(names ...string) (*memorySource, []string) {
	src := &memorySource{papers: map[string]paper.Paper{}, broken: map[string]bool{}}
	index := make([]string, 0, len(names))
	for _, name := range names {
		path := name + paper.Extension
		p := paper.New(name, 2000, []string{"Author " + name}, nil)
		p.Bibtex = "@misc{" + name + "}"
		p.DocName = name + ".pdf"
		src.papers[path] = p
		index = append(index, path)
	}
	return src, index
}

func (m *memorySource) Read(path string) (paper.Paper, error) {
	if m.broken[path] {
		return paper.Paper{}, fmt.Errorf("decode %s: bad toml", path)
	}
	p, ok := m.papers[path]
	if !ok {
		return paper.Paper{}, fs.ErrNotExist
	}
	return p, nil
}

func (m *memorySource) Remove(path string) error {
	if _, ok := m.papers[path]; !ok {
		return fmt.Errorf("remove %s: %w", path, fs.ErrNotExist)
	}
	delete(m.papers, path)
	m.removed = append(m.removed, path)
	return nil
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteText(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

type fakeLauncher struct {
	calls [][]string
	err   error
}

func (f *fakeLauncher) Start(name string, args ...string) error {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.err
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestLoader(capacity int, index []string, src Source, opts ...Option) *Loader {
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return New(capacity, index, src, opts...)
}

func titles(l *Loader) []string {
	out := []string{}
	for _, p := range l.Papers() {
		out = append(out, p.Title)
	}
	return out
}

func TestNewLoadsCapacityPlusOne(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		capacity  int
		positions []int
	}{
		{name: "larger index", size: 10, capacity: 3, positions: []int{0, 1, 2, 3}},
		{name: "index smaller than capacity", size: 2, capacity: 5, positions: []int{0, 1}},
		{name: "exact fit", size: 3, capacity: 2, positions: []int{0, 1, 2}},
		{name: "zero capacity", size: 4, capacity: 0, positions: []int{0}},
		{name: "empty index", size: 0, capacity: 4, positions: nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			names := []string{}
			for i := 0; i < tc.size; i++ {
				names = append(names, fmt.Sprintf("p%d", i))
			}
			src, index := newMemorySource(names...)
			l := newTestLoader(tc.capacity, index, src)
			assert.Equal(t, tc.positions, l.Positions())
			assert.Equal(t, len(tc.positions), l.Len())
			assert.Equal(t, tc.size, l.IndexLen())
		})
	}
}

func TestNewSkipsUnparseableEntries(t *testing.T) {
	src, index := newMemorySource("A", "B", "C", "D")
	src.broken["B.toml"] = true

	l := newTestLoader(2, index, src)
	assert.Equal(t, []int{0, 2}, l.Positions())
	assert.Equal(t, []string{"A", "C"}, titles(l))
}

func TestScrollScenario(t *testing.T) {
	src, index := newMemorySource("A", "B", "C", "D", "E")
	l := newTestLoader(2, index, src)
	require.Equal(t, []string{"A", "B", "C"}, titles(l))

	cursor, err := l.ScrollForward(0)
	require.NoError(t, err)
	assert.Equal(t, 0, cursor)
	assert.Equal(t, []string{"B", "C", "D"}, titles(l))

	cursor, err = l.ScrollForward(cursor)
	require.NoError(t, err)
	assert.Equal(t, 0, cursor)
	assert.Equal(t, []string{"C", "D", "E"}, titles(l))

	// The index is exhausted, so the cursor moves instead of the window.
	for want := 1; want <= 2; want++ {
		cursor, err = l.ScrollForward(cursor)
		require.NoError(t, err)
		assert.Equal(t, want, cursor)
		assert.Equal(t, []int{2, 3, 4}, l.Positions())
	}
	cursor, err = l.ScrollForward(cursor)
	require.NoError(t, err)
	assert.Equal(t, 2, cursor, "cursor must clamp at the last loaded entry")
}

func TestScrollRoundTrip(t *testing.T) {
	src, index := newMemorySource("A", "B", "C", "D", "E", "F", "G")
	l := newTestLoader(2, index, src)
	startPositions := l.Positions()
	startTitles := titles(l)

	cursor := 0
	var err error
	for i := 0; i < 10; i++ {
		cursor, err = l.ScrollForward(cursor)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, cursor)
	assert.Equal(t, []int{4, 5, 6}, l.Positions())

	for i := 0; i < 10; i++ {
		cursor, err = l.ScrollBackward(cursor)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, cursor)
	assert.Equal(t, startPositions, l.Positions())
	assert.Equal(t, startTitles, titles(l))
}

func TestScrollBackwardAtStartOnlyMovesCursor(t *testing.T) {
	src, index := newMemorySource("A", "B", "C", "D")
	l := newTestLoader(1, index, src)

	cursor, err := l.ScrollBackward(1)
	require.NoError(t, err)
	assert.Equal(t, 0, cursor)

	cursor, err = l.ScrollBackward(cursor)
	require.NoError(t, err)
	assert.Equal(t, 0, cursor)
	assert.Equal(t, []int{0, 1}, l.Positions())
}

func TestScrollOnEmptyIndex(t *testing.T) {
	src, index := newMemorySource()
	l := newTestLoader(5, index, src)

	cursor, err := l.ScrollForward(3)
	require.NoError(t, err)
	assert.Zero(t, cursor)

	cursor, err = l.ScrollBackward(3)
	require.NoError(t, err)
	assert.Zero(t, cursor)
}

func TestScrollOnEmptyWindow(t *testing.T) {
	src, index := newMemorySource("A")
	src.broken["A.toml"] = true
	l := newTestLoader(5, index, src)
	require.Zero(t, l.Len())

	cursor, err := l.ScrollForward(0)
	require.NoError(t, err)
	assert.Zero(t, cursor)
}

func TestScrollForwardCorruptEntryIsFatal(t *testing.T) {
	src, index := newMemorySource("A", "B", "C")
	l := newTestLoader(1, index, src)
	src.broken["C.toml"] = true

	_, err := l.ScrollForward(0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptEntry)

	var corrupt *CorruptEntryError
	require.True(t, errors.As(err, &corrupt))
	assert.Equal(t, "C.toml", corrupt.Path)
	assert.Equal(t, 2, corrupt.Position)
	assert.Equal(t, []int{0, 1}, l.Positions(), "window must be left untouched")
}

func TestScrollBackwardCorruptEntryIsFatal(t *testing.T) {
	src, index := newMemorySource("A", "B", "C")
	l := newTestLoader(1, index, src)
	_, err := l.ScrollForward(0)
	require.NoError(t, err)
	src.broken["A.toml"] = true

	_, err = l.ScrollBackward(0)
	assert.ErrorIs(t, err, ErrCorruptEntry)
	assert.Equal(t, []int{1, 2}, l.Positions())
}

func TestRemoveRenumbersPositions(t *testing.T) {
	src, index := newMemorySource("A", "B", "C", "D", "E")
	l := newTestLoader(2, index, src)
	_, err := l.ScrollForward(0)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, l.Positions())

	require.NoError(t, l.Remove(1))
	assert.Equal(t, []int{1, 2}, l.Positions())
	assert.Equal(t, []string{"B", "D"}, titles(l))
	assert.Equal(t, 4, l.IndexLen())
	assert.Equal(t, []string{"C.toml"}, src.removed)

	path, ok := l.Path(1)
	require.True(t, ok)
	assert.Equal(t, "D.toml", path)

	// Scrolling continues seamlessly over the shortened index.
	cursor, err := l.ScrollForward(0)
	require.NoError(t, err)
	assert.Equal(t, 0, cursor)
	assert.Equal(t, []string{"D", "E"}, titles(l))
}

func TestRemoveDeletesFileOnDisk(t *testing.T) {
	log := quietLogger()
	s, err := store.Open(t.TempDir(), store.WithLogger(log))
	require.NoError(t, err)
	for _, title := range []string{"A", "B", "C"} {
		_, err := s.Write(paper.New(title, 2020, nil, nil))
		require.NoError(t, err)
	}
	index, err := s.Scan(context.Background(), "")
	require.NoError(t, err)

	l := New(5, index, s, WithLogger(log))
	require.Equal(t, 3, l.Len())
	path, ok := l.Path(0)
	require.True(t, ok)

	require.NoError(t, l.Remove(0))
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, []int{0, 1}, l.Positions())
	_, statErr := os.Stat(path)
	assert.ErrorIs(t, statErr, fs.ErrNotExist)
}

func TestRemoveMissingFileLeavesStateUntouched(t *testing.T) {
	src, index := newMemorySource("A", "B", "C")
	l := newTestLoader(2, index, src)
	delete(src.papers, "B.toml")

	err := l.Remove(1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotRemoved)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, []int{0, 1, 2}, l.Positions())
	assert.Equal(t, 3, l.IndexLen())
}

func TestRemoveWithoutSelection(t *testing.T) {
	src, index := newMemorySource()
	l := newTestLoader(2, index, src)

	err := l.Remove(0)
	assert.ErrorIs(t, err, ErrNotRemoved)
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestRemoveRefillsEmptiedWindow(t *testing.T) {
	src, index := newMemorySource("A", "B", "C", "D", "E")
	l := newTestLoader(1, index, src)
	require.NoError(t, l.Remove(0))
	require.NoError(t, l.Remove(0))

	assert.Equal(t, []int{0, 1}, l.Positions())
	assert.Equal(t, []string{"C", "D"}, titles(l))
	assert.Equal(t, 3, l.IndexLen())
}

func TestCopyBibtex(t *testing.T) {
	src, index := newMemorySource("A", "B")
	clip := &fakeClipboard{}
	l := newTestLoader(3, index, src, WithClipboard(clip))

	require.NoError(t, l.CopyBibtex(1))
	assert.Equal(t, "@misc{B}", clip.text)

	assert.ErrorIs(t, l.CopyBibtex(7), ErrNoSelection)

	clip.err = errors.New("no clipboard")
	assert.Error(t, l.CopyBibtex(0))
}

func TestOpenInEditor(t *testing.T) {
	src, index := newMemorySource("A", "B")
	launcher := &fakeLauncher{}
	l := newTestLoader(3, index, src, WithLauncher(launcher))

	require.NoError(t, l.OpenInEditor(1, "kitty --detach nvim"))
	assert.Equal(t, [][]string{{"kitty", "--detach", "nvim", "B.toml"}}, launcher.calls)

	assert.Error(t, l.OpenInEditor(0, "  "))
	assert.ErrorIs(t, l.OpenInEditor(9, "nvim"), ErrNoSelection)
	assert.Len(t, launcher.calls, 1)
}

func TestOpenInViewer(t *testing.T) {
	pdfDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(pdfDir, "A.pdf"), []byte("%PDF-1.4"), 0o644))

	src, index := newMemorySource("A", "B")
	launcher := &fakeLauncher{}
	expand := func(p string) (string, error) { return p, nil }
	l := newTestLoader(3, index, src, WithLauncher(launcher), WithPathExpander(expand))

	require.NoError(t, l.OpenInViewer(0, "zathura", pdfDir))
	assert.Equal(t, [][]string{{"zathura", filepath.Join(pdfDir, "A.pdf")}}, launcher.calls)

	err := l.OpenInViewer(1, "zathura", pdfDir)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Len(t, launcher.calls, 1)
}

func TestOpenInViewerExpandsHome(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".paper"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".paper", "A.pdf"), []byte("%PDF-1.4"), 0o644))

	src, index := newMemorySource("A")
	launcher := &fakeLauncher{}
	expand := func(p string) (string, error) {
		return filepath.Join(home, p[len("~/"):]), nil
	}
	l := newTestLoader(1, index, src, WithLauncher(launcher), WithPathExpander(expand))

	require.NoError(t, l.OpenInViewer(0, "zathura", "~/.paper"))
	assert.Equal(t, [][]string{{"zathura", filepath.Join(home, ".paper", "A.pdf")}}, launcher.calls)
}
