package commands

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/dumpling/internal/arxiv"
	"github.com/csheth/dumpling/internal/config"
	"github.com/csheth/dumpling/internal/store"
)

func init() {
	color.NoColor = true
}

type testDirs struct {
	entries string
	pdfs    string
}

func newTestDirs(t *testing.T) testDirs {
	t.Helper()
	root := t.TempDir()
	dirs := testDirs{entries: filepath.Join(root, "entries"), pdfs: filepath.Join(root, "pdfs")}
	cfgPath := filepath.Join(root, "dumpling.toml")
	cfg := fmt.Sprintf("[general]\npdf_dir = %q\nlog_level = \"debug\"\n", dirs.pdfs)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	require.NoError(t, os.MkdirAll(dirs.pdfs, 0o755))
	t.Setenv(config.EnvCacheDir, dirs.entries)
	t.Setenv(config.EnvConfig, cfgPath)
	return dirs
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootPrintsHelp(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)
	for _, name := range []string{"open", "add", "tags", "pdfs", "import"} {
		assert.Contains(t, out, name)
	}
}

func TestAddThenListTags(t *testing.T) {
	dirs := newTestDirs(t)

	out, err := execute(t, "add", "--title", "Graph Networks", "--year", "2021",
		"--author", "Ada Lovelace", "--tag", "ml", "--tag", "graphs", "--doc", "graphs.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), dirs.entries))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), ".toml"))

	_, err = execute(t, "add", "--title", "Deep Sets", "--tag", "ml")
	require.NoError(t, err)

	out, err = execute(t, "tags")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"ml", "2"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"graphs", "1"}, strings.Fields(lines[2]))

	log, err := os.ReadFile(filepath.Join(dirs.entries, config.Name+".log"))
	require.NoError(t, err)
	assert.Contains(t, string(log), "commands: entry store ready")
}

func TestAddRequiresTitle(t *testing.T) {
	newTestDirs(t)
	_, err := execute(t, "add", "--title", "  ")
	assert.Error(t, err)
}

func TestPDFsReportsMissing(t *testing.T) {
	dirs := newTestDirs(t)
	_, err := execute(t, "add", "--title", "Graph Networks", "--doc", "graphs.pdf")
	require.NoError(t, err)

	out, err := execute(t, "pdfs")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dirs.pdfs, "graphs.pdf"))
	assert.Contains(t, out, "All PDFs are used.")
}

const atomEntry = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2101.00001v1</id>
    <published>2021-01-04T18:59:59Z</published>
    <title>Graph Networks at Scale</title>
    <summary>We propose a framework for message passing on large graphs. It is fast.</summary>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
    <category term="cs.LG"/>
  </entry>
</feed>`

// minimalPDF builds a one page document with a correct cross-reference table.
func minimalPDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}
	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return b.Bytes()
}

func stubArxiv(t *testing.T, pdfBody []byte) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api":
			_, _ = w.Write([]byte(atomEntry))
		case strings.HasPrefix(r.URL.Path, "/pdf/"):
			_, _ = w.Write(pdfBody)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	previous := newArxivClient
	newArxivClient = func() *arxiv.Client {
		return &arxiv.Client{HTTP: server.Client(), APIURL: server.URL + "/api", PDFURL: server.URL + "/pdf"}
	}
	t.Cleanup(func() { newArxivClient = previous })
}

func TestImportWritesEntryAndPDF(t *testing.T) {
	dirs := newTestDirs(t)
	stubArxiv(t, minimalPDF())

	out, err := execute(t, "import", "https://arxiv.org/abs/2101.00001", "--tag", "graphs")
	require.NoError(t, err)
	assert.Contains(t, out, "Graph Networks at Scale")

	_, err = os.Stat(filepath.Join(dirs.pdfs, "2101.00001.pdf"))
	require.NoError(t, err)

	s, err := store.Open(dirs.entries)
	require.NoError(t, err)
	papers, err := s.All(context.Background())
	require.NoError(t, err)
	require.Len(t, papers, 1)
	p := papers[0]
	assert.Equal(t, "Graph Networks at Scale", p.Title)
	assert.Equal(t, 2021, p.Year)
	assert.Equal(t, "2101.00001.pdf", p.DocName)
	assert.Equal(t, "arXiv", p.Journal)
	assert.Equal(t, []string{"graphs"}, p.TagLabels())
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, p.AuthorNames())
	assert.Contains(t, p.Bibtex, "eprint={2101.00001}")
}

func TestImportWithoutPDF(t *testing.T) {
	dirs := newTestDirs(t)
	stubArxiv(t, nil)

	_, err := execute(t, "import", "2101.00001", "--no-pdf")
	require.NoError(t, err)

	entries, err := os.ReadDir(dirs.pdfs)
	require.NoError(t, err)
	assert.Empty(t, entries)

	s, err := store.Open(dirs.entries)
	require.NoError(t, err)
	papers, err := s.All(context.Background())
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Empty(t, papers[0].DocName)
}

func TestImportRejectsUnreadablePDF(t *testing.T) {
	dirs := newTestDirs(t)
	stubArxiv(t, []byte("<html>rate limited</html>"))

	_, err := execute(t, "import", "2101.00001")
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dirs.pdfs, "2101.00001.pdf"))
	assert.True(t, os.IsNotExist(statErr))

	s, err := store.Open(dirs.entries)
	require.NoError(t, err)
	papers, err := s.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, papers)
}
