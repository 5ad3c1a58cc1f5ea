// Package listing produces the plain-text reports printed outside the
// interactive browser.
package listing

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/ledongthuc/pdf"

	"github.com/csheth/dumpling/internal/paper"
)

// TagCount is how often a tag label occurs across entries.
type TagCount struct {
	Label string
	Count int
}

// CountTags tallies every tag label, most frequent first and alphabetical
// among equals.
func CountTags(papers []paper.Paper) []TagCount {
	counts := map[string]int{}
	for _, p := range papers {
		for _, label := range p.TagLabels() {
			counts[label]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, TagCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// PrintTags writes the tag table to w.
func PrintTags(w io.Writer, counts []TagCount) {
	if len(counts) == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprintln(w, "No tags found.")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("Tag"), bold("Papers"))
	for _, c := range counts {
		tbl.AddRow(c.Label, c.Count)
	}
	_, _ = fmt.Fprintln(w, tbl)
}

// PDFReport is the result of cross-checking entries against the PDF directory.
type PDFReport struct {
	Dir string
	// Missing PDFs are named by an entry but absent from Dir.
	Missing []string
	// Unused PDFs are in Dir but no entry names them.
	Unused []string
	// Unreadable PDFs are named by an entry and present but fail to parse.
	Unreadable []string
}

// Healthy reports whether the diagnostic found nothing to fix.
func (r PDFReport) Healthy() bool {
	return len(r.Missing) == 0 && len(r.Unused) == 0 && len(r.Unreadable) == 0
}

// DiagnosePDFs compares the document names of papers with the PDFs stored in
// dir. Entries without a document name are ignored.
func DiagnosePDFs(papers []paper.Paper, dir string) (PDFReport, error) {
	report := PDFReport{Dir: dir}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return report, fmt.Errorf("listing: read pdf dir %s: %w", dir, err)
	}

	referenced := map[string]bool{}
	for _, p := range papers {
		name := strings.TrimSpace(p.DocName)
		if name == "" || referenced[name] {
			continue
		}
		referenced[name] = true
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			report.Missing = append(report.Missing, path)
			continue
		}
		if err := CheckPDF(path); err != nil {
			report.Unreadable = append(report.Unreadable, path)
		}
	}

	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		if !referenced[e.Name()] {
			report.Unused = append(report.Unused, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(report.Missing)
	sort.Strings(report.Unused)
	sort.Strings(report.Unreadable)
	return report, nil
}

// CheckPDF reports whether path parses as a PDF with at least one page.
func CheckPDF(path string) (err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listing: parse %s: %v", path, r)
		}
	}()
	f, reader, err := pdf.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if reader.NumPage() == 0 {
		return fmt.Errorf("listing: %s has no pages", path)
	}
	return nil
}

// PrintPDFReport writes the diagnostic to w.
func PrintPDFReport(w io.Writer, r PDFReport) {
	section(w, "Referenced PDFs that do not exist", r.Missing, "No missing PDFs.")
	section(w, "PDFs without a paper entry", r.Unused, "All PDFs are used.")
	section(w, "PDFs that cannot be read", r.Unreadable, "All referenced PDFs open.")
}

func section(w io.Writer, title string, paths []string, empty string) {
	_, _ = fmt.Fprintln(w, bold(title))
	if len(paths) == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprintln(w, "  "+empty)
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.Wrap = true
	for _, p := range paths {
		tbl.AddRow("", color.YellowString(p))
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func bold(s string) string {
	return color.New(color.Bold, color.Underline).Sprint(s)
}
