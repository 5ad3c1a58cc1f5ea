package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestPageLayoutUpdate(t *testing.T) {
	cases := []struct {
		name          string
		width         int
		height        int
		explorerWidth int
		contentWidth  int
		titlesHeight  int
		tagsHeight    int
		titleHeight   int
		description   int
	}{
		{name: "narrow", width: 80, height: 24, explorerWidth: 24, contentWidth: 56, titlesHeight: 16, tagsHeight: 3, titleHeight: 3, description: 13},
		{name: "wide", width: 200, height: 41, explorerWidth: 60, contentWidth: 140, titlesHeight: 30, tagsHeight: 6, titleHeight: 7, description: 22},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			layout := newPageLayout()
			layout.Update(tc.width, tc.height)
			if layout.explorerWidth != tc.explorerWidth || layout.contentWidth != tc.contentWidth {
				t.Fatalf("column widths mismatch: got %d/%d want %d/%d", layout.explorerWidth, layout.contentWidth, tc.explorerWidth, tc.contentWidth)
			}
			if layout.titlesHeight != tc.titlesHeight {
				t.Fatalf("titles height mismatch: got %d want %d", layout.titlesHeight, tc.titlesHeight)
			}
			if layout.tagsHeight != tc.tagsHeight {
				t.Fatalf("tags height mismatch: got %d want %d", layout.tagsHeight, tc.tagsHeight)
			}
			if layout.titleHeight != tc.titleHeight || layout.authorsHeight != tc.titleHeight {
				t.Fatalf("title/authors height mismatch: got %d/%d want %d", layout.titleHeight, layout.authorsHeight, tc.titleHeight)
			}
			if layout.descriptionHeight != tc.description {
				t.Fatalf("description height mismatch: got %d want %d", layout.descriptionHeight, tc.description)
			}
		})
	}
}

func TestCapacity(t *testing.T) {
	cases := []struct {
		rows int
		want int
	}{
		{rows: 40, want: 27},
		{rows: 24, want: 14},
		{rows: 61, want: 45},
		{rows: 8, want: fallbackCapacity},
		{rows: 0, want: fallbackCapacity},
	}
	for _, tc := range cases {
		if got := Capacity(tc.rows); got != tc.want {
			t.Fatalf("Capacity(%d) = %d, want %d", tc.rows, got, tc.want)
		}
	}
}

func TestBoxFillsExactSize(t *testing.T) {
	out := box("Titles", "first\na line that is far too long for the box", 20, 5, lipgloss.NoColor{}, lipgloss.NewStyle())
	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), out)
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 20 {
			t.Fatalf("line %d has width %d: %q", i, w, line)
		}
	}
	if !strings.Contains(lines[0], "Titles") {
		t.Fatalf("title missing from top border: %q", lines[0])
	}
	if !strings.Contains(lines[1], "first") {
		t.Fatalf("body missing: %q", lines[1])
	}
}

func TestBoxTooSmall(t *testing.T) {
	if out := box("x", "body", 1, 1, lipgloss.NoColor{}, lipgloss.NewStyle()); out != "" {
		t.Fatalf("expected empty box, got %q", out)
	}
}
