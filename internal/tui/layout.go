package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"golang.org/x/term"
)

// pageLayout splits the terminal into the explorer column (30%) and the
// content column (70%). Both columns are master blocks with a border and one
// cell of padding; the explorer stacks titles (85%) over tags, the content
// column stacks title (20%), authors (20%) and description.
type pageLayout struct {
	windowWidth  int
	windowHeight int

	explorerWidth int
	contentWidth  int
	bodyHeight    int

	titlesHeight      int
	tagsHeight        int
	titleHeight       int
	authorsHeight     int
	descriptionHeight int
}

const (
	// masterChrome is the border plus padding around the blocks inside a
	// master block, on one axis.
	masterChrome = 4
	blockChrome  = 2
)

func newPageLayout() pageLayout {
	var l pageLayout
	l.Update(defaultWidth, defaultHeight)
	return l
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height

	l.explorerWidth = width * 30 / 100
	l.contentWidth = width - l.explorerWidth
	l.bodyHeight = max(height-statusHeight, 0)

	inner := max(l.bodyHeight-masterChrome, 0)
	l.titlesHeight = inner * 85 / 100
	l.tagsHeight = inner - l.titlesHeight

	l.titleHeight = inner * 20 / 100
	l.authorsHeight = inner * 20 / 100
	l.descriptionHeight = inner - l.titleHeight - l.authorsHeight
}

// titleRows is the number of explorer rows that fit inside the titles block.
func (l pageLayout) titleRows() int {
	return max(l.titlesHeight-blockChrome, 0)
}

// Capacity is the loader capacity for a terminal of the given height: the
// number of rows inside the titles block.
func Capacity(rows int) int {
	var l pageLayout
	l.Update(defaultWidth, rows)
	if n := l.titleRows(); n > 0 {
		return n
	}
	return fallbackCapacity
}

// TerminalCapacity sizes the window to the controlling terminal, falling back
// to a fixed capacity when stdout is not a terminal.
func TerminalCapacity() int {
	_, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || rows <= 0 {
		return fallbackCapacity
	}
	return Capacity(rows)
}

// box draws a rounded block of exactly width x height cells with title set
// into the top border. Body lines are clipped to fit.
func box(title, body string, width, height int, border lipgloss.TerminalColor, titleStyle lipgloss.Style) string {
	if width < blockChrome || height < blockChrome {
		return ""
	}
	b := lipgloss.RoundedBorder()
	edge := lipgloss.NewStyle().Foreground(border)
	innerWidth := width - blockChrome

	label := truncate.String(" "+title+" ", uint(max(innerWidth-1, 0)))
	fill := max(innerWidth-1-lipgloss.Width(label), 0)
	top := edge.Render(b.TopLeft+b.Top) + titleStyle.Render(label) + edge.Render(strings.Repeat(b.Top, fill)+b.TopRight)
	if innerWidth < 1 {
		top = edge.Render(b.TopLeft + b.TopRight)
	}

	lines := []string{top}
	for _, line := range fitLines(body, innerWidth, height-blockChrome) {
		lines = append(lines, edge.Render(b.Left)+line+edge.Render(b.Right))
	}
	lines = append(lines, edge.Render(b.BottomLeft+strings.Repeat(b.Bottom, innerWidth)+b.BottomRight))
	return strings.Join(lines, "\n")
}

// pad surrounds stacked blocks with a single blank cell on every side, the
// padding of a master block.
func pad(body string, width, height int) string {
	innerWidth := max(width-2, 0)
	blank := strings.Repeat(" ", width)
	lines := []string{blank}
	for _, line := range fitLines(body, innerWidth, max(height-2, 0)) {
		lines = append(lines, " "+line+" ")
	}
	return strings.Join(append(lines, blank), "\n")
}

// fitLines returns exactly height lines of exactly width cells.
func fitLines(body string, width, height int) []string {
	var src []string
	if body != "" {
		src = strings.Split(body, "\n")
	}
	out := make([]string, height)
	for i := range out {
		var line string
		if i < len(src) {
			line = truncate.String(src[i], uint(width))
		}
		if gap := width - lipgloss.Width(line); gap > 0 {
			line += strings.Repeat(" ", gap)
		}
		out[i] = line
	}
	return out
}
