package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/dumpling/internal/paper"
	"github.com/csheth/dumpling/internal/session"
)

// frame is everything one render needs. It is built fresh for every View call
// so renderFrame stays a pure function of its input.
type frame struct {
	layout pageLayout
	theme  theme

	papers   []paper.Paper
	position int
	total    int
	cursor   int
	mode     session.Mode
	answer   string
	caret    int
	notice   notice
	hints    []keyHint
	showHelp bool
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}
	return renderFrame(m.frame())
}

func (m *model) frame() frame {
	f := frame{
		layout:   m.layout,
		theme:    m.theme,
		papers:   m.loader.Papers(),
		total:    m.loader.IndexLen(),
		cursor:   m.session.Cursor,
		mode:     m.session.Mode,
		answer:   m.session.Dialog.Value(),
		caret:    m.session.Dialog.Cursor(),
		notice:   m.notice,
		hints:    m.keys.hints(),
		showHelp: m.helpVisible,
	}
	if positions := m.loader.Positions(); f.cursor >= 0 && f.cursor < len(positions) {
		f.position = positions[f.cursor] + 1
	}
	return f
}

func renderFrame(f frame) string {
	var body string
	switch {
	case f.mode == session.ConfirmingDelete:
		body = overlay(f.layout, dialogView(f))
	case f.showHelp:
		body = overlay(f.layout, keyLegendView(f.hints))
	default:
		body = lipgloss.JoinHorizontal(lipgloss.Top, explorerView(f), contentView(f))
	}
	return body + "\n" + statusLine(f)
}

func explorerView(f frame) string {
	l := f.layout
	childWidth := l.explorerWidth - masterChrome
	titles := box(titlesTitle, titleLines(f, childWidth-blockChrome), childWidth, l.titlesHeight, f.theme.masterBorder, f.theme.masterTitle)
	tags := box(tagsTitle, tagLine(f, childWidth-blockChrome), childWidth, l.tagsHeight, f.theme.masterBorder, f.theme.masterTitle)
	inner := joinLines(titles, tags)
	return box(explorerTitle, pad(inner, l.explorerWidth-blockChrome, l.bodyHeight-blockChrome), l.explorerWidth, l.bodyHeight, f.theme.masterBorder, f.theme.masterTitle)
}

func titleLines(f frame, width int) string {
	if len(f.papers) == 0 {
		return helperStyle.Render("No papers found.")
	}
	lines := make([]string, 0, len(f.papers))
	for idx, p := range f.papers {
		icon, style := f.theme.fileIcon, f.theme.unselected
		if idx == f.cursor {
			icon, style = f.theme.selectionIcon, f.theme.selected
		}
		lines = append(lines, style.Render(truncate.StringWithTail(icon+p.Title, uint(max(width, 0)), "…")))
	}
	return strings.Join(lines, "\n")
}

func tagLine(f frame, width int) string {
	p, ok := selectedPaper(f)
	if !ok {
		return ""
	}
	return f.theme.tag.Render(wordwrap.String(strings.Join(p.TagLabels(), " | "), max(width, 1)))
}

func contentView(f frame) string {
	l := f.layout
	childWidth := l.contentWidth - masterChrome
	textWidth := max(childWidth-blockChrome, 1)
	border, heading := f.theme.contentBorder, f.theme.contentTitle

	var title, authors, description string
	if p, ok := selectedPaper(f); ok {
		title = centered(f.theme.title, p.Title, textWidth)
		authors = authorLines(f, p, textWidth)
		description = f.theme.description.Render(wordwrap.String(p.Description, textWidth))
	}
	inner := joinLines(
		box(titleBlockTitle, title, childWidth, l.titleHeight, border, heading),
		box(authorsTitle, authors, childWidth, l.authorsHeight, border, heading),
		box(descriptionTitle, description, childWidth, l.descriptionHeight, border, heading),
	)
	return box(contentTitle, pad(inner, l.contentWidth-blockChrome, l.bodyHeight-blockChrome), l.contentWidth, l.bodyHeight, f.theme.masterBorder, f.theme.masterTitle)
}

func authorLines(f frame, p paper.Paper, width int) string {
	lines := []string{wordwrap.String(strings.Join(p.AuthorNames(), " | "), width)}
	if p.Year != 0 {
		lines = append(lines, fmt.Sprintf("Published year: %d", p.Year))
	}
	if p.Journal != "" {
		lines = append(lines, fmt.Sprintf("Published journal: %s", p.Journal))
	}
	return f.theme.author.Render(strings.Join(lines, "\n"))
}

func centered(style lipgloss.Style, text string, width int) string {
	lines := strings.Split(wordwrap.String(text, width), "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line))
	}
	return strings.Join(lines, "\n")
}

func selectedPaper(f frame) (paper.Paper, bool) {
	if f.cursor < 0 || f.cursor >= len(f.papers) {
		return paper.Paper{}, false
	}
	return f.papers[f.cursor], true
}

func dialogView(f frame) string {
	runes := []rune(f.answer)
	caret := min(max(f.caret, 0), len(runes))
	under := " "
	after := ""
	if caret < len(runes) {
		under = string(runes[caret])
		after = string(runes[caret+1:])
	}
	input := string(runes[:caret]) + dialogCursorStyle.Render(under) + after

	target := helperStyle.Render("Nothing selected")
	if p, ok := selectedPaper(f); ok {
		target = p.Title
	}
	return dialogBoxStyle.Render(joinNonEmpty([]string{
		sectionHeaderStyle.Render(dialogTitle),
		target,
		"> " + input,
		helperStyle.Render("Enter to answer, Esc to cancel."),
	}))
}

func keyLegendView(hints []keyHint) string {
	if len(hints) == 0 {
		return ""
	}
	rows := []string{sectionHeaderStyle.Render("Keys")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := min(i+columns, len(hints))
		var cells []string
		for _, hint := range hints[i:end] {
			cell := lipgloss.JoinHorizontal(lipgloss.Left, keyStyle.Render(hint.Key), " ", keyDescStyle.Render(hint.Description))
			cells = append(cells, lipgloss.NewStyle().Width(24).Render(cell))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func overlay(l pageLayout, content string) string {
	return lipgloss.Place(l.windowWidth, l.bodyHeight, lipgloss.Center, lipgloss.Center, content)
}

func statusLine(f frame) string {
	left := statusBarStyle.Render(fmt.Sprintf("%d/%d", f.position, f.total))
	var message string
	switch {
	case f.notice.Text != "" && f.notice.IsError:
		message = errorStyle.Render(f.notice.Text)
	case f.notice.Text != "":
		message = helperStyle.Render(f.notice.Text)
	default:
		message = helperStyle.Render("? for keys")
	}
	return truncate.String(left+" "+message, uint(max(f.layout.windowWidth, 0)))
}

func joinLines(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "\n")
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}
