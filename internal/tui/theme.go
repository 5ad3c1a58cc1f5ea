package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/dumpling/internal/config"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	dialogBoxStyle     = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(1, 2)
	dialogCursorStyle  = lipgloss.NewStyle().Reverse(true)
)

// theme carries the styles derived from the [colors] and [general] sections.
type theme struct {
	masterTitle   lipgloss.Style
	masterBorder  lipgloss.TerminalColor
	contentTitle  lipgloss.Style
	contentBorder lipgloss.TerminalColor

	selected    lipgloss.Style
	unselected  lipgloss.Style
	title       lipgloss.Style
	author      lipgloss.Style
	description lipgloss.Style
	tag         lipgloss.Style

	selectionIcon string
	fileIcon      string
}

func newTheme(cfg config.Config) theme {
	c := cfg.Colors
	return theme{
		masterTitle:   lipgloss.NewStyle().Bold(true).Foreground(c.MasterBlockTitle.Color()),
		masterBorder:  c.MasterBlockBorder.Color(),
		contentTitle:  lipgloss.NewStyle().Bold(true).Foreground(c.ContentBlockTitle.Color()),
		contentBorder: c.ContentBlockBorder.Color(),

		selected:    lipgloss.NewStyle().Bold(true).Foreground(c.ExplorerSelectedFg.Color()).Background(c.ExplorerSelectedBg.Color()),
		unselected:  lipgloss.NewStyle().Foreground(c.ExplorerUnselectedFg.Color()).Background(c.ExplorerUnselectedBg.Color()),
		title:       lipgloss.NewStyle().Bold(true).Foreground(c.TitleContent.Color()),
		author:      lipgloss.NewStyle().Foreground(c.AuthorContent.Color()),
		description: lipgloss.NewStyle().Foreground(c.DescriptionContent.Color()),
		tag:         lipgloss.NewStyle().Foreground(c.TagContent.Color()),

		selectionIcon: cfg.General.SelectionIcon,
		fileIcon:      cfg.General.FileIcon,
	}
}
