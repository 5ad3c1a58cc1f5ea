package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/dumpling/internal/config"
	"github.com/csheth/dumpling/internal/session"
)

type keyMap struct {
	Quit     key.Binding
	Next     key.Binding
	Previous key.Binding
	Bibtex   key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Open     key.Binding
	Help     key.Binding
	Abort    key.Binding
}

func newKeyMap(kb config.Keybinds) keyMap {
	bind := func(k, desc string) key.Binding {
		return key.NewBinding(key.WithKeys(k), key.WithHelp(k, desc))
	}
	return keyMap{
		Quit:     bind(kb.Quit, "Quit"),
		Next:     bind(kb.Next, "Next paper"),
		Previous: bind(kb.Previous, "Previous paper"),
		Bibtex:   bind(kb.BibtexToClipboard, "Copy bibtex"),
		Edit:     bind(kb.Edit, "Edit entry"),
		Delete:   bind(kb.Delete, "Delete entry"),
		Open:     bind(kb.OpenInPDFViewer, "Open PDF"),
		Help:     bind("?", "Toggle help"),
		Abort:    key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// action resolves a browsing key. Bindings are checked in a fixed order so a
// key bound twice resolves to the first match.
func (k keyMap) action(msg tea.KeyMsg) session.Action {
	switch {
	case key.Matches(msg, k.Quit):
		return session.ActionQuit
	case key.Matches(msg, k.Next):
		return session.ActionNext
	case key.Matches(msg, k.Previous):
		return session.ActionPrevious
	case key.Matches(msg, k.Bibtex):
		return session.ActionCopyBibtex
	case key.Matches(msg, k.Edit):
		return session.ActionEdit
	case key.Matches(msg, k.Delete):
		return session.ActionDelete
	case key.Matches(msg, k.Open):
		return session.ActionOpenViewer
	default:
		return session.ActionNone
	}
}

func (k keyMap) hints() []keyHint {
	bindings := []key.Binding{k.Next, k.Previous, k.Bibtex, k.Edit, k.Open, k.Delete, k.Quit, k.Help}
	hints := make([]keyHint, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		hints = append(hints, keyHint{Key: h.Key, Description: h.Desc})
	}
	return hints
}

// dialogEvents translates a key pressed while the confirmation dialog is open.
// Pasted text arrives as several runes and becomes one insert per rune.
func dialogEvents(msg tea.KeyMsg) []session.Event {
	switch msg.Type {
	case tea.KeyRunes:
		events := make([]session.Event, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			events = append(events, session.Event{Key: session.DialogInsert, Rune: r})
		}
		return events
	case tea.KeySpace:
		return []session.Event{{Key: session.DialogInsert, Rune: ' '}}
	case tea.KeyBackspace, tea.KeyCtrlH:
		return []session.Event{{Key: session.DialogBackspace}}
	case tea.KeyLeft:
		return []session.Event{{Key: session.DialogLeft}}
	case tea.KeyRight:
		return []session.Event{{Key: session.DialogRight}}
	case tea.KeyEnter:
		return []session.Event{{Key: session.DialogSubmit}}
	case tea.KeyEsc:
		return []session.Event{{Key: session.DialogCancel}}
	default:
		return nil
	}
}
