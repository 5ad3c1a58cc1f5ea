// Package session holds the browsing cursor and the delete confirmation state
// machine that sits between key input and the loader.
package session

import (
	"errors"
	"strings"

	"github.com/csheth/dumpling/internal/loader"
)

// ConfirmToken is the answer that confirms a deletion.
const ConfirmToken = "y"

// Mode is the state of the session.
type Mode int

const (
	Browsing Mode = iota
	ConfirmingDelete
)

func (m Mode) String() string {
	switch m {
	case Browsing:
		return "browsing"
	case ConfirmingDelete:
		return "confirming-delete"
	default:
		return "unknown"
	}
}

// Action is a browsing command resolved from a key binding.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionNext
	ActionPrevious
	ActionCopyBibtex
	ActionEdit
	ActionDelete
	ActionOpenViewer
)

// DialogKey is an editing key routed to the confirmation dialog.
type DialogKey int

const (
	DialogNone DialogKey = iota
	DialogInsert
	DialogBackspace
	DialogLeft
	DialogRight
	DialogSubmit
	DialogCancel
)

// Event is one key press translated for the session. Action is used while
// browsing; Key and Rune while confirming.
type Event struct {
	Action Action
	Key    DialogKey
	Rune   rune
}

// Window is the part of the loader the session drives.
type Window interface {
	Len() int
	ScrollForward(cursor int) (int, error)
	ScrollBackward(cursor int) (int, error)
	CopyBibtex(cursor int) error
	Remove(cursor int) error
	OpenInEditor(cursor int, command string) error
	OpenInViewer(cursor int, command, baseDir string) error
}

var _ Window = (*loader.Loader)(nil)

// Commands are the resolved external programs the session may start.
type Commands struct {
	Editor string
	Viewer string
	PDFDir string
}

// Result reports what happened while handling an event. Failure carries a
// non-fatal error meant for the status line.
type Result struct {
	Quit    bool
	Notice  string
	Failure error
}

// Session is the browsing cursor plus the confirmation dialog state.
type Session struct {
	Mode   Mode
	Cursor int
	Dialog Dialog

	target int
}

// New returns a session in Browsing mode with the cursor at the top.
func New() *Session {
	return &Session{Mode: Browsing}
}

// Target is the cursor captured when the confirmation dialog opened.
func (s *Session) Target() int { return s.target }

// Handle applies ev. The returned error is non-nil only when the window hit a
// corrupt entry; the session must not continue in that case.
func (s *Session) Handle(w Window, cmds Commands, ev Event) (Result, error) {
	if s.Mode == ConfirmingDelete {
		return s.handleDialog(w, ev), nil
	}
	return s.handleBrowsing(w, cmds, ev)
}

func (s *Session) handleBrowsing(w Window, cmds Commands, ev Event) (Result, error) {
	switch ev.Action {
	case ActionQuit:
		return Result{Quit: true}, nil
	case ActionNext:
		cursor, err := w.ScrollForward(s.Cursor)
		if err != nil {
			return Result{Quit: true}, err
		}
		s.Cursor = cursor
	case ActionPrevious:
		cursor, err := w.ScrollBackward(s.Cursor)
		if err != nil {
			return Result{Quit: true}, err
		}
		s.Cursor = cursor
	case ActionCopyBibtex:
		if err := w.CopyBibtex(s.Cursor); err != nil {
			return failure("Bibtex not copied", err), nil
		}
		return Result{Notice: "Bibtex copied"}, nil
	case ActionEdit:
		if err := w.OpenInEditor(s.Cursor, cmds.Editor); err != nil {
			return failure("Editor not opened", err), nil
		}
		return Result{Notice: "Opened in editor"}, nil
	case ActionOpenViewer:
		if err := w.OpenInViewer(s.Cursor, cmds.Viewer, cmds.PDFDir); err != nil {
			return failure("PDF not opened", err), nil
		}
		return Result{Notice: "Opened PDF"}, nil
	case ActionDelete:
		s.Mode = ConfirmingDelete
		s.target = s.Cursor
		s.Dialog.Reset()
	}
	return Result{}, nil
}

func (s *Session) handleDialog(w Window, ev Event) Result {
	switch ev.Key {
	case DialogInsert:
		s.Dialog.Insert(ev.Rune)
	case DialogBackspace:
		s.Dialog.Backspace()
	case DialogLeft:
		s.Dialog.Left()
	case DialogRight:
		s.Dialog.Right()
	case DialogCancel:
		s.Dialog.Reset()
		s.Mode = Browsing
	case DialogSubmit:
		if s.Dialog.Value() == "" {
			return Result{}
		}
		answer := s.Dialog.Submit()
		s.Mode = Browsing
		if strings.TrimSpace(answer) != ConfirmToken {
			return Result{Notice: "Kept entry"}
		}
		if err := w.Remove(s.target); err != nil {
			return failure("Entry not removed", err)
		}
		s.Cursor = clampCursor(s.Cursor, w.Len())
		return Result{Notice: "Removed entry"}
	}
	return Result{}
}

func failure(notice string, err error) Result {
	if errors.Is(err, loader.ErrNoSelection) {
		notice = "Nothing selected"
	}
	return Result{Notice: notice, Failure: err}
}

func clampCursor(cursor, length int) int {
	if length == 0 || cursor < 0 {
		return 0
	}
	if cursor >= length {
		return length - 1
	}
	return cursor
}
