package tui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/csheth/dumpling/internal/config"
	"github.com/csheth/dumpling/internal/loader"
	"github.com/csheth/dumpling/internal/session"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Loader   *loader.Loader
	Commands session.Commands
	Settings config.Config
	Log      logrus.FieldLogger
}

type model struct {
	config  Config
	loader  *loader.Loader
	session *session.Session
	keys    keyMap
	theme   theme
	layout  pageLayout
	log     logrus.FieldLogger

	notice      notice
	helpVisible bool
	quitting    bool
	err         error
	now         func() time.Time
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	log := config.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	l := config.Loader
	if l == nil {
		l = loader.New(0, nil, nil)
	}
	return &model{
		config:  config,
		loader:  l,
		session: session.New(),
		keys:    newKeyMap(config.Settings.Keybinds),
		theme:   newTheme(config.Settings),
		layout:  newPageLayout(),
		log:     log,
		now:     time.Now,
	}
}

// Run starts the program and blocks until it quits. A corrupt entry met while
// scrolling is returned as the error.
func Run(config Config, opts ...tea.ProgramOption) error {
	final, err := tea.NewProgram(New(config), opts...).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(*model); ok {
		return m.Err()
	}
	return nil
}

// Err is the error that ended the program, if any.
func (m *model) Err() error {
	return m.err
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *model) Init() tea.Cmd {
	return tick()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.notice.expired(time.Time(msg)) {
			m.notice = notice{}
		}
		return m, tick()
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Abort) {
		return m.quit()
	}
	if m.session.Mode == session.ConfirmingDelete {
		for _, ev := range dialogEvents(msg) {
			m.apply(ev)
		}
		return m, nil
	}

	action := m.keys.action(msg)
	if action == session.ActionNone {
		if msg.String() == "?" {
			m.helpVisible = !m.helpVisible
		} else if msg.Type == tea.KeyEsc {
			m.helpVisible = false
		}
		return m, nil
	}
	m.helpVisible = false
	if quit := m.apply(session.Event{Action: action}); quit {
		return m.quit()
	}
	return m, nil
}

// apply runs one event through the session and records the outcome. It
// reports whether the program should stop.
func (m *model) apply(ev session.Event) bool {
	res, err := m.session.Handle(m.loader, m.config.Commands, ev)
	if err != nil {
		var corrupt *loader.CorruptEntryError
		if errors.As(err, &corrupt) {
			m.log.WithError(err).WithField("path", corrupt.Path).Error("tui: stopping on corrupt entry")
		}
		m.err = err
		return true
	}
	if res.Failure != nil {
		m.log.WithError(res.Failure).WithField("cursor", m.session.Cursor).Warn("tui: " + res.Notice)
		m.setNotice(res.Notice, true)
	} else if res.Notice != "" {
		m.setNotice(res.Notice, false)
	}
	return res.Quit
}

func (m *model) setNotice(text string, isError bool) {
	m.notice = notice{Text: text, IsError: isError, At: m.now()}
}

func (m *model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}
