// Package desktop wraps the few host capabilities dumpling relies on: the
// system clipboard, desktop notifications and spawning detached programs.
package desktop

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/mitchellh/go-homedir"
)

// ErrEmptyCommand is returned when asked to launch a blank command line.
var ErrEmptyCommand = errors.New("desktop: empty command")

// Clipboard sets the clipboard contents.
type Clipboard interface {
	WriteText(text string) error
}

// Launcher starts an external program without waiting for it to exit.
type Launcher interface {
	Start(name string, args ...string) error
}

// SystemClipboard writes through the platform clipboard utilities and falls
// back to an OSC 52 escape sequence when none are installed.
type SystemClipboard struct {
	// Terminal receives the OSC 52 sequence. Defaults to os.Stderr.
	Terminal io.Writer
	// Notify, when set, is shown as a desktop notification after a copy.
	Notify string
	// Launcher starts the notifier. Defaults to ExecLauncher.
	Launcher Launcher
}

// WriteText implements Clipboard.
func (c SystemClipboard) WriteText(text string) error {
	if clipboard.Unsupported {
		if err := c.writeOSC52(text); err != nil {
			return err
		}
	} else if err := clipboard.WriteAll(text); err != nil {
		if oscErr := c.writeOSC52(text); oscErr != nil {
			return fmt.Errorf("desktop: clipboard: %w", err)
		}
	}
	if c.Notify != "" {
		// Best effort; a missing notify-send must not fail the copy.
		_ = c.launcher().Start("notify-send", c.Notify)
	}
	return nil
}

func (c SystemClipboard) writeOSC52(text string) error {
	out := c.Terminal
	if out == nil {
		out = os.Stderr
	}
	if _, err := osc52.New(text).WriteTo(out); err != nil {
		return fmt.Errorf("desktop: osc52: %w", err)
	}
	return nil
}

func (c SystemClipboard) launcher() Launcher {
	if c.Launcher != nil {
		return c.Launcher
	}
	return ExecLauncher{}
}

// ExecLauncher starts programs with os/exec, detached from the terminal's
// standard streams.
type ExecLauncher struct{}

// Start implements Launcher.
func (ExecLauncher) Start(name string, args ...string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyCommand
	}
	cmd := exec.Command(name, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("desktop: start %s: %w", name, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// SplitCommand breaks a configured command line into a program and its
// arguments on whitespace.
func SplitCommand(command string) (string, []string, error) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return "", nil, ErrEmptyCommand
	}
	return parts[0], parts[1:], nil
}

// ExpandPath resolves a leading "~" or "$HOME" to the user's home directory.
// Other paths are returned unchanged.
func ExpandPath(path string) (string, error) {
	switch {
	case path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, "~"+string(filepath.Separator)):
		return homedir.Expand(path)
	case path == "$HOME" || strings.HasPrefix(path, "$HOME/") || strings.HasPrefix(path, "$HOME"+string(filepath.Separator)):
		home, err := homedir.Dir()
		if err != nil {
			return "", fmt.Errorf("desktop: expand %s: %w", path, err)
		}
		rest := strings.TrimLeft(strings.TrimPrefix(path, "$HOME"), "/"+string(filepath.Separator))
		return filepath.Join(home, rest), nil
	default:
		return path, nil
	}
}
