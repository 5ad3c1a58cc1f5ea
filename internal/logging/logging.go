// Package logging configures the process-wide logrus logger to write to
// dumpling's log file, keeping the terminal free for the interface.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05"

// Setup truncates path, points the standard logger at it and applies level.
// The returned closer must be called on exit.
func Setup(path, level string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("logging: create %s: %w", path, err)
	}
	Configure(logrus.StandardLogger(), f, level)
	return f, nil
}

// Configure applies dumpling's formatting to log. Unknown levels fall back to
// info and are reported through the logger itself.
func Configure(log *logrus.Logger, out io.Writer, level string) {
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: timestampFormat,
		DisableColors:   true,
	})
	log.SetReportCaller(true)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		log.SetLevel(logrus.InfoLevel)
		if level != "" {
			log.WithField("level", level).Warn("logging: unknown level, using info")
		}
		return
	}
	log.SetLevel(lvl)
}
