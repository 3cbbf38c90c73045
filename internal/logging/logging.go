// Package logging builds the zerolog logger shared by the CLI and the MCP
// server. Logs go to stderr and optionally to a rotating file; stdout is
// reserved for command output and the stdio transport.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/HendryAvila/storygoal/internal/config"
)

// Logger wraps the configured zerolog.Logger with the resources it owns.
type Logger struct {
	zerolog.Logger
	file io.WriteCloser
}

// Close releases the log file, if one was opened.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// New builds a logger from cfg. verbose forces debug and quiet forces
// error; otherwise cfg.Level applies. console defaults to stderr.
//
// A log file that cannot be prepared is reported through the returned
// error, but the returned logger is still usable with console output only.
func New(cfg config.LogConfig, verbose, quiet bool, console io.Writer) (*Logger, error) {
	if console == nil {
		console = selectOutput()
	}
	level := SelectLevel(cfg.Level, verbose, quiet)

	l := &Logger{}
	var writer io.Writer = console
	var fileErr error
	if cfg.File != "" {
		fw, err := newFileWriter(cfg)
		if err != nil {
			fileErr = err
		} else {
			l.file = fw
			writer = zerolog.MultiLevelWriter(console, fw)
		}
	}

	l.Logger = zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return l, fileErr
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// SelectLevel resolves the effective level. Unknown names fall back to warn.
func SelectLevel(configured string, verbose, quiet bool) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.ErrorLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(configured))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.WarnLevel
	}
	return lvl
}

// selectOutput picks a human-readable console writer for an interactive
// stderr and plain JSON otherwise.
func selectOutput() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	}
	return os.Stderr
}

func newFileWriter(cfg config.LogConfig) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}, nil
}
