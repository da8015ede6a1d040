// Package logging is ytsub's leveled logger. Every line goes to the debug log
// file regardless of level; the console only shows lines at or above the
// configured level. The debug log is the diagnostic artifact kept after a
// failed run and deleted after a clean one.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/ytsub/internal/config"
	"github.com/backmassage/ytsub/internal/term"
)

// Console severities, most verbose first.
const (
	sevDebug = iota
	sevVerbose
	sevInfo
	sevWarn
	sevError
)

// Options configures [NewLogger]. Zero values pick the process defaults.
type Options struct {
	Level    config.LogLevel  // Default: info.
	Color    config.ColorMode // Default: auto.
	DebugDir string           // Directory of the debug log file. Default: os.TempDir().
	Stdout   io.Writer        // Default: os.Stdout.
	Stderr   io.Writer        // Default: os.Stderr.
}

// Logger provides leveled, optionally colored logging with a debug file sink.
type Logger struct {
	mu        sync.Mutex
	threshold int
	stdout    io.Writer
	stderr    io.Writer
	file      *os.File
	filePath  string
}

// NewLogger creates the debug log file and configures colors. The file exists
// from this point until [Logger.Cleanup] removes it.
func NewLogger(opts Options) (*Logger, error) {
	if opts.Level == "" {
		opts.Level = config.LogInfo
	}
	if opts.Color == "" {
		opts.Color = config.ColorAuto
	}
	if opts.DebugDir == "" {
		opts.DebugDir = os.TempDir()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	term.Configure(opts.Color)

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.DebugDir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(opts.DebugDir, "ytsub."+id.String()+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	return &Logger{
		threshold: threshold(opts.Level),
		stdout:    opts.Stdout,
		stderr:    opts.Stderr,
		file:      f,
		filePath:  path,
	}, nil
}

func threshold(level config.LogLevel) int {
	switch level {
	case config.LogQuiet:
		return sevWarn
	case config.LogVerbose:
		return sevVerbose
	case config.LogDebug:
		return sevDebug
	default:
		return sevInfo
	}
}

// SetLevel changes console verbosity. The debug file is unaffected.
func (l *Logger) SetLevel(level config.LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.threshold = threshold(level)
}

// DebugLogPath returns the path of the debug log file.
func (l *Logger) DebugLogPath() string { return l.filePath }

// Cleanup closes the debug log file and, when deleteDebugFile is set,
// removes it. Safe to call more than once.
func (l *Logger) Cleanup(deleteDebugFile bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var err error
	if l.file != nil {
		err = l.file.Close()
		l.file = nil
	}
	if deleteDebugFile && l.filePath != "" {
		if rmErr := os.Remove(l.filePath); rmErr != nil && !os.IsNotExist(rmErr) {
			return rmErr
		}
	}
	return err
}

func (l *Logger) line(sev int, level, color, text string) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	l.mu.Lock()
	defer l.mu.Unlock()
	plain := ts + " [" + level + "] " + text + "\n"
	if l.file != nil {
		_, _ = io.WriteString(l.file, plain)
	}
	if sev < l.threshold {
		return
	}
	out := l.stdout
	if sev >= sevWarn {
		out = l.stderr
	}
	if color != "" {
		_, _ = io.WriteString(out, ts+" "+color+"["+level+"]"+term.NC+" "+text+"\n")
	} else {
		_, _ = io.WriteString(out, plain)
	}
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...any) {
	l.line(sevInfo, "INFO", term.Blue, fmt.Sprintf(format, args...))
}

// Success logs at INFO severity with a SUCCESS tag (green).
func (l *Logger) Success(format string, args ...any) {
	l.line(sevInfo, "SUCCESS", term.Green, fmt.Sprintf(format, args...))
}

// Warn logs at WARN level (yellow), to stderr.
func (l *Logger) Warn(format string, args ...any) {
	l.line(sevWarn, "WARN", term.Yellow, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (red), to stderr.
func (l *Logger) Error(format string, args ...any) {
	l.line(sevError, "ERROR", term.Red, fmt.Sprintf(format, args...))
}

// Verbose logs at VERBOSE level (cyan).
func (l *Logger) Verbose(format string, args ...any) {
	l.line(sevVerbose, "VERBOSE", term.Cyan, fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level (gray).
func (l *Logger) Debug(format string, args ...any) {
	l.line(sevDebug, "DEBUG", term.Gray, fmt.Sprintf(format, args...))
}

// Exception logs the message and err at ERROR, then the full %+v detail of
// err (cause chain and stack) line by line at DEBUG.
func (l *Logger) Exception(err error, format string, args ...any) {
	l.Error("%s %v", fmt.Sprintf(format, args...), err)
	for _, s := range strings.Split(strings.TrimRight(fmt.Sprintf("%+v", err), "\n"), "\n") {
		l.Debug("%s", s)
	}
}
