package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFilePath is the path to the engine log file, relative to the working directory (project root when run via go run ./cmd/lodviewer).
const LogFilePath = "logs/lod.txt"

// maxLines bounds the in-memory copy shown by the HUD.
const maxLines = 512

// Logger is a zap logger that also keeps the most recent formatted lines in memory
// so they can be drawn on screen. Lines go to LogFilePath as well when created with New.
type Logger struct {
	mu      sync.Mutex
	lines   []string
	z       *zap.Logger
	closeFn func()
}

// New returns a Logger writing to LogFilePath and memory, creating the logs directory.
// If the file cannot be opened, only the in-memory sink is used.
func New(level zapcore.Level) *Logger {
	l := &Logger{}
	sinks := []zapcore.WriteSyncer{zapcore.AddSync(memorySink{l})}
	_ = os.MkdirAll(filepath.Dir(LogFilePath), 0755)
	if ws, closeFn, err := zap.Open(LogFilePath); err == nil {
		sinks = append(sinks, ws)
		l.closeFn = closeFn
	}
	l.z = zap.New(zapcore.NewCore(encoder(), zapcore.NewMultiWriteSyncer(sinks...), level))
	return l
}

// NewInMemory returns a Logger that only keeps lines in memory. Used by tests and headless runs.
func NewInMemory(level zapcore.Level) *Logger {
	l := &Logger{}
	l.z = zap.New(zapcore.NewCore(encoder(), zapcore.AddSync(memorySink{l}), level))
	return l
}

func encoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.CallerKey = ""
	cfg.StacktraceKey = ""
	return zapcore.NewConsoleEncoder(cfg)
}

// Zap returns the underlying zap logger for subsystems that take one.
func (l *Logger) Zap() *zap.Logger {
	return l.z
}

// Log records a plain info line (e.g. a command echo).
func (l *Logger) Log(line string) {
	l.z.Info(line)
}

// Writer returns an io.Writer that logs each non-empty line written to it.
// Command output is routed through it so it shows up in the terminal history.
func (l *Logger) Writer() io.Writer {
	return lineWriter{l}
}

type lineWriter struct{ l *Logger }

func (w lineWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			w.l.Log(line)
		}
	}
	return len(p), nil
}

// Lines returns a copy of the stored lines, oldest first.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	err := l.z.Sync()
	if l.closeFn != nil {
		l.closeFn()
		l.closeFn = nil
	}
	return err
}

func (l *Logger) append(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
	if len(l.lines) > maxLines {
		l.lines = append(l.lines[:0], l.lines[len(l.lines)-maxLines:]...)
	}
}

// memorySink receives encoded entries from zap, one entry per Write.
type memorySink struct{ l *Logger }

func (s memorySink) Write(p []byte) (int, error) {
	s.l.append(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func (s memorySink) Sync() error { return nil }
