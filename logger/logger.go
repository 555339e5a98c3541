package logger

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sandwichcheck/config"
)

const MaxLogSize = 50 * 1024 * 1024 // 50 MB

var (
	// SolLogger covers ledger, price and HTTP collaborators, DetectLogger the detection pipeline
	SolLogger, DetectLogger, GlobalLogger *slog.Logger

	mu             sync.Mutex
	consoleEnabled = true
	discard        bool
	level          = new(slog.LevelVar)

	globalRW, solRW, detectRW *rotatingWriter
)

// Thread-safe writer that starts a fresh file once the current one would exceed maxSize.
type rotatingWriter struct {
	mu      sync.Mutex
	file    *os.File
	dir     string
	prefix  string // e.g. "sandwichcheck_20250925_101122_global"
	ext     string
	size    int64
	maxSize int64
}

func newRotatingWriter(dir, prefix string, maxSize int64) (*rotatingWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	rw := &rotatingWriter{
		dir:     dir,
		prefix:  prefix,
		ext:     ".log",
		maxSize: maxSize,
	}
	if err := rw.rotateNew(); err != nil {
		return nil, err
	}
	return rw, nil
}

func (w *rotatingWriter) currentName() string {
	return filepath.Join(w.dir, w.prefix+w.ext)
}

func (w *rotatingWriter) rotateNew() error {
	if w.file != nil {
		_ = w.file.Close()
	}

	f, err := os.OpenFile(w.currentName(), os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0o666)
	if err != nil {
		return err
	}
	w.file = f
	w.size = 0
	return nil
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size+int64(len(p)) > w.maxSize {
		if err := w.rotateNew(); err != nil {
			return 0, err
		}
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *rotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

// SetConsoleEnabled toggles the stderr copy of every logger.
func SetConsoleEnabled(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	consoleEnabled = enabled
	resetLoggers()
}

// SetLevel changes the minimum level of every logger, including ones already handed out.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// ParseLevel maps "debug", "info", "warn" and "error" to a level, defaulting to info.
func ParseLevel(name string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// InitLogs opens the global, sol and detect log files of a command under config.LogPath.
// Until it runs, every logger writes to stderr only.
func InitLogs(cmdName string) {
	if err := InitLogsIn(config.LogPath, cmdName); err != nil {
		log.Fatal(err)
	}
}

func InitLogsIn(dir, cmdName string) error {
	mu.Lock()
	defer mu.Unlock()
	if discard {
		return nil
	}
	closeWriters()

	ts := time.Now().Format("20060102150405")
	writers := make([]*rotatingWriter, 0, 3)
	for _, name := range []string{"global", "sol", "detect"} {
		rw, err := newRotatingWriter(dir, fmt.Sprintf("sandwichcheck_%s_%s_%s", ts, cmdName, name), MaxLogSize)
		if err != nil {
			for _, w := range writers {
				_ = w.Close()
			}
			return fmt.Errorf("open %s log: %w", name, err)
		}
		writers = append(writers, rw)
	}
	globalRW, solRW, detectRW = writers[0], writers[1], writers[2]
	resetLoggers()
	return nil
}

// Discard silences every logger and keeps later InitLogs calls from opening files.
// Package tests call it from init.
func Discard() {
	mu.Lock()
	defer mu.Unlock()
	discard = true
	closeWriters()
	resetLoggers()
}

func init() {
	resetLoggers()
}

func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	closeWriters()
}

func closeWriters() {
	for _, rw := range []*rotatingWriter{globalRW, solRW, detectRW} {
		if rw != nil {
			_ = rw.Close()
		}
	}
	globalRW, solRW, detectRW = nil, nil, nil
}

func newHandler(fileWriter io.Writer) slog.Handler {
	var w io.Writer
	switch {
	case discard:
		w = io.Discard
	case fileWriter == nil && consoleEnabled:
		w = os.Stderr
	case fileWriter == nil:
		w = io.Discard
	case consoleEnabled:
		w = io.MultiWriter(os.Stderr, fileWriter)
	default:
		w = fileWriter
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	})
}

// resetLoggers rebuilds the loggers. A logger without a file falls back to the global one.
func resetLoggers() {
	GlobalLogger = slog.New(newHandler(writerOrNil(globalRW)))
	SolLogger, DetectLogger = GlobalLogger, GlobalLogger
	if solRW != nil {
		SolLogger = slog.New(newHandler(solRW))
	}
	if detectRW != nil {
		DetectLogger = slog.New(newHandler(detectRW))
	}
}

// writerOrNil keeps a nil *rotatingWriter from becoming a non-nil io.Writer.
func writerOrNil(rw *rotatingWriter) io.Writer {
	if rw == nil {
		return nil
	}
	return rw
}
