package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
)

const (
	LevelTrace = slog.LevelDebug - 4
	// LevelNone is above every level the code logs at, so only errors from
	// a misconfigured handler get through.
	LevelNone = slog.LevelError + 4
)

// ParseLevel maps a -log-level value to a slog level. Unknown values mean none.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return LevelNone
	}
}

// FileWriter appends to a log file and reopens it on SIGHUP so the file can be rotated:
//
//	mv lang417.log lang417.bak && kill -HUP <pid>
type FileWriter struct {
	path string
	mu   sync.Mutex
	fh   *os.File
	sigs chan os.Signal
}

func OpenFile(path string) (*FileWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory for '%s': %w", path, err)
	}
	fh, err := openAppend(path)
	if err != nil {
		return nil, err
	}
	w := &FileWriter{path: path, fh: fh, sigs: make(chan os.Signal, 1)}

	signal.Notify(w.sigs, syscall.SIGHUP)
	go func() {
		for range w.sigs {
			if err := w.Reopen(); err != nil {
				fmt.Fprintf(os.Stderr, "could not reopen log file: %v\n", err)
			}
		}
	}()
	return w, nil
}

func openAppend(path string) (*os.File, error) {
	fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file '%s': %w", path, err)
	}
	return fh, nil
}

func (w *FileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fh == nil {
		return 0, os.ErrClosed
	}
	return w.fh.Write(p)
}

func (w *FileWriter) Reopen() error {
	fh, err := openAppend(w.path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fh != nil {
		w.fh.Close()
	}
	w.fh = fh
	return nil
}

func (w *FileWriter) Close() error {
	signal.Stop(w.sigs)
	close(w.sigs)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fh == nil {
		return nil
	}
	err := w.fh.Close()
	w.fh = nil
	return err
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup installs a JSON slog handler as the default logger. Output goes to logFile
// when set, falling back to stderr if it cannot be opened.
func Setup(level, logFile string) io.Closer {
	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if logFile != "" {
		fw, err := OpenFile(logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v; falling back to stderr\n", err)
		} else {
			out, closer = fw, fw
		}
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		AddSource: false,
		Level:     ParseLevel(level),
	})
	slog.SetDefault(slog.New(handler))
	return closer
}
