// Package logging builds the process slog.Logger, optionally writing to a
// size-rotated file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Options configures New.
type Options struct {
	Level     string
	FilePath  string
	MaxSizeMB int
	MaxFiles  int
	// Stderr receives logs when FilePath is empty (default: os.Stderr).
	Stderr io.Writer
}

// ParseLevel converts a config log level to a slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a text logger. The returned closer releases the log file, if any.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	if opts.FilePath == "" {
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nopCloser{}, nil
	}

	f, err := OpenRotatingFile(opts.FilePath, opts.MaxSizeMB, opts.MaxFiles)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewTextHandler(f, handlerOpts)), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// RotatingFile is an append-only log file rotated by size.
// path -> path.1 -> path.2 ... up to MaxFiles rotated files.
type RotatingFile struct {
	mu          sync.Mutex
	path        string
	maxBytes    int64
	maxFiles    int
	file        *os.File
	currentSize int64
}

// OpenRotatingFile opens or creates path with 0600 permissions. maxSizeMB <= 0
// disables rotation.
func OpenRotatingFile(path string, maxSizeMB, maxFiles int) (*RotatingFile, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	return &RotatingFile{
		path:        path,
		maxBytes:    int64(maxSizeMB) * 1024 * 1024,
		maxFiles:    maxFiles,
		file:        f,
		currentSize: stat.Size(),
	}, nil
}

func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return 0, os.ErrClosed
	}

	if r.maxBytes > 0 && r.currentSize > 0 && r.currentSize+int64(len(p)) > r.maxBytes {
		if err := r.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
		if r.file == nil {
			return 0, os.ErrClosed
		}
	}

	n, err := r.file.Write(p)
	r.currentSize += int64(n)
	return n, err
}

func (r *RotatingFile) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func (r *RotatingFile) rotate() error {
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}

	if r.maxFiles <= 0 {
		if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to truncate log file: %w", err)
		}
	} else {
		for i := r.maxFiles; i >= 1; i-- {
			oldPath := fmt.Sprintf("%s.%d", r.path, i)
			if i == r.maxFiles {
				os.Remove(oldPath)
			} else {
				os.Rename(oldPath, fmt.Sprintf("%s.%d", r.path, i+1))
			}
		}
		if err := os.Rename(r.path, r.path+".1"); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open new log file: %w", err)
	}
	r.file = f
	r.currentSize = 0
	return nil
}
