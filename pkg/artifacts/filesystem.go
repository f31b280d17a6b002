package artifacts

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/platinummonkey/langreg/pkg/registration"
)

// FilesystemSink writes artifacts below Root
type FilesystemSink struct {
	Root string
}

var _ registration.Sink = (*FilesystemSink)(nil)

// NewFilesystemSink creates a sink rooted at root
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{Root: root}
}

// Create opens a temporary file next to the target. Close renames it into place.
func (s *FilesystemSink) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	target, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	return &fileWriter{tmp: tmp, target: target}, nil
}

// resolve joins path below the root and rejects paths escaping it
func (s *FilesystemSink) resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return filepath.Join(s.Root, clean), nil
}

type fileWriter struct {
	tmp    *os.File
	target string
	done   bool
}

func (w *fileWriter) Write(p []byte) (int, error) {
	if w.done {
		return 0, ErrWriterClosed
	}
	return w.tmp.Write(p)
}

// Close commits the content
func (w *fileWriter) Close() error {
	if w.done {
		return ErrWriterClosed
	}
	w.done = true

	if err := w.tmp.Close(); err != nil {
		_ = os.Remove(w.tmp.Name())
		return fmt.Errorf("failed to close %s: %w", w.target, err)
	}
	if err := os.Chmod(w.tmp.Name(), 0o644); err != nil {
		_ = os.Remove(w.tmp.Name())
		return fmt.Errorf("failed to set permissions on %s: %w", w.target, err)
	}
	if err := os.Rename(w.tmp.Name(), w.target); err != nil {
		_ = os.Remove(w.tmp.Name())
		return fmt.Errorf("failed to commit %s: %w", w.target, err)
	}
	return nil
}

// Abort discards the content
func (w *fileWriter) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	_ = w.tmp.Close()
	return os.Remove(w.tmp.Name())
}
