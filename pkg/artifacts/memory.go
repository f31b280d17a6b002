package artifacts

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"

	"github.com/platinummonkey/langreg/pkg/registration"
)

// MemorySink keeps committed artifacts in memory
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

var _ registration.Sink = (*MemorySink)(nil)

// NewMemorySink creates an empty in-memory sink
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// Create returns a writer that stores its content on Close
func (s *MemorySink) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	return &memoryWriter{sink: s, path: path}, nil
}

// Get returns the committed content of path
func (s *MemorySink) Get(path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[path]
	return data, ok
}

// Paths returns the committed paths in sorted order
func (s *MemorySink) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

type memoryWriter struct {
	sink *MemorySink
	path string
	buf  bytes.Buffer
	done bool
}

func (w *memoryWriter) Write(p []byte) (int, error) {
	if w.done {
		return 0, ErrWriterClosed
	}
	return w.buf.Write(p)
}

func (w *memoryWriter) Close() error {
	if w.done {
		return ErrWriterClosed
	}
	w.done = true

	w.sink.mu.Lock()
	defer w.sink.mu.Unlock()
	w.sink.files[w.path] = bytes.Clone(w.buf.Bytes())
	return nil
}

func (w *memoryWriter) Abort() error {
	w.done = true
	return nil
}
