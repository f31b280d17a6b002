package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/langreg/pkg/config"
	"github.com/platinummonkey/langreg/pkg/registration"
)

// startWatch runs watchChanges on dir and returns a channel of flushed batches
func startWatch(t *testing.T, dir string, debounce time.Duration) (<-chan []string, context.CancelFunc, <-chan struct{}) {
	t.Helper()

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	t.Cleanup(func() { watcher.Close() })
	require.NoError(t, setupWatcher(watcher, dir))

	log, _ := test.NewNullLogger()
	batches := make(chan []string, 16)
	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go func() {
		defer close(done)
		watchChanges(ctx, watcher, debounce, log, func(paths []string) {
			batches <- paths
		})
	}()

	return batches, cancel, done
}

// collectUntil gathers flushed paths until all wanted paths were seen
func collectUntil(t *testing.T, batches <-chan []string, want ...string) map[string]bool {
	t.Helper()
	seen := make(map[string]bool)
	deadline := time.After(5 * time.Second)

	for {
		missing := false
		for _, w := range want {
			if !seen[w] {
				missing = true
			}
		}
		if !missing {
			return seen
		}

		select {
		case batch := <-batches:
			for _, p := range batch {
				seen[p] = true
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %v, saw %v", want, seen)
		}
	}
}

func TestWatchChanges_DescriptorEvents(t *testing.T) {
	dir := t.TempDir()
	batches, _, _ := startWatch(t, dir, 50*time.Millisecond)

	writeFile(t, dir, "notes.txt", "not a descriptor")
	a := writeFile(t, dir, "a.yaml", slDescriptor)
	b := writeFile(t, dir, "b.hcl", jsDescriptor)

	seen := collectUntil(t, batches, a, b)
	assert.False(t, seen[filepath.Join(dir, "notes.txt")])
}

func TestWatchChanges_NewDirectory(t *testing.T) {
	dir := t.TempDir()
	batches, _, _ := startWatch(t, dir, 50*time.Millisecond)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	c := writeFile(t, dir, "sub/c.yaml", slDescriptor)

	collectUntil(t, batches, c)
}

func TestWatchChanges_StopsOnCancel(t *testing.T) {
	_, cancel, done := startWatch(t, t.TempDir(), 50*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not stop")
	}
}

func TestWatchChanges_FlushesPendingOnCancel(t *testing.T) {
	dir := t.TempDir()
	batches, cancel, done := startWatch(t, dir, time.Minute)

	late := writeFile(t, dir, "late.yaml", slDescriptor)

	// Give the watcher time to deliver the event, well inside the debounce window
	time.Sleep(300 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not stop")
	}

	select {
	case batch := <-batches:
		assert.Equal(t, []string{late}, batch)
	default:
		t.Fatal("pending changes were not flushed on cancel")
	}
}

func newMemorySession(t *testing.T) *session {
	t.Helper()
	cfg := config.Default()
	cfg.Output.Sink = "memory"

	s, err := newSession(context.Background(), cfg, io.Discard, io.Discard, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func TestProcessBatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "sl.yaml", slDescriptor)

	s := newMemorySession(t)
	result, err := s.round(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Accepted)

	js := writeFile(t, dir, "js.hcl", jsDescriptor)
	broken := writeFile(t, dir, "broken.yaml", "types: [")

	// An unparsable file drops its batch
	processBatch(ctx, s, []string{broken})
	assert.Equal(t, 1, s.run.Accumulator().Len())

	// Removed files are ignored
	processBatch(ctx, s, []string{js, filepath.Join(dir, "gone.yaml")})
	assert.Equal(t, 2, s.run.Accumulator().Len())

	// Already presented types are not presented again
	processBatch(ctx, s, []string{js})
	assert.Equal(t, 2, s.run.Accumulator().Len())

	final, err := s.finish(ctx)
	require.NoError(t, err)
	assert.Equal(t, registration.WriteWritten, final.Write)
	assert.Equal(t, 2, final.Entries)
	assert.NoError(t, s.exitErr())

	_, err = s.finish(ctx)
	assert.ErrorIs(t, err, registration.ErrRunFinished)
}

func TestStatusRouter(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "sl.yaml", slDescriptor)

	s := newMemorySession(t)
	_, err := s.round(ctx, dir)
	require.NoError(t, err)

	router := newStatusRouter(s)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "langreg_rounds_total")
	assert.Contains(t, rec.Body.String(), "langreg_candidates_total")

	_, err = s.finish(ctx)
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "run is done")
}

func TestWatch_RequiresOneDirectory(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := newWatchCommand(&stdout, &stderr)

	err := cmd.Run(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one directory is required")

	cmd = newWatchCommand(&stdout, &stderr)
	err = cmd.Run([]string{"a", "b"})
	require.Error(t, err)
}
