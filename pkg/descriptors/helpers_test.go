package descriptors

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/platinummonkey/langreg/pkg/registration"
	"github.com/stretchr/testify/assert"
)

type reporterFunc func(registration.Diagnostic)

func (f reporterFunc) Report(d registration.Diagnostic) { f(d) }

type bufferSink struct {
	bytes.Buffer
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func (s *bufferSink) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	return nopCloser{&s.Buffer}, nil
}

func (s *bufferSink) assertContains(t *testing.T, lines ...string) {
	t.Helper()
	for _, line := range lines {
		assert.Contains(t, s.String(), line)
	}
}
