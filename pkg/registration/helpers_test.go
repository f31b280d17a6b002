package registration

import (
	"bytes"
	"context"
	"errors"
	"io"
)

type testDecl struct {
	name     string
	binary   string
	facts    Facts
	metadata *Metadata
}

func (d *testDecl) Name() string { return d.name }

type testHost struct {
	// dropped lists declarations whose metadata disappears at serialization time
	dropped map[string]bool
	lookups int
}

func (h *testHost) Describe(d Declaration) Facts {
	return d.(*testDecl).facts
}

func (h *testHost) BinaryName(d Declaration) string {
	return d.(*testDecl).binary
}

func (h *testHost) Registration(d Declaration) *Metadata {
	h.lookups++
	td := d.(*testDecl)
	if h.dropped[td.name] {
		return nil
	}
	return td.metadata
}

type collectingReporter struct {
	diagnostics []Diagnostic
}

func (r *collectingReporter) Report(d Diagnostic) {
	r.diagnostics = append(r.diagnostics, d)
}

func (r *collectingReporter) count(sev Severity) int {
	n := 0
	for _, d := range r.diagnostics {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

type testSink struct {
	createErr error
	closeErr  error
	writes    map[string][]byte
	creates   int
}

func newTestSink() *testSink {
	return &testSink{writes: make(map[string][]byte)}
}

type testWriter struct {
	sink *testSink
	path string
	buf  bytes.Buffer
}

func (w *testWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *testWriter) Close() error {
	if w.sink.closeErr != nil {
		return w.sink.closeErr
	}
	w.sink.writes[w.path] = w.buf.Bytes()
	return nil
}

func (s *testSink) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	s.creates++
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &testWriter{sink: s, path: path}, nil
}

var errDiskFull = errors.New("disk full")

// validClass returns facts for a public top-level class with a public
// no-argument constructor
func validClass() Facts {
	return Facts{
		Kind:             KindClass,
		Modifiers:        Modifiers{ModifierPublic},
		Enclosing:        EnclosingPackage,
		AssignableToBase: true,
		Constructors:     []Constructor{{Modifiers: Modifiers{ModifierPublic}}},
	}
}

func language(name, id string) *testDecl {
	return &testDecl{
		name:   "com.example." + name,
		binary: "com.example." + name,
		facts:  validClass(),
		metadata: &Metadata{
			ID:                 id,
			Name:               name,
			ImplementationName: name + " Impl",
			Version:            "1.0",
			MimeTypes:          []string{"application/x-" + id},
		},
	}
}

type expectations struct {
	expected map[string]string
	unmet    map[string]error
}

func (e *expectations) IsExpectedError(target Target, message string) bool {
	return e.expected[target.String()] == message
}

func (e *expectations) AssertNoErrorExpected(target Target) error {
	return e.unmet[target.String()]
}
