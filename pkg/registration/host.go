package registration

import (
	"context"
	"io"
)

// Host is the narrow capability surface a compilation host provides
type Host interface {
	// Describe returns the structural facts of d
	Describe(d Declaration) Facts
	// BinaryName returns the binary name of d (pkg.Outer$Inner)
	BinaryName(d Declaration) string
	// Registration returns the marker payload of d, or nil when there is none
	Registration(d Declaration) *Metadata
}

// Reporter receives diagnostics
type Reporter interface {
	Report(d Diagnostic)
}

// Suppressor silences diagnostics that a test fixture declares as expected
type Suppressor interface {
	// IsExpectedError reports whether message is expected at target
	IsExpectedError(target Target, message string) bool
	// AssertNoErrorExpected returns an error when target expected a
	// diagnostic that was never produced
	AssertNoErrorExpected(target Target) error
}

// Sink persists the generated artifact
type Sink interface {
	// Create opens path for writing. Closing the writer commits the content.
	// It returns ErrAlreadyCreated when path was already produced in this run.
	Create(ctx context.Context, path string) (io.WriteCloser, error)
}

// Recorder receives processing measurements
type Recorder interface {
	RecordCandidate(outcome string)
	RecordDiagnostic(severity Severity)
	RecordRound(final bool, seconds float64)
	RecordWrite(status string, entries int)
}

type noSuppression struct{}

func (noSuppression) IsExpectedError(Target, string) bool { return false }
func (noSuppression) AssertNoErrorExpected(Target) error { return nil }

// NoSuppression never suppresses anything
var NoSuppression Suppressor = noSuppression{}

type noopRecorder struct{}

func (noopRecorder) RecordCandidate(string) {}
func (noopRecorder) RecordDiagnostic(Severity) {}
func (noopRecorder) RecordRound(bool, float64) {}
func (noopRecorder) RecordWrite(string, int) {}
