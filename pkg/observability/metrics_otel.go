package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/platinummonkey/langreg/pkg/registration"
)

// OTelMetrics records processing measurements through OpenTelemetry
// instruments. It reads the global meter provider, so InitOTel must run first
// for the measurements to be exported.
type OTelMetrics struct {
	candidates    metric.Int64Counter
	diagnostics   metric.Int64Counter
	roundDuration metric.Float64Histogram
	writes        metric.Int64Counter
	entries       metric.Int64Histogram
}

var _ registration.Recorder = (*OTelMetrics)(nil)

// NewOTelMetrics creates the instruments on the global meter provider
func NewOTelMetrics() (*OTelMetrics, error) {
	return NewOTelMetricsWithMeter(otel.Meter("github.com/platinummonkey/langreg"))
}

// NewOTelMetricsWithMeter creates the instruments on meter
func NewOTelMetricsWithMeter(meter metric.Meter) (*OTelMetrics, error) {
	m := &OTelMetrics{}
	var err error

	m.candidates, err = meter.Int64Counter(
		"langreg.candidates",
		metric.WithDescription("Validated candidate declarations"),
		metric.WithUnit("{declaration}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create candidates counter: %w", err)
	}

	m.diagnostics, err = meter.Int64Counter(
		"langreg.diagnostics",
		metric.WithDescription("Reported diagnostics"),
		metric.WithUnit("{diagnostic}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create diagnostics counter: %w", err)
	}

	m.roundDuration, err = meter.Float64Histogram(
		"langreg.round.duration",
		metric.WithDescription("Round processing duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create round duration histogram: %w", err)
	}

	m.writes, err = meter.Int64Counter(
		"langreg.artifact.writes",
		metric.WithDescription("Artifact finalizations by write status"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact writes counter: %w", err)
	}

	m.entries, err = meter.Int64Histogram(
		"langreg.artifact.entries",
		metric.WithDescription("Registrations per finalized artifact"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact entries histogram: %w", err)
	}

	return m, nil
}

func (m *OTelMetrics) RecordCandidate(outcome string) {
	m.candidates.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *OTelMetrics) RecordDiagnostic(severity registration.Severity) {
	m.diagnostics.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("severity", string(severity))))
}

func (m *OTelMetrics) RecordRound(final bool, seconds float64) {
	m.roundDuration.Record(context.Background(), seconds,
		metric.WithAttributes(attribute.Bool("final", final)))
}

func (m *OTelMetrics) RecordWrite(status string, entries int) {
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.writes.Add(context.Background(), 1, attrs)
	m.entries.Record(context.Background(), int64(entries), attrs)
}

// Recorders fans measurements out to several recorders
type Recorders []registration.Recorder

func (rs Recorders) RecordCandidate(outcome string) {
	for _, r := range rs {
		r.RecordCandidate(outcome)
	}
}

func (rs Recorders) RecordDiagnostic(severity registration.Severity) {
	for _, r := range rs {
		r.RecordDiagnostic(severity)
	}
}

func (rs Recorders) RecordRound(final bool, seconds float64) {
	for _, r := range rs {
		r.RecordRound(final, seconds)
	}
}

func (rs Recorders) RecordWrite(status string, entries int) {
	for _, r := range rs {
		r.RecordWrite(status, entries)
	}
}
