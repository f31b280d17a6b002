package registration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var processorTracer = otel.Tracer("langreg/registration/processor")

// Candidate outcomes passed to Recorder.RecordCandidate
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeSkipped  = "skipped"
)

// WriteStatus describes what finalization did with the artifact
type WriteStatus string

const (
	// WriteNone means the round was not final
	WriteNone WriteStatus = ""
	// WriteWritten means the artifact was written
	WriteWritten WriteStatus = "written"
	// WriteSkipped means there was nothing to write
	WriteSkipped WriteStatus = "skipped"
	// WriteConflict means another writer already produced the artifact in this run
	WriteConflict WriteStatus = "conflict"
	// WriteFailed means the write failed and an error was reported
	WriteFailed WriteStatus = "failed"
)

// Round is one invocation by the host
type Round struct {
	// Over signals that processing is finished; Candidates are ignored
	Over       bool
	Candidates []Declaration
}

// RoundResult summarizes one processed round
type RoundResult struct {
	Accepted    int
	Rejected    int
	Skipped     int
	Diagnostics []Diagnostic

	Final   bool
	Write   WriteStatus
	Entries int
}

// Aborter is implemented by sink writers that can discard uncommitted content
type Aborter interface {
	Abort() error
}

// Options configures a Processor
type Options struct {
	// BaseType is the fully qualified capability type; defaults to DefaultBaseType
	BaseType   string
	Suppressor Suppressor
	Recorder   Recorder
	Logger     *logrus.Logger
}

// Processor drives validation, accumulation and serialization for one run
type Processor struct {
	run        *Run
	host       Host
	sink       Sink
	reporter   Reporter
	validator  *Validator
	serializer *Serializer
	recorder   Recorder
	log        *logrus.Logger
}

// NewProcessor creates a processor bound to run
func NewProcessor(run *Run, host Host, sink Sink, reporter Reporter, opts Options) (*Processor, error) {
	if host == nil {
		return nil, ErrNilHost
	}
	if run == nil {
		run = NewRun()
	}
	if reporter == nil {
		reporter = discardReporter{}
	}
	if opts.Recorder == nil {
		opts.Recorder = noopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}

	return &Processor{
		run:        run,
		host:       host,
		sink:       sink,
		reporter:   reporter,
		validator:  NewValidator(opts.BaseType, opts.Suppressor),
		serializer: NewSerializer(),
		recorder:   opts.Recorder,
		log:        opts.Logger,
	}, nil
}

// Run returns the run this processor is bound to
func (p *Processor) Run() *Run {
	return p.run
}

// Process handles one round. Non-final rounds validate and accumulate; the
// final round writes the artifact once and finishes the run.
func (p *Processor) Process(ctx context.Context, round Round) (*RoundResult, error) {
	if p.run.State() != StateCollecting {
		return nil, ErrRunFinished
	}

	start := time.Now()
	ctx, span := processorTracer.Start(ctx, "Processor.Process",
		trace.WithAttributes(
			attribute.String("run.id", p.run.ID),
			attribute.Bool("round.final", round.Over),
			attribute.Int("round.candidates", len(round.Candidates)),
		),
	)
	defer span.End()

	var result *RoundResult
	if round.Over {
		if len(round.Candidates) > 0 {
			p.log.Warnf("Ignoring %d candidates presented in the final round", len(round.Candidates))
		}
		var err error
		result, err = p.finalize(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		span.SetAttributes(
			attribute.String("artifact.write", string(result.Write)),
			attribute.Int("artifact.entries", result.Entries),
		)
	} else {
		result = p.collect(round.Candidates)
		span.SetAttributes(
			attribute.Int("round.accepted", result.Accepted),
			attribute.Int("round.rejected", result.Rejected),
		)
	}

	p.recorder.RecordRound(round.Over, time.Since(start).Seconds())
	return result, nil
}

func (p *Processor) collect(candidates []Declaration) *RoundResult {
	result := &RoundResult{}
	acc := p.run.Accumulator()

	for _, d := range candidates {
		if p.host.Registration(d) == nil {
			result.Skipped++
			p.recorder.RecordCandidate(OutcomeSkipped)
			continue
		}

		verdict := p.validator.Validate(d, p.host.Describe(d))
		for _, diag := range verdict.Diagnostics {
			p.report(diag)
		}
		result.Diagnostics = append(result.Diagnostics, verdict.Diagnostics...)

		switch {
		case verdict.Accepted:
			acc.Add(d)
			result.Accepted++
			p.recorder.RecordCandidate(OutcomeAccepted)
		case verdict.Skipped:
			result.Skipped++
			p.recorder.RecordCandidate(OutcomeSkipped)
		default:
			result.Rejected++
			p.recorder.RecordCandidate(OutcomeRejected)
		}
	}

	p.log.Debugf("Round processed: %d accepted, %d rejected, %d skipped, %d held",
		result.Accepted, result.Rejected, result.Skipped, acc.Len())
	return result
}

func (p *Processor) finalize(ctx context.Context) (*RoundResult, error) {
	if !p.run.transition(StateCollecting, StateFinalizing) {
		return nil, ErrRunFinished
	}
	defer p.run.transition(StateFinalizing, StateDone)

	result := &RoundResult{Final: true}
	declarations := p.run.Accumulator().DrainAll()

	entries := make([]Entry, 0, len(declarations))
	for _, d := range declarations {
		metadata := p.host.Registration(d)
		if metadata == nil {
			entries = append(entries, Entry{})
			continue
		}
		entries = append(entries, Entry{ClassName: p.host.BinaryName(d), Metadata: metadata})
	}

	data, count, err := p.serializer.Serialize(entries)
	if err != nil {
		return nil, err
	}
	result.Entries = count

	if count == 0 {
		result.Write = WriteSkipped
		p.recorder.RecordWrite(string(WriteSkipped), 0)
		p.log.Debug("No registrations collected, artifact not written")
		return result, nil
	}

	result.Write = WriteWritten
	if err := p.write(ctx, data); err != nil {
		if errors.Is(err, ErrAlreadyCreated) {
			result.Write = WriteConflict
			p.log.Debugf("Artifact %s already created in run %s, skipping", ArtifactPath, p.run.ID)
		} else {
			result.Write = WriteFailed
			diag := Diagnostic{
				Severity: SeverityError,
				Message:  err.Error(),
				Target:   Target{Declaration: declarations[0]},
			}
			p.report(diag)
			result.Diagnostics = append(result.Diagnostics, diag)
		}
	} else {
		p.log.Debugf("Wrote %s with %d registrations", ArtifactPath, count)
	}

	p.recorder.RecordWrite(string(result.Write), count)
	return result, nil
}

// write stores data through the sink. The writer is closed, or aborted on a
// failed write, on every path.
func (p *Processor) write(ctx context.Context, data []byte) (err error) {
	if p.sink == nil {
		return fmt.Errorf("no sink configured for %s", ArtifactPath)
	}

	ctx, span := processorTracer.Start(ctx, "Processor.write",
		trace.WithAttributes(
			attribute.String("artifact.path", ArtifactPath),
			attribute.Int("artifact.size", len(data)),
		),
	)
	defer func() {
		if err != nil && !errors.Is(err, ErrAlreadyCreated) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	w, err := p.sink.Create(ctx, ArtifactPath)
	if err != nil {
		return err
	}

	if _, werr := w.Write(data); werr != nil {
		if a, ok := w.(Aborter); ok {
			if aerr := a.Abort(); aerr != nil {
				p.log.Warnf("Failed to abort artifact write: %v", aerr)
			}
		} else {
			_ = w.Close()
		}
		return fmt.Errorf("failed to write %s: %w", ArtifactPath, werr)
	}

	return w.Close()
}

func (p *Processor) report(d Diagnostic) {
	p.recorder.RecordDiagnostic(d.Severity)
	p.reporter.Report(d)
}

type discardReporter struct{}

func (discardReporter) Report(Diagnostic) {}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// WriterSink adapts an io.Writer into a Sink that accepts exactly one artifact
func WriterSink(w io.Writer) Sink {
	return &writerSink{w: w}
}

type writerSink struct {
	w       io.Writer
	created bool
}

func (s *writerSink) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	if s.created {
		return nil, ErrAlreadyCreated
	}
	s.created = true
	return nopWriteCloser{s.w}, nil
}
