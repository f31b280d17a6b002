// Package diagnostics provides registration.Reporter implementations.
package diagnostics

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/langreg/pkg/registration"
)

// LogReporter logs diagnostics through logrus
type LogReporter struct {
	log *logrus.Logger
}

// NewLogReporter creates a reporter logging to log
func NewLogReporter(log *logrus.Logger) *LogReporter {
	if log == nil {
		log = logrus.New()
	}
	return &LogReporter{log: log}
}

func (r *LogReporter) Report(d registration.Diagnostic) {
	entry := r.log.WithFields(logrus.Fields{
		"target":   d.Target.String(),
		"severity": string(d.Severity),
	})
	if f, ok := d.Target.Declaration.(interface{ File() string }); ok && f.File() != "" {
		entry = entry.WithField("file", f.File())
	}

	switch d.Severity {
	case registration.SeverityError:
		entry.Error(d.Message)
	default:
		entry.Warn(d.Message)
	}
}

// WriterReporter prints diagnostics one per line in compiler style
type WriterReporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterReporter creates a reporter printing to w
func NewWriterReporter(w io.Writer) *WriterReporter {
	return &WriterReporter{w: w}
}

func (r *WriterReporter) Report(d registration.Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, d.String())
}

// Collector keeps every reported diagnostic
type Collector struct {
	mu          sync.Mutex
	diagnostics []registration.Diagnostic
	counts      map[registration.Severity]int
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{counts: make(map[registration.Severity]int)}
}

func (c *Collector) Report(d registration.Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostics = append(c.diagnostics, d)
	c.counts[d.Severity]++
}

// Diagnostics returns the collected diagnostics in report order
func (c *Collector) Diagnostics() []registration.Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]registration.Diagnostic(nil), c.diagnostics...)
}

// Count returns the number of diagnostics with severity
func (c *Collector) Count(severity registration.Severity) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[severity]
}

// Errors returns the number of error diagnostics
func (c *Collector) Errors() int { return c.Count(registration.SeverityError) }

// Warnings returns the number of warning diagnostics
func (c *Collector) Warnings() int { return c.Count(registration.SeverityWarning) }

// HasErrors reports whether an error diagnostic was collected
func (c *Collector) HasErrors() bool { return c.Errors() > 0 }

// Targets returns the distinct targets with diagnostics, sorted
func (c *Collector) Targets() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool)
	var out []string
	for _, d := range c.diagnostics {
		t := d.Target.String()
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// Reset drops all collected diagnostics
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostics = nil
	c.counts = make(map[registration.Severity]int)
}

// Tee forwards each diagnostic to all reporters
type Tee []registration.Reporter

func (t Tee) Report(d registration.Diagnostic) {
	for _, r := range t {
		r.Report(d)
	}
}
