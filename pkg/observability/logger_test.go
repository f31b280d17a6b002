package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewLogger(t *testing.T) {
	t.Run("defaults to info text", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLogger(LoggerConfig{Output: &buf})
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}
		if logger.GetLevel() != logrus.InfoLevel {
			t.Errorf("level = %v, want info", logger.GetLevel())
		}

		logger.Debug("hidden")
		logger.Info("shown")
		if strings.Contains(buf.String(), "hidden") {
			t.Error("debug message logged at info level")
		}
		if !strings.Contains(buf.String(), "shown") {
			t.Error("info message missing")
		}
	})

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLogger(LoggerConfig{Level: "debug", Format: "JSON", Output: &buf})
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}

		logger.WithField("run", "r1").Debug("round")

		var entry map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if entry["run"] != "r1" || entry["msg"] != "round" || entry["level"] != "debug" {
			t.Errorf("unexpected entry: %v", entry)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		if _, err := NewLogger(LoggerConfig{Level: "loud"}); err == nil {
			t.Error("expected error for invalid level")
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		if _, err := NewLogger(LoggerConfig{Format: "xml"}); err == nil {
			t.Error("expected error for invalid format")
		}
	})
}

func TestWithTraceContext(t *testing.T) {
	logger := logrus.New()

	t.Run("without span", func(t *testing.T) {
		entry := WithTraceContext(context.Background(), logger)
		if len(entry.Data) != 0 {
			t.Errorf("expected no fields, got %v", entry.Data)
		}
	})

	t.Run("with recording span", func(t *testing.T) {
		tp := sdktrace.NewTracerProvider()
		defer func() { _ = tp.Shutdown(context.Background()) }()

		ctx, span := tp.Tracer("test").Start(context.Background(), "op")
		defer span.End()

		entry := WithTraceContext(ctx, logger)
		if entry.Data["trace_id"] != span.SpanContext().TraceID().String() {
			t.Errorf("trace_id = %v", entry.Data["trace_id"])
		}
		if entry.Data["span_id"] != span.SpanContext().SpanID().String() {
			t.Errorf("span_id = %v", entry.Data["span_id"])
		}
	})
}

func TestRecoverPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)

	func() {
		defer RecoverPanic(logger, "test")
		panic("boom")
	}()

	if !strings.Contains(buf.String(), "PANIC recovered") {
		t.Errorf("panic not logged: %s", buf.String())
	}

	called := false
	func() {
		defer RecoverPanicWithCallback(logger, "test", func() { called = true })
		panic("boom")
	}()
	if !called {
		t.Error("callback not called")
	}

	if err := MustRecover("bad"); err == nil || err.Error() != "panic: bad" {
		t.Errorf("MustRecover = %v", err)
	}
	if err := MustRecover(nil); err != nil {
		t.Errorf("MustRecover(nil) = %v", err)
	}
}
