package observability

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestShutdownManager(t *testing.T) {
	logger, _ := test.NewNullLogger()

	t.Run("runs functions in order", func(t *testing.T) {
		sm := NewShutdownManager(logger, nil, time.Second)
		var order []string
		sm.RegisterShutdownFunc("final round", func(context.Context) error {
			order = append(order, "final round")
			return nil
		})
		sm.RegisterShutdownFunc("otel", func(context.Context) error {
			order = append(order, "otel")
			return nil
		})

		if err := sm.Shutdown(); err != nil {
			t.Fatalf("Shutdown failed: %v", err)
		}
		if strings.Join(order, ",") != "final round,otel" {
			t.Errorf("order = %v", order)
		}
	})

	t.Run("collects errors and keeps going", func(t *testing.T) {
		sm := NewShutdownManager(logger, nil, time.Second)
		ran := false
		sm.RegisterShutdownFunc("broken", func(context.Context) error { return errors.New("boom") })
		sm.RegisterShutdownFunc("after", func(context.Context) error {
			ran = true
			return nil
		})

		err := sm.Shutdown()
		if err == nil || !strings.Contains(err.Error(), "broken: boom") {
			t.Errorf("err = %v", err)
		}
		if !ran {
			t.Error("later shutdown function skipped")
		}
	})

	t.Run("stops http server", func(t *testing.T) {
		server := &http.Server{Addr: "127.0.0.1:0"}
		sm := NewShutdownManager(logger, server, 0)
		if sm.shutdownTimeout != 30*time.Second {
			t.Errorf("timeout = %v", sm.shutdownTimeout)
		}
		if err := sm.Shutdown(); err != nil {
			t.Errorf("Shutdown failed: %v", err)
		}
	})

	t.Run("wait returns when context is done", func(t *testing.T) {
		sm := NewShutdownManager(logger, nil, time.Second)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		done := make(chan struct{})
		go func() {
			sm.WaitForSignal(ctx)
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("WaitForSignal did not return")
		}
	})
}
