package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/langreg/pkg/descriptors"
	"github.com/platinummonkey/langreg/pkg/observability"
	"github.com/platinummonkey/langreg/pkg/registration"
)

type watchOptions struct {
	commonOptions
	metricsAddr string
	debounce    time.Duration
}

func newWatchCommand(stdout, stderr io.Writer) *Command {
	cmd := &Command{
		Name:        "watch",
		Description: "Process descriptor changes as rounds until interrupted",
		Flags:       flag.NewFlagSet("watch", flag.ContinueOnError),
	}

	var opts watchOptions
	opts.register(cmd.Flags)
	cmd.Flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Address serving /metrics and health endpoints")
	cmd.Flags.DurationVar(&opts.debounce, "debounce", 0, "Quiet period before a batch of changes becomes a round")
	cmd.Flags.SetOutput(stderr)

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if cmd.Flags.NArg() != 1 {
			return fmt.Errorf("exactly one directory is required")
		}
		return runWatch(context.Background(), &opts, cmd.Flags.Arg(0), stdout, stderr)
	}

	return cmd
}

// runWatch presents the directory as the first round and every debounced
// batch of changes as a further round. SIGINT or SIGTERM triggers the final
// round.
func runWatch(ctx context.Context, opts *watchOptions, dir string, stdout, stderr io.Writer) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	if opts.metricsAddr != "" {
		cfg.Watch.MetricsAddr = opts.metricsAddr
	}
	if opts.debounce > 0 {
		cfg.Watch.Debounce = opts.debounce
	}

	s, err := newSession(ctx, cfg, stdout, stderr, nil)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := setupWatcher(watcher, dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	if _, err := s.round(ctx, dir); err != nil {
		return fmt.Errorf("initial round failed: %w", err)
	}

	var server *http.Server
	if cfg.Watch.MetricsAddr != "" {
		server = &http.Server{
			Addr:              cfg.Watch.MetricsAddr,
			Handler:           otelhttp.NewHandler(newStatusRouter(s), "langreg.status"),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			s.log.Infof("Serving metrics on %s", cfg.Watch.MetricsAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdown := observability.NewShutdownManager(s.log, server, cfg.Watch.ShutdownTimeout)
	go func() {
		shutdown.WaitForSignal(watchCtx)
		cancel()
	}()

	// Batches run on ctx so the batch flushed at shutdown is still processed
	s.log.Infof("Started watching for descriptor changes in %s", dir)
	watchChanges(watchCtx, watcher, cfg.Watch.Debounce, s.log, func(paths []string) {
		defer observability.RecoverPanic(s.log, "watch batch")
		processBatch(ctx, s, paths)
	})

	_, finishErr := s.finish(context.Background())
	if err := shutdown.Shutdown(); err != nil {
		s.log.WithError(err).Warn("Shutdown completed with errors")
	}
	if finishErr != nil {
		return finishErr
	}

	return s.exitErr()
}

// processBatch parses the changed files that still exist and presents them
// as one round. Parse failures are logged and the batch is dropped.
func processBatch(ctx context.Context, s *session, paths []string) {
	var existing []string
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	if len(existing) == 0 {
		return
	}

	files, err := s.parser.ParseFiles(ctx, existing)
	if err != nil {
		s.log.WithError(err).Warn("Skipping batch with unparsable descriptors")
		return
	}

	if _, err := s.roundFiles(ctx, files); err != nil {
		s.log.WithError(err).Error("Round failed")
	}
}

// newStatusRouter serves /metrics and the health endpoints
func newStatusRouter(s *session) *mux.Router {
	router := mux.NewRouter()
	router.Use(observability.HTTPMetricsMiddleware(s.metrics))

	var checker *observability.HealthChecker
	if s.redis != nil {
		checker = observability.NewHealthChecker(s.cfg.Observability.OTelServiceVersion, s.redis.Client())
	} else {
		checker = observability.NewHealthChecker(s.cfg.Observability.OTelServiceVersion, nil)
	}
	checker.AddCheck("run", func(ctx context.Context) error {
		if state := s.run.State(); state != registration.StateCollecting {
			return fmt.Errorf("run is %s", state)
		}
		return nil
	}, true)

	observability.RegisterMetricsEndpoint(router, s.registry)
	observability.RegisterHealthRoutes(router, checker)
	return router
}

// watchChanges batches descriptor changes until ctx is done. A batch is
// flushed once no relevant event arrived for the debounce period, and any
// pending changes are flushed when ctx is done.
func watchChanges(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration, log *logrus.Logger, flush func([]string)) {
	pending := make(map[string]struct{})
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	drain := func() {
		if len(pending) == 0 {
			return
		}
		batch := make([]string, 0, len(pending))
		for path := range pending {
			batch = append(batch, path)
		}
		sort.Strings(batch)
		pending = make(map[string]struct{})
		flush(batch)
	}

	handle := func(event fsnotify.Event) {
		// Also watch new directories
		if event.Op&fsnotify.Create != 0 {
			if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
				log.Debugf("New directory: %s", event.Name)
				if err := setupWatcher(watcher, event.Name); err != nil {
					log.WithError(err).Warn("Error watching new directory")
				}
				// Files created before the watch was added produce no event
				if paths, err := descriptors.Discover(event.Name); err == nil {
					for _, path := range paths {
						pending[path] = struct{}{}
					}
				}
				timer.Reset(debounce)
				return
			}
		}

		if event.Op&(fsnotify.Write|fsnotify.Create) != 0 && descriptors.IsDescriptor(event.Name) {
			log.Debugf("Modified file: %s", event.Name)
			pending[event.Name] = struct{}{}
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			// Pick up events the watcher already queued
		buffered:
			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						break buffered
					}
					handle(event)
				default:
					break buffered
				}
			}
			drain()
			return
		case event, ok := <-watcher.Events:
			if !ok {
				drain()
				return
			}
			handle(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				drain()
				return
			}
			log.WithError(err).Warn("Watcher error")
		case <-timer.C:
			drain()
		}
	}
}

// setupWatcher recursively adds all directories to the watcher
func setupWatcher(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
