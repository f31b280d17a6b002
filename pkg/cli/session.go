package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/langreg/pkg/artifacts"
	"github.com/platinummonkey/langreg/pkg/config"
	"github.com/platinummonkey/langreg/pkg/descriptors"
	"github.com/platinummonkey/langreg/pkg/diagnostics"
	"github.com/platinummonkey/langreg/pkg/observability"
	"github.com/platinummonkey/langreg/pkg/registration"
)

// commonOptions are the flags shared by generate and watch. Flags override
// the config file and the environment.
type commonOptions struct {
	configPath string
	out        string
	sink       string
	base       string
	runID      string
	logLevel   string
	logFormat  string
}

func (o *commonOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "Path to a YAML config file")
	fs.StringVar(&o.out, "out", "", "Output root for the filesystem sink")
	fs.StringVar(&o.sink, "sink", "", "Artifact sink: filesystem, s3, memory or stdout")
	fs.StringVar(&o.base, "base", "", "Fully qualified base type registered classes must extend")
	fs.StringVar(&o.runID, "run-id", "", "Run ID shared by cooperating writers")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&o.logFormat, "log-format", "", "Log format (text, json)")
}

func (o *commonOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.out != "" {
		cfg.Output.Dir = o.out
	}
	if o.sink != "" {
		cfg.Output.Sink = o.sink
	}
	if o.base != "" {
		cfg.Processor.BaseType = o.base
	}
	if o.runID != "" {
		cfg.Claims.RunID = o.runID
	}
	if o.logLevel != "" {
		cfg.Observability.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Observability.LogFormat = o.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// session wires one registration run: descriptor host, sink, claims,
// reporters and metrics
type session struct {
	cfg *config.Config
	log *logrus.Logger

	parser    *descriptors.Parser
	host      *descriptors.Host
	run       *registration.Run
	processor *registration.Processor
	collector *diagnostics.Collector

	registry *prometheus.Registry
	metrics  *observability.Metrics
	otel     *observability.OTelProviders
	redis    *artifacts.RedisClaims
}

// newSession builds the run from cfg. A nil reporter logs diagnostics.
func newSession(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, reporter registration.Reporter) (*session, error) {
	log, err := observability.NewLogger(observability.LoggerConfig{
		Level:  cfg.Observability.LogLevel,
		Format: cfg.Observability.LogFormat,
		Output: stderr,
	})
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:       cfg,
		log:       log,
		collector: diagnostics.NewCollector(),
		registry:  prometheus.NewRegistry(),
	}

	s.otel, err = observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
		SampleRatio:    cfg.Observability.OTelSampleRatio,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	s.metrics = observability.NewMetrics(s.registry)
	recorder := observability.Recorders{s.metrics}
	if s.otel != nil {
		otelMetrics, err := observability.NewOTelMetrics()
		if err != nil {
			s.Close(ctx)
			return nil, fmt.Errorf("failed to create OpenTelemetry metrics: %w", err)
		}
		recorder = append(recorder, otelMetrics)
	}

	if cfg.Claims.RunID != "" {
		s.run = registration.NewRunWithID(cfg.Claims.RunID)
	} else {
		s.run = registration.NewRun()
	}

	sink, err := artifacts.New(ctx, artifacts.Config{
		Kind:      cfg.Output.Sink,
		OutputDir: cfg.Output.Dir,
		S3: artifacts.S3Config{
			Bucket:       cfg.Output.S3Bucket,
			Prefix:       cfg.Output.S3Prefix,
			Region:       cfg.Output.S3Region,
			Endpoint:     cfg.Output.S3Endpoint,
			AccessKey:    cfg.Output.S3AccessKey,
			SecretKey:    cfg.Output.S3SecretKey,
			UsePathStyle: cfg.Output.S3UsePathStyle,
		},
		Stdout: stdout,
	})
	if err != nil {
		s.Close(ctx)
		return nil, err
	}

	var claims artifacts.Claims
	switch strings.ToLower(cfg.Claims.Backend) {
	case "redis":
		s.redis, err = artifacts.NewRedisClaims(artifacts.RedisConfig{
			URL:      cfg.Claims.RedisURL,
			Password: cfg.Claims.RedisPassword,
			DB:       cfg.Claims.RedisDB,
			TTL:      cfg.Claims.TTL,
		})
		if err != nil {
			s.Close(ctx)
			return nil, err
		}
		claims = s.redis
	default:
		claims = artifacts.NewMemoryClaims()
	}

	if reporter == nil {
		reporter = diagnostics.NewLogReporter(log)
	}

	s.parser = descriptors.NewParser(descriptors.ParserConfig{
		MaxWorkers: cfg.Descriptors.MaxWorkers,
		CacheSize:  cfg.Descriptors.CacheSize,
		CacheTTL:   cfg.Descriptors.CacheTTL,
	}, log)
	s.host = descriptors.NewHost(cfg.Processor.BaseType, log)

	s.processor, err = registration.NewProcessor(
		s.run,
		s.host,
		artifacts.NewClaimedSink(sink, claims, s.run.ID),
		diagnostics.Tee{reporter, s.collector},
		registration.Options{
			BaseType:   cfg.Processor.BaseType,
			Suppressor: s.host,
			Recorder:   recorder,
			Logger:     log,
		},
	)
	if err != nil {
		s.Close(ctx)
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"run_id": s.run.ID,
		"sink":   cfg.Output.Sink,
		"claims": cfg.Claims.Backend,
	}).Debug("Registration run started")

	return s, nil
}

// round parses paths and presents their declarations as one round
func (s *session) round(ctx context.Context, paths ...string) (*registration.RoundResult, error) {
	var files []*descriptors.File
	for _, path := range paths {
		parsed, err := s.parser.ParseDir(ctx, path)
		if err != nil {
			return nil, err
		}
		files = append(files, parsed...)
	}
	return s.roundFiles(ctx, files)
}

func (s *session) roundFiles(ctx context.Context, files []*descriptors.File) (*registration.RoundResult, error) {
	result, err := s.processor.Process(ctx, s.host.Round(files))
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"accepted": result.Accepted,
		"rejected": result.Rejected,
		"skipped":  result.Skipped,
	}).Info("Round processed")

	return result, nil
}

// finish runs the final round
func (s *session) finish(ctx context.Context) (*registration.RoundResult, error) {
	result, err := s.processor.Process(ctx, registration.Round{Over: true})
	if err != nil {
		if errors.Is(err, registration.ErrRunFinished) {
			s.log.Debug("Run already finished")
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"status":   result.Write,
		"entries":  result.Entries,
		"errors":   s.collector.Errors(),
		"warnings": s.collector.Warnings(),
	}).Info("Registration run finished")

	return result, nil
}

// exitErr returns an ExitError when any error diagnostic was reported
func (s *session) exitErr() error {
	if !s.collector.HasErrors() {
		return nil
	}
	return &ExitError{Code: 1, Message: fmt.Sprintf("%d error(s) reported", s.collector.Errors())}
}

// Close releases the Redis connection and flushes telemetry
func (s *session) Close(ctx context.Context) {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.log.WithError(err).Warn("Failed to close redis client")
		}
	}
	if s.otel != nil {
		if err := s.otel.Shutdown(ctx); err != nil {
			s.log.WithError(err).Warn("Failed to shut down OpenTelemetry")
		}
	}
}
