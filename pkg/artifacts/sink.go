package artifacts

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/platinummonkey/langreg/pkg/registration"
)

// Sink kinds accepted by New
const (
	KindFilesystem = "filesystem"
	KindS3         = "s3"
	KindMemory     = "memory"
	KindStdout     = "stdout"
)

// Config selects and configures a sink
type Config struct {
	Kind      string
	OutputDir string
	S3        S3Config
	Stdout    io.Writer
}

// New creates the sink described by cfg
func New(ctx context.Context, cfg Config) (registration.Sink, error) {
	switch strings.ToLower(cfg.Kind) {
	case "", KindFilesystem:
		if cfg.OutputDir == "" {
			return nil, fmt.Errorf("output directory is required for the filesystem sink")
		}
		return NewFilesystemSink(cfg.OutputDir), nil
	case KindS3:
		return NewS3Sink(ctx, cfg.S3)
	case KindMemory:
		return NewMemorySink(), nil
	case KindStdout:
		if cfg.Stdout == nil {
			return nil, fmt.Errorf("no writer configured for the stdout sink")
		}
		return registration.WriterSink(cfg.Stdout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSink, cfg.Kind)
	}
}
