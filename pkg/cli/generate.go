package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/platinummonkey/langreg/pkg/diagnostics"
	"github.com/platinummonkey/langreg/pkg/registration"
)

func newGenerateCommand(stdout, stderr io.Writer) *Command {
	cmd := &Command{
		Name:        "generate",
		Description: "Validate registered languages and write the registry artifact",
		Flags:       flag.NewFlagSet("generate", flag.ContinueOnError),
	}

	var opts commonOptions
	opts.register(cmd.Flags)
	dryRun := cmd.Flags.Bool("dry-run", false, "Print the artifact to stdout instead of writing it")
	cmd.Flags.SetOutput(stderr)

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if cmd.Flags.NArg() == 0 {
			return fmt.Errorf("at least one descriptor path is required")
		}
		if *dryRun {
			opts.sink = "stdout"
		}
		return runGenerate(context.Background(), &opts, cmd.Flags.Args(), stdout, stderr)
	}

	return cmd
}

// runGenerate presents each path as one round and then finalizes the run
func runGenerate(ctx context.Context, opts *commonOptions, paths []string, stdout, stderr io.Writer) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}

	s, err := newSession(ctx, cfg, stdout, stderr, diagnostics.NewWriterReporter(stderr))
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	for _, path := range paths {
		if _, err := s.round(ctx, path); err != nil {
			return fmt.Errorf("round for %s failed: %w", path, err)
		}
	}

	result, err := s.finish(ctx)
	if err != nil {
		return err
	}

	if result.Write == registration.WriteWritten && cfg.Output.Sink != "stdout" {
		fmt.Fprintf(stderr, "Wrote %d registration(s) to %s\n", result.Entries, registration.ArtifactPath)
	}

	return s.exitErr()
}
