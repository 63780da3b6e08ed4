package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/infcat/pkg/catalog"
)

// runBuild resolves the descriptor and builds the catalog.
func (c *CLI) runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := commandLogger(cmd)

	opts := c.flags.pipelineOptions(args)
	if opts.OutputPath == "" || opts.DriverDir == "" {
		return fmt.Errorf("--out and --drv-path are required")
	}
	opts.Logger = logger

	runner, err := c.newRunner(ctx, c.builder())
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	prog.done("catalog ready", "out", opts.OutputPath, "files", len(result.Files))

	printSuccess("Built %s", StyleHighlight.Render(opts.OutputPath))
	if result.HardwareID != "" {
		printKeyValue("hwid", result.HardwareID)
	} else {
		printWarning("No hardware id found; the catalog carries no HWID attribute")
	}
	printStats(len(result.Files), result.CacheHit)
	if c.flags.verbose {
		for _, f := range result.Files {
			printFile(f)
		}
	}
	return nil
}

// builder returns the catalog builder selected by the flags.
func (c *CLI) builder() catalog.Builder {
	if c.flags.cdfOnly {
		return &catalog.CDFBuilder{}
	}
	args := c.cfg.Makecat.Args
	return &spinnerBuilder{
		inner:   &catalog.ExecBuilder{Command: c.flags.makecat, Args: args},
		message: fmt.Sprintf("Running %s...", c.flags.makecat),
	}
}

// spinnerBuilder shows a spinner while the external catalog tool runs.
type spinnerBuilder struct {
	inner   catalog.Builder
	message string
}

func (b *spinnerBuilder) Build(ctx context.Context, req catalog.Request) error {
	s := newSpinnerWithContext(ctx, b.message)
	s.Start()
	if err := b.inner.Build(ctx, req); err != nil {
		s.StopWithError("Catalog tool failed")
		return err
	}
	s.Stop()
	return nil
}
