package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/infcat/pkg/catalog"
	"github.com/matzehuels/infcat/pkg/pipeline"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// resolveCommand prints the manifest without building a catalog.
func (c *CLI) resolveCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "resolve [file]...",
		Short: "Print the hardware id and file list of an INF",
		Long: `Resolve walks --inf-file and prints the hardware id and the ordered file
list a catalog would cover. Trailing files are appended by base name.

Text output is the hardware id on the first line (empty if none) followed by
one file per line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case formatText, formatJSON, formatYAML:
			default:
				return fmt.Errorf("invalid format %q (must be text, json or yaml)", format)
			}
			result, err := c.resolveOnly(cmd, args, false)
			if err != nil {
				return err
			}
			switch format {
			case formatJSON:
				return catalog.WriteManifest(cmd.OutOrStdout(), result.Manifest())
			case formatYAML:
				return catalog.WriteManifestYAML(cmd.OutOrStdout(), result.Manifest())
			}
			return writeText(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatText, "output format: text, json or yaml")
	formatCompletion(cmd, formatText, formatJSON, formatYAML)
	return cmd
}

// resolveOnly runs the resolve stage and appends the trailing files under
// the same file limit as a build.
func (c *CLI) resolveOnly(cmd *cobra.Command, args []string, trace bool) (*pipeline.Result, error) {
	ctx := cmd.Context()
	if c.flags.infFile == "" {
		return nil, fmt.Errorf("--inf-file is required")
	}

	opts := c.flags.pipelineOptions(args)
	opts.Trace = trace
	opts.Logger = commandLogger(cmd)

	runner, err := c.newRunner(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	res, hit, err := runner.Resolve(ctx, opts)
	if err != nil {
		return nil, err
	}
	result := &pipeline.Result{
		Descriptor: opts.InfPath,
		HardwareID: res.HardwareID,
		Files:      res.Files,
		Trace:      res.Trace,
		OS:         opts.OS,
		OSAttr:     opts.OSAttr,
		CacheHit:   hit,
	}
	if result.Files, err = opts.AppendFiles(result.Files); err != nil {
		return nil, err
	}
	return result, nil
}

func writeText(w io.Writer, r *pipeline.Result) error {
	if _, err := fmt.Fprintln(w, r.HardwareID); err != nil {
		return err
	}
	for _, f := range r.Files {
		if _, err := fmt.Fprintln(w, f); err != nil {
			return err
		}
	}
	return nil
}
