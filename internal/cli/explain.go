package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/infcat/pkg/render/tracegraph"
)

// explainCommand draws the resolver walk.
func (c *CLI) explainCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Draw how an INF resolves, as DOT or SVG",
		Long: `Explain traces the walk from [Manufacturer] through the models, device and
install sections down to each copied file, and renders it as a Graphviz
graph. Sections that are referenced but absent are drawn dashed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "dot" && format != "svg" {
				return fmt.Errorf("invalid format %q (must be dot or svg)", format)
			}
			result, err := c.resolveOnly(cmd, nil, true)
			if err != nil {
				return err
			}

			data := []byte(tracegraph.ToDOT(result.Trace))
			if format == "svg" {
				if data, err = tracegraph.RenderSVG(string(data)); err != nil {
					return err
				}
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess("Wrote %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	formatCompletion(cmd, "dot", "svg")
	return cmd
}
