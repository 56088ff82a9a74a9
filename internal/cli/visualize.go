package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orrery/pkg/pipeline"
)

// visualizeCommand creates the visualize command.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
		asDOT  bool
		scale  float64
		labels bool
	)

	cmd := &cobra.Command{
		Use:   "visualize [file]",
		Short: "Render a layout as SVG or DOT",
		Long: `Render a layout as SVG or Graphviz DOT.

Bodies are drawn at their computed positions, sized by mass and linked to
their parents. The input is a hierarchy file, laid out with the given flags,
or a finished .planets.json layout.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options(cmd, c.Config.Layout)
			opts.Formats = []string{pipeline.FormatSVG}
			if asDOT {
				opts.Formats = []string{pipeline.FormatDOT}
			}
			opts.Scale = scale
			opts.Labels = labels
			if err := opts.ValidateForRender(); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], output, opts, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.svg or <input>.dot)")
	cmd.Flags().BoolVar(&asDOT, "dot", false, "write Graphviz DOT instead of SVG")
	cmd.Flags().Float64Var(&scale, "scale", 0, "inches per layout unit (default: 0.01)")
	cmd.Flags().BoolVar(&labels, "labels", false, "label bodies with their ids")
	flags.register(cmd)

	return cmd
}

// runVisualize lays out or loads input and renders it.
func (c *CLI) runVisualize(ctx context.Context, input, output string, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sys, err := loadSystem(ctx, runner, input, opts)
	if err != nil {
		return err
	}

	format := opts.Formats[0]
	spinner := startSpinner(ctx, fmt.Sprintf("Rendering %s...", format))

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, sys, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	path := outputPath(output, input, "."+format)
	if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}

	st := sys.Stats()
	printSuccess("Rendered %s", format)
	printFile(path)
	printStats(st.Bodies, st.Roots, cacheHit)
	return nil
}
