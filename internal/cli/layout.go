package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	orerrors "github.com/matzehuels/orrery/pkg/errors"
	"github.com/matzehuels/orrery/pkg/pipeline"
	"github.com/matzehuels/orrery/pkg/planet"
)

// planetsSuffix marks files written by the layout command.
const planetsSuffix = ".planets.json"

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "layout [file]",
		Short: "Compute orbital placements for a hierarchy",
		Long: `Compute orbital placements for a hierarchy.

The input is a JSON object (or TOML document) mapping node ids to attribute
records; a "parent" attribute links a node to its parent. Every record is
written back with its ring radius, starting angle theta0, depth, angular
speed omega and hierarchical mass added. Other attributes pass through.

With --mode jitter bodies are scattered on spheres around their parents
instead, and x, y, z and size are emitted.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options(cmd, c.Config.Layout)
			out := outputPath(output, args[0], planetsSuffix)
			if watch {
				return c.watchLayout(cmd.Context(), args[0], out, opts, flags.noCache)
			}
			return c.runLayout(cmd.Context(), args[0], out, opts, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>"+planetsSuffix+")")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "recompute whenever the input changes")
	flags.register(cmd)

	return cmd
}

// runLayout reads input, computes the layout and writes output.
func (c *CLI) runLayout(ctx context.Context, input, output string, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	return c.layoutOnce(ctx, runner, input, output, opts)
}

func (c *CLI) layoutOnce(ctx context.Context, runner *pipeline.Runner, input, output string, opts pipeline.Options) error {
	coll, err := planet.ReadFile(input)
	if err != nil {
		return err
	}

	spinner := startSpinner(ctx, fmt.Sprintf("Computing %s layout...", modeName(opts)))

	sys, cacheHit, err := runner.LayoutWithCacheInfo(ctx, coll, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := writeSystem(sys, output); err != nil {
		return err
	}

	st := sys.Stats()
	printSuccess("Layout complete")
	printFile(output)
	printStats(st.Bodies, st.Roots, cacheHit)
	printNewline()
	printNextStep("Render", appName+" visualize "+output)
	return nil
}

// loadSystem reads a finished layout, or lays out a hierarchy file. A
// finished layout is read in opts.Mode, which must match the mode it was
// written with.
func loadSystem(ctx context.Context, runner *pipeline.Runner, path string, opts pipeline.Options) (*planet.System, error) {
	if strings.HasSuffix(path, planetsSuffix) {
		mode := planet.Mode(opts.Mode)
		if mode == "" {
			mode = planet.Mode(pipeline.DefaultMode)
		}
		return readSystem(path, mode)
	}
	coll, err := planet.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sys, err := runner.Layout(ctx, coll, opts)
	if err != nil {
		return nil, fmt.Errorf("compute layout: %w", err)
	}
	return sys, nil
}

func readSystem(path string, mode planet.Mode) (*planet.System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, orerrors.Wrap(orerrors.ErrCodeFileNotFound, err, "layout file %s not found", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	sys, err := planet.DecodeSystem(data, mode)
	if err != nil {
		return nil, fmt.Errorf("load layout %s: %w", path, err)
	}
	return sys, nil
}

func writeSystem(sys *planet.System, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	if err := sys.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return f.Close()
}

func modeName(opts pipeline.Options) string {
	if opts.Mode == "" {
		return pipeline.DefaultMode
	}
	return opts.Mode
}
