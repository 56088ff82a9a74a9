package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orrery/pkg/planet"
)

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var (
		flags  layoutFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "Summarize a layout ring by ring",
		Long: `Summarize a layout: body, root and leaf counts and, for radial layouts, one
row per ring with its radius, body count and angular speed.

The input is a hierarchy file, laid out with the given flags, or a finished
.planets.json layout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			sys, err := loadSystem(cmd.Context(), runner, args[0], flags.options(cmd, c.Config.Layout))
			if err != nil {
				return err
			}
			st := sys.Stats()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			printSummary(args[0], st)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	flags.register(cmd)
	return cmd
}

func printSummary(name string, st planet.Stats) {
	fmt.Fprintln(out, StyleTitle.Render(name))
	printKeyValue("Mode", string(st.Mode))
	printKeyValue("Bodies", strconv.Itoa(st.Bodies))
	printKeyValue("Roots", strconv.Itoa(st.Roots))
	printKeyValue("Leaves", strconv.Itoa(st.Leaves))
	if st.Mode != planet.ModeRadial {
		return
	}
	printKeyValue("Rings", strconv.Itoa(st.MaxDepth))
	printNewline()
	fmt.Fprintln(out, ringTable(st.Rings))
}
