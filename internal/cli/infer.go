package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	orerrors "github.com/matzehuels/orrery/pkg/errors"
	"github.com/matzehuels/orrery/pkg/infer"
	"github.com/matzehuels/orrery/pkg/planet"
)

// inferCommand creates the infer command.
func (c *CLI) inferCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "infer [list.json]",
		Short: "Guess parent links for a flat list of names",
		Long: `Guess parent links for a flat list of names.

The input is a JSON array of objects with a "name" field. A name's parent is
the first other name in the list that it contains, so "Rock" becomes the
parent of "Baroque Rock". The result is a hierarchy file that 'layout' reads.

Containment is a rough heuristic: review the output before laying it out.
Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInfer(cmd, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.hierarchy.json, stdout for stdin)")
	return cmd
}

func (c *CLI) runInfer(cmd *cobra.Command, input, output string) error {
	var r io.Reader = cmd.InOrStdin()
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			if os.IsNotExist(err) {
				return orerrors.Wrap(orerrors.ErrCodeFileNotFound, err, "input file %s not found", input)
			}
			return err
		}
		defer f.Close()
		r = f
	}

	records, err := infer.DecodeList(r)
	if err != nil {
		return err
	}
	coll, err := infer.Collection(records)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(coll, "", "  ")
	if err != nil {
		return fmt.Errorf("encode hierarchy: %w", err)
	}
	data = append(data, '\n')

	if input == "-" && output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	path := outputPath(output, input, ".hierarchy.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}

	roots := 0
	for _, b := range coll.Bodies() {
		if v, _ := b.Attrs.Get(planet.ParentKey); v == nil {
			roots++
		}
	}
	c.Logger.Debug("inferred parents", "names", coll.Len(), "roots", roots)

	printSuccess("Inferred %d parent links", coll.Len()-roots)
	printFile(path)
	printStats(coll.Len(), roots, false)
	printNewline()
	printNextStep("Lay out", appName+" layout "+path)
	return nil
}
