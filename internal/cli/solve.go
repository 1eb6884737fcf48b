package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/polytree/pkg/chain"
	"github.com/matzehuels/polytree/pkg/errors"
	"github.com/matzehuels/polytree/pkg/license"
	"github.com/matzehuels/polytree/pkg/pipeline"
)

// solveCommand creates the solve command, which prints the numeric answers
// for an input without drawing anything.
func (c *CLI) solveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Print the numeric answers for an input",
	}
	cmd.AddCommand(c.solvePolymerCommand())
	cmd.AddCommand(c.solveLicenseCommand())
	return cmd
}

func (c *CLI) solvePolymerCommand() *cobra.Command {
	var ignored string
	cmd := &cobra.Command{
		Use:   "polymer [file]",
		Short: "Print the reduced length and the best unit to remove",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, name, err := readInput(args, pipeline.KindPolymer)
			if err != nil {
				return err
			}
			seq := chain.Parse(data)
			if err := errors.ValidateInputSize(len(seq)); err != nil {
				return err
			}

			var opts []chain.Option
			if ignored != "" {
				if err := errors.ValidateSymbol(ignored); err != nil {
					return err
				}
				opts = append(opts, chain.WithIgnored(chain.Symbol(ignored[0])))
			}

			prog := newProgress(loggerFromContext(cmd.Context()))
			length := chain.CollapsedLen(seq, opts...)
			unit, best := chain.Shortest(seq)
			prog.done("solved " + name)

			printKeyValue("Units", strconv.Itoa(len(seq)))
			printKeyValue("Reduced length", strconv.Itoa(length))
			printKeyValue("Shortest unit", unit.String())
			printKeyValue("Shortest length", strconv.Itoa(best))
			return nil
		},
	}
	cmd.Flags().StringVar(&ignored, "ignored", "", "unit type that never reacts")
	return cmd
}

func (c *CLI) solveLicenseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "license [file]",
		Short: "Print the metadata sum and root value of a license tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, name, err := readInput(args, pipeline.KindLicense)
			if err != nil {
				return err
			}
			root, err := license.Parse(string(data))
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("decoded license", "input", name)

			printKeyValue("Nodes", strconv.Itoa(root.Count()))
			printKeyValue("Metadata sum", strconv.Itoa(root.SumMetadata()))
			printKeyValue("Root value", strconv.Itoa(root.Value()))
			return nil
		},
	}
}
