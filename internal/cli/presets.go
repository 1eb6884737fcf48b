package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/polytree/pkg/pipeline"
	"github.com/matzehuels/polytree/pkg/preset"
)

// presetsCommand creates the presets command, which lists the built-in
// presets.
func (c *CLI) presetsCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the built-in render presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if kind != "" {
				if err := pipeline.ValidateKind(kind); err != nil {
					return err
				}
			}

			var rows [][]string
			for _, p := range preset.Builtin() {
				if kind != "" && p.Kind != kind {
					continue
				}
				rows = append(rows, []string{p.Name, p.Kind, p.Description})
			}

			headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
				Headers("Preset", "Kind", "Description").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					switch {
					case row == table.HeaderRow:
						return headerStyle
					case col == 0:
						return StyleHighlight
					case col == 1:
						return StyleDim
					default:
						return StyleValue
					}
				})
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only list presets for polymer or license")

	cmd.AddCommand(c.presetsShowCommand())
	return cmd
}

// presetsShowCommand prints a preset as a TOML file that --preset accepts.
func (c *CLI) presetsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show name|file",
		Short: "Print a preset as TOML",
		Example: `  # Start a custom preset from a built-in one
  polytree presets show classic > mine.toml
  polytree polymer input.txt --preset mine.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := preset.Resolve(args[0])
			if err != nil {
				return err
			}
			return preset.Encode(cmd.OutOrStdout(), p)
		},
	}
}
