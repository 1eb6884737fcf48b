package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/matzehuels/polytree/pkg/chain"
	"github.com/matzehuels/polytree/pkg/errors"
	"github.com/matzehuels/polytree/pkg/license"
	"github.com/matzehuels/polytree/pkg/pipeline"
)

// treeCommand creates the tree command, which prints a reduction or license
// tree as indented text.
func (c *CLI) treeCommand() *cobra.Command {
	var maxDepth int
	var ignored string

	cmd := &cobra.Command{
		Use:   "tree polymer|license [file]",
		Short: "Print a reaction or license tree as text",
		Example: `  # Show the first two levels of the sample polymer's reaction tree
  polytree tree polymer --max-depth 2

  # Show a license tree from stdin
  echo "2 3 0 3 10 11 12 1 1 0 1 99 2 1 1 2" | polytree tree license -`,
		ValidArgs: []string{pipeline.KindPolymer, pipeline.KindLicense},
		Args:      cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := args[0]
			if err := pipeline.ValidateKind(kind); err != nil {
				return err
			}
			data, _, err := readInput(args[1:], kind)
			if err != nil {
				return err
			}

			var t *tree.Tree
			switch kind {
			case pipeline.KindPolymer:
				opts := pipeline.DefaultOptions(kind)
				opts.Ignored = ignored
				if err := opts.ValidateForReduce(); err != nil {
					return err
				}
				seq := chain.Parse(data)
				if err := errors.ValidateInputSize(len(seq)); err != nil {
					return err
				}
				t = polymerTree(chain.Reduce(seq, opts.ReduceOptions()...), maxDepth)
			case pipeline.KindLicense:
				root, err := license.Parse(string(data))
				if err != nil {
					return err
				}
				t = licenseTree(root, maxDepth)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}

	cmd.Flags().IntVarP(&maxDepth, "max-depth", "d", 3, "levels to print below the top (0 = unlimited)")
	cmd.Flags().StringVar(&ignored, "ignored", "", "polymer: unit type that never reacts")
	return cmd
}

// newTree returns a tree with the CLI's enumerator styling.
func newTree(root string) *tree.Tree {
	return tree.Root(StyleTitle.Render(root)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(StyleDim)
}

// polymerTree lays out a reduction forest. The surviving units hang off the
// root; the units they eliminated nest below them.
func polymerTree(f chain.Forest, maxDepth int) *tree.Tree {
	t := newTree(fmt.Sprintf("polymer (%d remaining)", f.TrunkLen()))
	for _, n := range f {
		t.Child(polymerNode(n, 0, maxDepth))
	}
	return t
}

func polymerNode(n *chain.Node, depth, maxDepth int) any {
	label := polymerStyle(n, depth).Render(n.Label())
	if n.IsLeaf() {
		return label
	}
	sub := tree.Root(label)
	if maxDepth > 0 && depth+1 >= maxDepth {
		return sub.Child(StyleDim.Render(fmt.Sprintf("… %d more", n.Size()-nodeSelf(n))))
	}
	for _, c := range n.Children {
		sub.Child(polymerNode(c, depth+1, maxDepth))
	}
	return sub
}

// nodeSelf is 1 when n counts towards its own Size.
func nodeSelf(n *chain.Node) int {
	if n.IsRoot() {
		return 0
	}
	return 1
}

func polymerStyle(n *chain.Node, depth int) lipgloss.Style {
	switch {
	case n.IsRoot():
		return StyleDim
	case n.IsIgnored():
		return StyleDim
	case n.Kind == chain.KindReactant:
		return styleSubtree
	case depth == 0:
		return styleTrunk
	default:
		return styleRemoved
	}
}

// licenseTree lays out a license tree with each node's metadata and value.
func licenseTree(root *license.Node, maxDepth int) *tree.Tree {
	t := newTree(fmt.Sprintf("license (%d nodes)", root.Count()))
	t.Child(licenseNode(root, 0, maxDepth))
	return t
}

func licenseNode(n *license.Node, depth, maxDepth int) any {
	label := licenseLabel(n)
	if len(n.Children) == 0 {
		return label
	}
	sub := tree.Root(label)
	if maxDepth > 0 && depth+1 >= maxDepth {
		return sub.Child(StyleDim.Render(fmt.Sprintf("… %d more", n.Count()-1)))
	}
	for _, c := range n.Children {
		sub.Child(licenseNode(c, depth+1, maxDepth))
	}
	return sub
}

func licenseLabel(n *license.Node) string {
	meta := make([]string, len(n.Metadata))
	for i, m := range n.Metadata {
		meta[i] = fmt.Sprint(m)
	}
	return StyleValue.Render(fmt.Sprintf("value %d", n.Value())) + " " +
		styleMetadata.Render("["+strings.Join(meta, " ")+"]")
}
