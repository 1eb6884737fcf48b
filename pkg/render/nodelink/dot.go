package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/polytree/pkg/chain"
	"github.com/matzehuels/polytree/pkg/license"
)

// MaxNodes is the largest tree the pipeline hands to Graphviz. Layout time
// grows quickly beyond a few thousand nodes.
const MaxNodes = 5000

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds subtree sizes to forest labels and values to license
	// tree labels. When false, only the unit or metadata is shown.
	Detailed bool
}

const header = `digraph G {
  rankdir=TB;
  bgcolor="transparent";
  node [shape=box, style="rounded,filled", fillcolor=white, fontsize=24, margin="0.2,0.1"];
  ranksep=0.5;
  nodesep=0.3;

`

// ForestDOT converts a reduction forest to Graphviz DOT. Each forest node
// becomes the root of its own tree; surviving units are drawn bold, ignored
// units dashed and grey, and reacting units in a rounded ellipse.
func ForestDOT(f chain.Forest, opts Options) string {
	var nodes, edges bytes.Buffer
	id := 0
	var visit func(n *chain.Node, trunk bool) string
	visit = func(n *chain.Node, trunk bool) string {
		name := "n" + strconv.Itoa(id)
		id++
		attrs := forestAttrs(n, trunk, opts.Detailed)
		fmt.Fprintf(&nodes, "  %s [%s];\n", name, strings.Join(attrs, ", "))
		for _, c := range n.Children {
			fmt.Fprintf(&edges, "  %s -> %s;\n", name, visit(c, false))
		}
		return name
	}

	names := make([]string, len(f))
	for i, n := range f {
		names[i] = visit(n, true)
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	buf.Write(nodes.Bytes())
	buf.WriteString("\n")
	if len(names) > 1 {
		// Keep the forest on one rank, in stack order.
		fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(names, "; "))
		fmt.Fprintf(&buf, "  %s [style=invis];\n", strings.Join(names, " -> "))
	}
	buf.Write(edges.Bytes())
	buf.WriteString("}\n")
	return buf.String()
}

func forestAttrs(n *chain.Node, trunk, detailed bool) []string {
	label := n.Label()
	if n.IsRoot() {
		label = "root"
	}
	if detailed && !n.IsLeaf() {
		label += "\n" + fmt.Sprintf("size: %d", n.Size())
	}

	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.IsRoot():
		attrs = append(attrs, "shape=point", "width=0.2")
	case n.IsIgnored():
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	case n.Kind == chain.KindReactant:
		attrs = append(attrs, "shape=ellipse", "style=filled", "fillcolor=\"#ffe0e0\"")
	case trunk:
		attrs = append(attrs, "penwidth=3")
	}
	return attrs
}

// LicenseDOT converts a license tree to Graphviz DOT. Node labels list the
// metadata entries; in detailed mode they also show the node value.
func LicenseDOT(root *license.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString(header)

	id := 0
	var visit func(n *license.Node) string
	visit = func(n *license.Node) string {
		name := "n" + strconv.Itoa(id)
		id++
		meta := make([]string, len(n.Metadata))
		for i, m := range n.Metadata {
			meta[i] = strconv.Itoa(m)
		}
		label := "[" + strings.Join(meta, " ") + "]"
		if opts.Detailed {
			label += fmt.Sprintf("\nvalue: %d", n.Value())
		}
		fmt.Fprintf(&buf, "  %s [label=%q];\n", name, label)
		for i, c := range n.Children {
			child := visit(c)
			fmt.Fprintf(&buf, "  %s -> %s [label=\"%d\"];\n", name, child, i+1)
		}
		return name
	}
	if root != nil {
		visit(root)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// The result has a plain viewBox, so render.ToPNG can rasterize it.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized svg tag with a pixel-sized
// one anchored at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
