// Package nodelink renders reduction forests and license trees as
// node-link diagrams.
//
// # Overview
//
// This package produces directed tree diagrams using Graphviz, where nodes
// appear as boxes connected by arrows. It is an alternative to the turtle
// drawings for small inputs where every unit should be readable.
//
// # Usage
//
// Convert a forest or license tree to DOT format, then render to SVG:
//
//	dot := nodelink.ForestDOT(forest, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
//	dot := nodelink.LicenseDOT(root, nodelink.Options{Detailed: true})
//
// Other formats are converted from the SVG by the parent render package.
//
// Graphviz layout gets slow on large trees; callers should refuse inputs
// with more than [MaxNodes] nodes.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, which runs Graphviz compiled to WebAssembly.
package nodelink
