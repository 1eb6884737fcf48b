// Package render turns polymer reductions and license trees into images.
//
// # Overview
//
// Rendering happens in two stages. A renderer produces an SVG document,
// then [ToPNG] or [ToPDF] converts it when another format is requested:
//
//   - Turtle drawings (in the [polymer] and [licensetree] subpackages),
//     built on the [turtle] vector recorder
//   - Node-link diagrams (in the [nodelink] subpackage), laid out by Graphviz
//
// # Format Conversion
//
// [ToPNG] rasterizes in pure Go, so PNG output works without external tools.
// [ToPDF] uses the external rsvg-convert tool (from librsvg).
//
//	svg, err := polymer.Render(forest, polymer.DefaultParams())
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//	pdf, err := render.ToPDF(svg)
//
// # Parameters
//
// Renderer parameters are plain structs that expose their tunable values
// through the [param] package, which the CLI, server, and interactive tuner
// use to set them by name.
//
// [polymer]: github.com/matzehuels/polytree/pkg/render/polymer
// [licensetree]: github.com/matzehuels/polytree/pkg/render/licensetree
// [turtle]: github.com/matzehuels/polytree/pkg/render/turtle
// [nodelink]: github.com/matzehuels/polytree/pkg/render/nodelink
// [param]: github.com/matzehuels/polytree/pkg/render/param
package render
