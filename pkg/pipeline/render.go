package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/polytree/pkg/chain"
	"github.com/matzehuels/polytree/pkg/errors"
	"github.com/matzehuels/polytree/pkg/license"
	"github.com/matzehuels/polytree/pkg/render"
	"github.com/matzehuels/polytree/pkg/render/licensetree"
	"github.com/matzehuels/polytree/pkg/render/nodelink"
	"github.com/matzehuels/polytree/pkg/render/polymer"
)

// RenderForest generates output artifacts for a reduction forest in the
// requested formats.
func RenderForest(ctx context.Context, f chain.Forest, opts Options) (map[string][]byte, error) {
	if opts.IsNodelink() {
		return renderFormats(ctx, opts, f.Stats().Units,
			func(ctx context.Context) ([]byte, error) {
				return nodelink.RenderSVG(ctx, nodelink.ForestDOT(f, nodelink.Options{Detailed: opts.Detailed}))
			},
			func() ([]byte, error) { return chain.MarshalForest(f) })
	}
	return renderFormats(ctx, opts, 0,
		func(context.Context) ([]byte, error) { return polymer.Render(f, opts.Polymer) },
		func() ([]byte, error) { return chain.MarshalForest(f) })
}

// RenderLicense generates output artifacts for a license tree in the
// requested formats.
func RenderLicense(ctx context.Context, root *license.Node, opts Options) (map[string][]byte, error) {
	if opts.IsNodelink() {
		return renderFormats(ctx, opts, root.Count(),
			func(ctx context.Context) ([]byte, error) {
				return nodelink.RenderSVG(ctx, nodelink.LicenseDOT(root, nodelink.Options{Detailed: opts.Detailed}))
			},
			func() ([]byte, error) { return license.Marshal(root) })
	}
	return renderFormats(ctx, opts, 0,
		func(context.Context) ([]byte, error) { return licensetree.Render(root, opts.License) },
		func() ([]byte, error) { return license.Marshal(root) })
}

// renderFormats draws the SVG at most once and derives the raster and PDF
// outputs from it. nodes is checked against the Graphviz limit when non-zero.
func renderFormats(ctx context.Context, opts Options, nodes int,
	drawSVG func(context.Context) ([]byte, error), marshal func() ([]byte, error)) (map[string][]byte, error) {

	var svg []byte
	getSVG := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		if nodes > nodelink.MaxNodes {
			return nil, errors.New(errors.ErrCodeInputTooLarge,
				"node-link diagrams are limited to %d nodes, got %d", nodelink.MaxNodes, nodes)
		}
		var err error
		svg, err = drawSVG(ctx)
		return svg, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = getSVG()
		case FormatPNG:
			if data, err = getSVG(); err == nil {
				data, err = render.ToPNG(data, opts.Scale)
			}
		case FormatPDF:
			if data, err = getSVG(); err == nil {
				data, err = render.ToPDF(data)
			}
		case FormatJSON:
			data, err = marshal()
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			if errors.GetCode(err) != "" {
				return nil, err
			}
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
