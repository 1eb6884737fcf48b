// Package pkg provides the core libraries for polytree.
//
// # Overview
//
// Polytree reduces polymers, where adjacent units of the same type and
// opposite polarity react and vanish, and keeps the full history of the
// reduction as a tree. It also decodes license trees, a compact integer
// encoding of a tree with metadata. Both kinds of tree are drawn as turtle
// graphics or node-link diagrams.
//
//  1. [chain] - Polymer reduction into a forest of reaction trees
//  2. [license] - License tree decoding and aggregate values
//  3. [render] - Turtle and node-link renderers, PNG and PDF conversion
//  4. [preset] - Named render parameter sets (TOML, YAML)
//  5. [pipeline] - Orchestration (reduce → render) with caching
//  6. [cache] - File, Redis and null caches with content-addressed keys
//  7. [server] - HTTP API over the pipeline
//
// # Architecture
//
// The typical data flow:
//
//	Polymer or license input
//	         ↓
//	    [chain] / [license] (reduce or decode)
//	         ↓
//	    [render] (turtle drawing or Graphviz layout)
//	         ↓
//	    SVG/PNG/PDF/JSON output
//
// # Quick Start
//
// Reduce a polymer and draw it:
//
//	import (
//	    "github.com/matzehuels/polytree/pkg/chain"
//	    "github.com/matzehuels/polytree/pkg/render/polymer"
//	)
//
//	forest := chain.ReduceString("dabAcCaCBAcCcaDA", chain.WithIgnored('c'))
//	svg, err := polymer.Render(forest, polymer.DefaultParams())
//
// Or run the whole pipeline with caching:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	result, err := runner.Execute(ctx, input, pipeline.DefaultOptions(pipeline.KindPolymer))
//
// [chain]: github.com/matzehuels/polytree/pkg/chain
// [license]: github.com/matzehuels/polytree/pkg/license
// [render]: github.com/matzehuels/polytree/pkg/render
// [preset]: github.com/matzehuels/polytree/pkg/preset
// [pipeline]: github.com/matzehuels/polytree/pkg/pipeline
// [cache]: github.com/matzehuels/polytree/pkg/cache
// [server]: github.com/matzehuels/polytree/pkg/server
package pkg
