// Package pipeline provides the reduce → render pipeline shared by the CLI
// and the HTTP server.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Reduce: collapse a polymer into a reduction forest, or decode a
//     license into its tree
//  2. Render: draw the result in the requested formats (SVG, PNG, PDF, JSON)
//
// Both stages are cached by a [Runner] through [cache.Cache], keyed on a hash
// of the input and every option that changes the output.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	opts := pipeline.DefaultOptions(pipeline.KindPolymer)
//	opts.Ignored = "c"
//	opts.Formats = []string{"svg", "png"}
//	result, err := runner.Execute(ctx, input, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/polytree/pkg/cache"
	"github.com/matzehuels/polytree/pkg/chain"
	"github.com/matzehuels/polytree/pkg/errors"
	"github.com/matzehuels/polytree/pkg/license"
	"github.com/matzehuels/polytree/pkg/preset"
	"github.com/matzehuels/polytree/pkg/render/licensetree"
	"github.com/matzehuels/polytree/pkg/render/polymer"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

// Input kinds.
const (
	KindPolymer = preset.KindPolymer
	KindLicense = preset.KindLicense
)

// Visualization types.
const (
	// VizTypeTurtle draws the tree with turtle graphics.
	VizTypeTurtle = "turtle"
	// VizTypeNodelink lays the tree out with Graphviz.
	VizTypeNodelink = "nodelink"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizTypeTurtle

// discard is the logger used when none is configured.
var discard = log.NewWithOptions(io.Discard, log.Options{})

// DefaultScale is the default PNG scale factor.
const DefaultScale = 1.0

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizTypeTurtle:   true,
	VizTypeNodelink: true,
}

// ValidKinds is the set of supported input kinds.
var ValidKinds = map[string]bool{
	KindPolymer: true,
	KindLicense: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for server requests.
type Options struct {
	Kind string `json:"kind"`

	// Reduce options
	Ignored  string `json:"ignored,omitempty"`   // unit excluded from reactions
	HideRoot bool   `json:"hide_root,omitempty"` // drop the synthetic root
	Prefix   int    `json:"prefix,omitempty"`    // reduce only the first Prefix units
	Strict   bool   `json:"strict,omitempty"`    // reject polymers with non-letters

	// Render options
	VizType  string             `json:"viz_type,omitempty"`
	Formats  []string           `json:"formats,omitempty"`
	Detailed bool               `json:"detailed,omitempty"` // nodelink: show subtree sizes and values
	Scale    float64            `json:"scale,omitempty"`    // PNG scale factor
	Polymer  polymer.Params     `json:"polymer"`
	License  licensetree.Params `json:"license"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// DefaultOptions returns options for kind with the default renderer
// parameters.
func DefaultOptions(kind string) Options {
	return Options{
		Kind:    kind,
		VizType: DefaultVizType,
		Formats: []string{FormatSVG},
		Scale:   DefaultScale,
		Polymer: polymer.DefaultParams(),
		License: licensetree.DefaultParams(),
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Forest is the reduction of a polymer input.
	Forest chain.Forest

	// License is the decoded tree of a license input.
	License *license.Node

	// InputHash is the content hash of the input.
	InputHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nodes      int // nodes in the tree, without the synthetic root
	Trunk      int // surviving polymer units
	ReduceTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ReduceHit bool // Whether the reduction came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return errors.New(errors.ErrCodeInvalidVizType,
			"invalid viz_type: %q (must be one of: turtle, nodelink)", vizType)
	}
	return nil
}

// ValidateKind checks that an input kind is valid.
func ValidateKind(kind string) error {
	if !ValidKinds[kind] {
		return errors.New(errors.ErrCodeInvalidKind,
			"invalid kind: %q (must be one of: polymer, license)", kind)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForReduce(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForReduce checks the options used by the reduce stage.
func (o *Options) ValidateForReduce() error {
	if err := ValidateKind(o.Kind); err != nil {
		return err
	}
	if o.Ignored != "" {
		if o.Kind != KindPolymer {
			return errors.New(errors.ErrCodeInvalidParameter, "ignored unit only applies to polymers")
		}
		if err := errors.ValidateSymbol(o.Ignored); err != nil {
			return err
		}
	}
	if o.Prefix < 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "prefix must not be negative, got %d", o.Prefix)
	}
	if o.Logger == nil {
		o.Logger = discard
	}
	return nil
}

// SetRenderDefaults sets default values for rendering. Zero renderer
// parameters are replaced by the defaults.
func (o *Options) SetRenderDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Polymer == (polymer.Params{}) {
		o.Polymer = polymer.DefaultParams()
	}
	if o.License == (licensetree.Params{}) {
		o.License = licensetree.DefaultParams()
	}
	if o.Logger == nil {
		o.Logger = discard
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateKind(o.Kind); err != nil {
		return err
	}
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "scale must be positive, got %g", o.Scale)
	}
	if !o.IsTurtle() {
		return nil
	}
	if o.Kind == KindPolymer {
		return o.Polymer.Validate()
	}
	return o.License.Validate()
}

// ApplyPreset copies the parameters of p into o. The preset's ignored unit
// is used only when o has none.
func (o *Options) ApplyPreset(p preset.Preset) error {
	if o.Kind != "" && o.Kind != p.Kind {
		return errors.New(errors.ErrCodeInvalidPreset,
			"preset %s renders %s input, not %s", p.Name, p.Kind, o.Kind)
	}
	o.Kind = p.Kind
	switch {
	case p.Polymer != nil:
		o.Polymer = *p.Polymer
	case p.License != nil:
		o.License = *p.License
	}
	if o.Ignored == "" {
		o.Ignored = p.Ignored
	}
	o.validated = false
	return nil
}

// IsTurtle returns true if this is a turtle visualization.
func (o *Options) IsTurtle() bool {
	return o.VizType == "" || o.VizType == VizTypeTurtle
}

// IsNodelink returns true if this is a nodelink visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == VizTypeNodelink
}

// ReduceOptions returns the reducer options for o.
func (o *Options) ReduceOptions() []chain.Option {
	var opts []chain.Option
	if o.Ignored != "" {
		opts = append(opts, chain.WithIgnored(chain.Symbol(o.Ignored[0])))
	}
	if o.HideRoot {
		opts = append(opts, chain.WithoutRoot())
	}
	return opts
}

// ForestKeyOpts returns cache key options for the reduce stage.
func (o *Options) ForestKeyOpts() cache.ForestKeyOpts {
	return cache.ForestKeyOpts{
		Ignored:     strings.ToLower(o.Ignored),
		IncludeRoot: !o.HideRoot,
		Prefix:      o.Prefix,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Kind:    o.Kind,
		VizType: o.VizType,
		Format:  format,
		Forest:  o.ForestKeyOpts(),
	}
	if format == FormatJSON {
		return k
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	if o.IsNodelink() {
		k.Detailed = o.Detailed
		return k
	}
	var params any = o.Polymer
	if o.Kind == KindLicense {
		params = o.License
	}
	k.ParamsHash, _ = cache.HashValue(params)
	return k
}
