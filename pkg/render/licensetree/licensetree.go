// Package licensetree draws license trees as turtle-graphics plants.
//
// Two drawing modes mirror the two ways a license tree is evaluated:
//
//   - Metadata mode walks every child in order and then lays out the
//     node's metadata entries as a row of circles, one per entry, sized by
//     the entry's value.
//   - Value mode follows the metadata references of each node instead, so a
//     child referenced twice grows twice and unreferenced children vanish.
//     Only leaves show their metadata. With stubs enabled, references to
//     missing children are drawn as short dead branches.
package licensetree

import (
	"go.uber.org/multierr"

	"github.com/matzehuels/polytree/pkg/errors"
	"github.com/matzehuels/polytree/pkg/license"
	"github.com/matzehuels/polytree/pkg/render/param"
	"github.com/matzehuels/polytree/pkg/render/turtle"
)

// Stroke classes.
const (
	ClassBase     = "base"
	ClassMetadata = "metadata"
)

// MaxPrimitives is the most lines and circles Render will draw. Value mode
// redraws a child once per reference, so a small input can ask for an
// exponential number of primitives.
const MaxPrimitives = 500_000

// Params controls the license tree drawing.
type Params struct {
	Width  int `toml:"width" yaml:"width" json:"width"`
	Height int `toml:"height" yaml:"height" json:"height"`

	StartX        float64 `toml:"start_x" yaml:"start_x" json:"start_x"`
	StartY        float64 `toml:"start_y" yaml:"start_y" json:"start_y"`
	StartAngle    float64 `toml:"start_angle" yaml:"start_angle" json:"start_angle"`
	Zoom          float64 `toml:"zoom" yaml:"zoom" json:"zoom"`
	BaseWeight    float64 `toml:"base_weight" yaml:"base_weight" json:"base_weight"`
	StepSize      float64 `toml:"step_size" yaml:"step_size" json:"step_size"`
	BaseAngle     float64 `toml:"base_angle" yaml:"base_angle" json:"base_angle"`
	BaseScale     float64 `toml:"base_scale" yaml:"base_scale" json:"base_scale"`
	BranchAngle   float64 `toml:"branch_angle" yaml:"branch_angle" json:"branch_angle"`
	BranchScale   float64 `toml:"branch_scale" yaml:"branch_scale" json:"branch_scale"`
	MetadataScale float64 `toml:"metadata_scale" yaml:"metadata_scale" json:"metadata_scale"`

	// Values selects value mode; otherwise metadata mode is drawn.
	Values bool `toml:"values" yaml:"values" json:"values"`
	// Stubs draws references to missing children in value mode.
	Stubs bool `toml:"stubs" yaml:"stubs" json:"stubs"`

	Background    string `toml:"background_color" yaml:"background_color" json:"background_color"`
	BaseColor     string `toml:"base_color" yaml:"base_color" json:"base_color"`
	MetadataColor string `toml:"metadata_color" yaml:"metadata_color" json:"metadata_color"`
}

// DefaultParams returns parameters that draw the tree upright, growing
// from the bottom of the canvas, in value mode.
func DefaultParams() Params {
	return Params{
		Width:         800,
		Height:        800,
		StartX:        0,
		StartY:        50,
		StartAngle:    -1.57,
		Zoom:          4,
		BaseWeight:    2,
		StepSize:      20,
		BaseAngle:     -0.3,
		BaseScale:     0.85,
		BranchAngle:   0.4,
		BranchScale:   0.8,
		MetadataScale: 1,
		Values:        true,
		Background:    "#f0f0f0",
		BaseColor:     "#808080",
		MetadataColor: "#ff0000",
	}
}

// Fields exposes the tunable parameters of p.
func (p *Params) Fields() []param.Field {
	return []param.Field{
		param.Number("start-x", "horizontal offset of the root", &p.StartX, 5),
		param.Number("start-y", "vertical offset of the root", &p.StartY, 5),
		param.Number("start-angle", "initial heading, in radians", &p.StartAngle, 0.05),
		param.Number("zoom", "overall scale", &p.Zoom, 0.1),
		param.Number("base-weight", "stroke width", &p.BaseWeight, 0.25),
		param.Number("step-size", "length of one branch segment", &p.StepSize, 1),
		param.Number("base-angle", "turn after each branch", &p.BaseAngle, 0.02),
		param.Number("base-scale", "shrink after each branch", &p.BaseScale, 0.01),
		param.Number("branch-angle", "turn into a child", &p.BranchAngle, 0.02),
		param.Number("branch-scale", "shrink into a child", &p.BranchScale, 0.01),
		param.Number("metadata-scale", "size of metadata circles", &p.MetadataScale, 0.05),
		param.Toggle("values", "follow metadata references instead of drawing every child", &p.Values),
		param.Toggle("stubs", "draw references to missing children", &p.Stubs),
		param.Color("background-color", "canvas color", &p.Background),
		param.Color("base-color", "branch color", &p.BaseColor),
		param.Color("metadata-color", "metadata circle color", &p.MetadataColor),
	}
}

// Validate reports every invalid parameter.
func (p Params) Validate() error {
	err := param.Validate(p.Fields())
	err = multierr.Append(err, param.Positive("zoom", p.Zoom))
	err = multierr.Append(err, param.Positive("step-size", p.StepSize))
	err = multierr.Append(err, param.Positive("width", float64(p.Width)))
	err = multierr.Append(err, param.Positive("height", float64(p.Height)))
	return err
}

// Render draws the tree rooted at root and returns an SVG document.
func Render(root *license.Node, p Params) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if n := Primitives(root, p, MaxPrimitives); n > MaxPrimitives {
		return nil, errors.New(errors.ErrCodeInputTooLarge,
			"license drawing is limited to %d primitives", MaxPrimitives)
	}
	t := Draw(root, p)
	return t.SVG(
		turtle.WithSize(p.Width, p.Height),
		turtle.WithBackground(p.Background),
		turtle.WithClass(ClassBase, p.BaseColor),
		turtle.WithClass(ClassMetadata, p.MetadataColor),
	), nil
}

// Draw traces the tree with a turtle centered on the canvas. Parameters are
// not validated.
func Draw(root *license.Node, p Params) *turtle.Turtle {
	d := drawer{p: p, t: turtle.New(p.BaseWeight)}
	d.t.Translate(float64(p.Width)/2, float64(p.Height)/2)
	d.t.Scale(p.Zoom, p.Zoom)
	d.t.Translate(p.StartX, p.StartY)
	d.t.Rotate(p.StartAngle)
	if root != nil {
		if p.Values {
			d.values(root)
		} else {
			d.metadata(root)
		}
	}
	return d.t
}

// Primitives counts the lines and circles Draw would record for root,
// without drawing. Counting stops just above limit, so the result is
// min(count, limit+1).
func Primitives(root *license.Node, p Params, limit int) int {
	if root == nil {
		return 0
	}
	memo := make(map[*license.Node]int)
	clamp := func(n int) int { return min(n, limit+1) }

	var count func(n *license.Node) int
	count = func(n *license.Node) int {
		if c, ok := memo[n]; ok {
			return c
		}
		total := 0
		switch {
		case !p.Values:
			for _, c := range n.Children {
				total = clamp(total + 1 + count(c))
			}
			total = clamp(total + 1 + len(n.Metadata))
		case len(n.Children) == 0:
			total = clamp(len(n.Metadata))
		default:
			for _, entry := range n.Metadata {
				if child, ok := n.Ref(entry); ok {
					total = clamp(total + 1 + count(child))
				} else if p.Stubs {
					total = clamp(total + 2)
				}
			}
		}
		memo[n] = total
		return total
	}
	return count(root)
}

type drawer struct {
	p Params
	t *turtle.Turtle
}

// branch draws a segment, runs fn turned into a side branch, and turns for
// the next sibling.
func (d *drawer) branch(fn func()) {
	d.t.ForwardLine(d.p.StepSize, ClassBase)

	d.t.Save()
	d.t.Rotate(d.p.BranchAngle)
	d.t.Scale(d.p.BranchScale, d.p.BranchScale)
	fn()
	d.t.Restore()

	d.t.Rotate(d.p.BaseAngle)
	d.t.Scale(d.p.BaseScale, d.p.BaseScale)
}

func (d *drawer) metadata(n *license.Node) {
	for _, c := range n.Children {
		d.branch(func() { d.metadata(c) })
	}
	d.t.ForwardLine(d.p.StepSize, ClassBase)
	d.circles(n.Metadata)
}

func (d *drawer) values(n *license.Node) {
	if len(n.Children) == 0 {
		d.circles(n.Metadata)
		return
	}
	for _, entry := range n.Metadata {
		child, ok := n.Ref(entry)
		switch {
		case ok:
			d.branch(func() { d.values(child) })
		case d.p.Stubs:
			d.branch(func() { d.t.ForwardLine(d.p.StepSize/2, ClassBase) })
		}
	}
}

func (d *drawer) circles(metadata []int) {
	d.t.Scale(d.p.MetadataScale, d.p.MetadataScale)
	for _, v := range metadata {
		d.t.Circle(float64(v), ClassMetadata)
	}
}
