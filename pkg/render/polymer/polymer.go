// Package polymer draws reduction forests as branching turtle paths.
//
// Every node is a short stroke. Walking along the forest the turtle turns a
// little after each node, so surviving units curl into a spiral. The history
// of a node (everything that was eliminated on top of it) branches off to
// the side, drawn the same way one level deeper with its own turn and
// shrink factors. Ignored units end in a small filled circle.
//
// The default [Params] draw the reduction of a long polymer as a wreath.
package polymer

import (
	"math"

	"go.uber.org/multierr"

	"github.com/matzehuels/polytree/pkg/chain"
	"github.com/matzehuels/polytree/pkg/render/param"
	"github.com/matzehuels/polytree/pkg/render/turtle"
)

// Stroke classes.
const (
	ClassBase    = "base"
	ClassSubtree = "subtree"
	ClassRemoved = "removed"
)

// Params controls the polymer drawing.
type Params struct {
	Width  int `toml:"width" yaml:"width" json:"width"`
	Height int `toml:"height" yaml:"height" json:"height"`

	StartX           float64 `toml:"start_x" yaml:"start_x" json:"start_x"`
	StartY           float64 `toml:"start_y" yaml:"start_y" json:"start_y"`
	Zoom             float64 `toml:"zoom" yaml:"zoom" json:"zoom"`
	BaseWeight       float64 `toml:"base_weight" yaml:"base_weight" json:"base_weight"`
	StepSize         float64 `toml:"step_size" yaml:"step_size" json:"step_size"`
	BaseAngle        float64 `toml:"base_angle" yaml:"base_angle" json:"base_angle"`
	BaseScale        float64 `toml:"base_scale" yaml:"base_scale" json:"base_scale"`
	BranchAngle      float64 `toml:"branch_angle" yaml:"branch_angle" json:"branch_angle"`
	BranchScale      float64 `toml:"branch_scale" yaml:"branch_scale" json:"branch_scale"`
	SubtreeAngleMult float64 `toml:"subtree_angle_mult" yaml:"subtree_angle_mult" json:"subtree_angle_mult"`
	SubtreeScaleMult float64 `toml:"subtree_scale_mult" yaml:"subtree_scale_mult" json:"subtree_scale_mult"`

	Background   string `toml:"background_color" yaml:"background_color" json:"background_color"`
	BaseColor    string `toml:"base_color" yaml:"base_color" json:"base_color"`
	SubtreeColor string `toml:"subtree_color" yaml:"subtree_color" json:"subtree_color"`
	RemovedColor string `toml:"removed_color" yaml:"removed_color" json:"removed_color"`

	// DrawReactants also draws the unit that removed each node as a final
	// stroke in its history.
	DrawReactants bool `toml:"draw_reactants" yaml:"draw_reactants" json:"draw_reactants"`
}

// DefaultParams returns the holiday wreath parameters.
func DefaultParams() Params {
	return Params{
		Width:            1200,
		Height:           1200,
		StartX:           0,
		StartY:           -250,
		Zoom:             0.64,
		BaseWeight:       2,
		StepSize:         20,
		BaseAngle:        0.07,
		BaseScale:        0.9999,
		BranchAngle:      -0.4,
		BranchScale:      0.9,
		SubtreeAngleMult: -1.6,
		SubtreeScaleMult: 0.98,
		Background:       "#f8f0e0",
		BaseColor:        "#804818",
		SubtreeColor:     "#008000",
		RemovedColor:     "#ff0000",
	}
}

// Fields exposes the tunable parameters of p. Canvas size is fixed per
// render and is not included.
func (p *Params) Fields() []param.Field {
	return []param.Field{
		param.Number("start-x", "horizontal offset of the first node", &p.StartX, 10),
		param.Number("start-y", "vertical offset of the first node", &p.StartY, 10),
		param.Number("zoom", "overall scale", &p.Zoom, 0.02),
		param.Number("base-weight", "stroke width", &p.BaseWeight, 0.25),
		param.Number("step-size", "length of one node", &p.StepSize, 1),
		param.Number("base-angle", "turn after each node, in radians", &p.BaseAngle, 0.005),
		param.Number("base-scale", "shrink after each node", &p.BaseScale, 0.0001),
		param.Number("branch-angle", "turn into a node's history", &p.BranchAngle, 0.02),
		param.Number("branch-scale", "shrink into a node's history", &p.BranchScale, 0.01),
		param.Number("subtree-angle-mult", "turn multiplier per nesting level", &p.SubtreeAngleMult, 0.05),
		param.Number("subtree-scale-mult", "shrink multiplier per nesting level", &p.SubtreeScaleMult, 0.005),
		param.Color("background-color", "canvas color", &p.Background),
		param.Color("base-color", "color of surviving units", &p.BaseColor),
		param.Color("subtree-color", "color of eliminated units", &p.SubtreeColor),
		param.Color("removed-color", "color of ignored unit markers", &p.RemovedColor),
		param.Toggle("draw-reactants", "draw the unit that removed each node", &p.DrawReactants),
	}
}

// Validate reports every invalid parameter.
func (p Params) Validate() error {
	err := param.Validate(p.Fields())
	err = multierr.Append(err, param.Positive("zoom", p.Zoom))
	err = multierr.Append(err, param.Positive("step-size", p.StepSize))
	err = multierr.Append(err, param.Positive("width", float64(p.Width)))
	err = multierr.Append(err, param.Positive("height", float64(p.Height)))
	if p.BaseWeight < 0 {
		err = multierr.Append(err, param.Positive("base-weight", p.BaseWeight))
	}
	return err
}

// Render draws f and returns an SVG document.
func Render(f chain.Forest, p Params) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	t := Draw(f, p)
	return t.SVG(
		turtle.WithSize(p.Width, p.Height),
		turtle.WithBackground(p.Background),
		turtle.WithClass(ClassBase, p.BaseColor),
		turtle.WithClass(ClassSubtree, p.SubtreeColor),
		turtle.WithClass(ClassRemoved, p.RemovedColor),
	), nil
}

// Draw traces f with a turtle centered on the canvas. Parameters are not
// validated.
func Draw(f chain.Forest, p Params) *turtle.Turtle {
	d := drawer{p: p, t: turtle.New(p.BaseWeight)}
	d.t.Translate(float64(p.Width)/2, float64(p.Height)/2)
	d.t.Scale(p.Zoom, p.Zoom)
	d.t.Translate(p.StartX, p.StartY)
	d.nodes(f, 0)
	return d.t
}

type drawer struct {
	p Params
	t *turtle.Turtle
}

func (d *drawer) nodes(nodes []*chain.Node, depth int) {
	for _, n := range nodes {
		if n.Kind == chain.KindReactant && !d.p.DrawReactants {
			continue
		}
		d.node(n, depth)
	}
}

func (d *drawer) node(n *chain.Node, depth int) {
	class := ClassSubtree
	if depth == 0 {
		class = ClassBase
	}

	step := d.p.StepSize
	if n.IsIgnored() {
		d.t.ForwardLine(step*2/3, class)
		d.t.ForwardCircle(step/3, ClassRemoved)
	} else {
		d.t.ForwardLine(step, class)
	}

	if len(n.Children) > 0 {
		d.t.Save()
		d.t.Rotate(d.p.BranchAngle)
		d.t.Scale(d.p.BranchScale, d.p.BranchScale)
		d.nodes(n.Children, depth+1)
		d.t.Restore()
	}

	level := float64(depth)
	d.t.Rotate(d.p.BaseAngle * math.Pow(d.p.SubtreeAngleMult, level))
	s := d.p.BaseScale * math.Pow(d.p.SubtreeScaleMult, level)
	d.t.Scale(s, s)
}
