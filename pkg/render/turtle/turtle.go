// Package turtle draws vector line art with a turtle-graphics cursor.
//
// A [Turtle] owns an affine transform that behaves like the current
// transformation matrix of an HTML canvas 2D context: [Turtle.Translate],
// [Turtle.Rotate] and [Turtle.Scale] post-multiply it, and [Turtle.Save] and
// [Turtle.Restore] push and pop it. Drawing always happens along the local
// x axis starting at the local origin, after which the turtle moves to the
// end of what it drew.
//
// Primitives are recorded in device coordinates together with their class,
// a caller-chosen name that [Turtle.SVG] maps to a color:
//
//	t := turtle.New(2)
//	t.Translate(100, 100)
//	t.ForwardLine(20, "trunk")
//	t.Rotate(0.4)
//	t.ForwardCircle(10, "leaf")
//	svg := t.SVG(turtle.WithClass("trunk", "#804818"), turtle.WithClass("leaf", "#008000"))
package turtle

import (
	"math"

	"github.com/srwiley/rasterx"
)

type primKind uint8

const (
	primLine primKind = iota
	primCircle
)

// prim is a recorded primitive in device coordinates. Lines use both
// points; circles use (x1, y1) as center and r as radius.
type prim struct {
	kind           primKind
	class          string
	x1, y1, x2, y2 float64
	r              float64 // circle radius or half the stroke width
}

// Rect is an axis-aligned rectangle in device coordinates.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Empty reports whether r contains no points.
func (r Rect) Empty() bool { return r.MinX > r.MaxX || r.MinY > r.MaxY }

func emptyRect() Rect {
	return Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
}

func (r *Rect) add(x, y, pad float64) {
	r.MinX = min(r.MinX, x-pad)
	r.MinY = min(r.MinY, y-pad)
	r.MaxX = max(r.MaxX, x+pad)
	r.MaxY = max(r.MaxY, y+pad)
}

// Turtle records line and circle primitives under an affine transform.
// The zero value is not usable; create turtles with [New].
type Turtle struct {
	lineWidth float64
	m         rasterx.Matrix2D
	stack     []rasterx.Matrix2D
	prims     []prim
	bounds    Rect
}

// New returns a turtle at the origin with an identity transform. lineWidth
// is the stroke width in local units; like a canvas stroke it grows and
// shrinks with the current scale.
func New(lineWidth float64) *Turtle {
	return &Turtle{
		lineWidth: lineWidth,
		m:         rasterx.Identity,
		bounds:    emptyRect(),
	}
}

// Save pushes the current transform.
func (t *Turtle) Save() {
	t.stack = append(t.stack, t.m)
}

// Restore pops the transform pushed by the matching [Turtle.Save].
// Restoring with nothing saved leaves the transform unchanged.
func (t *Turtle) Restore() {
	if len(t.stack) == 0 {
		return
	}
	t.m = t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
}

// Depth returns the number of saved transforms.
func (t *Turtle) Depth() int { return len(t.stack) }

// Translate moves the local origin by (x, y) in local units.
func (t *Turtle) Translate(x, y float64) {
	t.m = t.m.Translate(x, y)
}

// Rotate turns the local axes by theta radians. Positive angles turn
// clockwise on screen, where y grows downwards.
func (t *Turtle) Rotate(theta float64) {
	t.m = t.m.Rotate(theta)
}

// Scale scales the local axes.
func (t *Turtle) Scale(sx, sy float64) {
	t.m = t.m.Scale(sx, sy)
}

// Position returns the local origin in device coordinates.
func (t *Turtle) Position() (x, y float64) {
	return t.m.Transform(0, 0)
}

// Heading returns the direction of the local x axis in radians.
func (t *Turtle) Heading() float64 {
	return math.Atan2(t.m.B, t.m.A)
}

// scale returns the factor by which the transform stretches lengths. For
// the similarity transforms a turtle normally uses this is exact.
func (t *Turtle) scale() float64 {
	return math.Sqrt(math.Abs(t.m.A*t.m.D - t.m.B*t.m.C))
}

// ForwardLine strokes a segment of length dist along the local x axis and
// moves to its end.
func (t *Turtle) ForwardLine(dist float64, class string) {
	x1, y1 := t.m.Transform(0, 0)
	x2, y2 := t.m.Transform(dist, 0)
	half := t.lineWidth * t.scale() / 2
	t.prims = append(t.prims, prim{kind: primLine, class: class, x1: x1, y1: y1, x2: x2, y2: y2, r: half})
	t.bounds.add(x1, y1, half)
	t.bounds.add(x2, y2, half)
	t.Translate(dist, 0)
}

// ForwardCircle fills a circle of diameter dist just ahead of the turtle
// and moves past it.
func (t *Turtle) ForwardCircle(dist float64, class string) {
	t.circle(dist/2, class)
	t.Translate(dist, 0)
}

// Circle fills a circle of the given radius just ahead of the turtle and
// moves past it, a distance of twice the radius.
func (t *Turtle) Circle(radius float64, class string) {
	t.circle(radius, class)
	t.Translate(2*radius, 0)
}

func (t *Turtle) circle(radius float64, class string) {
	cx, cy := t.m.Transform(radius, 0)
	r := math.Abs(radius) * t.scale()
	t.prims = append(t.prims, prim{kind: primCircle, class: class, x1: cx, y1: cy, r: r})
	t.bounds.add(cx, cy, r)
}

// Len returns the number of recorded primitives.
func (t *Turtle) Len() int { return len(t.prims) }

// Bounds returns the bounding box of everything drawn so far, including
// stroke widths. It is empty if nothing was drawn.
func (t *Turtle) Bounds() Rect { return t.bounds }
