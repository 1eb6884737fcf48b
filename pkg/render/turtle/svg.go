package turtle

import (
	"bytes"
	"fmt"
	"math"
)

const defaultColor = "#000000"

// Option configures [Turtle.SVG].
type Option func(*svgOptions)

type svgOptions struct {
	width, height int
	fit           bool
	padding       float64
	background    string
	colors        map[string]string
}

// WithSize sets the canvas size in pixels. The device coordinate system
// maps 1:1 onto the canvas, so a turtle that was translated to the canvas
// center draws around the middle of the image.
func WithSize(width, height int) Option {
	return func(o *svgOptions) { o.width, o.height = width, height }
}

// WithFit sizes the canvas to the drawing's bounding box plus padding,
// ignoring [WithSize].
func WithFit(padding float64) Option {
	return func(o *svgOptions) { o.fit, o.padding = true, padding }
}

// WithBackground fills the canvas with color.
func WithBackground(color string) Option {
	return func(o *svgOptions) { o.background = color }
}

// WithClass sets the color for primitives of class. Lines are stroked and
// circles filled with it.
func WithClass(class, color string) Option {
	return func(o *svgOptions) { o.colors[class] = color }
}

// SVG serializes everything drawn so far as a standalone SVG document.
// Without [WithSize] the canvas fits the drawing.
//
// Consecutive segments of the same class and width share one path element
// to keep documents for long chains compact.
func (t *Turtle) SVG(opts ...Option) []byte {
	o := svgOptions{colors: make(map[string]string)}
	for _, opt := range opts {
		opt(&o)
	}

	minX, minY, w, h := 0.0, 0.0, float64(o.width), float64(o.height)
	if o.fit || o.width <= 0 || o.height <= 0 {
		b := t.bounds
		if b.Empty() {
			b = Rect{}
		}
		minX, minY = b.MinX-o.padding, b.MinY-o.padding
		w, h = b.Width()+2*o.padding, b.Height()+2*o.padding
		w, h = max(w, 1), max(h, 1)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s" width="%.0f" height="%.0f">`+"\n",
		num(minX), num(minY), num(w), num(h), math.Ceil(w), math.Ceil(h))
	if o.background != "" {
		fmt.Fprintf(&buf, `  <rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
			num(minX), num(minY), num(w), num(h), o.background)
	}

	color := func(class string) string {
		if c, ok := o.colors[class]; ok {
			return c
		}
		return defaultColor
	}

	buf.WriteString(`  <g stroke-linecap="round" stroke-linejoin="round">` + "\n")
	for i := 0; i < len(t.prims); {
		p := t.prims[i]
		if p.kind == primCircle {
			fmt.Fprintf(&buf, `    <circle cx="%s" cy="%s" r="%s" fill="%s"/>`+"\n",
				num(p.x1), num(p.y1), num(p.r), color(p.class))
			i++
			continue
		}

		width := num(2 * p.r)
		fmt.Fprintf(&buf, `    <path fill="none" stroke="%s" stroke-width="%s" d="`, color(p.class), width)
		j := i
		for ; j < len(t.prims); j++ {
			q := t.prims[j]
			if q.kind != primLine || q.class != p.class || num(2*q.r) != width {
				break
			}
			if j > i {
				buf.WriteByte(' ')
			}
			fmt.Fprintf(&buf, "M%s %sL%s %s", num(q.x1), num(q.y1), num(q.x2), num(q.y2))
		}
		buf.WriteString(`"/>` + "\n")
		i = j
	}
	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

// num formats a coordinate with two decimals, avoiding "-0.00".
func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}
