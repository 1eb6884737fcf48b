package turtle

import (
	"math"
	"strings"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestForwardLineMoves(t *testing.T) {
	tt := New(2)
	tt.ForwardLine(10, "a")
	if x, y := tt.Position(); !near(x, 10) || !near(y, 0) {
		t.Errorf("Position() = (%v, %v), want (10, 0)", x, y)
	}

	tt.Rotate(math.Pi / 2)
	tt.ForwardLine(5, "a")
	if x, y := tt.Position(); !near(x, 10) || !near(y, 5) {
		t.Errorf("Position() after turn = (%v, %v), want (10, 5)", x, y)
	}
	if tt.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tt.Len())
	}
}

func TestTransformOrder(t *testing.T) {
	// Post-multiplication: the translation is scaled by the earlier scale.
	tt := New(1)
	tt.Scale(2, 2)
	tt.Translate(3, 0)
	if x, _ := tt.Position(); !near(x, 6) {
		t.Errorf("scale then translate: x = %v, want 6", x)
	}

	tt = New(1)
	tt.Translate(3, 0)
	tt.Scale(2, 2)
	if x, _ := tt.Position(); !near(x, 3) {
		t.Errorf("translate then scale: x = %v, want 3", x)
	}
}

func TestSaveRestore(t *testing.T) {
	tt := New(1)
	tt.Translate(5, 5)
	tt.Save()
	tt.Rotate(1)
	tt.Scale(0.5, 0.5)
	tt.ForwardLine(100, "a")
	if tt.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", tt.Depth())
	}
	tt.Restore()

	if x, y := tt.Position(); !near(x, 5) || !near(y, 5) {
		t.Errorf("Position() after Restore = (%v, %v), want (5, 5)", x, y)
	}
	if h := tt.Heading(); !near(h, 0) {
		t.Errorf("Heading() after Restore = %v, want 0", h)
	}

	// Unbalanced restore is a no-op.
	tt.Restore()
	if x, _ := tt.Position(); !near(x, 5) {
		t.Errorf("extra Restore changed position to %v", x)
	}
}

func TestCircles(t *testing.T) {
	tt := New(1)
	tt.ForwardCircle(10, "c")
	p := tt.prims[0]
	if !near(p.x1, 5) || !near(p.r, 5) {
		t.Errorf("ForwardCircle center/radius = %v/%v, want 5/5", p.x1, p.r)
	}
	if x, _ := tt.Position(); !near(x, 10) {
		t.Errorf("ForwardCircle moved to %v, want 10", x)
	}

	tt.Scale(2, 2)
	tt.Circle(3, "c")
	p = tt.prims[1]
	if !near(p.x1, 16) || !near(p.r, 6) {
		t.Errorf("scaled Circle center/radius = %v/%v, want 16/6", p.x1, p.r)
	}
	if x, _ := tt.Position(); !near(x, 22) {
		t.Errorf("Circle moved to %v, want 22", x)
	}
}

func TestStrokeWidthFollowsScale(t *testing.T) {
	tt := New(2)
	tt.Scale(0.5, 0.5)
	tt.ForwardLine(10, "a")
	if got := tt.prims[0].r * 2; !near(got, 1) {
		t.Errorf("stroke width = %v, want 1", got)
	}
}

func TestBounds(t *testing.T) {
	tt := New(2)
	if !tt.Bounds().Empty() {
		t.Fatal("new turtle should have empty bounds")
	}

	tt.ForwardLine(10, "a")
	tt.Circle(5, "b")
	b := tt.Bounds()
	want := Rect{MinX: -1, MinY: -5, MaxX: 20, MaxY: 5}
	if !near(b.MinX, want.MinX) || !near(b.MinY, want.MinY) || !near(b.MaxX, want.MaxX) || !near(b.MaxY, want.MaxY) {
		t.Errorf("Bounds() = %+v, want %+v", b, want)
	}
	if !near(b.Width(), 21) || !near(b.Height(), 10) {
		t.Errorf("Bounds() size = %vx%v, want 21x10", b.Width(), b.Height())
	}
}

func TestSVG(t *testing.T) {
	tt := New(2)
	tt.Translate(50, 50)
	tt.ForwardLine(10, "trunk")
	tt.ForwardLine(10, "trunk")
	tt.ForwardLine(10, "branch")
	tt.ForwardCircle(4, "leaf")

	svg := string(tt.SVG(
		WithSize(100, 100),
		WithBackground("#f8f0e0"),
		WithClass("trunk", "#804818"),
		WithClass("leaf", "#ff0000"),
	))

	for _, want := range []string{
		`viewBox="0.00 0.00 100.00 100.00" width="100" height="100"`,
		`<rect x="0.00" y="0.00" width="100.00" height="100.00" fill="#f8f0e0"/>`,
		`stroke="#804818" stroke-width="2.00" d="M50.00 50.00L60.00 50.00 M60.00 50.00L70.00 50.00"`,
		`stroke="#000000"`,
		`<circle cx="82.00" cy="50.00" r="2.00" fill="#ff0000"/>`,
		`stroke-linecap="round"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %s\n%s", want, svg)
		}
	}
	if n := strings.Count(svg, "<path"); n != 2 {
		t.Errorf("SVG has %d paths, want 2", n)
	}
}

func TestSVGFit(t *testing.T) {
	tt := New(0)
	tt.ForwardLine(10, "a")
	svg := string(tt.SVG(WithFit(5)))
	if !strings.Contains(svg, `viewBox="-5.00 -5.00 20.00 10.00"`) {
		t.Errorf("fitted viewBox wrong:\n%s", svg)
	}

	empty := string(New(1).SVG())
	if !strings.Contains(empty, `width="1" height="1"`) {
		t.Errorf("empty drawing should produce a 1x1 canvas:\n%s", empty)
	}
}
