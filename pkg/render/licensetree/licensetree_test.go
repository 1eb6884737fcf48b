package licensetree

import (
	"strings"
	"testing"

	"github.com/matzehuels/polytree/pkg/errors"
	"github.com/matzehuels/polytree/pkg/license"
)

const example = "2 3 0 3 10 11 12 1 1 0 1 99 2 1 1 2"

func TestDrawCountsPrimitives(t *testing.T) {
	root, err := license.Parse(example)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	tests := []struct {
		name  string
		mut   func(*Params)
		lines int
		dots  int
	}{
		// A: 2 child branches and its own segment; C: 1 child branch and its
		// own segment; B and D: own segment. Every metadata entry is a circle.
		{"metadata mode", func(p *Params) { p.Values = false }, 7, 8},
		// A references B twice and C once; C references only a missing child.
		{"value mode", nil, 3, 6},
		{"value mode with stubs", func(p *Params) { p.Stubs = true }, 5, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			if tt.mut != nil {
				tt.mut(&p)
			}
			svg := string(Draw(root, p).SVG())
			if got := strings.Count(svg, "<circle"); got != tt.dots {
				t.Errorf("drew %d circles, want %d", got, tt.dots)
			}
			if got := strings.Count(svg, "M"); got != tt.lines {
				t.Errorf("drew %d segments, want %d", got, tt.lines)
			}
		})
	}
}

func TestDrawNil(t *testing.T) {
	if n := Draw(nil, DefaultParams()).Len(); n != 0 {
		t.Errorf("Draw(nil) recorded %d primitives", n)
	}
}

func TestRender(t *testing.T) {
	root, _ := license.Parse(example)
	svg, err := Render(root, DefaultParams())
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	s := string(svg)
	for _, want := range []string{`fill="#f0f0f0"`, `stroke="#808080"`, `fill="#ff0000"`} {
		if !strings.Contains(s, want) {
			t.Errorf("Render() output missing %s", want)
		}
	}

	p := DefaultParams()
	p.MetadataColor = "red"
	if _, err := Render(root, p); err == nil {
		t.Error("Render() should reject an invalid color")
	}
}

// doublingChain nests depth nodes that each reference their only child
// twice, so value mode draws the leaf 2^depth times.
func doublingChain(depth int) string {
	return strings.Repeat("1 2 ", depth) + "0 1 1" + strings.Repeat(" 1 1", depth)
}

func TestPrimitivesMatchesDraw(t *testing.T) {
	tests := []struct {
		name  string
		input string
		mut   func(*Params)
	}{
		{"metadata mode", example, func(p *Params) { p.Values = false }},
		{"value mode", example, nil},
		{"value mode with stubs", example, func(p *Params) { p.Stubs = true }},
		{"doubling chain", doublingChain(6), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := license.Parse(tt.input)
			if err != nil {
				t.Fatal(err)
			}
			p := DefaultParams()
			if tt.mut != nil {
				tt.mut(&p)
			}
			want := Draw(root, p).Len()
			if got := Primitives(root, p, MaxPrimitives); got != want {
				t.Errorf("Primitives() = %d, Draw recorded %d", got, want)
			}
		})
	}
}

func TestRenderRejectsExponentialTree(t *testing.T) {
	root, err := license.Parse(doublingChain(40))
	if err != nil {
		t.Fatal(err)
	}

	if got := Primitives(root, DefaultParams(), 100); got != 101 {
		t.Errorf("Primitives() = %d, want the limit plus one", got)
	}
	_, err = Render(root, DefaultParams())
	if !errors.Is(err, errors.ErrCodeInputTooLarge) {
		t.Fatalf("Render() error = %v, want INPUT_TOO_LARGE", err)
	}

	p := DefaultParams()
	p.Values = false
	if _, err := Render(root, p); err != nil {
		t.Errorf("metadata mode draws each node once, Render() error = %v", err)
	}
}
