package chain

import (
	"encoding/json"
	"fmt"
	"slices"
	"testing"
)

func TestParse(t *testing.T) {
	if got := string(Parse([]byte(example + "\n"))); got != example {
		t.Errorf("Parse() = %q, want %q", got, example)
	}
	if got := Parse([]byte(" \n\t")); len(got) != 0 {
		t.Errorf("Parse(whitespace) = %q, want empty", got)
	}
}

func TestCollapsedLen(t *testing.T) {
	tests := []struct {
		input   string
		ignored Symbol
		want    int
	}{
		{example, 0, 10},
		{example, 'a', 6},
		{example, 'b', 8},
		{example, 'c', 4},
		{example, 'd', 6},
		{"aA", 0, 0},
		{"abBA", 0, 0},
		{"abAB", 0, 4},
		{"aabAAB", 0, 6},
		{"", 'x', 0},
	}

	for _, tt := range tests {
		var opts []Option
		if tt.ignored != 0 {
			opts = append(opts, WithIgnored(tt.ignored))
		}
		if got := CollapsedLen([]byte(tt.input), opts...); got != tt.want {
			t.Errorf("CollapsedLen(%q, %q) = %d, want %d", tt.input, tt.ignored, got, tt.want)
		}
	}
}

func TestShortest(t *testing.T) {
	unit, n := Shortest([]byte(example))
	if unit != 'c' || n != 4 {
		t.Errorf("Shortest() = (%q, %d), want ('c', 4)", unit, n)
	}

	unit, n = Shortest(nil)
	if unit != 'a' || n != 0 {
		t.Errorf("Shortest(nil) = (%q, %d), want ('a', 0)", unit, n)
	}
}

func TestFrames(t *testing.T) {
	tests := []struct {
		name                      string
		total, start, step, accel int
		want                      []int
	}{
		{"constant step", 10, 1, 4, 0, []int{1, 5, 9, 10}},
		{"accelerating", 20, 0, 1, 2, []int{0, 1, 4, 9, 16, 20}},
		{"start past end", 5, 8, 1, 0, []int{5}},
		{"empty polymer", 0, 0, 1, 0, []int{0}},
		{"zero step", 3, 0, 0, 0, []int{0, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slices.Collect(Frames(tt.total, tt.start, tt.step, tt.accel))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Frames() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFramesStopsEarly(t *testing.T) {
	var got []int
	for n := range Frames(100, 0, 10, 0) {
		got = append(got, n)
		if len(got) == 3 {
			break
		}
	}
	if !slices.Equal(got, []int{0, 10, 20}) {
		t.Errorf("got %v", got)
	}
}

func TestMarshalForestRoundTrip(t *testing.T) {
	f := ReduceString(example, WithIgnored('c'))
	data, err := MarshalForest(f)
	if err != nil {
		t.Fatalf("MarshalForest() error: %v", err)
	}
	back, err := UnmarshalForest(data)
	if err != nil {
		t.Fatalf("UnmarshalForest() error: %v", err)
	}
	if !back.Equal(f) {
		t.Errorf("round trip changed forest:\n%s\n%s", shape(f), shape(back))
	}
}

func TestMarshalForestFlat(t *testing.T) {
	data, err := MarshalForest(ReduceString("xaA"))
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Nodes []struct {
			Parent int    `json:"parent"`
			Kind   string `json:"kind"`
			Unit   string `json:"unit"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}

	// Pre-order: root, x, then a on x with its reactant A.
	want := []string{"-1 root ", "-1 unit x", "1 unit a", "2 reactant A"}
	var got []string
	for _, n := range out.Nodes {
		got = append(got, fmt.Sprintf("%d %s %s", n.Parent, n.Kind, n.Unit))
	}
	if !slices.Equal(got, want) {
		t.Errorf("nodes = %q, want %q", got, want)
	}
}

func TestMarshalForestNonASCIIUnit(t *testing.T) {
	f := Reduce([]byte{'a', 0xe9, 'b'})
	data, err := MarshalForest(f)
	if err != nil {
		t.Fatal(err)
	}
	back, err := UnmarshalForest(data)
	if err != nil {
		t.Fatalf("UnmarshalForest() error: %v", err)
	}
	if !back.Equal(f) {
		t.Errorf("round trip changed forest:\n%s\n%s", shape(f), shape(back))
	}
}

func TestUnmarshalForestRejectsBadUnit(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"multi-byte unit", `{"nodes":[{"parent":-1,"kind":"unit","unit":"ab"}]}`},
		{"missing unit", `{"nodes":[{"parent":-1,"kind":"unit"}]}`},
		{"unknown kind", `{"nodes":[{"parent":-1,"kind":"bogus","unit":"a"}]}`},
		{"parent after child", `{"nodes":[{"parent":1,"kind":"unit","unit":"a"},{"parent":-1,"kind":"unit","unit":"b"}]}`},
		{"self parent", `{"nodes":[{"parent":0,"kind":"unit","unit":"a"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UnmarshalForest([]byte(tt.json)); err == nil {
				t.Errorf("UnmarshalForest(%s) should fail", tt.json)
			}
		})
	}
}
