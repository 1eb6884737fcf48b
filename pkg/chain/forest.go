package chain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Forest is the result of a reduction: the stack contents from the bottom,
// each node owning the history of units eliminated on top of it.
type Forest []*Node

// Root returns the synthetic root, or nil if the forest was built
// [WithoutRoot].
func (f Forest) Root() *Node {
	if len(f) > 0 && f[0].IsRoot() {
		return f[0]
	}
	return nil
}

// Trunk returns the surviving units, without the synthetic root.
func (f Forest) Trunk() Forest {
	if f.Root() != nil {
		return f[1:]
	}
	return f
}

// TrunkLen returns the number of units that survived the reduction. This is
// the length of the fully reduced polymer.
func (f Forest) TrunkLen() int {
	return len(f.Trunk())
}

// Remaining returns the fully reduced polymer.
func (f Forest) Remaining() []byte {
	trunk := f.Trunk()
	out := make([]byte, len(trunk))
	for i, n := range trunk {
		out[i] = byte(n.Unit)
	}
	return out
}

// Walk visits every node in depth-first pre-order. depth is 0 for nodes in
// the forest itself. Walk stops descending into a node's children when fn
// returns false.
func (f Forest) Walk(fn func(n *Node, depth int) bool) {
	for _, n := range f {
		walk(n, 0, fn)
	}
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}

// Stats summarizes a reduction forest.
type Stats struct {
	Units     int // input units reachable from the forest
	Trunk     int // surviving units
	Reactions int // reacted pairs
	Ignored   int // ignored leaves
	MaxDepth  int // deepest nesting below the forest
}

// String formats the stats on a single line.
func (s Stats) String() string {
	return fmt.Sprintf("%d units, %d trunk, %d reactions, %d ignored, depth %d",
		s.Units, s.Trunk, s.Reactions, s.Ignored, s.MaxDepth)
}

// Stats counts the units in f by role.
func (f Forest) Stats() Stats {
	s := Stats{Trunk: f.TrunkLen()}
	f.Walk(func(n *Node, depth int) bool {
		switch n.Kind {
		case KindRoot:
			return true
		case KindIgnored:
			s.Ignored++
		case KindReactant:
			s.Reactions++
		}
		s.Units++
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		return true
	})
	return s
}

// Equal reports whether f and other have identical structure and units.
func (f Forest) Equal(other Forest) bool {
	if len(f) != len(other) {
		return false
	}
	for i := range f {
		if !equalNode(f[i], other[i]) {
			return false
		}
	}
	return true
}

func equalNode(a, b *Node) bool {
	if a.Kind != b.Kind || a.Unit != b.Unit || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !equalNode(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// flatNode is one node of the JSON form of a forest. Nodes are listed in
// pre-order and point at their parent by index, -1 for the stack bottom
// level, so arbitrarily deep histories encode without nesting.
type flatNode struct {
	Parent int    `json:"parent"`
	Kind   Kind   `json:"kind"`
	Unit   string `json:"unit,omitempty"`
}

// MarshalJSON encodes f as a flat pre-order node list.
func (f Forest) MarshalJSON() ([]byte, error) {
	type item struct {
		n      *Node
		parent int
	}
	stack := make([]item, 0, len(f))
	for i := len(f) - 1; i >= 0; i-- {
		stack = append(stack, item{f[i], -1})
	}

	nodes := []flatNode{}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		fn := flatNode{Parent: it.parent, Kind: it.n.Kind}
		if it.n.Kind != KindRoot {
			fn.Unit = it.n.Unit.String()
		}
		idx := len(nodes)
		nodes = append(nodes, fn)
		for i := len(it.n.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.n.Children[i], idx})
		}
	}
	return json.Marshal(nodes)
}

// UnmarshalJSON decodes the node list written by MarshalJSON. Every
// parent must precede its children.
func (f *Forest) UnmarshalJSON(data []byte) error {
	var flat []flatNode
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	nodes := make([]*Node, len(flat))
	var out Forest
	for i, fn := range flat {
		n := &Node{Kind: fn.Kind}
		if fn.Kind != KindRoot {
			r, size := utf8.DecodeRuneInString(fn.Unit)
			if size == 0 || size != len(fn.Unit) || r > 0xff {
				return fmt.Errorf("node %d: unit must be a single byte, got %q", i, fn.Unit)
			}
			n.Unit = Symbol(r)
		}
		nodes[i] = n

		switch p := fn.Parent; {
		case p == -1:
			out = append(out, n)
		case p >= 0 && p < i:
			nodes[p].Children = append(nodes[p].Children, n)
		default:
			return fmt.Errorf("node %d: parent %d does not precede it", i, p)
		}
	}
	*f = out
	return nil
}

// MarshalForest encodes f as indented JSON.
func MarshalForest(f Forest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		Stats Stats  `json:"stats"`
		Nodes Forest `json:"nodes"`
	}{f.Stats(), f}); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalForest decodes a forest produced by MarshalForest.
func UnmarshalForest(data []byte) (Forest, error) {
	var in struct {
		Nodes Forest `json:"nodes"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return in.Nodes, nil
}
