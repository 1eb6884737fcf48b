package chain

import "fmt"

// Symbol is a single polymer unit.
type Symbol byte

// RootUnit is the unit stored on the synthetic root node.
// It is never compared against input, see [Reduce].
const RootUnit Symbol = 0

// String returns the unit as a one-character string.
func (s Symbol) String() string {
	return string(rune(s))
}

// Kind distinguishes the roles a node can play in a reduction tree.
type Kind uint8

const (
	// KindUnit is an input unit that was pushed onto the stack. It either
	// survived the reduction or was later removed by a reaction.
	KindUnit Kind = iota
	// KindRoot is the synthetic bottom-of-stack node.
	KindRoot
	// KindIgnored is an input unit that matched the ignored unit.
	KindIgnored
	// KindReactant is the unit that reacted with its parent and removed it.
	KindReactant
)

var kindNames = map[Kind]string{
	KindUnit:     "unit",
	KindRoot:     "root",
	KindIgnored:  "ignored",
	KindReactant: "reactant",
}

// String returns the lowercase kind name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", k)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown node kind %q", b)
}

// Node is one vertex of a reduction tree.
//
// Children are ordered by the time they were eliminated on top of this node.
// A node's children are final once the node leaves the stack.
type Node struct {
	Kind     Kind
	Unit     Symbol
	Children []*Node
}

// IsRoot reports whether n is the synthetic root.
func (n *Node) IsRoot() bool { return n.Kind == KindRoot }

// IsIgnored reports whether n stands for an ignored input unit.
func (n *Node) IsIgnored() bool { return n.Kind == KindIgnored }

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Label returns a short display label for n.
func (n *Node) Label() string {
	switch n.Kind {
	case KindRoot:
		return "·"
	case KindIgnored:
		return "(" + n.Unit.String() + ")"
	default:
		return n.Unit.String()
	}
}

// Size returns the number of input units in the subtree rooted at n.
// The synthetic root is not counted.
func (n *Node) Size() int {
	size := 0
	if n.Kind != KindRoot {
		size = 1
	}
	for _, c := range n.Children {
		size += c.Size()
	}
	return size
}

// Depth returns the height of the subtree rooted at n; a leaf has depth 0.
func (n *Node) Depth() int {
	d := 0
	for _, c := range n.Children {
		if cd := c.Depth() + 1; cd > d {
			d = cd
		}
	}
	return d
}
