// Package license decodes license trees.
//
// A license tree is a flat list of non-negative integers. Each node is
// encoded as a header (child count, metadata count), followed by its
// children, followed by its metadata entries:
//
//	2 3 0 3 10 11 12 1 1 0 1 99 2 1 1 2
//	A----------------------------------
//	    B----------- C-----------
//	                     D-----
//
// [Parse] builds the tree; [Node.SumMetadata] and [Node.Value] compute the
// two aggregate values the format is usually asked about.
package license

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/matzehuels/polytree/pkg/errors"
)

// Node is a license tree node.
type Node struct {
	Children []*Node `json:"children,omitempty"`
	Metadata []int   `json:"metadata"`
}

// Parse decodes a whitespace-separated license tree.
// It returns an error for non-integer or negative entries, truncated input,
// and trailing entries after the root node.
func Parse(input string) (*Node, error) {
	fields := strings.Fields(input)
	entries := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidLicense, err, "entry %d: %q is not an integer", i, f)
		}
		if v < 0 {
			return nil, errors.New(errors.ErrCodeInvalidLicense, "entry %d: negative value %d", i, v)
		}
		entries[i] = v
	}

	d := decoder{entries: entries}
	root, err := d.node()
	if err != nil {
		return nil, err
	}
	if d.pos != len(entries) {
		return nil, errors.New(errors.ErrCodeInvalidLicense, "%d trailing entries after root node", len(entries)-d.pos)
	}
	return root, nil
}

type decoder struct {
	entries []int
	pos     int
}

func (d *decoder) next(what string) (int, error) {
	if d.pos >= len(d.entries) {
		return 0, errors.New(errors.ErrCodeInvalidLicense, "unexpected end of input reading %s", what)
	}
	v := d.entries[d.pos]
	d.pos++
	return v, nil
}

// node decodes one node. Headers are read iteratively with an explicit
// stack so that deep trees cannot exhaust the goroutine stack.
func (d *decoder) node() (*Node, error) {
	type frame struct {
		node     *Node
		children int
		metadata int
	}

	open := func() (frame, error) {
		nc, err := d.next("child count")
		if err != nil {
			return frame{}, err
		}
		nm, err := d.next("metadata count")
		if err != nil {
			return frame{}, err
		}
		// Every child needs at least a header, so both counts are bounded
		// by what is left of the input.
		left := len(d.entries) - d.pos
		if nc > left/2 || nm > left-2*nc {
			return frame{}, errors.New(errors.ErrCodeInvalidLicense,
				"unexpected end of input: node needs %d children and %d metadata entries, %d entries left", nc, nm, left)
		}
		return frame{node: &Node{}, children: nc, metadata: nm}, nil
	}

	top, err := open()
	if err != nil {
		return nil, err
	}
	stack := []frame{top}

	for {
		f := &stack[len(stack)-1]
		if len(f.node.Children) < f.children {
			child, err := open()
			if err != nil {
				return nil, err
			}
			f.node.Children = append(f.node.Children, child.node)
			stack = append(stack, child)
			continue
		}

		f.node.Metadata = make([]int, f.metadata)
		for i := range f.node.Metadata {
			v, err := d.next("metadata")
			if err != nil {
				return nil, err
			}
			f.node.Metadata[i] = v
		}

		done := f.node
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			return done, nil
		}
	}
}

// SumMetadata returns the sum of all metadata entries in the subtree.
func (n *Node) SumMetadata() int {
	sum := 0
	for _, m := range n.Metadata {
		sum += m
	}
	for _, c := range n.Children {
		sum += c.SumMetadata()
	}
	return sum
}

// Value returns the node value. A leaf's value is the sum of its metadata.
// Otherwise each metadata entry i refers to child i (1-based) and the value
// is the sum of the referenced children's values; entries that refer to no
// child contribute nothing.
func (n *Node) Value() int {
	if len(n.Children) == 0 {
		return n.SumMetadata()
	}
	values := make([]int, len(n.Children))
	for i, c := range n.Children {
		values[i] = c.Value()
	}
	sum := 0
	for _, m := range n.Metadata {
		if m >= 1 && m <= len(values) {
			sum += values[m-1]
		}
	}
	return sum
}

// Count returns the number of nodes in the subtree.
func (n *Node) Count() int {
	count := 1
	for _, c := range n.Children {
		count += c.Count()
	}
	return count
}

// Ref returns the child a metadata entry refers to, if any.
func (n *Node) Ref(entry int) (*Node, bool) {
	if entry < 1 || entry > len(n.Children) {
		return nil, false
	}
	return n.Children[entry-1], true
}

// flatNode is one node of the JSON form. Nodes are listed in pre-order
// and point at their parent by index, -1 for the root, so deep trees
// encode without nesting.
type flatNode struct {
	Parent   int   `json:"parent"`
	Metadata []int `json:"metadata"`
}

type document struct {
	SumMetadata int        `json:"sum_metadata"`
	Value       int        `json:"value"`
	Nodes       []flatNode `json:"nodes"`
}

// Marshal encodes the tree as indented JSON: both aggregate values and a
// flat pre-order node list.
func Marshal(root *Node) ([]byte, error) {
	doc := document{SumMetadata: root.SumMetadata(), Value: root.Value()}

	type item struct {
		n      *Node
		parent int
	}
	stack := []item{{root, -1}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		idx := len(doc.Nodes)
		doc.Nodes = append(doc.Nodes, flatNode{Parent: it.parent, Metadata: it.n.Metadata})
		for i := len(it.n.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.n.Children[i], idx})
		}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal decodes a tree written by Marshal.
func Unmarshal(data []byte) (*Node, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLicense, err, "decode license tree")
	}
	if len(doc.Nodes) == 0 || doc.Nodes[0].Parent != -1 {
		return nil, errors.New(errors.ErrCodeInvalidLicense, "license tree has no root")
	}

	nodes := make([]*Node, len(doc.Nodes))
	for i, fn := range doc.Nodes {
		nodes[i] = &Node{Metadata: fn.Metadata}
		if fn.Metadata == nil {
			nodes[i].Metadata = []int{}
		}
		if i == 0 {
			continue
		}
		if p := fn.Parent; p < 0 || p >= i {
			return nil, errors.New(errors.ErrCodeInvalidLicense, "node %d: parent %d does not precede it", i, p)
		}
		nodes[fn.Parent].Children = append(nodes[fn.Parent].Children, nodes[i])
	}
	return nodes[0], nil
}
