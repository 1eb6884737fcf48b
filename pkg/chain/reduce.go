package chain

// Option configures a call to [Reduce].
type Option func(*config)

type config struct {
	ignore      bool
	ignored     Symbol
	withoutRoot bool
}

// WithIgnored excludes unit u from the reaction. Matching is
// case-insensitive, so WithIgnored('c') ignores both 'c' and 'C'.
func WithIgnored(u Symbol) Option {
	return func(c *config) {
		c.ignore = true
		c.ignored = fold(u)
	}
}

// WithoutRoot drops the synthetic root from the returned forest.
func WithoutRoot() Option {
	return func(c *config) { c.withoutRoot = true }
}

// Reacts reports whether units a and b annihilate each other: they are the
// same letter with different case. A unit never reacts with itself.
func Reacts(a, b Symbol) bool {
	return a != b && fold(a) == fold(b)
}

// fold lowercases ASCII letters and leaves every other byte untouched.
func fold(u Symbol) Symbol {
	if 'A' <= u && u <= 'Z' {
		return u + ('a' - 'A')
	}
	return u
}

// Reduce collapses seq and returns the reduction forest.
//
// The forest lists the stack contents after the last unit was read, from
// the bottom: the synthetic root first (unless [WithoutRoot] is given),
// then every surviving unit in input order. Reacted units are kept as
// children of the node that was below them on the stack, with the reacting
// partner as their last child.
//
// Reduce runs in O(len(seq)) time and never fails. Bytes outside the
// alphabet are ordinary units that can only react with nothing.
func Reduce(seq []byte, opts ...Option) Forest {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	root := &Node{Kind: KindRoot, Unit: RootUnit}
	stack := make([]*Node, 1, 64)
	stack[0] = root

	for _, b := range seq {
		u := Symbol(b)
		top := stack[len(stack)-1]

		switch {
		case cfg.ignore && fold(u) == cfg.ignored:
			top.Children = append(top.Children, &Node{Kind: KindIgnored, Unit: u})
		case top.Kind == KindUnit && Reacts(u, top.Unit):
			top.Children = append(top.Children, &Node{Kind: KindReactant, Unit: u})
			stack = stack[:len(stack)-1]
			below := stack[len(stack)-1]
			below.Children = append(below.Children, top)
		default:
			stack = append(stack, &Node{Kind: KindUnit, Unit: u})
		}
	}

	if cfg.withoutRoot {
		return Forest(stack[1:])
	}
	return Forest(stack)
}

// ReduceString is a convenience wrapper around [Reduce] for string input.
func ReduceString(seq string, opts ...Option) Forest {
	return Reduce([]byte(seq), opts...)
}
