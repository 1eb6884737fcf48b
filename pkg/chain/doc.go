// Package chain reduces polymer chains into reduction trees.
//
// # Overview
//
// A polymer is a sequence of units, one byte each. Case encodes polarity:
// 'a' and 'A' are the same kind of unit with opposite polarity. Two adjacent
// units react when they are the same letter with different case, and both
// are removed from the chain.
//
// [Reduce] performs the full reduction in a single left-to-right pass using
// a stack. Instead of discarding reacted units it keeps them as history: a
// unit removed by a reaction is nested under the unit that was below it on
// the stack, and the partner that triggered the reaction is nested under
// the removed unit. The result is a [Forest]: the units that survive,
// bottom-up, each carrying the subtree of units that were eliminated on top
// of it.
//
//	f := chain.Reduce([]byte("dabAcCaCBAcCcaDA"))
//	fmt.Println(f.TrunkLen()) // 10
//
// # Ignored Units
//
// [WithIgnored] removes one kind of unit (both polarities) from the reaction.
// Ignored units become leaves attached to whatever unit is on top of the
// stack when they are read. They never react and never become a stack top.
//
// # Synthetic Root
//
// The stack starts with a synthetic root node ([KindRoot]) that can never
// react, so it always stays at the bottom. Units that are removed while the
// stack is otherwise empty hang off the root. [WithoutRoot] drops the root
// from the returned forest.
//
// # Puzzle Helpers
//
// [CollapsedLen] and [Shortest] answer the two classic questions about a
// polymer: how long is it after reduction, and which unit kind should be
// removed to make it as short as possible.
package chain
