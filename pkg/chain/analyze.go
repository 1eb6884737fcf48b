package chain

import (
	"bytes"
	"iter"
)

// Parse normalizes raw polymer input by trimming surrounding whitespace.
// Puzzle inputs and files saved by editors usually end with a newline.
func Parse(data []byte) []byte {
	return bytes.TrimSpace(data)
}

// CollapsedLen returns the length of seq after full reduction. Ignored units
// do not count towards the length.
func CollapsedLen(seq []byte, opts ...Option) int {
	return Reduce(seq, opts...).TrunkLen()
}

// Shortest tries every letter as the ignored unit and returns the one that
// gives the shortest reduced polymer, along with that length. Ties go to the
// alphabetically first letter. For empty input it returns 'a' and 0.
func Shortest(seq []byte) (Symbol, int) {
	best, bestLen := Symbol('a'), -1
	for u := Symbol('a'); u <= 'z'; u++ {
		if n := CollapsedLen(seq, WithIgnored(u)); bestLen < 0 || n < bestLen {
			best, bestLen = u, n
		}
	}
	return best, bestLen
}

// Frames yields growing prefix lengths for animating a reduction of a
// polymer with total units. It starts at start and advances by step, which
// itself grows by accel after every frame. The final frame is always total.
//
// A non-positive step that would never reach total is treated as 1.
func Frames(total, start, step, accel int) iter.Seq[int] {
	return func(yield func(int) bool) {
		n := max(start, 0)
		for n < total {
			if !yield(n) {
				return
			}
			if step <= 0 {
				step = 1
			}
			n += step
			step += accel
		}
		yield(total)
	}
}
