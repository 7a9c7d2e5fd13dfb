package geom

import "cmp"

// Handle identifies one proxy inside the tree. Handles are recycled only
// after removal.
type Handle int32

// NullHandle marks the absence of a node.
const NullHandle Handle = -1

// Pair is an unordered pair of handles stored with A < B.
type Pair struct {
	A Handle
	B Handle
}

// MakePair orders the two handles so that A < B.
func MakePair(h1, h2 Handle) Pair {
	if h1 > h2 {
		h1, h2 = h2, h1
	}
	return Pair{A: h1, B: h2}
}

// Compare orders pairs by A, then by B.
func (p Pair) Compare(o Pair) int {
	if c := cmp.Compare(p.A, o.A); c != 0 {
		return c
	}
	return cmp.Compare(p.B, o.B)
}

func (p Pair) Less(o Pair) bool {
	return p.Compare(o) < 0
}
