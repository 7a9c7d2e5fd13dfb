package tree

import (
	"iter"

	"github.com/san-kum/broadphase/internal/geom"
)

// Query yields the handles of all leaves whose fat box overlaps box.
// Each range over the sequence starts a fresh traversal. The tree must not
// be mutated while a traversal is in progress.
func (t *Tree) Query(box geom.AABB) iter.Seq[geom.Handle] {
	return func(yield func(geom.Handle) bool) {
		t.QueryFunc(box, yield)
	}
}

// QueryFunc calls fn for every leaf overlapping box until fn returns false.
func (t *Tree) QueryFunc(box geom.AABB, fn func(geom.Handle) bool) {
	if t.root == geom.NullHandle {
		return
	}

	var buf [64]geom.Handle
	stack := append(buf[:0], t.root)

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &t.nodes[id]
		if !n.box.Overlaps(box) {
			continue
		}
		if n.isLeaf() {
			if !fn(id) {
				return
			}
			continue
		}
		stack = append(stack, n.child1, n.child2)
	}
}

// Leaves yields every live leaf handle in pool order.
func (t *Tree) Leaves() iter.Seq[geom.Handle] {
	return func(yield func(geom.Handle) bool) {
		for i := range t.nodes {
			n := &t.nodes[i]
			if n.isFree() || !n.isLeaf() {
				continue
			}
			if !yield(geom.Handle(i)) {
				return
			}
		}
	}
}
