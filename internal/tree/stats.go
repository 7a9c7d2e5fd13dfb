package tree

import (
	"errors"
	"fmt"

	"github.com/san-kum/broadphase/internal/geom"
)

// Height returns the height of the root. A single leaf has height 0.
func (t *Tree) Height() int {
	if t.root == geom.NullHandle {
		return 0
	}
	return int(t.nodes[t.root].height)
}

// MaxBalance returns the largest child height difference over all
// internal nodes.
func (t *Tree) MaxBalance() int {
	maxBalance := 0
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.height <= 1 {
			continue
		}
		b := int(t.nodes[n.child2].height - t.nodes[n.child1].height)
		if b < 0 {
			b = -b
		}
		maxBalance = max(maxBalance, b)
	}
	return maxBalance
}

// AreaRatio is the summed surface area of all nodes over the root's area.
// Lower is better.
func (t *Tree) AreaRatio() float64 {
	if t.root == geom.NullHandle {
		return 0
	}
	rootArea := t.nodes[t.root].box.SurfaceArea()
	if rootArea == 0 {
		return 0
	}

	total := 0.0
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.isFree() {
			continue
		}
		total += n.box.SurfaceArea()
	}
	return total / rootArea
}

// ErrCorrupt is wrapped by Validate when an invariant does not hold.
var ErrCorrupt = errors.New("tree: invariant violated")

// Validate checks links, heights, union boxes, balance and bookkeeping.
// It returns the first violation found.
func (t *Tree) Validate() error {
	if t.root != geom.NullHandle && t.nodes[t.root].parent != geom.NullHandle {
		return fmt.Errorf("%w: root %d has parent %d", ErrCorrupt, t.root, t.nodes[t.root].parent)
	}

	leaves, err := t.validateNode(t.root)
	if err != nil {
		return err
	}
	if leaves != t.leafCount {
		return fmt.Errorf("%w: reachable leaves %d, counted %d", ErrCorrupt, leaves, t.leafCount)
	}

	free := 0
	for id := t.freeList; id != geom.NullHandle; id = t.nodes[id].parent {
		if !t.nodes[id].isFree() {
			return fmt.Errorf("%w: node %d on free list is in use", ErrCorrupt, id)
		}
		free++
		if free > len(t.nodes) {
			return fmt.Errorf("%w: free list cycle", ErrCorrupt)
		}
	}
	if free+t.nodeCount != len(t.nodes) {
		return fmt.Errorf("%w: %d free + %d used != pool %d", ErrCorrupt, free, t.nodeCount, len(t.nodes))
	}
	return nil
}

func (t *Tree) validateNode(id geom.Handle) (int, error) {
	if id == geom.NullHandle {
		return 0, nil
	}
	n := &t.nodes[id]
	if n.isFree() {
		return 0, fmt.Errorf("%w: node %d reachable but free", ErrCorrupt, id)
	}
	if n.isLeaf() {
		if n.child2 != geom.NullHandle || n.height != 0 {
			return 0, fmt.Errorf("%w: leaf %d malformed", ErrCorrupt, id)
		}
		return 1, nil
	}

	c1, c2 := &t.nodes[n.child1], &t.nodes[n.child2]
	if c1.parent != id || c2.parent != id {
		return 0, fmt.Errorf("%w: children of %d do not point back", ErrCorrupt, id)
	}
	if n.height != 1+max(c1.height, c2.height) {
		return 0, fmt.Errorf("%w: node %d height %d, children %d/%d", ErrCorrupt, id, n.height, c1.height, c2.height)
	}
	if d := c1.height - c2.height; d > 1 || d < -1 {
		return 0, fmt.Errorf("%w: node %d unbalanced (%d vs %d)", ErrCorrupt, id, c1.height, c2.height)
	}
	if n.box != c1.box.Union(c2.box) {
		return 0, fmt.Errorf("%w: node %d box %v is not the union of its children", ErrCorrupt, id, n.box)
	}

	l1, err := t.validateNode(n.child1)
	if err != nil {
		return 0, err
	}
	l2, err := t.validateNode(n.child2)
	if err != nil {
		return 0, err
	}
	return l1 + l2, nil
}
