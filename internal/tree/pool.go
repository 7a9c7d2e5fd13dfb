package tree

import "github.com/san-kum/broadphase/internal/geom"

type node struct {
	// fat box for leaves, union of children otherwise
	box geom.AABB

	// parent link, or next free node while on the free list
	parent geom.Handle

	child1 geom.Handle
	child2 geom.Handle

	// leaf = 0, free node = -1
	height int32
}

func (n *node) isLeaf() bool {
	return n.child1 == geom.NullHandle
}

func (n *node) isFree() bool {
	return n.height < 0
}

// grow extends the pool and threads the new slots onto the free list.
func (t *Tree) grow() {
	oldCap := len(t.nodes)
	newCap := oldCap * 2
	if newCap == 0 {
		newCap = defaultCapacity
	}
	if t.opts.MaxNodes > 0 && newCap > t.opts.MaxNodes {
		newCap = t.opts.MaxNodes
	}

	t.nodes = append(t.nodes, make([]node, newCap-oldCap)...)
	for i := oldCap; i < newCap-1; i++ {
		t.nodes[i].parent = geom.Handle(i + 1)
		t.nodes[i].height = -1
	}
	t.nodes[newCap-1].parent = t.freeList
	t.nodes[newCap-1].height = -1
	t.freeList = geom.Handle(oldCap)
}

// reserve reports whether n more nodes can be allocated.
func (t *Tree) reserve(n int) bool {
	if t.opts.MaxNodes <= 0 {
		return true
	}
	return t.nodeCount+n <= t.opts.MaxNodes
}

// allocate peels a node off the free list, growing the pool when empty.
// Callers check reserve first.
func (t *Tree) allocate() geom.Handle {
	if t.freeList == geom.NullHandle {
		t.grow()
	}

	id := t.freeList
	n := &t.nodes[id]
	t.freeList = n.parent
	n.parent = geom.NullHandle
	n.child1 = geom.NullHandle
	n.child2 = geom.NullHandle
	n.height = 0
	t.nodeCount++
	return id
}

func (t *Tree) free(id geom.Handle) {
	n := &t.nodes[id]
	n.parent = t.freeList
	n.child1 = geom.NullHandle
	n.child2 = geom.NullHandle
	n.height = -1
	n.box = geom.AABB{}
	t.freeList = id
	t.nodeCount--
}
