package tree

import "github.com/san-kum/broadphase/internal/geom"

// balance rotates the taller child of iA up when the child heights differ
// by more than one. Returns the index now occupying iA's position.
func (t *Tree) balance(iA geom.Handle) geom.Handle {
	a := &t.nodes[iA]
	if a.isLeaf() {
		return iA
	}

	h1 := t.nodes[a.child1].height
	h2 := t.nodes[a.child2].height

	switch {
	case h2-h1 > 1:
		return t.rotate(iA, a.child2)
	case h1-h2 > 1:
		return t.rotate(iA, a.child1)
	}
	return iA
}

// rotate lifts iUp into iA's place. iUp keeps its taller child, adopts iA,
// and iA takes the shorter grandchild in the slot iUp vacated. Covers both
// the single and the double rotation cases since the grandchild that moves
// is picked by height.
func (t *Tree) rotate(iA, iUp geom.Handle) geom.Handle {
	a := &t.nodes[iA]
	up := &t.nodes[iUp]

	iTall, iShort := up.child1, up.child2
	if t.nodes[iTall].height < t.nodes[iShort].height {
		iTall, iShort = iShort, iTall
	}

	up.child1 = iA
	up.child2 = iTall
	up.parent = a.parent
	a.parent = iUp

	if a.child1 == iUp {
		a.child1 = iShort
	} else {
		a.child2 = iShort
	}
	t.nodes[iShort].parent = iA

	if up.parent != geom.NullHandle {
		p := &t.nodes[up.parent]
		if p.child1 == iA {
			p.child1 = iUp
		} else {
			p.child2 = iUp
		}
	} else {
		t.root = iUp
	}

	c1, c2 := &t.nodes[a.child1], &t.nodes[a.child2]
	a.box = c1.box.Union(c2.box)
	a.height = 1 + max(c1.height, c2.height)

	tall := &t.nodes[iTall]
	up.box = a.box.Union(tall.box)
	up.height = 1 + max(a.height, tall.height)

	return iUp
}
