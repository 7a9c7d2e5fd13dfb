package tree

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/broadphase/internal/geom"
)

const (
	DefaultMargin                 = 0.1
	DefaultDisplacementMultiplier = 1.7
	defaultCapacity               = 16
)

type Options struct {
	// Margin fattens every stored box on all sides.
	Margin float64 `yaml:"margin" json:"margin"`
	// DisplacementMultiplier scales the displacement hint used to extend
	// a reinserted box in the direction of motion.
	DisplacementMultiplier float64 `yaml:"displacement_multiplier" json:"displacement_multiplier"`
	// InitialCapacity is the starting size of the node pool.
	InitialCapacity int `yaml:"initial_capacity" json:"initial_capacity"`
	// MaxNodes bounds the node pool. Zero means unbounded.
	MaxNodes int `yaml:"max_nodes" json:"max_nodes"`
}

func DefaultOptions() Options {
	return Options{
		Margin:                 DefaultMargin,
		DisplacementMultiplier: DefaultDisplacementMultiplier,
		InitialCapacity:        defaultCapacity,
	}
}

// Tree is a dynamic AABB tree. Leaves store fat boxes so that small motions
// do not require a structural update. Nodes live in a pool addressed by
// index; a leaf's index is its handle.
//
// Tree is not safe for concurrent use.
type Tree struct {
	opts      Options
	nodes     []node
	root      geom.Handle
	freeList  geom.Handle
	nodeCount int
	leafCount int
}

func New(opts Options) *Tree {
	if opts.Margin < 0 {
		opts.Margin = 0
	}
	if opts.DisplacementMultiplier < 0 {
		opts.DisplacementMultiplier = 0
	}
	if opts.InitialCapacity <= 0 {
		opts.InitialCapacity = defaultCapacity
	}
	if opts.MaxNodes > 0 && opts.InitialCapacity > opts.MaxNodes {
		opts.InitialCapacity = opts.MaxNodes
	}

	t := &Tree{opts: opts}
	t.Reset()
	return t
}

// Reset drops every node and forgets all handles.
func (t *Tree) Reset() {
	t.nodes = t.nodes[:0]
	t.root = geom.NullHandle
	t.freeList = geom.NullHandle
	t.nodeCount = 0
	t.leafCount = 0

	// seed the pool at the configured size
	t.nodes = append(t.nodes, make([]node, t.opts.InitialCapacity)...)
	for i := range t.nodes {
		t.nodes[i] = node{parent: geom.Handle(i + 1), child1: geom.NullHandle, child2: geom.NullHandle, height: -1}
	}
	t.nodes[len(t.nodes)-1].parent = geom.NullHandle
	t.freeList = 0
}

func (t *Tree) Options() Options { return t.opts }

// Len returns the number of leaves.
func (t *Tree) Len() int { return t.leafCount }

// NodeCount returns the number of allocated nodes, leaves and internal.
func (t *Tree) NodeCount() int { return t.nodeCount }

// Insert adds a leaf holding box fattened by the configured margin.
func (t *Tree) Insert(box geom.AABB) (geom.Handle, error) {
	if err := box.Validate(); err != nil {
		return geom.NullHandle, &HandleError{Op: "insert", Handle: geom.NullHandle, Err: err}
	}

	need := 2
	if t.root == geom.NullHandle {
		need = 1
	}
	if !t.reserve(need) {
		return geom.NullHandle, &HandleError{Op: "insert", Handle: geom.NullHandle, Err: ErrCapacity}
	}

	leaf := t.allocate()
	t.nodes[leaf].box = box.Expand(t.opts.Margin)
	t.insertLeaf(leaf)
	t.leafCount++
	return leaf, nil
}

// Remove deletes the leaf. The handle becomes invalid and may be reissued.
func (t *Tree) Remove(h geom.Handle) error {
	if !t.isLeaf(h) {
		return &HandleError{Op: "remove", Handle: h, Err: ErrUnknownHandle}
	}

	t.removeLeaf(h)
	t.free(h)
	t.leafCount--
	return nil
}

// Update moves a leaf to box. When box still fits in the stored fat box
// nothing changes and Update returns false. Otherwise the leaf is reinserted
// with a box fattened around box and extended along displacement, and Update
// returns true. A failed Update leaves the tree untouched.
func (t *Tree) Update(h geom.Handle, box geom.AABB, displacement mgl64.Vec3) (bool, error) {
	if !t.isLeaf(h) {
		return false, &HandleError{Op: "update", Handle: h, Err: ErrUnknownHandle}
	}
	if err := box.Validate(); err != nil {
		return false, &HandleError{Op: "update", Handle: h, Err: err}
	}
	for i := 0; i < 3; i++ {
		if math.IsNaN(displacement[i]) || math.IsInf(displacement[i], 0) {
			return false, &HandleError{Op: "update", Handle: h,
				Err: fmt.Errorf("%w: non-finite displacement on axis %d", ErrInvalidBox, i)}
		}
	}

	if t.nodes[h].box.Contains(box) {
		return false, nil
	}

	// reinsertion allocates at most the parent node removeLeaf just freed,
	// so it never hits the pool limit.
	t.removeLeaf(h)
	t.nodes[h].box = box.Expand(t.opts.Margin).Extend(displacement.Mul(t.opts.DisplacementMultiplier))
	t.insertLeaf(h)
	return true, nil
}

// FatAABB returns the stored box of a leaf.
func (t *Tree) FatAABB(h geom.Handle) (geom.AABB, error) {
	if !t.isLeaf(h) {
		return geom.AABB{}, &HandleError{Op: "fat aabb", Handle: h, Err: ErrUnknownHandle}
	}
	return t.nodes[h].box, nil
}

// Contains reports whether h is a live leaf.
func (t *Tree) Contains(h geom.Handle) bool {
	return t.isLeaf(h)
}

func (t *Tree) isLeaf(h geom.Handle) bool {
	if h < 0 || int(h) >= len(t.nodes) {
		return false
	}
	n := &t.nodes[h]
	return !n.isFree() && n.isLeaf()
}

// insertLeaf links an allocated leaf into the tree. The descent picks, at
// every internal node, the child whose surface area grows least.
func (t *Tree) insertLeaf(leaf geom.Handle) {
	if t.root == geom.NullHandle {
		t.root = leaf
		t.nodes[leaf].parent = geom.NullHandle
		return
	}

	leafBox := t.nodes[leaf].box
	index := t.root
	for !t.nodes[index].isLeaf() {
		c1 := t.nodes[index].child1
		c2 := t.nodes[index].child2

		cost1 := t.descendCost(c1, leafBox)
		cost2 := t.descendCost(c2, leafBox)

		if cost1 < cost2 {
			index = c1
		} else if cost2 < cost1 {
			index = c2
		} else if t.nodes[c1].box.Union(leafBox).SurfaceArea() <= t.nodes[c2].box.Union(leafBox).SurfaceArea() {
			index = c1
		} else {
			index = c2
		}
	}

	sibling := index
	oldParent := t.nodes[sibling].parent
	newParent := t.allocate()
	t.nodes[newParent].parent = oldParent
	t.nodes[newParent].box = leafBox.Union(t.nodes[sibling].box)
	t.nodes[newParent].height = t.nodes[sibling].height + 1
	t.nodes[newParent].child1 = sibling
	t.nodes[newParent].child2 = leaf
	t.nodes[sibling].parent = newParent
	t.nodes[leaf].parent = newParent

	if oldParent != geom.NullHandle {
		if t.nodes[oldParent].child1 == sibling {
			t.nodes[oldParent].child1 = newParent
		} else {
			t.nodes[oldParent].child2 = newParent
		}
	} else {
		t.root = newParent
	}

	t.refit(t.nodes[leaf].parent)
}

// descendCost is the surface area added by placing box under child.
func (t *Tree) descendCost(child geom.Handle, box geom.AABB) float64 {
	n := &t.nodes[child]
	return n.box.Union(box).SurfaceArea() - n.box.SurfaceArea()
}

func (t *Tree) removeLeaf(leaf geom.Handle) {
	if leaf == t.root {
		t.root = geom.NullHandle
		return
	}

	parent := t.nodes[leaf].parent
	grandParent := t.nodes[parent].parent
	sibling := t.nodes[parent].child1
	if sibling == leaf {
		sibling = t.nodes[parent].child2
	}

	if grandParent != geom.NullHandle {
		if t.nodes[grandParent].child1 == parent {
			t.nodes[grandParent].child1 = sibling
		} else {
			t.nodes[grandParent].child2 = sibling
		}
		t.nodes[sibling].parent = grandParent
		t.free(parent)
		t.refit(grandParent)
	} else {
		t.root = sibling
		t.nodes[sibling].parent = geom.NullHandle
		t.free(parent)
	}

	t.nodes[leaf].parent = geom.NullHandle
}

// refit walks from index to the root, rebalancing each ancestor and
// refreshing its height and union box.
func (t *Tree) refit(index geom.Handle) {
	for index != geom.NullHandle {
		index = t.balance(index)

		n := &t.nodes[index]
		c1 := &t.nodes[n.child1]
		c2 := &t.nodes[n.child2]
		n.height = 1 + max(c1.height, c2.height)
		n.box = c1.box.Union(c2.box)

		index = n.parent
	}
}
