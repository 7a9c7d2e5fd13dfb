// Package tree implements a dynamic AABB tree for broad-phase collision
// detection.
//
// Leaves hold "fat" boxes: the proxy box grown by a margin and, after a
// move, stretched along the displacement. Moves that stay inside the fat
// box cost O(1) and leave the tree untouched. Every insertion and removal
// rebalances the path to the root with AVL rotations, so the height stays
// logarithmic in the leaf count regardless of insertion order.
//
// # Example
//
//	t := tree.New(tree.DefaultOptions())
//	h, _ := t.Insert(box)
//	moved, _ := t.Update(h, newBox, displacement)
//	for other := range t.Query(queryBox) {
//	    ...
//	}
//
// # Thread Safety
//
// A Tree is owned by a single goroutine. Queries may run concurrently with
// each other but never with a mutation.
package tree
