// Package broadphase finds candidate collision pairs between shapes.
//
// A [BroadPhase] owns a dynamic AABB tree and a moved set. Shapes enter
// through AddShape, follow their bodies through UpdateShape and leave through
// RemoveShape. Once per step, ComputeOverlappingPairs queries the tree with
// every moved proxy and reports each unique overlapping pair exactly once:
//
//	bp := broadphase.New[int](broadphase.DefaultOptions())
//	bp.AddShape(1, boxA)
//	bp.AddShape(2, boxB)
//	pairs, _ := bp.ComputeOverlappingPairs(func(a, b int) {
//	    // narrow phase for (a, b)
//	})
//
// The returned pair slice is a snapshot. It may be handed to worker
// goroutines for exact testing while the owning goroutine prepares the next
// step, as long as the coordinator itself is only used from one goroutine.
package broadphase
