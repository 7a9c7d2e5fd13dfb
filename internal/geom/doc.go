// Package geom provides the value types shared by the broad-phase packages.
//
//   - [AABB]: axis-aligned box over [mgl64.Vec3]
//   - [Handle]: opaque proxy identifier issued by the tree
//   - [Pair]: ordered candidate pair (A < B)
package geom
