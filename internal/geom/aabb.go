package geom

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

func NewAABB(min, max mgl64.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// FromCenter builds a box from its center point and half extents.
func FromCenter(center, half mgl64.Vec3) AABB {
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// Validate rejects boxes with non-finite or inverted components.
// Zero-extent boxes are valid.
func (a AABB) Validate() error {
	for i := 0; i < 3; i++ {
		lo, hi := a.Min[i], a.Max[i]
		if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
			return fmt.Errorf("%w: non-finite component on axis %d", ErrInvalidBox, i)
		}
		if lo > hi {
			return fmt.Errorf("%w: min %g > max %g on axis %d", ErrInvalidBox, lo, hi, i)
		}
	}
	return nil
}

// Overlaps reports whether the closed boxes intersect. Touching faces count.
func (a AABB) Overlaps(b AABB) bool {
	return a.Max[0] >= b.Min[0] && a.Min[0] <= b.Max[0] &&
		a.Max[1] >= b.Min[1] && a.Min[1] <= b.Max[1] &&
		a.Max[2] >= b.Min[2] && a.Min[2] <= b.Max[2]
}

// Contains reports whether b lies entirely inside a.
func (a AABB) Contains(b AABB) bool {
	return a.Min[0] <= b.Min[0] && a.Min[1] <= b.Min[1] && a.Min[2] <= b.Min[2] &&
		b.Max[0] <= a.Max[0] && b.Max[1] <= a.Max[1] && b.Max[2] <= a.Max[2]
}

func (a AABB) Union(b AABB) AABB {
	return AABB{
		Min: mgl64.Vec3{math.Min(a.Min[0], b.Min[0]), math.Min(a.Min[1], b.Min[1]), math.Min(a.Min[2], b.Min[2])},
		Max: mgl64.Vec3{math.Max(a.Max[0], b.Max[0]), math.Max(a.Max[1], b.Max[1]), math.Max(a.Max[2], b.Max[2])},
	}
}

// SurfaceArea is the insertion cost metric of the tree.
func (a AABB) SurfaceArea() float64 {
	d := a.Max.Sub(a.Min)
	return 2 * (d[0]*d[1] + d[1]*d[2] + d[2]*d[0])
}

func (a AABB) Volume() float64 {
	d := a.Max.Sub(a.Min)
	return d[0] * d[1] * d[2]
}

func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Extents returns the half size on each axis.
func (a AABB) Extents() mgl64.Vec3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

// Expand grows the box by margin on every side.
func (a AABB) Expand(margin float64) AABB {
	r := mgl64.Vec3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(r), Max: a.Max.Add(r)}
}

// Extend stretches the box along d: negative components move Min, positive move Max.
func (a AABB) Extend(d mgl64.Vec3) AABB {
	for i := 0; i < 3; i++ {
		if d[i] < 0 {
			a.Min[i] += d[i]
		} else {
			a.Max[i] += d[i]
		}
	}
	return a
}

func (a AABB) Translate(d mgl64.Vec3) AABB {
	return AABB{Min: a.Min.Add(d), Max: a.Max.Add(d)}
}

func (a AABB) String() string {
	return fmt.Sprintf("[%g,%g,%g]-[%g,%g,%g]", a.Min[0], a.Min[1], a.Min[2], a.Max[0], a.Max[1], a.Max[2])
}
