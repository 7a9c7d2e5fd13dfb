package geom

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
)

func box(x0, y0, z0, x1, y1, z1 float64) AABB {
	return NewAABB(mgl64.Vec3{x0, y0, z0}, mgl64.Vec3{x1, y1, z1})
}

func TestAABB_Validate(t *testing.T) {
	tests := []struct {
		name  string
		box   AABB
		valid bool
	}{
		{"unit", box(0, 0, 0, 1, 1, 1), true},
		{"point", box(2, 2, 2, 2, 2, 2), true},
		{"inverted x", box(1, 0, 0, 0, 1, 1), false},
		{"inverted z", box(0, 0, 1, 1, 1, 0), false},
		{"NaN", box(math.NaN(), 0, 0, 1, 1, 1), false},
		{"+Inf", box(0, 0, 0, 1, math.Inf(1), 1), false},
		{"-Inf", box(math.Inf(-1), 0, 0, 1, 1, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.box.Validate()
			if tt.valid && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidBox) {
				t.Errorf("Validate() = %v, want ErrInvalidBox", err)
			}
		})
	}
}

func TestAABB_Overlaps(t *testing.T) {
	a := box(0, 0, 0, 1, 1, 1)
	tests := []struct {
		name string
		b    AABB
		want bool
	}{
		{"partial", box(0.5, 0.5, 0.5, 1.5, 1.5, 1.5), true},
		{"touching face", box(1, 0, 0, 2, 1, 1), true},
		{"inside", box(0.25, 0.25, 0.25, 0.75, 0.75, 0.75), true},
		{"separated x", box(2, 0, 0, 3, 1, 1), false},
		{"separated y", box(0, -3, 0, 1, -2, 1), false},
		{"separated z", box(0, 0, 1.01, 1, 1, 2), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(a); got != tt.want {
				t.Errorf("Overlaps() not symmetric: got %v", got)
			}
		})
	}
}

func TestAABB_Contains(t *testing.T) {
	outer := box(0, 0, 0, 4, 4, 4)
	if !outer.Contains(box(1, 1, 1, 2, 2, 2)) {
		t.Error("expected inner box to be contained")
	}
	if !outer.Contains(outer) {
		t.Error("box should contain itself")
	}
	if outer.Contains(box(3, 3, 3, 5, 4, 4)) {
		t.Error("box crossing the boundary should not be contained")
	}
}

func TestAABB_UnionAndArea(t *testing.T) {
	u := box(0, 0, 0, 1, 1, 1).Union(box(2, -1, 0, 3, 0, 2))
	want := box(0, -1, 0, 3, 1, 2)
	if diff := cmp.Diff(want, u); diff != "" {
		t.Errorf("Union mismatch (-want +got):\n%s", diff)
	}

	if got := box(0, 0, 0, 1, 2, 3).SurfaceArea(); got != 22 {
		t.Errorf("SurfaceArea() = %v, want 22", got)
	}
	if got := box(0, 0, 0, 1, 2, 3).Volume(); got != 6 {
		t.Errorf("Volume() = %v, want 6", got)
	}
}

func TestAABB_ExpandExtend(t *testing.T) {
	b := box(0, 0, 0, 1, 1, 1).Expand(0.5)
	if diff := cmp.Diff(box(-0.5, -0.5, -0.5, 1.5, 1.5, 1.5), b); diff != "" {
		t.Errorf("Expand mismatch (-want +got):\n%s", diff)
	}

	e := box(0, 0, 0, 1, 1, 1).Extend(mgl64.Vec3{2, -1, 0})
	if diff := cmp.Diff(box(0, -1, 0, 3, 1, 1), e); diff != "" {
		t.Errorf("Extend mismatch (-want +got):\n%s", diff)
	}

	c := FromCenter(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{0.5, 0.5, 0.5})
	if !c.Center().ApproxEqual(mgl64.Vec3{1, 1, 1}) {
		t.Errorf("Center() = %v", c.Center())
	}
	if !c.Extents().ApproxEqual(mgl64.Vec3{0.5, 0.5, 0.5}) {
		t.Errorf("Extents() = %v", c.Extents())
	}
}

func TestMakePair(t *testing.T) {
	p := MakePair(7, 3)
	if p.A != 3 || p.B != 7 {
		t.Errorf("MakePair(7, 3) = %+v", p)
	}
	if MakePair(3, 7) != p {
		t.Error("MakePair should be order independent")
	}
	if !MakePair(1, 9).Less(MakePair(2, 3)) {
		t.Error("pairs should order by first handle")
	}
	if MakePair(1, 2).Compare(MakePair(1, 3)) >= 0 {
		t.Error("pairs with equal first handle should order by second")
	}
}
