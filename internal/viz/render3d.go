package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/broadphase/internal/geom"
)

// Camera orbits the world center and projects with a simple perspective
// divide.
type Camera struct {
	Center           mgl64.Vec3
	Distance         float64
	Scale            float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

// NewCamera frames bounds so the whole world fits the screen at zoom 1.
func NewCamera(bounds geom.AABB) *Camera {
	radius := bounds.Extents().Len()
	if radius == 0 {
		radius = 1
	}
	return &Camera{
		Center:   bounds.Center(),
		Distance: 4 * radius,
		Scale:    1 / radius,
		RotX:     0.35,
		RotY:     -0.5,
		Zoom:     1.0,
	}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) rotation() mgl64.Mat3 {
	return mgl64.Rotate3DZ(c.RotZ).Mul3(mgl64.Rotate3DY(c.RotY)).Mul3(mgl64.Rotate3DX(c.RotX))
}

// Project maps p onto a sw x sh dot grid and returns the screen position,
// the depth used for ordering and whether the point is on screen.
func (c *Camera) Project(p mgl64.Vec3, sw, sh int) (int, int, float64, bool) {
	return c.project(c.rotation(), p, sw, sh)
}

func (c *Camera) project(rot mgl64.Mat3, p mgl64.Vec3, sw, sh int) (int, int, float64, bool) {
	r := rot.Mul3x1(p.Sub(c.Center))
	depth := c.Distance - r.Z()
	if depth <= 0 {
		return 0, 0, 0, false
	}
	persp := c.Distance / depth
	half := float64(min(sw, sh)) / 2
	k := persp * c.Scale * c.Zoom * half
	sx := int(r.X()*k) + sw/2
	sy := int(-r.Y()*k) + sh/2
	return sx, sy, r.Z(), sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End mgl64.Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe { return &Wireframe{Edges: make([]Edge, 0)} }

func (w *Wireframe) AddEdge(s, e mgl64.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }

func (w *Wireframe) Clear() { w.Edges = w.Edges[:0] }

var boxEdges = [12][2]int{
	{0, 1}, {1, 3}, {3, 2}, {2, 0},
	{4, 5}, {5, 7}, {7, 6}, {6, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// AddBox adds the twelve edges of b.
func (w *Wireframe) AddBox(b geom.AABB) {
	var v [8]mgl64.Vec3
	for i := range v {
		for a := 0; a < 3; a++ {
			if i&(1<<a) != 0 {
				v[i][a] = b.Max[a]
			} else {
				v[i][a] = b.Min[a]
			}
		}
	}
	for _, e := range boxEdges {
		w.AddEdge(v[e[0]], v[e[1]])
	}
}

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render3D draws the wireframe back to front.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	cw, ch := c.Dots()
	rot := cam.rotation()
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.project(rot, e.Start, cw, ch)
		x2, y2, d2, v2 := cam.project(rot, e.End, cw, ch)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		c.DrawLine(e.x1, e.y1, e.x2, e.y2)
	}
}
