package scenes

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/broadphase/internal/sim"
)

// Grid lays bodies on a regular lattice with one body gap between
// neighbours. The first Movers bodies get random velocities; the rest never
// move, so their proxies are never reinserted.
type Grid struct {
	base
}

func NewGrid(p Params) *Grid {
	return &Grid{base{params: p}}
}

func (g *Grid) Name() string { return "grid" }

func (g *Grid) Derivative(x sim.State, t float64) sim.State {
	return g.drift(x, 0)
}

// Side returns the number of lattice cells along each axis.
func (g *Grid) Side() int {
	side := 1
	for side*side*side < g.params.Bodies {
		side++
	}
	return side
}

func (g *Grid) Initial(seed int64) sim.State {
	r := rand.New(rand.NewSource(seed))
	x := make(sim.State, g.StateDim())

	side := g.Side()
	pitch := 2 * g.params.BodySize
	if maxPitch := (g.params.WorldSize - g.params.BodySize) / float64(max(side-1, 1)); pitch > maxPitch {
		pitch = maxPitch
	}
	origin := -pitch * float64(side-1) / 2

	movers := min(g.params.Movers, g.params.Bodies)
	for i := 0; i < g.params.Bodies; i++ {
		ix, iy, iz := i%side, (i/side)%side, i/(side*side)
		x.SetPosition(i, mgl64.Vec3{
			origin + pitch*float64(ix),
			origin + pitch*float64(iy),
			origin + pitch*float64(iz),
		})
		if i < movers {
			x.SetVelocity(i, g.randomVelocity(r))
		}
	}
	return x
}
