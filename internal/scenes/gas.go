package scenes

import (
	"math/rand"

	"github.com/san-kum/broadphase/internal/sim"
)

// Gas scatters bodies through the world with random velocities and no
// gravity. Walls reflect them.
type Gas struct {
	base
}

func NewGas(p Params) *Gas {
	return &Gas{base{params: p}}
}

func (g *Gas) Name() string { return "gas" }

func (g *Gas) Derivative(x sim.State, t float64) sim.State {
	return g.drift(x, 0)
}

func (g *Gas) Initial(seed int64) sim.State {
	r := rand.New(rand.NewSource(seed))
	x := make(sim.State, g.StateDim())
	for i := 0; i < g.params.Bodies; i++ {
		x.SetPosition(i, g.randomPoint(r))
		x.SetVelocity(i, g.randomVelocity(r))
	}
	return x
}
