package scenes

import (
	"math/rand"

	"github.com/san-kum/broadphase/internal/sim"
)

// Rain drops bodies from the upper half of the world. They fall under
// gravity and bounce off the floor, piling up near the bottom.
type Rain struct {
	base
}

func NewRain(p Params) *Rain {
	return &Rain{base{params: p}}
}

func (r *Rain) Name() string { return "rain" }

func (r *Rain) Derivative(x sim.State, t float64) sim.State {
	return r.drift(x, r.params.Gravity)
}

func (r *Rain) Initial(seed int64) sim.State {
	rng := rand.New(rand.NewSource(seed))
	x := make(sim.State, r.StateDim())
	for i := 0; i < r.params.Bodies; i++ {
		p := r.randomPoint(rng)
		if p[1] < 0 {
			p[1] = -p[1]
		}
		v := r.randomVelocity(rng)
		v[1] = 0
		x.SetPosition(i, p)
		x.SetVelocity(i, v.Mul(0.2))
	}
	return x
}
