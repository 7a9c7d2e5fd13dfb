package integrators

import "github.com/san-kum/broadphase/internal/sim"

// Euler is the explicit first-order method. Cheap and dissipative-free only
// for constant acceleration, which is all the built-in scenes use.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn sim.Dynamics, x sim.State, t float64, dt float64) sim.State {
	dx := dyn.Derivative(x, t)
	result := make(sim.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
