package integrators

import (
	"testing"

	"github.com/san-kum/broadphase/internal/sim"
)

// benchGas drifts 64 bodies under gravity, the same shape as a scene state.
type benchGas struct{}

func (benchGas) StateDim() int { return 6 * 64 }
func (benchGas) Derivative(x sim.State, t float64) sim.State {
	dx := make(sim.State, len(x))
	half := len(x) / 2
	copy(dx[:half], x[half:])
	for i := 1; i < half; i += 3 {
		dx[half+i] = -9.81
	}
	return dx
}

func benchStep(b *testing.B, integ sim.Integrator, dyn sim.Dynamics) {
	x := make(sim.State, dyn.StateDim())
	for i := range x {
		x[i] = float64(i) * 0.1
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integ.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkEuler(b *testing.B)    { benchStep(b, NewEuler(), oscillator{}) }
func BenchmarkRK4(b *testing.B)      { benchStep(b, NewRK4(), oscillator{}) }
func BenchmarkVerlet(b *testing.B)   { benchStep(b, NewVerlet(), oscillator{}) }
func BenchmarkLeapfrog(b *testing.B) { benchStep(b, NewLeapfrog(), oscillator{}) }

func BenchmarkRK4_Gas64(b *testing.B)      { benchStep(b, NewRK4(), benchGas{}) }
func BenchmarkVerlet_Gas64(b *testing.B)   { benchStep(b, NewVerlet(), benchGas{}) }
func BenchmarkLeapfrog_Gas64(b *testing.B) { benchStep(b, NewLeapfrog(), benchGas{}) }
