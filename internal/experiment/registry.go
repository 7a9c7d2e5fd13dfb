package experiment

import (
	"fmt"
	"slices"

	"github.com/san-kum/broadphase/internal/integrators"
	"github.com/san-kum/broadphase/internal/metrics"
	"github.com/san-kum/broadphase/internal/scenes"
	"github.com/san-kum/broadphase/internal/sim"
)

type Registry struct {
	scenes      map[string]func(scenes.Params) sim.Scene
	integrators map[string]func() sim.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		scenes:      make(map[string]func(scenes.Params) sim.Scene),
		integrators: make(map[string]func() sim.Integrator),
	}

	r.scenes["gas"] = func(p scenes.Params) sim.Scene { return scenes.NewGas(p) }
	r.scenes["rain"] = func(p scenes.Params) sim.Scene { return scenes.NewRain(p) }
	r.scenes["grid"] = func(p scenes.Params) sim.Scene { return scenes.NewGrid(p) }

	r.integrators["euler"] = func() sim.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() sim.Integrator { return integrators.NewRK4() }
	r.integrators["verlet"] = func() sim.Integrator { return integrators.NewVerlet() }
	r.integrators["leapfrog"] = func() sim.Integrator { return integrators.NewLeapfrog() }

	return r
}

func (r *Registry) GetScene(name string, p scenes.Params) (sim.Scene, error) {
	fn, ok := r.scenes[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene: %s", name)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return fn(p), nil
}

func (r *Registry) GetIntegrator(name string) (sim.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

// SceneFactory binds p so the Ensemble can build one scene per run.
func (r *Registry) SceneFactory(name string, p scenes.Params) (func() sim.Scene, error) {
	if _, err := r.GetScene(name, p); err != nil {
		return nil, err
	}
	fn := r.scenes[name]
	return func() sim.Scene { return fn(p) }, nil
}

func (r *Registry) IntegratorFactory(name string) (func() sim.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn, nil
}

func (r *Registry) ListScenes() []string {
	names := make([]string, 0, len(r.scenes))
	for name := range r.scenes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	return metrics.Default()
}
