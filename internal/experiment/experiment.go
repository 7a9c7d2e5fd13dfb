package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/broadphase/internal/config"
	"github.com/san-kum/broadphase/internal/sim"
	"github.com/sirupsen/logrus"
)

// Experiment is one configured run: a scene, an integrator and the default
// metrics, resolved by name from a Registry.
type Experiment struct {
	cfg       *config.Config
	scene     sim.Scene
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

func (e *Experiment) Setup(reg *Registry, log logrus.FieldLogger) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	scene, err := reg.GetScene(e.cfg.Scene, e.cfg.Params)
	if err != nil {
		return err
	}
	integ, err := reg.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}

	e.scene = scene
	e.simulator = sim.New(scene, integ, log)
	for _, m := range reg.DefaultMetrics() {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.SimConfig())
}

// RunWithCallback drives the experiment step by step, see
// sim.Simulator.RunWithCallback.
func (e *Experiment) RunWithCallback(ctx context.Context, fn func(w *sim.World, st sim.StepStats) bool) error {
	if e.simulator == nil {
		return fmt.Errorf("experiment not setup")
	}
	return e.simulator.RunWithCallback(ctx, e.cfg.SimConfig(), fn)
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Scene() sim.Scene { return e.scene }

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator {
	return e.simulator
}
