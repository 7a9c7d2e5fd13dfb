package sim

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

type Simulator struct {
	scene      Scene
	integrator Integrator
	metrics    []Metric
	observers  []Observer
	log        logrus.FieldLogger
}

// New builds a simulator. A nil logger discards output.
func New(scene Scene, integrator Integrator, log logrus.FieldLogger) *Simulator {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Simulator{
		scene:      scene,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		log:        log,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run executes cfg.Steps steps. The context is checked between steps; on
// cancellation or a step failure the partial result is returned with the
// error.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	w, err := s.newWorld(cfg)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Steps:   make([]StepStats, 0, cfg.Steps),
		Metrics: make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	log := s.log.WithFields(logrus.Fields{"scene": s.scene.Name(), "bodies": len(w.Bodies())})
	log.WithField("steps", cfg.Steps).Info("run started")
	start := time.Now()

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, w, start)
			return result, ctx.Err()
		default:
		}

		st, err := w.Step()
		if err != nil {
			s.finish(result, w, start)
			log.WithError(err).Error("step failed")
			return result, err
		}

		s.observe(st)
		result.Steps = append(result.Steps, st)
		result.StepsTaken++

		if st.Step%100 == 0 {
			log.WithFields(logrus.Fields{
				"step":       st.Step,
				"candidates": st.Candidates,
				"contacts":   st.Contacts,
				"height":     st.Height,
			}).Debug("progress")
		}
	}

	s.finish(result, w, start)
	log.WithFields(logrus.Fields{"elapsed": result.Elapsed, "steps": result.StepsTaken}).Info("run complete")
	return result, nil
}

// RunWithCallback steps until cfg.Steps is reached, the context ends or fn
// returns false. Steps <= 0 runs until one of the other two.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, fn func(w *World, st StepStats) bool) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	w, err := s.newWorld(cfg)
	if err != nil {
		return err
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	for i := 0; cfg.Steps <= 0 || i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		st, err := w.Step()
		if err != nil {
			return err
		}
		s.observe(st)
		if !fn(w, st) {
			return nil
		}
	}
	return nil
}

func (s *Simulator) newWorld(cfg Config) (*World, error) {
	if cfg.Broad.Logger == nil {
		cfg.Broad.Logger = s.log
	}
	return NewWorld(s.scene, s.integrator, cfg)
}

func (s *Simulator) observe(st StepStats) {
	for _, m := range s.metrics {
		m.Observe(st)
	}
	for _, obs := range s.observers {
		obs.OnStep(st)
	}
}

func (s *Simulator) finish(result *Result, w *World, start time.Time) {
	result.Elapsed = time.Since(start)
	result.Final = w.State()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, cfg.Steps)
	}
	if cfg.Restitution < 0 || cfg.Restitution > 1 {
		return fmt.Errorf("%w: restitution must be in [0, 1], got %f", ErrInvalidConfig, cfg.Restitution)
	}
	return nil
}
