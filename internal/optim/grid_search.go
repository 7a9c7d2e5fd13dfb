package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/broadphase/internal/config"
	"github.com/san-kum/broadphase/internal/experiment"
	"github.com/sirupsen/logrus"
)

// Objective scores the metrics of one run. Lower is better.
type Objective func(metrics map[string]float64) float64

// Metric minimizes a single named metric.
func Metric(name string) Objective {
	return func(m map[string]float64) float64 { return m[name] }
}

// StepCost charges every candidate pair once and every reinserted proxy
// reinsertCost times, relative to the proxy count.
func StepCost(reinsertCost float64) Objective {
	return func(m map[string]float64) float64 {
		return m["candidate_rate"] + reinsertCost*m["reinsert_ratio"]
	}
}

type Evaluation struct {
	Params  map[string]float64
	Value   float64
	Metrics map[string]float64
}

type Result struct {
	Best        map[string]float64
	BestValue   float64
	Evaluations []Evaluation
}

// GridSearch runs every combination of tree parameter values against the
// same base configuration.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	registry *experiment.Registry,
	objective Objective,
	log logrus.FieldLogger,
) (*Result, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("grid search: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}
	for i, name := range g.paramNames {
		if len(g.ranges[i]) == 0 {
			return nil, fmt.Errorf("grid search: no values for %s", name)
		}
		if err := (&config.Config{}).SetTreeParam(name, 0); err != nil {
			return nil, err
		}
	}

	res := &Result{BestValue: math.Inf(1)}
	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		cfg := *base
		for name, v := range params {
			cfg.SetTreeParam(name, v)
		}
		exp := experiment.New(&cfg)
		if err := exp.Setup(registry, log); err != nil {
			return fmt.Errorf("%v: %w", params, err)
		}
		run, err := exp.Run(ctx)
		if err != nil {
			return fmt.Errorf("%v: %w", params, err)
		}

		val := objective(run.Metrics)
		res.Evaluations = append(res.Evaluations, Evaluation{Params: params, Value: val, Metrics: run.Metrics})
		if val < res.BestValue {
			res.BestValue = val
			res.Best = params
		}
		if log != nil {
			log.WithFields(logrus.Fields{"params": params, "value": val}).Info("grid point done")
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	return res, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	evaluate func(map[string]float64) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		return evaluate(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, evaluate); err != nil {
			return err
		}
	}
	return nil
}
