package optim

import (
	"context"
	"testing"

	"github.com/san-kum/broadphase/internal/config"
	"github.com/san-kum/broadphase/internal/experiment"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Bodies = 40
	cfg.WorldSize = 15
	cfg.Steps = 60
	cfg.Seed = 3
	return cfg
}

func TestGridSearchVisitsEveryPoint(t *testing.T) {
	g := NewGridSearch(
		[]string{"margin", "displacement_multiplier"},
		[][]float64{{0, 0.5}, {0, 2}},
	)
	res, err := g.Search(context.Background(), smallConfig(), experiment.NewRegistry(), Metric("candidate_rate"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Evaluations) != 4 {
		t.Fatalf("expected 4 evaluations, got %d", len(res.Evaluations))
	}

	seen := make(map[[2]float64]bool)
	var best *Evaluation
	for i := range res.Evaluations {
		ev := &res.Evaluations[i]
		seen[[2]float64{ev.Params["margin"], ev.Params["displacement_multiplier"]}] = true
		if best == nil || ev.Value < best.Value {
			best = ev
		}
	}
	if len(seen) != 4 {
		t.Errorf("grid points repeated: %v", seen)
	}
	if res.BestValue != best.Value || res.Best["margin"] != best.Params["margin"] {
		t.Errorf("best %v (%f) does not match minimum %v (%f)", res.Best, res.BestValue, best.Params, best.Value)
	}
}

func TestGridSearchRejectsUnknownParam(t *testing.T) {
	g := NewGridSearch([]string{"max_nodes"}, [][]float64{{1}})
	if _, err := g.Search(context.Background(), smallConfig(), experiment.NewRegistry(), Metric("precision"), nil); err == nil {
		t.Error("expected an error for an unknown parameter")
	}
}

func TestGridSearchStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGridSearch([]string{"margin"}, [][]float64{{0, 0.1, 0.2}})
	res, err := g.Search(ctx, smallConfig(), experiment.NewRegistry(), StepCost(10), nil)
	if err == nil {
		t.Fatal("expected context error")
	}
	if len(res.Evaluations) != 0 {
		t.Errorf("expected no evaluations, got %d", len(res.Evaluations))
	}
}

func TestStepCost(t *testing.T) {
	cost := StepCost(100)
	if got := cost(map[string]float64{"candidate_rate": 5, "reinsert_ratio": 0.1}); got != 15 {
		t.Errorf("expected 15, got %f", got)
	}
}
