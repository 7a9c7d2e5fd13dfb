package analysis

import (
	"fmt"
	"slices"

	"github.com/san-kum/broadphase/internal/sim"
)

var fields = map[string]func(sim.StepStats) float64{
	"proxies":    func(s sim.StepStats) float64 { return float64(s.Proxies) },
	"moved":      func(s sim.StepStats) float64 { return float64(s.Moved) },
	"reinserted": func(s sim.StepStats) float64 { return float64(s.Reinserted) },
	"candidates": func(s sim.StepStats) float64 { return float64(s.Candidates) },
	"contacts":   func(s sim.StepStats) float64 { return float64(s.Contacts) },
	"height":     func(s sim.StepStats) float64 { return float64(s.Height) },
	"duration":   func(s sim.StepStats) float64 { return s.Duration.Seconds() },
}

// Fields lists the names accepted by Series.
func Fields() []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func Series(steps []sim.StepStats, field string) ([]float64, error) {
	get, ok := fields[field]
	if !ok {
		return nil, fmt.Errorf("unknown field %q, expected one of %v", field, Fields())
	}
	out := make([]float64, len(steps))
	for i, st := range steps {
		out[i] = get(st)
	}
	return out, nil
}
