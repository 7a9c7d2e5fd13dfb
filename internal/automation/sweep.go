package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/broadphase/internal/config"
	"github.com/san-kum/broadphase/internal/experiment"
	"github.com/sirupsen/logrus"
)

// ParameterSweep reruns one configuration across evenly spaced values of a
// tree option.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
	Elapsed    time.Duration
}

func (s *ParameterSweep) values() []float64 {
	if s.NumSteps <= 1 {
		return []float64{s.ParamMin}
	}
	step := (s.ParamMax - s.ParamMin) / float64(s.NumSteps-1)
	out := make([]float64, s.NumSteps)
	for i := range out {
		out[i] = s.ParamMin + float64(i)*step
	}
	return out
}

// RunSweep executes the sweep. Every value runs the same scene and seed, so
// only the swept option differs between results.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, log logrus.FieldLogger) ([]SweepResult, error) {
	if sweep.Base == nil {
		return nil, fmt.Errorf("sweep has no base config")
	}
	if err := (&config.Config{}).SetTreeParam(sweep.ParamName, 0); err != nil {
		return nil, err
	}

	values := sweep.values()
	results := make([]SweepResult, 0, len(values))

	for i, v := range values {
		cfg := *sweep.Base
		cfg.SetTreeParam(sweep.ParamName, v)

		exp := experiment.New(&cfg)
		if err := exp.Setup(registry, log); err != nil {
			return results, fmt.Errorf("%s=%.4f: %w", sweep.ParamName, v, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("%s=%.4f: %w", sweep.ParamName, v, err)
		}

		results = append(results, SweepResult{
			ParamValue: v,
			Metrics:    result.Metrics,
			Elapsed:    result.Elapsed,
		})

		if log != nil {
			log.WithFields(logrus.Fields{
				"param":    sweep.ParamName,
				"value":    v,
				"progress": fmt.Sprintf("%d/%d", i+1, len(values)),
			}).Info("sweep point done")
		}
	}
	return results, nil
}
