package sim

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/san-kum/broadphase/internal/geom"
)

// ParallelFor executes fn over [0, n) split into contiguous chunks of at
// least minChunk items.
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	numWorkers := runtime.GOMAXPROCS(0)
	if n <= minChunk || numWorkers <= 1 {
		fn(0, n)
		return
	}

	workers := min(numWorkers, n/minChunk)
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// CountContacts runs the exact box test over a candidate snapshot. The
// candidates and boxes must not change until it returns.
func CountContacts(candidates [][2]int, boxes []geom.AABB) int {
	var contacts atomic.Int64
	ParallelFor(len(candidates), 256, func(start, end int) {
		n := 0
		for _, c := range candidates[start:end] {
			if boxes[c[0]].Overlaps(boxes[c[1]]) {
				n++
			}
		}
		contacts.Add(int64(n))
	})
	return int(contacts.Load())
}

// Ensemble runs one scene under several seeds concurrently. Each run gets
// its own scene and integrator from the factories.
type Ensemble struct {
	newScene      func() Scene
	newIntegrator func() Integrator
	numRuns       int
	seedStart     int64
}

func NewEnsemble(newScene func() Scene, newIntegrator func() Integrator, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{newScene: newScene, newIntegrator: newIntegrator, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			s := New(e.newScene(), e.newIntegrator(), nil)
			results[idx], errs[idx] = s.Run(ctx, cfgCopy)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
