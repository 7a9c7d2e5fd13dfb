package metrics

import "github.com/san-kum/broadphase/internal/sim"

// ReinsertRatio is the share of proxy updates that fell outside their fat
// box and had to be reinserted. Low values mean the margin is doing its job.
type ReinsertRatio struct {
	name       string
	reinserted int
	updates    int
}

func NewReinsertRatio() *ReinsertRatio {
	return &ReinsertRatio{name: "reinsert_ratio"}
}

func (r *ReinsertRatio) Name() string { return r.name }

func (r *ReinsertRatio) Observe(st sim.StepStats) {
	r.reinserted += st.Reinserted
	r.updates += st.Proxies
}

func (r *ReinsertRatio) Value() float64 {
	if r.updates == 0 {
		return 0
	}
	return float64(r.reinserted) / float64(r.updates)
}

func (r *ReinsertRatio) Reset() {
	r.reinserted = 0
	r.updates = 0
}

type MaxHeight struct {
	name   string
	height int
}

func NewMaxHeight() *MaxHeight {
	return &MaxHeight{name: "max_height"}
}

func (m *MaxHeight) Name() string { return m.name }

func (m *MaxHeight) Observe(st sim.StepStats) {
	m.height = max(m.height, st.Height)
}

func (m *MaxHeight) Value() float64 { return float64(m.height) }

func (m *MaxHeight) Reset() { m.height = 0 }

// Default returns the metrics every run records.
func Default() []sim.Metric {
	return []sim.Metric{
		NewCandidateRate(),
		NewPrecision(),
		NewReinsertRatio(),
		NewMaxHeight(),
	}
}
