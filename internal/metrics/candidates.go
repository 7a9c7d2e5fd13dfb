package metrics

import "github.com/san-kum/broadphase/internal/sim"

// CandidateRate is the mean number of candidate pairs reported per step.
type CandidateRate struct {
	name    string
	sum     int
	samples int
}

func NewCandidateRate() *CandidateRate {
	return &CandidateRate{name: "candidate_rate"}
}

func (c *CandidateRate) Name() string { return c.name }

func (c *CandidateRate) Observe(st sim.StepStats) {
	c.sum += st.Candidates
	c.samples++
}

func (c *CandidateRate) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.sum) / float64(c.samples)
}

func (c *CandidateRate) Reset() {
	c.sum = 0
	c.samples = 0
}

// Precision is the share of candidate pairs whose tight boxes really
// overlap. A broad phase that reports nothing is perfectly precise.
type Precision struct {
	name       string
	candidates int
	contacts   int
}

func NewPrecision() *Precision {
	return &Precision{name: "precision"}
}

func (p *Precision) Name() string { return p.name }

func (p *Precision) Observe(st sim.StepStats) {
	p.candidates += st.Candidates
	p.contacts += st.Contacts
}

func (p *Precision) Value() float64 {
	if p.candidates == 0 {
		return 1.0
	}
	return float64(p.contacts) / float64(p.candidates)
}

func (p *Precision) Reset() {
	p.candidates = 0
	p.contacts = 0
}
