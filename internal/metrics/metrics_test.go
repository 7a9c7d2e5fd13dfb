package metrics

import (
	"io"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/san-kum/broadphase/internal/sim"
)

var steps = []sim.StepStats{
	{Step: 1, Proxies: 10, Moved: 10, Reinserted: 10, Candidates: 8, Contacts: 2, Height: 4},
	{Step: 2, Proxies: 10, Moved: 2, Reinserted: 2, Candidates: 4, Contacts: 1, Height: 5},
	{Step: 3, Proxies: 10, Moved: 0, Reinserted: 0, Candidates: 0, Contacts: 0, Height: 3},
}

func observeAll(m sim.Metric) {
	for _, st := range steps {
		m.Observe(st)
	}
}

func TestMetricValues(t *testing.T) {
	tests := []struct {
		metric sim.Metric
		want   float64
	}{
		{NewCandidateRate(), 4},
		{NewPrecision(), 0.25},
		{NewReinsertRatio(), 0.4},
		{NewMaxHeight(), 5},
	}

	for _, tt := range tests {
		t.Run(tt.metric.Name(), func(t *testing.T) {
			observeAll(tt.metric)
			if got := tt.metric.Value(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Value() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestMetricReset(t *testing.T) {
	empty := map[string]float64{
		"candidate_rate": 0,
		"precision":      1,
		"reinsert_ratio": 0,
		"max_height":     0,
	}
	for _, m := range Default() {
		observeAll(m)
		m.Reset()
		want, ok := empty[m.Name()]
		if !ok {
			t.Fatalf("unexpected metric %s", m.Name())
		}
		if m.Value() != want {
			t.Errorf("%s after reset = %f, want %f", m.Name(), m.Value(), want)
		}
	}
}

func TestCollector(t *testing.T) {
	c := NewCollector("gas")
	for _, st := range steps {
		st.Duration = time.Millisecond
		c.OnStep(st)
	}

	if got := testutil.ToFloat64(c.steps); got != 3 {
		t.Errorf("steps = %f, want 3", got)
	}
	if got := testutil.ToFloat64(c.candidates); got != 12 {
		t.Errorf("candidates = %f, want 12", got)
	}
	if got := testutil.ToFloat64(c.height); got != 3 {
		t.Errorf("height gauge = %f, want last value 3", got)
	}

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `broadphase_contacts_total{scene="gas"} 3`) {
		t.Errorf("exposition missing contacts series:\n%s", body)
	}
}
