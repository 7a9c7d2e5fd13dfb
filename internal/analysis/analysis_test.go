package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/broadphase/internal/sim"
)

func TestSeries(t *testing.T) {
	steps := []sim.StepStats{{Candidates: 3, Height: 2}, {Candidates: 5, Height: 3}}

	got, err := Series(steps, "candidates")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != 3 || got[1] != 5 {
		t.Errorf("unexpected series %v", got)
	}

	if _, err := Series(steps, "energy"); err == nil {
		t.Error("expected error for unknown field")
	}
	if len(Fields()) != 7 {
		t.Errorf("expected 7 fields, got %v", Fields())
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{4, 1, 3, 2, 5})

	if s.N != 5 || s.Mean != 3 || s.Min != 1 || s.Max != 5 || s.P50 != 3 {
		t.Errorf("unexpected summary %+v", s)
	}
	if math.Abs(s.Std-math.Sqrt(2)) > 1e-12 {
		t.Errorf("std = %f, want sqrt(2)", s.Std)
	}
	if math.Abs(s.P95-4.8) > 1e-12 {
		t.Errorf("p95 = %f, want 4.8", s.P95)
	}

	if (Summarize(nil) != Summary{}) {
		t.Error("empty input should give a zero summary")
	}
}

func TestDominantFrequency(t *testing.T) {
	const dt = 0.01
	data := make([]float64, 1000)
	for i := range data {
		data[i] = 10 + math.Sin(2*math.Pi*5*float64(i)*dt)
	}

	f, mag := DominantFrequency(data, dt)
	if math.Abs(f-5) > 0.1 {
		t.Errorf("dominant frequency %f, want 5", f)
	}
	if mag <= 0 {
		t.Error("expected positive magnitude")
	}

	ps := PowerSpectrum(data)
	if len(ps) != 500 {
		t.Fatalf("expected 500 bins, got %d", len(ps))
	}
	if ps[0] > 1e-6 {
		t.Errorf("constant offset leaked into bin 0: %f", ps[0])
	}
}

func TestScatterToASCII(t *testing.T) {
	points, err := Scatter([]float64{0, 1, 2}, []float64{0, 1, 4})
	if err != nil {
		t.Fatal(err)
	}
	out := ScatterToASCII(points, 20, 10)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(lines))
	}
	if n := strings.Count(out, "•"); n != 3 {
		t.Errorf("expected 3 points, got %d", n)
	}

	if _, err := Scatter([]float64{1}, nil); err == nil {
		t.Error("expected length mismatch error")
	}
}
