package scenes

import (
	"context"
	"testing"

	"github.com/san-kum/broadphase/internal/integrators"
	"github.com/san-kum/broadphase/internal/sim"
)

func smallParams() Params {
	p := DefaultParams()
	p.Bodies = 27
	p.WorldSize = 20
	return p
}

func allScenes(p Params) []sim.Scene {
	return []sim.Scene{NewGas(p), NewRain(p), NewGrid(p)}
}

func TestScenesStartInsideBounds(t *testing.T) {
	for _, sc := range allScenes(smallParams()) {
		t.Run(sc.Name(), func(t *testing.T) {
			x := sc.Initial(1)
			if len(x) != sc.StateDim() {
				t.Fatalf("state len %d, want %d", len(x), sc.StateDim())
			}
			bodies := sc.Bodies()
			if len(bodies) != x.Bodies() {
				t.Fatalf("%d bodies but state holds %d", len(bodies), x.Bodies())
			}
			bounds := sc.Bounds()
			for i, b := range bodies {
				if box := b.Box(x.Position(i)); !bounds.Contains(box) {
					t.Errorf("body %d at %v leaves bounds %v", i, box, bounds)
				}
			}
		})
	}
}

func TestScenesAreDeterministic(t *testing.T) {
	for _, sc := range allScenes(smallParams()) {
		a, b := sc.Initial(7), sc.Initial(7)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("%s: same seed produced different states", sc.Name())
			}
		}
	}

	gas := NewGas(smallParams())
	a, b := gas.Initial(1), gas.Initial(2)
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced the same gas")
	}
}

func TestRainFallsAndGasDrifts(t *testing.T) {
	p := smallParams()
	x := NewRain(p).Initial(3)

	dx := NewRain(p).Derivative(x, 0)
	half := len(x) / 2
	for i := 0; i < x.Bodies(); i++ {
		if dx[half+3*i+1] != -p.Gravity {
			t.Fatalf("body %d: vertical acceleration %f, want %f", i, dx[half+3*i+1], -p.Gravity)
		}
		if x.Position(i)[1] < 0 {
			t.Errorf("body %d starts in the lower half", i)
		}
	}

	dx = NewGas(p).Derivative(x, 0)
	for i := half; i < len(dx); i++ {
		if dx[i] != 0 {
			t.Fatalf("gas accelerates at %d", i)
		}
	}
}

func TestGridOnlyMoversMove(t *testing.T) {
	p := smallParams()
	p.Movers = 3
	g := NewGrid(p)
	if g.Side() != 3 {
		t.Fatalf("expected side 3, got %d", g.Side())
	}

	x := g.Initial(5)
	for i := p.Movers; i < p.Bodies; i++ {
		if x.Velocity(i).Len() != 0 {
			t.Errorf("static body %d has velocity %v", i, x.Velocity(i))
		}
	}

	// static lattice bodies are one body apart, so only movers can pair up
	bodies := g.Bodies()
	for i := p.Movers; i < p.Bodies; i++ {
		for j := i + 1; j < p.Bodies; j++ {
			if bodies[i].Box(x.Position(i)).Overlaps(bodies[j].Box(x.Position(j))) {
				t.Errorf("static bodies %d and %d overlap", i, j)
			}
		}
	}
}

func TestGridStaticBodiesAreNeverReinserted(t *testing.T) {
	p := smallParams()
	p.Movers = 0
	s := sim.New(NewGrid(p), integrators.NewVerlet(), nil)

	cfg := sim.DefaultConfig()
	cfg.Steps = 50
	result, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	// every proxy starts out moved
	if first := result.Steps[0]; first.Moved != p.Bodies || first.Candidates != 0 {
		t.Fatalf("first step: %+v", first)
	}
	for _, st := range result.Steps[1:] {
		if st.Reinserted != 0 || st.Moved != 0 || st.Candidates != 0 {
			t.Fatalf("step %d: static grid produced work %+v", st.Step, st)
		}
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Params)
		ok   bool
	}{
		{"defaults", func(*Params) {}, true},
		{"no bodies", func(p *Params) { p.Bodies = 0 }, false},
		{"body larger than world", func(p *Params) { p.BodySize = 50 }, false},
		{"negative speed", func(p *Params) { p.MaxSpeed = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mod(&p)
			if err := p.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, ok=%v", err, tt.ok)
			}
		})
	}
}
