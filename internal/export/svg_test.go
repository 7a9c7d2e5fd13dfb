package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/broadphase/internal/integrators"
	"github.com/san-kum/broadphase/internal/scenes"
	"github.com/san-kum/broadphase/internal/sim"
	"github.com/san-kum/broadphase/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(3, 5)
	c.Set(7, 7)

	svg := CanvasToSVG(c, 2)
	if n := strings.Count(svg, "<circle"); n != 3 {
		t.Errorf("expected 3 dots, got %d", n)
	}
	if !strings.Contains(svg, `width="16" height="16"`) {
		t.Errorf("unexpected size in %q", svg[:120])
	}
	if CanvasToSVG(nil, 1) != "" {
		t.Error("nil canvas should render nothing")
	}
}

func TestWriteWorldSVG(t *testing.T) {
	p := scenes.DefaultParams()
	p.Bodies = 30
	p.WorldSize = 12
	w, err := sim.NewWorld(scenes.NewGas(p), integrators.NewVerlet(), sim.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := w.Step(); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if err := WriteWorldSVG(&buf, w, DefaultWorldOptions()); err != nil {
		t.Fatal(err)
	}
	svg := buf.String()
	if n := strings.Count(svg, `class="tight"`); n != 30 {
		t.Errorf("expected 30 tight boxes, got %d", n)
	}
	if n := strings.Count(svg, `class="fat"`); n != 30 {
		t.Errorf("expected 30 fat boxes, got %d", n)
	}
	if n := strings.Count(svg, `class="pair"`); n != len(w.Candidates()) {
		t.Errorf("expected %d pair lines, got %d", len(w.Candidates()), n)
	}

	buf.Reset()
	opts := DefaultWorldOptions()
	opts.Fat, opts.Pairs = false, false
	if err := WriteWorldSVG(&buf, w, opts); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), `class="fat"`) || strings.Contains(buf.String(), `class="pair"`) {
		t.Error("disabled layers were drawn")
	}
}

func TestWriteWorldSVGUsesThemeStrokes(t *testing.T) {
	p := scenes.DefaultParams()
	p.Bodies = 10
	p.WorldSize = 4
	w, err := sim.NewWorld(scenes.NewGas(p), integrators.NewVerlet(), sim.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Step(); err != nil {
		t.Fatal(err)
	}

	opts := DefaultWorldOptions()
	opts.Theme = viz.ThemeBlueprint
	var buf bytes.Buffer
	if err := WriteWorldSVG(&buf, w, opts); err != nil {
		t.Fatal(err)
	}
	svg := buf.String()
	th := viz.ThemeBlueprint
	if !strings.Contains(svg, `fill="`+string(th.Background)+`"`) {
		t.Error("background does not use the theme")
	}
	if !strings.Contains(svg, `class="tight" stroke="`+string(th.Tight)+`"`) {
		t.Error("tight boxes do not use the theme")
	}
	if !strings.Contains(svg, `class="fat" stroke="`+string(th.Fat)+`"`) {
		t.Error("fat boxes do not use the theme")
	}
	if len(w.Candidates()) > 0 && !strings.Contains(svg, `stroke="`+string(th.Pair)+`"/>`) {
		t.Error("pair lines do not use the theme")
	}
}

func TestSeriesToSVG(t *testing.T) {
	svg := SeriesToSVG([]float64{1, 3, 2, 5}, 300, 100, "#fff")
	if n := strings.Count(svg, " L"); n != 3 {
		t.Errorf("expected 3 segments, got %d", n)
	}
	if !strings.Contains(svg, `d="M0.0,`) {
		t.Error("path does not start at the left edge")
	}
	if SeriesToSVG([]float64{1}, 10, 10, "#fff") != "" {
		t.Error("single sample should render nothing")
	}
}
