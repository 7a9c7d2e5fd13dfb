package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/broadphase/internal/geom"
	"github.com/san-kum/broadphase/internal/sim"
	"github.com/san-kum/broadphase/internal/viz"
)

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	dw, dh := canvas.Dots()
	width := float64(dw) * scale
	height := float64(dh) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	dotRadius := scale * 0.4
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if !canvas.Lit(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// WorldOptions selects what WriteWorldSVG draws. Colors come from the
// theme's Background, Tight, Fat and Pair roles.
type WorldOptions struct {
	Width int
	Fat   bool
	Pairs bool
	Theme viz.Theme
}

func DefaultWorldOptions() WorldOptions {
	return WorldOptions{Width: 800, Fat: true, Pairs: true, Theme: viz.CurrentTheme}
}

// WriteWorldSVG draws the X/Y projection of every tight box of w, with fat
// boxes dashed and last-step candidate pairs as lines between centers.
func WriteWorldSVG(out io.Writer, w *sim.World, opts WorldOptions) error {
	b := w.Bounds()
	ext := b.Max.Sub(b.Min)
	if ext[0] <= 0 || ext[1] <= 0 {
		return fmt.Errorf("export: world bounds %v are flat", b)
	}
	scale := float64(opts.Width) / ext[0]
	height := int(ext[1] * scale)

	toSVG := func(x, y float64) (float64, float64) {
		return (x - b.Min[0]) * scale, float64(height) - (y-b.Min[1])*scale
	}
	rect := func(sb *strings.Builder, box geom.AABB, attrs string) {
		x0, y1 := toSVG(box.Min[0], box.Min[1])
		x1, y0 := toSVG(box.Max[0], box.Max[1])
		fmt.Fprintf(sb, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" %s/>\n", x0, y0, x1-x0, y1-y0, attrs)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="none" stroke-width="1">
`, opts.Width, height, opts.Width, height, opts.Theme.Background)

	tight := fmt.Sprintf(`class="tight" stroke="%s"`, opts.Theme.Tight)
	fatAttrs := fmt.Sprintf(`class="fat" stroke="%s" stroke-dasharray="3,3"`, opts.Theme.Fat)

	for i := range w.Bodies() {
		rect(&sb, w.Box(i), tight)
		if opts.Fat {
			fat, err := w.FatBox(i)
			if err != nil {
				return err
			}
			rect(&sb, fat, fatAttrs)
		}
	}
	if opts.Pairs {
		for _, p := range w.Candidates() {
			a, c := w.Box(p[0]).Center(), w.Box(p[1]).Center()
			x1, y1 := toSVG(a[0], a[1])
			x2, y2 := toSVG(c[0], c[1])
			fmt.Fprintf(&sb, "<line class=\"pair\" x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\"/>\n", x1, y1, x2, y2, opts.Theme.Pair)
		}
	}
	sb.WriteString("</g>\n</svg>\n")

	_, err := io.WriteString(out, sb.String())
	return err
}

// SeriesToSVG draws ys against their index as a polyline.
func SeriesToSVG(ys []float64, width, height int, strokeColor string) string {
	if len(ys) < 2 {
		return ""
	}

	minY, maxY := ys[0], ys[0]
	for _, y := range ys {
		minY = min(minY, y)
		maxY = max(maxY, y)
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	rangeX := float64(len(ys) - 1)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	for i, v := range ys {
		x := float64(i) / rangeX * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
