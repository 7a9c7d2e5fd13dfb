package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/broadphase/internal/geom"
	"github.com/san-kum/broadphase/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	frameRate       = 30
)

const (
	viewFront = iota
	view3D
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps a world on every tick and draws its boxes and candidate
// pairs. The front view projects X/Y; the 3D view orbits the world.
type Model struct {
	title    string
	newWorld func() (*sim.World, error)
	world    *sim.World

	width, height int
	canvas        *Canvas
	camera        *Camera
	wire          *Wireframe
	view          int
	showFat       bool
	showPairs     bool

	running  bool
	showHelp bool
	frame    int
	err      error

	last       sim.StepStats
	candidates []float64
	reinserts  []float64
	contacts   int
	reported   int

	recording bool
	frames    *recorder
}

// NewModel builds the first world right away so configuration errors
// surface before the program starts.
func NewModel(title string, newWorld func() (*sim.World, error)) (Model, error) {
	w, err := newWorld()
	if err != nil {
		return Model{}, err
	}
	return Model{
		title:      title,
		newWorld:   newWorld,
		world:      w,
		width:      width,
		height:     height,
		canvas:     NewCanvas(width, height),
		camera:     NewCamera(w.Bounds()),
		wire:       NewWireframe(),
		showPairs:  true,
		running:    true,
		candidates: make([]float64, 0, historyCapacity),
		reinserts:  make([]float64, 0, historyCapacity),
	}, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case ".":
			if !m.running {
				m.step()
			}
		case "r":
			m.reset()
		case "f":
			m.showFat = !m.showFat
		case "p":
			m.showPairs = !m.showPairs
		case "m":
			if m.view == viewFront {
				m.view = view3D
			} else {
				m.view = viewFront
			}
		case "t":
			NextTheme()
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		m.frame++
		if m.running {
			m.step()
		}
		m.draw()
		if m.recording {
			m.frames.capture(m.canvas)
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	if m.err != nil {
		return
	}
	st, err := m.world.Step()
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.last = st
	m.contacts += st.Contacts
	m.reported += st.Candidates
	m.candidates = pushHistory(m.candidates, float64(st.Candidates))
	m.reinserts = pushHistory(m.reinserts, float64(st.Reinserted))
}

func pushHistory(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) reset() {
	w, err := m.newWorld()
	if err != nil {
		m.err = err
		return
	}
	m.world = w
	m.err = nil
	m.last = sim.StepStats{}
	m.candidates = m.candidates[:0]
	m.reinserts = m.reinserts[:0]
	m.contacts, m.reported = 0, 0
}

func (m *Model) boxOf(i int) geom.AABB {
	if m.showFat {
		if fat, err := m.world.FatBox(i); err == nil {
			return fat
		}
	}
	return m.world.Box(i)
}

func (m *Model) draw() {
	m.canvas.Clear()
	if m.view == view3D {
		m.draw3D()
		return
	}
	m.drawFront()
}

// toScreen maps world X/Y into canvas dots, keeping the aspect ratio.
func (m *Model) toScreen(p mgl64.Vec3) (int, int) {
	cw, ch := m.canvas.Dots()
	b := m.world.Bounds()
	ext := b.Max.Sub(b.Min)
	scale := min(float64(cw-1)/ext[0], float64(ch-1)/ext[1])
	x := int((p[0] - b.Min[0]) * scale)
	y := ch - 1 - int((p[1]-b.Min[1])*scale)
	return x, y
}

func (m *Model) drawFront() {
	b := m.world.Bounds()
	x0, y0 := m.toScreen(b.Min)
	x1, y1 := m.toScreen(b.Max)
	m.canvas.DrawRect(x0, y0, x1, y1)

	for i := range m.world.Bodies() {
		box := m.boxOf(i)
		bx0, by0 := m.toScreen(box.Min)
		bx1, by1 := m.toScreen(box.Max)
		if bx0 == bx1 && by0 == by1 {
			m.canvas.Set(bx0, by0)
			continue
		}
		m.canvas.DrawRect(bx0, by0, bx1, by1)
	}

	if m.showPairs {
		for _, p := range m.world.Candidates() {
			ax, ay := m.toScreen(m.world.Box(p[0]).Center())
			bx, by := m.toScreen(m.world.Box(p[1]).Center())
			m.canvas.DrawLine(ax, ay, bx, by)
		}
	}
}

func (m *Model) draw3D() {
	m.wire.Clear()
	m.wire.AddBox(m.world.Bounds())
	for i := range m.world.Bodies() {
		m.wire.AddBox(m.boxOf(i))
	}
	if m.showPairs {
		for _, p := range m.world.Candidates() {
			m.wire.AddEdge(m.world.Box(p[0]).Center(), m.world.Box(p[1]).Center())
		}
	}
	Render3D(m.canvas, m.wire, m.camera)
}

func (m Model) status(pal palette) string {
	switch {
	case m.err != nil:
		return pal.recording.Render("FAILED: " + m.err.Error())
	case m.recording:
		return pal.recording.Render("● REC")
	case m.running:
		return pal.running.Render(AnimatedSpinner(m.frame) + " RUNNING")
	}
	return pal.paused.Render("PAUSED")
}

func (m Model) View() string {
	pal := currentPalette()
	row := func(label, value string) string {
		return pal.label.Render(label) + pal.value.Render(value) + "\n"
	}

	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.title), CurrentTheme.TitleFrom, CurrentTheme.TitleTo) + "\n")
	s.WriteString(m.status(pal) + "\n\n")

	if len(m.candidates) > 1 {
		chart := asciigraph.Plot(m.candidates, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Candidates"))
		s.WriteString(pal.graph.Render(chart) + "\n")
	}

	st := m.last
	s.WriteString(row("Step", fmt.Sprintf("%d (t=%.2fs)", st.Step, st.Time)))
	s.WriteString(row("Proxies", fmt.Sprintf("%d", st.Proxies)))
	s.WriteString(row("Moved", fmt.Sprintf("%d", st.Moved)))
	s.WriteString(row("Candidates", fmt.Sprintf("%d", st.Candidates)))
	s.WriteString(row("Contacts", fmt.Sprintf("%d", st.Contacts)))
	s.WriteString(row("Height", fmt.Sprintf("%d", st.Height)))
	s.WriteString(row("Step time", st.Duration.String()))

	precision := 1.0
	if m.reported > 0 {
		precision = float64(m.contacts) / float64(m.reported)
	}
	s.WriteString(row("Precision", ProgressBar(precision, 20)+fmt.Sprintf(" %.0f%%", 100*precision)))
	s.WriteString(row("Reinserts", SparklineChart(m.reinserts, 24)))

	view := "front"
	if m.view == view3D {
		view = "3d"
	}
	boxes := "tight"
	if m.showFat {
		boxes = "fat"
	}
	s.WriteString(row("View", view+" / "+boxes+" boxes"))
	s.WriteString(row("Legend", pal.legend(m.showFat, m.showPairs)))

	s.WriteString(helpStyle.Render("─────────────────────\nSP:Pause .:Step R:Reset Q:Quit\nF:Fat P:Pairs M:View T:Theme ?:Help"))

	// the braille grid takes one color: the stroke of the boxes it shows
	stroke := CurrentTheme.Tight
	if m.showFat {
		stroke = CurrentTheme.Fat
	}
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Foreground(stroke).Render(m.canvas.String()), statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  .        - Single step while paused ║
║  R        - Reset the world          ║
║  Q        - Quit                     ║
║  F        - Toggle fat/tight boxes   ║
║  P        - Toggle candidate pairs   ║
║  M        - Front view / 3D view     ║
║  X Y Z    - Rotate 3D camera         ║
║  + -      - Zoom 3D camera           ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`
