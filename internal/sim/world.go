package sim

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/broadphase/internal/broadphase"
	"github.com/san-kum/broadphase/internal/geom"
)

// World advances a scene one step at a time and keeps the broad phase in
// sync with the integrated body positions.
type World struct {
	scene       Scene
	integrator  Integrator
	bodies      []Body
	bounds      geom.AABB
	dt          float64
	restitution float64
	validate    bool

	bp    *broadphase.BroadPhase[int]
	state State
	boxes []geom.AABB

	// candidate body pairs of the last step
	candidates [][2]int

	t    float64
	step int
}

func NewWorld(scene Scene, integ Integrator, cfg Config) (*World, error) {
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}

	bodies := scene.Bodies()
	x0 := scene.Initial(cfg.Seed)
	if len(x0) != 6*len(bodies) || len(x0) != scene.StateDim() {
		return nil, fmt.Errorf("%w: scene %s has %d bodies but state of %d", ErrInvalidConfig, scene.Name(), len(bodies), len(x0))
	}
	if !x0.IsValid() {
		return nil, ErrInvalidState
	}

	w := &World{
		scene:       scene,
		integrator:  integ,
		bodies:      bodies,
		bounds:      scene.Bounds(),
		dt:          cfg.Dt,
		restitution: cfg.Restitution,
		validate:    cfg.ValidateState,
		bp:          broadphase.New[int](cfg.Broad),
		state:       x0,
		boxes:       make([]geom.AABB, len(bodies)),
	}

	for i, b := range bodies {
		w.boxes[i] = b.Box(x0.Position(i))
		if _, err := w.bp.AddShape(i, w.boxes[i]); err != nil {
			return nil, fmt.Errorf("body %d: %w", b.ID, err)
		}
	}
	return w, nil
}

// Step integrates, confines the bodies, pushes every new box through
// UpdateShape and collects the step's candidate pairs.
func (w *World) Step() (StepStats, error) {
	start := time.Now()

	next := w.integrator.Step(w.scene, w.state, w.t, w.dt)
	if w.validate && !next.IsValid() {
		return StepStats{}, &StepError{Step: w.step, Time: w.t, Err: ErrInvalidState}
	}
	w.confine(next)

	reinserted := 0
	for i, b := range w.bodies {
		pos := next.Position(i)
		box := b.Box(pos)
		changed, err := w.bp.UpdateShape(i, box, pos.Sub(w.state.Position(i)))
		if err != nil {
			return StepStats{}, &StepError{Step: w.step, Time: w.t, Err: err}
		}
		w.boxes[i] = box
		if changed {
			reinserted++
		}
	}

	moved := w.bp.MovedLen()
	w.candidates = w.candidates[:0]
	if _, err := w.bp.ComputeOverlappingPairs(func(a, b int) {
		w.candidates = append(w.candidates, [2]int{a, b})
	}); err != nil {
		return StepStats{}, &StepError{Step: w.step, Time: w.t, Err: err}
	}
	contacts := CountContacts(w.candidates, w.boxes)

	w.state = next
	w.t += w.dt
	w.step++

	return StepStats{
		Step:       w.step,
		Time:       w.t,
		Proxies:    w.bp.Len(),
		Moved:      moved,
		Reinserted: reinserted,
		Candidates: len(w.candidates),
		Contacts:   contacts,
		Height:     w.bp.Height(),
		Duration:   time.Since(start),
	}, nil
}

// Teleport places body i at center. The move takes effect in the broad
// phase immediately and is reported on the next step.
func (w *World) Teleport(i int, center mgl64.Vec3) error {
	if i < 0 || i >= len(w.bodies) {
		return fmt.Errorf("teleport %d: %w", i, ErrUnknownBody)
	}
	box := w.bodies[i].Box(center)
	if _, err := w.bp.UpdateShape(i, box, mgl64.Vec3{}); err != nil {
		return fmt.Errorf("teleport %d: %w", i, err)
	}
	w.state.SetPosition(i, center)
	w.boxes[i] = box
	return nil
}

// confine reflects bodies off the scene bounds.
func (w *World) confine(x State) {
	for i, b := range w.bodies {
		p, v := x.Position(i), x.Velocity(i)
		for a := 0; a < 3; a++ {
			lo := w.bounds.Min[a] + b.HalfExtents[a]
			hi := w.bounds.Max[a] - b.HalfExtents[a]
			switch {
			case p[a] < lo:
				p[a] = lo
				if v[a] < 0 {
					v[a] = -v[a] * w.restitution
				}
			case p[a] > hi:
				p[a] = hi
				if v[a] > 0 {
					v[a] = -v[a] * w.restitution
				}
			}
		}
		x.SetPosition(i, p)
		x.SetVelocity(i, v)
	}
}

func (w *World) State() State { return w.state.Clone() }

func (w *World) Time() float64 { return w.t }

func (w *World) StepCount() int { return w.step }

func (w *World) Scene() Scene { return w.scene }

func (w *World) Bodies() []Body { return w.bodies }

func (w *World) Bounds() geom.AABB { return w.bounds }

// Box returns the tight box of body i as of the last step.
func (w *World) Box(i int) geom.AABB { return w.boxes[i] }

func (w *World) FatBox(i int) (geom.AABB, error) { return w.bp.FatAABB(i) }

// Candidates returns the candidate pairs of the last step. The slice is
// reused by the next Step.
func (w *World) Candidates() [][2]int { return w.candidates }

func (w *World) BroadPhase() *broadphase.BroadPhase[int] { return w.bp }
