package sim

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/broadphase/internal/broadphase"
	"github.com/san-kum/broadphase/internal/geom"
)

// State packs all body positions first, then all velocities:
// [x0 y0 z0 x1 y1 z1 ... vx0 vy0 vz0 ...].
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

// Bodies returns how many bodies the state describes.
func (s State) Bodies() int { return len(s) / 6 }

func (s State) Position(i int) mgl64.Vec3 {
	return mgl64.Vec3{s[3*i], s[3*i+1], s[3*i+2]}
}

func (s State) Velocity(i int) mgl64.Vec3 {
	off := len(s) / 2
	return mgl64.Vec3{s[off+3*i], s[off+3*i+1], s[off+3*i+2]}
}

func (s State) SetPosition(i int, p mgl64.Vec3) {
	s[3*i], s[3*i+1], s[3*i+2] = p[0], p[1], p[2]
}

func (s State) SetVelocity(i int, v mgl64.Vec3) {
	off := len(s) / 2
	s[off+3*i], s[off+3*i+1], s[off+3*i+2] = v[0], v[1], v[2]
}

type Dynamics interface {
	Derivative(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(dyn Dynamics, x State, t float64, dt float64) State
}

// Body is a box-shaped collider. Its world box is centered on the body's
// position.
type Body struct {
	ID          int
	HalfExtents mgl64.Vec3
}

func (b Body) Box(center mgl64.Vec3) geom.AABB {
	return geom.FromCenter(center, b.HalfExtents)
}

// Scene supplies bodies, their motion and the box that confines them.
type Scene interface {
	Dynamics
	Name() string
	Bodies() []Body
	Bounds() geom.AABB
	Initial(seed int64) State
}

// StepStats records what the broad phase did during one step.
type StepStats struct {
	Step       int           `json:"step"`
	Time       float64       `json:"time"`
	Proxies    int           `json:"proxies"`
	Moved      int           `json:"moved"`
	Reinserted int           `json:"reinserted"`
	Candidates int           `json:"candidates"`
	Contacts   int           `json:"contacts"`
	Height     int           `json:"height"`
	Duration   time.Duration `json:"duration_ns"`
}

type Metric interface {
	Name() string
	Observe(s StepStats)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s StepStats)
}

type Config struct {
	Dt          float64
	Steps       int
	Seed        int64
	Restitution float64
	Broad       broadphase.Options
	// ValidateState aborts the run when integration produces NaN or Inf.
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Steps:         1000,
		Restitution:   1.0,
		Broad:         broadphase.DefaultOptions(),
		ValidateState: true,
	}
}

type Result struct {
	Steps      []StepStats
	Final      State
	Metrics    map[string]float64
	StepsTaken int
	Elapsed    time.Duration
}
