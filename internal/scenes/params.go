package scenes

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/broadphase/internal/geom"
	"github.com/san-kum/broadphase/internal/sim"
)

const (
	DefaultBodies    = 200
	DefaultWorldSize = 40.0
	DefaultBodySize  = 1.0
	DefaultMaxSpeed  = 5.0
	DefaultGravity   = 9.81
)

// Params sizes a scene. The world is a cube of edge WorldSize centered on
// the origin; bodies are cubes of edge BodySize.
type Params struct {
	Bodies    int     `yaml:"bodies"`
	WorldSize float64 `yaml:"world_size"`
	BodySize  float64 `yaml:"body_size"`
	MaxSpeed  float64 `yaml:"max_speed"`
	Gravity   float64 `yaml:"gravity"`
	// Movers is the number of moving bodies in the grid scene.
	Movers int `yaml:"movers"`
}

func DefaultParams() Params {
	return Params{
		Bodies:    DefaultBodies,
		WorldSize: DefaultWorldSize,
		BodySize:  DefaultBodySize,
		MaxSpeed:  DefaultMaxSpeed,
		Gravity:   DefaultGravity,
		Movers:    8,
	}
}

func (p Params) Validate() error {
	if p.Bodies <= 0 {
		return fmt.Errorf("scenes: bodies must be positive, got %d", p.Bodies)
	}
	if p.BodySize <= 0 || p.WorldSize <= p.BodySize {
		return fmt.Errorf("scenes: world size %.3f must exceed body size %.3f > 0", p.WorldSize, p.BodySize)
	}
	if p.MaxSpeed < 0 {
		return fmt.Errorf("scenes: max speed must be non-negative, got %f", p.MaxSpeed)
	}
	return nil
}

// base carries what every scene shares: identical cubic bodies in a cubic
// world, packed positions then velocities.
type base struct {
	params Params
}

func (b *base) StateDim() int { return 6 * b.params.Bodies }

func (b *base) Bodies() []sim.Body {
	half := b.params.BodySize / 2
	bodies := make([]sim.Body, b.params.Bodies)
	for i := range bodies {
		bodies[i] = sim.Body{ID: i, HalfExtents: mgl64.Vec3{half, half, half}}
	}
	return bodies
}

func (b *base) Bounds() geom.AABB {
	h := b.params.WorldSize / 2
	return geom.NewAABB(mgl64.Vec3{-h, -h, -h}, mgl64.Vec3{h, h, h})
}

func (b *base) Params() Params { return b.params }

// drift is the derivative shared by all scenes: positions follow velocities
// and every velocity feels gravity along -y.
func (b *base) drift(x sim.State, gravity float64) sim.State {
	dx := make(sim.State, len(x))
	half := len(x) / 2
	copy(dx[:half], x[half:])
	if gravity != 0 {
		for i := 1; i < half; i += 3 {
			dx[half+i] = -gravity
		}
	}
	return dx
}

// randomPoint returns a point that keeps a body fully inside the world.
func (b *base) randomPoint(r *rand.Rand) mgl64.Vec3 {
	span := b.params.WorldSize - b.params.BodySize
	return mgl64.Vec3{
		(r.Float64() - 0.5) * span,
		(r.Float64() - 0.5) * span,
		(r.Float64() - 0.5) * span,
	}
}

// randomVelocity is uniform in the cube [-MaxSpeed, MaxSpeed]^3.
func (b *base) randomVelocity(r *rand.Rand) mgl64.Vec3 {
	s := b.params.MaxSpeed
	return mgl64.Vec3{
		(2*r.Float64() - 1) * s,
		(2*r.Float64() - 1) * s,
		(2*r.Float64() - 1) * s,
	}
}
