package world

import (
	"math/rand"

	"github.com/gunpong/server/internal/component"
)

// Color is an RGBA color with 0-1 channels, matching the client's shader
// uniforms.
type Color struct {
	R, G, B, A float32
}

var (
	ColorBlack = Color{0.00, 0.00, 0.00, 1.00}
	ColorWhite = Color{1.00, 1.00, 1.00, 1.00}
	ColorRed   = Color{0.90, 0.16, 0.22, 1.00}
	ColorBlue  = Color{0.00, 0.47, 0.95, 1.00}
)

// Particle is one cosmetic particle. Birth and Death are absolute
// simulation-clock timestamps in seconds.
type Particle struct {
	Pos   component.Vec2
	Vel   component.Vec2
	Size  float32
	Color Color
	Birth float64
	Death float64
}

// EmitSpec is one emission request: a count, base values, and an independent
// symmetric jitter range per axis. Age jitter offsets the death timestamp
// around now+Age.
type EmitSpec struct {
	Count      int
	Pos        component.Vec2
	Vel        component.Vec2
	Size       float32
	Color      Color
	Age        float64
	PosJitter  component.Vec2
	VelJitter  component.Vec2
	SizeJitter float32
	AgeJitter  float64
}

// DefaultMaxBurst caps one Emit call when no explicit cap is configured.
const DefaultMaxBurst = 4096

// ParticleSystem owns the live particle set for one match. Single-goroutine
// access only (game loop).
type ParticleSystem struct {
	particles []Particle
	rng       *rand.Rand
	maxBurst  int
}

func NewParticleSystem(rng *rand.Rand, maxBurst int) *ParticleSystem {
	if maxBurst <= 0 {
		maxBurst = DefaultMaxBurst
	}
	return &ParticleSystem{
		particles: make([]Particle, 0, 512),
		rng:       rng,
		maxBurst:  maxBurst,
	}
}

// Emit creates spec.Count particles, each drawing its own uniform jitter in
// [-j, +j] per axis. One call is capped at maxBurst so a runaway effect
// table cannot flood a frame.
func (ps *ParticleSystem) Emit(spec EmitSpec, now float64) {
	n := spec.Count
	if n <= 0 {
		return
	}
	if n > ps.maxBurst {
		n = ps.maxBurst
	}
	for i := 0; i < n; i++ {
		ps.particles = append(ps.particles, Particle{
			Pos: component.Vec2{
				X: spec.Pos.X + ps.jitter(spec.PosJitter.X),
				Y: spec.Pos.Y + ps.jitter(spec.PosJitter.Y),
			},
			Vel: component.Vec2{
				X: spec.Vel.X + ps.jitter(spec.VelJitter.X),
				Y: spec.Vel.Y + ps.jitter(spec.VelJitter.Y),
			},
			Size:  spec.Size + ps.jitter(spec.SizeJitter),
			Color: spec.Color,
			Birth: now,
			Death: now + spec.Age + ps.jitter64(spec.AgeJitter),
		})
	}
}

// Advance integrates every particle by its constant velocity once, then
// prunes the ones whose death time has passed. Call after the frame's
// snapshot read so expiring particles are still visible for their last frame.
func (ps *ParticleSystem) Advance(now float64) {
	for i := range ps.particles {
		ps.particles[i].Pos.X += ps.particles[i].Vel.X
		ps.particles[i].Pos.Y += ps.particles[i].Vel.Y
	}
	live := ps.particles[:0]
	for _, p := range ps.particles {
		if p.Death > now {
			live = append(live, p)
		}
	}
	ps.particles = live
}

// Len returns the live particle count.
func (ps *ParticleSystem) Len() int {
	return len(ps.particles)
}

// Each iterates the live particles in slice order.
func (ps *ParticleSystem) Each(fn func(*Particle)) {
	for i := range ps.particles {
		fn(&ps.particles[i])
	}
}

// LifeFrac returns the normalized remaining life of p: 1 at birth, 0 at
// death, clamped. Renderers scale particle size by this.
func LifeFrac(p *Particle, now float64) float64 {
	span := p.Birth - p.Death
	if span == 0 {
		return 0
	}
	f := (now - p.Death) / span
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func (ps *ParticleSystem) jitter(j float32) float32 {
	if j == 0 {
		return 0
	}
	return (ps.rng.Float32()*2 - 1) * j
}

func (ps *ParticleSystem) jitter64(j float64) float64 {
	if j == 0 {
		return 0
	}
	return (ps.rng.Float64()*2 - 1) * j
}
