package world

import (
	"math/rand"
	"testing"

	"github.com/gunpong/server/internal/component"
)

func newTestParticles(maxBurst int) *ParticleSystem {
	return NewParticleSystem(rand.New(rand.NewSource(7)), maxBurst)
}

func TestEmitAndPrune(t *testing.T) {
	ps := newTestParticles(0)
	ps.Emit(EmitSpec{Count: 10, Age: 1.0}, 0)
	if ps.Len() != 10 {
		t.Fatalf("after emit: %d particles, want 10", ps.Len())
	}

	ps.Advance(0.5)
	if ps.Len() != 10 {
		t.Fatalf("mid-life: %d particles, want 10", ps.Len())
	}

	// Death is exclusive: a particle whose time is exactly up is gone.
	ps.Advance(1.0)
	if ps.Len() != 0 {
		t.Fatalf("past death: %d particles, want 0", ps.Len())
	}
}

func TestEmitIgnoresNonPositiveCount(t *testing.T) {
	ps := newTestParticles(0)
	ps.Emit(EmitSpec{Count: 0, Age: 1.0}, 0)
	ps.Emit(EmitSpec{Count: -3, Age: 1.0}, 0)
	if ps.Len() != 0 {
		t.Fatalf("got %d particles, want 0", ps.Len())
	}
}

func TestEmitCapsOneBurst(t *testing.T) {
	ps := newTestParticles(5)
	ps.Emit(EmitSpec{Count: 100, Age: 1.0}, 0)
	if ps.Len() != 5 {
		t.Fatalf("burst len = %d, want cap of 5", ps.Len())
	}
	// The cap is per call, not a pool limit.
	ps.Emit(EmitSpec{Count: 100, Age: 1.0}, 0)
	if ps.Len() != 10 {
		t.Fatalf("after second burst len = %d, want 10", ps.Len())
	}
}

func TestAgeJitterSpreadsDeaths(t *testing.T) {
	ps := newTestParticles(0)
	ps.Emit(EmitSpec{Count: 50, Age: 1.0, AgeJitter: 0.5}, 0)
	ps.Advance(1.0)
	if ps.Len() == 0 || ps.Len() == 50 {
		t.Fatalf("jittered deaths should straddle the base age, got %d/50 alive", ps.Len())
	}
}

func TestAdvanceIntegratesVelocity(t *testing.T) {
	ps := newTestParticles(0)
	ps.Emit(EmitSpec{
		Count: 1,
		Pos:   component.Vec2{X: 10, Y: 20},
		Vel:   component.Vec2{X: 2, Y: -1},
		Age:   10,
	}, 0)

	ps.Advance(0)
	ps.Advance(0)
	ps.Each(func(p *Particle) {
		if p.Pos.X != 14 || p.Pos.Y != 18 {
			t.Fatalf("particle at (%f, %f), want (14, 18)", p.Pos.X, p.Pos.Y)
		}
	})
}

func TestLifeFrac(t *testing.T) {
	p := &Particle{Birth: 1, Death: 3}
	cases := []struct {
		now  float64
		want float64
	}{
		{1, 1},   // fresh
		{2, 0.5}, // halfway
		{3, 0},   // expired
		{0, 1},   // clamped before birth
		{4, 0},   // clamped after death
	}
	for _, c := range cases {
		if got := LifeFrac(p, c.now); got != c.want {
			t.Fatalf("LifeFrac at %f = %f, want %f", c.now, got, c.want)
		}
	}

	zero := &Particle{Birth: 2, Death: 2}
	if LifeFrac(zero, 2) != 0 {
		t.Fatal("zero-span particle should report 0 life")
	}
}
