package system

import (
	"testing"

	"github.com/gunpong/server/internal/component"
	"github.com/gunpong/server/internal/core/event"
	"github.com/gunpong/server/internal/world"
)

func snapshotMatch() *world.Match {
	return world.NewMatch(world.MatchParams{
		ID:       1,
		FieldW:   1280,
		FieldH:   720,
		WinScore: 3,
		Seed:     9,
		Effects:  world.DefaultEffects(),
		Bus:      event.NewBus(),
	},
		world.SeatConfig{Name: "l", Bot: true},
		world.SeatConfig{Name: "r", Bot: true},
	)
}

func TestBuildSnapshotReflectsMatch(t *testing.T) {
	m := snapshotMatch()

	snap := BuildSnapshot(m, 0, 0)
	if snap.Tick != 0 || snap.Phase != uint8(component.PhaseStart) {
		t.Fatalf("head = tick %d phase %d, want fresh start", snap.Tick, snap.Phase)
	}
	if len(snap.Balls) != 0 {
		t.Fatalf("balls before serve = %d, want 0", len(snap.Balls))
	}
	// Index 0 is always the left paddle.
	if snap.Paddles[0].X >= snap.Paddles[1].X {
		t.Fatalf("paddle order wrong: left x %v, right x %v", snap.Paddles[0].X, snap.Paddles[1].X)
	}
	if snap.Paddles[0].HalfH == 0 {
		t.Fatal("paddle extents missing")
	}

	m.PressStart()
	m.Advance(1.0 / 60)

	snap = BuildSnapshot(m, 0, 1.0/60)
	if snap.Tick != 1 {
		t.Fatalf("Tick = %d, want 1", snap.Tick)
	}
	if snap.Phase != uint8(component.PhaseOngoing) {
		t.Fatalf("Phase = %d, want ongoing after serve", snap.Phase)
	}
	if len(snap.Balls) != 1 {
		t.Fatalf("balls after serve = %d, want 1", len(snap.Balls))
	}
	if snap.Balls[0].R == 0 || snap.Balls[0].VX == 0 {
		t.Fatalf("ball view = %+v, want live kinematics", snap.Balls[0])
	}
}

func TestBuildSnapshotParticleBudget(t *testing.T) {
	m := snapshotMatch()
	m.Particles().Emit(world.EmitSpec{Count: 10, Size: 2, Age: 5}, 0)

	snap := BuildSnapshot(m, 4, 0)
	if snap.ParticleCount != 10 {
		t.Fatalf("ParticleCount = %d, want the uncut total 10", snap.ParticleCount)
	}
	if len(snap.Particles) != 4 {
		t.Fatalf("particles sent = %d, want budget 4", len(snap.Particles))
	}
	// Fresh particles carry full life.
	if snap.Particles[0].Life != 1 {
		t.Fatalf("Life = %v, want 1 at birth", snap.Particles[0].Life)
	}

	// Budget zero means no cap.
	snap = BuildSnapshot(m, 0, 0)
	if len(snap.Particles) != 10 {
		t.Fatalf("uncapped particles = %d, want 10", len(snap.Particles))
	}
}
