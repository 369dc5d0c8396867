package system

import (
	"time"

	coresys "github.com/gunpong/server/internal/core/system"
	"github.com/gunpong/server/internal/world"
)

// CleanupSystem advances and prunes every match's particle set at tick end.
// It runs after the broadcast read so a particle is still visible on its
// final frame. Entity destruction happens inside the match substeps.
type CleanupSystem struct {
	worldState *world.State
	now        func() float64
}

func NewCleanupSystem(worldState *world.State, now func() float64) *CleanupSystem {
	return &CleanupSystem{worldState: worldState, now: now}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	now := s.now()
	for _, m := range s.worldState.MatchList() {
		m.AdvanceParticles(now)
	}
}
