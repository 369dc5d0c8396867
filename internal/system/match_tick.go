package system

import (
	"time"

	coresys "github.com/gunpong/server/internal/core/system"
	"github.com/gunpong/server/internal/world"
)

// MatchTickSystem advances every running match by one fixed step.
// Finished matches sit untouched until teardown reaps them.
type MatchTickSystem struct {
	worldState *world.State
	now        func() float64 // simulation-clock seconds
}

func NewMatchTickSystem(worldState *world.State, now func() float64) *MatchTickSystem {
	return &MatchTickSystem{worldState: worldState, now: now}
}

func (s *MatchTickSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MatchTickSystem) Update(_ time.Duration) {
	now := s.now()
	for _, m := range s.worldState.MatchList() {
		if m.Finished() {
			continue
		}
		m.Advance(now)
	}
}
