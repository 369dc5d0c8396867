package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: dispatch last tick's events, drain session queues
	PhasePreUpdate               // 1: pair queued players into matches
	PhaseUpdate                  // 2: advance match simulations
	PhasePostUpdate              // 3: ratings, match teardown
	PhaseOutput                  // 4: build + send snapshots
	PhasePersist                 // 5: flush dirty ratings
	PhaseCleanup                 // 6: particles, destroy queued entities
)

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
