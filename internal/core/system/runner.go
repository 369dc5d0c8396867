package system

import (
	"sort"
	"time"
)

// Runner drives every registered system through one tick in phase order.
type Runner struct {
	systems []System
}

func NewRunner() *Runner {
	return &Runner{systems: make([]System, 0, 16)}
}

// Register adds a system and re-sorts. The sort is stable so systems
// sharing a phase keep their registration order; PhaseInput depends on
// this (event dispatch registers first and must run before input drain).
func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	sort.SliceStable(r.systems, func(i, j int) bool {
		return r.systems[i].Phase() < r.systems[j].Phase()
	})
}

func (r *Runner) Tick(dt time.Duration) {
	for _, s := range r.systems {
		s.Update(dt)
	}
}

// TickPhase 只執行指定 Phase 的 System。
// 關機流程用它補跑事件派發與對戰結算，確保最後一批結果落地。
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}
