package system

import (
	"time"

	"github.com/gunpong/server/internal/core/event"
	coresys "github.com/gunpong/server/internal/core/system"
)

// EventDispatchSystem rotates the event bus and delivers last tick's events
// to their subscribers. It must be registered before InputSystem so the rest
// of the tick sees a settled front buffer.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
