package system

import (
	"time"

	"github.com/trapline/sim/internal/core/event"
	coresys "github.com/trapline/sim/internal/core/system"
)

// EventDispatchSystem makes last tick's deferred notifications readable and
// delivers them. Phase 0 (PreUpdate).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
