package system

import (
	"time"

	coresys "github.com/trapline/sim/internal/core/system"
	"github.com/trapline/sim/internal/world"
)

// MovementSystem walks enemies along the route and keeps the spatial index
// current. An enemy reaching the end alive dies as finished.
// Phase 2 (PostUpdate).
type MovementSystem struct {
	world *world.State
}

func NewMovementSystem(ws *world.State) *MovementSystem {
	return &MovementSystem{world: ws}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *MovementSystem) Update(dt time.Duration) {
	s.world.MoveEnemies(dt)
}

// TriggerSystem reports enemies entering and leaving trap ranges after
// movement. Phase 2 (PostUpdate), registered after MovementSystem.
type TriggerSystem struct {
	world *world.State
}

func NewTriggerSystem(ws *world.State) *TriggerSystem {
	return &TriggerSystem{world: ws}
}

func (s *TriggerSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *TriggerSystem) Update(_ time.Duration) {
	s.world.SyncTriggers()
}
