package system

import (
	"time"

	coresys "github.com/trapline/sim/internal/core/system"
	"github.com/trapline/sim/internal/world"
)

// TrapSystem advances every active trap's attack loop and presenter.
// Phase 1 (Update).
type TrapSystem struct {
	world *world.State
}

func NewTrapSystem(ws *world.State) *TrapSystem {
	return &TrapSystem{world: ws}
}

func (s *TrapSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *TrapSystem) Update(dt time.Duration) {
	for _, inst := range s.world.ActiveTraps() {
		inst.Trap.Update(dt)
	}
}
