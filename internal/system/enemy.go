package system

import (
	"time"

	coresys "github.com/trapline/sim/internal/core/system"
	"github.com/trapline/sim/internal/world"
)

// EnemySystem runs every active enemy's attacked debounce and death timer.
// Enemies whose death timer runs out go back to their pool here.
// Phase 1 (Update).
type EnemySystem struct {
	world *world.State
}

func NewEnemySystem(ws *world.State) *EnemySystem {
	return &EnemySystem{world: ws}
}

func (s *EnemySystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *EnemySystem) Update(dt time.Duration) {
	for _, e := range s.world.ActiveEnemies() {
		e.Update(dt)
	}
}
