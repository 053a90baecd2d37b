package system

import (
	"time"

	coresys "github.com/trapline/sim/internal/core/system"
	"github.com/trapline/sim/internal/level"
)

// LevelSystem advances the wave sequence. Runs before enemies and traps so
// that spawns of this tick are updated in the same tick. Phase 1 (Update).
type LevelSystem struct {
	sched *level.Scheduler
}

func NewLevelSystem(sched *level.Scheduler) *LevelSystem {
	return &LevelSystem{sched: sched}
}

func (s *LevelSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *LevelSystem) Update(dt time.Duration) {
	s.sched.Update(dt)
}
