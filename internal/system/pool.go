package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/trapline/sim/internal/core/system"
	"github.com/trapline/sim/internal/world"
)

// PoolExpandSystem refills pools marked during this tick's spawns and
// placements, after every get of the tick is served. Phase 3 (Cleanup),
// registered before CleanupSystem.
type PoolExpandSystem struct {
	world *world.State
	log   *zap.Logger
}

func NewPoolExpandSystem(ws *world.State, log *zap.Logger) *PoolExpandSystem {
	return &PoolExpandSystem{world: ws, log: log}
}

func (s *PoolExpandSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *PoolExpandSystem) Update(_ time.Duration) {
	if n := s.world.ExpandPools(); n > 0 {
		s.log.Debug("pools expanded", zap.Int("created", n))
	}
}
