package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/trapline/sim/internal/core/ecs"
	coresys "github.com/trapline/sim/internal/core/system"
)

// CleanupSystem destroys the entities of pooled actors that a pool clear
// queued during the tick. Pooled actors are recycled during play, so the
// queue is normally empty. Phase 3 (Cleanup), registered last.
type CleanupSystem struct {
	ecs *ecs.World
	log *zap.Logger
}

func NewCleanupSystem(w *ecs.World, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{ecs: w, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	n := s.ecs.PendingDestruction()
	if n == 0 {
		return
	}
	s.ecs.FlushDestroyQueue()
	s.log.Debug("entities destroyed",
		zap.Int("count", n),
		zap.Int("live", s.ecs.Live()),
	)
}
