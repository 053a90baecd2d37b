package system

import "time"

// Phase places a system within a tick. Phases run in ascending order.
type Phase int

const (
	PhasePreUpdate  Phase = iota // deliver last tick's deferred notifications
	PhaseUpdate                  // scheduler, enemy timers, trap attack loops
	PhasePostUpdate              // movement, spatial index, trigger volumes
	PhaseCleanup                 // background pool expansion, destroy queued entities

	phaseCount
)

var phaseNames = [phaseCount]string{"pre_update", "update", "post_update", "cleanup"}

func (p Phase) String() string {
	if p < 0 || p >= phaseCount {
		return "unknown"
	}
	return phaseNames[p]
}

// System is one unit of per-tick work.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
