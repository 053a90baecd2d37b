package system

import (
	"fmt"
	"time"
)

// Runner drives the simulation clock. Each tick runs every phase in order,
// and systems within a phase run in registration order.
type Runner struct {
	phases  [phaseCount][]System
	ticks   uint64
	elapsed time.Duration
}

func NewRunner() *Runner {
	return &Runner{}
}

// Register appends s to its phase. A phase outside the known range is a
// wiring mistake and panics.
func (r *Runner) Register(s System) {
	p := s.Phase()
	if p < 0 || p >= phaseCount {
		panic(fmt.Sprintf("system: %T registered with unknown phase %d", s, int(p)))
	}
	r.phases[p] = append(r.phases[p], s)
}

// Tick advances the clock by dt.
func (r *Runner) Tick(dt time.Duration) {
	for p := range r.phases {
		r.run(Phase(p), dt)
	}
	r.ticks++
	r.elapsed += dt
}

// TickPhase runs a single phase without advancing the clock. The driver uses
// it to deliver the notifications raised by the last full tick.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.run(phase, dt)
}

func (r *Runner) run(phase Phase, dt time.Duration) {
	for _, s := range r.phases[phase] {
		s.Update(dt)
	}
}

func (r *Runner) Ticks() uint64          { return r.ticks }
func (r *Runner) Elapsed() time.Duration { return r.elapsed }

// Len returns the number of registered systems.
func (r *Runner) Len() int {
	n := 0
	for _, list := range r.phases {
		n += len(list)
	}
	return n
}
