package world

import (
	"time"

	"github.com/trapline/sim/internal/geom"
)

// PathAgent walks an enemy along a level's route. It satisfies the
// enemy's navigator capability; no pathfinding happens beyond following
// the authored waypoints.
type PathAgent struct {
	route   []geom.Vec
	path    []geom.Vec // waypoints still ahead, destination last
	pos     geom.Vec
	speed   float64
	enabled bool
	arrived bool
}

func NewPathAgent(route []geom.Vec) *PathAgent {
	a := &PathAgent{route: route}
	if len(route) > 0 {
		a.pos = route[0]
	}
	return a
}

func (a *PathAgent) Position() geom.Vec      { return a.pos }
func (a *PathAgent) Speed() float64          { return a.speed }
func (a *PathAgent) Enabled() bool           { return a.enabled }
func (a *PathAgent) Arrived() bool           { return a.arrived }
func (a *PathAgent) SetSpeed(speed float64)  { a.speed = speed }
func (a *PathAgent) SetEnabled(enabled bool) { a.enabled = enabled }

// Warp teleports the agent and forgets its path.
func (a *PathAgent) Warp(p geom.Vec) {
	a.pos = p
	a.path = a.path[:0]
	a.arrived = false
}

// SetDestination plans along the route waypoints after the one nearest to
// the agent, ending at dest.
func (a *PathAgent) SetDestination(dest geom.Vec) {
	a.path = a.path[:0]
	a.arrived = false
	start := a.nearestWaypoint()
	for i := start + 1; i < len(a.route); i++ {
		a.path = append(a.path, a.route[i])
	}
	if n := len(a.path); n == 0 || a.path[n-1] != dest {
		a.path = append(a.path, dest)
	}
}

func (a *PathAgent) nearestWaypoint() int {
	best, bestD := -1, 0.0
	for i, p := range a.route {
		if d := a.pos.DistSq(p); best < 0 || d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// RemainingDistance is the path length left to the destination.
func (a *PathAgent) RemainingDistance() float64 {
	if len(a.path) == 0 {
		return 0
	}
	d := a.pos.Dist(a.path[0])
	for i := 1; i < len(a.path); i++ {
		d += a.path[i-1].Dist(a.path[i])
	}
	return d
}

// Step moves the agent for dt and reports whether it reached its
// destination during this step.
func (a *PathAgent) Step(dt time.Duration) bool {
	if !a.enabled || a.arrived || len(a.path) == 0 {
		return false
	}
	budget := a.speed * dt.Seconds()
	for budget > 0 && len(a.path) > 0 {
		next := a.path[0]
		d := a.pos.Dist(next)
		var reached bool
		a.pos, reached = a.pos.MoveTowards(next, budget)
		if !reached {
			return false
		}
		budget -= d
		a.path = a.path[1:]
	}
	if len(a.path) == 0 {
		a.arrived = true
		return true
	}
	return false
}
