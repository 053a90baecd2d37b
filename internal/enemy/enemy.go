// Package enemy implements the per-unit enemy actor: health, the
// normal/attacked/dead state machine, and the hand-off back to its pool.
package enemy

import (
	"time"

	"github.com/trapline/sim/internal/core/ecs"
	"github.com/trapline/sim/internal/core/event"
	"github.com/trapline/sim/internal/data"
	"github.com/trapline/sim/internal/geom"
)

// AttackedSpeedFactor slows an enemy while it is in the attacked state.
const AttackedSpeedFactor = 0.75

type State int

const (
	StateNormal State = iota
	StateAttacked
	StateDead
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateAttacked:
		return "attacked"
	case StateDead:
		return "dead"
	}
	return "unknown"
}

// Navigator moves the enemy along the level. Pathfinding lives outside this
// package; the enemy only steers it.
type Navigator interface {
	SetDestination(p geom.Vec)
	RemainingDistance() float64
	SetSpeed(speed float64)
	SetEnabled(enabled bool)
	Warp(p geom.Vec)
	Position() geom.Vec
}

// DamageResolver turns raw attack damage into the health actually lost.
type DamageResolver interface {
	Resolve(e *Enemy, damage float64, kind data.DamageType) float64
}

// Died is published synchronously on the bus when an enemy dies, so every
// subscriber observes the death in the tick it happens.
type Died struct {
	Enemy            *Enemy
	HasFinishedLevel bool
}

// SpawnContext is the activation context handed to the pool on spawn.
type SpawnContext struct {
	Position    geom.Vec
	Destination geom.Vec
}

// Deps are the collaborators an enemy needs. Reclaim returns it to its pool.
type Deps struct {
	Bus      *event.Bus
	Nav      Navigator
	Resolver DamageResolver
	Reclaim  func(*Enemy)
}

// Enemy is a pooled enemy actor. Not safe for concurrent use.
type Enemy struct {
	ID       ecs.EntityID
	Template *data.EnemyTemplate

	deps Deps

	state         State
	health        float64
	active        bool
	visible       bool
	hit           bool
	attackedTimer time.Duration // negative when not armed
	dead          bool
	finished      bool
	deathTimer    time.Duration
	reclaimed     bool
}

// New creates an inactive enemy with full health.
func New(id ecs.EntityID, tmpl *data.EnemyTemplate, deps Deps) *Enemy {
	e := &Enemy{ID: id, Template: tmpl, deps: deps}
	e.reset()
	return e
}

func (e *Enemy) State() State                 { return e.state }
func (e *Enemy) Health() float64              { return e.health }
func (e *Enemy) Alive() bool                  { return e.active && !e.dead }
func (e *Enemy) Active() bool                 { return e.active }
func (e *Enemy) Dead() bool                   { return e.dead }
func (e *Enemy) Visible() bool                { return e.visible }
func (e *Enemy) HasFinishedLevel() bool       { return e.finished }
func (e *Enemy) Nav() Navigator               { return e.deps.Nav }
func (e *Enemy) Position() geom.Vec           { return e.deps.Nav.Position() }
func (e *Enemy) RemainingDistance() float64   { return e.deps.Nav.RemainingDistance() }
func (e *Enemy) Radius() float64              { return e.Template.Radius }
func (e *Enemy) DeathTimer() time.Duration    { return e.deathTimer }
func (e *Enemy) AttackedTimer() time.Duration { return e.attackedTimer }

// RegisterAttack marks the enemy as hit and applies the damage. Attacks on a
// dead enemy are ignored.
func (e *Enemy) RegisterAttack(damage float64, kind data.DamageType) {
	if e.dead {
		return
	}
	e.hit = true
	e.TakeDamage(damage, kind)
}

// TakeDamage subtracts damage from health and kills the enemy at zero.
func (e *Enemy) TakeDamage(damage float64, kind data.DamageType) {
	if e.dead {
		return
	}
	if e.deps.Resolver != nil {
		damage = e.deps.Resolver.Resolve(e, damage, kind)
	}
	e.health -= damage
	if e.health <= 0 {
		e.Die(false)
	}
}

// Die kills the enemy once per activation. An enemy that reached the level
// end skips the death effect and is reclaimed on its next update; a killed
// enemy hides and waits out its death effect first.
func (e *Enemy) Die(hasFinishedLevel bool) {
	if e.dead {
		return
	}
	e.dead = true
	e.finished = hasFinishedLevel
	e.state = StateDead
	if e.deps.Nav != nil {
		e.deps.Nav.SetEnabled(false)
	}
	if hasFinishedLevel {
		e.deathTimer = 0
	} else {
		e.visible = false
		e.deathTimer = e.Template.DeathEffect
	}
	if e.deps.Bus != nil {
		event.Publish(e.deps.Bus, Died{Enemy: e, HasFinishedLevel: hasFinishedLevel})
	}
}

// Update advances the attacked debounce while alive, or the death timer
// once dead. A dead enemy is handed back to its pool exactly once.
func (e *Enemy) Update(dt time.Duration) {
	if !e.active {
		return
	}
	if !e.dead {
		e.updateState(dt)
		return
	}
	if e.reclaimed {
		return
	}
	e.deathTimer -= dt
	if e.deathTimer <= 0 {
		e.reclaimed = true
		if e.deps.Reclaim != nil {
			e.deps.Reclaim(e)
		}
	}
}

func (e *Enemy) updateState(dt time.Duration) {
	if e.hit {
		e.hit = false
		e.attackedTimer = e.Template.MinAttackedTime
	}
	if e.attackedTimer >= 0 {
		if e.state != StateAttacked {
			e.goAttacked()
		}
		e.attackedTimer -= dt
	} else if e.state != StateNormal {
		e.goNormal()
	}
}

func (e *Enemy) goAttacked() {
	e.state = StateAttacked
	if e.deps.Nav != nil {
		e.deps.Nav.SetSpeed(e.Template.Speed * AttackedSpeedFactor)
	}
}

func (e *Enemy) goNormal() {
	e.state = StateNormal
	if e.deps.Nav != nil {
		e.deps.Nav.SetSpeed(e.Template.Speed)
	}
}

func (e *Enemy) reset() {
	e.goNormal()
	e.health = e.Template.MaxHealth
	e.hit = false
	e.attackedTimer = -1
	e.dead = false
	e.finished = false
	e.visible = true
	e.deathTimer = e.Template.DeathEffect
	e.reclaimed = false
}

// PreActivation revives the enemy and places it at the spawn point.
func (e *Enemy) PreActivation(ctx any) {
	e.dead = false
	e.visible = true
	if sc, ok := ctx.(SpawnContext); ok && e.deps.Nav != nil {
		e.deps.Nav.Warp(sc.Position)
	}
}

// PostActivation enables navigation toward the destination.
func (e *Enemy) PostActivation(ctx any) {
	if e.deps.Nav == nil {
		return
	}
	e.deps.Nav.SetEnabled(true)
	if sc, ok := ctx.(SpawnContext); ok {
		e.deps.Nav.SetDestination(sc.Destination)
	}
}

func (e *Enemy) PreDeactivation() {
	if e.deps.Nav != nil {
		e.deps.Nav.SetEnabled(false)
	}
}

// PostDeactivation restores the enemy to a fresh normal state.
func (e *Enemy) PostDeactivation() {
	e.reset()
}

func (e *Enemy) SetActive(active bool) {
	e.active = active
}
