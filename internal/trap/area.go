package trap

import (
	"github.com/trapline/sim/internal/core/ecs"
	"github.com/trapline/sim/internal/enemy"
)

// MovementObserver is told when an enemy enters (inArea true) or leaves the
// attack area.
type MovementObserver func(e *enemy.Enemy, inArea bool)

// AttackArea tracks the enemies currently inside a trap's range volume.
// Entries are kept in order of entry.
type AttackArea struct {
	enemies   map[ecs.EntityID]*enemy.Enemy
	order     []ecs.EntityID
	observers []MovementObserver
}

func NewAttackArea() *AttackArea {
	return &AttackArea{enemies: make(map[ecs.EntityID]*enemy.Enemy, 8)}
}

// Observe registers fn for movement notifications. Observers run in
// registration order.
func (a *AttackArea) Observe(fn MovementObserver) {
	a.observers = append(a.observers, fn)
}

// Enter records an enemy that walked into the volume. Dead enemies and
// enemies already tracked are ignored.
func (a *AttackArea) Enter(e *enemy.Enemy) {
	if e == nil || !e.Alive() {
		return
	}
	if _, ok := a.enemies[e.ID]; ok {
		return
	}
	a.enemies[e.ID] = e
	a.order = append(a.order, e.ID)
	a.notify(e, true)
}

// Exit forgets an enemy that walked out of the volume.
func (a *AttackArea) Exit(e *enemy.Enemy) {
	if e == nil || !a.remove(e.ID) {
		return
	}
	a.notify(e, false)
}

// OnEnemyDied drops a tracked enemy that died inside the volume, so the
// area never holds a dead enemy after the death notification.
func (a *AttackArea) OnEnemyDied(ev enemy.Died) {
	if !a.remove(ev.Enemy.ID) {
		return
	}
	a.notify(ev.Enemy, false)
}

// Clear drops every entry without notifying. Used when the trap itself is
// deactivated.
func (a *AttackArea) Clear() {
	clear(a.enemies)
	a.order = a.order[:0]
}

func (a *AttackArea) Contains(id ecs.EntityID) bool {
	_, ok := a.enemies[id]
	return ok
}

func (a *AttackArea) Len() int {
	return len(a.order)
}

// Enemies returns tracked enemies in order of entry.
func (a *AttackArea) Enemies() []*enemy.Enemy {
	out := make([]*enemy.Enemy, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.enemies[id])
	}
	return out
}

func (a *AttackArea) remove(id ecs.EntityID) bool {
	if _, ok := a.enemies[id]; !ok {
		return false
	}
	delete(a.enemies, id)
	for i, o := range a.order {
		if o == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return true
}

func (a *AttackArea) notify(e *enemy.Enemy, inArea bool) {
	for _, fn := range a.observers {
		fn(e, inArea)
	}
}
