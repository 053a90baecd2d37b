// Package world holds the runtime state of a level in play: the actor
// pools, path agents, the spatial index, trigger volumes and raycasts.
package world

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trapline/sim/internal/config"
	"github.com/trapline/sim/internal/core/ecs"
	"github.com/trapline/sim/internal/core/event"
	"github.com/trapline/sim/internal/data"
	"github.com/trapline/sim/internal/enemy"
	"github.com/trapline/sim/internal/geom"
	"github.com/trapline/sim/internal/pool"
	"github.com/trapline/sim/internal/trap"
)

const (
	// MaxRayDistance bounds obstruction raycasts.
	MaxRayDistance = 100.0
	// Footprint is the radius of a trap's body for placement collisions.
	Footprint = 0.5
)

// Deps are what the world is built from.
type Deps struct {
	ECS      *ecs.World
	Level    *data.Level
	Catalog  *data.Catalog
	Bus      *event.Bus
	Resolver enemy.DamageResolver
	Pool     config.PoolConfig
	Log      *zap.Logger
}

// State is the level's runtime world. All methods run on the tick
// goroutine, no locks.
type State struct {
	ecs     *ecs.World
	level   *data.Level
	catalog *data.Catalog
	bus     *event.Bus
	res     enemy.DamageResolver
	log     *zap.Logger

	Enemies *pool.Pool[string, *enemy.Enemy]
	Traps   *pool.Pool[string, *trap.Instance]

	enemies *ecs.PtrComponentStore[enemy.Enemy]
	agents  *ecs.PtrComponentStore[PathAgent]
	traps   *ecs.PtrComponentStore[trap.Instance]
	grid    *Grid

	// Largest enemy body radius; widens grid lookups so bodies that
	// straddle a cell edge are not missed.
	maxRadius float64
}

func NewState(deps Deps) (*State, error) {
	switch {
	case deps.ECS == nil:
		return nil, errors.New("world: ecs world is required")
	case deps.Level == nil:
		return nil, errors.New("world: level is required")
	case deps.Catalog == nil:
		return nil, errors.New("world: catalog is required")
	case deps.Bus == nil:
		return nil, errors.New("world: event bus is required")
	}
	if len(deps.Level.Route) == 0 {
		return nil, fmt.Errorf("world: level %q has no route", deps.Level.ID)
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	opts := pool.Options{ExpandThreshold: deps.Pool.ExpandThreshold, ExpandCount: deps.Pool.ExpandCount}
	s := &State{
		ecs:     deps.ECS,
		level:   deps.Level,
		catalog: deps.Catalog,
		bus:     deps.Bus,
		res:     deps.Resolver,
		log:     deps.Log.With(zap.String("level", deps.Level.ID)),
		Enemies: pool.New[string, *enemy.Enemy]("enemy", opts, deps.Log),
		Traps:   pool.New[string, *trap.Instance]("placeable", opts, deps.Log),
		enemies: ecs.NewPtrComponentStore[enemy.Enemy](),
		agents:  ecs.NewPtrComponentStore[PathAgent](),
		traps:   ecs.NewPtrComponentStore[trap.Instance](),
		grid:    NewGrid(defaultCellSize),
	}
	s.ecs.Track(s.enemies, s.agents, s.traps)

	s.Enemies.OnDestroy(func(_ string, e *enemy.Enemy) {
		s.grid.Remove(e.ID)
		s.ecs.MarkForDestruction(e.ID)
	})
	s.Traps.OnDestroy(func(_ string, i *trap.Instance) {
		s.ecs.MarkForDestruction(i.ID)
	})

	for _, id := range deps.Catalog.Enemies.IDs() {
		tmpl := deps.Catalog.Enemies.Get(id)
		if tmpl.Radius > s.maxRadius {
			s.maxRadius = tmpl.Radius
		}
		if err := s.Enemies.Register(id, func() *enemy.Enemy { return s.newEnemy(tmpl) }); err != nil {
			return nil, err
		}
		s.Enemies.Prewarm(id, deps.Pool.EnemyStartCount)
	}
	for _, id := range deps.Catalog.Traps.IDs() {
		tmpl := deps.Catalog.Traps.Get(id)
		if err := s.Traps.Register(id, func() *trap.Instance { return s.newTrap(tmpl) }); err != nil {
			return nil, err
		}
		s.Traps.Prewarm(id, deps.Pool.PlaceableStartCount)
	}

	// One subscription fans deaths out to every active trap's attack area,
	// in the tick the death happens.
	event.Subscribe(s.bus, s.onEnemyDied)

	s.log.Info("world ready",
		zap.Int("enemy_kinds", len(s.Enemies.Keys())),
		zap.Int("trap_kinds", len(s.Traps.Keys())),
		zap.Int("walls", len(s.level.Walls)),
	)
	return s, nil
}

func (s *State) newEnemy(tmpl *data.EnemyTemplate) *enemy.Enemy {
	id := s.ecs.CreateEntity()
	agent := NewPathAgent(s.level.Route)
	e := enemy.New(id, tmpl, enemy.Deps{
		Bus:      s.bus,
		Nav:      agent,
		Resolver: s.res,
		Reclaim:  s.reclaimEnemy,
	})
	s.enemies.Set(id, e)
	s.agents.Set(id, agent)
	return e
}

func (s *State) newTrap(tmpl *data.TrapTemplate) *trap.Instance {
	id := s.ecs.CreateEntity()
	inst, err := trap.NewInstance(id, tmpl, trap.Deps{
		Ray:     s,
		Query:   s,
		Log:     s.log,
		Reclaim: s.reclaimTrap,
	})
	if err != nil {
		// Templates are validated when the catalog loads.
		panic(fmt.Sprintf("world: trap %q: %v", tmpl.ID, err))
	}
	s.traps.Set(id, inst)
	return inst
}

func (s *State) reclaimEnemy(e *enemy.Enemy) {
	s.grid.Remove(e.ID)
	s.Enemies.Reclaim(e.Template.ID, e)
}

func (s *State) reclaimTrap(i *trap.Instance) {
	s.Traps.Reclaim(i.Template.ID, i)
}

func (s *State) onEnemyDied(ev enemy.Died) {
	for _, inst := range s.ActiveTraps() {
		inst.Area.OnEnemyDied(ev)
	}
}

func (s *State) Level() *data.Level     { return s.level }
func (s *State) Catalog() *data.Catalog { return s.catalog }
func (s *State) Grid() *Grid            { return s.grid }

// Agent returns the path agent of an enemy entity.
func (s *State) Agent(id ecs.EntityID) *PathAgent {
	a, _ := s.agents.Get(id)
	return a
}

// Spawn takes an enemy of tmpl's kind from the pool and starts it on the
// route toward the level's end point.
func (s *State) Spawn(tmpl *data.EnemyTemplate) {
	e := s.Enemies.Get(tmpl.ID, enemy.SpawnContext{
		Position:    s.level.SpawnPoint(),
		Destination: s.level.EndPoint(),
	})
	s.grid.Set(e.ID, e.Position())
}

// ReclaimAll returns every enemy and trap to its pool.
func (s *State) ReclaimAll() {
	s.Enemies.ReclaimAllKeys()
	s.Traps.ReclaimAllKeys()
	s.grid.Clear()
}

// ActiveEnemies snapshots the in-use enemies so callers may reclaim while
// iterating.
func (s *State) ActiveEnemies() []*enemy.Enemy {
	var out []*enemy.Enemy
	s.Enemies.EachInUse(func(_ string, e *enemy.Enemy) { out = append(out, e) })
	return out
}

// ActiveTraps snapshots the in-use trap instances.
func (s *State) ActiveTraps() []*trap.Instance {
	var out []*trap.Instance
	s.Traps.EachInUse(func(_ string, i *trap.Instance) { out = append(out, i) })
	return out
}

// MoveEnemies steps every path agent, keeps the spatial index in sync and
// finishes enemies that reached the level's end alive.
func (s *State) MoveEnemies(dt time.Duration) {
	ecs.Each2(s.enemies, s.agents, func(id ecs.EntityID, e *enemy.Enemy, agent *PathAgent) {
		if !e.Active() {
			return
		}
		arrived := agent.Step(dt)
		if e.Dead() {
			s.grid.Remove(id)
			return
		}
		s.grid.Set(id, agent.Position())
		if arrived {
			e.Die(true)
		}
	})
}

// EnemiesWithin returns the alive enemies whose body overlaps the circle,
// in ascending entity order.
func (s *State) EnemiesWithin(center geom.Vec, radius float64) []*enemy.Enemy {
	var out []*enemy.Enemy
	for _, id := range s.grid.Nearby(center, radius+s.maxRadius) {
		e, ok := s.enemies.Get(id)
		if !ok || !e.Alive() {
			continue
		}
		if r := radius + e.Radius(); center.DistSq(e.Position()) <= r*r {
			out = append(out, e)
		}
	}
	return out
}

// SyncTriggers diffs each active trap's range against the enemies around
// it and reports the changes to its attack area.
func (s *State) SyncTriggers() {
	for _, inst := range s.ActiveTraps() {
		inside := s.EnemiesWithin(inst.Position(), inst.Range())
		now := make(map[ecs.EntityID]bool, len(inside))
		for _, e := range inside {
			now[e.ID] = true
		}
		for _, e := range inst.Area.Enemies() {
			if !now[e.ID] {
				inst.Area.Exit(e)
			}
		}
		for _, e := range inside {
			if !inst.Area.Contains(e.ID) {
				inst.Area.Enter(e)
			}
		}
	}
}

// Raycast returns the first wall or enemy body on the ray from origin
// toward target, within MaxRayDistance.
func (s *State) Raycast(origin, target geom.Vec) (trap.Hit, bool) {
	dir := target.Sub(origin).Norm()
	if dir == (geom.Vec{}) {
		return trap.Hit{}, false
	}
	best := trap.Hit{Distance: MaxRayDistance}
	found := false
	for _, w := range s.level.Walls {
		if t, ok := geom.RaySegment(origin, dir, w); ok && t <= best.Distance {
			best = trap.Hit{Layer: trap.LayerObstacle, Distance: t}
			found = true
		}
	}
	for _, e := range s.ActiveEnemies() {
		if !e.Alive() {
			continue
		}
		if t, ok := geom.RayCircle(origin, dir, e.Position(), e.Radius()); ok && t < best.Distance {
			best = trap.Hit{Layer: trap.LayerEnemy, Distance: t}
			found = true
		}
	}
	return best, found
}

// PlaceTrap takes a trap of the given kind, positions it, counts what its
// footprint touches and pays for it. A refused placement returns the trap
// to its pool.
func (s *State) PlaceTrap(id string, pos geom.Vec, w trap.Wallet) (*trap.Instance, error) {
	inst := s.Traps.Get(id, trap.PlacementContext{Position: pos})

	// The ground is always touched.
	objects := 1
	for _, wall := range s.level.Walls {
		if wall.DistTo(pos) < Footprint {
			objects++
		}
	}
	placeables := 0
	for _, other := range s.ActiveTraps() {
		if other != inst && other.Placeable.Placed() && other.Position().Dist(pos) < 2*Footprint {
			placeables++
		}
	}
	inst.Placeable.TouchObject(objects)
	inst.Placeable.TouchPlaceable(placeables)

	if err := inst.Place(w); err != nil {
		s.reclaimTrap(inst)
		return nil, fmt.Errorf("place %s at (%.1f, %.1f): %w", id, pos.X, pos.Y, err)
	}
	s.log.Info("trap placed",
		zap.String("trap", id),
		zap.Stringer("entity", inst.ID),
		zap.Float64("x", pos.X),
		zap.Float64("y", pos.Y),
	)
	return inst, nil
}

// PlaceInitial places the level's authored traps, skipping any the wallet
// cannot pay for or the ground cannot take.
func (s *State) PlaceInitial(w trap.Wallet) int {
	placed := 0
	for _, tp := range s.level.Traps {
		if _, err := s.PlaceTrap(tp.Trap, tp.Position, w); err != nil {
			s.log.Warn("initial trap skipped", zap.Error(err))
			continue
		}
		placed++
	}
	return placed
}

// SellTrap refunds a placed trap and returns it to its pool.
func (s *State) SellTrap(inst *trap.Instance, w trap.Wallet) bool {
	if !inst.Sell(w) {
		return false
	}
	s.log.Info("trap sold", zap.String("trap", inst.Template.ID), zap.Stringer("entity", inst.ID))
	return true
}

// ExpandPools runs the background expansion pass of both pools.
func (s *State) ExpandPools() int {
	return s.Enemies.Expand() + s.Traps.Expand()
}

// Destroy permanently clears both pools.
func (s *State) Destroy() {
	s.Enemies.ClearAll()
	s.Traps.ClearAll()
	s.grid.Clear()
}
