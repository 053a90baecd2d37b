// Package trap implements trap behaviour: the attack area that tracks
// enemies in range, the targeting and attack state machine, the placeable
// capability and presentation strategies.
package trap

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trapline/sim/internal/data"
	"github.com/trapline/sim/internal/enemy"
	"github.com/trapline/sim/internal/geom"
)

type State int

const (
	StateNormal State = iota
	StateAttack
)

func (s State) String() string {
	if s == StateAttack {
		return "attack"
	}
	return "normal"
}

// Layer classifies what a ray hit.
type Layer int

const (
	LayerObstacle Layer = iota
	LayerEnemy
)

// Hit is the first thing a ray ran into.
type Hit struct {
	Layer    Layer
	Distance float64
}

// Raycaster casts a ray from origin toward target and reports the first hit.
type Raycaster interface {
	Raycast(origin, target geom.Vec) (Hit, bool)
}

// RangeQuery finds alive enemies around a point, for area-of-effect attacks.
type RangeQuery interface {
	EnemiesWithin(center geom.Vec, radius float64) []*enemy.Enemy
}

// PlacementState reports whether the trap has been placed in the world.
// Unplaced traps keep tracking targets but never fire.
type PlacementState interface {
	Placed() bool
}

// step is where the attack loop is suspended.
type step int

const (
	stepIdle     step = iota // no attack loop running
	stepCooldown             // waiting for the previous attack's cooldown
	stepAcquire              // waiting for placement or a clear shot
	stepHitDelay             // in attack state, waiting for the hit to land
)

// Config holds a trap's collaborators.
type Config struct {
	Template  *data.TrapTemplate
	Area      *AttackArea
	Placement PlacementState
	Ray       Raycaster
	Query     RangeQuery
	Presenter Presenter
	Log       *zap.Logger
}

// Validate rejects configurations the attack engine cannot run.
func (c Config) Validate() error {
	switch {
	case c.Template == nil:
		return fmt.Errorf("trap: template is required")
	case c.Area == nil:
		return fmt.Errorf("trap %q: attack area is required", c.Template.ID)
	case c.Presenter == nil:
		return fmt.Errorf("trap %q: presenter is required", c.Template.ID)
	}
	if err := c.Template.Validate(); err != nil {
		return err
	}
	if c.Template.ObstructionCheck && c.Ray == nil {
		return fmt.Errorf("trap %q: obstruction_check needs a raycaster", c.Template.ID)
	}
	if c.Template.Targeting == data.TargetArea && c.Query == nil {
		return fmt.Errorf("trap %q: area targeting needs a range query", c.Template.ID)
	}
	return nil
}

// Trap is the targeting and attack engine of one trap. Driven by Update once
// per tick and by movement notifications from its attack area.
type Trap struct {
	tmpl      *data.TrapTemplate
	area      *AttackArea
	placement PlacementState
	ray       Raycaster
	query     RangeQuery
	presenter Presenter
	log       *zap.Logger

	position geom.Vec
	origin   geom.Vec

	state          State
	step           step
	cooldown       time.Duration
	hitDelay       time.Duration
	waitedHitDelay bool
	obstructed     bool
	dt             time.Duration

	inRange []*enemy.Enemy // arrival order
	current *enemy.Enemy

	attacks int
}

func New(cfg Config) (*Trap, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	t := &Trap{
		tmpl:      cfg.Template,
		area:      cfg.Area,
		placement: cfg.Placement,
		ray:       cfg.Ray,
		query:     cfg.Query,
		presenter: cfg.Presenter,
		log:       log.With(zap.String("trap", cfg.Template.ID)),
	}
	t.area.Observe(t.onMovement)
	return t, nil
}

func (t *Trap) Template() *data.TrapTemplate { return t.tmpl }
func (t *Trap) State() State                 { return t.state }
func (t *Trap) Current() *enemy.Enemy        { return t.current }
func (t *Trap) Cooldown() time.Duration      { return t.cooldown }
func (t *Trap) Obstructed() bool             { return t.obstructed }
func (t *Trap) Position() geom.Vec           { return t.position }
func (t *Trap) Origin() geom.Vec             { return t.origin }
func (t *Trap) Attacks() int                 { return t.attacks }
func (t *Trap) Running() bool                { return t.step != stepIdle }

// InRange returns enemies in range in arrival order.
func (t *Trap) InRange() []*enemy.Enemy {
	return append([]*enemy.Enemy(nil), t.inRange...)
}

// SetPosition moves the trap; the attack origin follows at its template offset.
func (t *Trap) SetPosition(p geom.Vec) {
	t.position = p
	t.origin = p.Add(t.tmpl.AttackOrigin)
}

// Update advances timers and then the attack loop.
func (t *Trap) Update(dt time.Duration) {
	if t.cooldown > 0 {
		t.cooldown -= dt
		if t.cooldown < 0 {
			t.cooldown = 0
		}
	}
	if t.step == stepHitDelay {
		t.hitDelay -= dt
	}
	t.dt = dt
	t.advance()
	t.presenter.Update(t)
}

// ForceNormal drops out of the attack state, as when the trap is sold.
func (t *Trap) ForceNormal() {
	t.goNormal()
	t.step = stepIdle
}

// Reset clears all runtime state. Called when the trap returns to its pool.
func (t *Trap) Reset() {
	t.state = StateNormal
	t.step = stepIdle
	t.cooldown = 0
	t.hitDelay = 0
	t.waitedHitDelay = false
	t.obstructed = false
	t.inRange = t.inRange[:0]
	t.current = nil
	t.attacks = 0
	t.presenter.Reset()
}

func (t *Trap) onMovement(e *enemy.Enemy, inArea bool) {
	if inArea {
		t.inRange = append(t.inRange, e)
		if len(t.inRange) == 1 {
			t.current = e
			if t.state == StateNormal {
				t.startAttack()
			}
		}
		return
	}
	for i, o := range t.inRange {
		if o == e {
			t.inRange = append(t.inRange[:i], t.inRange[i+1:]...)
			break
		}
	}
	if t.current == e {
		t.retarget()
	}
}

// retarget picks the enemy closest to finishing the level, or stops the
// attack loop when nothing is left in range.
func (t *Trap) retarget() {
	t.pruneDead()
	if len(t.inRange) == 0 {
		t.current = nil
		t.stopAttack()
		return
	}
	t.current = t.selectTarget()
}

// selectTarget returns the enemy in range with the least remaining distance.
// Ties go to the earliest arrival.
func (t *Trap) selectTarget() *enemy.Enemy {
	var best *enemy.Enemy
	bestDist := 0.0
	for _, e := range t.inRange {
		d := e.RemainingDistance()
		if best == nil || d < bestDist {
			best, bestDist = e, d
		}
	}
	return best
}

func (t *Trap) pruneDead() {
	alive := t.inRange[:0]
	for _, e := range t.inRange {
		if !e.Dead() {
			alive = append(alive, e)
		}
	}
	t.inRange = alive
}

// startAttack begins the attack loop unless one is already running. The
// loop first waits out any cooldown still owed from a previous cycle.
func (t *Trap) startAttack() {
	if t.step != stepIdle {
		return
	}
	t.step = stepCooldown
}

// stopAttack ends the loop once no target remains. A trap caught in the
// attack state still owes its cooldown; a trap already waiting on a cooldown
// lets it finish and the loop exits by itself.
func (t *Trap) stopAttack() {
	switch {
	case t.state == StateAttack:
		t.goNormal()
		t.step = stepIdle
		if t.tmpl.AttackMode == data.AttackSingle {
			t.cooldown = t.tmpl.AttackCooldown
		}
	case t.step == stepCooldown:
	default:
		t.step = stepIdle
	}
}

func (t *Trap) advance() {
	for {
		switch t.step {
		case stepIdle:
			return

		case stepCooldown:
			if t.cooldown > 0 {
				return
			}
			if t.current == nil {
				t.step = stepIdle
				return
			}
			t.step = stepAcquire

		case stepAcquire:
			if t.current == nil {
				t.goNormal()
				t.step = stepIdle
				return
			}
			if t.placement != nil && !t.placement.Placed() {
				return
			}
			if t.tmpl.ObstructionCheck {
				t.checkObstruction()
				if t.obstructed {
					return
				}
			}
			if t.state != StateAttack {
				t.goAttack()
			}
			if t.tmpl.HitDelay > 0 && (t.tmpl.AttackMode == data.AttackSingle || !t.waitedHitDelay) {
				t.waitedHitDelay = true
				t.hitDelay = t.tmpl.HitDelay
				t.step = stepHitDelay
				return
			}
			t.fire()
			return

		case stepHitDelay:
			if t.hitDelay > 0 {
				return
			}
			if t.current == nil {
				t.stopAttack()
				return
			}
			t.fire()
			return
		}
	}
}

func (t *Trap) fire() {
	t.strike()
	t.attacks++
	if t.current == nil {
		// everything in range died from the hit; stopAttack already settled state and cooldown
		return
	}
	if t.tmpl.AttackMode == data.AttackContinuous {
		t.step = stepAcquire
		return
	}
	t.goNormal()
	t.cooldown = t.tmpl.AttackCooldown
	t.step = stepCooldown
}

// strike resolves damage against the targets of the current targeting mode.
// Continuous traps deal damage per second scaled by the tick length.
func (t *Trap) strike() {
	damage, areaDamage := t.tmpl.Damage, t.tmpl.AreaDamage
	if t.tmpl.AttackMode == data.AttackContinuous {
		s := t.dt.Seconds()
		damage *= s
		areaDamage *= s
	}
	t.pruneDead()
	primary := t.current

	switch t.tmpl.Targeting {
	case data.TargetSingle:
		t.hit(primary, damage)

	case data.TargetMultiple:
		targets := t.InRange()
		if !t.tmpl.HitAllInRange && len(targets) > t.tmpl.MaxTargets {
			targets = targets[:t.tmpl.MaxTargets]
		}
		for _, e := range targets {
			t.hit(e, damage)
		}

	case data.TargetArea:
		around := t.query.EnemiesWithin(primary.Position(), t.tmpl.AreaRange)
		t.hit(primary, damage)
		for _, e := range around {
			if e != primary {
				t.hit(e, areaDamage)
			}
		}
	}

	t.log.Debug("trap attacked",
		zap.Stringer("target", primary.ID),
		zap.Float64("damage", damage),
		zap.Int("in_range", len(t.inRange)),
	)
}

func (t *Trap) hit(e *enemy.Enemy, damage float64) {
	if e == nil || e.Dead() {
		return
	}
	e.RegisterAttack(damage, t.tmpl.DamageType)
}

// checkObstruction casts a ray at the current target. A clear shot is one
// whose first hit is an enemy. A ray that hits nothing keeps the last
// known state.
func (t *Trap) checkObstruction() {
	if t.current == nil {
		return
	}
	hit, ok := t.ray.Raycast(t.origin, t.current.Position())
	if !ok {
		t.log.Warn("obstruction ray hit nothing",
			zap.Float64("origin_x", t.origin.X),
			zap.Float64("origin_y", t.origin.Y),
			zap.Bool("obstructed", t.obstructed),
		)
		return
	}
	t.obstructed = hit.Layer != LayerEnemy
}

func (t *Trap) goAttack() {
	t.state = StateAttack
	t.waitedHitDelay = false
	t.presenter.Attack(t)
}

func (t *Trap) goNormal() {
	if t.state == StateNormal {
		return
	}
	t.state = StateNormal
	t.presenter.Normal(t)
}
