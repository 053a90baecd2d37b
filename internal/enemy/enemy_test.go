package enemy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trapline/sim/internal/core/event"
	"github.com/trapline/sim/internal/data"
	"github.com/trapline/sim/internal/geom"
)

type fakeNav struct {
	pos       geom.Vec
	dest      geom.Vec
	speed     float64
	enabled   bool
	remaining float64
}

func (n *fakeNav) SetDestination(p geom.Vec)  { n.dest = p }
func (n *fakeNav) RemainingDistance() float64 { return n.remaining }
func (n *fakeNav) SetSpeed(speed float64)     { n.speed = speed }
func (n *fakeNav) SetEnabled(enabled bool)    { n.enabled = enabled }
func (n *fakeNav) Warp(p geom.Vec)            { n.pos = p }
func (n *fakeNav) Position() geom.Vec         { return n.pos }

type halfResolver struct{}

func (halfResolver) Resolve(_ *Enemy, damage float64, _ data.DamageType) float64 { return damage / 2 }

const tick = 20 * time.Millisecond

func testTemplate() *data.EnemyTemplate {
	return &data.EnemyTemplate{
		ID:              "grunt",
		MaxHealth:       100,
		Speed:           2,
		EnergyDrain:     10,
		Level:           1,
		Radius:          0.5,
		MinAttackedTime: 100 * time.Millisecond,
		DeathEffect:     60 * time.Millisecond,
	}
}

type harness struct {
	bus       *event.Bus
	nav       *fakeNav
	enemy     *Enemy
	died      []Died
	reclaimed int
}

func newHarness(t *testing.T, resolver DamageResolver) *harness {
	t.Helper()
	h := &harness{bus: event.NewBus(), nav: &fakeNav{}}
	event.Subscribe(h.bus, func(d Died) { h.died = append(h.died, d) })
	h.enemy = New(1, testTemplate(), Deps{
		Bus:      h.bus,
		Nav:      h.nav,
		Resolver: resolver,
		Reclaim:  func(*Enemy) { h.reclaimed++ },
	})
	ctx := SpawnContext{Position: geom.V(1, 2), Destination: geom.V(10, 2)}
	h.enemy.PreActivation(ctx)
	h.enemy.SetActive(true)
	h.enemy.PostActivation(ctx)
	return h
}

func TestActivation(t *testing.T) {
	h := newHarness(t, nil)
	assert.Equal(t, geom.V(1, 2), h.nav.pos)
	assert.Equal(t, geom.V(10, 2), h.nav.dest)
	assert.True(t, h.nav.enabled)
	assert.Equal(t, 2.0, h.nav.speed)
	assert.True(t, h.enemy.Alive())
	assert.Equal(t, StateNormal, h.enemy.State())
}

func TestDamageKills(t *testing.T) {
	h := newHarness(t, nil)

	h.enemy.RegisterAttack(60, data.DamageFire)
	assert.Equal(t, 40.0, h.enemy.Health())
	assert.False(t, h.enemy.Dead())

	h.enemy.RegisterAttack(40, data.DamageNormal)
	assert.True(t, h.enemy.Dead())
	assert.Equal(t, StateDead, h.enemy.State())
	assert.False(t, h.enemy.Visible())
	assert.False(t, h.nav.enabled)
	require.Len(t, h.died, 1)
	assert.False(t, h.died[0].HasFinishedLevel)
	assert.Same(t, h.enemy, h.died[0].Enemy)
}

func TestResolverScalesDamage(t *testing.T) {
	h := newHarness(t, halfResolver{})
	h.enemy.TakeDamage(50, data.DamageNormal)
	assert.Equal(t, 75.0, h.enemy.Health())
}

func TestDieIsIdempotent(t *testing.T) {
	h := newHarness(t, nil)

	h.enemy.Die(false)
	h.enemy.Die(false)
	h.enemy.Die(true)
	h.enemy.RegisterAttack(1000, data.DamageNormal)
	require.Len(t, h.died, 1)

	for i := 0; i < 10; i++ {
		h.enemy.Update(tick)
	}
	assert.Equal(t, 1, h.reclaimed)
}

func TestDeathEffectDelaysReclaim(t *testing.T) {
	h := newHarness(t, nil)
	h.enemy.Die(false)

	h.enemy.Update(tick)
	h.enemy.Update(tick)
	assert.Equal(t, 0, h.reclaimed)
	h.enemy.Update(tick)
	assert.Equal(t, 1, h.reclaimed)
}

func TestFinishedLevelReclaimsNextUpdate(t *testing.T) {
	h := newHarness(t, nil)
	h.enemy.Die(true)

	require.Len(t, h.died, 1)
	assert.True(t, h.died[0].HasFinishedLevel)
	assert.True(t, h.enemy.Visible(), "no death effect when the level end is reached")
	assert.Equal(t, 0, h.reclaimed)

	h.enemy.Update(tick)
	assert.Equal(t, 1, h.reclaimed)
}

func TestAttackedDebounce(t *testing.T) {
	h := newHarness(t, nil)

	h.enemy.RegisterAttack(1, data.DamageNormal)
	h.enemy.Update(tick)
	assert.Equal(t, StateAttacked, h.enemy.State())
	assert.InDelta(t, 2*AttackedSpeedFactor, h.nav.speed, 1e-9)

	// A second hit inside the window re-arms it instead of flickering.
	h.enemy.Update(tick)
	h.enemy.RegisterAttack(1, data.DamageNormal)
	for i := 0; i < 5; i++ {
		h.enemy.Update(tick)
		assert.Equal(t, StateAttacked, h.enemy.State(), "update %d", i)
	}

	h.enemy.Update(tick)
	assert.Equal(t, StateAttacked, h.enemy.State(), "timer reached zero but is not yet negative")
	h.enemy.Update(tick)
	assert.Equal(t, StateNormal, h.enemy.State())
	assert.Equal(t, 2.0, h.nav.speed)
}

func TestResetOnReclaim(t *testing.T) {
	h := newHarness(t, nil)
	h.enemy.RegisterAttack(1, data.DamageNormal)
	h.enemy.Update(tick)
	h.enemy.RegisterAttack(500, data.DamageNormal)
	require.True(t, h.enemy.Dead())

	h.enemy.PreDeactivation()
	h.enemy.SetActive(false)
	h.enemy.PostDeactivation()

	assert.Equal(t, StateNormal, h.enemy.State())
	assert.Equal(t, 100.0, h.enemy.Health())
	assert.Equal(t, time.Duration(-1), h.enemy.AttackedTimer())
	assert.True(t, h.enemy.Visible())
	assert.False(t, h.enemy.Dead())
	assert.False(t, h.enemy.Alive(), "inactive until the pool hands it out again")

	h.enemy.PreActivation(SpawnContext{})
	h.enemy.SetActive(true)
	assert.True(t, h.enemy.Alive())
}
