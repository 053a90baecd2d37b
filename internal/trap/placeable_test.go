package trap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trapline/sim/internal/core/ecs"
	"github.com/trapline/sim/internal/data"
	"github.com/trapline/sim/internal/geom"
)

func ecsID(n uint64) ecs.EntityID { return ecs.EntityID(n) }

type purse struct{ gold int }

func (p *purse) Spend(amount int) bool {
	if amount > p.gold {
		return false
	}
	p.gold -= amount
	return true
}

func (p *purse) Earn(amount int) { p.gold += amount }

func TestPlacementValidity(t *testing.T) {
	p := NewPlaceable(50, 25)
	assert.False(t, p.CanBePlaced(), "must stand on something")

	p.TouchObject(1)
	assert.True(t, p.CanBePlaced())

	p.TouchPlaceable(1)
	assert.False(t, p.CanBePlaced())
	p.TouchPlaceable(-1)

	p.TouchObject(1)
	assert.False(t, p.CanBePlaced(), "straddling two objects")
}

func TestPlaceAndSell(t *testing.T) {
	w := &purse{gold: 40}
	p := NewPlaceable(50, 25)
	p.TouchObject(1)

	assert.ErrorIs(t, p.Place(w), ErrNotEnoughGold)
	assert.False(t, p.Placed())
	assert.Equal(t, 40, w.gold)

	w.gold = 60
	require.NoError(t, p.Place(w))
	assert.True(t, p.Placed())
	assert.Equal(t, 10, w.gold)
	assert.ErrorIs(t, p.Place(w), ErrAlreadyPlaced)

	p.TouchPlaceable(1)
	assert.True(t, p.CanBePlaced(), "collisions are ignored once placed")

	assert.True(t, p.Sell(w))
	assert.Equal(t, 35, w.gold)
	assert.False(t, p.Sell(w))
}

func TestBlockedPlacement(t *testing.T) {
	w := &purse{gold: 100}
	p := NewPlaceable(50, 25)
	assert.ErrorIs(t, p.Place(w), ErrInvalidPlacement)
	assert.Equal(t, 100, w.gold)
}

func TestInstanceSellReclaims(t *testing.T) {
	tmpl := &data.TrapTemplate{
		ID: "spike", Damage: 10, Range: 2, Cost: 30, SellPrice: 15,
		Targeting: data.TargetSingle, AttackMode: data.AttackSingle,
		DamageType: data.DamageNormal, Presenter: data.PresenterPlain,
	}
	var reclaimed []*Instance
	inst, err := NewInstance(7, tmpl, Deps{Log: zap.NewNop(), Reclaim: func(i *Instance) { reclaimed = append(reclaimed, i) }})
	require.NoError(t, err)

	inst.PreActivation(PlacementContext{Position: geom.V(3, 4)})
	inst.SetActive(true)
	assert.Equal(t, geom.V(3, 4), inst.Position())
	assert.Equal(t, geom.V(3, 4), inst.Trap.Position())

	w := &purse{gold: 100}
	inst.Placeable.TouchObject(1)
	require.NoError(t, inst.Place(w))
	assert.Equal(t, 70, w.gold)

	inst.Move(geom.V(9, 9))
	assert.Equal(t, geom.V(3, 4), inst.Position(), "placed traps stay put")

	assert.True(t, inst.Sell(w))
	assert.Equal(t, 85, w.gold)
	assert.Equal(t, []*Instance{inst}, reclaimed)

	inst.PreDeactivation()
	inst.SetActive(false)
	inst.PostDeactivation()
	assert.False(t, inst.Placeable.Placed())
	assert.False(t, inst.Placeable.CanBePlaced())
}
