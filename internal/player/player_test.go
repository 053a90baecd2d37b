package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trapline/sim/internal/core/event"
	"github.com/trapline/sim/internal/data"
)

const defaultFormula = "int(EnemyLevel / PlayerLevel) * BaseExperience"

func newPlayer(t *testing.T, level, xp int) (*Player, *event.Bus) {
	t.Helper()
	f, err := CompileFormula(defaultFormula)
	require.NoError(t, err)
	bus := event.NewBus()
	return New(level, xp, f, bus, zap.NewNop()), bus
}

func TestNextLevelExperience(t *testing.T) {
	assert.Equal(t, 1000, NextLevelExperience(1))
	assert.Equal(t, 3000, NextLevelExperience(2))
	assert.Equal(t, 6000, NextLevelExperience(3))
}

func TestFormulaIntegerDivision(t *testing.T) {
	f, err := CompileFormula(defaultFormula)
	require.NoError(t, err)

	cases := []struct {
		enemy, player, base, want int
	}{
		{1, 2, 100, 0},
		{4, 2, 100, 200},
		{5, 2, 100, 200},
		{3, 1, 20, 60},
	}
	for _, tc := range cases {
		got, err := f.Eval(RewardEnv{EnemyLevel: tc.enemy, PlayerLevel: tc.player, BaseExperience: tc.base})
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "enemy %d player %d", tc.enemy, tc.player)
	}
}

func TestFormulaRejectsBadSource(t *testing.T) {
	_, err := CompileFormula("EnemyLevel +")
	require.Error(t, err)

	_, err = CompileFormula(`"gold"`)
	require.Error(t, err, "must evaluate to an int")

	_, err = CompileFormula("Unknown * 2")
	require.Error(t, err)
}

func TestGoldSpendAndEarn(t *testing.T) {
	p, bus := newPlayer(t, 2, 0)
	var changes []int
	event.Subscribe(bus, func(e event.GoldChanged) { changes = append(changes, e.Gold) })

	p.SetGold(100)
	assert.False(t, p.Spend(150))
	assert.True(t, p.Spend(40))
	p.Earn(15)
	assert.Equal(t, 75, p.Gold())

	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Equal(t, []int{100, 60, 75}, changes)
}

func TestLevelUp(t *testing.T) {
	p, bus := newPlayer(t, 2, 1325)
	var levels []int
	event.Subscribe(bus, func(e event.PlayerLeveledUp) { levels = append(levels, e.Level) })

	p.GainExperience(-50)
	assert.Equal(t, 1325, p.Experience())

	p.GainExperience(1675) // 3000: leaves level 2
	assert.Equal(t, 3, p.Level())

	p.GainExperience(7000) // 10000: past 6000 and 10000
	assert.Equal(t, 5, p.Level())

	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Equal(t, []int{3, 4, 5}, levels)
}

func TestReward(t *testing.T) {
	p, _ := newPlayer(t, 2, 0)
	p.Reward(&data.EnemyTemplate{ID: "brute", Level: 4, GoldReward: 12, BaseExperience: 50})
	assert.Equal(t, 12, p.Gold())
	assert.Equal(t, 100, p.Experience())

	p.Reward(&data.EnemyTemplate{ID: "grunt", Level: 1, GoldReward: 3, BaseExperience: 50})
	assert.Equal(t, 15, p.Gold())
	assert.Equal(t, 100, p.Experience(), "lower level enemies give no experience")
}
