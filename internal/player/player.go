// Package player holds the player's wallet: gold, experience and level.
package player

import (
	"go.uber.org/zap"

	"github.com/trapline/sim/internal/core/event"
	"github.com/trapline/sim/internal/data"
)

// NextLevelExperience is the experience total needed to leave level.
func NextLevelExperience(level int) int {
	return (level + 1) * level * 500
}

// Player is the single player of a run. Not safe for concurrent use.
type Player struct {
	gold       int
	experience int
	level      int

	formula *Formula
	bus     *event.Bus
	log     *zap.Logger
}

func New(level, experience int, formula *Formula, bus *event.Bus, log *zap.Logger) *Player {
	return &Player{
		level:      level,
		experience: experience,
		formula:    formula,
		bus:        bus,
		log:        log,
	}
}

func (p *Player) Gold() int       { return p.gold }
func (p *Player) Experience() int { return p.experience }
func (p *Player) Level() int      { return p.level }

// SetGold overwrites the gold balance, as when a level (re)starts.
func (p *Player) SetGold(gold int) {
	p.gold = gold
	event.Emit(p.bus, event.GoldChanged{Gold: p.gold})
}

// Spend takes amount from the balance. Returns false, leaving the balance
// untouched, when there is not enough gold.
func (p *Player) Spend(amount int) bool {
	if amount > p.gold {
		return false
	}
	p.gold -= amount
	event.Emit(p.bus, event.GoldChanged{Gold: p.gold})
	return true
}

func (p *Player) Earn(amount int) {
	if amount == 0 {
		return
	}
	p.gold += amount
	event.Emit(p.bus, event.GoldChanged{Gold: p.gold})
}

// GainExperience adds xp and levels up as many times as it covers.
// Negative amounts are ignored.
func (p *Player) GainExperience(xp int) {
	if xp <= 0 {
		return
	}
	p.experience += xp
	for p.experience >= NextLevelExperience(p.level) {
		p.level++
		p.log.Info("player leveled up", zap.Int("level", p.level), zap.Int("experience", p.experience))
		event.Emit(p.bus, event.PlayerLeveledUp{Level: p.level})
	}
}

// Reward credits the gold and experience for killing an enemy.
func (p *Player) Reward(tmpl *data.EnemyTemplate) {
	p.Earn(tmpl.GoldReward)
	xp, err := p.formula.Eval(RewardEnv{
		EnemyLevel:     tmpl.Level,
		PlayerLevel:    p.level,
		BaseExperience: tmpl.BaseExperience,
		GoldReward:     tmpl.GoldReward,
	})
	if err != nil {
		p.log.Error("experience reward", zap.String("enemy", tmpl.ID), zap.Error(err))
		return
	}
	p.GainExperience(xp)
}
