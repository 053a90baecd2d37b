package trap

import (
	"errors"

	"github.com/trapline/sim/internal/geom"
)

var (
	ErrAlreadyPlaced    = errors.New("already placed")
	ErrInvalidPlacement = errors.New("placement is blocked")
	ErrNotEnoughGold    = errors.New("not enough gold")
)

// Wallet pays for placements and receives sell refunds.
type Wallet interface {
	Spend(amount int) bool
	Earn(amount int)
}

// Placeable is the capability of being positioned in the world by the
// player. A placeable is valid while it touches exactly one object (the
// ground it stands on) and no other placeable.
type Placeable struct {
	Cost      int
	SellPrice int

	position           geom.Vec
	placed             bool
	collidedPlaceables int
	collidedObjects    int
}

func NewPlaceable(cost, sellPrice int) *Placeable {
	return &Placeable{Cost: cost, SellPrice: sellPrice}
}

func (p *Placeable) Placed() bool       { return p.placed }
func (p *Placeable) Position() geom.Vec { return p.position }

// CanBePlaced reports whether the current collisions allow placement.
func (p *Placeable) CanBePlaced() bool {
	return p.collidedPlaceables == 0 && p.collidedObjects == 1
}

// Move repositions an unplaced placeable.
func (p *Placeable) Move(pos geom.Vec) {
	if p.placed {
		return
	}
	p.position = pos
}

// TouchPlaceable records another placeable entering (+1) or leaving (-1)
// the footprint. Ignored once placed.
func (p *Placeable) TouchPlaceable(delta int) {
	if p.placed {
		return
	}
	p.collidedPlaceables += delta
}

// TouchObject records a non-placeable object entering or leaving the footprint.
func (p *Placeable) TouchObject(delta int) {
	if p.placed {
		return
	}
	p.collidedObjects += delta
}

// Place pays the cost and fixes the placeable where it stands. Refusals for
// blocked placement or missing gold leave everything unchanged.
func (p *Placeable) Place(w Wallet) error {
	switch {
	case p.placed:
		return ErrAlreadyPlaced
	case !p.CanBePlaced():
		return ErrInvalidPlacement
	case !w.Spend(p.Cost):
		return ErrNotEnoughGold
	}
	p.placed = true
	return nil
}

// Sell refunds the sell price. Returns false if the placeable was never placed.
func (p *Placeable) Sell(w Wallet) bool {
	if !p.placed {
		return false
	}
	p.placed = false
	w.Earn(p.SellPrice)
	return true
}

func (p *Placeable) Reset() {
	p.placed = false
	p.collidedPlaceables = 0
	p.collidedObjects = 0
}
