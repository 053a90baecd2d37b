package trap

import (
	"go.uber.org/zap"

	"github.com/trapline/sim/internal/core/ecs"
	"github.com/trapline/sim/internal/data"
	"github.com/trapline/sim/internal/geom"
)

// PlacementContext is the activation context handed to the pool when a trap
// is taken out for placement.
type PlacementContext struct {
	Position geom.Vec
}

// Deps are the collaborators shared by all trap instances.
type Deps struct {
	Ray     Raycaster
	Query   RangeQuery
	Log     *zap.Logger
	Reclaim func(*Instance)
}

// Instance is a pooled trap: a placeable body with an attack capability and
// the attack area that feeds it.
type Instance struct {
	ID        ecs.EntityID
	Template  *data.TrapTemplate
	Placeable *Placeable
	Trap      *Trap
	Area      *AttackArea
	Presenter Presenter

	active  bool
	reclaim func(*Instance)
}

// NewInstance wires a trap instance together and validates its template.
func NewInstance(id ecs.EntityID, tmpl *data.TrapTemplate, deps Deps) (*Instance, error) {
	presenter, err := NewPresenter(tmpl)
	if err != nil {
		return nil, err
	}
	placeable := NewPlaceable(tmpl.Cost, tmpl.SellPrice)
	area := NewAttackArea()
	t, err := New(Config{
		Template:  tmpl,
		Area:      area,
		Placement: placeable,
		Ray:       deps.Ray,
		Query:     deps.Query,
		Presenter: presenter,
		Log:       deps.Log,
	})
	if err != nil {
		return nil, err
	}
	return &Instance{
		ID:        id,
		Template:  tmpl,
		Placeable: placeable,
		Trap:      t,
		Area:      area,
		Presenter: presenter,
		reclaim:   deps.Reclaim,
	}, nil
}

func (i *Instance) Active() bool       { return i.active }
func (i *Instance) Position() geom.Vec { return i.Placeable.Position() }
func (i *Instance) Range() float64     { return i.Template.Range }

// Move repositions an unplaced trap together with its attack origin.
func (i *Instance) Move(pos geom.Vec) {
	if i.Placeable.Placed() {
		return
	}
	i.Placeable.Move(pos)
	i.Trap.SetPosition(pos)
}

// Place pays for and places the trap.
func (i *Instance) Place(w Wallet) error {
	return i.Placeable.Place(w)
}

// Sell refunds the trap, drops it out of the attack state and returns it to
// its pool.
func (i *Instance) Sell(w Wallet) bool {
	if !i.Placeable.Sell(w) {
		return false
	}
	i.Trap.ForceNormal()
	if i.reclaim != nil {
		i.reclaim(i)
	}
	return true
}

func (i *Instance) PreActivation(ctx any) {
	if pc, ok := ctx.(PlacementContext); ok {
		i.Move(pc.Position)
	}
}

func (i *Instance) PostActivation(any) {}

func (i *Instance) PreDeactivation() {
	i.Trap.ForceNormal()
}

// PostDeactivation forgets tracked enemies without exit notifications and
// resets the attack engine and placement.
func (i *Instance) PostDeactivation() {
	i.Area.Clear()
	i.Trap.Reset()
	i.Placeable.Reset()
}

func (i *Instance) SetActive(active bool) {
	i.active = active
}
