package trap

import (
	"fmt"

	"github.com/trapline/sim/internal/data"
	"github.com/trapline/sim/internal/geom"
)

// Presenter turns attack state changes into presentation intent. It never
// affects simulation outcomes.
type Presenter interface {
	Attack(t *Trap)
	Normal(t *Trap)
	Update(t *Trap)
	Reset()
}

// NewPresenter builds the presenter named by a trap template.
func NewPresenter(tmpl *data.TrapTemplate) (Presenter, error) {
	switch tmpl.Presenter {
	case data.PresenterPlain, "":
		return &PlainPresenter{continuous: tmpl.AttackMode == data.AttackContinuous}, nil
	case data.PresenterBeam:
		if tmpl.Targeting != data.TargetSingle {
			return nil, fmt.Errorf("trap %q: beam presenter requires single targeting", tmpl.ID)
		}
		return &BeamPresenter{}, nil
	}
	return nil, fmt.Errorf("trap %q: unknown presenter %q", tmpl.ID, tmpl.Presenter)
}

// PlainPresenter mirrors an attack animation: single attacks fire a trigger
// each time the trap enters the attack state, continuous attacks hold a
// looping flag while attacking.
type PlainPresenter struct {
	continuous bool
	Triggers   int
	Looping    bool
}

func (p *PlainPresenter) Attack(*Trap) {
	if p.continuous {
		p.Looping = true
		return
	}
	p.Triggers++
}

func (p *PlainPresenter) Normal(*Trap) {
	if p.continuous {
		p.Looping = false
	}
}

func (p *PlainPresenter) Update(*Trap) {}

func (p *PlainPresenter) Reset() {
	p.Triggers = 0
	p.Looping = false
}

// BeamPresenter draws a beam from the attack origin to the current target
// while the trap is attacking.
type BeamPresenter struct {
	Active bool
	From   geom.Vec
	To     geom.Vec
}

func (b *BeamPresenter) Attack(t *Trap) {
	b.Active = true
	b.From = t.Origin()
	if cur := t.Current(); cur != nil {
		b.To = cur.Position()
	}
}

func (b *BeamPresenter) Normal(*Trap) {
	b.Active = false
}

func (b *BeamPresenter) Update(t *Trap) {
	if t.State() != StateAttack {
		return
	}
	if cur := t.Current(); cur != nil {
		b.To = cur.Position()
	}
}

func (b *BeamPresenter) Reset() {
	*b = BeamPresenter{}
}
