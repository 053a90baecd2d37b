package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/trapline/sim/internal/geom"
)

// TargetingMode decides how many enemies an attack affects.
type TargetingMode string

const (
	TargetSingle   TargetingMode = "single"
	TargetMultiple TargetingMode = "multiple"
	TargetArea     TargetingMode = "area"
)

// AttackMode decides whether a trap fires discrete hits on a cooldown or
// deals damage every tick while it holds a target.
type AttackMode string

const (
	AttackSingle     AttackMode = "single"
	AttackContinuous AttackMode = "continuous"
)

type DamageType string

const (
	DamageNormal    DamageType = "normal"
	DamageFire      DamageType = "fire"
	DamageLightning DamageType = "lightning"
	DamagePoison    DamageType = "poison"
)

// Presenter names for trap presentation strategies.
const (
	PresenterPlain = "plain"
	PresenterBeam  = "beam"
)

// TrapTemplate holds static data for a trap type loaded from YAML.
type TrapTemplate struct {
	ID               string        `yaml:"id"`
	Damage           float64       `yaml:"damage"`
	AttackCooldown   time.Duration `yaml:"attack_cooldown"`
	Targeting        TargetingMode `yaml:"targeting"`
	AttackMode       AttackMode    `yaml:"attack_mode"`
	DamageType       DamageType    `yaml:"damage_type"`
	Range            float64       `yaml:"range"`
	HitAllInRange    bool          `yaml:"hit_all_in_range"` // when set, max_targets is ignored
	MaxTargets       int           `yaml:"max_targets"`
	AreaRange        float64       `yaml:"area_range"`
	AreaDamage       float64       `yaml:"area_damage"`
	ObstructionCheck bool          `yaml:"obstruction_check"`
	HitDelay         time.Duration `yaml:"hit_delay"`     // synced with the attack animation
	AttackOrigin     geom.Vec      `yaml:"attack_origin"` // offset from the trap position
	Cost             int           `yaml:"cost"`
	SellPrice        int           `yaml:"sell_price"`
	Presenter        string        `yaml:"presenter"`
}

func (t *TrapTemplate) UnmarshalYAML(n *yaml.Node) error {
	type raw TrapTemplate
	r := raw{
		Targeting:  TargetSingle,
		AttackMode: AttackSingle,
		DamageType: DamageNormal,
		Presenter:  PresenterPlain,
	}
	if err := n.Decode(&r); err != nil {
		return err
	}
	*t = TrapTemplate(r)
	return nil
}

// Validate checks every required field and rejects combinations the attack
// engine does not support.
func (t *TrapTemplate) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("trap: id is required")
	}
	switch t.Targeting {
	case TargetSingle, TargetMultiple, TargetArea:
	default:
		return fmt.Errorf("trap %q: unknown targeting %q", t.ID, t.Targeting)
	}
	switch t.AttackMode {
	case AttackSingle, AttackContinuous:
	default:
		return fmt.Errorf("trap %q: unknown attack_mode %q", t.ID, t.AttackMode)
	}
	switch t.DamageType {
	case DamageNormal, DamageFire, DamageLightning, DamagePoison:
	default:
		return fmt.Errorf("trap %q: unknown damage_type %q", t.ID, t.DamageType)
	}
	switch t.Presenter {
	case PresenterPlain, PresenterBeam:
	default:
		return fmt.Errorf("trap %q: unknown presenter %q", t.ID, t.Presenter)
	}
	switch {
	case t.Damage < 0:
		return fmt.Errorf("trap %q: damage must not be negative", t.ID)
	case t.Range <= 0:
		return fmt.Errorf("trap %q: range must be positive, got %v", t.ID, t.Range)
	case t.AttackCooldown < 0:
		return fmt.Errorf("trap %q: attack_cooldown must not be negative", t.ID)
	case t.HitDelay < 0:
		return fmt.Errorf("trap %q: hit_delay must not be negative", t.ID)
	case t.Targeting == TargetMultiple && !t.HitAllInRange && t.MaxTargets < 1:
		return fmt.Errorf("trap %q: max_targets must be at least 1 unless hit_all_in_range is set", t.ID)
	case t.Targeting == TargetArea && t.AreaRange <= 0:
		return fmt.Errorf("trap %q: area_range must be positive for area targeting", t.ID)
	case t.ObstructionCheck && t.Targeting != TargetSingle:
		return fmt.Errorf("trap %q: obstruction_check is only supported with single targeting", t.ID)
	case t.Presenter == PresenterBeam && t.Targeting != TargetSingle:
		return fmt.Errorf("trap %q: beam presenter requires single targeting", t.ID)
	case t.Cost < 0 || t.SellPrice < 0:
		return fmt.Errorf("trap %q: cost and sell_price must not be negative", t.ID)
	}
	return nil
}

type trapListFile struct {
	Traps []TrapTemplate `yaml:"traps"`
}

// TrapTable holds all trap templates indexed by ID.
type TrapTable struct {
	templates map[string]*TrapTemplate
	order     []string
}

// NewTrapTable validates templates and indexes them. Duplicate IDs are rejected.
func NewTrapTable(templates []TrapTemplate) (*TrapTable, error) {
	t := &TrapTable{templates: make(map[string]*TrapTemplate, len(templates))}
	for i := range templates {
		tt := &templates[i]
		if err := tt.Validate(); err != nil {
			return nil, err
		}
		if _, dup := t.templates[tt.ID]; dup {
			return nil, fmt.Errorf("trap %q: duplicate id", tt.ID)
		}
		t.templates[tt.ID] = tt
		t.order = append(t.order, tt.ID)
	}
	return t, nil
}

// LoadTrapTable loads trap templates from a YAML file.
func LoadTrapTable(path string) (*TrapTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trap_list: %w", err)
	}
	var f trapListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse trap_list: %w", err)
	}
	return NewTrapTable(f.Traps)
}

// Get returns a trap template by ID, or nil if not found.
func (t *TrapTable) Get(id string) *TrapTemplate {
	return t.templates[id]
}

// IDs returns template IDs in file order.
func (t *TrapTable) IDs() []string {
	return t.order
}

// Count returns the number of loaded templates.
func (t *TrapTable) Count() int {
	return len(t.templates)
}
