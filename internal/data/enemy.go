package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnemyTemplate holds static data for an enemy archetype loaded from YAML.
type EnemyTemplate struct {
	ID              string        `yaml:"id"`
	MaxHealth       float64       `yaml:"max_health"`
	Armor           float64       `yaml:"armor"`
	Speed           float64       `yaml:"movement_speed"`
	EnergyDrain     int           `yaml:"energy_drain"`
	GoldReward      int           `yaml:"gold_reward"`
	BaseExperience  int           `yaml:"base_experience"`
	Level           int           `yaml:"level"`
	Radius          float64       `yaml:"radius"`            // collision radius for raycasts and range queries
	MinAttackedTime time.Duration `yaml:"min_attacked_time"` // debounce window of the attacked state
	DeathEffect     time.Duration `yaml:"death_effect"`      // death VFX duration before the slot is freed
}

func (t *EnemyTemplate) UnmarshalYAML(n *yaml.Node) error {
	type raw EnemyTemplate
	r := raw{
		Level:           1,
		Radius:          0.5,
		MinAttackedTime: 100 * time.Millisecond,
	}
	if err := n.Decode(&r); err != nil {
		return err
	}
	*t = EnemyTemplate(r)
	return nil
}

// Validate checks every required field and names the first offender.
func (t *EnemyTemplate) Validate() error {
	switch {
	case t.ID == "":
		return fmt.Errorf("enemy: id is required")
	case t.MaxHealth <= 0:
		return fmt.Errorf("enemy %q: max_health must be positive, got %v", t.ID, t.MaxHealth)
	case t.Speed < 0:
		return fmt.Errorf("enemy %q: movement_speed must not be negative, got %v", t.ID, t.Speed)
	case t.EnergyDrain < 0:
		return fmt.Errorf("enemy %q: energy_drain must not be negative, got %d", t.ID, t.EnergyDrain)
	case t.Level < 1:
		return fmt.Errorf("enemy %q: level must be at least 1, got %d", t.ID, t.Level)
	case t.Radius <= 0:
		return fmt.Errorf("enemy %q: radius must be positive, got %v", t.ID, t.Radius)
	case t.MinAttackedTime < 0:
		return fmt.Errorf("enemy %q: min_attacked_time must not be negative", t.ID)
	case t.DeathEffect < 0:
		return fmt.Errorf("enemy %q: death_effect must not be negative", t.ID)
	}
	return nil
}

type enemyListFile struct {
	Enemies []EnemyTemplate `yaml:"enemies"`
}

// EnemyTable holds all enemy templates indexed by ID.
type EnemyTable struct {
	templates map[string]*EnemyTemplate
	order     []string
}

// NewEnemyTable validates templates and indexes them. Duplicate IDs are rejected.
func NewEnemyTable(templates []EnemyTemplate) (*EnemyTable, error) {
	t := &EnemyTable{templates: make(map[string]*EnemyTemplate, len(templates))}
	for i := range templates {
		e := &templates[i]
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if _, dup := t.templates[e.ID]; dup {
			return nil, fmt.Errorf("enemy %q: duplicate id", e.ID)
		}
		t.templates[e.ID] = e
		t.order = append(t.order, e.ID)
	}
	return t, nil
}

// LoadEnemyTable loads enemy templates from a YAML file.
func LoadEnemyTable(path string) (*EnemyTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read enemy_list: %w", err)
	}
	var f enemyListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse enemy_list: %w", err)
	}
	return NewEnemyTable(f.Enemies)
}

// Get returns an enemy template by ID, or nil if not found.
func (t *EnemyTable) Get(id string) *EnemyTemplate {
	return t.templates[id]
}

// IDs returns template IDs in file order.
func (t *EnemyTable) IDs() []string {
	return t.order
}

// Count returns the number of loaded templates.
func (t *EnemyTable) Count() int {
	return len(t.templates)
}
