package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// WaveElement holds one enemy archetype's spawn parameters within a wave.
type WaveElement struct {
	Enemy      string        `yaml:"enemy"`
	MinCount   int           `yaml:"min_count"`
	MaxCount   int           `yaml:"max_count"`
	Chance     float64       `yaml:"chance"`      // probability [0,1] that the batch spawns at all
	ExtraDelay time.Duration `yaml:"extra_delay"` // on top of the spawn rate, e.g. for a boss announcement

	Template *EnemyTemplate `yaml:"-"`
}

func (e *WaveElement) UnmarshalYAML(n *yaml.Node) error {
	type raw WaveElement
	r := raw{Chance: 1}
	if err := n.Decode(&r); err != nil {
		return err
	}
	*e = WaveElement(r)
	return nil
}

// Wave is a timed batch of enemy spawns.
type Wave struct {
	ID         string        `yaml:"id"`
	StartDelay time.Duration `yaml:"start_delay"`
	EndDelay   time.Duration `yaml:"end_delay"`
	SpawnRate  time.Duration `yaml:"spawn_rate"` // time between individual spawns
	Elements   []WaveElement `yaml:"elements"`
}

// Validate checks the wave and resolves element enemies against the table.
func (w *Wave) Validate(enemies *EnemyTable) error {
	if w.ID == "" {
		return fmt.Errorf("wave: id is required")
	}
	if w.StartDelay < 0 || w.EndDelay < 0 || w.SpawnRate < 0 {
		return fmt.Errorf("wave %q: delays and spawn_rate must not be negative", w.ID)
	}
	if len(w.Elements) == 0 {
		return fmt.Errorf("wave %q: at least one element is required", w.ID)
	}
	for i := range w.Elements {
		el := &w.Elements[i]
		switch {
		case el.Enemy == "":
			return fmt.Errorf("wave %q: element %d: enemy is required", w.ID, i)
		case el.MinCount < 1:
			return fmt.Errorf("wave %q: element %d: min_count must be at least 1, got %d", w.ID, i, el.MinCount)
		case el.MaxCount < el.MinCount:
			return fmt.Errorf("wave %q: element %d: max_count %d is below min_count %d", w.ID, i, el.MaxCount, el.MinCount)
		case el.Chance < 0 || el.Chance > 1:
			return fmt.Errorf("wave %q: element %d: chance must be within [0,1], got %v", w.ID, i, el.Chance)
		case el.ExtraDelay < 0:
			return fmt.Errorf("wave %q: element %d: extra_delay must not be negative", w.ID, i)
		}
		if enemies != nil {
			el.Template = enemies.Get(el.Enemy)
			if el.Template == nil {
				return fmt.Errorf("wave %q: element %d: unknown enemy %q", w.ID, i, el.Enemy)
			}
		}
	}
	return nil
}

type waveListFile struct {
	Waves []Wave `yaml:"waves"`
}

// WaveTable holds all waves indexed by ID.
type WaveTable struct {
	waves map[string]*Wave
}

// NewWaveTable validates waves against the enemy table and indexes them.
func NewWaveTable(waves []Wave, enemies *EnemyTable) (*WaveTable, error) {
	t := &WaveTable{waves: make(map[string]*Wave, len(waves))}
	for i := range waves {
		w := &waves[i]
		if err := w.Validate(enemies); err != nil {
			return nil, err
		}
		if _, dup := t.waves[w.ID]; dup {
			return nil, fmt.Errorf("wave %q: duplicate id", w.ID)
		}
		t.waves[w.ID] = w
	}
	return t, nil
}

// LoadWaveTable loads waves from a YAML file.
func LoadWaveTable(path string, enemies *EnemyTable) (*WaveTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wave_list: %w", err)
	}
	var f waveListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse wave_list: %w", err)
	}
	return NewWaveTable(f.Waves, enemies)
}

// Get returns a wave by ID, or nil if not found.
func (t *WaveTable) Get(id string) *Wave {
	return t.waves[id]
}

// Count returns the number of loaded waves.
func (t *WaveTable) Count() int {
	return len(t.waves)
}
