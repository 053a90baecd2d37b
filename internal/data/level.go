package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/trapline/sim/internal/geom"
)

// LevelElement pairs a wave with how many times it plays in a row.
type LevelElement struct {
	Wave  string `yaml:"wave"`
	Count int    `yaml:"count"`

	Def *Wave `yaml:"-"`
}

func (e *LevelElement) UnmarshalYAML(n *yaml.Node) error {
	type raw LevelElement
	r := raw{Count: 1}
	if err := n.Decode(&r); err != nil {
		return err
	}
	*e = LevelElement(r)
	return nil
}

// TrapPlacement is a trap placed before the level starts.
type TrapPlacement struct {
	Trap     string   `yaml:"trap"`
	Position geom.Vec `yaml:"position"`
}

// Level is the authored description of one playable level.
type Level struct {
	ID          string          `yaml:"id"`
	StartEnergy int             `yaml:"start_energy"`
	StartGold   int             `yaml:"start_gold"`
	Route       []geom.Vec      `yaml:"route"` // spawn point first, end point last
	Walls       []geom.Segment  `yaml:"walls"`
	Elements    []LevelElement  `yaml:"elements"`
	Traps       []TrapPlacement `yaml:"traps"`
}

// TotalWaveCount is the sum of all elements' repeat counts.
func (l *Level) TotalWaveCount() int {
	total := 0
	for _, el := range l.Elements {
		total += el.Count
	}
	return total
}

// SpawnPoint is the first route point.
func (l *Level) SpawnPoint() geom.Vec {
	return l.Route[0]
}

// EndPoint is the last route point; enemies reaching it have finished the level.
func (l *Level) EndPoint() geom.Vec {
	return l.Route[len(l.Route)-1]
}

// Validate checks the level and resolves its wave and trap references.
func (l *Level) Validate(waves *WaveTable, traps *TrapTable) error {
	switch {
	case l.ID == "":
		return fmt.Errorf("level: id is required")
	case l.StartEnergy <= 0:
		return fmt.Errorf("level %q: start_energy must be positive, got %d", l.ID, l.StartEnergy)
	case l.StartGold < 0:
		return fmt.Errorf("level %q: start_gold must not be negative", l.ID)
	case len(l.Route) < 2:
		return fmt.Errorf("level %q: route needs at least a spawn point and an end point", l.ID)
	case len(l.Elements) == 0:
		return fmt.Errorf("level %q: at least one element is required", l.ID)
	}
	for i := range l.Elements {
		el := &l.Elements[i]
		if el.Count < 1 {
			return fmt.Errorf("level %q: element %d: count must be at least 1, got %d", l.ID, i, el.Count)
		}
		if waves != nil {
			el.Def = waves.Get(el.Wave)
			if el.Def == nil {
				return fmt.Errorf("level %q: element %d: unknown wave %q", l.ID, i, el.Wave)
			}
		}
	}
	for i, p := range l.Traps {
		if traps != nil && traps.Get(p.Trap) == nil {
			return fmt.Errorf("level %q: trap placement %d: unknown trap %q", l.ID, i, p.Trap)
		}
	}
	return nil
}

type levelListFile struct {
	Levels []Level `yaml:"levels"`
}

// LevelTable holds all levels indexed by ID.
type LevelTable struct {
	levels map[string]*Level
}

// NewLevelTable validates levels and indexes them.
func NewLevelTable(levels []Level, waves *WaveTable, traps *TrapTable) (*LevelTable, error) {
	t := &LevelTable{levels: make(map[string]*Level, len(levels))}
	for i := range levels {
		l := &levels[i]
		if err := l.Validate(waves, traps); err != nil {
			return nil, err
		}
		if _, dup := t.levels[l.ID]; dup {
			return nil, fmt.Errorf("level %q: duplicate id", l.ID)
		}
		t.levels[l.ID] = l
	}
	return t, nil
}

// LoadLevelTable loads levels from a YAML file.
func LoadLevelTable(path string, waves *WaveTable, traps *TrapTable) (*LevelTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level_list: %w", err)
	}
	var f levelListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse level_list: %w", err)
	}
	return NewLevelTable(f.Levels, waves, traps)
}

// Get returns a level by ID, or nil if not found.
func (t *LevelTable) Get(id string) *Level {
	return t.levels[id]
}

// Count returns the number of loaded levels.
func (t *LevelTable) Count() int {
	return len(t.levels)
}
