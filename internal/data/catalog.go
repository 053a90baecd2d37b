package data

import (
	"fmt"
	"path/filepath"
)

// Catalog bundles every authored table. It is read-only once loaded.
type Catalog struct {
	Enemies *EnemyTable
	Traps   *TrapTable
	Waves   *WaveTable
	Levels  *LevelTable
}

// LoadCatalog loads enemy_list.yaml, trap_list.yaml, wave_list.yaml and
// level_list.yaml from dir, resolving cross references.
func LoadCatalog(dir string) (*Catalog, error) {
	enemies, err := LoadEnemyTable(filepath.Join(dir, "enemy_list.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load enemy table: %w", err)
	}
	traps, err := LoadTrapTable(filepath.Join(dir, "trap_list.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load trap table: %w", err)
	}
	waves, err := LoadWaveTable(filepath.Join(dir, "wave_list.yaml"), enemies)
	if err != nil {
		return nil, fmt.Errorf("load wave table: %w", err)
	}
	levels, err := LoadLevelTable(filepath.Join(dir, "level_list.yaml"), waves, traps)
	if err != nil {
		return nil, fmt.Errorf("load level table: %w", err)
	}
	return &Catalog{Enemies: enemies, Traps: traps, Waves: waves, Levels: levels}, nil
}
