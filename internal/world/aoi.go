package world

import (
	"math"
	"sort"

	"github.com/trapline/sim/internal/core/ecs"
	"github.com/trapline/sim/internal/geom"
)

// Cell edge in world units when none is configured.
const defaultCellSize = 4.0

type cellKey struct {
	cx int32
	cy int32
}

// Grid is a cell-based spatial index over enemy positions. Range queries
// visit only the cells that overlap the query circle; callers still filter
// by exact distance.
// Accessed only from the tick goroutine, no locks.
type Grid struct {
	size  float64
	cells map[cellKey]map[ecs.EntityID]struct{}
	where map[ecs.EntityID]cellKey
}

func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = defaultCellSize
	}
	return &Grid{
		size:  cellSize,
		cells: make(map[cellKey]map[ecs.EntityID]struct{}),
		where: make(map[ecs.EntityID]cellKey),
	}
}

func (g *Grid) coord(v float64) int32 {
	return int32(math.Floor(v / g.size))
}

func (g *Grid) key(p geom.Vec) cellKey {
	return cellKey{cx: g.coord(p.X), cy: g.coord(p.Y)}
}

// Set places id at p, moving it between cells when needed.
func (g *Grid) Set(id ecs.EntityID, p geom.Vec) {
	k := g.key(p)
	if old, ok := g.where[id]; ok {
		if old == k {
			return
		}
		g.drop(id, old)
	}
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[ecs.EntityID]struct{})
		g.cells[k] = cell
	}
	cell[id] = struct{}{}
	g.where[id] = k
}

// Remove takes id out of the grid.
func (g *Grid) Remove(id ecs.EntityID) {
	if k, ok := g.where[id]; ok {
		g.drop(id, k)
		delete(g.where, id)
	}
}

func (g *Grid) drop(id ecs.EntityID, k cellKey) {
	cell := g.cells[k]
	if cell == nil {
		return
	}
	delete(cell, id)
	if len(cell) == 0 {
		delete(g.cells, k)
	}
}

func (g *Grid) Len() int { return len(g.where) }

// Clear empties the grid.
func (g *Grid) Clear() {
	g.cells = make(map[cellKey]map[ecs.EntityID]struct{})
	g.where = make(map[ecs.EntityID]cellKey)
}

// Nearby returns the IDs in every cell overlapping the circle at center,
// in ascending ID order.
func (g *Grid) Nearby(center geom.Vec, radius float64) []ecs.EntityID {
	minX, maxX := g.coord(center.X-radius), g.coord(center.X+radius)
	minY, maxY := g.coord(center.Y-radius), g.coord(center.Y+radius)
	var result []ecs.EntityID
	for cx := minX; cx <= maxX; cx++ {
		for cy := minY; cy <= maxY; cy++ {
			for id := range g.cells[cellKey{cx: cx, cy: cy}] {
				result = append(result, id)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
