// Package assign binds one tile to every cell, greedily and preferring
// distinct tiles.
package assign

import (
	"errors"
	"fmt"

	"github.com/AnyUserName/cardmosaic/internal/grid"
	"github.com/AnyUserName/cardmosaic/internal/rank"
)

// Phase records how a cell received its tile.
type Phase uint8

const (
	// Unfilled cells have no tile yet.
	Unfilled Phase = iota
	// Unique cells were filled while every tile could still be used once.
	Unique
	// Fallback cells were filled after every tile had been placed.
	Fallback
)

func (p Phase) String() string {
	switch p {
	case Unique:
		return "unique"
	case Fallback:
		return "fallback"
	default:
		return "unfilled"
	}
}

// ErrShape is returned when the table and grid disagree on the cell count.
var ErrShape = errors.New("assign: table does not match grid")

// Result is the outcome of Assign.
type Result struct {
	Phases    []Phase
	Costs     []uint32
	TotalCost uint64
	// Order lists cells in the order Phase 1 filled them.
	Order []int
}

// Assign fills g.Cells from tbl.
//
// Phase 1 runs min(tiles, cells) steps. Each step picks the unfilled cell
// whose best remaining candidate is globally cheapest (lowest cell index on
// ties), places that tile and withdraws it from every other cell. Phase 2
// gives each cell still unfilled its own cheapest tile, repeats allowed.
func Assign(tbl *rank.Table, g *grid.Grid) (Result, error) {
	if tbl.Cells != g.Len() || len(g.Cells) != g.Len() {
		return Result{}, fmt.Errorf("%w: %d ranked cells, %d grid cells", ErrShape, tbl.Cells, g.Len())
	}
	if tbl.Tiles == 0 {
		return Result{}, rank.ErrNoTiles
	}

	res := Result{
		Phases: make([]Phase, tbl.Cells),
		Costs:  make([]uint32, tbl.Cells),
		Order:  make([]int, 0, min(tbl.Tiles, tbl.Cells)),
	}
	used := make([]bool, tbl.Tiles)

	steps := min(tbl.Tiles, tbl.Cells)
	for step := 0; step < steps; step++ {
		cell, e := cheapest(tbl, res.Phases, used)
		g.Cells[cell] = e.Tile
		res.Phases[cell] = Unique
		res.Costs[cell] = e.Cost
		res.TotalCost += uint64(e.Cost)
		res.Order = append(res.Order, cell)
		used[e.Tile] = true
	}

	for cell, p := range res.Phases {
		if p != Unfilled {
			continue
		}
		e := tbl.Best(cell)
		g.Cells[cell] = e.Tile
		res.Phases[cell] = Fallback
		res.Costs[cell] = e.Cost
		res.TotalCost += uint64(e.Cost)
	}
	return res, nil
}

// cheapest scans every unfilled cell for the globally lowest best candidate.
func cheapest(tbl *rank.Table, phases []Phase, used []bool) (int, rank.Entry) {
	bestCell := -1
	var best rank.Entry
	for cell, p := range phases {
		if p != Unfilled {
			continue
		}
		e, ok := tbl.Peek(cell, used)
		if !ok {
			// Each column starts with every tile and loses one per placement,
			// so it cannot empty before Phase 1 ends.
			panic(fmt.Sprintf("assign: candidate queue of cell %d ran dry", cell))
		}
		if bestCell < 0 || e.Cost < best.Cost {
			bestCell, best = cell, e
		}
	}
	if bestCell < 0 {
		panic("assign: no unfilled cell left in phase 1")
	}
	return bestCell, best
}

// Duplicates counts how many cells share a tile with an earlier cell.
func Duplicates(cells []int) int {
	seen := make(map[int]bool, len(cells))
	n := 0
	for _, t := range cells {
		if seen[t] {
			n++
		}
		seen[t] = true
	}
	return n
}
