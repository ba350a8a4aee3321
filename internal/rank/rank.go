// Package rank scores every (cell, tile) pair and keeps, per cell, a
// priority queue of candidates ordered best first.
//
// Costs live in one flat arena indexed cell*tiles+tile. Each cell's queue
// holds tile ids and reads the arena through its comparator, so the queue
// never copies a cost.
package rank

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/emirpasic/gods/trees/binaryheap"
	"golang.org/x/sync/errgroup"

	"github.com/AnyUserName/cardmosaic/internal/grid"
	"github.com/AnyUserName/cardmosaic/internal/raster"
)

// ErrNoTiles is returned when there is nothing to rank.
var ErrNoTiles = errors.New("rank: no tiles")

// Entry is one candidate for a cell.
type Entry struct {
	Tile int
	Cost uint32
}

// Table is the full cost table plus one candidate queue per cell.
type Table struct {
	Cells int
	Tiles int

	cost   []uint32
	queues []*binaryheap.Heap
}

// FocusPenalty is zero along the grid's centre lines and grows toward the
// corners, so peripheral cells accept worse matches first.
func FocusPenalty(x, y, w, h, size int) uint32 {
	fx := 2*float64(x)/float64(w) - 1
	fy := 2*float64(y)/float64(h) - 1
	s := float64(size)
	return uint32(math.Round(fx * fx * fy * fy * s * s * 255))
}

// Config controls a Build.
type Config struct {
	Size    int
	Workers int
}

// Build scores every tile sample against every cell block of the base
// sample. base must be cards_wide*Size × cards_tall*Size and every tile
// Size×Size.
func Build(ctx context.Context, base *raster.Image, tiles []*raster.Image, g grid.Grid, cfg Config) (*Table, error) {
	if len(tiles) == 0 {
		return nil, ErrNoTiles
	}
	if g.Len() == 0 {
		return nil, fmt.Errorf("rank: empty %dx%d grid", g.CardsWide, g.CardsTall)
	}
	s := cfg.Size
	if s <= 0 {
		return nil, fmt.Errorf("rank: sample size %d must be positive", s)
	}
	if base.W != g.CardsWide*s || base.H != g.CardsTall*s {
		return nil, fmt.Errorf("rank: base sample %dx%d does not match %dx%d cells of %d",
			base.W, base.H, g.CardsWide, g.CardsTall, s)
	}
	for i, t := range tiles {
		if t.W != s || t.H != s {
			return nil, fmt.Errorf("rank: tile sample %d is %dx%d, want %dx%d", i, t.W, t.H, s, s)
		}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	tbl := &Table{
		Cells:  g.Len(),
		Tiles:  len(tiles),
		cost:   make([]uint32, g.Len()*len(tiles)),
		queues: make([]*binaryheap.Heap, g.Len()),
	}

	// Each tile writes its own column of the arena.
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for ti, tile := range tiles {
		eg.Go(func() error {
			if err := ectx.Err(); err != nil {
				return err
			}
			for cell := 0; cell < tbl.Cells; cell++ {
				x, y := g.XY(cell)
				d := blockDistance(base, tile, x*s, y*s, s)
				tbl.cost[cell*tbl.Tiles+ti] = d + FocusPenalty(x, y, g.CardsWide, g.CardsTall, s)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	eg, ectx = errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for cell := range tbl.queues {
		eg.Go(func() error {
			if err := ectx.Err(); err != nil {
				return err
			}
			tbl.queues[cell] = tbl.newQueue(cell)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return tbl, nil
}

// blockDistance is the L1 distance between a tile sample and the S×S block
// of base starting at (ox, oy).
func blockDistance(base, tile *raster.Image, ox, oy, s int) uint32 {
	var sum uint32
	for j := 0; j < s; j++ {
		bi := base.Offset(ox, oy+j)
		ti := tile.Offset(0, j)
		for k := 0; k < s*raster.Channels; k++ {
			a, b := base.Pix[bi+k], tile.Pix[ti+k]
			if a > b {
				sum += uint32(a - b)
			} else {
				sum += uint32(b - a)
			}
		}
	}
	return sum
}

// less orders candidates of one cell: lower cost first, then lower tile id.
func (t *Table) less(cell, a, b int) bool {
	ca, cb := t.cost[cell*t.Tiles+a], t.cost[cell*t.Tiles+b]
	if ca != cb {
		return ca < cb
	}
	return a < b
}

func (t *Table) newQueue(cell int) *binaryheap.Heap {
	q := binaryheap.NewWith(func(a, b interface{}) int {
		ia, ib := a.(int), b.(int)
		switch {
		case ia == ib:
			return 0
		case t.less(cell, ia, ib):
			return -1
		default:
			return 1
		}
	})
	ids := make([]interface{}, t.Tiles)
	for i := range ids {
		ids[i] = i
	}
	q.Push(ids...)
	return q
}

// Cost returns the score of tile in cell.
func (t *Table) Cost(cell, tile int) uint32 {
	return t.cost[cell*t.Tiles+tile]
}

// Column returns every candidate of cell sorted by cost descending, so the
// best candidate is the last element. It reads the arena and ignores any
// entries already consumed from the queue.
func (t *Table) Column(cell int) []Entry {
	col := make([]Entry, t.Tiles)
	for i := range col {
		col[i] = Entry{Tile: i, Cost: t.Cost(cell, i)}
	}
	sort.Slice(col, func(i, j int) bool {
		return t.less(cell, col[j].Tile, col[i].Tile)
	})
	return col
}

// Best returns the cheapest candidate of cell over all tiles.
func (t *Table) Best(cell int) Entry {
	best := 0
	for i := 1; i < t.Tiles; i++ {
		if t.less(cell, i, best) {
			best = i
		}
	}
	return Entry{Tile: best, Cost: t.Cost(cell, best)}
}

// Peek returns the best candidate of cell whose tile is not marked in used.
// Used tiles reaching the front of the queue are discarded for good.
func (t *Table) Peek(cell int, used []bool) (Entry, bool) {
	q := t.queues[cell]
	for {
		v, ok := q.Peek()
		if !ok {
			return Entry{}, false
		}
		id := v.(int)
		if !used[id] {
			return Entry{Tile: id, Cost: t.Cost(cell, id)}, true
		}
		q.Pop()
	}
}

// Remaining is the number of entries still queued for cell, used ones
// included until Peek discards them.
func (t *Table) Remaining(cell int) int {
	return t.queues[cell].Size()
}
