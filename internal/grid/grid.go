// Package grid sizes the mosaic grid and holds the cell→tile assignment.
package grid

import (
	"errors"
	"fmt"
	"math"
)

// Unassigned marks a cell that has not been bound to a tile yet.
const Unassigned = -1

var (
	// ErrUngridable is returned when no grid can hold the requested cell count.
	ErrUngridable = errors.New("grid: requested tile count cannot be gridded")
	// ErrDegenerate is returned for zero or negative sizes and aspect ratios.
	ErrDegenerate = errors.New("grid: degenerate input")
)

// Grid is cards_wide × cards_tall cells plus the flat assignment array,
// indexed y*CardsWide + x.
type Grid struct {
	CardsWide int
	CardsTall int
	Cells     []int
}

// New returns a grid whose cells are all Unassigned.
func New(wide, tall int) Grid {
	cells := make([]int, wide*tall)
	for i := range cells {
		cells[i] = Unassigned
	}
	return Grid{CardsWide: wide, CardsTall: tall, Cells: cells}
}

// Len is the number of cells.
func (g Grid) Len() int { return g.CardsWide * g.CardsTall }

// Index maps cell coordinates to the flat index.
func (g Grid) Index(x, y int) int { return y*g.CardsWide + x }

// XY maps a flat index back to cell coordinates.
func (g Grid) XY(i int) (x, y int) { return i % g.CardsWide, i / g.CardsWide }

// Validate checks that every cell holds a tile index in [0, tileCount).
func (g Grid) Validate(tileCount int) error {
	if len(g.Cells) != g.Len() {
		return fmt.Errorf("grid: %d cells for a %dx%d grid", len(g.Cells), g.CardsWide, g.CardsTall)
	}
	for i, t := range g.Cells {
		if t < 0 || t >= tileCount {
			return fmt.Errorf("grid: cell %d holds tile %d, want [0,%d)", i, t, tileCount)
		}
	}
	return nil
}

func checkInputs(aspect float64, imgW, imgH int) error {
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		return fmt.Errorf("%w: aspect ratio %v", ErrDegenerate, aspect)
	}
	if imgW <= 0 || imgH <= 0 {
		return fmt.Errorf("%w: image %dx%d", ErrDegenerate, imgW, imgH)
	}
	return nil
}

// FixedWidth sizes a grid with a fixed number of columns. aspect is
// tile_width/tile_height.
func FixedWidth(cardsWide int, aspect float64, imgW, imgH int) (Grid, error) {
	if err := checkInputs(aspect, imgW, imgH); err != nil {
		return Grid{}, err
	}
	if cardsWide <= 0 {
		return Grid{}, fmt.Errorf("%w: cards wide %d", ErrDegenerate, cardsWide)
	}

	cellH := float64(imgW) / float64(cardsWide) / aspect
	cardsTall := int(math.Round(float64(imgH) / cellH))
	if cardsTall <= 0 {
		return Grid{}, fmt.Errorf("%w: %d columns leave no rows for a %dx%d image", ErrDegenerate, cardsWide, imgW, imgH)
	}
	return New(cardsWide, cardsTall), nil
}

// FitN finds the smallest-area aspect-consistent grid holding at least n
// cells. The search parameter k walks upward; at each k the grid is derived
// both from a width of k and from a height of k, and the first k yielding
// a candidate wins. The walk stops at the image pixel count.
func FitN(n int, aspect float64, imgW, imgH int) (Grid, error) {
	if err := checkInputs(aspect, imgW, imgH); err != nil {
		return Grid{}, err
	}
	if n <= 0 {
		return Grid{}, fmt.Errorf("%w: tile count %d", ErrDegenerate, n)
	}

	limit := imgW * imgH
	if n > limit {
		return Grid{}, fmt.Errorf("%w: %d cells exceed %d pixels", ErrUngridable, n, limit)
	}

	// rows per column that keep the grid's pixel aspect equal to the image's
	ratio := aspect * float64(imgH) / float64(imgW)

	for k := 1; k <= limit; k++ {
		w, h, ok := fitAt(k, n, ratio)
		if ok {
			return New(w, h), nil
		}
	}
	return Grid{}, fmt.Errorf("%w: no grid of up to %d cells holds %d", ErrUngridable, limit, n)
}

// fitAt returns the smaller of the two candidates at search step k that
// hold n cells. Equal areas prefer fewer columns.
func fitAt(k, n int, ratio float64) (w, h int, ok bool) {
	cands := [2][2]int{
		{k, int(math.Round(float64(k) * ratio))},
		{int(math.Round(float64(k) / ratio)), k},
	}
	for _, c := range cands {
		cw, ch := c[0], c[1]
		if cw < 1 || ch < 1 || cw*ch < n {
			continue
		}
		if !ok || cw*ch < w*h || (cw*ch == w*h && cw < w) {
			w, h, ok = cw, ch, true
		}
	}
	return w, h, ok
}
