// Package composite renders the assigned grid at output resolution.
package composite

import (
	"context"
	"fmt"
	"image"
	"math"
	"runtime"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/AnyUserName/cardmosaic/internal/grid"
	"github.com/AnyUserName/cardmosaic/internal/raster"
)

// Headroom is how much larger than its on-grid footprint a DrawTile is.
const Headroom = 2

// Layout maps cells to output pixels.
type Layout struct {
	Width, Height int
	CellW, CellH  float64
	CardsWide     int
	CardsTall     int
}

// NewLayout computes the output raster size for a grid rendered at width
// pixels with tiles of the given aspect (width/height).
func NewLayout(g grid.Grid, width int, aspect float64) (Layout, error) {
	if width <= 0 || aspect <= 0 || g.Len() == 0 {
		return Layout{}, fmt.Errorf("composite: degenerate layout (width %d, aspect %v, grid %dx%d)",
			width, aspect, g.CardsWide, g.CardsTall)
	}
	cellW := float64(width) / float64(g.CardsWide)
	cellH := cellW / aspect
	l := Layout{
		Width:     width,
		Height:    int(math.Round(cellH * float64(g.CardsTall))),
		CellW:     cellW,
		CellH:     cellH,
		CardsWide: g.CardsWide,
		CardsTall: g.CardsTall,
	}
	if l.Height <= 0 {
		return Layout{}, fmt.Errorf("composite: %d px wide output has no height", width)
	}
	return l, nil
}

// Span returns the pixel range [lo, hi) of cell i along one axis. Both ends
// are rounded independently so neighbouring cells share an edge exactly.
func Span(i int, size float64) (lo, hi int) {
	return int(math.Round(float64(i) * size)), int(math.Round(float64(i+1) * size))
}

// Bounds is the output rectangle of cell (x, y).
func (l Layout) Bounds(x, y int) image.Rectangle {
	x0, x1 := Span(x, l.CellW)
	y0, y1 := Span(y, l.CellH)
	return image.Rect(x0, y0, x1, y1)
}

// DrawTiles resamples every tile referenced by cells to Headroom times the
// cell footprint. Unreferenced tiles are left nil.
func DrawTiles(ctx context.Context, tiles []*raster.Image, cells []int, l Layout) ([]*raster.Image, error) {
	w := Headroom * int(math.Ceil(l.CellW))
	h := Headroom * int(math.Ceil(l.CellH))
	out := make([]*raster.Image, len(tiles))

	needed := make([]bool, len(tiles))
	for _, t := range cells {
		if t < 0 || t >= len(tiles) {
			return nil, fmt.Errorf("composite: cell references tile %d of %d", t, len(tiles))
		}
		needed[t] = true
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i, tile := range tiles {
		if !needed[i] {
			continue
		}
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = raster.FromImage(imaging.Resize(tile.NRGBA(), w, h, imaging.Linear))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Render paints every cell with its DrawTile, bilinear sampled.
func Render(ctx context.Context, g grid.Grid, draws []*raster.Image, l Layout) (*image.RGBA, error) {
	if err := g.Validate(len(draws)); err != nil {
		return nil, err
	}
	out := image.NewRGBA(image.Rect(0, 0, l.Width, l.Height))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for y := 0; y < g.CardsTall; y++ {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for x := 0; x < g.CardsWide; x++ {
				src := draws[g.Cells[g.Index(x, y)]]
				if src == nil {
					return fmt.Errorf("composite: no draw tile for cell (%d,%d)", x, y)
				}
				paint(out, l.Bounds(x, y), src)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// paint fills r with src stretched over it.
func paint(dst *image.RGBA, r image.Rectangle, src *raster.Image) {
	w, h := r.Dx(), r.Dy()
	sx := float64(src.W) / float64(w)
	sy := float64(src.H) / float64(h)
	for j := 0; j < h; j++ {
		fy := (float64(j)+0.5)*sy - 0.5
		row := dst.PixOffset(r.Min.X, r.Min.Y+j)
		for i := 0; i < w; i++ {
			fx := (float64(i)+0.5)*sx - 0.5
			cr, cg, cb := Bilinear(src, fx, fy)
			p := dst.Pix[row+i*4 : row+i*4+4 : row+i*4+4]
			p[0], p[1], p[2], p[3] = cr, cg, cb, 0xff
		}
	}
}

// Bilinear samples src at fractional coordinates, weighting the four
// nearest pixels. Coordinates outside the raster are clamped to its edge.
func Bilinear(src *raster.Image, fx, fy float64) (r, g, b uint8) {
	x0f, y0f := math.Floor(fx), math.Floor(fy)
	wx, wy := fx-x0f, fy-y0f
	x0, y0 := clamp(int(x0f), src.W), clamp(int(y0f), src.H)
	x1, y1 := clamp(int(x0f)+1, src.W), clamp(int(y0f)+1, src.H)

	i00, i10 := src.Offset(x0, y0), src.Offset(x1, y0)
	i01, i11 := src.Offset(x0, y1), src.Offset(x1, y1)

	var c [3]uint8
	for k := 0; k < 3; k++ {
		top := float64(src.Pix[i00+k])*(1-wx) + float64(src.Pix[i10+k])*wx
		bot := float64(src.Pix[i01+k])*(1-wx) + float64(src.Pix[i11+k])*wx
		c[k] = uint8(math.Round(top*(1-wy) + bot*wy))
	}
	return c[0], c[1], c[2]
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
