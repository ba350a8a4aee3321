// Package sampler produces the small fixed-resolution rasters that the
// rank engine scores against each other.
package sampler

import (
	"context"
	"fmt"
	"runtime"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/AnyUserName/cardmosaic/internal/grid"
	"github.com/AnyUserName/cardmosaic/internal/raster"
)

// Sampler resamples the base image and tiles to the scoring resolution.
type Sampler struct {
	// Size is the edge length S of one cell's sample block.
	Size int
	// Filter is the area-style resampling filter. Zero value means Box.
	Filter  imaging.ResampleFilter
	Workers int
}

// New returns a Sampler with a box filter and NumCPU workers.
func New(size int) *Sampler {
	return &Sampler{Size: size, Filter: imaging.Box, Workers: runtime.NumCPU()}
}

func (s *Sampler) filter() imaging.ResampleFilter {
	if s.Filter.Kernel == nil {
		return imaging.Box
	}
	return s.Filter
}

// Base resamples the base image to cards_wide*S × cards_tall*S so cell
// (x, y) owns the S×S block starting at (x*S, y*S).
func (s *Sampler) Base(base *raster.Image, g grid.Grid) (*raster.Image, error) {
	if s.Size <= 0 {
		return nil, fmt.Errorf("sample size %d must be positive", s.Size)
	}
	if g.Len() == 0 {
		return nil, fmt.Errorf("sample base: empty %dx%d grid", g.CardsWide, g.CardsTall)
	}
	w, h := g.CardsWide*s.Size, g.CardsTall*s.Size
	return raster.FromImage(imaging.Resize(base.NRGBA(), w, h, s.filter())), nil
}

// Tiles resamples every tile to S×S in parallel. The output order matches
// the input order.
func (s *Sampler) Tiles(ctx context.Context, tiles []*raster.Image) ([]*raster.Image, error) {
	if s.Size <= 0 {
		return nil, fmt.Errorf("sample size %d must be positive", s.Size)
	}
	out := make([]*raster.Image, len(tiles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Workers, 1))
	for i, t := range tiles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = raster.FromImage(imaging.Resize(t.NRGBA(), s.Size, s.Size, s.filter()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CellOrigin returns the top-left pixel of cell (x, y) inside a base sample.
func CellOrigin(x, y, size int) (px, py int) {
	return x * size, y * size
}
