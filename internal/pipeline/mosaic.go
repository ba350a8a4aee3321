package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime"

	"github.com/AnyUserName/cardmosaic/internal/assign"
	"github.com/AnyUserName/cardmosaic/internal/brightness"
	"github.com/AnyUserName/cardmosaic/internal/composite"
	"github.com/AnyUserName/cardmosaic/internal/grid"
	"github.com/AnyUserName/cardmosaic/internal/logging"
	"github.com/AnyUserName/cardmosaic/internal/rank"
	"github.com/AnyUserName/cardmosaic/internal/raster"
	"github.com/AnyUserName/cardmosaic/internal/sampler"
)

// Options sizes an in-memory mosaic.
type Options struct {
	SampleSize  int
	CardsWide   int  // ignored when FitTiles is set
	FitTiles    bool // smallest grid with at least one cell per tile
	OutputWidth int
	Aspect      float64
	Workers     int
}

// Mosaic is everything Compose produced.
type Mosaic struct {
	Grid       grid.Grid
	Assignment assign.Result
	Brightness brightness.Map
	Matched    *raster.Image // base sample after brightness matching
	Layout     composite.Layout
	Image      *image.RGBA
}

// Compose runs sample, match, rank, assign and render over decoded inputs.
func Compose(ctx context.Context, base *raster.Image, tiles []*raster.Image, opt Options, log *slog.Logger) (*Mosaic, error) {
	log = logging.OrDiscard(log)
	if len(tiles) == 0 {
		return nil, rank.ErrNoTiles
	}
	if opt.Workers <= 0 {
		opt.Workers = runtime.NumCPU()
	}

	var (
		g   grid.Grid
		err error
	)
	if opt.FitTiles {
		g, err = grid.FitN(len(tiles), opt.Aspect, base.W, base.H)
	} else {
		g, err = grid.FixedWidth(opt.CardsWide, opt.Aspect, base.W, base.H)
	}
	if err != nil {
		return nil, fmt.Errorf("grid: %w", err)
	}
	log.Info("grid", "wide", g.CardsWide, "tall", g.CardsTall, "cells", g.Len(), "tiles", len(tiles))

	s := sampler.New(opt.SampleSize)
	s.Workers = opt.Workers
	baseSample, err := s.Base(base, g)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	tileSamples, err := s.Tiles(ctx, tiles)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}

	var pool brightness.Histogram
	for _, t := range tileSamples {
		pool.Add(t)
	}
	bmap := brightness.NewMap(brightness.Count(baseSample), pool)
	matched, err := brightness.Match(ctx, baseSample, bmap)
	if err != nil {
		return nil, fmt.Errorf("brightness: %w", err)
	}
	log.Debug("brightness matched", "sample_w", matched.W, "sample_h", matched.H)

	tbl, err := rank.Build(ctx, matched, tileSamples, g, rank.Config{Size: opt.SampleSize, Workers: opt.Workers})
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	res, err := assign.Assign(tbl, &g)
	if err != nil {
		return nil, fmt.Errorf("assign: %w", err)
	}
	log.Info("assigned", "unique", len(res.Order), "fallback", g.Len()-len(res.Order), "total_cost", res.TotalCost)

	layout, err := composite.NewLayout(g, opt.OutputWidth, opt.Aspect)
	if err != nil {
		return nil, err
	}
	draws, err := composite.DrawTiles(ctx, tiles, g.Cells, layout)
	if err != nil {
		return nil, err
	}
	img, err := composite.Render(ctx, g, draws, layout)
	if err != nil {
		return nil, err
	}
	log.Debug("rendered", "width", layout.Width, "height", layout.Height)

	return &Mosaic{
		Grid:       g,
		Assignment: res,
		Brightness: bmap,
		Matched:    matched,
		Layout:     layout,
		Image:      img,
	}, nil
}
