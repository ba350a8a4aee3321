package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/AnyUserName/cardmosaic/internal/assign"
	"github.com/AnyUserName/cardmosaic/internal/encoder"
	"github.com/AnyUserName/cardmosaic/internal/logging"
	"github.com/AnyUserName/cardmosaic/internal/manifest"
	"github.com/AnyUserName/cardmosaic/internal/pool"
	"github.com/AnyUserName/cardmosaic/internal/profile"
	"github.com/AnyUserName/cardmosaic/internal/raster"
)

// Config holds all parameters for a build pipeline run.
type Config struct {
	BasePath    string
	TileDir     string
	OutputPath  string
	Profile     profile.Profile
	FitTiles    bool
	Workers     int
	Quality     int    // JPEG output only; 0 means encoder default
	Duplicates  int    // extra copies padded into the pool
	Seed        int64  // shuffle seed for Duplicates
	DumpMatched string // optional path for the brightness-matched base sample
	Logger      *slog.Logger
}

// Pipeline builds a mosaic from files on disk.
type Pipeline struct {
	cfg      Config
	registry *encoder.Registry
	log      *slog.Logger
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Pipeline{
		cfg:      cfg,
		registry: encoder.NewRegistry(),
		log:      logging.OrDiscard(cfg.Logger),
	}
}

// Run loads the inputs, composes the mosaic, writes the output image and
// returns the build manifest. Writing the manifest is left to the caller.
func (p *Pipeline) Run(ctx context.Context) (*manifest.Manifest, error) {
	start := time.Now()
	p.log.Debug("encoders", "available", p.registry.String())

	// Fail on an unsupported output extension before doing any work.
	if _, err := p.registry.ForPath(p.cfg.OutputPath); err != nil {
		return nil, err
	}

	base, err := raster.Load(p.cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("base: %w", err)
	}
	p.log.Info("base loaded", "path", p.cfg.BasePath, "width", base.W, "height", base.H)

	tiles, err := pool.Load(p.cfg.TileDir, p.cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("tiles: %w", err)
	}
	loaded := tiles.Len()
	if p.cfg.Duplicates > 0 {
		tiles.PadDuplicates(p.cfg.Duplicates, rand.New(rand.NewSource(p.cfg.Seed)))
	}
	p.log.Info("tiles loaded", "dir", p.cfg.TileDir, "files", loaded, "pool", tiles.Len())

	prof := p.cfg.Profile
	mosaic, err := Compose(ctx, base, tiles.Tiles, Options{
		SampleSize:  prof.SampleSize,
		CardsWide:   prof.CardsWide,
		FitTiles:    p.cfg.FitTiles,
		OutputWidth: prof.OutputWidth,
		Aspect:      prof.Aspect,
		Workers:     p.cfg.Workers,
	}, p.log)
	if err != nil {
		return nil, err
	}

	if p.cfg.DumpMatched != "" {
		if err := p.registry.WriteFile(p.cfg.DumpMatched, mosaic.Matched.AsImage(), p.cfg.Quality); err != nil {
			return nil, fmt.Errorf("dump matched sample: %w", err)
		}
		p.log.Info("matched sample written", "path", p.cfg.DumpMatched)
	}

	if err := p.registry.WriteFile(p.cfg.OutputPath, mosaic.Image, p.cfg.Quality); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}
	enc, _ := p.registry.ForPath(p.cfg.OutputPath)
	var outSize int64
	if info, err := os.Stat(p.cfg.OutputPath); err == nil {
		outSize = info.Size()
	}
	p.log.Info("mosaic written", "path", p.cfg.OutputPath, "width", mosaic.Layout.Width, "height", mosaic.Layout.Height)

	m := manifest.New(prof.Name)
	m.Base = manifest.ImageInfo{Path: p.cfg.BasePath, Width: base.W, Height: base.H}
	m.Output = manifest.ImageInfo{
		Path:   p.cfg.OutputPath,
		Width:  mosaic.Layout.Width,
		Height: mosaic.Layout.Height,
		Format: enc.Format(),
		Size:   outSize,
	}
	m.Grid = manifest.GridInfo{
		CardsWide:  mosaic.Grid.CardsWide,
		CardsTall:  mosaic.Grid.CardsTall,
		SampleSize: prof.SampleSize,
		Aspect:     prof.Aspect,
		FitTiles:   p.cfg.FitTiles,
	}
	m.Pool = manifest.PoolInfo{
		Dir:         p.cfg.TileDir,
		Loaded:      loaded,
		Tiles:       tiles.Len(),
		Duplicates:  tiles.Len() - loaded,
		Fingerprint: tiles.Fingerprint(),
	}
	if p.cfg.Duplicates > 0 {
		m.Pool.Seed = p.cfg.Seed
	}
	m.Tiles = make([]manifest.Tile, tiles.Len())
	for i, src := range tiles.Sources {
		m.Tiles[i] = manifest.Tile{Key: src.Key, Path: src.Path, Hash: tiles.Hashes[i]}
	}
	m.Cells = cellsOf(mosaic.Grid.Cells, mosaic.Assignment)
	m.BuildInfo = &manifest.BuildInfo{
		Workers:   p.cfg.Workers,
		ElapsedMS: time.Since(start).Milliseconds(),
	}
	m.ComputeStats()
	return m, nil
}

func cellsOf(tiles []int, res assign.Result) []manifest.Cell {
	cells := make([]manifest.Cell, len(tiles))
	for i, t := range tiles {
		cells[i] = manifest.Cell{Tile: t, Cost: res.Costs[i], Phase: res.Phases[i].String()}
	}
	return cells
}
