package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AnyUserName/cardmosaic/internal/hasher"
	"github.com/AnyUserName/cardmosaic/internal/logging"
	"github.com/AnyUserName/cardmosaic/internal/pool"
	"github.com/AnyUserName/cardmosaic/internal/raster"
	"github.com/AnyUserName/cardmosaic/internal/tilecache"
	"github.com/AnyUserName/cardmosaic/internal/tilesource"
)

// DrawFactor bounds how many cards a pull may draw per tile requested
// before it gives up on finding new ones.
const DrawFactor = 4

// PullConfig holds the parameters for fetching new tiles into a cache.
type PullConfig struct {
	Count   int
	Store   *tilecache.Store
	Source  tilesource.Source
	Retry   tilesource.RetryPolicy
	Workers int
	Logger  *slog.Logger
}

// PullReport summarises a pull.
type PullReport struct {
	Saved   []uuid.UUID
	Draws   int // successful fetches
	Cached  int // already in the store by id
	Same    int // pixel-identical to a stored tile
	Present int // tiles in the store before the pull
}

// Pull draws random cards until Count new tiles are stored. Cards whose id
// or cropped pixels are already in the store are skipped.
func Pull(ctx context.Context, cfg PullConfig) (PullReport, error) {
	log := logging.OrDiscard(cfg.Logger)
	var rep PullReport
	if cfg.Count <= 0 {
		return rep, nil
	}
	workers := max(min(cfg.Workers, cfg.Count), 1)

	ids, err := cfg.Store.IDs()
	if err != nil {
		return rep, fmt.Errorf("list cache: %w", err)
	}
	seenID := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		seenID[id] = true
	}
	seenPix := make(map[string]bool)
	existing, err := pool.Load(cfg.Store.Dir, workers)
	switch {
	case errors.Is(err, pool.ErrEmpty):
	case err != nil:
		return rep, fmt.Errorf("load cache: %w", err)
	default:
		for _, h := range existing.Hashes {
			seenPix[h] = true
		}
		rep.Present = existing.Len()
	}
	log.Info("pulling", "want", cfg.Count, "cached", rep.Present, "workers", workers)

	var (
		mu       sync.Mutex
		reserved int // saved plus in flight
		draws    int // fetch attempts started
	)
	maxDraws := cfg.Count*DrawFactor + workers

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				mu.Lock()
				if reserved >= cfg.Count || draws >= maxDraws {
					mu.Unlock()
					return nil
				}
				reserved++
				draws++
				mu.Unlock()

				img, id, err := tilesource.FetchWithRetry(ctx, cfg.Source, cfg.Retry, log)
				if err != nil {
					return err
				}

				mu.Lock()
				rep.Draws++
				if seenID[id] {
					rep.Cached++
					reserved--
					mu.Unlock()
					log.Debug("already cached", "id", id)
					continue
				}
				seenID[id] = true
				mu.Unlock()

				tile := tilecache.Crop(img, cfg.Store.Aspect)
				h := hasher.PixelHash(raster.FromImage(tile))

				mu.Lock()
				if seenPix[h] {
					rep.Same++
					reserved--
					mu.Unlock()
					log.Debug("duplicate art", "id", id, "hash", h)
					continue
				}
				seenPix[h] = true
				mu.Unlock()

				if err := cfg.Store.Write(id, tile); err != nil {
					return err
				}

				mu.Lock()
				rep.Saved = append(rep.Saved, id)
				n := len(rep.Saved)
				mu.Unlock()
				log.Info("tile saved", "id", id, "n", n, "of", cfg.Count)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return rep, fmt.Errorf("pull: %w", err)
	}
	if len(rep.Saved) < cfg.Count {
		return rep, fmt.Errorf("pull: only %d of %d new tiles after %d draws", len(rep.Saved), cfg.Count, rep.Draws)
	}
	return rep, nil
}
