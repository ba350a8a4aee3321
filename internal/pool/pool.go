// Package pool loads the tile images a mosaic is built from.
package pool

import (
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync"

	"github.com/AnyUserName/cardmosaic/internal/hasher"
	"github.com/AnyUserName/cardmosaic/internal/raster"
)

// ErrEmpty is returned when a directory holds no tile images.
var ErrEmpty = errors.New("pool: no tile images")

// Pool is the ordered list of tiles. Tiles[i] was decoded from Sources[i].
type Pool struct {
	Sources []Source
	Tiles   []*raster.Image
	Hashes  []string
}

// Len is the number of tiles.
func (p *Pool) Len() int { return len(p.Tiles) }

// Fingerprint identifies the pool contents and order.
func (p *Pool) Fingerprint() string { return hasher.Fingerprint(p.Hashes) }

// Load decodes every image in dir using up to workers goroutines. Any file
// that fails to decode fails the whole load.
func Load(dir string, workers int) (*Pool, error) {
	sources, err := Scan(dir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrEmpty, dir)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	p := &Pool{
		Sources: sources,
		Tiles:   make([]*raster.Image, len(sources)),
		Hashes:  make([]string, len(sources)),
	}
	errs := make([]error, len(sources))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			img, err := raster.Load(s.Path)
			if err != nil {
				errs[idx] = err
				return
			}
			p.Tiles[idx] = img
			p.Hashes[idx] = hasher.PixelHash(img)
		}(i, src)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return p, nil
}

// PadDuplicates shuffles the pool with rng and then appends copies of its
// first n tiles, so a grid with more cells than tiles can still start from
// a larger unique set. n is capped at the pool size.
func (p *Pool) PadDuplicates(n int, rng *rand.Rand) {
	rng.Shuffle(len(p.Tiles), func(i, j int) {
		p.Tiles[i], p.Tiles[j] = p.Tiles[j], p.Tiles[i]
		p.Sources[i], p.Sources[j] = p.Sources[j], p.Sources[i]
		p.Hashes[i], p.Hashes[j] = p.Hashes[j], p.Hashes[i]
	})
	n = min(n, len(p.Tiles))
	for i := 0; i < n; i++ {
		p.Tiles = append(p.Tiles, p.Tiles[i])
		p.Sources = append(p.Sources, p.Sources[i])
		p.Hashes = append(p.Hashes, p.Hashes[i])
	}
}
