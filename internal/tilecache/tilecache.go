// Package tilecache persists fetched tiles as <dir>/<uuid>.png, cropped to
// the mosaic's tile aspect ratio.
package tilecache

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/AnyUserName/cardmosaic/internal/encoder"
	"github.com/AnyUserName/cardmosaic/internal/pool"
)

// Crop fills the largest aspect-correct frame of img, anchored at the
// centre: a wider target trims height, a narrower one trims width.
func Crop(img image.Image, aspect float64) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	current := float64(w) / float64(h)

	nw, nh := w, h
	if aspect > current {
		nh = int(math.Round(float64(w) / aspect))
	} else {
		nw = int(math.Round(aspect * float64(h)))
	}
	return imaging.Fill(img, max(nw, 1), max(nh, 1), imaging.Center, imaging.Linear)
}

// Store is a tile directory.
type Store struct {
	Dir    string
	Aspect float64
	png    encoder.PNGEncoder
}

// Open creates dir if needed.
func Open(dir string, aspect float64) (*Store, error) {
	if aspect <= 0 {
		return nil, fmt.Errorf("tilecache: aspect ratio %v must be positive", aspect)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("tilecache: create %s: %w", dir, err)
	}
	return &Store{Dir: dir, Aspect: aspect}, nil
}

// Path is where the tile with id is stored.
func (s *Store) Path(id uuid.UUID) string {
	return filepath.Join(s.Dir, id.String()+".png")
}

// Has reports whether id is already cached.
func (s *Store) Has(id uuid.UUID) (bool, error) {
	_, err := os.Stat(s.Path(id))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IDs lists the cached tile ids. Files not named after a uuid are ignored.
func (s *Store) IDs() ([]uuid.UUID, error) {
	sources, err := pool.Scan(s.Dir)
	if err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	for _, src := range sources {
		if id, err := uuid.Parse(src.Key); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Save crops img and writes it under id.
func (s *Store) Save(id uuid.UUID, img image.Image) (*image.NRGBA, error) {
	cropped := Crop(img, s.Aspect)
	if err := s.Write(id, cropped); err != nil {
		return nil, err
	}
	return cropped, nil
}

// Write stores an already cropped tile. The file is written to a temp name
// first so a crash never leaves a truncated tile behind.
func (s *Store) Write(id uuid.UUID, tile image.Image) error {
	tmp, err := os.CreateTemp(s.Dir, ".tile-*.png")
	if err != nil {
		return fmt.Errorf("tilecache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := s.png.Encode(tmp, tile, 0); err != nil {
		tmp.Close()
		return fmt.Errorf("tilecache: encode %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tilecache: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(id)); err != nil {
		return fmt.Errorf("tilecache: %w", err)
	}
	return nil
}
