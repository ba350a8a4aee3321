// Package brightness remaps the tonal range of the base sample onto the
// tile pool's by histogram matching.
package brightness

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/AnyUserName/cardmosaic/internal/raster"
)

// Buckets is the number of brightness levels.
const Buckets = 256

// Histogram counts pixels per rounded average-channel brightness.
type Histogram [Buckets]uint64

// Map sends a source brightness bucket to a target brightness.
type Map [Buckets]uint8

// Identity returns the map that leaves every bucket unchanged.
func Identity() Map {
	var m Map
	for i := range m {
		m[i] = uint8(i)
	}
	return m
}

// Level is the scalar brightness of one pixel.
func Level(r, g, b uint8) float64 {
	return (float64(r) + float64(g) + float64(b)) / 3
}

func bucket(r, g, b uint8) int {
	return int(math.Round(Level(r, g, b)))
}

// Count builds the histogram of one image.
func Count(img *raster.Image) Histogram {
	var h Histogram
	h.Add(img)
	return h
}

// Add accumulates img into h.
func (h *Histogram) Add(img *raster.Image) {
	for i := 0; i < len(img.Pix); i += raster.Channels {
		h[bucket(img.Pix[i], img.Pix[i+1], img.Pix[i+2])]++
	}
}

// Total is the number of counted pixels.
func (h *Histogram) Total() uint64 {
	var n uint64
	for _, c := range h {
		n += c
	}
	return n
}

// NewMap matches from onto to by CDF inversion. Each non-empty source
// bucket is sent to the target bucket whose cumulative range contains the
// midpoint of its own cumulative range, rescaled to the target's total.
// Empty source buckets keep their own level, clamped between the mappings
// of the nearest non-empty neighbours.
func NewMap(from, to Histogram) Map {
	fromTotal, toTotal := from.Total(), to.Total()
	if fromTotal == 0 || toTotal == 0 {
		return Identity()
	}
	scale := float64(toTotal) / float64(fromTotal)

	var (
		m      Map
		mapped [Buckets]bool
		cum    uint64
		j      int
		toCum  uint64 // count of to before bucket j
	)
	for i := 0; i < Buckets; i++ {
		if from[i] == 0 {
			continue
		}
		mid := (float64(cum) + float64(from[i])/2) * scale
		cum += from[i]

		// mid is non-decreasing in i, so the target cursor only moves forward.
		for j < Buckets-1 && mid >= float64(toCum+to[j]) {
			toCum += to[j]
			j++
		}
		m[i] = uint8(j)
		mapped[i] = true
	}

	// fill empty buckets between their neighbours
	lo := 0
	for i := 0; i < Buckets; i++ {
		if mapped[i] {
			lo = int(m[i])
			continue
		}
		hi := Buckets - 1
		for k := i + 1; k < Buckets; k++ {
			if mapped[k] {
				hi = int(m[k])
				break
			}
		}
		m[i] = uint8(min(max(i, lo), hi))
	}
	return m
}

// Match returns a copy of img with every pixel rescaled so its brightness
// follows m. Channels are clamped to 255; black pixels are left as is.
func Match(ctx context.Context, img *raster.Image, m Map) (*raster.Image, error) {
	out := raster.New(img.W, img.H)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for y := 0; y < img.H; y++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := img.Offset(0, y)
			end := start + img.W*raster.Channels
			for i := start; i < end; i += raster.Channels {
				r, gr, b := img.Pix[i], img.Pix[i+1], img.Pix[i+2]
				src := Level(r, gr, b)
				ratio := 1.0
				if src > 0 {
					ratio = float64(m[bucket(r, gr, b)]) / src
				}
				out.Pix[i] = scaleChannel(r, ratio)
				out.Pix[i+1] = scaleChannel(gr, ratio)
				out.Pix[i+2] = scaleChannel(b, ratio)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func scaleChannel(c uint8, ratio float64) uint8 {
	return uint8(math.Round(math.Min(float64(c)*ratio, 255)))
}
