//go:build ignore

// gen_fixtures creates a base image and a tile pool for a build smoke test.
// Usage: go run gen_fixtures.go <output_dir> [tiles]
//
//	cardmosaic build <output_dir>/base.jpg --cards <output_dir>/cards --cards-wide 12 -s 6 -W 480
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir> [tiles]")
		os.Exit(1)
	}
	dir := os.Args[1]
	tiles := 120
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n <= 0 {
			fmt.Fprintln(os.Stderr, "tiles must be a positive integer")
			os.Exit(1)
		}
		tiles = n
	}
	os.MkdirAll(filepath.Join(dir, "cards"), 0o755)

	// Base (JPEG, 400x300): radial gradient so the centre differs from the corners.
	writeJPEG(filepath.Join(dir, "base.jpg"), radial(400, 300))

	// Tiles (PNG, 4:3) spread around the hue wheel at varying brightness.
	for i := 0; i < tiles; i++ {
		name := fmt.Sprintf("tile-%03d.png", i)
		hue := float64(i) / float64(tiles) * 360
		value := 0.35 + 0.6*float64(i%5)/4
		writePNG(filepath.Join(dir, "cards", name), solidWithBorder(160, 120, hsv(hue, 0.7, value)))
	}

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created base and %d tiles in %s\n", tiles, dir)
}

func radial(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	cx, cy := float64(w)/2, float64(h)/2
	maxD := math.Hypot(cx, cy)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy) / maxD
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(255 * (1 - d)),
				G: uint8(x * 255 / w),
				B: uint8(255 * d),
				A: 255,
			})
		}
	}
	return img
}

func solidWithBorder(w, h int, fill color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := fill
			if x < 4 || x >= w-4 || y < 4 || y >= h-4 {
				c = color.NRGBA{R: 20, G: 20, B: 20, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func hsv(h, s, v float64) color.NRGBA {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g = c, x
	case h < 120:
		r, g = x, c
	case h < 180:
		g, b = c, x
	case h < 240:
		g, b = x, c
	case h < 300:
		r, b = x, c
	default:
		r, b = c, x
	}
	return color.NRGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 255,
	}
}

func writePNG(path string, img image.Image) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	png.Encode(f, img)
}

func writeJPEG(path string, img image.Image) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
}
