// Package raster holds the owned RGB pixel buffer shared by every stage of
// the mosaic engine.
package raster

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Channels is the number of bytes per pixel (R, G, B).
const Channels = 3

// Image is a tightly packed RGB raster. Pix holds W*H*3 bytes in row-major
// order with no padding between rows.
type Image struct {
	W, H int
	Pix  []uint8
}

// New allocates a black image.
func New(w, h int) *Image {
	return &Image{W: w, H: h, Pix: make([]uint8, w*h*Channels)}
}

// Offset returns the index of the red byte of pixel (x, y).
func (m *Image) Offset(x, y int) int {
	return (y*m.W + x) * Channels
}

// At returns the RGB triple at (x, y).
func (m *Image) At(x, y int) (r, g, b uint8) {
	i := m.Offset(x, y)
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
}

// Set writes the RGB triple at (x, y).
func (m *Image) Set(x, y int, r, g, b uint8) {
	i := m.Offset(x, y)
	m.Pix[i], m.Pix[i+1], m.Pix[i+2] = r, g, b
}

// Fill paints the whole image with one color.
func (m *Image) Fill(r, g, b uint8) {
	for i := 0; i < len(m.Pix); i += Channels {
		m.Pix[i], m.Pix[i+1], m.Pix[i+2] = r, g, b
	}
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	pix := make([]uint8, len(m.Pix))
	copy(pix, m.Pix)
	return &Image{W: m.W, H: m.H, Pix: pix}
}

// FromImage converts any image.Image to an owned RGB raster. Alpha is
// dropped. NRGBA and RGBA sources take a fast path over Pix.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	out := New(b.Dx(), b.Dy())

	switch s := src.(type) {
	case *image.NRGBA:
		for y := 0; y < out.H; y++ {
			row := s.Pix[(y+b.Min.Y-s.Rect.Min.Y)*s.Stride+(b.Min.X-s.Rect.Min.X)*4:]
			for x := 0; x < out.W; x++ {
				j := out.Offset(x, y)
				out.Pix[j], out.Pix[j+1], out.Pix[j+2] = row[x*4], row[x*4+1], row[x*4+2]
			}
		}
	case *image.RGBA:
		for y := 0; y < out.H; y++ {
			row := s.Pix[(y+b.Min.Y-s.Rect.Min.Y)*s.Stride+(b.Min.X-s.Rect.Min.X)*4:]
			for x := 0; x < out.W; x++ {
				j := out.Offset(x, y)
				out.Pix[j], out.Pix[j+1], out.Pix[j+2] = row[x*4], row[x*4+1], row[x*4+2]
			}
		}
	default:
		for y := 0; y < out.H; y++ {
			for x := 0; x < out.W; x++ {
				c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				out.Set(x, y, c.R, c.G, c.B)
			}
		}
	}
	return out
}

// NRGBA returns an opaque *image.NRGBA copy, the form imaging works on.
func (m *Image) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.W, m.H))
	for i, j := 0, 0; i < len(m.Pix); i, j = i+Channels, j+4 {
		out.Pix[j], out.Pix[j+1], out.Pix[j+2], out.Pix[j+3] = m.Pix[i], m.Pix[i+1], m.Pix[i+2], 0xff
	}
	return out
}

// AsImage exposes the raster to code that expects an image.Image.
func (m *Image) AsImage() image.Image {
	return m.NRGBA()
}

// Load opens and decodes an image file. Any decode failure is returned
// with the path attached.
func Load(path string) (*Image, error) {
	img, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// Decode opens and decodes an image file without converting it.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
