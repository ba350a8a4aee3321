package encoder

import (
	"image"
	"image/png"
	"io"
)

// PNGEncoder writes lossless PNG. Tiles in the cache and mosaics by default
// use it.
type PNGEncoder struct {
	Compression png.CompressionLevel
}

func (e *PNGEncoder) Format() string       { return "png" }
func (e *PNGEncoder) Extensions() []string { return []string{"png"} }

func (e *PNGEncoder) Encode(w io.Writer, img image.Image, _ int) error {
	enc := &png.Encoder{CompressionLevel: e.Compression}
	return enc.Encode(w, img)
}
