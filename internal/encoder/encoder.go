package encoder

import (
	"image"
	"io"
)

// Encoder writes an image in one file format.
type Encoder interface {
	// Format returns the format name (e.g. "png", "jpeg").
	Format() string

	// Encode writes img to w. quality (1-100) is ignored by lossless formats.
	Encode(w io.Writer, img image.Image, quality int) error

	// Extensions returns the file extensions, without dot, that select this
	// encoder. The first one is canonical.
	Extensions() []string
}
