package encoder

import (
	"image"
	"image/jpeg"
	"io"
)

// DefaultJPEGQuality applies when no quality is configured.
const DefaultJPEGQuality = 90

// JPEGEncoder writes baseline JPEG.
type JPEGEncoder struct{}

func (e *JPEGEncoder) Format() string       { return "jpeg" }
func (e *JPEGEncoder) Extensions() []string { return []string{"jpg", "jpeg"} }

func (e *JPEGEncoder) Encode(w io.Writer, img image.Image, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
}
