package raster

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestFromImage_NRGBA(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(2, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	r := FromImage(img)
	if r.W != 3 || r.H != 2 {
		t.Fatalf("size: got %dx%d, want 3x2", r.W, r.H)
	}
	if got := len(r.Pix); got != 3*2*Channels {
		t.Fatalf("pix len: got %d", got)
	}
	if cr, cg, cb := r.At(2, 1); cr != 10 || cg != 20 || cb != 30 {
		t.Errorf("pixel: got (%d,%d,%d)", cr, cg, cb)
	}
}

func TestFromImage_SubImageOffset(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(3, 3, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	sub := img.SubImage(image.Rect(2, 2, 4, 4))

	r := FromImage(sub)
	if r.W != 2 || r.H != 2 {
		t.Fatalf("size: got %dx%d", r.W, r.H)
	}
	if cr, cg, cb := r.At(1, 1); cr != 200 || cg != 100 || cb != 50 {
		t.Errorf("pixel: got (%d,%d,%d)", cr, cg, cb)
	}
}

func TestFromImage_Gray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	img.SetGray(0, 0, color.Gray{Y: 77})

	r := FromImage(img)
	if cr, cg, cb := r.At(0, 0); cr != 77 || cg != 77 || cb != 77 {
		t.Errorf("pixel: got (%d,%d,%d)", cr, cg, cb)
	}
}

func TestNRGBA_Opaque(t *testing.T) {
	r := New(2, 2)
	r.Fill(1, 2, 3)
	out := r.NRGBA()
	c := out.NRGBAAt(1, 1)
	if c != (color.NRGBA{R: 1, G: 2, B: 3, A: 255}) {
		t.Errorf("got %+v", c)
	}
}

func TestLoad_DecodeFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	if err := os.WriteFile(path, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestLoad_PNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ok.png")
	src := image.NewNRGBA(image.Rect(0, 0, 5, 4))
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, src); err != nil {
		t.Fatal(err)
	}
	f.Close()

	r, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if r.W != 5 || r.H != 4 {
		t.Errorf("size: got %dx%d", r.W, r.H)
	}
}
