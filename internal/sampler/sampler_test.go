package sampler

import (
	"context"
	"testing"

	"github.com/AnyUserName/cardmosaic/internal/grid"
	"github.com/AnyUserName/cardmosaic/internal/raster"
)

func TestBase_GridAligned(t *testing.T) {
	base := raster.New(40, 30)
	g := grid.New(4, 3)
	s := New(9)

	out, err := s.Base(base, g)
	if err != nil {
		t.Fatalf("base: %v", err)
	}
	if out.W != 36 || out.H != 27 {
		t.Errorf("size: got %dx%d, want 36x27", out.W, out.H)
	}
}

func TestBase_BlocksKeepQuadrantColors(t *testing.T) {
	base := raster.New(40, 40)
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if x >= 20 {
				base.Set(x, y, 255, 0, 0)
			}
		}
	}
	s := New(10)

	out, err := s.Base(base, grid.New(2, 2))
	if err != nil {
		t.Fatal(err)
	}
	px, py := CellOrigin(1, 0, s.Size)
	if r, g, b := out.At(px+5, py+5); r != 255 || g != 0 || b != 0 {
		t.Errorf("right cell: got (%d,%d,%d)", r, g, b)
	}
	if r, _, _ := out.At(5, 5); r != 0 {
		t.Errorf("left cell red: got %d", r)
	}
}

func TestTiles_OrderAndSize(t *testing.T) {
	tiles := make([]*raster.Image, 5)
	for i := range tiles {
		tiles[i] = raster.New(30+i, 20)
		tiles[i].Fill(uint8(i*40), 0, 0)
	}
	s := New(6)

	out, err := s.Tiles(context.Background(), tiles)
	if err != nil {
		t.Fatalf("tiles: %v", err)
	}
	for i, o := range out {
		if o.W != 6 || o.H != 6 {
			t.Fatalf("tile %d: got %dx%d", i, o.W, o.H)
		}
		if r, _, _ := o.At(3, 3); r != uint8(i*40) {
			t.Errorf("tile %d: red %d, want %d", i, r, i*40)
		}
	}
}

func TestZeroSize(t *testing.T) {
	s := New(0)
	if _, err := s.Base(raster.New(4, 4), grid.New(1, 1)); err == nil {
		t.Error("expected error for zero sample size")
	}
	if _, err := s.Tiles(context.Background(), nil); err == nil {
		t.Error("expected error for zero sample size")
	}
}
