package composite

import (
	"context"
	"testing"

	"github.com/AnyUserName/cardmosaic/internal/grid"
	"github.com/AnyUserName/cardmosaic/internal/raster"
)

func TestBounds_TileOutputExactly(t *testing.T) {
	shapes := []struct {
		wide, tall, width int
		aspect            float64
	}{
		{72, 72, 1800, 4.0 / 3.0},
		{7, 5, 1000, 4.0 / 3.0},
		{13, 11, 997, 0.71},
		{3, 9, 50, 1.7},
	}
	for _, s := range shapes {
		g := grid.New(s.wide, s.tall)
		l, err := NewLayout(g, s.width, s.aspect)
		if err != nil {
			t.Fatal(err)
		}

		cover := make([]int, l.Width*l.Height)
		for y := 0; y < g.CardsTall; y++ {
			for x := 0; x < g.CardsWide; x++ {
				b := l.Bounds(x, y)
				if b.Min.X < 0 || b.Min.Y < 0 || b.Max.X > l.Width || b.Max.Y > l.Height {
					t.Fatalf("%dx%d: cell (%d,%d) %v outside %dx%d", s.wide, s.tall, x, y, b, l.Width, l.Height)
				}
				for py := b.Min.Y; py < b.Max.Y; py++ {
					for px := b.Min.X; px < b.Max.X; px++ {
						cover[py*l.Width+px]++
					}
				}
			}
		}
		for i, c := range cover {
			if c != 1 {
				t.Fatalf("%dx%d: pixel (%d,%d) covered %d times", s.wide, s.tall, i%l.Width, i/l.Width, c)
			}
		}
	}
}

func TestNewLayout_Height(t *testing.T) {
	l, err := NewLayout(grid.New(72, 72), 1800, 4.0/3.0)
	if err != nil {
		t.Fatal(err)
	}
	if l.Height != 1350 {
		t.Errorf("height: got %d, want 1350", l.Height)
	}
	if _, err := NewLayout(grid.New(2, 2), 0, 1); err == nil {
		t.Error("zero width accepted")
	}
}

func TestBilinear(t *testing.T) {
	src := raster.New(2, 1)
	src.Set(0, 0, 0, 0, 0)
	src.Set(1, 0, 200, 100, 50)

	if r, g, b := Bilinear(src, 0.5, 0); r != 100 || g != 50 || b != 25 {
		t.Errorf("midpoint: got (%d,%d,%d)", r, g, b)
	}
	if r, _, _ := Bilinear(src, -3, -3); r != 0 {
		t.Errorf("clamped low: got %d", r)
	}
	if r, _, _ := Bilinear(src, 7, 4); r != 200 {
		t.Errorf("clamped high: got %d", r)
	}
	if r, _, _ := Bilinear(src, 1, 0); r != 200 {
		t.Errorf("exact pixel: got %d", r)
	}
}

func TestRender_SolidTiles(t *testing.T) {
	ctx := context.Background()
	tiles := []*raster.Image{raster.New(10, 10), raster.New(10, 10)}
	tiles[0].Fill(255, 0, 0)
	tiles[1].Fill(0, 0, 255)

	g := grid.New(2, 1)
	g.Cells[0], g.Cells[1] = 1, 0
	l, err := NewLayout(g, 41, 1)
	if err != nil {
		t.Fatal(err)
	}
	draws, err := DrawTiles(ctx, tiles, g.Cells, l)
	if err != nil {
		t.Fatalf("draw tiles: %v", err)
	}
	if draws[0].W != 2*21 || draws[0].H != 2*21 {
		t.Errorf("draw tile size: got %dx%d", draws[0].W, draws[0].H)
	}

	out, err := Render(ctx, g, draws, l)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out.Bounds().Dx() != 41 || out.Bounds().Dy() != 21 {
		t.Fatalf("output: got %v", out.Bounds())
	}
	left := out.RGBAAt(5, 5)
	right := out.RGBAAt(35, 5)
	if left.B != 255 || left.R != 0 {
		t.Errorf("left cell: got %+v", left)
	}
	if right.R != 255 || right.B != 0 {
		t.Errorf("right cell: got %+v", right)
	}
}

func TestDrawTiles_OnlyAssigned(t *testing.T) {
	tiles := []*raster.Image{raster.New(4, 4), raster.New(4, 4), raster.New(4, 4)}
	g := grid.New(1, 1)
	g.Cells[0] = 2
	l, _ := NewLayout(g, 8, 1)
	draws, err := DrawTiles(context.Background(), tiles, g.Cells, l)
	if err != nil {
		t.Fatal(err)
	}
	if draws[0] != nil || draws[1] != nil || draws[2] == nil {
		t.Errorf("draws: got %v", draws)
	}
	if _, err := DrawTiles(context.Background(), tiles, []int{5}, l); err == nil {
		t.Error("out-of-range tile accepted")
	}
}
