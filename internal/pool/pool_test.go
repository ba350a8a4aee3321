package pool

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_SortedAndDecoded(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), color.NRGBA{G: 255, A: 255})
	writePNG(t, filepath.Join(dir, "a.png"), color.NRGBA{R: 255, A: 255})
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644)
	os.WriteFile(filepath.Join(dir, ".hidden.png"), []byte("skip"), 0o644)
	os.Mkdir(filepath.Join(dir, "sub"), 0o755)

	p, err := Load(dir, 2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Len() != 2 {
		t.Fatalf("tiles: got %d, want 2", p.Len())
	}
	if p.Sources[0].Key != "a" || p.Sources[1].Key != "b" {
		t.Errorf("order: got %s, %s", p.Sources[0].Key, p.Sources[1].Key)
	}
	if r, _, _ := p.Tiles[0].At(0, 0); r != 255 {
		t.Errorf("tile a red: got %d", r)
	}
	if p.Sources[0].Format != "png" {
		t.Errorf("format: got %q", p.Sources[0].Format)
	}
	if p.Hashes[0] == p.Hashes[1] {
		t.Error("distinct tiles share a hash")
	}
}

func TestLoad_UndecodableIsFatal(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "ok.png"), color.NRGBA{A: 255})
	os.WriteFile(filepath.Join(dir, "broken.jpg"), []byte("garbage"), 0o644)

	if _, err := Load(dir, 0); err == nil {
		t.Fatal("expected decode failure")
	}
}

func TestLoad_Empty(t *testing.T) {
	if _, err := Load(t.TempDir(), 1); !errors.Is(err, ErrEmpty) {
		t.Fatalf("got %v, want ErrEmpty", err)
	}
}

func TestPadDuplicates_Seeded(t *testing.T) {
	dir := t.TempDir()
	for i, name := range []string{"a.png", "b.png", "c.png", "d.png"} {
		writePNG(t, filepath.Join(dir, name), color.NRGBA{R: uint8(i * 60), A: 255})
	}
	load := func() *Pool {
		p, err := Load(dir, 1)
		if err != nil {
			t.Fatal(err)
		}
		return p
	}

	p1, p2 := load(), load()
	p1.PadDuplicates(2, rand.New(rand.NewSource(9)))
	p2.PadDuplicates(2, rand.New(rand.NewSource(9)))

	if p1.Len() != 6 || len(p1.Sources) != 6 || len(p1.Hashes) != 6 {
		t.Fatalf("padded length: got %d", p1.Len())
	}
	for i := range p1.Sources {
		if p1.Sources[i].Key != p2.Sources[i].Key {
			t.Fatalf("index %d: %s vs %s", i, p1.Sources[i].Key, p2.Sources[i].Key)
		}
	}
	for i := 0; i < 2; i++ {
		if p1.Sources[4+i].Key != p1.Sources[i].Key || p1.Tiles[4+i] != p1.Tiles[i] {
			t.Errorf("duplicate %d does not mirror tile %d", 4+i, i)
		}
	}

	p3 := load()
	p3.PadDuplicates(10, rand.New(rand.NewSource(1)))
	if p3.Len() != 8 {
		t.Errorf("capped padding: got %d, want 8", p3.Len())
	}
}
