package encoder

import (
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestForPath(t *testing.T) {
	r := NewRegistry()
	cases := map[string]string{
		"out.png":     "png",
		"OUT.PNG":     "png",
		"mosaic.jpg":  "jpeg",
		"mosaic.jpeg": "jpeg",
	}
	for path, want := range cases {
		enc, err := r.ForPath(path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if enc.Format() != want {
			t.Errorf("%s: got %s, want %s", path, enc.Format(), want)
		}
	}
	if _, err := r.ForPath("mosaic.gif"); err == nil {
		t.Error("gif accepted")
	}
}

func TestWriteFile_Decodes(t *testing.T) {
	r := NewRegistry()
	img := image.NewRGBA(image.Rect(0, 0, 7, 5))
	for _, name := range []string{"a.png", "b.jpg"} {
		path := filepath.Join(t.TempDir(), name)
		if err := r.WriteFile(path, img, 0); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		cfg, _, err := image.DecodeConfig(f)
		f.Close()
		if err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		if cfg.Width != 7 || cfg.Height != 5 {
			t.Errorf("%s: got %dx%d", name, cfg.Width, cfg.Height)
		}
	}
}
