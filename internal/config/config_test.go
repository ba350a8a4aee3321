package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mosaic.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_OverDefaults(t *testing.T) {
	path := writeConfig(t, `
profile: draft
base: portrait.jpg
cards_wide: 30
retry:
  max_attempts: 3
  base_delay: 100ms
  max_delay: 2s
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Base != "portrait.jpg" || c.Output != "mosaic.png" {
		t.Errorf("paths: got base=%q output=%q", c.Base, c.Output)
	}
	if c.CardsWide != 30 {
		t.Errorf("cards_wide: got %d, want 30", c.CardsWide)
	}
	// unset fields come from the draft profile
	if c.SampleSize != 9 || c.OutputWidth != 1200 {
		t.Errorf("profile fill: got S=%d width=%d", c.SampleSize, c.OutputWidth)
	}
	p := c.RetryPolicy()
	if p.MaxAttempts != 3 || p.BaseDelay != 100*time.Millisecond || p.MaxDelay != 2*time.Second {
		t.Errorf("retry: got %+v", p)
	}
}

func TestFinalize_Rejects(t *testing.T) {
	c := Default()
	c.Profile = "huge"
	c.Aspect = -1
	c.Quality = 101
	err := c.Finalize()
	if err == nil {
		t.Fatal("invalid config accepted")
	}
	for _, want := range []string{"huge", "aspect", "quality"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}
