package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/AnyUserName/cardmosaic/internal/profile"
	"github.com/AnyUserName/cardmosaic/internal/tilesource"
)

/* Example config file ...

profile: standard
tiles: ./cards
base: portrait.jpg
output: mosaic.png
aspect: 1.3333
cards_wide: 72
sample_size: 18
output_width: 1800
workers: 8
duplicates: 0
seed: 1

retry:
  max_attempts: 8
  base_delay: 250ms
  max_delay: 10s

*/

// Retry mirrors tilesource.RetryPolicy in a YAML-friendly shape.
type Retry struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
}

// Config holds the settings shared by build and pull.
type Config struct {
	Profile     string  `yaml:"profile"`
	Tiles       string  `yaml:"tiles"`
	Base        string  `yaml:"base"`
	Output      string  `yaml:"output"`
	Aspect      float64 `yaml:"aspect"`
	CardsWide   int     `yaml:"cards_wide"`
	FitTiles    bool    `yaml:"fit_tiles"` // size the grid from the pool instead of CardsWide
	SampleSize  int     `yaml:"sample_size"`
	OutputWidth int     `yaml:"output_width"`
	Quality     int     `yaml:"quality"`
	Workers     int     `yaml:"workers"`
	Duplicates  int     `yaml:"duplicates"`
	Seed        int64   `yaml:"seed"`
	DumpMatched string  `yaml:"dump_matched"`
	Retry       Retry   `yaml:"retry"`
}

// Default returns the built-in configuration. Size fields are left zero so
// Finalize can fill them from the profile.
func Default() Config {
	p := tilesource.DefaultRetryPolicy
	return Config{
		Profile: "standard",
		Tiles:   "cards",
		Output:  "mosaic.png",
		Seed:    1,
		Retry: Retry{
			MaxAttempts: p.MaxAttempts,
			BaseDelay:   p.BaseDelay,
			MaxDelay:    p.MaxDelay,
		},
	}
}

// Read parses a YAML file over the defaults without validating it, so
// command line flags can still be applied before Finalize.
func Read(filename string) (Config, error) {
	c := Default()

	contents, err := os.ReadFile(filename)
	if err != nil {
		return c, fmt.Errorf("read '%s': %w", filename, err)
	}
	if err := yaml.Unmarshal(contents, &c); err != nil {
		return c, fmt.Errorf("parse '%s': %w", filename, err)
	}
	return c, nil
}

// Load reads a YAML file over the defaults and finalizes the result.
func Load(filename string) (Config, error) {
	c, err := Read(filename)
	if err != nil {
		return c, err
	}
	return c, c.Finalize()
}

// Finalize fills unset size fields from the profile and sanity checks
// the rest.
func (c *Config) Finalize() error {
	if c.Profile == "" {
		c.Profile = "standard"
	}
	p := profile.Get(c.Profile)
	if c.Aspect == 0 {
		c.Aspect = p.Aspect
	}
	if c.CardsWide == 0 {
		c.CardsWide = p.CardsWide
	}
	if c.SampleSize == 0 {
		c.SampleSize = p.SampleSize
	}
	if c.OutputWidth == 0 {
		c.OutputWidth = p.OutputWidth
	}

	var errs []error
	if !profile.Known(c.Profile) {
		errs = append(errs, fmt.Errorf("no profile named '%s'", c.Profile))
	}
	if c.Aspect <= 0 {
		errs = append(errs, fmt.Errorf("aspect %v must be positive", c.Aspect))
	}
	if c.CardsWide <= 0 {
		errs = append(errs, fmt.Errorf("cards_wide %d must be positive", c.CardsWide))
	}
	if c.SampleSize <= 0 {
		errs = append(errs, fmt.Errorf("sample_size %d must be positive", c.SampleSize))
	}
	if c.OutputWidth <= 0 {
		errs = append(errs, fmt.Errorf("output_width %d must be positive", c.OutputWidth))
	}
	if c.Quality < 0 || c.Quality > 100 {
		errs = append(errs, fmt.Errorf("quality %d out of range 0-100", c.Quality))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d must not be negative", c.Workers))
	}
	if c.Duplicates < 0 {
		errs = append(errs, fmt.Errorf("duplicates %d must not be negative", c.Duplicates))
	}
	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("retry.max_attempts %d must be positive", c.Retry.MaxAttempts))
	}
	if c.Retry.BaseDelay < 0 || c.Retry.MaxDelay < c.Retry.BaseDelay {
		errs = append(errs, fmt.Errorf("retry delays %v..%v invalid", c.Retry.BaseDelay, c.Retry.MaxDelay))
	}
	return errors.Join(errs...)
}

// SizeProfile returns the size parameters as a profile.Profile.
func (c Config) SizeProfile() profile.Profile {
	return profile.Profile{
		Name:        c.Profile,
		SampleSize:  c.SampleSize,
		CardsWide:   c.CardsWide,
		OutputWidth: c.OutputWidth,
		Aspect:      c.Aspect,
	}
}

// RetryPolicy converts the retry section.
func (c Config) RetryPolicy() tilesource.RetryPolicy {
	return tilesource.RetryPolicy{
		MaxAttempts: c.Retry.MaxAttempts,
		BaseDelay:   c.Retry.BaseDelay,
		MaxDelay:    c.Retry.MaxDelay,
	}
}
