package profile

// DefaultAspect is the width/height of Scryfall art crops after cropping.
const DefaultAspect = 4.0 / 3.0

// Profile bundles the size parameters of a mosaic build.
type Profile struct {
	Name        string
	SampleSize  int     // S: edge of one cell's scoring sample
	CardsWide   int     // grid columns in fixed-width mode
	OutputWidth int     // rendered width in pixels
	Aspect      float64 // tile width / tile height
}

// Built-in profiles.
var profiles = map[string]Profile{
	"draft": {
		Name:        "draft",
		SampleSize:  9,
		CardsWide:   48,
		OutputWidth: 1200,
		Aspect:      DefaultAspect,
	},
	"standard": {
		Name:        "standard",
		SampleSize:  18,
		CardsWide:   72,
		OutputWidth: 1800,
		Aspect:      DefaultAspect,
	},
	"poster": {
		Name:        "poster",
		SampleSize:  36,
		CardsWide:   120,
		OutputWidth: 4800,
		Aspect:      DefaultAspect,
	},
}

// Get returns a profile by name. Falls back to standard if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles["standard"]
	p.Name = name // preserve requested name
	return p
}

// Known reports whether name is a built-in profile.
func Known(name string) bool {
	_, ok := profiles[name]
	return ok
}

// CellFootprint is the on-grid width and height of one tile in pixels.
func (p Profile) CellFootprint() (w, h float64) {
	w = float64(p.OutputWidth) / float64(p.CardsWide)
	return w, w / p.Aspect
}
