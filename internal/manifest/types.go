package manifest

// Manifest is the report written next to a rendered mosaic.
type Manifest struct {
	Version     int        `json:"version"`
	GeneratedAt string     `json:"generated_at"`
	Profile     string     `json:"profile"`
	Base        ImageInfo  `json:"base"`
	Output      ImageInfo  `json:"output"`
	Grid        GridInfo   `json:"grid"`
	Pool        PoolInfo   `json:"pool"`
	BuildInfo   *BuildInfo `json:"build_info,omitempty"`
	Tiles       []Tile     `json:"tiles"` // indexed by tile id
	Cells       []Cell     `json:"cells"` // row-major
	Stats       Stats      `json:"stats"`
}

// ImageInfo locates an input or output image.
type ImageInfo struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format,omitempty"`
	Size   int64  `json:"size,omitempty"` // bytes on disk
}

// GridInfo records the layout parameters.
type GridInfo struct {
	CardsWide  int     `json:"cards_wide"`
	CardsTall  int     `json:"cards_tall"`
	SampleSize int     `json:"sample_size"`
	Aspect     float64 `json:"aspect"`
	FitTiles   bool    `json:"fit_tiles,omitempty"`
}

// PoolInfo describes the tile pool the build drew from.
type PoolInfo struct {
	Dir         string `json:"dir"`
	Loaded      int    `json:"loaded"`     // files decoded
	Tiles       int    `json:"tiles"`      // after duplicate padding
	Duplicates  int    `json:"duplicates"` // padded copies
	Seed        int64  `json:"seed,omitempty"`
	Fingerprint string `json:"fingerprint"`
}

// BuildInfo captures build-time parameters for diagnostics.
type BuildInfo struct {
	Workers   int   `json:"workers"`
	ElapsedMS int64 `json:"elapsed_ms"`
}

// Tile identifies one pool entry.
type Tile struct {
	Key  string `json:"key"`
	Path string `json:"path"`
	Hash string `json:"hash"` // first 16 hex chars of xxhash64 over pixels
}

// Cell is one grid position's assignment.
type Cell struct {
	Tile  int    `json:"tile"`
	Cost  uint32 `json:"cost"`
	Phase string `json:"phase"` // "unique" or "fallback"
}

// Stats aggregates assignment metrics.
type Stats struct {
	Cells         int     `json:"cells"`
	UniqueCells   int     `json:"unique_cells"`
	FallbackCells int     `json:"fallback_cells"`
	DistinctTiles int     `json:"distinct_tiles"`
	TotalCost     uint64  `json:"total_cost"`
	MeanCost      float64 `json:"mean_cost"`
	StdDevCost    float64 `json:"stddev_cost"`
	MedianCost    float64 `json:"median_cost"`
	P90Cost       float64 `json:"p90_cost"`
	MaxCost       uint32  `json:"max_cost"`
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1

// Phase names stored in Cell.Phase.
const (
	PhaseUnique   = "unique"
	PhaseFallback = "fallback"
)
