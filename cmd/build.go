package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/cardmosaic/internal/config"
	"github.com/AnyUserName/cardmosaic/internal/manifest"
	"github.com/AnyUserName/cardmosaic/internal/pipeline"
)

var (
	buildBase        string
	buildTiles       string
	buildOut         string
	buildProfile     string
	buildCardsWide   int
	buildFit         bool
	buildSampleSize  int
	buildWidth       int
	buildAspect      float64
	buildQuality     int
	buildWorkers     int
	buildDuplicates  int
	buildSeed        int64
	buildDumpMatched string
	buildNoManifest  bool
)

var buildCmd = &cobra.Command{
	Use:   "build [base_image]",
	Short: "Render a photomosaic of a base image from a tile directory",
	Long: `Loads every image in the tile directory, sizes a grid over the base
image, matches the base's brightness to the tile pool, ranks every tile
for every cell and renders the mosaic.

Each tile is placed at most once until the pool runs out; the remaining
cells then take their best tile again. A JSON report is written next to
the output as <output>.json.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringVarP(&buildBase, "base", "b", "", "base image")
	f.StringVarP(&buildTiles, "cards", "d", "cards", "tile directory")
	f.StringVarP(&buildOut, "out", "o", "mosaic.png", "output image (.png, .jpg)")
	f.StringVarP(&buildProfile, "profile", "p", "standard", "size profile: draft, standard, poster")
	f.IntVar(&buildCardsWide, "cards-wide", 0, "grid columns (0 = profile default)")
	f.BoolVar(&buildFit, "fit", false, "size the grid to the number of tiles instead of --cards-wide")
	f.IntVarP(&buildSampleSize, "sample-size", "s", 0, "scoring sample edge in pixels (0 = profile default)")
	f.IntVarP(&buildWidth, "width", "W", 0, "output width in pixels (0 = profile default)")
	f.Float64Var(&buildAspect, "aspect", 0, "tile width/height (0 = 4/3)")
	f.IntVarP(&buildQuality, "quality", "q", 0, "JPEG quality 1-100 (0 = encoder default)")
	f.IntVarP(&buildWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	f.IntVar(&buildDuplicates, "duplicates", 0, "pad the pool with this many repeated tiles")
	f.Int64Var(&buildSeed, "seed", 1, "shuffle seed for --duplicates")
	f.StringVar(&buildDumpMatched, "dump-matched", "", "also write the brightness-matched base sample here")
	f.BoolVar(&buildNoManifest, "no-manifest", false, "skip the JSON report")
	rootCmd.AddCommand(buildCmd)
}

func buildOverrides(cmd *cobra.Command, args []string) func(c *config.Config) {
	return func(c *config.Config) {
		f := cmd.Flags()
		set := func(name string) bool { return f.Changed(name) }
		if len(args) == 1 {
			c.Base = args[0]
		} else if set("base") {
			c.Base = buildBase
		}
		if set("cards") {
			c.Tiles = buildTiles
		}
		if set("out") {
			c.Output = buildOut
		}
		if set("profile") {
			c.Profile = buildProfile
		}
		if set("cards-wide") {
			c.CardsWide = buildCardsWide
		}
		if set("fit") {
			c.FitTiles = buildFit
		}
		if set("sample-size") {
			c.SampleSize = buildSampleSize
		}
		if set("width") {
			c.OutputWidth = buildWidth
		}
		if set("aspect") {
			c.Aspect = buildAspect
		}
		if set("quality") {
			c.Quality = buildQuality
		}
		if set("workers") {
			c.Workers = buildWorkers
		}
		if set("duplicates") {
			c.Duplicates = buildDuplicates
		}
		if set("seed") {
			c.Seed = buildSeed
		}
		if set("dump-matched") {
			c.DumpMatched = buildDumpMatched
		}
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	start := time.Now()

	c, err := loadConfig(buildOverrides(cmd, args))
	if err != nil {
		return err
	}
	if c.Base == "" {
		return fmt.Errorf("no base image: pass it as an argument or with --base")
	}

	log.Info("build", "base", c.Base, "cards", c.Tiles, "out", c.Output, "profile", c.Profile)

	if dir := filepath.Dir(c.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	p := pipeline.New(pipeline.Config{
		BasePath:    c.Base,
		TileDir:     c.Tiles,
		OutputPath:  c.Output,
		Profile:     c.SizeProfile(),
		FitTiles:    c.FitTiles,
		Workers:     c.Workers,
		Quality:     c.Quality,
		Duplicates:  c.Duplicates,
		Seed:        c.Seed,
		DumpMatched: c.DumpMatched,
		Logger:      log,
	})

	m, err := p.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	manifestPath := ""
	if !buildNoManifest {
		manifestPath = manifest.Path(c.Output)
		if err := manifest.WriteJSON(m, manifestPath); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
	}

	printBuildReport(m, manifestPath, time.Since(start))
	return nil
}

func printBuildReport(m *manifest.Manifest, manifestPath string, elapsed time.Duration) {
	s := m.Stats
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║            cardmosaic build complete             ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Grid:        %d × %d cards (%d cells)\n", m.Grid.CardsWide, m.Grid.CardsTall, s.Cells)
	fmt.Printf("  Pool:        %d tiles", m.Pool.Tiles)
	if m.Pool.Duplicates > 0 {
		fmt.Printf(" (%d padded duplicates)", m.Pool.Duplicates)
	}
	fmt.Println()
	fmt.Printf("  Unique:      %d cells\n", s.UniqueCells)
	if s.FallbackCells > 0 {
		fmt.Printf("  Fallback:    %d cells (pool exhausted)\n", s.FallbackCells)
	}
	fmt.Printf("  Mean cost:   %.0f  (median %.0f, p90 %.0f)\n", s.MeanCost, s.MedianCost, s.P90Cost)
	fmt.Printf("  Output:      %s  %d × %d  %s\n", m.Output.Path, m.Output.Width, m.Output.Height, formatBytes(m.Output.Size))
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	if manifestPath != "" {
		fmt.Printf("  Manifest:    %s\n", manifestPath)
	}
	fmt.Println()
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
