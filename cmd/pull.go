package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/cardmosaic/internal/config"
	"github.com/AnyUserName/cardmosaic/internal/pipeline"
	"github.com/AnyUserName/cardmosaic/internal/tilecache"
	"github.com/AnyUserName/cardmosaic/internal/tilesource"
)

var (
	pullDir       string
	pullAspect    float64
	pullWorkers   int
	pullAPI       string
	pullAttempts  int
	pullBaseDelay time.Duration
	pullMaxDelay  time.Duration
)

var pullCmd = &cobra.Command{
	Use:   "pull <n>",
	Short: "Download n new random card art crops into the tile directory",
	Long: `Draws random cards from Scryfall, keeps those with the normal layout,
crops their art to the tile aspect ratio and stores it as <dir>/<id>.png.

Cards already in the directory, or whose art is pixel-identical to a
stored tile, are skipped and do not count toward n.`,
	Args: cobra.ExactArgs(1),
	RunE: runPull,
}

func init() {
	f := pullCmd.Flags()
	f.StringVarP(&pullDir, "dir", "d", "cards", "tile directory")
	f.Float64Var(&pullAspect, "aspect", 0, "tile width/height (0 = 4/3)")
	f.IntVarP(&pullWorkers, "workers", "w", 4, "concurrent downloads")
	f.StringVar(&pullAPI, "api", tilesource.DefaultBaseURL, "Scryfall API base URL")
	f.IntVar(&pullAttempts, "attempts", tilesource.DefaultRetryPolicy.MaxAttempts, "fetch attempts per card")
	f.DurationVar(&pullBaseDelay, "base-delay", tilesource.DefaultRetryPolicy.BaseDelay, "first retry delay")
	f.DurationVar(&pullMaxDelay, "max-delay", tilesource.DefaultRetryPolicy.MaxDelay, "retry delay cap")
	rootCmd.AddCommand(pullCmd)
}

func runPull(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return fmt.Errorf("tile count %q must be a positive integer", args[0])
	}

	c, err := loadConfig(func(c *config.Config) {
		f := cmd.Flags()
		if f.Changed("dir") {
			c.Tiles = pullDir
		}
		if f.Changed("aspect") {
			c.Aspect = pullAspect
		}
		if f.Changed("workers") || c.Workers == 0 {
			c.Workers = pullWorkers
		}
		if f.Changed("attempts") {
			c.Retry.MaxAttempts = pullAttempts
		}
		if f.Changed("base-delay") {
			c.Retry.BaseDelay = pullBaseDelay
		}
		if f.Changed("max-delay") {
			c.Retry.MaxDelay = pullMaxDelay
		}
	})
	if err != nil {
		return err
	}

	store, err := tilecache.Open(c.Tiles, c.Aspect)
	if err != nil {
		return err
	}
	src := tilesource.NewScryfall()
	src.BaseURL = pullAPI

	start := time.Now()
	rep, err := pipeline.Pull(cmd.Context(), pipeline.PullConfig{
		Count:   n,
		Store:   store,
		Source:  src,
		Retry:   c.RetryPolicy(),
		Workers: c.Workers,
		Logger:  log,
	})
	fmt.Println()
	fmt.Printf("  Saved:       %d new tiles in %s\n", len(rep.Saved), store.Dir)
	fmt.Printf("  Drawn:       %d cards (%d already cached, %d duplicate art)\n", rep.Draws, rep.Cached, rep.Same)
	fmt.Printf("  Pool size:   %d tiles\n", rep.Present+len(rep.Saved))
	fmt.Printf("  Time:        %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Println()
	return err
}
