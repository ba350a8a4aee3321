package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/cardmosaic/internal/manifest"
)

var statsTop int

var statsCmd = &cobra.Command{
	Use:   "stats <mosaic_or_manifest>",
	Short: "Display assignment statistics for a built mosaic",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsTop, "top", 5, "list this many most expensive cells")
	rootCmd.AddCommand(statsCmd)
}

// resolveManifest accepts either the report itself or the image it
// describes.
func resolveManifest(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return path, nil
	}
	mp := manifest.Path(path)
	if _, err := os.Stat(mp); err != nil {
		return "", fmt.Errorf("no manifest next to %s: %w", path, err)
	}
	return mp, nil
}

func runStats(_ *cobra.Command, args []string) error {
	path, err := resolveManifest(args[0])
	if err != nil {
		return err
	}
	m, err := manifest.ReadJSON(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	printStats(m)
	return nil
}

func printStats(m *manifest.Manifest) {
	fmt.Println()
	fmt.Printf("  Manifest version: %d\n", m.Version)
	fmt.Printf("  Generated:        %s\n", m.GeneratedAt)
	fmt.Printf("  Profile:          %s\n", m.Profile)
	if m.BuildInfo != nil {
		fmt.Printf("  Workers:          %d\n", m.BuildInfo.Workers)
		fmt.Printf("  Build time:       %d ms\n", m.BuildInfo.ElapsedMS)
	}
	fmt.Println()

	g := m.Grid
	fmt.Printf("  Base:             %s (%d × %d)\n", m.Base.Path, m.Base.Width, m.Base.Height)
	fmt.Printf("  Output:           %s (%d × %d, %s)\n", m.Output.Path, m.Output.Width, m.Output.Height, formatBytes(m.Output.Size))
	fmt.Printf("  Grid:             %d × %d, sample %d px, aspect %.4f\n", g.CardsWide, g.CardsTall, g.SampleSize, g.Aspect)
	fmt.Printf("  Pool:             %d tiles from %s (fingerprint %s)\n", m.Pool.Tiles, m.Pool.Dir, m.Pool.Fingerprint)
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Cells:            %d\n", s.Cells)
	fmt.Printf("  Unique / fallback: %d / %d\n", s.UniqueCells, s.FallbackCells)
	fmt.Printf("  Distinct tiles:   %d\n", s.DistinctTiles)
	fmt.Printf("  Total cost:       %d\n", s.TotalCost)
	fmt.Printf("  Mean ± stddev:    %.1f ± %.1f\n", s.MeanCost, s.StdDevCost)
	fmt.Printf("  Median / p90 / max: %.0f / %.0f / %d\n", s.MedianCost, s.P90Cost, s.MaxCost)
	fmt.Println()

	// Per-row mean cost shows where the grid struggled.
	if g.CardsWide > 0 && len(m.Cells) == g.CardsWide*g.CardsTall {
		fmt.Println("  Row mean cost:")
		for y := 0; y < g.CardsTall; y++ {
			var sum uint64
			for _, c := range m.Cells[y*g.CardsWide : (y+1)*g.CardsWide] {
				sum += uint64(c.Cost)
			}
			fmt.Printf("    %4d  %10.0f\n", y, float64(sum)/float64(g.CardsWide))
		}
		fmt.Println()
	}

	if statsTop > 0 && len(m.Cells) > 0 {
		idx := make([]int, len(m.Cells))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return m.Cells[idx[a]].Cost > m.Cells[idx[b]].Cost
		})
		n := min(statsTop, len(idx))
		fmt.Printf("  Top %d most expensive cells:\n", n)
		for _, i := range idx[:n] {
			c := m.Cells[i]
			key := "?"
			if c.Tile >= 0 && c.Tile < len(m.Tiles) {
				key = m.Tiles[c.Tile].Key
			}
			x, y := i, 0
			if g.CardsWide > 0 {
				x, y = i%g.CardsWide, i/g.CardsWide
			}
			fmt.Printf("    (%3d,%3d)  %-38s %8d  %s\n", x, y, truncKey(key, 38), c.Cost, c.Phase)
		}
		fmt.Println()
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
