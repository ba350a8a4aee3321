package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/cardmosaic/internal/manifest"
	"github.com/AnyUserName/cardmosaic/internal/pool"
)

var validateCmd = &cobra.Command{
	Use:   "validate <mosaic_or_manifest>",
	Short: "Check a build manifest for consistency and that its files exist",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	path, err := resolveManifest(args[0])
	if err != nil {
		return err
	}
	m, err := manifest.ReadJSON(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	errors := validateManifest(m)
	if len(errors) == 0 {
		fmt.Println("  ✓ Manifest is valid")
		fmt.Printf("  ✓ %d cells, %d tiles, all files present\n", len(m.Cells), len(m.Tiles))
		return nil
	}

	fmt.Printf("  ✗ Manifest has %d error(s):\n", len(errors))
	for _, e := range errors {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errors))
}

func validateManifest(m *manifest.Manifest) []string {
	var errs []string

	g := m.Grid
	if g.CardsWide <= 0 || g.CardsTall <= 0 {
		errs = append(errs, fmt.Sprintf("invalid grid %dx%d", g.CardsWide, g.CardsTall))
	}
	if g.SampleSize <= 0 {
		errs = append(errs, fmt.Sprintf("invalid sample size %d", g.SampleSize))
	}
	if g.Aspect <= 0 {
		errs = append(errs, fmt.Sprintf("invalid aspect ratio %.4f", g.Aspect))
	}
	if len(m.Cells) != g.CardsWide*g.CardsTall {
		errs = append(errs, fmt.Sprintf("%d cells for a %dx%d grid", len(m.Cells), g.CardsWide, g.CardsTall))
	}
	if len(m.Tiles) == 0 {
		errs = append(errs, "no tiles")
	}

	// Check each cell.
	used := make(map[int]int, len(m.Tiles))
	fallback := false
	for i, c := range m.Cells {
		if c.Tile < 0 || c.Tile >= len(m.Tiles) {
			errs = append(errs, fmt.Sprintf("cell %d: tile %d out of range", i, c.Tile))
			continue
		}
		switch c.Phase {
		case manifest.PhaseUnique:
			if prev, ok := used[c.Tile]; ok {
				errs = append(errs, fmt.Sprintf("cell %d: tile %d already placed uniquely in cell %d", i, c.Tile, prev))
			}
			used[c.Tile] = i
		case manifest.PhaseFallback:
			fallback = true
		default:
			errs = append(errs, fmt.Sprintf("cell %d: unknown phase %q", i, c.Phase))
		}
	}
	// Fallback cells only exist once every tile has been placed.
	if fallback && len(used) != len(m.Tiles) {
		errs = append(errs, fmt.Sprintf("fallback cells present but only %d of %d tiles placed uniquely", len(used), len(m.Tiles)))
	}
	if !fallback && len(m.Cells) > len(m.Tiles) && len(m.Tiles) > 0 {
		errs = append(errs, fmt.Sprintf("%d cells but %d tiles and no fallback cells", len(m.Cells), len(m.Tiles)))
	}

	// Check tile files.
	seenPaths := map[string]bool{}
	for i, t := range m.Tiles {
		if t.Hash == "" {
			errs = append(errs, fmt.Sprintf("tile %d (%s): missing hash", i, t.Key))
		}
		if seenPaths[t.Path] {
			continue // padded duplicate
		}
		seenPaths[t.Path] = true
		if _, err := os.Stat(t.Path); err != nil {
			errs = append(errs, fmt.Sprintf("tile %d (%s): file not found: %s", i, t.Key, t.Path))
		}
	}

	hashes := make([]string, len(m.Tiles))
	for i, t := range m.Tiles {
		hashes[i] = t.Hash
	}
	if fp := (&pool.Pool{Hashes: hashes}).Fingerprint(); fp != m.Pool.Fingerprint {
		errs = append(errs, fmt.Sprintf("pool fingerprint mismatch: manifest=%s, tiles=%s", m.Pool.Fingerprint, fp))
	}

	if info, err := os.Stat(m.Output.Path); err != nil {
		errs = append(errs, fmt.Sprintf("output not found: %s", m.Output.Path))
	} else if m.Output.Size > 0 && info.Size() != m.Output.Size {
		errs = append(errs, fmt.Sprintf("output size mismatch: manifest=%d, disk=%d", m.Output.Size, info.Size()))
	}

	// Verify stats consistency.
	total := m.Stats
	recomputed := *m
	recomputed.ComputeStats()
	if recomputed.Stats.TotalCost != total.TotalCost {
		errs = append(errs, fmt.Sprintf("stats.total_cost mismatch: %d != %d", total.TotalCost, recomputed.Stats.TotalCost))
	}
	if recomputed.Stats.UniqueCells != total.UniqueCells || recomputed.Stats.FallbackCells != total.FallbackCells {
		errs = append(errs, "stats phase counts do not match cells")
	}

	return errs
}
