package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// New creates an empty manifest with defaults.
func New(profileName string) *Manifest {
	return &Manifest{
		Version:     SupportedManifestVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Profile:     profileName,
	}
}

// ComputeStats recalculates aggregate statistics from cells.
func (m *Manifest) ComputeStats() {
	s := Stats{Cells: len(m.Cells)}
	if len(m.Cells) == 0 {
		m.Stats = s
		return
	}

	costs := make([]float64, len(m.Cells))
	seen := make(map[int]bool, len(m.Tiles))
	for i, c := range m.Cells {
		switch c.Phase {
		case PhaseUnique:
			s.UniqueCells++
		case PhaseFallback:
			s.FallbackCells++
		}
		seen[c.Tile] = true
		s.TotalCost += uint64(c.Cost)
		s.MaxCost = max(s.MaxCost, c.Cost)
		costs[i] = float64(c.Cost)
	}
	s.DistinctTiles = len(seen)

	s.MeanCost, s.StdDevCost = stat.MeanStdDev(costs, nil)
	if len(costs) < 2 {
		s.StdDevCost = 0
	}
	sort.Float64s(costs)
	s.MedianCost = stat.Quantile(0.5, stat.Empirical, costs, nil)
	s.P90Cost = stat.Quantile(0.9, stat.Empirical, costs, nil)
	m.Stats = s
}

// WriteJSON serializes the manifest to a JSON file with stable ordering.
func WriteJSON(m *Manifest, path string) error {
	m.ComputeStats()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON loads a manifest and checks its schema version.
func ReadJSON(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if m.Version != SupportedManifestVersion {
		return nil, fmt.Errorf("%s: unsupported manifest version %d (want %d)", path, m.Version, SupportedManifestVersion)
	}
	return &m, nil
}

// Path returns the default manifest location for an output image.
func Path(output string) string {
	return output + ".json"
}
