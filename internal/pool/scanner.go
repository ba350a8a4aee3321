package pool

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source is one tile file found on disk.
type Source struct {
	// Path is the file location on disk.
	Path string
	// Key is the file name without extension; for cached tiles, the card id.
	Key string
	// Format is the normalised source format (png, jpeg, webp, ...).
	Format string
	Size   int64
}

// imageExtensions lists recognized image file extensions.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// Scan lists the image files directly inside dir, sorted by name so tile
// indices are stable between runs. Hidden files are skipped.
func Scan(dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var sources []Source
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !imageExtensions[ext] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}

		format := strings.TrimPrefix(ext, ".")
		switch format {
		case "jpg":
			format = "jpeg"
		case "tif":
			format = "tiff"
		}

		sources = append(sources, Source{
			Path:   filepath.Join(dir, e.Name()),
			Key:    strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			Format: format,
			Size:   info.Size(),
		})
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })
	return sources, nil
}
