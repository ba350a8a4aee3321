package encoder

import (
	"bufio"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Registry maps file extensions to encoders.
type Registry struct {
	byExt map[string]Encoder
}

// NewRegistry registers the built-in encoders.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Encoder)}
	for _, enc := range []Encoder{&PNGEncoder{}, &JPEGEncoder{}} {
		r.Register(enc)
	}
	return r
}

// Register adds enc under each of its extensions, replacing earlier ones.
func (r *Registry) Register(enc Encoder) {
	for _, ext := range enc.Extensions() {
		r.byExt[strings.ToLower(ext)] = enc
	}
}

// ForPath returns the encoder selected by the extension of path.
func (r *Registry) ForPath(path string) (Encoder, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if enc, ok := r.byExt[ext]; ok {
		return enc, nil
	}
	return nil, fmt.Errorf("no encoder for %q (supported: %s)", filepath.Ext(path), r.String())
}

// WriteFile encodes img into path, creating or truncating it.
func (r *Registry) WriteFile(path string, img image.Image, quality int) error {
	enc, err := r.ForPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := enc.Encode(w, img, quality); err != nil {
		f.Close()
		return fmt.Errorf("encode %s as %s: %w", path, enc.Format(), err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// String lists the supported extensions.
func (r *Registry) String() string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}
