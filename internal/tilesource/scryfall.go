// Package tilesource fetches random card art to use as mosaic tiles.
package tilesource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultBaseURL is the public Scryfall API.
const DefaultBaseURL = "https://api.scryfall.com"

// AcceptedLayout is the only card layout whose art crop is used.
const AcceptedLayout = "normal"

// ErrRejectedLayout is returned for cards whose layout is not accepted.
var ErrRejectedLayout = errors.New("tilesource: card layout rejected")

// Source yields one random tile and its unique id per call.
type Source interface {
	Fetch(ctx context.Context) (image.Image, uuid.UUID, error)
}

type imageURIs struct {
	ArtCrop string `json:"art_crop"`
}

// card is the subset of a Scryfall card object used here.
type card struct {
	ID        string     `json:"id"`
	Layout    string     `json:"layout"`
	ImageURIs *imageURIs `json:"image_uris"`
}

// Scryfall draws random cards from the Scryfall API.
type Scryfall struct {
	BaseURL   string
	Client    *http.Client
	UserAgent string
}

// NewScryfall returns a client for the public API.
func NewScryfall() *Scryfall {
	return &Scryfall{
		BaseURL:   DefaultBaseURL,
		Client:    &http.Client{Timeout: 30 * time.Second},
		UserAgent: "cardmosaic/0.1",
	}
}

// Fetch draws one random card and downloads its art crop.
func (s *Scryfall) Fetch(ctx context.Context) (image.Image, uuid.UUID, error) {
	var c card
	if err := s.getJSON(ctx, strings.TrimRight(s.BaseURL, "/")+"/cards/random", &c); err != nil {
		return nil, uuid.Nil, err
	}
	if c.Layout != AcceptedLayout {
		return nil, uuid.Nil, fmt.Errorf("%w: %q", ErrRejectedLayout, c.Layout)
	}
	if c.ImageURIs == nil || c.ImageURIs.ArtCrop == "" {
		return nil, uuid.Nil, fmt.Errorf("tilesource: card %s has no art crop", c.ID)
	}
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("tilesource: card id %q: %w", c.ID, err)
	}

	resp, err := s.get(ctx, c.ImageURIs.ArtCrop)
	if err != nil {
		return nil, uuid.Nil, err
	}
	defer resp.Body.Close()

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("tilesource: decode art for %s: %w", id, err)
	}
	return img, id, nil
}

func (s *Scryfall) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.UserAgent)
	req.Header.Set("Accept", "*/*")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tilesource: GET %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("tilesource: GET %s: status %s", url, resp.Status)
	}
	return resp, nil
}

func (s *Scryfall) getJSON(ctx context.Context, url string, v any) error {
	resp, err := s.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("tilesource: parse %s: %w", url, err)
	}
	return nil
}
