package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/AnyUserName/cardmosaic/internal/tilecache"
	"github.com/AnyUserName/cardmosaic/internal/tilesource"
)

type draw struct {
	id  uuid.UUID
	art color.NRGBA
}

// scriptedSource replays draws in order, then repeats the last one.
type scriptedSource struct {
	mu    sync.Mutex
	draws []draw
	next  int
}

func (s *scriptedSource) Fetch(ctx context.Context) (image.Image, uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draws[min(s.next, len(s.draws)-1)]
	s.next++
	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = d.art.R, d.art.G, d.art.B, 255
	}
	return img, d.id, nil
}

var (
	idA = uuid.MustParse("00000000-0000-4000-8000-00000000000a")
	idB = uuid.MustParse("00000000-0000-4000-8000-00000000000b")
	idC = uuid.MustParse("00000000-0000-4000-8000-00000000000c")
	idD = uuid.MustParse("00000000-0000-4000-8000-00000000000d")

	red   = color.NRGBA{R: 200, A: 255}
	green = color.NRGBA{G: 200, A: 255}
	blue  = color.NRGBA{B: 200, A: 255}
)

func TestPull_SkipsKnownTiles(t *testing.T) {
	store, err := tilecache.Open(filepath.Join(t.TempDir(), "cards"), 4.0/3.0)
	if err != nil {
		t.Fatal(err)
	}
	src := &scriptedSource{draws: []draw{
		{idA, red},
		{idB, green},
		{idA, red},   // same card again
		{idC, green}, // same art as B under another id
		{idD, blue},
	}}

	rep, err := Pull(context.Background(), PullConfig{
		Count:   3,
		Store:   store,
		Source:  src,
		Retry:   tilesource.RetryPolicy{MaxAttempts: 1},
		Workers: 1,
	})
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	want := []uuid.UUID{idA, idB, idD}
	if len(rep.Saved) != len(want) {
		t.Fatalf("saved: got %v, want %v", rep.Saved, want)
	}
	for i := range want {
		if rep.Saved[i] != want[i] {
			t.Errorf("saved[%d]: got %s, want %s", i, rep.Saved[i], want[i])
		}
	}
	if rep.Draws != 5 || rep.Cached != 1 || rep.Same != 1 {
		t.Errorf("report: got %+v", rep)
	}

	ids, err := store.IDs()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 {
		t.Errorf("store holds %d tiles, want 3", len(ids))
	}
}

func TestPull_ExistingCacheCountsAsSeen(t *testing.T) {
	store, err := tilecache.Open(filepath.Join(t.TempDir(), "cards"), 4.0/3.0)
	if err != nil {
		t.Fatal(err)
	}
	src := &scriptedSource{draws: []draw{{idA, red}}}
	if _, err := Pull(context.Background(), PullConfig{Count: 1, Store: store, Source: src, Retry: tilesource.RetryPolicy{MaxAttempts: 1}}); err != nil {
		t.Fatalf("first pull: %v", err)
	}

	// The source only ever offers A now, so nothing new can be found.
	rep, err := Pull(context.Background(), PullConfig{Count: 1, Store: store, Source: src, Retry: tilesource.RetryPolicy{MaxAttempts: 1}, Workers: 2})
	if err == nil {
		t.Fatal("pull of a known card succeeded")
	}
	if rep.Present != 1 || len(rep.Saved) != 0 {
		t.Errorf("report: got %+v", rep)
	}
	if rep.Draws > 1*DrawFactor+1 {
		t.Errorf("draws: got %d, want at most %d", rep.Draws, DrawFactor+1)
	}
}

type failingSource struct{}

func (failingSource) Fetch(context.Context) (image.Image, uuid.UUID, error) {
	return nil, uuid.Nil, errors.New("service unavailable")
}

func TestPull_SourceFailure(t *testing.T) {
	store, err := tilecache.Open(t.TempDir(), 4.0/3.0)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Pull(context.Background(), PullConfig{
		Count:  2,
		Store:  store,
		Source: failingSource{},
		Retry:  tilesource.RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
	})
	if err == nil {
		t.Error("failing source did not fail the pull")
	}
}
