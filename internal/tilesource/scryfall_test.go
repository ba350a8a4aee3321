package tilesource

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

const cardID = "0000579f-7b35-4ed3-b44c-db2a538066fe"

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newServer(t *testing.T, layout string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/cards/random", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":%q,"layout":%q,"image_uris":{"art_crop":%q}}`,
			cardID, layout, srv.URL+"/art.png")
	})
	mux.HandleFunc("/art.png", func(w http.ResponseWriter, r *http.Request) {
		png.Encode(w, image.NewNRGBA(image.Rect(0, 0, 12, 9)))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestScryfall_Fetch(t *testing.T) {
	srv := newServer(t, "normal")
	s := NewScryfall()
	s.BaseURL = srv.URL

	img, id, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if id.String() != cardID {
		t.Errorf("id: got %s", id)
	}
	if img.Bounds().Dx() != 12 || img.Bounds().Dy() != 9 {
		t.Errorf("art size: got %v", img.Bounds())
	}
}

func TestScryfall_RejectsLayout(t *testing.T) {
	srv := newServer(t, "split")
	s := NewScryfall()
	s.BaseURL = srv.URL

	if _, _, err := s.Fetch(context.Background()); !errors.Is(err, ErrRejectedLayout) {
		t.Fatalf("got %v, want ErrRejectedLayout", err)
	}
}

func TestScryfall_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	s := NewScryfall()
	s.BaseURL = srv.URL

	if _, _, err := s.Fetch(context.Background()); err == nil {
		t.Fatal("expected error on 503")
	}
}

type flaky struct {
	calls    atomic.Int32
	failures int32
	err      error
}

func (f *flaky) Fetch(context.Context) (image.Image, uuid.UUID, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, uuid.Nil, f.err
	}
	return image.NewNRGBA(image.Rect(0, 0, 1, 1)), uuid.New(), nil
}

func TestFetchWithRetry_Recovers(t *testing.T) {
	src := &flaky{failures: 2, err: errors.New("boom")}
	p := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	if _, _, err := FetchWithRetry(context.Background(), src, p, discard()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got := src.calls.Load(); got != 3 {
		t.Errorf("calls: got %d, want 3", got)
	}
}

func TestFetchWithRetry_GivesUp(t *testing.T) {
	src := &flaky{failures: 100, err: errors.New("boom")}
	p := RetryPolicy{MaxAttempts: 4, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}

	if _, _, err := FetchWithRetry(context.Background(), src, p, discard()); err == nil {
		t.Fatal("expected give-up error")
	}
	if got := src.calls.Load(); got != 4 {
		t.Errorf("calls: got %d, want 4", got)
	}
}

func TestFetchWithRetry_RejectedWithoutDelay(t *testing.T) {
	src := &flaky{failures: 3, err: fmt.Errorf("%w: split", ErrRejectedLayout)}
	p := RetryPolicy{MaxAttempts: 4, BaseDelay: time.Hour, MaxDelay: time.Hour}

	done := make(chan error, 1)
	go func() {
		_, _, err := FetchWithRetry(context.Background(), src, p, discard())
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("retry: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("rejected layouts were delayed")
	}
}

func TestFetchWithRetry_Cancelled(t *testing.T) {
	src := &flaky{failures: 100, err: errors.New("boom")}
	p := RetryPolicy{MaxAttempts: 10, BaseDelay: time.Hour, MaxDelay: time.Hour}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, _, err := FetchWithRetry(ctx, src, p, discard()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want deadline exceeded", err)
	}
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}
	want := []time.Duration{100, 200, 400, 800, 1000, 1000}
	for i, w := range want {
		if got := p.Delay(i + 1); got != w*time.Millisecond {
			t.Errorf("delay(%d): got %v, want %v", i+1, got, w*time.Millisecond)
		}
	}
}
