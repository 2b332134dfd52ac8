package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/uielement/pkg/reactive"
)

func newServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/items/", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprintf(w, "body of %s", r.URL.Path)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &hits
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetCachesBodies(t *testing.T) {
	srv, hits := newServer(t)
	c := NewCache(WithClient(srv.Client()), WithLogger(quietLogger()))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		body, err := c.Get(ctx, srv.URL+"/items/1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if body != "body of /items/1" {
			t.Errorf("unexpected body %q", body)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("expected one request, got %d", hits.Load())
	}
	if c.Len() != 1 {
		t.Errorf("expected one cached body, got %d", c.Len())
	}

	c.Clear()
	if _, err := c.Get(ctx, srv.URL+"/items/1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("expected Clear to force a new request, got %d", hits.Load())
	}
}

func TestGetDoesNotCacheFailures(t *testing.T) {
	srv, hits := newServer(t)
	c := NewCache(WithClient(srv.Client()), WithLogger(quietLogger()))

	for i := 0; i < 2; i++ {
		_, err := c.Get(context.Background(), srv.URL+"/missing")
		var se *StatusError
		if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 StatusError, got %v", err)
		}
	}
	if hits.Load() != 2 {
		t.Errorf("expected failures to be retried, got %d requests", hits.Load())
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d", c.Len())
	}
}

func TestGetSharesInflightRequests(t *testing.T) {
	release := make(chan struct{})
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		fmt.Fprint(w, "shared")
	}))
	defer srv.Close()

	c := NewCache(WithClient(srv.Client()), WithLogger(quietLogger()))

	// A caller that gives up does not cancel the request for the others.
	ctx, cancel := context.WithCancel(context.Background())
	gaveUp := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, srv.URL)
		gaveUp <- err
	}()

	results := make(chan string, 3)
	for i := 0; i < 3; i++ {
		go func() {
			body, err := c.Get(context.Background(), srv.URL)
			if err != nil {
				body = err.Error()
			}
			results <- body
		}()
	}

	deadline := time.Now().Add(2 * time.Second)
	for hits.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("request never started")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	if err := <-gaveUp; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	close(release)
	for i := 0; i < 3; i++ {
		if body := <-results; body != "shared" {
			t.Errorf("unexpected result %q", body)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("expected concurrent callers to share one request, got %d", n)
	}
}

func TestGetEmptyURL(t *testing.T) {
	c := NewCache()
	body, err := c.Get(context.Background(), "")
	if err != nil || body != "" {
		t.Errorf("expected empty result, got %q, %v", body, err)
	}
}

func TestGetTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewCache(WithClient(srv.Client()), WithTimeout(20*time.Millisecond), WithLogger(quietLogger()))
	if _, err := c.Get(context.Background(), srv.URL); err == nil {
		t.Error("expected timeout error")
	}
}

func TestFetchFollowsURL(t *testing.T) {
	srv, _ := newServer(t)
	c := NewCache(WithClient(srv.Client()), WithLogger(quietLogger()))

	old := reactive.SetScheduler(nil)
	defer reactive.SetScheduler(old)

	id := reactive.NewState("1")
	body := c.Fetch(func() string { return srv.URL + "/items/" + id.Get() })

	if _, ok := body.Lookup(); ok {
		t.Fatal("expected Unset before the response")
	}

	waitDelivered(t)
	if v, ok := body.Lookup(); !ok || v != "body of /items/1" {
		t.Fatalf("unexpected value %q, %v", v, ok)
	}

	id.Set("2")
	_, _ = body.Lookup()
	waitDelivered(t)
	if v, _ := body.Lookup(); v != "body of /items/2" {
		t.Errorf("unexpected value %q", v)
	}
	if c.Len() != 2 {
		t.Errorf("expected two cached bodies, got %d", c.Len())
	}
}

// waitDelivered drains queued async results on the test goroutine until one
// has been delivered.
func waitDelivered(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for reactive.Drain() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for async delivery")
		}
		time.Sleep(time.Millisecond)
	}
}
