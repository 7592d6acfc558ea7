package openmeteo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestCacheServesRepeatWithoutNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(twoHours))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{CacheDir: t.TempDir(), RefreshRecent: 72 * time.Hour})
	for i := 0; i < 3; i++ {
		b, err := c.Fetch(context.Background(), req())
		if err != nil || b.Len() != 2 {
			t.Fatalf("Fetch #%d = %d rows, %v", i, b.Len(), err)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("old window should be served from cache, calls = %d", calls.Load())
	}
}

func TestCacheRevalidatesRecentWindow(t *testing.T) {
	var calls, conditional atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			conditional.Add(1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(twoHours))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{CacheDir: t.TempDir(), RefreshRecent: 72 * time.Hour})
	c.cache.now = func() time.Time { return time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC) }

	for i := 0; i < 2; i++ {
		b, err := c.Fetch(context.Background(), req())
		if err != nil || b.Len() != 2 {
			t.Fatalf("Fetch #%d = %d rows, %v", i, b.Len(), err)
		}
	}
	if calls.Load() != 2 || conditional.Load() != 1 {
		t.Fatalf("calls = %d conditional = %d", calls.Load(), conditional.Load())
	}
}

func TestCacheStale(t *testing.T) {
	c := &Cache{refreshRecent: 48 * time.Hour, now: func() time.Time { return day("2024-03-10") }}
	if !c.Stale(day("2024-03-09")) {
		t.Fatalf("yesterday should be stale")
	}
	if c.Stale(day("2024-03-01")) {
		t.Fatalf("last week should be final")
	}
	c.refreshRecent = 0
	if c.Stale(day("2024-03-10")) {
		t.Fatalf("zero refresh never revalidates")
	}
}

func TestCacheKeyIsStable(t *testing.T) {
	c, err := NewCache(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	a1, m1 := c.paths("http://x/?a=1")
	a2, _ := c.paths("http://x/?a=1")
	b1, _ := c.paths("http://x/?a=2")
	if a1 != a2 || a1 == b1 || m1 != a1+".meta" {
		t.Fatalf("paths = %s %s %s %s", a1, a2, b1, m1)
	}
	if _, _, ok := c.Load("http://x/?a=1"); ok {
		t.Fatalf("empty cache should miss")
	}
	if err := c.Store("http://x/?a=1", []byte("{}"), http.Header{"Etag": {"e"}}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	body, meta, ok := c.Load("http://x/?a=1")
	if !ok || string(body) != "{}" || meta == nil || meta.ETag != "e" {
		t.Fatalf("Load = %q %+v %v", body, meta, ok)
	}
}
