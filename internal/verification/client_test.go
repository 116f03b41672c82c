package verification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/extension-scheduler/internal/testfixtures"
)

func listServer(t *testing.T, ids []string, hits *atomic.Int64) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(ids); err != nil {
			t.Errorf("encoding verified list: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestVerify(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("membership lookups", func(t *testing.T) {
		t.Parallel()

		server := listServer(t, []string{"ext-1", "ext-2"}, nil)
		client := NewClient(server.URL, time.Second, time.Hour, nil)

		verified, err := client.Verify(ctx, "ext-1")
		if err != nil {
			t.Fatalf("Verify returned error: %v", err)
		}
		if !verified {
			t.Fatalf("listed extension reported unverified")
		}

		verified, err = client.Verify(ctx, "ext-unknown")
		if err != nil {
			t.Fatalf("Verify returned error: %v", err)
		}
		if verified {
			t.Fatalf("unlisted extension reported verified")
		}
	})

	t.Run("list is cached until the TTL lapses", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int64
		server := listServer(t, []string{"ext-1"}, &hits)
		clock := testfixtures.NewClock(time.Time{})
		client := NewClient(server.URL, time.Second, time.Hour, clock.NowFunc())

		for range 3 {
			if _, err := client.Verify(ctx, "ext-1"); err != nil {
				t.Fatalf("Verify returned error: %v", err)
			}
		}
		if got := hits.Load(); got != 1 {
			t.Fatalf("upstream fetched %d times within TTL, want 1", got)
		}

		clock.Advance(2 * time.Hour)
		if _, err := client.Verify(ctx, "ext-1"); err != nil {
			t.Fatalf("Verify after TTL returned error: %v", err)
		}
		if got := hits.Load(); got != 2 {
			t.Fatalf("upstream fetched %d times after TTL, want 2", got)
		}
	})

	t.Run("invalidate forces a refetch", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int64
		server := listServer(t, []string{"ext-1"}, &hits)
		client := NewClient(server.URL, time.Second, time.Hour, nil)

		if _, err := client.Verify(ctx, "ext-1"); err != nil {
			t.Fatalf("Verify returned error: %v", err)
		}
		client.Invalidate()
		if _, err := client.Verify(ctx, "ext-1"); err != nil {
			t.Fatalf("Verify after Invalidate returned error: %v", err)
		}
		if got := hits.Load(); got != 2 {
			t.Fatalf("upstream fetched %d times, want 2", got)
		}
	})

	t.Run("upstream failure surfaces an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		t.Cleanup(server.Close)

		client := NewClient(server.URL, time.Second, time.Hour, nil)
		if _, err := client.Verify(ctx, "ext-1"); err == nil {
			t.Fatalf("Verify succeeded despite upstream failure")
		}
	})

	t.Run("malformed payload surfaces an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"not":"an array"}`))
		}))
		t.Cleanup(server.Close)

		client := NewClient(server.URL, time.Second, time.Hour, nil)
		if _, err := client.Verify(ctx, "ext-1"); err == nil {
			t.Fatalf("Verify accepted a malformed list")
		}
	})
}
