package management

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestListExtensions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("decodes the bridge response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || r.URL.Path != "/extensions" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"id":"ext-1","name":"Blocker","enabled":true},{"id":"ext-2","name":"Notes","enabled":false}]`))
		}))
		t.Cleanup(server.Close)

		client := NewBridgeClient(server.URL, time.Second)
		extensions, err := client.ListExtensions(ctx)
		if err != nil {
			t.Fatalf("ListExtensions returned error: %v", err)
		}
		if len(extensions) != 2 {
			t.Fatalf("got %d extensions, want 2", len(extensions))
		}
		if extensions[0].ID != "ext-1" || !extensions[0].Enabled {
			t.Fatalf("first extension = %+v", extensions[0])
		}
		if extensions[1].Name != "Notes" || extensions[1].Enabled {
			t.Fatalf("second extension = %+v", extensions[1])
		}
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		}))
		t.Cleanup(server.Close)

		client := NewBridgeClient(server.URL, time.Second)
		if _, err := client.ListExtensions(ctx); err == nil {
			t.Fatalf("ListExtensions succeeded despite bridge failure")
		}
	})
}

func TestSetEnabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("sends the expected request", func(t *testing.T) {
		t.Parallel()

		var gotMethod, gotPath string
		var gotBody map[string]bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &gotBody); err != nil {
				t.Errorf("decoding request body: %v", err)
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		t.Cleanup(server.Close)

		client := NewBridgeClient(server.URL, time.Second)
		if err := client.SetEnabled(ctx, "ext-1", false); err != nil {
			t.Fatalf("SetEnabled returned error: %v", err)
		}

		if gotMethod != http.MethodPut {
			t.Fatalf("method = %q, want PUT", gotMethod)
		}
		if gotPath != "/extensions/ext-1/enabled" {
			t.Fatalf("path = %q", gotPath)
		}
		if enabled, ok := gotBody["enabled"]; !ok || enabled {
			t.Fatalf("body = %v, want enabled=false", gotBody)
		}
	})

	t.Run("escapes the extension id", func(t *testing.T) {
		t.Parallel()

		var gotEscaped string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotEscaped = r.URL.EscapedPath()
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(server.Close)

		client := NewBridgeClient(server.URL, time.Second)
		if err := client.SetEnabled(ctx, "ext/../1", true); err != nil {
			t.Fatalf("SetEnabled returned error: %v", err)
		}
		if gotEscaped != "/extensions/ext%2F..%2F1/enabled" {
			t.Fatalf("escaped path = %q", gotEscaped)
		}
	})

	t.Run("non-2xx status is an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no such extension", http.StatusNotFound)
		}))
		t.Cleanup(server.Close)

		client := NewBridgeClient(server.URL, time.Second)
		if err := client.SetEnabled(ctx, "ext-1", true); err == nil {
			t.Fatalf("SetEnabled succeeded despite 404")
		}
	})
}
