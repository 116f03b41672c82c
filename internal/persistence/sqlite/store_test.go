package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/extension-scheduler/internal/persistence"
	"github.com/example/extension-scheduler/internal/testfixtures"
)

func TestStoreGetSet(t *testing.T) {
	t.Parallel()

	store := testfixtures.OpenStore(t)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v, want absent without error", ok, err)
	}

	if err := store.Set(ctx, "key", "value"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	value, ok, err := store.Get(ctx, "key")
	if err != nil || !ok || value != "value" {
		t.Fatalf("Get(key) = %q ok=%v err=%v, want value", value, ok, err)
	}

	if err := store.Set(ctx, "key", "replaced"); err != nil {
		t.Fatalf("overwrite Set returned error: %v", err)
	}
	value, _, err = store.Get(ctx, "key")
	if err != nil || value != "replaced" {
		t.Fatalf("Get after overwrite = %q err=%v, want replaced", value, err)
	}
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()

	store := testfixtures.OpenStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "key", "value"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := store.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok, err := store.Get(ctx, "key"); err != nil || ok {
		t.Fatalf("Get after delete = ok=%v err=%v, want absent", ok, err)
	}

	if err := store.Delete(ctx, "key"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Delete(missing) returned %v, want ErrNotFound", err)
	}
}

func TestStoreAll(t *testing.T) {
	t.Parallel()

	store := testfixtures.OpenStore(t)
	ctx := context.Background()

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All on empty store returned error: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("All on empty store = %v, want none", all)
	}

	entries := map[string]string{"a": "1", "b": "2", "c": "3"}
	for key, value := range entries {
		if err := store.Set(ctx, key, value); err != nil {
			t.Fatalf("Set(%q) returned error: %v", key, err)
		}
	}

	all, err = store.All(ctx)
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	if len(all) != len(entries) {
		t.Fatalf("All returned %d entries, want %d", len(all), len(entries))
	}
	for key, want := range entries {
		if all[key] != want {
			t.Fatalf("All[%q] = %q, want %q", key, all[key], want)
		}
	}
}

func TestStoreReplaceAll(t *testing.T) {
	t.Parallel()

	store := testfixtures.OpenStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "stale", "value"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	replacement := map[string]string{"fresh": "1", "newer": "2"}
	if err := store.ReplaceAll(ctx, replacement); err != nil {
		t.Fatalf("ReplaceAll returned error: %v", err)
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("All after ReplaceAll = %v, want exactly the replacement", all)
	}
	if _, ok := all["stale"]; ok {
		t.Fatalf("stale key survived ReplaceAll")
	}
	if all["fresh"] != "1" || all["newer"] != "2" {
		t.Fatalf("replacement entries wrong: %v", all)
	}

	if err := store.ReplaceAll(ctx, nil); err != nil {
		t.Fatalf("ReplaceAll(nil) returned error: %v", err)
	}
	all, err = store.All(ctx)
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("All after empty ReplaceAll = %v, want none", all)
	}
}
