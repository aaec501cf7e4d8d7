package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	if err := store.Save(ctx, "transactions", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, ok, err := store.Load(ctx, "transactions")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected key to exist after Save")
	}
	if string(got) != `[{"id":"1"}]` {
		t.Errorf("Load = %q, want %q", got, `[{"id":"1"}]`)
	}
}

func TestFileStoreMissingKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer store.Close()

	_, ok, err := store.Load(context.Background(), "never-written")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ok {
		t.Error("Expected ok=false for a key that was never written")
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	if err := store.Save(ctx, "categories", []byte(`["a","b"]`)); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if err := store.Save(ctx, "categories", []byte(`["c"]`)); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, _, err := store.Load(ctx, "categories")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(got) != `["c"]` {
		t.Errorf("Load = %q, want %q (whole-value overwrite)", got, `["c"]`)
	}

	// The temp file from the atomic write must not linger.
	if _, err := os.Stat(filepath.Join(dir, "categories.json.tmp")); !os.IsNotExist(err) {
		t.Error("Expected temp file to be renamed away")
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("redis", "", ""); err == nil {
		t.Error("Expected error for unsupported backend")
	}
}
