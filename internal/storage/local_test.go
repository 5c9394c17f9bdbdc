package storage

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "https://cdn.example.com/logos")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	content := "png bytes"
	if err := store.Upload(ctx, "Acme.png", strings.NewReader(content), int64(len(content)), "image/png"); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	ok, err := store.Exists(ctx, "Acme.png")
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v; want true", ok, err)
	}

	rc, err := store.Download(ctx, "Acme.png")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	got, err := io.ReadAll(rc)
	rc.Close()
	if err != nil || string(got) != content {
		t.Fatalf("Download content = %q, %v", got, err)
	}

	if url := store.GetURL("Acme.png"); url != "https://cdn.example.com/logos/Acme.png" {
		t.Errorf("GetURL = %q", url)
	}

	keys, err := store.List(ctx)
	if err != nil || len(keys) != 1 || keys[0] != "Acme.png" {
		t.Fatalf("List = %v, %v", keys, err)
	}

	if err := store.Delete(ctx, "Acme.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok, _ := store.Exists(ctx, "Acme.png"); ok {
		t.Error("object still exists after delete")
	}
	// Deleting again is a no-op, not an error.
	if err := store.Delete(ctx, "Acme.png"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"../escape.png", "/abs.png", "."} {
		if err := store.Upload(context.Background(), key, strings.NewReader("x"), 1, "image/png"); err == nil {
			t.Errorf("key %q must be rejected", key)
		}
	}
}
