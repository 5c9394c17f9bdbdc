package imageresolver

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/freshspot/jobharvest/internal/storage"
)

func logoPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestResolver(t *testing.T, handler http.Handler) (*Resolver, *storage.LocalStorage) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := storage.NewLocalStorage(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	r, err := New(store, srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return r, store
}

func TestResolveFetchesRendersAndCaches(t *testing.T) {
	var fetches int32
	logo := logoPNG(t)

	r, store := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&fetches, 1)
		if req.URL.Path != "/acme.com" {
			t.Errorf("lookup path = %s, want /acme.com", req.URL.Path)
		}
		w.Write(logo)
	}))
	ctx := context.Background()

	got := r.Resolve(ctx, "Acme")
	if got != "Acme.png" {
		t.Fatalf("Resolve = %q, want Acme.png", got)
	}

	// Second resolution is served from the cache.
	if again := r.Resolve(ctx, "Acme"); again != "Acme.png" {
		t.Fatalf("second Resolve = %q", again)
	}
	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Errorf("fetches = %d, want 1 (cached)", n)
	}

	// The stored card has the fixed dimensions.
	rc, err := store.Download(ctx, "Acme.png")
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	card, err := png.Decode(rc)
	if err != nil {
		t.Fatal(err)
	}
	if b := card.Bounds(); b.Dx() != cardWidth || b.Dy() != cardHeight {
		t.Errorf("card size = %dx%d, want %dx%d", b.Dx(), b.Dy(), cardWidth, cardHeight)
	}
}

func TestResolvePlaceholderOnLookupFailure(t *testing.T) {
	r, _ := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	if got := r.Resolve(context.Background(), "Nonexistent Co"); got != Placeholder {
		t.Errorf("Resolve = %q, want placeholder", got)
	}
}

func TestResolveEmptyCompany(t *testing.T) {
	r, _ := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		t.Error("no lookup expected for empty company")
	}))

	if got := r.Resolve(context.Background(), ""); got != "" {
		t.Errorf("Resolve(empty) = %q, want empty", got)
	}
	if got := r.Resolve(context.Background(), "Not specified"); got != "" {
		t.Errorf("Resolve(placeholder company) = %q, want empty", got)
	}
}

func TestCompanyKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Acme Technologies", "acme"},
		{"Globex Pvt Ltd", "globex"},
		{"  Initech  ", "initech"},
		{"Ernst & Young", "ernst & young"},
	}
	for _, tt := range tests {
		if got := companyKey(tt.in); got != tt.want {
			t.Errorf("companyKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDomainGuessAppliesAlias(t *testing.T) {
	key := companyKey("Ernst & Young")
	lookup := key
	if alias, ok := aliasMap[key]; ok {
		lookup = alias
	}
	if got := domainGuess(lookup); got != "ey.com" {
		t.Errorf("domain = %q, want ey.com", got)
	}
}
