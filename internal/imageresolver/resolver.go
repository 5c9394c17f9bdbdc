// Package imageresolver fetches and caches company logo cards. Logos come
// from the Clearbit logo API, are composited onto a fixed-size white card,
// and are cached in object storage keyed by company name. Resolution always
// yields a usable image name; lookup failures fall back to a shared
// placeholder instead of erroring.
package imageresolver

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	xdraw "golang.org/x/image/draw"

	"github.com/freshspot/jobharvest/internal/domain"
	"github.com/freshspot/jobharvest/internal/logger"
	"github.com/freshspot/jobharvest/internal/storage"
)

const (
	defaultBaseURL = "https://logo.clearbit.com"

	// Placeholder is returned when no logo can be resolved.
	Placeholder = "hiring.png"

	cardWidth  = 400
	cardHeight = 200
)

// aliasMap redirects company keys whose public domain differs from their
// name.
var aliasMap = map[string]string{
	"ernst & young":      "ey",
	"ernst and young":    "ey",
	"eurofinsscientific": "eurofins",
}

// companySuffixes are trimmed from the end of a company key before the
// domain guess. Only the first match is removed.
var companySuffixes = []string{
	" technologies", "technology", "solutions", "solution",
	"pvt ltd", "private limited", "ltd", "limited",
	"inc", "corp", "corporation",
}

// Resolver resolves company names to cached logo card file names.
type Resolver struct {
	client  *resty.Client
	store   storage.ObjectStorage
	baseURL string

	// seen holds normalized company keys already cached this process.
	seen map[string]struct{}
}

// New creates a resolver backed by the given object storage. baseURL is
// overridable for tests; empty means the Clearbit API. The storage contents
// are listed once to seed the cache, so re-runs skip companies resolved by
// earlier runs.
func New(store storage.ObjectStorage, baseURL string) (*Resolver, error) {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := resty.New()
	client.SetTimeout(15 * time.Second)

	r := &Resolver{
		client:  client,
		store:   store,
		baseURL: baseURL,
		seen:    make(map[string]struct{}),
	}

	keys, err := store.List(context.Background())
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		name := strings.TrimSuffix(key, ".png")
		r.seen[companyKey(name)] = struct{}{}
	}
	return r, nil
}

// Resolve returns the stored file name for a company's logo card, fetching
// and rendering it on first sight. A company that cannot be resolved gets
// the shared placeholder. Resolve never returns an error; a posting without
// a real logo is still a valid posting.
func (r *Resolver) Resolve(ctx context.Context, companyName string) string {
	if companyName == "" || strings.EqualFold(companyName, domain.NotSpecified) {
		return ""
	}
	log := logger.FromContext(ctx)

	key := companyKey(companyName)
	filename := companyName + ".png"

	if _, ok := r.seen[key]; ok {
		return filename
	}
	if exists, err := r.store.Exists(ctx, filename); err == nil && exists {
		r.seen[key] = struct{}{}
		return filename
	}

	lookup := key
	if alias, ok := aliasMap[key]; ok {
		lookup = alias
	}
	logoDomain := domainGuess(lookup)

	resp, err := r.client.R().
		SetContext(ctx).
		Get(r.baseURL + "/" + logoDomain)
	if err != nil || resp.StatusCode() != 200 {
		log.WithField("company", companyName).Debug("Logo lookup failed, using placeholder")
		return Placeholder
	}

	card, err := renderCard(resp.Body())
	if err != nil {
		log.WithField("company", companyName).WithError(err).Debug("Logo decode failed, using placeholder")
		return Placeholder
	}

	if err := r.store.Upload(ctx, filename, bytes.NewReader(card), int64(len(card)), "image/png"); err != nil {
		log.WithField("company", companyName).WithError(err).Warn("Failed to store logo card")
		return Placeholder
	}

	r.seen[key] = struct{}{}
	return filename
}

// companyKey normalizes a company name for cache and domain lookup.
func companyKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range companySuffixes {
		if strings.HasSuffix(key, suffix) {
			key = strings.TrimSuffix(key, suffix)
			break
		}
	}
	return strings.TrimSpace(key)
}

// domainGuess derives a .com domain from a company key.
func domainGuess(key string) string {
	d := strings.ReplaceAll(key, " ", "")
	d = strings.ReplaceAll(d, "pvt", "")
	d = strings.ReplaceAll(d, "ltd", "")
	return d + ".com"
}

// renderCard composites a decoded logo onto a white card, shrinking it to
// fit while preserving aspect ratio, and returns the card as PNG bytes.
func renderCard(logoBytes []byte) ([]byte, error) {
	logo, _, err := image.Decode(bytes.NewReader(logoBytes))
	if err != nil {
		return nil, err
	}

	bounds := logo.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Shrink to fit; small logos are centered at native size.
	scale := 1.0
	if sw := float64(cardWidth) / float64(w); sw < scale {
		scale = sw
	}
	if sh := float64(cardHeight) / float64(h); sh < scale {
		scale = sh
	}
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	card := image.NewRGBA(image.Rect(0, 0, cardWidth, cardHeight))
	draw.Draw(card, card.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	// Drawing over white flattens any alpha in the source logo.
	target := image.Rect(
		(cardWidth-dw)/2,
		(cardHeight-dh)/2,
		(cardWidth-dw)/2+dw,
		(cardHeight-dh)/2+dh,
	)
	xdraw.CatmullRom.Scale(card, target, logo, bounds, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, card); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
