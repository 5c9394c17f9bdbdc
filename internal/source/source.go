// Package source defines the job feed abstraction the harvest pipeline
// consumes. Adapters live in subpackages, one per upstream.
package source

import (
	"context"
	"time"

	"github.com/freshspot/jobharvest/internal/dedup"
	"github.com/freshspot/jobharvest/internal/domain"
)

// Source is one upstream job feed.
//
// Fetch returns listings posted at or after cutoff, newest first where the
// upstream supports ordering. Adapters over chronological paginated feeds
// stop fetching as soon as they cross the cutoff instead of walking every
// page. Listings older than cutoff may still appear in the result; the
// pipeline applies its own age filter.
type Source interface {
	// ID is a stable identifier used in logs and run records.
	ID() string

	// Category is the job category every listing from this feed belongs to.
	Category() string

	// Scheme is the scrape-level signature scheme matching this feed's
	// identity guarantees.
	Scheme() dedup.ScrapeScheme

	Fetch(ctx context.Context, cutoff time.Time) ([]domain.RawListing, error)
}
