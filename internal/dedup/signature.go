// Package dedup implements the duplicate signatures used across the
// pipeline's storage tiers.
//
// Two schemes exist and are deliberately distinct. The scrape-level
// signature is coarse: it decides whether a listing was already staged to
// the ledger, so one fetched candidate is never enriched twice. The
// store-level signature is fine-grained and guards the relational store
// during reconciliation. They use different field subsets and must not be
// unified, because callers depend on each one's exact collision behavior.
package dedup

import (
	"strings"
	"time"

	"github.com/freshspot/jobharvest/internal/domain"
)

// ScrapeScheme selects which listing fields feed the scrape-level signature.
// Each source adapter declares the scheme matching its feed's identity
// guarantees.
type ScrapeScheme int

const (
	// ByPostedDate keys on the normalized posted date alone. Suited to
	// chronological feeds that publish at most one batch per timestamp.
	ByPostedDate ScrapeScheme = iota

	// ByCompanyRole keys on company, role, and the posted timestamp.
	ByCompanyRole
)

// ScrapeKey computes the scrape-level signature for a listing.
func ScrapeKey(scheme ScrapeScheme, l *domain.RawListing) string {
	switch scheme {
	case ByCompanyRole:
		return strings.Join([]string{
			normalize(l.CompanyName),
			normalize(l.JobRole),
			normalizeDate(l),
		}, "|")
	default:
		return normalizeDate(l)
	}
}

// StoreKey computes the store-level signature used when merging ledger rows
// into the relational store. The posted timestamp participates truncated to
// its calendar day.
func StoreKey(company, role, applyURL string, postedOn time.Time, category string) string {
	return strings.Join([]string{
		normalize(company),
		normalize(role),
		strings.TrimSpace(applyURL),
		postedOn.Format("2006-01-02"),
		normalize(category),
	}, "|")
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeDate renders a listing's timestamp for signature purposes.
// Listings without a timestamp share the "unknown" bucket so a source that
// omits dates degrades to coarse matching instead of failing.
func normalizeDate(l *domain.RawListing) string {
	if !l.HasPostedOn {
		return "unknown"
	}
	return l.PostedOn.Format("2006-01-02")
}

// Index is an in-memory signature set. It is seeded from the ledger at
// pipeline start and grows synchronously as rows are appended, so duplicates
// within a single run are caught as well as cross-run ones. Not safe for
// concurrent use; the pipeline processes candidates sequentially.
type Index struct {
	seen map[string]struct{}
}

// NewIndex returns an empty signature index.
func NewIndex() *Index {
	return &Index{seen: make(map[string]struct{})}
}

// Add records a signature.
func (i *Index) Add(sig string) {
	i.seen[sig] = struct{}{}
}

// Has reports whether a signature was already recorded.
func (i *Index) Has(sig string) bool {
	_, ok := i.seen[sig]
	return ok
}

// Len returns the number of distinct signatures recorded.
func (i *Index) Len() int {
	return len(i.seen)
}
