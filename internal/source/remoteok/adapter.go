// Package remoteok adapts the RemoteOK public API to the pipeline's source
// interface.
package remoteok

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/freshspot/jobharvest/internal/dedup"
	"github.com/freshspot/jobharvest/internal/domain"
	"github.com/freshspot/jobharvest/internal/logger"
	"github.com/freshspot/jobharvest/internal/source"
)

const defaultBaseURL = "https://remoteok.com"

// maxDescriptionWords bounds the prompt cost of one listing.
const maxDescriptionWords = 350

// Adapter fetches remote job listings from the RemoteOK JSON API.
type Adapter struct {
	client  *resty.Client
	baseURL string
}

// New creates a RemoteOK adapter. baseURL is overridable for tests; empty
// means the public API.
func New(baseURL string) *Adapter {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := resty.New()
	// The API rejects requests without a browser-ish user agent.
	client.SetHeader("User-Agent", "Mozilla/5.0")
	client.SetTimeout(30 * time.Second)

	return &Adapter{client: client, baseURL: baseURL}
}

func (a *Adapter) ID() string                 { return "remoteok" }
func (a *Adapter) Category() string           { return domain.CategoryRemote }
func (a *Adapter) Scheme() dedup.ScrapeScheme { return dedup.ByCompanyRole }

// apiItem is one element of the RemoteOK API response. The first element is
// a legal notice without an ID and is skipped.
type apiItem struct {
	ID          any     `json:"id"`
	Company     string  `json:"company"`
	Position    string  `json:"position"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	SalaryMin   float64 `json:"salary_min"`
	SalaryMax   float64 `json:"salary_max"`
	Date        string  `json:"date"`
	Epoch       int64   `json:"epoch"`
	URL         string  `json:"url"`
	ApplyURL    string  `json:"apply_url"`
}

// Fetch pulls the full feed in one request. The API is not paginated, so
// the cutoff only drops items client-side.
func (a *Adapter) Fetch(ctx context.Context, cutoff time.Time) ([]domain.RawListing, error) {
	log := logger.FromContext(ctx)

	var items []apiItem
	resp, err := a.client.R().
		SetContext(ctx).
		SetResult(&items).
		Get(a.baseURL + "/api")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remoteok feed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("remoteok feed returned HTTP %d", resp.StatusCode())
	}

	listings := make([]domain.RawListing, 0, len(items))
	for i := range items {
		item := &items[i]
		if item.ID == nil || item.Company == "" {
			continue
		}

		posted, ok := item.postedOn()
		if !ok {
			log.WithField("company", item.Company).Debug("Skipping listing with unparsable date")
			continue
		}
		if posted.Before(cutoff) {
			continue
		}

		listings = append(listings, item.toListing(posted))
	}

	log.WithFields(logger.Fields{
		logger.FieldSource: a.ID(),
		logger.FieldCount:  len(listings),
	}).Info("Fetched remote listings")
	return listings, nil
}

func (it *apiItem) postedOn() (time.Time, bool) {
	if it.Date != "" {
		if t, err := time.Parse(time.RFC3339, it.Date); err == nil {
			return t.UTC(), true
		}
		if t, err := time.Parse("2006-01-02T15:04:05", strings.TrimSuffix(it.Date, "Z")); err == nil {
			return t.UTC(), true
		}
	}
	if it.Epoch > 0 {
		return time.Unix(it.Epoch, 0).UTC(), true
	}
	return time.Time{}, false
}

func (it *apiItem) toListing(posted time.Time) domain.RawListing {
	state, city := splitLocation(it.Location)

	website := it.ApplyURL
	if website == "" {
		website = it.URL
	}

	plain := source.StripHTML(it.Description)
	desc := source.CleanDescription(plain, maxDescriptionWords)

	return domain.RawListing{
		CompanyName:   strings.TrimSpace(it.Company),
		JobRole:       strings.TrimSpace(it.Position),
		ApplyURL:      website,
		State:         state,
		City:          city,
		Experience:    "Any Experience",
		SalaryPackage: formatSalary(it.SalaryMin, it.SalaryMax),
		Description:   desc,
		PostedOn:      posted,
		HasPostedOn:   true,
	}
}

func splitLocation(loc string) (state, city string) {
	loc = strings.TrimSpace(loc)
	if loc == "" || strings.EqualFold(loc, "remote") {
		return "Remote", "Remote"
	}
	parts := strings.SplitN(loc, ",", 2)
	city = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		state = strings.TrimSpace(parts[1])
	}
	return state, city
}

func formatSalary(min, max float64) string {
	if min <= 0 {
		return domain.NotSpecified
	}
	if max > 0 {
		return fmt.Sprintf("%.0f - %.0f", min, max)
	}
	return fmt.Sprintf("%.0f", min)
}
