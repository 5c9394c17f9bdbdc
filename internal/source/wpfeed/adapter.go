// Package wpfeed adapts a WordPress job board's REST feed (wp-json) to the
// pipeline's source interface. The feed is chronological and paginated, so
// the adapter stops walking pages as soon as it crosses the age cutoff.
package wpfeed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/freshspot/jobharvest/internal/dedup"
	"github.com/freshspot/jobharvest/internal/domain"
	"github.com/freshspot/jobharvest/internal/logger"
	"github.com/freshspot/jobharvest/internal/source"
)

const (
	perPage             = 100
	maxDescriptionWords = 350
)

// Adapter fetches postings from one WordPress site's post feed.
type Adapter struct {
	client   *resty.Client
	id       string
	category string
	baseURL  string
}

// New creates an adapter for the site at baseURL (scheme and host, no
// trailing slash). id names the source in logs and run records; category is
// the job category assigned to every listing.
func New(id, category, baseURL string) *Adapter {
	client := resty.New()
	client.SetHeader("User-Agent", "Mozilla/5.0")
	client.SetTimeout(30 * time.Second)

	return &Adapter{
		client:   client,
		id:       id,
		category: category,
		baseURL:  baseURL,
	}
}

func (a *Adapter) ID() string                 { return a.id }
func (a *Adapter) Category() string           { return a.category }
func (a *Adapter) Scheme() dedup.ScrapeScheme { return dedup.ByPostedDate }

type wpPost struct {
	Link    string `json:"link"`
	DateGMT string `json:"date_gmt"`
	Title   struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	Content struct {
		Rendered string `json:"rendered"`
	} `json:"content"`
}

// Fetch walks the post feed newest-first and returns listings posted at or
// after cutoff. The walk stops at the first post older than the cutoff;
// everything behind it on a chronological feed is older still.
func (a *Adapter) Fetch(ctx context.Context, cutoff time.Time) ([]domain.RawListing, error) {
	log := logger.FromContext(ctx)

	var listings []domain.RawListing
	totalPages := 1

	for page := 1; page <= totalPages; page++ {
		posts, reportedPages, err := a.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		if reportedPages > totalPages {
			totalPages = reportedPages
		}

		for i := range posts {
			listing, posted, err := a.toListing(&posts[i])
			if err != nil {
				log.WithError(err).WithField("link", posts[i].Link).Warn("Skipping unparsable post")
				continue
			}
			if posted.Before(cutoff) {
				log.WithFields(logger.Fields{
					"page":      page,
					"posted_on": posted.Format("2006-01-02"),
				}).Info("Reached posts older than the cutoff, stopping fetch")
				return listings, nil
			}
			listings = append(listings, listing)
		}
	}

	log.WithFields(logger.Fields{
		logger.FieldSource: a.id,
		logger.FieldCount:  len(listings),
	}).Info("Fetched feed listings")
	return listings, nil
}

func (a *Adapter) fetchPage(ctx context.Context, page int) ([]wpPost, int, error) {
	var posts []wpPost
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"page":     strconv.Itoa(page),
			"per_page": strconv.Itoa(perPage),
			"orderby":  "date",
			"order":    "desc",
		}).
		SetResult(&posts).
		Get(a.baseURL + "/wp-json/wp/v2/posts")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch feed page %d: %w", page, err)
	}
	if resp.StatusCode() != 200 {
		return nil, 0, fmt.Errorf("feed page %d returned HTTP %d", page, resp.StatusCode())
	}

	totalPages, _ := strconv.Atoi(resp.Header().Get("X-WP-TotalPages"))
	return posts, totalPages, nil
}

func (a *Adapter) toListing(post *wpPost) (domain.RawListing, time.Time, error) {
	posted, err := parseWPDate(post.DateGMT)
	if err != nil {
		return domain.RawListing{}, time.Time{}, err
	}

	title := source.StripHTML(post.Title.Rendered)
	company, role := ParseTitle(title)

	plain := source.StripHTML(post.Content.Rendered)
	desc := source.CleanDescription(plain, maxDescriptionWords)

	return domain.RawListing{
		CompanyName: company,
		JobRole:     role,
		ApplyURL:    post.Link,
		Description: desc,
		PostedOn:    posted,
		HasPostedOn: true,
	}, posted, nil
}

// parseWPDate parses the wp-json date_gmt field, which omits a zone suffix.
func parseWPDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparsable post date %q: %w", s, err)
	}
	return t.UTC(), nil
}
