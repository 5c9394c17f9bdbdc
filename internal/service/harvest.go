package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/freshspot/jobharvest/internal/dedup"
	"github.com/freshspot/jobharvest/internal/domain"
	"github.com/freshspot/jobharvest/internal/ledger"
	"github.com/freshspot/jobharvest/internal/logger"
	"github.com/freshspot/jobharvest/internal/prompts"
	"github.com/freshspot/jobharvest/internal/source"
)

// enricher is the section generation surface the pipeline needs.
type enricher interface {
	Enrich(ctx context.Context, d prompts.Details) map[string]string
}

// imageResolver resolves a company name to a stored logo file name. It is
// idempotent and never fails; unresolvable companies get a placeholder.
type imageResolver interface {
	Resolve(ctx context.Context, companyName string) string
}

// runRecorder persists run progress. Implemented by repository.RunRepository.
type runRecorder interface {
	Create(ctx context.Context, run *domain.HarvestRun) error
	Update(ctx context.Context, run *domain.HarvestRun) error
}

// HarvestService drives one source through the ingestion pipeline:
// fetch, filter by age, deduplicate against the ledger, enrich, append.
type HarvestService struct {
	src    source.Source
	enrich enricher
	images imageResolver
	led    *ledger.Ledger
	runs   runRecorder
	maxAge time.Duration

	now func() time.Time
}

// NewHarvestService creates a pipeline for one source and its category
// ledger. maxAge is the freshness horizon; listings older than it are
// dropped without enrichment. runs may be nil when run records are not
// wanted (one-shot CLI use).
func NewHarvestService(src source.Source, enrich enricher, images imageResolver, led *ledger.Ledger, runs runRecorder, maxAge time.Duration) *HarvestService {
	return &HarvestService{
		src:    src,
		enrich: enrich,
		images: images,
		led:    led,
		runs:   runs,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Source returns the source this pipeline harvests.
func (s *HarvestService) Source() source.Source {
	return s.src
}

// Run executes one pipeline pass. Listings are processed strictly in
// discovery order by a single worker: the signature index is updated
// synchronously after each append, so within-run duplicates are caught
// without coordination. Only a fetch failure aborts the run; per-listing
// failures are counted and skipped.
func (s *HarvestService) Run(ctx context.Context) (*domain.HarvestRun, error) {
	started := s.now().UTC()
	run := &domain.HarvestRun{
		ID:        uuid.NewString(),
		SourceID:  s.src.ID(),
		Category:  s.src.Category(),
		Status:    domain.RunStatusRunning,
		StartedAt: &started,
	}

	ctx = logger.SetRunID(ctx, run.ID)
	ctx = logger.SetSource(ctx, s.src.ID())
	ctx = logger.SetCategory(ctx, s.src.Category())
	log := logger.FromContext(ctx)

	if s.runs != nil {
		if err := s.runs.Create(ctx, run); err != nil {
			log.WithError(err).Warn("Failed to record run start")
		}
	}

	idx, err := s.seedIndex()
	if err != nil {
		return s.fail(ctx, run, fmt.Errorf("failed to seed duplicate index: %w", err))
	}
	log.WithField(logger.FieldCount, idx.Len()).Info("Seeded duplicate index from ledger")

	cutoff := s.now().UTC().Add(-s.maxAge)
	listings, err := s.src.Fetch(ctx, cutoff)
	if err != nil {
		return s.fail(ctx, run, fmt.Errorf("fetch failed: %w", err))
	}
	run.Fetched = len(listings)

	for i := range listings {
		listing := &listings[i]

		if listing.PostedOrNow().Before(cutoff) {
			run.TooOld++
			continue
		}

		sig := dedup.ScrapeKey(s.src.Scheme(), listing)
		if idx.Has(sig) {
			run.Duplicates++
			continue
		}

		if err := s.processListing(ctx, listing); err != nil {
			log.WithError(err).WithFields(logger.Fields{
				"company": listing.CompanyName,
				"role":    listing.JobRole,
			}).Error("Failed to process listing")
			run.Failed++
			continue
		}

		idx.Add(sig)
		run.Appended++
	}

	completed := s.now().UTC()
	run.Status = domain.RunStatusCompleted
	run.CompletedAt = &completed
	if s.runs != nil {
		if err := s.runs.Update(ctx, run); err != nil {
			log.WithError(err).Warn("Failed to record run completion")
		}
	}

	log.WithFields(logger.Fields{
		"fetched":    run.Fetched,
		"appended":   run.Appended,
		"duplicates": run.Duplicates,
		"too_old":    run.TooOld,
		"failed":     run.Failed,
	}).Info("Harvest run completed")
	return run, nil
}

// seedIndex loads scrape-level signatures for every row already staged.
func (s *HarvestService) seedIndex() (*dedup.Index, error) {
	idx := dedup.NewIndex()
	records, err := s.led.Records()
	if err != nil {
		return nil, err
	}
	for i := range records {
		idx.Add(dedup.ScrapeKey(s.src.Scheme(), recordListing(&records[i])))
	}
	return idx, nil
}

// recordListing projects a ledger row onto the listing fields that
// participate in scrape-level signatures.
func recordListing(r *ledger.Record) *domain.RawListing {
	l := &domain.RawListing{
		CompanyName: r.CompanyName,
		JobRole:     r.JobRole,
	}
	if posted, ok := r.ParsePostedOn(); ok {
		l.PostedOn = posted
		l.HasPostedOn = true
	}
	return l
}

// processListing enriches one listing and appends it to the ledger.
func (s *HarvestService) processListing(ctx context.Context, listing *domain.RawListing) error {
	sections := s.enrich.Enrich(ctx, prompts.Details{
		CompanyName:   listing.CompanyName,
		JobRole:       listing.JobRole,
		Description:   listing.Description,
		Qualification: listing.Qualification,
	})

	// Image failure never blocks the record; the resolver degrades to a
	// placeholder internally.
	image := s.images.Resolve(ctx, listing.CompanyName)

	record := ledger.Record{
		CompanyName:       listing.CompanyName,
		JobRole:           listing.JobRole,
		WebsiteLink:       listing.ApplyURL,
		State:             orNotSpecified(listing.State),
		City:              orNotSpecified(listing.City),
		Experience:        orNotSpecified(listing.Experience),
		Qualification:     sections[prompts.TopicQualification],
		Batch:             orNotSpecified(listing.Batch),
		SalaryPackage:     orNotSpecified(listing.SalaryPackage),
		JobDescription:    sections[prompts.TopicJobDescription],
		KeyResponsibility: sections[prompts.TopicKeyResponsibility],
		AboutCompany:      sections[prompts.TopicAboutCompany],
		SelectionProcess:  sections[prompts.TopicSelectionProcess],
		Image:             image,
		PostedOn:          ledger.FormatPostedOn(listing.PostedOrNow()),
	}
	return s.led.Append(record)
}

func (s *HarvestService) fail(ctx context.Context, run *domain.HarvestRun, err error) (*domain.HarvestRun, error) {
	completed := s.now().UTC()
	run.Status = domain.RunStatusFailed
	run.CompletedAt = &completed
	run.ErrorLog = err.Error()
	if s.runs != nil {
		if updateErr := s.runs.Update(ctx, run); updateErr != nil {
			logger.FromContext(ctx).WithError(updateErr).Warn("Failed to record run failure")
		}
	}
	return run, err
}

func orNotSpecified(s string) string {
	if s == "" {
		return domain.NotSpecified
	}
	return s
}
