package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/freshspot/jobharvest/internal/dedup"
	"github.com/freshspot/jobharvest/internal/domain"
	"github.com/freshspot/jobharvest/internal/ledger"
	"github.com/freshspot/jobharvest/internal/logger"
	"github.com/freshspot/jobharvest/internal/repository"
)

// Reconciler merges staged ledger rows into the relational store and
// produces cross-source cleaned snapshots.
type Reconciler struct {
	jobs *repository.JobRepository
	now  func() time.Time
}

// NewReconciler creates a reconciler backed by the given job repository.
// Parameters:
//   - jobs: repository used for duplicate seeding and batch inserts.
//
// Returns:
//   - *Reconciler: reconciler instance.
func NewReconciler(jobs *repository.JobRepository) *Reconciler {
	return &Reconciler{jobs: jobs, now: time.Now}
}

// ImportStats summarizes one ledger import.
type ImportStats struct {
	Read     int
	Imported int
	Dupes    int
	Invalid  int
	Skipped  int
}

// Import merges one category ledger into the store. The duplicate set is
// seeded from rows already stored for the category, and grows as rows are
// accepted, so a ledger that repeats itself imports each posting once.
// Importing the same ledger twice is a no-op on the second pass.
func (r *Reconciler) Import(ctx context.Context, led *ledger.Ledger, category string) (*ImportStats, error) {
	ctx = logger.SetCategory(ctx, category)
	log := logger.FromContext(ctx)
	stats := &ImportStats{}

	identities, err := r.jobs.Identities(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to seed duplicate set: %w", err)
	}
	seen := dedup.NewIndex()
	for _, row := range identities {
		seen.Add(dedup.StoreKey(row.CompanyName, row.JobRole, row.WebsiteLink, row.PostedOn, row.Category))
	}

	records, err := led.Records()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	stats.Read = len(records)

	var pending []domain.Job
	for i := range records {
		rec := &records[i]
		if !importable(rec) {
			stats.Invalid++
			continue
		}

		posted, ok := rec.ParsePostedOn()
		if !ok {
			posted = r.now().UTC()
		}

		sig := dedup.StoreKey(rec.CompanyName, rec.JobRole, rec.WebsiteLink, posted, category)
		if seen.Has(sig) {
			stats.Dupes++
			continue
		}
		seen.Add(sig)
		pending = append(pending, recordJob(rec, category, posted))
	}

	inserted, skipped, err := r.jobs.InsertBatch(ctx, pending)
	stats.Imported = inserted
	stats.Skipped = skipped
	if err != nil {
		return stats, err
	}

	log.WithFields(logger.Fields{
		"read":     stats.Read,
		"imported": stats.Imported,
		"dupes":    stats.Dupes,
		"invalid":  stats.Invalid,
		"skipped":  stats.Skipped,
	}).Info("Ledger import completed")
	return stats, nil
}

// importable rejects rows missing the identity fields a stored job needs.
func importable(rec *ledger.Record) bool {
	for _, v := range []string{rec.CompanyName, rec.JobRole} {
		if strings.TrimSpace(v) == "" || v == domain.NotSpecified {
			return false
		}
	}
	return true
}

func recordJob(rec *ledger.Record, category string, posted time.Time) domain.Job {
	return domain.Job{
		Category:          category,
		CompanyName:       rec.CompanyName,
		JobRole:           rec.JobRole,
		WebsiteLink:       rec.WebsiteLink,
		State:             rec.State,
		City:              rec.City,
		Experience:        rec.Experience,
		Qualification:     rec.Qualification,
		Batch:             rec.Batch,
		SalaryPackage:     rec.SalaryPackage,
		JobDescription:    rec.JobDescription,
		KeyResponsibility: rec.KeyResponsibility,
		AboutCompany:      rec.AboutCompany,
		SelectionProcess:  rec.SelectionProcess,
		Image:             rec.Image,
		PostedOn:          posted,
	}
}

// CrossSourceClean filters the lower-priority ledger against the
// higher-priority one: any row whose company and role pair also appears in
// the higher ledger is dropped. The surviving rows are written to a fresh
// snapshot at destPath; neither input ledger is modified. Returns the number
// of rows removed.
func (r *Reconciler) CrossSourceClean(ctx context.Context, lower, higher *ledger.Ledger, destPath string) (int, error) {
	log := logger.FromContext(ctx)

	higherRecords, err := higher.Records()
	if err != nil {
		return 0, fmt.Errorf("failed to read priority ledger: %w", err)
	}
	claimed := dedup.NewIndex()
	for i := range higherRecords {
		claimed.Add(companyRoleKey(&higherRecords[i]))
	}

	lowerRecords, err := lower.Records()
	if err != nil {
		return 0, fmt.Errorf("failed to read ledger: %w", err)
	}

	kept := make([]ledger.Record, 0, len(lowerRecords))
	removed := 0
	for i := range lowerRecords {
		if claimed.Has(companyRoleKey(&lowerRecords[i])) {
			removed++
			continue
		}
		kept = append(kept, lowerRecords[i])
	}

	if err := ledger.WriteCopy(destPath, kept); err != nil {
		return 0, err
	}

	log.WithFields(logger.Fields{
		"removed": removed,
		"kept":    len(kept),
		"dest":    destPath,
	}).Info("Cross-source cleaning completed")
	return removed, nil
}

func companyRoleKey(rec *ledger.Record) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return norm(rec.CompanyName) + "|" + norm(rec.JobRole)
}
