package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/freshspot/jobharvest/internal/domain"
	"github.com/freshspot/jobharvest/internal/ledger"
	"github.com/freshspot/jobharvest/internal/logger"
	"github.com/freshspot/jobharvest/internal/repository"
)

// ManagerConfig tunes the lifecycle manager.
type ManagerConfig struct {
	// Retention bounds how long a posting stays visible after its posted-on
	// date, across both the store and the ledgers.
	Retention time.Duration

	// DataDir receives cleaned ledger snapshots.
	DataDir string

	// CleanLower is the category whose ledger is filtered against
	// CleanHigher during reconciliation. Rows sharing a company and role
	// pair with the higher-priority ledger are dropped from the snapshot.
	CleanLower  string
	CleanHigher string
}

// Manager owns the daily lifecycle: expiry, harvesting, and reconciliation.
type Manager struct {
	jobs     *repository.JobRepository
	rec      *Reconciler
	harvests []*HarvestService
	ledgers  map[string]*ledger.Ledger
	cfg      ManagerConfig

	now func() time.Time
}

// NewManager creates a lifecycle manager.
// Parameters:
//   - jobs: job repository used for expiry and stats.
//   - rec: reconciler used for imports and cross-source cleaning.
//   - harvests: one pipeline per enabled source.
//   - ledgers: staging ledgers keyed by category.
//   - cfg: retention and cleaning configuration.
//
// Returns:
//   - *Manager: manager instance.
func NewManager(jobs *repository.JobRepository, rec *Reconciler, harvests []*HarvestService, ledgers map[string]*ledger.Ledger, cfg ManagerConfig) *Manager {
	if cfg.CleanLower == "" {
		cfg.CleanLower = domain.CategoryFresher
	}
	if cfg.CleanHigher == "" {
		cfg.CleanHigher = domain.CategoryInternship
	}
	return &Manager{
		jobs:     jobs,
		rec:      rec,
		harvests: harvests,
		ledgers:  ledgers,
		cfg:      cfg,
		now:      time.Now,
	}
}

// ExpiryStats summarizes one expiry pass.
type ExpiryStats struct {
	StoreDeleted  int64
	LedgerDropped map[string]int
}

// ExpireOld removes postings older than the retention window from the store
// and every ledger. Ledger rows whose posted-on value does not parse are
// kept; their age is unknown and dropping them would lose data.
func (m *Manager) ExpireOld(ctx context.Context) (*ExpiryStats, error) {
	ctx = logger.SetStage(ctx, "expire")
	log := logger.FromContext(ctx)
	cutoff := m.now().UTC().Add(-m.cfg.Retention)

	deleted, err := m.jobs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	stats := &ExpiryStats{
		StoreDeleted:  deleted,
		LedgerDropped: make(map[string]int, len(m.ledgers)),
	}
	var errs []error
	for category, led := range m.ledgers {
		removed, err := led.RewriteFiltered(func(rec *ledger.Record) bool {
			posted, ok := rec.ParsePostedOn()
			if !ok {
				return true
			}
			return !posted.Before(cutoff)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("ledger %s: %w", category, err))
			continue
		}
		stats.LedgerDropped[category] = removed
	}

	if storeStats, err := m.jobs.Stats(ctx); err == nil {
		log.WithFields(logger.Fields{
			"deleted":     deleted,
			"remaining":   storeStats.Total,
			"by_category": storeStats.ByCategory,
		}).Info("Expiry pass completed")
	} else {
		log.WithField("deleted", deleted).Info("Expiry pass completed")
	}
	return stats, errors.Join(errs...)
}

// Scrape runs every harvest pipeline. A failing source does not stop the
// others; their errors are joined.
func (m *Manager) Scrape(ctx context.Context) error {
	ctx = logger.SetStage(ctx, "scrape")
	var errs []error
	for _, h := range m.harvests {
		if _, err := h.Run(ctx); err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", h.Source().ID(), err))
		}
	}
	return errors.Join(errs...)
}

// Reconcile imports every ledger into the store. The lower-priority
// category is first cleaned against the higher-priority ledger and its
// cleaned snapshot is what gets imported; the staged original is preserved.
func (m *Manager) Reconcile(ctx context.Context) error {
	ctx = logger.SetStage(ctx, "reconcile")
	var errs []error

	for category, led := range m.ledgers {
		importLed := led
		if category == m.cfg.CleanLower {
			if cleaned, err := m.cleanedSnapshot(ctx, led); err != nil {
				errs = append(errs, fmt.Errorf("cleaning %s: %w", category, err))
			} else if cleaned != nil {
				importLed = cleaned
			}
		}
		if _, err := m.rec.Import(ctx, importLed, category); err != nil {
			errs = append(errs, fmt.Errorf("importing %s: %w", category, err))
		}
	}
	return errors.Join(errs...)
}

// cleanedSnapshot produces the cross-source cleaned copy of led. Returns nil
// when no higher-priority ledger is configured.
func (m *Manager) cleanedSnapshot(ctx context.Context, led *ledger.Ledger) (*ledger.Ledger, error) {
	higher, ok := m.ledgers[m.cfg.CleanHigher]
	if !ok {
		return nil, nil
	}
	base := strings.TrimSuffix(filepath.Base(led.Path()), filepath.Ext(led.Path()))
	destPath := filepath.Join(m.cfg.DataDir, base+"_cleaned.csv")
	if _, err := m.rec.CrossSourceClean(ctx, led, higher, destPath); err != nil {
		return nil, err
	}
	return ledger.Open(destPath), nil
}

// RunDaily executes the full daily cycle in its fixed order: expire, then
// scrape, then reconcile. A stage failure is recorded but the later stages
// still run, so partial progress is never thrown away. The returned error
// joins all stage failures.
func (m *Manager) RunDaily(ctx context.Context) error {
	log := logger.FromContext(ctx)
	started := m.now()

	var errs []error
	if _, err := m.ExpireOld(ctx); err != nil {
		log.WithError(err).Error("Expiry stage failed")
		errs = append(errs, fmt.Errorf("expire: %w", err))
	}
	if err := m.Scrape(ctx); err != nil {
		log.WithError(err).Error("Scrape stage failed")
		errs = append(errs, fmt.Errorf("scrape: %w", err))
	}
	if err := m.Reconcile(ctx); err != nil {
		log.WithError(err).Error("Reconcile stage failed")
		errs = append(errs, fmt.Errorf("reconcile: %w", err))
	}

	err := errors.Join(errs...)
	entry := log.WithFields(logger.Fields{
		logger.FieldDurationMs: m.now().Sub(started).Milliseconds(),
		"failed_stages":        len(errs),
	})
	if err != nil {
		entry.Error("Daily cycle finished with failures")
	} else {
		entry.Info("Daily cycle completed")
	}
	return err
}
