package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/freshspot/jobharvest/internal/domain"
	"github.com/freshspot/jobharvest/internal/logger"
)

// importBatchSize bounds transaction size during reconciliation imports.
const importBatchSize = 50

// JobRepository handles job posting data operations.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
// Parameters:
//   - db: GORM database handle used for queries.
//
// Returns:
//   - *JobRepository: repository instance bound to db.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a single job record.
func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// InsertBatch inserts jobs in commit batches. A row that fails to insert is
// logged and skipped; the rest of its batch still commits. Returns the
// number of rows inserted and skipped.
func (r *JobRepository) InsertBatch(ctx context.Context, jobs []domain.Job) (inserted, skipped int, err error) {
	log := logger.FromContext(ctx)

	for start := 0; start < len(jobs); start += importBatchSize {
		end := start + importBatchSize
		if end > len(jobs) {
			end = len(jobs)
		}
		batch := jobs[start:end]

		txErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i := range batch {
				// Savepoint per row so one bad row cannot poison the batch.
				tx.SavePoint("row")
				if rowErr := tx.Create(&batch[i]).Error; rowErr != nil {
					tx.RollbackTo("row")
					log.WithError(rowErr).WithFields(logger.Fields{
						"company": batch[i].CompanyName,
						"role":    batch[i].JobRole,
					}).Warn("Skipping row that failed to insert")
					skipped++
					continue
				}
				inserted++
			}
			return nil
		})
		if txErr != nil {
			return inserted, skipped, fmt.Errorf("failed to commit import batch: %w", txErr)
		}
	}
	return inserted, skipped, nil
}

// IdentityRow carries the fields participating in the store-level duplicate
// signature.
type IdentityRow struct {
	CompanyName string
	JobRole     string
	WebsiteLink string
	PostedOn    time.Time
	Category    string
}

// Identities returns the signature fields of every stored job in a
// category. Used to seed the duplicate set before an import.
func (r *JobRepository) Identities(ctx context.Context, category string) ([]IdentityRow, error) {
	var rows []IdentityRow
	if err := r.db.WithContext(ctx).
		Model(&domain.Job{}).
		Select("company_name", "job_role", "website_link", "posted_on", "category").
		Where("category = ?", category).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load job identities: %w", err)
	}
	return rows, nil
}

// DeleteOlderThan removes jobs posted before cutoff and reports how many
// rows were deleted.
func (r *JobRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("posted_on < ?", cutoff).
		Delete(&domain.Job{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired jobs: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Stats summarizes the store: total count, counts per category, and the
// posted-on range.
func (r *JobRepository) Stats(ctx context.Context) (*domain.JobStats, error) {
	stats := &domain.JobStats{ByCategory: make(map[string]int64)}

	if err := r.db.WithContext(ctx).Model(&domain.Job{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}

	var perCategory []struct {
		Category string
		Count    int64
	}
	if err := r.db.WithContext(ctx).Model(&domain.Job{}).
		Select("category, count(*) as count").
		Group("category").
		Find(&perCategory).Error; err != nil {
		return nil, fmt.Errorf("failed to count jobs by category: %w", err)
	}
	for _, row := range perCategory {
		stats.ByCategory[row.Category] = row.Count
	}

	if stats.Total > 0 {
		var bounds struct {
			Oldest time.Time
			Newest time.Time
		}
		if err := r.db.WithContext(ctx).Model(&domain.Job{}).
			Select("min(posted_on) as oldest, max(posted_on) as newest").
			Scan(&bounds).Error; err != nil {
			return nil, fmt.Errorf("failed to load posted-on range: %w", err)
		}
		stats.Oldest = &bounds.Oldest
		stats.Newest = &bounds.Newest
	}

	return stats, nil
}

// List retrieves jobs, newest first, optionally filtered by category.
func (r *JobRepository) List(ctx context.Context, category string, limit, offset int) ([]domain.Job, error) {
	var jobs []domain.Job
	query := r.db.WithContext(ctx)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.
		Order("posted_on DESC").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetByID retrieves a job by its ID.
func (r *JobRepository) GetByID(ctx context.Context, id uint) (*domain.Job, error) {
	var job domain.Job
	if err := r.db.WithContext(ctx).First(&job, id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// Categories retrieves all distinct categories present in the store.
func (r *JobRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := r.db.WithContext(ctx).
		Model(&domain.Job{}).
		Distinct("category").
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
