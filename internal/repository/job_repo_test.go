package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/freshspot/jobharvest/internal/domain"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.Job{}, &domain.HarvestRun{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func testJob(company, category string, posted time.Time) domain.Job {
	return domain.Job{
		Category:       category,
		CompanyName:    company,
		JobRole:        "Engineer",
		WebsiteLink:    "https://example.com/jobs/" + company,
		State:          "Remote",
		City:           "Remote",
		Qualification:  "<p>Any degree.</p>",
		JobDescription: "<p>Work.</p>",
		PostedOn:       posted,
	}
}

func TestInsertBatchAndIdentities(t *testing.T) {
	repo := NewJobRepository(testDB(t))
	ctx := context.Background()
	posted := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)

	jobs := []domain.Job{
		testJob("Acme", domain.CategoryFresher, posted),
		testJob("Globex", domain.CategoryFresher, posted),
		testJob("Initech", domain.CategoryRemote, posted),
	}
	inserted, skipped, err := repo.InsertBatch(ctx, jobs)
	if err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}
	if inserted != 3 || skipped != 0 {
		t.Fatalf("inserted/skipped = %d/%d, want 3/0", inserted, skipped)
	}

	rows, err := repo.Identities(ctx, domain.CategoryFresher)
	if err != nil {
		t.Fatalf("Identities: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("fresher identities = %d, want 2", len(rows))
	}
	for _, row := range rows {
		if row.Category != domain.CategoryFresher || row.PostedOn.IsZero() {
			t.Errorf("identity row incomplete: %+v", row)
		}
	}
}

func TestDeleteOlderThan(t *testing.T) {
	repo := NewJobRepository(testDB(t))
	ctx := context.Background()
	now := time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC)

	old := testJob("Old Co", domain.CategoryFresher, now.AddDate(0, 0, -150))
	fresh := testJob("New Co", domain.CategoryFresher, now.AddDate(0, 0, -10))
	if err := repo.Create(ctx, &old); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(ctx, &fresh); err != nil {
		t.Fatal(err)
	}

	deleted, err := repo.DeleteOlderThan(ctx, now.AddDate(0, 0, -100))
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}

	remaining, err := repo.List(ctx, "", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0].CompanyName != "New Co" {
		t.Errorf("remaining = %+v", remaining)
	}
}

func TestStats(t *testing.T) {
	repo := NewJobRepository(testDB(t))
	ctx := context.Background()

	oldest := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	newest := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	for _, job := range []domain.Job{
		testJob("A", domain.CategoryFresher, oldest),
		testJob("B", domain.CategoryFresher, newest),
		testJob("C", domain.CategoryRemote, newest),
	} {
		j := job
		if err := repo.Create(ctx, &j); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("total = %d, want 3", stats.Total)
	}
	if stats.ByCategory[domain.CategoryFresher] != 2 || stats.ByCategory[domain.CategoryRemote] != 1 {
		t.Errorf("by category = %v", stats.ByCategory)
	}
	if stats.Oldest == nil || !stats.Oldest.Equal(oldest) {
		t.Errorf("oldest = %v, want %v", stats.Oldest, oldest)
	}
	if stats.Newest == nil || !stats.Newest.Equal(newest) {
		t.Errorf("newest = %v, want %v", stats.Newest, newest)
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	repo := NewJobRepository(testDB(t))
	ctx := context.Background()

	early := testJob("Early", domain.CategoryFresher, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	late := testJob("Late", domain.CategoryFresher, time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC))
	other := testJob("Other", domain.CategoryRemote, time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC))
	for _, j := range []*domain.Job{&early, &late, &other} {
		if err := repo.Create(ctx, j); err != nil {
			t.Fatal(err)
		}
	}

	jobs, err := repo.List(ctx, domain.CategoryFresher, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 2 || jobs[0].CompanyName != "Late" || jobs[1].CompanyName != "Early" {
		t.Errorf("list = %+v, want newest first within category", jobs)
	}

	cats, err := repo.Categories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 2 {
		t.Errorf("categories = %v, want 2", cats)
	}
}
