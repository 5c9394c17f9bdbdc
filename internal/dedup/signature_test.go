package dedup

import (
	"testing"
	"time"

	"github.com/freshspot/jobharvest/internal/domain"
)

func TestScrapeKeyByPostedDate(t *testing.T) {
	posted := time.Date(2025, 7, 14, 18, 30, 0, 0, time.UTC)

	a := &domain.RawListing{CompanyName: "Acme", JobRole: "Engineer", PostedOn: posted, HasPostedOn: true}
	b := &domain.RawListing{CompanyName: "Globex", JobRole: "Analyst", PostedOn: posted.Add(3 * time.Hour), HasPostedOn: true}

	// Same calendar day collides under the date scheme regardless of company.
	if ScrapeKey(ByPostedDate, a) != ScrapeKey(ByPostedDate, b) {
		t.Error("listings on the same day must share a date-scheme signature")
	}

	c := &domain.RawListing{CompanyName: "Acme", PostedOn: posted.AddDate(0, 0, 1), HasPostedOn: true}
	if ScrapeKey(ByPostedDate, a) == ScrapeKey(ByPostedDate, c) {
		t.Error("different days must not collide under the date scheme")
	}
}

func TestScrapeKeyByCompanyRole(t *testing.T) {
	posted := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)

	a := &domain.RawListing{CompanyName: "  Acme  ", JobRole: "Backend Engineer", PostedOn: posted, HasPostedOn: true}
	b := &domain.RawListing{CompanyName: "acme", JobRole: "BACKEND ENGINEER", PostedOn: posted, HasPostedOn: true}
	if ScrapeKey(ByCompanyRole, a) != ScrapeKey(ByCompanyRole, b) {
		t.Error("case and whitespace must not affect the company/role signature")
	}

	c := &domain.RawListing{CompanyName: "Acme", JobRole: "Frontend Engineer", PostedOn: posted, HasPostedOn: true}
	if ScrapeKey(ByCompanyRole, a) == ScrapeKey(ByCompanyRole, c) {
		t.Error("different roles must not collide under the company/role scheme")
	}
}

func TestScrapeKeyMissingDate(t *testing.T) {
	a := &domain.RawListing{CompanyName: "Acme"}
	b := &domain.RawListing{CompanyName: "Globex"}
	if ScrapeKey(ByPostedDate, a) != ScrapeKey(ByPostedDate, b) {
		t.Error("listings without a timestamp share the unknown bucket")
	}
}

func TestStoreKey(t *testing.T) {
	posted := time.Date(2025, 7, 14, 9, 15, 0, 0, time.UTC)

	a := StoreKey(" Acme ", "Engineer", "https://acme.example/jobs/1", posted, "Fresher")
	b := StoreKey("acme", "engineer", "https://acme.example/jobs/1", posted.Add(8*time.Hour), "fresher")
	if a != b {
		t.Error("store keys must normalize case, whitespace, and truncate to day")
	}

	c := StoreKey("acme", "engineer", "https://acme.example/jobs/1", posted, "Remote")
	if a == c {
		t.Error("category participates in the store key")
	}

	d := StoreKey("acme", "engineer", "https://acme.example/jobs/2", posted, "Fresher")
	if a == d {
		t.Error("apply URL participates in the store key")
	}
}

func TestIndex(t *testing.T) {
	idx := NewIndex()
	if idx.Has("sig") {
		t.Error("empty index must not report membership")
	}
	idx.Add("sig")
	if !idx.Has("sig") {
		t.Error("added signature must be reported")
	}
	idx.Add("sig")
	if idx.Len() != 1 {
		t.Errorf("Len = %d, want 1 after duplicate add", idx.Len())
	}
}
