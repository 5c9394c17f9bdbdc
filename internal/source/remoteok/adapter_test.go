package remoteok

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const feedBody = `[
	{"legal": "API terms of service notice"},
	{"id": 101, "company": "Acme", "position": "Backend Engineer",
	 "description": "<p>Build Go services.</p>",
	 "location": "Remote", "salary_min": 60000, "salary_max": 90000,
	 "date": "2025-07-20T10:00:00+00:00", "epoch": 1753005600,
	 "url": "https://remoteok.com/jobs/101",
	 "apply_url": "https://acme.example/apply"},
	{"id": 102, "company": "Globex", "position": "Data Analyst",
	 "description": "<p>Analyze data.</p>",
	 "location": "Berlin, Germany",
	 "date": "2025-01-05T10:00:00+00:00", "epoch": 1736071200,
	 "url": "https://remoteok.com/jobs/102"}
]`

func TestFetchFiltersAndMapsListings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(feedBody))
	}))
	defer srv.Close()

	adapter := New(srv.URL)
	cutoff := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	listings, err := adapter.Fetch(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	// The legal notice and the too-old Globex listing are dropped.
	if len(listings) != 1 {
		t.Fatalf("listings = %d, want 1", len(listings))
	}

	got := listings[0]
	if got.CompanyName != "Acme" || got.JobRole != "Backend Engineer" {
		t.Errorf("identity = %s / %s", got.CompanyName, got.JobRole)
	}
	if got.ApplyURL != "https://acme.example/apply" {
		t.Errorf("apply URL = %s, want the dedicated apply link", got.ApplyURL)
	}
	if got.State != "Remote" || got.City != "Remote" {
		t.Errorf("location = %s / %s, want Remote / Remote", got.State, got.City)
	}
	if got.SalaryPackage != "60000 - 90000" {
		t.Errorf("salary = %q", got.SalaryPackage)
	}
	if got.Description != "Build Go services." {
		t.Errorf("description = %q, want stripped text", got.Description)
	}
	if !got.HasPostedOn || got.PostedOn.IsZero() {
		t.Error("posted timestamp must be set")
	}
}

func TestFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	adapter := New(srv.URL)
	if _, err := adapter.Fetch(context.Background(), time.Time{}); err == nil {
		t.Fatal("expected an error for a non-200 feed response")
	}
}

func TestSplitLocation(t *testing.T) {
	tests := []struct {
		loc         string
		state, city string
	}{
		{"Remote", "Remote", "Remote"},
		{"", "Remote", "Remote"},
		{"Berlin, Germany", "Germany", "Berlin"},
		{"Pune", "", "Pune"},
	}
	for _, tt := range tests {
		state, city := splitLocation(tt.loc)
		if state != tt.state || city != tt.city {
			t.Errorf("splitLocation(%q) = %q/%q, want %q/%q", tt.loc, state, city, tt.state, tt.city)
		}
	}
}
