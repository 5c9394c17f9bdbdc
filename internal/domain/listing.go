package domain

import "time"

// RawListing is a job posting as a source adapter found it. It is ephemeral:
// produced by one fetch, consumed once by the harvest pipeline, never stored.
type RawListing struct {
	CompanyName   string
	JobRole       string
	ApplyURL      string
	State         string
	City          string
	Experience    string
	Qualification string
	Batch         string
	SalaryPackage string
	Description   string // free-text body, cleaned by the adapter
	PostedOn      time.Time
	HasPostedOn   bool // false when the source omitted a timestamp
}

// PostedOrNow returns the source timestamp, defaulting to now when the
// source omitted one.
func (l *RawListing) PostedOrNow() time.Time {
	if l.HasPostedOn {
		return l.PostedOn
	}
	return time.Now().UTC()
}
