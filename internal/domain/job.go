package domain

import "time"

// NotSpecified is the canonical placeholder for source fields the adapter
// could not extract. It matches what the ledgers and the store already contain.
const NotSpecified = "Not specified"

// Job categories. A category maps one-to-one to a staging ledger.
const (
	CategoryFresher    = "Fresher"
	CategoryInternship = "Internship"
	CategoryRemote     = "Remote"
)

// Job represents a canonical job posting in the relational store.
// Rows are created by the reconciliation import and deleted by the
// lifecycle expiry pass; they are never updated in place.
type Job struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Category          string    `gorm:"type:text;not null;index:idx_jobs_category" json:"category"`
	CompanyName       string    `gorm:"type:text;not null;index:idx_jobs_company" json:"company_name"`
	JobRole           string    `gorm:"type:text;not null;index:idx_jobs_role" json:"job_role"`
	WebsiteLink       string    `gorm:"type:text" json:"website_link"`
	State             string    `gorm:"type:text;not null" json:"state"`
	City              string    `gorm:"type:text;not null" json:"city"`
	Experience        string    `gorm:"type:text" json:"experience"`
	Qualification     string    `gorm:"type:text;not null" json:"qualification"`
	Batch             string    `gorm:"type:text" json:"batch"`
	SalaryPackage     string    `gorm:"type:text" json:"salary_package"`
	JobDescription    string    `gorm:"type:text;not null" json:"job_description"`
	KeyResponsibility string    `gorm:"type:text" json:"key_responsibility"`
	AboutCompany      string    `gorm:"type:text" json:"about_company"`
	SelectionProcess  string    `gorm:"type:text" json:"selection_process"`
	Image             string    `gorm:"type:text" json:"image"`
	PostedOn          time.Time `gorm:"index:idx_jobs_posted_on" json:"posted_on"`
	CreatedAt         time.Time `json:"created_at"`
}

// TableName returns the database table name for Job.
func (Job) TableName() string {
	return "jobs"
}

// JobStats summarizes the contents of the relational store. Logged after
// each expiry pass and served by the stats endpoint.
type JobStats struct {
	Total      int64            `json:"total"`
	ByCategory map[string]int64 `json:"by_category"`
	Oldest     *time.Time       `json:"oldest,omitempty"`
	Newest     *time.Time       `json:"newest,omitempty"`
}
