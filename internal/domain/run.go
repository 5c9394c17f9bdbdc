package domain

import "time"

// RunStatus represents the status of a harvest run.
// Values include RunStatusPending, RunStatusRunning, RunStatusCompleted, and RunStatusFailed.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// HarvestRun records one pipeline invocation and its progress metadata.
type HarvestRun struct {
	ID          string     `gorm:"type:text;primaryKey" json:"id"`
	SourceID    string     `gorm:"type:text;not null;index" json:"source_id"`
	Category    string     `gorm:"type:text;not null" json:"category"`
	Status      RunStatus  `gorm:"default:pending" json:"status"`
	Fetched     int        `gorm:"default:0" json:"fetched"`
	Appended    int        `gorm:"default:0" json:"appended"`
	Duplicates  int        `gorm:"default:0" json:"duplicates"`
	TooOld      int        `gorm:"default:0" json:"too_old"`
	Failed      int        `gorm:"default:0" json:"failed"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ErrorLog    string     `json:"error_log,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the database table name for HarvestRun.
func (HarvestRun) TableName() string {
	return "harvest_runs"
}
