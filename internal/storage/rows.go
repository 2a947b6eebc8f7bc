package storage

import (
	"time"

	"github.com/linserv/actions-dashboard/internal/model"
)

// SnapshotRow is a lightweight listing row for /snapshots.
type SnapshotRow struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	Account     string    `json:"account,omitempty"`
	AccountType string    `json:"account_type,omitempty"`
	Records     int       `json:"records"`
	Failing     int       `json:"failing"`
}

// RecordRow is one flattened record row, job details reduced to counts.
type RecordRow struct {
	Repo       string           `json:"repo"`
	Workflow   string           `json:"workflow"`
	Category   string           `json:"category,omitempty"`
	Status     string           `json:"status,omitempty"`
	Conclusion string           `json:"conclusion,omitempty"`
	Branch     string           `json:"branch,omitempty"`
	RunURL     string           `json:"run_url,omitempty"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Jobs       model.JobSummary `json:"jobs"`
}
