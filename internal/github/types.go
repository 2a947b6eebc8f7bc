// Package github wraps the GitHub REST API behind the small surface the
// pipeline needs: repository enumeration and Actions run/job listings for a
// single account.
package github

import "time"

// Repository is the slice of repository metadata the pipeline cares about.
type Repository struct {
	Owner    string `json:"owner"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
	Archived bool   `json:"archived"`
}

// WorkflowRun is one execution of a workflow. Name is the workflow's display
// name, the key both selection and classification operate on.
type WorkflowRun struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	Conclusion string    `json:"conclusion,omitempty"`
	HeadBranch string    `json:"head_branch,omitempty"`
	HTMLURL    string    `json:"html_url,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// WorkflowJob is one job within a run. Times are zero until the job starts
// or finishes.
type WorkflowJob struct {
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	Conclusion  string    `json:"conclusion,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}
