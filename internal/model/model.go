// Package model defines the dashboard's data model: workflow run records,
// category assignments, job summaries, and the snapshot envelope that the
// pipeline produces and every report consumes.
package model

import (
	"sort"
	"time"
)

// SchemaVersion identifies the snapshot layout. Bump on breaking changes to
// the JSON contract.
const SchemaVersion = "1.0"

// Status is a workflow run's lifecycle state as reported by GitHub Actions.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Conclusion is the terminal outcome of a completed run. Empty while the run
// is still queued or executing.
type Conclusion string

const (
	ConclusionSuccess        Conclusion = "success"
	ConclusionFailure        Conclusion = "failure"
	ConclusionCancelled      Conclusion = "cancelled"
	ConclusionSkipped        Conclusion = "skipped"
	ConclusionTimedOut       Conclusion = "timed_out"
	ConclusionActionRequired Conclusion = "action_required"
)

// Selection names a run selection policy.
type Selection string

const (
	// SelectionLatest keeps the single most recently updated run per repository.
	SelectionLatest Selection = "latest"
	// SelectionPerWorkflow keeps the most recent run of each distinct workflow
	// per repository.
	SelectionPerWorkflow Selection = "per-workflow"
)

// ParseSelection normalizes a policy name. Empty means the default.
func ParseSelection(s string) (Selection, bool) {
	switch Selection(s) {
	case "":
		return SelectionPerWorkflow, true
	case SelectionLatest, SelectionPerWorkflow:
		return Selection(s), true
	}
	return "", false
}

// Category is a display bucket for workflow runs. Rank fixes the group order
// on the dashboard; lower ranks render first. Built-in ranks leave gaps so
// rule packs can slot custom categories between them.
type Category struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Rank  int    `json:"rank"`
}

var (
	CategoryOdooSync   = Category{ID: "odoo-sync", Title: "Odoo Sync", Rank: 0}
	CategoryThirdParty = Category{ID: "third-party", Title: "Third-Party Sync", Rank: 10}
	CategoryOther      = Category{ID: "other", Title: "Other", Rank: 100}
)

// JobRecord is one job within a workflow run. Times are zero until the job
// has started or finished.
type JobRecord struct {
	Name        string     `json:"name"`
	Status      Status     `json:"status"`
	Conclusion  Conclusion `json:"conclusion,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt time.Time  `json:"completed_at"`
}

// RunRecord is one row on the dashboard: the selected run of one workflow in
// one repository.
type RunRecord struct {
	Repo       string      `json:"repo"`
	RepoURL    string      `json:"repo_url,omitempty"`
	Workflow   string      `json:"workflow"`
	Status     Status      `json:"status"`
	Conclusion Conclusion  `json:"conclusion,omitempty"`
	Branch     string      `json:"branch,omitempty"`
	RunURL     string      `json:"run_url,omitempty"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Category   Category    `json:"category"`
	Jobs       []JobRecord `json:"jobs,omitempty"`
	// Muted marks records suppressed by an active mute. They stay visible but
	// do not count toward totals.
	Muted bool `json:"muted,omitempty"`
}

// EffectiveStatus is the single state used for display and ordering: the
// conclusion when the run has one, the lifecycle status otherwise.
func (r RunRecord) EffectiveStatus() string {
	if r.Conclusion != "" {
		return string(r.Conclusion)
	}
	return string(r.Status)
}

// Summary counts this record's jobs by outcome.
func (r RunRecord) Summary() JobSummary {
	return SummarizeJobs(r.Jobs)
}

// statusRankUnknown sorts every unrecognized state after the known ones.
const statusRankUnknown = 99

// StatusRank orders effective statuses for display: problems first, then
// activity, then success.
func StatusRank(effective string) int {
	switch effective {
	case "failure":
		return 0
	case "cancelled":
		return 1
	case "in_progress":
		return 2
	case "success":
		return 3
	case "completed":
		return 4
	default:
		return statusRankUnknown
	}
}

// JobSummary aggregates a run's jobs. A job lands in exactly one bucket:
// conclusions are checked before the in-progress status.
type JobSummary struct {
	Success    int `json:"success"`
	Failure    int `json:"failure"`
	InProgress int `json:"in_progress"`
	Total      int `json:"total"`
}

func SummarizeJobs(jobs []JobRecord) JobSummary {
	s := JobSummary{Total: len(jobs)}
	for _, j := range jobs {
		switch {
		case j.Conclusion == ConclusionSuccess:
			s.Success++
		case j.Conclusion == ConclusionFailure:
			s.Failure++
		case j.Status == StatusInProgress:
			s.InProgress++
		}
	}
	return s
}

// Totals are the headline numbers at the top of the dashboard. Muted records
// are excluded from every count.
type Totals struct {
	Records    int `json:"records"`
	Passing    int `json:"passing"`
	Failing    int `json:"failing"`
	InProgress int `json:"in_progress"`
}

func ComputeTotals(records []RunRecord) Totals {
	var t Totals
	for _, r := range records {
		if r.Muted {
			continue
		}
		t.Records++
		switch {
		case r.Conclusion == ConclusionSuccess:
			t.Passing++
		case r.Conclusion == ConclusionFailure:
			t.Failing++
		case r.Status == StatusInProgress:
			t.InProgress++
		}
	}
	return t
}

// Snapshot is one full pipeline result: everything needed to render the
// dashboard, plus the diagnostics collected along the way.
type Snapshot struct {
	ID            string      `json:"id"`
	GeneratedAt   time.Time   `json:"generated_at"`
	Account       string      `json:"account"`
	AccountType   string      `json:"account_type,omitempty"`
	SchemaVersion string      `json:"schema_version"`
	Selection     Selection   `json:"selection,omitempty"`
	Filter        []string    `json:"filter,omitempty"`
	Records       []RunRecord `json:"records"`
	// Errors lists repositories that were skipped, one message each.
	Errors []string `json:"errors,omitempty"`
}

func (s *Snapshot) Totals() Totals {
	return ComputeTotals(s.Records)
}

// SortRecords orders records for display: category rank, then status rank on
// the effective status, then repository, then workflow name. The sort is
// stable so equal records keep their source order.
func SortRecords(records []RunRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Category.Rank != b.Category.Rank {
			return a.Category.Rank < b.Category.Rank
		}
		if a.Category.ID != b.Category.ID {
			return a.Category.ID < b.Category.ID
		}
		ar, br := StatusRank(a.EffectiveStatus()), StatusRank(b.EffectiveStatus())
		if ar != br {
			return ar < br
		}
		if a.Repo != b.Repo {
			return a.Repo < b.Repo
		}
		return a.Workflow < b.Workflow
	})
}

// CategoryGroup is one dashboard section: a category and its records in
// display order.
type CategoryGroup struct {
	Category Category    `json:"category"`
	Records  []RunRecord `json:"records"`
}

// GroupByCategory buckets records into per-category groups ordered by rank.
// Record order within each group is preserved, so callers sort first.
func GroupByCategory(records []RunRecord) []CategoryGroup {
	var groups []CategoryGroup
	idx := make(map[string]int)
	for _, r := range records {
		gi, ok := idx[r.Category.ID]
		if !ok {
			groups = append(groups, CategoryGroup{Category: r.Category})
			gi = len(groups) - 1
			idx[r.Category.ID] = gi
		}
		groups[gi].Records = append(groups[gi].Records, r)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Category, groups[j].Category
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		return a.ID < b.ID
	})
	return groups
}
