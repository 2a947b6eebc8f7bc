package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	gh "github.com/linserv/actions-dashboard/internal/github"
	"github.com/linserv/actions-dashboard/internal/model"
)

// fakeSource serves canned listings keyed by repository full name.
type fakeSource struct {
	repos    []gh.Repository
	has      map[string]bool
	runs     map[string][]gh.WorkflowRun
	jobs     map[int64][]gh.WorkflowJob
	fail     map[string]error
	failAll  error
	jobCalls int
}

func (f *fakeSource) ListRepositories(ctx context.Context) ([]gh.Repository, error) {
	return f.repos, f.failAll
}

func (f *fakeSource) HasWorkflows(ctx context.Context, repo gh.Repository) (bool, error) {
	if f.has != nil {
		return f.has[repo.FullName], nil
	}
	return true, nil
}

func (f *fakeSource) ListWorkflowRuns(ctx context.Context, repo gh.Repository) ([]gh.WorkflowRun, error) {
	if err := f.fail[repo.FullName]; err != nil {
		return nil, err
	}
	return f.runs[repo.FullName], nil
}

func (f *fakeSource) ListJobs(ctx context.Context, repo gh.Repository, runID int64) ([]gh.WorkflowJob, error) {
	f.jobCalls++
	return f.jobs[runID], nil
}

func repo(fullName string) gh.Repository {
	owner, name, _ := strings.Cut(fullName, "/")
	return gh.Repository{
		Owner:    owner,
		Name:     name,
		FullName: fullName,
		HTMLURL:  "https://github.com/" + fullName,
	}
}

func when(age time.Duration) time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).Add(-age)
}

func TestBuild_PerWorkflow(t *testing.T) {
	src := &fakeSource{
		repos: []gh.Repository{repo("linserv/app")},
		runs: map[string][]gh.WorkflowRun{
			"linserv/app": {
				{ID: 1, Name: "Odoo Sync", Status: "completed", Conclusion: "success", HeadBranch: "main", UpdatedAt: when(2 * time.Hour)},
				{ID: 2, Name: "Odoo Sync", Status: "completed", Conclusion: "failure", HeadBranch: "main", UpdatedAt: when(1 * time.Hour)},
				{ID: 3, Name: "Deploy", Status: "completed", Conclusion: "success", UpdatedAt: when(3 * time.Hour)},
			},
		},
	}
	snap, err := Build(context.Background(), src, Params{Account: "linserv"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(snap.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(snap.Records))
	}
	// Sorted output: the odoo-sync category ranks before other.
	if snap.Records[0].Workflow != "Odoo Sync" {
		t.Fatalf("first record = %s, want Odoo Sync", snap.Records[0].Workflow)
	}
	if snap.Records[0].Conclusion != model.ConclusionFailure {
		t.Fatalf("kept run %s, want the newer failing one", snap.Records[0].Conclusion)
	}
	if snap.Records[0].Category.ID != "odoo-sync" || snap.Records[1].Category.ID != "other" {
		t.Fatalf("categories = %s, %s", snap.Records[0].Category.ID, snap.Records[1].Category.ID)
	}
	if snap.Selection != model.SelectionPerWorkflow {
		t.Fatalf("default selection = %s", snap.Selection)
	}
}

func TestBuild_Latest(t *testing.T) {
	src := &fakeSource{
		repos: []gh.Repository{repo("linserv/app")},
		runs: map[string][]gh.WorkflowRun{
			"linserv/app": {
				{ID: 1, Name: "Odoo Sync", UpdatedAt: when(2 * time.Hour)},
				{ID: 2, Name: "Deploy", UpdatedAt: when(10 * time.Minute)},
			},
		},
	}
	snap, err := Build(context.Background(), src, Params{Account: "linserv", Selection: model.SelectionLatest})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(snap.Records) != 1 || snap.Records[0].Workflow != "Deploy" {
		t.Fatalf("records = %+v, want just the newest run", snap.Records)
	}
}

func TestBuild_Filter(t *testing.T) {
	src := &fakeSource{
		repos: []gh.Repository{repo("linserv/app")},
		runs: map[string][]gh.WorkflowRun{
			"linserv/app": {
				{ID: 1, Name: "Odoo Sync", UpdatedAt: when(time.Hour)},
				{ID: 2, Name: "Deploy", UpdatedAt: when(time.Hour)},
				{ID: 3, Name: "3rd Party Sync", UpdatedAt: when(time.Hour)},
			},
		},
	}
	snap, err := Build(context.Background(), src, Params{Account: "linserv", Filter: ParseFilter("odoo,3rd")})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(snap.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(snap.Records))
	}
	for _, r := range snap.Records {
		if r.Workflow == "Deploy" {
			t.Fatal("filtered workflow leaked through")
		}
	}
}

func TestBuild_SkipsArchivedAndQuietRepos(t *testing.T) {
	archived := repo("linserv/legacy")
	archived.Archived = true
	src := &fakeSource{
		repos: []gh.Repository{
			archived,
			repo("linserv/no-workflows"),
			repo("linserv/no-runs"),
			repo("linserv/app"),
		},
		has: map[string]bool{
			"linserv/no-runs": true,
			"linserv/app":     true,
			// legacy would qualify too, but archived repos are never queried
			"linserv/legacy": true,
		},
		runs: map[string][]gh.WorkflowRun{
			"linserv/legacy": {{ID: 9, Name: "Odoo Sync", UpdatedAt: when(time.Hour)}},
			"linserv/app":    {{ID: 1, Name: "Odoo Sync", UpdatedAt: when(time.Hour)}},
		},
	}
	snap, err := Build(context.Background(), src, Params{Account: "linserv"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(snap.Records) != 1 || snap.Records[0].Repo != "linserv/app" {
		t.Fatalf("records = %+v, want only linserv/app", snap.Records)
	}
	if len(snap.Errors) != 0 {
		t.Fatalf("quiet repos must not count as errors: %v", snap.Errors)
	}
}

func TestBuild_RepoErrorSkipsAndContinues(t *testing.T) {
	src := &fakeSource{
		repos: []gh.Repository{repo("linserv/broken"), repo("linserv/app")},
		runs: map[string][]gh.WorkflowRun{
			"linserv/app": {{ID: 1, Name: "Odoo Sync", UpdatedAt: when(time.Hour)}},
		},
		fail: map[string]error{
			"linserv/broken": errors.New("boom"),
		},
	}
	snap, err := Build(context.Background(), src, Params{Account: "linserv"})
	if err != nil {
		t.Fatalf("Build must not fail for a single repository: %v", err)
	}
	if len(snap.Records) != 1 || snap.Records[0].Repo != "linserv/app" {
		t.Fatalf("records = %+v", snap.Records)
	}
	if len(snap.Errors) != 1 || !strings.Contains(snap.Errors[0], "linserv/broken") {
		t.Fatalf("errors = %v, want one naming linserv/broken", snap.Errors)
	}
}

func TestBuild_EnumerationErrorIsFatal(t *testing.T) {
	src := &fakeSource{failAll: errors.New("bad credentials")}
	_, err := Build(context.Background(), src, Params{Account: "linserv"})
	if err == nil {
		t.Fatal("expected repository enumeration failure to surface")
	}
	if !strings.Contains(err.Error(), "linserv") {
		t.Fatalf("error should name the account: %v", err)
	}
}

func TestBuild_FetchJobs(t *testing.T) {
	src := &fakeSource{
		repos: []gh.Repository{repo("linserv/app")},
		runs: map[string][]gh.WorkflowRun{
			"linserv/app": {{ID: 7, Name: "Odoo Sync", UpdatedAt: when(time.Hour)}},
		},
		jobs: map[int64][]gh.WorkflowJob{
			7: {
				{Name: "build", Status: "completed", Conclusion: "success"},
				{Name: "sync", Status: "in_progress"},
			},
		},
	}
	snap, err := Build(context.Background(), src, Params{Account: "linserv", FetchJobs: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	sum := snap.Records[0].Summary()
	if sum.Total != 2 || sum.Success != 1 || sum.InProgress != 1 {
		t.Fatalf("job summary = %+v", sum)
	}

	src.jobCalls = 0
	if _, err := Build(context.Background(), src, Params{Account: "linserv"}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if src.jobCalls != 0 {
		t.Fatalf("jobs fetched %d times with FetchJobs off", src.jobCalls)
	}
}

func TestBuild_SnapshotMetadata(t *testing.T) {
	src := &fakeSource{repos: []gh.Repository{}}
	snap, err := Build(context.Background(), src, Params{Account: "linserv", AccountType: "organization"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.HasPrefix(snap.ID, "snap-") {
		t.Fatalf("snapshot id = %q", snap.ID)
	}
	if snap.GeneratedAt.IsZero() || snap.GeneratedAt.Location() != time.UTC {
		t.Fatalf("generated_at = %v", snap.GeneratedAt)
	}
	if snap.SchemaVersion != model.SchemaVersion {
		t.Fatalf("schema version = %q", snap.SchemaVersion)
	}
	if snap.Account != "linserv" || snap.AccountType != "organization" {
		t.Fatalf("account = %s/%s", snap.Account, snap.AccountType)
	}
}
