package perf

import (
	"context"
	"fmt"
	"testing"
	"time"

	gh "github.com/linserv/actions-dashboard/internal/github"
	"github.com/linserv/actions-dashboard/internal/pipeline"
)

// benchSource fabricates a mid-sized account: 20 repositories with 10 runs
// each across a handful of workflow names.
type benchSource struct {
	repos []gh.Repository
	runs  map[string][]gh.WorkflowRun
}

func newBenchSource() *benchSource {
	src := &benchSource{runs: map[string][]gh.WorkflowRun{}}
	names := []string{"Odoo Sync", "Odoo Nightly", "3rd Party Import", "Deploy", "CI"}
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		full := fmt.Sprintf("linserv/repo-%02d", i)
		src.repos = append(src.repos, gh.Repository{
			Owner: "linserv", Name: fmt.Sprintf("repo-%02d", i), FullName: full,
		})
		var runs []gh.WorkflowRun
		for j := 0; j < 10; j++ {
			conclusion := "success"
			if j%4 == 0 {
				conclusion = "failure"
			}
			runs = append(runs, gh.WorkflowRun{
				ID:         int64(i*100 + j),
				Name:       names[j%len(names)],
				Status:     "completed",
				Conclusion: conclusion,
				UpdatedAt:  base.Add(-time.Duration(j) * time.Hour),
			})
		}
		src.runs[full] = runs
	}
	return src
}

func (s *benchSource) ListRepositories(ctx context.Context) ([]gh.Repository, error) {
	return s.repos, nil
}

func (s *benchSource) HasWorkflows(ctx context.Context, repo gh.Repository) (bool, error) {
	return true, nil
}

func (s *benchSource) ListWorkflowRuns(ctx context.Context, repo gh.Repository) ([]gh.WorkflowRun, error) {
	return s.runs[repo.FullName], nil
}

func (s *benchSource) ListJobs(ctx context.Context, repo gh.Repository, runID int64) ([]gh.WorkflowJob, error) {
	return nil, nil
}

func BenchmarkBuild_Small(b *testing.B) {
	src := newBenchSource()
	params := pipeline.Params{
		Account: "linserv",
		Filter:  pipeline.ParseFilter("odoo,3rd"),
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		snap, err := pipeline.Build(context.Background(), src, params)
		if err != nil {
			b.Fatal(err)
		}
		if len(snap.Records) == 0 {
			b.Fatal("no records built")
		}
	}
}
