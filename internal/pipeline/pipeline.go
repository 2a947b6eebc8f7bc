// Package pipeline turns raw Actions data into a dashboard snapshot:
// enumerate repositories, select runs per policy, filter by workflow name,
// classify, and sort for display.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gh "github.com/linserv/actions-dashboard/internal/github"
	"github.com/linserv/actions-dashboard/internal/model"
	"github.com/linserv/actions-dashboard/internal/rules"
)

// Source supplies repository, run, and job listings for one account. It is
// implemented by github.Client; tests use in-memory fakes.
type Source interface {
	ListRepositories(ctx context.Context) ([]gh.Repository, error)
	HasWorkflows(ctx context.Context, repo gh.Repository) (bool, error)
	ListWorkflowRuns(ctx context.Context, repo gh.Repository) ([]gh.WorkflowRun, error)
	ListJobs(ctx context.Context, repo gh.Repository, runID int64) ([]gh.WorkflowJob, error)
}

// Params configures one pipeline build. The zero Selection means the
// per-workflow default.
type Params struct {
	Account     string
	AccountType string
	Selection   model.Selection
	Filter      Filter
	FetchJobs   bool
}

// Build runs the pipeline once. A failure while processing one repository
// skips that repository and records a diagnostic on the snapshot; only
// repository enumeration itself is fatal.
func Build(ctx context.Context, src Source, p Params) (model.Snapshot, error) {
	if p.Selection == "" {
		p.Selection = model.SelectionPerWorkflow
	}
	now := time.Now().UTC()
	snap := model.Snapshot{
		ID:            fmt.Sprintf("snap-%d", now.Unix()),
		GeneratedAt:   now,
		Account:       p.Account,
		AccountType:   p.AccountType,
		SchemaVersion: model.SchemaVersion,
		Selection:     p.Selection,
		Filter:        p.Filter,
	}

	repos, err := src.ListRepositories(ctx)
	if err != nil {
		return snap, fmt.Errorf("list repositories for %s: %w", p.Account, err)
	}

	for _, repo := range repos {
		if repo.Archived {
			slog.Debug("skipping archived repository", "repo", repo.FullName)
			continue
		}
		records, err := collect(ctx, src, repo, p)
		if err != nil {
			slog.Warn("repository skipped", "repo", repo.FullName, "err", err)
			snap.Errors = append(snap.Errors, fmt.Sprintf("%s: %v", repo.FullName, err))
			continue
		}
		snap.Records = append(snap.Records, records...)
	}

	model.SortRecords(snap.Records)
	return snap, nil
}

// collect builds the records one repository contributes. Any error discards
// the whole repository so a half-fetched run list never surfaces.
func collect(ctx context.Context, src Source, repo gh.Repository, p Params) ([]model.RunRecord, error) {
	ok, err := src.HasWorkflows(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	if !ok {
		return nil, nil
	}

	runs, err := src.ListWorkflowRuns(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, nil
	}

	var out []model.RunRecord
	for _, run := range selectRuns(runs, p.Selection) {
		if !p.Filter.Accepts(run.Name) {
			continue
		}
		rec := model.RunRecord{
			Repo:       repo.FullName,
			RepoURL:    repo.HTMLURL,
			Workflow:   run.Name,
			Status:     model.Status(run.Status),
			Conclusion: model.Conclusion(run.Conclusion),
			Branch:     run.HeadBranch,
			RunURL:     run.HTMLURL,
			UpdatedAt:  run.UpdatedAt,
			Category:   rules.Classify(run.Name),
		}
		if p.FetchJobs {
			jobs, err := src.ListJobs(ctx, repo, run.ID)
			if err != nil {
				return nil, fmt.Errorf("list jobs for run %d: %w", run.ID, err)
			}
			rec.Jobs = toJobRecords(jobs)
		}
		out = append(out, rec)
	}
	return out, nil
}

func toJobRecords(jobs []gh.WorkflowJob) []model.JobRecord {
	if len(jobs) == 0 {
		return nil
	}
	out := make([]model.JobRecord, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, model.JobRecord{
			Name:        j.Name,
			Status:      model.Status(j.Status),
			Conclusion:  model.Conclusion(j.Conclusion),
			StartedAt:   j.StartedAt,
			CompletedAt: j.CompletedAt,
		})
	}
	return out
}
