package github

import (
	"context"
	"fmt"
	"log/slog"

	gogithub "github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
)

const (
	accountTypeOrg  = "organization"
	accountTypeUser = "user"

	// pageSize is the API maximum; fewer round trips per listing.
	pageSize = 100
)

// Client lists an account's repositories and their Actions data. All listing
// calls follow pagination to the end, except runs which stop at maxRuns.
type Client struct {
	api         *gogithub.Client
	account     string
	accountType string
	maxRuns     int
}

// NewClient authenticates with token and resolves account, trying it as an
// organization first and falling back to a user account when that lookup
// fails.
func NewClient(ctx context.Context, token, account string, maxRuns int) (*Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return newClient(ctx, gogithub.NewClient(oauth2.NewClient(ctx, ts)), account, maxRuns)
}

// newClient lets tests inject an API client pointed at a test server.
func newClient(ctx context.Context, api *gogithub.Client, account string, maxRuns int) (*Client, error) {
	if maxRuns <= 0 {
		maxRuns = pageSize
	}
	c := &Client{api: api, account: account, maxRuns: maxRuns}
	if _, _, err := api.Organizations.Get(ctx, account); err == nil {
		c.accountType = accountTypeOrg
	} else if _, _, uerr := api.Users.Get(ctx, account); uerr == nil {
		c.accountType = accountTypeUser
	} else {
		return nil, fmt.Errorf("resolve account %q: %w", account, uerr)
	}
	slog.Debug("account resolved", "account", account, "type", c.accountType)
	return c, nil
}

func (c *Client) Account() string     { return c.account }
func (c *Client) AccountType() string { return c.accountType }

// ListRepositories returns every repository of the account, archived ones
// included; the pipeline decides what to skip.
func (c *Client) ListRepositories(ctx context.Context) ([]Repository, error) {
	var out []Repository
	if c.accountType == accountTypeOrg {
		opt := &gogithub.RepositoryListByOrgOptions{
			ListOptions: gogithub.ListOptions{PerPage: pageSize},
		}
		for {
			repos, resp, err := c.api.Repositories.ListByOrg(ctx, c.account, opt)
			if err != nil {
				return nil, fmt.Errorf("list org repositories: %w", err)
			}
			for _, r := range repos {
				out = append(out, toRepository(r))
			}
			if resp.NextPage == 0 {
				break
			}
			opt.Page = resp.NextPage
		}
		return out, nil
	}

	opt := &gogithub.RepositoryListOptions{
		ListOptions: gogithub.ListOptions{PerPage: pageSize},
	}
	for {
		repos, resp, err := c.api.Repositories.List(ctx, c.account, opt)
		if err != nil {
			return nil, fmt.Errorf("list user repositories: %w", err)
		}
		for _, r := range repos {
			out = append(out, toRepository(r))
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return out, nil
}

// HasWorkflows reports whether the repository defines any workflows, so
// repositories without Actions never cost a run-listing call.
func (c *Client) HasWorkflows(ctx context.Context, repo Repository) (bool, error) {
	wfs, _, err := c.api.Actions.ListWorkflows(ctx, repo.Owner, repo.Name,
		&gogithub.ListOptions{PerPage: 1})
	if err != nil {
		return false, err
	}
	return wfs.GetTotalCount() > 0, nil
}

// ListWorkflowRuns returns up to maxRuns of the repository's most recent
// runs, newest first as the API delivers them.
func (c *Client) ListWorkflowRuns(ctx context.Context, repo Repository) ([]WorkflowRun, error) {
	var out []WorkflowRun
	opt := &gogithub.ListWorkflowRunsOptions{
		ListOptions: gogithub.ListOptions{PerPage: pageSize},
	}
	for {
		runs, resp, err := c.api.Actions.ListRepositoryWorkflowRuns(ctx, repo.Owner, repo.Name, opt)
		if err != nil {
			return nil, err
		}
		for _, r := range runs.WorkflowRuns {
			out = append(out, toWorkflowRun(r))
			if len(out) >= c.maxRuns {
				return out, nil
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return out, nil
}

// ListJobs returns every job of one run, in the latest attempt.
func (c *Client) ListJobs(ctx context.Context, repo Repository, runID int64) ([]WorkflowJob, error) {
	var out []WorkflowJob
	opt := &gogithub.ListWorkflowJobsOptions{
		ListOptions: gogithub.ListOptions{PerPage: pageSize},
	}
	for {
		jobs, resp, err := c.api.Actions.ListWorkflowJobs(ctx, repo.Owner, repo.Name, runID, opt)
		if err != nil {
			return nil, err
		}
		for _, j := range jobs.Jobs {
			out = append(out, toWorkflowJob(j))
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return out, nil
}

func toRepository(r *gogithub.Repository) Repository {
	return Repository{
		Owner:    r.GetOwner().GetLogin(),
		Name:     r.GetName(),
		FullName: r.GetFullName(),
		HTMLURL:  r.GetHTMLURL(),
		Archived: r.GetArchived(),
	}
}

func toWorkflowRun(r *gogithub.WorkflowRun) WorkflowRun {
	return WorkflowRun{
		ID:         r.GetID(),
		Name:       r.GetName(),
		Status:     r.GetStatus(),
		Conclusion: r.GetConclusion(),
		HeadBranch: r.GetHeadBranch(),
		HTMLURL:    r.GetHTMLURL(),
		UpdatedAt:  r.GetUpdatedAt().Time,
	}
}

func toWorkflowJob(j *gogithub.WorkflowJob) WorkflowJob {
	return WorkflowJob{
		Name:        j.GetName(),
		Status:      j.GetStatus(),
		Conclusion:  j.GetConclusion(),
		StartedAt:   j.GetStartedAt().Time,
		CompletedAt: j.GetCompletedAt().Time,
	}
}
