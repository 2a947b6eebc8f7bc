package pipeline

import (
	"sort"

	gh "github.com/linserv/actions-dashboard/internal/github"
	"github.com/linserv/actions-dashboard/internal/model"
)

// selectRuns reduces one repository's runs to the set the policy keeps: the
// single most recently updated run, or the most recent run of each distinct
// workflow name. Input order does not matter; ties keep the source order.
func selectRuns(runs []gh.WorkflowRun, policy model.Selection) []gh.WorkflowRun {
	if len(runs) == 0 {
		return nil
	}

	ordered := make([]gh.WorkflowRun, len(runs))
	copy(ordered, runs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].UpdatedAt.After(ordered[j].UpdatedAt)
	})

	if policy == model.SelectionLatest {
		return ordered[:1]
	}

	// Latest per workflow, scoped to this repository.
	var out []gh.WorkflowRun
	seen := make(map[string]struct{})
	for _, r := range ordered {
		if _, ok := seen[r.Name]; ok {
			continue
		}
		seen[r.Name] = struct{}{}
		out = append(out, r)
	}
	return out
}
