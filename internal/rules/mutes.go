package rules

import (
	"strings"

	"github.com/linserv/actions-dashboard/internal/model"
	"github.com/linserv/actions-dashboard/internal/storage"
)

// ApplyMutes marks every record matched by an active mute and returns the
// number muted. A mute names a repository (owner/name or bare name) and
// optionally one workflow; with no workflow it covers the whole repository.
func ApplyMutes(records []model.RunRecord, mutes []storage.Mute) int {
	if len(mutes) == 0 || len(records) == 0 {
		return 0
	}
	muted := 0
nextRecord:
	for i := range records {
		for _, m := range mutes {
			if !eqCI(records[i].Repo, m.Repo) && !eqCI(repoName(records[i].Repo), m.Repo) {
				continue
			}
			if m.Workflow != "" && !eqCI(records[i].Workflow, m.Workflow) {
				continue
			}
			records[i].Muted = true
			muted++
			continue nextRecord
		}
	}
	return muted
}

// repoName strips the owner from an owner/name repository path.
func repoName(full string) string {
	if i := strings.LastIndex(full, "/"); i >= 0 {
		return full[i+1:]
	}
	return full
}

func eqCI(a, b string) bool { return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) }
