package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/linserv/actions-dashboard/internal/model"
)

type diffPayload struct {
	BaseID  string        `json:"base_id"`
	HeadID  string        `json:"head_id"`
	Summary diffSummary   `json:"summary"`
	New     []diffRecord  `json:"new"`
	Removed []diffRecord  `json:"removed"`
	Changed []diffChanged `json:"changed"`
}

type diffSummary struct {
	NewCount     int `json:"new"`
	RemovedCount int `json:"removed"`
	ChangedCount int `json:"changed"`
}

type diffRecord struct {
	Repo     string `json:"repo"`
	Workflow string `json:"workflow"`
	Status   string `json:"status"`
	Branch   string `json:"branch,omitempty"`
	Category string `json:"category,omitempty"`
}

type diffChanged struct {
	Key     string     `json:"key"`
	Base    diffRecord `json:"base"`
	Head    diffRecord `json:"head"`
	Changed []string   `json:"fields_changed"`
}

// WriteDiffJSON compares two snapshots record by record and writes what
// appeared, disappeared, and changed state between them.
func WriteDiffJSON(outDir string, base, head *model.Snapshot) (string, error) {
	path := filepath.Join(outDir, "diff_"+base.ID+"__"+head.ID+".json")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}

	// index records
	bm := map[string]model.RunRecord{}
	hm := map[string]model.RunRecord{}
	for _, r := range base.Records {
		bm[keyOf(r)] = r
	}
	for _, r := range head.Records {
		hm[keyOf(r)] = r
	}

	var added []diffRecord
	var removed []diffRecord
	var changed []diffChanged

	// additions & changes
	for k, hr := range hm {
		if br, ok := bm[k]; !ok {
			added = append(added, asDiff(hr))
		} else {
			var fields []string
			if br.EffectiveStatus() != hr.EffectiveStatus() {
				fields = append(fields, "status")
			}
			if norm(br.Branch) != norm(hr.Branch) {
				fields = append(fields, "branch")
			}
			if br.Category.ID != hr.Category.ID {
				fields = append(fields, "category")
			}
			if len(fields) > 0 {
				changed = append(changed, diffChanged{
					Key:     k,
					Base:    asDiff(br),
					Head:    asDiff(hr),
					Changed: fields,
				})
			}
		}
	}
	// removals
	for k, br := range bm {
		if _, ok := hm[k]; !ok {
			removed = append(removed, asDiff(br))
		}
	}

	// stable sort
	byRepoWorkflow := func(s []diffRecord) func(i, j int) bool {
		return func(i, j int) bool {
			if s[i].Repo != s[j].Repo {
				return s[i].Repo < s[j].Repo
			}
			return s[i].Workflow < s[j].Workflow
		}
	}
	sort.Slice(added, byRepoWorkflow(added))
	sort.Slice(removed, byRepoWorkflow(removed))
	sort.Slice(changed, func(i, j int) bool { return changed[i].Key < changed[j].Key })

	payload := diffPayload{
		BaseID: base.ID, HeadID: head.ID,
		Summary: diffSummary{
			NewCount:     len(added),
			RemovedCount: len(removed),
			ChangedCount: len(changed),
		},
		New:     added,
		Removed: removed,
		Changed: changed,
	}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, b, 0o644)
}

// keyOf is a record's logical identity across snapshots: the repository plus
// the workflow name, case-insensitive.
func keyOf(r model.RunRecord) string {
	return norm(r.Repo) + "|" + norm(r.Workflow)
}

func asDiff(r model.RunRecord) diffRecord {
	return diffRecord{
		Repo:     r.Repo,
		Workflow: r.Workflow,
		Status:   r.EffectiveStatus(),
		Branch:   r.Branch,
		Category: r.Category.ID,
	}
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
