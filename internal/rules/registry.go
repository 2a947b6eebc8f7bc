package rules

import (
	"sort"
	"strings"

	"github.com/linserv/actions-dashboard/internal/model"
)

var (
	registry  []Rule
	ruleIndex = map[string]int{} // UPPER(ruleID) -> index
)

func Register(r Rule) {
	registry = append(registry, r)
	ruleIndex[strings.ToUpper(strings.TrimSpace(r.ID))] = len(registry) - 1
}

// List returns enabled rules in evaluation order: ascending priority, rule ID
// as the tiebreak.
func List() []Rule {
	out := make([]Rule, 0, len(registry))
	for _, r := range registry {
		if rsettings.Disabled[strings.ToUpper(r.ID)] {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Classify assigns a workflow name to exactly one category: the category of
// the first rule that matches, or the catch-all bucket when none do.
func Classify(workflowName string) model.Category {
	for _, r := range List() {
		if r.Match(workflowName) {
			return r.Category
		}
	}
	return model.CategoryOther
}

// Categories returns every category the enabled rules can assign, in display
// order. The catch-all bucket is always present and always last in rank
// unless a rule pack overrides it.
func Categories() []model.Category {
	seen := map[string]bool{}
	var out []model.Category
	for _, r := range List() {
		if seen[r.Category.ID] {
			continue
		}
		seen[r.Category.ID] = true
		out = append(out, r.Category)
	}
	if !seen[model.CategoryOther.ID] {
		out = append(out, model.CategoryOther)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Get returns a rule by ID if registered (used by the API to describe rules).
func Get(id string) (Rule, bool) {
	idx, ok := ruleIndex[strings.ToUpper(strings.TrimSpace(id))]
	if !ok || idx < 0 || idx >= len(registry) {
		return Rule{}, false
	}
	return registry[idx], true
}
