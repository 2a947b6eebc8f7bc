package pipeline

import "strings"

// Filter is an allow-list of lowercase substring terms matched against
// workflow names. An empty filter accepts everything.
type Filter []string

// ParseFilter splits a comma-separated term list, trimming and lowercasing
// each term and dropping empties.
func ParseFilter(s string) Filter {
	var f Filter
	for _, t := range strings.Split(s, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			f = append(f, t)
		}
	}
	return f
}

// Accepts reports whether the workflow name passes: true when the filter is
// empty or any term is a substring of the lowercased name.
func (f Filter) Accepts(workflowName string) bool {
	if len(f) == 0 {
		return true
	}
	lower := strings.ToLower(workflowName)
	for _, t := range f {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
