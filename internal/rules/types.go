package rules

import "github.com/linserv/actions-dashboard/internal/model"

// Rule assigns workflows to a category by name. Rules are evaluated in
// ascending Priority order and the first match wins.
type Rule struct {
	ID       string
	Summary  string
	Priority int
	Category model.Category
	// Match reports whether the workflow name belongs to this rule's category.
	Match func(workflowName string) bool
}
