package rules

import (
	"strings"

	"github.com/linserv/actions-dashboard/internal/model"
)

func init() {
	Register(Rule{
		ID:       "CAT-ODOO-SYNC",
		Summary:  "Workflows that keep Odoo instances in sync.",
		Priority: 0,
		Category: model.CategoryOdooSync,
		Match:    matchOdooSync,
	})
}

func matchOdooSync(workflowName string) bool {
	return strings.Contains(strings.ToLower(workflowName), "odoo")
}
