package rules

import (
	"strings"

	"github.com/linserv/actions-dashboard/internal/model"
)

func init() {
	Register(Rule{
		ID:       "CAT-THIRD-PARTY",
		Summary:  "Workflows that sync third-party addons or vendor code.",
		Priority: 10,
		Category: model.CategoryThirdParty,
		Match:    matchThirdParty,
	})
}

func matchThirdParty(workflowName string) bool {
	n := strings.ToLower(workflowName)
	return strings.Contains(n, "3rd") || strings.Contains(n, "third")
}
