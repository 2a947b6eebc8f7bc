package rules

import "strings"

type Settings struct {
	Disabled map[string]bool // UPPER(rule ID) -> skip this rule
}

var rsettings = Settings{
	Disabled: map[string]bool{},
}

func SetSettings(s Settings) {
	// fill defaults
	if s.Disabled == nil {
		s.Disabled = map[string]bool{}
	}
	rsettings = s
}

// DisabledSet builds a Settings.Disabled map from a list of rule IDs.
func DisabledSet(ids []string) map[string]bool {
	out := map[string]bool{}
	for _, id := range ids {
		id = strings.ToUpper(strings.TrimSpace(id))
		if id != "" {
			out[id] = true
		}
	}
	return out
}
