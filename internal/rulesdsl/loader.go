package rulesdsl

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/linserv/actions-dashboard/internal/model"
	"github.com/linserv/actions-dashboard/internal/rules"
)

type dslPack struct {
	Rules []dslRule `yaml:"rules"`
}

type dslRule struct {
	ID       string `yaml:"id"`
	Summary  string `yaml:"summary"`
	Priority int    `yaml:"priority"` // evaluation order; 0 means after built-ins

	Category struct {
		ID    string `yaml:"id"`
		Title string `yaml:"title"`
		Rank  int    `yaml:"rank"` // display order; 0 means between built-ins
	} `yaml:"category"`

	Where struct {
		Contains []string `yaml:"contains"` // match any term, case-insensitive
		Pattern  string   `yaml:"pattern"`  // regex (case-insensitive)
	} `yaml:"where"`
}

type compiled struct {
	rule      dslRule
	terms     []string
	rePattern *regexp.Regexp
	category  model.Category
}

// Zero priority/rank in a pack mean "unset"; these slot the rule after the
// built-in matchers and its category between the built-in groups.
const (
	defaultPriority = 50
	defaultRank     = 50
)

func LoadAndRegister(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read rules pack: %w", err)
	}
	var pack dslPack
	if err := yaml.Unmarshal(b, &pack); err != nil {
		return 0, fmt.Errorf("parse yaml: %w", err)
	}
	var n int
	for _, r := range pack.Rules {
		cr, err := compile(r)
		if err != nil {
			return n, fmt.Errorf("compile rule %q: %w", r.ID, err)
		}
		registerCompiled(*cr)
		n++
	}
	return n, nil
}

func compile(r dslRule) (*compiled, error) {
	if r.ID == "" || r.Category.ID == "" {
		return nil, fmt.Errorf("missing required fields (id/category.id)")
	}
	if len(r.Where.Contains) == 0 && r.Where.Pattern == "" {
		return nil, fmt.Errorf("empty where clause (need contains or pattern)")
	}
	c := &compiled{rule: r}
	for _, t := range r.Where.Contains {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			c.terms = append(c.terms, t)
		}
	}
	if r.Where.Pattern != "" {
		re, err := regexp.Compile("(?i)" + r.Where.Pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern regex: %w", err)
		}
		c.rePattern = re
	}
	title := strings.TrimSpace(r.Category.Title)
	if title == "" {
		title = r.Category.ID
	}
	rank := r.Category.Rank
	if rank == 0 {
		rank = defaultRank
	}
	c.category = model.Category{ID: r.Category.ID, Title: title, Rank: rank}
	return c, nil
}

func registerCompiled(c compiled) {
	priority := c.rule.Priority
	if priority == 0 {
		priority = defaultPriority
	}
	rules.Register(rules.Rule{
		ID:       c.rule.ID,
		Summary:  c.rule.Summary,
		Priority: priority,
		Category: c.category,
		Match: func(workflowName string) bool {
			lower := strings.ToLower(workflowName)
			for _, t := range c.terms {
				if strings.Contains(lower, t) {
					return true
				}
			}
			return c.rePattern != nil && c.rePattern.MatchString(workflowName)
		},
	})
}
