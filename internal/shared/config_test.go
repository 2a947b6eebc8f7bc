package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.GitHub.Account != "linservbot" {
		t.Fatalf("account = %q", c.GitHub.Account)
	}
	if c.GitHub.MaxRunsPerRepo != 200 {
		t.Fatalf("max runs = %d", c.GitHub.MaxRunsPerRepo)
	}
	if c.Dashboard.Filter != "odoo,3rd" {
		t.Fatalf("filter = %q", c.Dashboard.Filter)
	}
	if c.Dashboard.Selection != "per-workflow" || !c.Dashboard.FetchJobs {
		t.Fatalf("dashboard defaults = %+v", c.Dashboard)
	}
	if c.Database.Driver != "sqlite" || c.Database.DSN != "./dashboard.db" {
		t.Fatalf("database defaults = %+v", c.Database)
	}
	if c.Server.Addr != ":8080" || c.Server.Username != "" {
		t.Fatalf("server defaults = %+v", c.Server)
	}
	if c.Logging.Format != "json" || c.Logging.Level != "info" {
		t.Fatalf("logging defaults = %+v", c.Logging)
	}
}

func TestLoadConfig_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	body := `
github:
  account: acme
  max_runs_per_repo: 50
dashboard:
  selection: latest
rules:
  disabled: [CAT-ODOO-SYNC]
server:
  addr: ":9090"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DASHBOARD_USER", "")
	t.Setenv("DASHBOARD_SELECTION", "")

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.GitHub.Account != "acme" || c.GitHub.MaxRunsPerRepo != 50 {
		t.Fatalf("github overlay = %+v", c.GitHub)
	}
	if c.Dashboard.Selection != "latest" {
		t.Fatalf("selection = %q", c.Dashboard.Selection)
	}
	// Keys the file omits keep their defaults.
	if c.Dashboard.Filter != "odoo,3rd" {
		t.Fatalf("filter = %q, want the default", c.Dashboard.Filter)
	}
	if len(c.Rules.Disabled) != 1 || c.Rules.Disabled[0] != "CAT-ODOO-SYNC" {
		t.Fatalf("disabled = %v", c.Rules.Disabled)
	}
	if c.Server.Addr != ":9090" {
		t.Fatalf("addr = %q", c.Server.Addr)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "tkn-123")
	t.Setenv("DASHBOARD_USER", "otherorg")
	t.Setenv("DASHBOARD_SELECTION", "latest")
	t.Setenv("DASHBOARD_MAX_RUNS", "25")
	t.Setenv("DASHBOARD_DB_DSN", "/tmp/x.db")
	t.Setenv("DASHBOARD_LOG_LEVEL", "debug")

	c, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.GitHub.Token != "tkn-123" || c.GitHub.Account != "otherorg" {
		t.Fatalf("github env = %+v", c.GitHub)
	}
	if c.Dashboard.Selection != "latest" {
		t.Fatalf("selection = %q", c.Dashboard.Selection)
	}
	if c.GitHub.MaxRunsPerRepo != 25 {
		t.Fatalf("max runs = %d", c.GitHub.MaxRunsPerRepo)
	}
	if c.Database.DSN != "/tmp/x.db" || c.Logging.Level != "debug" {
		t.Fatalf("env overrides = %+v / %+v", c.Database, c.Logging)
	}
}

func TestLoadConfig_EmptyFilterEnvDisablesFiltering(t *testing.T) {
	t.Setenv("DASHBOARD_WORKFLOW_FILTER", "")
	c, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Dashboard.Filter != "" {
		t.Fatalf("filter = %q, want empty (set-but-empty env)", c.Dashboard.Filter)
	}
}

func TestLoadConfig_BadMaxRunsIgnored(t *testing.T) {
	t.Setenv("DASHBOARD_MAX_RUNS", "not-a-number")
	c, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.GitHub.MaxRunsPerRepo != 200 {
		t.Fatalf("max runs = %d, want default kept", c.GitHub.MaxRunsPerRepo)
	}
}

func TestLoadConfig_MissingFileKeepsDefaults(t *testing.T) {
	t.Setenv("DASHBOARD_USER", "")
	c, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.GitHub.Account != "linservbot" {
		t.Fatalf("account = %q, want default", c.GitHub.Account)
	}
}
