package shared

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	GitHub struct {
		Account        string `yaml:"account"`           // user or organization to scan
		Token          string `yaml:"token"`             // normally via GITHUB_TOKEN
		MaxRunsPerRepo int    `yaml:"max_runs_per_repo"` // run-listing cap per repository
	} `yaml:"github"`

	Dashboard struct {
		Filter    string `yaml:"filter"`     // comma-separated workflow terms; "" keeps all
		Selection string `yaml:"selection"`  // "per-workflow" (default) | "latest"
		FetchJobs bool   `yaml:"fetch_jobs"` // per-run job details
	} `yaml:"dashboard"`

	Rules struct {
		Pack     string   `yaml:"pack"`     // optional extra category rules (YAML)
		Disabled []string `yaml:"disabled"` // rule IDs to skip
	} `yaml:"rules"`

	Database struct {
		Driver string `yaml:"driver"` // "sqlite" (default)
		DSN    string `yaml:"dsn"`    // "./dashboard.db"
	} `yaml:"database"`

	Reporting struct {
		OutDir string `yaml:"out_dir"` // "./output"
	} `yaml:"reporting"`

	Server struct {
		Addr           string   `yaml:"addr"`          // ":8080"
		Username       string   `yaml:"username"`      // "" disables auth
		PasswordHash   string   `yaml:"password_hash"` // bcrypt hash (see `dashboard passwd`)
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	Logging struct {
		Format string `yaml:"format"` // "json"|"text"
		Level  string `yaml:"level"`  // "info"|"debug"|"warn"|"error"
	} `yaml:"logging"`
}

func DefaultConfig() Config {
	var c Config
	c.GitHub.Account = "linservbot"
	c.GitHub.MaxRunsPerRepo = 200
	c.Dashboard.Filter = "odoo,3rd"
	c.Dashboard.Selection = "per-workflow"
	c.Dashboard.FetchJobs = true
	c.Database.Driver = "sqlite"
	c.Database.DSN = "./dashboard.db"
	c.Reporting.OutDir = "./output"
	c.Server.Addr = ":8080"
	c.Logging.Format = "json"
	c.Logging.Level = "info"
	return c
}

func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(b, &c)
		}
	}
	// Env overrides (simple, explicit)
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		c.GitHub.Token = v
	}
	if v := os.Getenv("DASHBOARD_USER"); v != "" {
		c.GitHub.Account = v
	}
	// Set-but-empty disables filtering, so this one distinguishes unset.
	if v, ok := os.LookupEnv("DASHBOARD_WORKFLOW_FILTER"); ok {
		c.Dashboard.Filter = v
	}
	if v := os.Getenv("DASHBOARD_SELECTION"); v != "" {
		c.Dashboard.Selection = v
	}
	if v := os.Getenv("DASHBOARD_MAX_RUNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.GitHub.MaxRunsPerRepo = n
		}
	}
	if v := os.Getenv("DASHBOARD_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("DASHBOARD_OUT_DIR"); v != "" {
		c.Reporting.OutDir = v
	}
	if v := os.Getenv("DASHBOARD_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("DASHBOARD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return c, nil
}
