package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/linserv/actions-dashboard/internal/api"
	"github.com/linserv/actions-dashboard/internal/github"
	"github.com/linserv/actions-dashboard/internal/model"
	"github.com/linserv/actions-dashboard/internal/pipeline"
	"github.com/linserv/actions-dashboard/internal/reporting"
	"github.com/linserv/actions-dashboard/internal/rules"
	"github.com/linserv/actions-dashboard/internal/rulesdsl"
	"github.com/linserv/actions-dashboard/internal/security"
	"github.com/linserv/actions-dashboard/internal/shared"
	"github.com/linserv/actions-dashboard/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "generate":
		generateCmd(os.Args[2:])
	case "render":
		renderCmd(os.Args[2:])
	case "diff":
		diffCmd(os.Args[2:])
	case "serve":
		serveCmd(os.Args[2:])
	case "passwd":
		passwdCmd(os.Args[2:])
	case "version":
		fmt.Println("dashboard schema:", model.SchemaVersion)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `dashboard - GitHub Actions workflow status dashboard

Usage:
  dashboard generate [--account <login>] [--filter odoo,3rd] [--selection per-workflow|latest] [--out ./output] [--db ./dashboard.db] [--rules ./rules.yaml] [--no-jobs] [--config ./dashboard.yaml]
  dashboard render   [--snapshot <snapshot-id>] [--out ./output] [--db ./dashboard.db] [--config ./dashboard.yaml]
  dashboard diff     --base <snapshot-id> --head <snapshot-id> [--out ./output] [--db ./dashboard.db] [--config ./dashboard.yaml]
  dashboard serve    [--addr :8080] [--db ./dashboard.db] [--config ./dashboard.yaml]
  dashboard passwd   [password]
  dashboard version

generate needs a token with repo read access in GITHUB_TOKEN.
`)
}

func generateCmd(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	account := fs.String("account", "", "GitHub user or organization to scan")
	filter := fs.String("filter", "", "Comma-separated workflow name terms")
	selection := fs.String("selection", "", "Run selection policy: per-workflow or latest")
	outDir := fs.String("out", "", "Output directory for the dashboard")
	dbPath := fs.String("db", "", "SQLite database path")
	rulesPack := fs.String("rules", "", "Extra category rules pack (YAML)")
	noJobs := fs.Bool("no-jobs", false, "Skip per-run job details")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	// precedence: flags > config > defaults
	if *account != "" {
		cfg.GitHub.Account = *account
	}
	if *filter != "" {
		cfg.Dashboard.Filter = *filter
	}
	if *selection != "" {
		cfg.Dashboard.Selection = *selection
	}
	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *rulesPack == "" {
		*rulesPack = cfg.Rules.Pack
	}
	if *noJobs {
		cfg.Dashboard.FetchJobs = false
	}

	if cfg.GitHub.Token == "" {
		fmt.Fprintln(os.Stderr, "generate: GITHUB_TOKEN (or github.token in config) is required")
		os.Exit(2)
	}
	sel, ok := model.ParseSelection(cfg.Dashboard.Selection)
	if !ok {
		fmt.Fprintf(os.Stderr, "generate: unknown selection policy %q (use per-workflow or latest)\n", cfg.Dashboard.Selection)
		os.Exit(2)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "generate: cannot create out dir:", err)
		os.Exit(1)
	}

	rules.SetSettings(rules.Settings{Disabled: rules.DisabledSet(cfg.Rules.Disabled)})
	if *rulesPack != "" {
		n, err := rulesdsl.LoadAndRegister(*rulesPack)
		if err != nil {
			slog.Error("rules pack error", "err", err)
			os.Exit(1)
		}
		slog.Info("rules pack loaded", "path", *rulesPack, "rules", n)
	}

	ctx := context.Background()
	client, err := github.NewClient(ctx, cfg.GitHub.Token, cfg.GitHub.Account, cfg.GitHub.MaxRunsPerRepo)
	if err != nil {
		slog.Error("github client error", "err", err)
		os.Exit(1)
	}

	snap, err := pipeline.Build(ctx, client, pipeline.Params{
		Account:     client.Account(),
		AccountType: client.AccountType(),
		Selection:   sel,
		Filter:      pipeline.ParseFilter(cfg.Dashboard.Filter),
		FetchJobs:   cfg.Dashboard.FetchJobs,
	})
	if err != nil {
		slog.Error("pipeline error", "err", err)
		os.Exit(1)
	}

	// Persist the raw snapshot, then render with active mutes applied.
	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.CreateSchema(); err != nil {
		slog.Error("db schema error", "err", err)
		os.Exit(1)
	}
	if err := db.SaveSnapshot(&snap); err != nil {
		slog.Error("db save snapshot error", "err", err)
		os.Exit(1)
	}
	if ms, err := db.ListMutes(true); err == nil && len(ms) > 0 {
		n := rules.ApplyMutes(snap.Records, ms)
		slog.Info("mutes applied", "count", n)
	}

	jsonPath, _ := reporting.WriteJSON(*outDir, &snap)
	htmlPath, err := reporting.WriteHTML(*outDir, &snap)
	if err != nil {
		slog.Error("write html error", "err", err)
		os.Exit(1)
	}
	slog.Info("generate complete",
		"snapshot", snap.ID,
		"records", len(snap.Records),
		"skipped", len(snap.Errors),
		"json", jsonPath,
		"html", htmlPath,
		"db", filepath.Clean(*dbPath),
	)
	t := snap.Totals()
	fmt.Printf("Generate OK\n  Snapshot: %s\n  Records: %d (%d passing, %d failing, %d in progress)\n  JSON: %s\n  HTML: %s\n  DB: %s\n",
		snap.ID, t.Records, t.Passing, t.Failing, t.InProgress, jsonPath, htmlPath, filepath.Clean(*dbPath))
	if len(snap.Errors) > 0 {
		fmt.Printf("  Skipped: %d repositories (see log)\n", len(snap.Errors))
	}
}

func renderCmd(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	snapID := fs.String("snapshot", "", "Snapshot ID (default: latest)")
	outDir := fs.String("out", "", "Output directory")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	var snap model.Snapshot
	if *snapID == "" {
		snap, err = db.LoadLatestSnapshot()
	} else {
		snap, err = db.LoadSnapshot(*snapID)
	}
	if err != nil {
		slog.Error("load snapshot error", "err", err)
		os.Exit(1)
	}
	if ms, err := db.ListMutes(true); err == nil {
		rules.ApplyMutes(snap.Records, ms)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		slog.Error("cannot create out dir", "err", err)
		os.Exit(1)
	}
	jsonPath, _ := reporting.WriteJSON(*outDir, &snap)
	htmlPath, _ := reporting.WriteHTML(*outDir, &snap)
	fmt.Printf("Render OK\n  Snapshot: %s\n  JSON: %s\n  HTML: %s\n", snap.ID, jsonPath, htmlPath)
}

func diffCmd(args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	base := fs.String("base", "", "Base snapshot ID")
	head := fs.String("head", "", "Head snapshot ID")
	outDir := fs.String("out", "", "Output directory")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *base == "" || *head == "" {
		fmt.Fprintln(os.Stderr, "diff: --base and --head are required")
		os.Exit(2)
	}
	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	bs, err := db.LoadSnapshot(*base)
	if err != nil {
		slog.Error("load base snapshot error", "err", err)
		os.Exit(1)
	}
	hs, err := db.LoadSnapshot(*head)
	if err != nil {
		slog.Error("load head snapshot error", "err", err)
		os.Exit(1)
	}
	path, err := reporting.WriteDiffJSON(*outDir, &bs, &hs)
	if err != nil {
		slog.Error("write diff error", "err", err)
		os.Exit(1)
	}
	fmt.Printf("Diff OK\n  %s\n", path)
}

func serveCmd(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	addr := fs.String("addr", "", "Listen address (e.g. :8080)")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	logger := shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *addr == "" {
		*addr = cfg.Server.Addr
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	// Schema up front so serve works before the first generate.
	if err := db.CreateSchema(); err != nil {
		slog.Error("db schema error", "err", err)
		os.Exit(1)
	}

	srv := &api.Server{
		DB:             db,
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Username:       cfg.Server.Username,
		PasswordHash:   cfg.Server.PasswordHash,
	}
	slog.Info("serving dashboard", "addr", *addr, "db", filepath.Clean(*dbPath), "auth", cfg.Server.Username != "")
	if err := http.ListenAndServe(*addr, srv.Routes()); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

func passwdCmd(args []string) {
	fs := flag.NewFlagSet("passwd", flag.ExitOnError)
	_ = fs.Parse(args)

	pw := fs.Arg(0)
	if pw == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			fmt.Fprintln(os.Stderr, "passwd: read error:", err)
			os.Exit(1)
		}
		pw = strings.TrimRight(line, "\r\n")
	}
	if pw == "" {
		fmt.Fprintln(os.Stderr, "passwd: empty password")
		os.Exit(2)
	}
	hash, err := security.HashPassword(pw)
	if err != nil {
		fmt.Fprintln(os.Stderr, "passwd: hash error:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
