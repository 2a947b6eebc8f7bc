package reporting

import (
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/linserv/actions-dashboard/internal/model"
)

const timeLayout = "2006-01-02 15:04"

// styleCSS is the dashboard's dark theme, matched to GitHub's own palette.
const styleCSS = `body{margin:0;background:#0d1117;color:#c9d1d9;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Helvetica,Arial,sans-serif;line-height:1.5}
.container{max-width:1200px;margin:0 auto;padding:24px}
h1{color:#e6edf3;font-size:1.6em;margin:8px 0 4px}
h2{color:#e6edf3;border-bottom:1px solid #30363d;padding-bottom:6px;margin:28px 0 10px}
a{color:#58a6ff;text-decoration:none} a:hover{text-decoration:underline}
.dim{color:#8b949e} .mono{font-family:ui-monospace,Menlo,Consolas,monospace}
.stats{display:flex;gap:14px;flex-wrap:wrap;margin:18px 0}
.stat-card{background:#161b22;border:1px solid #30363d;border-radius:6px;padding:14px 22px;min-width:120px}
.stat-card .number{font-size:2em;font-weight:600}
.stat-card .label{color:#8b949e;font-size:.85em}
.number.passing{color:#3fb950} .number.failing{color:#f85149} .number.in-progress{color:#d29922}
table{width:100%;border-collapse:collapse;background:#161b22;border:1px solid #30363d;border-radius:6px}
th{background:#21262d;text-align:left;font-size:.85em;color:#8b949e;text-transform:uppercase}
td,th{padding:10px 14px;border-bottom:1px solid #30363d}
tr:hover td{background:#1c2128}
tr.muted td{opacity:.45}
.badge{display:inline-block;padding:3px 9px;border-radius:12px;font-size:.8em;font-weight:600;text-transform:uppercase}
.badge-success{background:rgba(63,185,80,.15);color:#3fb950}
.badge-failure{background:rgba(248,81,73,.15);color:#f85149}
.badge-in-progress{background:rgba(210,153,34,.15);color:#d29922}
.badge-cancelled{background:rgba(139,148,158,.15);color:#8b949e}
.badge-queued{background:rgba(88,166,255,.15);color:#58a6ff}
.badge-completed{background:rgba(63,185,80,.15);color:#3fb950}
.ok{color:#3fb950} .bad{color:#f85149} .warn{color:#d29922}
ul.errors{color:#8b949e;font-size:.9em}
.footer{margin-top:28px;font-size:.85em}`

// WriteHTML renders the dashboard to <outDir>/index.html.
func WriteHTML(outDir string, snap *model.Snapshot) (string, error) {
	path := filepath.Join(outDir, "index.html")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	RenderHTML(f, snap)
	return path, nil
}

// RenderHTML writes the full dashboard document: header, stat cards, then
// one table per category in rank order, then skipped repositories.
func RenderHTML(w io.Writer, snap *model.Snapshot) {
	totals := snap.Totals()
	account := html.EscapeString(snap.Account)

	// Head + styles
	fmt.Fprintf(w, "<!doctype html><html lang='en'><head><meta charset='utf-8'>")
	fmt.Fprint(w, "<meta name='viewport' content='width=device-width, initial-scale=1'>")
	fmt.Fprintf(w, "<title>GitHub Actions Dashboard - %s</title>", account)
	fmt.Fprintf(w, "<style>%s</style></head><body><div class='container'>", styleCSS)

	// Title + stat cards
	fmt.Fprintf(w, "<h1>&#128640; GitHub Actions Dashboard - %s</h1>", account)
	fmt.Fprintf(w, "<p class='dim'>Last updated: %s UTC</p>", snap.GeneratedAt.UTC().Format(timeLayout))
	fmt.Fprint(w, "<div class='stats'>")
	statCard(w, "Tracked Workflows", totals.Records, "")
	statCard(w, "Passing", totals.Passing, "passing")
	statCard(w, "Failing", totals.Failing, "failing")
	statCard(w, "In Progress", totals.InProgress, "in-progress")
	fmt.Fprint(w, "</div>")

	// One section per category
	for _, g := range model.GroupByCategory(snap.Records) {
		fmt.Fprintf(w, "<h2>%s <span class='dim'>(%d)</span></h2>", html.EscapeString(g.Category.Title), len(g.Records))
		fmt.Fprint(w, "<table><tr><th>Repository</th><th>Workflow</th><th>Branch</th><th>Status</th><th>Jobs</th><th>Last Updated</th><th></th></tr>")
		for _, r := range g.Records {
			writeRow(w, r)
		}
		fmt.Fprint(w, "</table>")
	}
	if len(snap.Records) == 0 {
		fmt.Fprint(w, "<p class='dim'>No workflow runs matched.</p>")
	}

	// Skipped repositories
	if len(snap.Errors) > 0 {
		fmt.Fprintf(w, "<h2>Skipped</h2><p class='dim'>%d repositories could not be read:</p><ul class='errors'>", len(snap.Errors))
		for _, e := range snap.Errors {
			fmt.Fprintf(w, "<li>%s</li>", html.EscapeString(e))
		}
		fmt.Fprint(w, "</ul>")
	}

	fmt.Fprintf(w, "<p class='dim footer'>snapshot %s &middot; schema %s</p>",
		html.EscapeString(snap.ID), html.EscapeString(snap.SchemaVersion))
	fmt.Fprint(w, "</div></body></html>")
}

func statCard(w io.Writer, label string, n int, class string) {
	if class != "" {
		class = " " + class
	}
	fmt.Fprintf(w, "<div class='stat-card'><div class='number%s'>%d</div><div class='label'>%s</div></div>", class, n, label)
}

func writeRow(w io.Writer, r model.RunRecord) {
	cls := ""
	if r.Muted {
		cls = " class='muted'"
	}
	fmt.Fprintf(w, "<tr%s>", cls)
	fmt.Fprintf(w, "<td>%s</td>", linkTo(r.RepoURL, r.Repo))
	fmt.Fprintf(w, "<td>%s</td>", html.EscapeString(r.Workflow))
	fmt.Fprintf(w, "<td class='mono'>%s</td>", html.EscapeString(r.Branch))
	fmt.Fprintf(w, "<td>%s</td>", badge(r.EffectiveStatus()))
	fmt.Fprintf(w, "<td>%s</td>", jobsCell(r.Summary()))
	fmt.Fprintf(w, "<td class='dim'>%s</td>", r.UpdatedAt.UTC().Format(timeLayout))
	if r.RunURL != "" {
		fmt.Fprintf(w, "<td>%s</td>", linkTo(r.RunURL, "View Run →"))
	} else {
		fmt.Fprint(w, "<td></td>")
	}
	fmt.Fprint(w, "</tr>")
}

func linkTo(href, text string) string {
	if href == "" {
		return html.EscapeString(text)
	}
	return fmt.Sprintf("<a href='%s' target='_blank' rel='noopener'>%s</a>",
		html.EscapeString(href), html.EscapeString(text))
}

// badge renders the status pill. States without their own style reuse the
// muted cancelled look; an empty state shows as "unknown".
func badge(effective string) string {
	label := effective
	if label == "" {
		label = "unknown"
	}
	cls := "badge-" + strings.ReplaceAll(label, "_", "-")
	switch label {
	case "success", "failure", "in_progress", "cancelled", "queued", "completed":
	default:
		cls = "badge-cancelled"
	}
	return fmt.Sprintf("<span class='badge %s'>%s</span>", cls, html.EscapeString(label))
}

func jobsCell(s model.JobSummary) string {
	if s.Total == 0 {
		return "<span class='dim'>-</span>"
	}
	var parts []string
	if s.Success > 0 {
		parts = append(parts, fmt.Sprintf("<span class='ok'>%d&#10003;</span>", s.Success))
	}
	if s.Failure > 0 {
		parts = append(parts, fmt.Sprintf("<span class='bad'>%d&#10007;</span>", s.Failure))
	}
	if s.InProgress > 0 {
		parts = append(parts, fmt.Sprintf("<span class='warn'>%d&#8987;</span>", s.InProgress))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("<span class='dim'>%d</span>", s.Total)
	}
	return strings.Join(parts, " ")
}
