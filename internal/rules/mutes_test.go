package rules

import (
	"testing"

	"github.com/linserv/actions-dashboard/internal/model"
	"github.com/linserv/actions-dashboard/internal/storage"
)

func TestApplyMutes(t *testing.T) {
	records := []model.RunRecord{
		{Repo: "linserv/odoo-app", Workflow: "Odoo Sync"},
		{Repo: "linserv/odoo-app", Workflow: "Deploy"},
		{Repo: "linserv/website", Workflow: "CI"},
	}
	n := ApplyMutes(records, []storage.Mute{
		{Repo: "linserv/odoo-app", Workflow: "Odoo Sync", Reason: "known flaky"},
	})
	if n != 1 {
		t.Fatalf("ApplyMutes = %d, want 1", n)
	}
	if !records[0].Muted || records[1].Muted || records[2].Muted {
		t.Fatalf("wrong records muted: %v %v %v", records[0].Muted, records[1].Muted, records[2].Muted)
	}
}

func TestApplyMutes_WholeRepo(t *testing.T) {
	records := []model.RunRecord{
		{Repo: "linserv/odoo-app", Workflow: "Odoo Sync"},
		{Repo: "linserv/odoo-app", Workflow: "Deploy"},
		{Repo: "linserv/website", Workflow: "CI"},
	}
	n := ApplyMutes(records, []storage.Mute{
		{Repo: "linserv/odoo-app", Reason: "repo being decommissioned"},
	})
	if n != 2 {
		t.Fatalf("ApplyMutes = %d, want 2", n)
	}
	if records[2].Muted {
		t.Fatal("unrelated repo muted")
	}
}

func TestApplyMutes_ShortRepoName(t *testing.T) {
	records := []model.RunRecord{
		{Repo: "linserv/odoo-app", Workflow: "Odoo Sync"},
	}
	n := ApplyMutes(records, []storage.Mute{
		{Repo: "odoo-app", Reason: "short name"},
	})
	if n != 1 || !records[0].Muted {
		t.Fatalf("short repo name did not match: n=%d", n)
	}
}

func TestApplyMutes_CaseInsensitive(t *testing.T) {
	records := []model.RunRecord{
		{Repo: "Linserv/Odoo-App", Workflow: "Odoo Sync"},
	}
	n := ApplyMutes(records, []storage.Mute{
		{Repo: "linserv/odoo-app", Workflow: "odoo sync", Reason: "case"},
	})
	if n != 1 {
		t.Fatalf("case-insensitive match failed: n=%d", n)
	}
}

func TestApplyMutes_NoMatch(t *testing.T) {
	records := []model.RunRecord{
		{Repo: "linserv/odoo-app", Workflow: "Odoo Sync"},
	}
	n := ApplyMutes(records, []storage.Mute{
		{Repo: "linserv/other", Reason: "different repo"},
		{Repo: "linserv/odoo-app", Workflow: "Deploy", Reason: "different workflow"},
	})
	if n != 0 || records[0].Muted {
		t.Fatalf("unexpected mute: n=%d muted=%v", n, records[0].Muted)
	}
}
