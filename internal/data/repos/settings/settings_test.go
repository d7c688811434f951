package settings

import (
	"context"
	"testing"

	"github.com/yungbote/soart-backend/internal/data/repos/testutil"
	"github.com/yungbote/soart-backend/internal/platform/dbctx"
)

func TestSettingsRepo(t *testing.T) {
	repo := NewSettingsRepo(testutil.DB(t), testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	got, err := repo.Get(dbc, "API_KEY", "fallback")
	if err != nil {
		t.Fatalf("Get (missing): %v", err)
	}
	if got != "fallback" {
		t.Fatalf("Get (missing): got=%q want=%q", got, "fallback")
	}

	if err := repo.Set(dbc, "API_KEY", "v1"); err != nil {
		t.Fatalf("Set v1: %v", err)
	}
	if err := repo.Set(dbc, "API_KEY", "v2"); err != nil {
		t.Fatalf("Set v2: %v", err)
	}
	got, err = repo.Get(dbc, "API_KEY", "")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "v2" {
		t.Fatalf("Get: last write should win, got=%q", got)
	}

	if err := repo.SetMany(dbc, map[string]string{
		"API_KEY":            "v3",
		"DEFAULT_CHAT_MODEL": "gpt-4o-mini",
	}); err != nil {
		t.Fatalf("SetMany: %v", err)
	}
	all, err := repo.All(dbc)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 2 || all["API_KEY"] != "v3" || all["DEFAULT_CHAT_MODEL"] != "gpt-4o-mini" {
		t.Fatalf("All: unexpected result: %+v", all)
	}
}

func TestSettingsRepoEmptyValueIsStored(t *testing.T) {
	repo := NewSettingsRepo(testutil.DB(t), testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	if err := repo.Set(dbc, "OPENAI_BASE_URL", ""); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := repo.Get(dbc, "OPENAI_BASE_URL", "default")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "" {
		t.Fatalf("Get: stored empty value should be returned as-is, got=%q", got)
	}
}
