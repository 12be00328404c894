package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runRoot(t *testing.T, args ...string) error {
	t.Helper()

	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	return rootCmd.Execute()
}

func TestNewCommandCreatesDraftFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "blog.yaml")

	err := runRoot(t, "new", "Launch", "Checklist", "--content-dir", dir, "--config", cfgPath, "--tag", "ops")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*-launch-checklist.md"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one scaffolded file, got %v (err %v)", matches, err)
	}

	raw, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read scaffold: %v", err)
	}
	content := string(raw)
	if !strings.Contains(content, `title: "Launch Checklist"`) {
		t.Fatalf("expected quoted title in scaffold:\n%s", content)
	}
	if !strings.Contains(content, "draft: true") {
		t.Fatalf("expected draft flag in scaffold:\n%s", content)
	}
	if !strings.Contains(content, "- ops") {
		t.Fatalf("expected tag in scaffold:\n%s", content)
	}
}

func TestNewCommandRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "blog.yaml")

	if err := runRoot(t, "new", "Duplicate", "--content-dir", dir, "--config", cfgPath); err != nil {
		t.Fatalf("first new: %v", err)
	}
	err := runRoot(t, "new", "Duplicate", "--content-dir", dir, "--config", cfgPath)
	if err == nil {
		t.Fatalf("expected second scaffold with the same slug to fail")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseTimeFlag(t *testing.T) {
	at, err := parseTimeFlag("2026-09-01T09:00:00-05:00")
	if err != nil {
		t.Fatalf("parseTimeFlag: %v", err)
	}
	if at == nil || at.UTC().Hour() != 14 {
		t.Fatalf("expected offset respected, got %v", at)
	}

	if at, err := parseTimeFlag("  "); err != nil || at != nil {
		t.Fatalf("expected blank value to mean nil, got %v / %v", at, err)
	}

	if _, err := parseTimeFlag("tomorrow"); err == nil {
		t.Fatalf("expected non-RFC3339 value rejected")
	}
}

func TestParsePostIDsRejectsGarbage(t *testing.T) {
	if _, err := parsePostIDs([]string{"not-a-uuid"}); err == nil {
		t.Fatalf("expected invalid uuid rejected")
	}
	ids, err := parsePostIDs(nil)
	if err != nil || ids != nil {
		t.Fatalf("expected empty input to pass through, got %v / %v", ids, err)
	}
}
