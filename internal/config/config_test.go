package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rcliao/agent-ledger/internal/ledger"
	"github.com/rcliao/agent-ledger/internal/retrieval"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent-ledger.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Ledger != ledger.DefaultConfig() {
		t.Errorf("unexpected ledger config %+v", cfg.Ledger)
	}
	if cfg.Retrieval != retrieval.DefaultConfig() {
		t.Errorf("unexpected retrieval config %+v", cfg.Retrieval)
	}
	if cfg.ProjectID != "default" || cfg.LogLevel != "info" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
project_id: billing
log_level: debug
ledger:
  max_cost: 5000
  compact_threshold: 0.7
compaction:
  target_usage: 0.5
retrieval:
  query_timeout: 2s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ProjectID != "billing" || cfg.Ledger.MaxCost != 5000 || cfg.Ledger.CompactThreshold != 0.7 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Ledger.RetainWindow != ledger.DefaultRetainWindow {
		t.Errorf("unset field lost its default: %d", cfg.Ledger.RetainWindow)
	}
	if cfg.Retrieval.QueryTimeout != 2*time.Second {
		t.Errorf("expected 2s timeout, got %v", cfg.Retrieval.QueryTimeout)
	}
	if cfg.Compaction.TargetUsage != 0.5 {
		t.Errorf("expected target 0.5, got %v", cfg.Compaction.TargetUsage)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	if _, err := Load(writeConfig(t, "")); err != nil {
		t.Errorf("empty file should load: %v", err)
	}
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":        "colour: blue\n",
		"target above limit": "compaction:\n  target_usage: 0.9\n",
		"bad threshold":      "ledger:\n  compact_threshold: 1.5\n",
		"bad level":          "log_level: loud\n",
		"empty project":      "project_id: \" \"\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvDB, "/tmp/env.db")
	t.Setenv(EnvProject, "from-env")
	t.Setenv(EnvMaxCost, "9000")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvQueryTimeout, "750ms")

	cfg, err := Load(writeConfig(t, "project_id: from-file\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/env.db" || cfg.ProjectID != "from-env" || cfg.LogLevel != "warn" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.Ledger.MaxCost != 9000 || cfg.Retrieval.QueryTimeout != 750*time.Millisecond {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestEnvIgnoresUnparsable(t *testing.T) {
	t.Setenv(EnvMaxCost, "lots")
	t.Setenv(EnvQueryTimeout, "soon")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Ledger.MaxCost != ledger.DefaultMaxCost || cfg.Retrieval.QueryTimeout != retrieval.DefaultQueryTimeout {
		t.Errorf("bad env values should fall back: %+v", cfg)
	}
}

func TestResolveDBPath(t *testing.T) {
	cfg := Default()
	if got := cfg.ResolveDBPath("/flag.db"); got != "/flag.db" {
		t.Errorf("flag should win, got %s", got)
	}
	cfg.DBPath = "/cfg.db"
	if got := cfg.ResolveDBPath(""); got != "/cfg.db" {
		t.Errorf("expected config path, got %s", got)
	}
	cfg.DBPath = ""
	if got := cfg.ResolveDBPath(""); filepath.Base(got) != "archive.db" {
		t.Errorf("expected default archive.db, got %s", got)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
}

func TestSessionConfig(t *testing.T) {
	cfg := Default()
	cfg.ProjectID = "p"
	sc := cfg.Session()
	if sc.ProjectID != "p" || sc.Ledger != cfg.Ledger || sc.Compaction != cfg.Compaction {
		t.Errorf("unexpected session config %+v", sc)
	}
}
