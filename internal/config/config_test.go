package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/peladahub/pelada-service/internal/config"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestConfigLoad_FromYAMLAndEnv(t *testing.T) {
	yaml := `
server:
  host: 127.0.0.1
  port: 18080
  read_timeout: 5s

logger:
  level: info
  format: json
  env: prod

postgres:
  host: 127.0.0.1
  port: 5432
  sslmode: disable
  max_conns: 5

match:
  duration_seconds: 420
  golden_goal_threshold: 3
  tie_break_policy: away_advances
`
	path := writeTempConfig(t, yaml)

	// Secrets come from ENV using the canonical APP_* names.
	t.Setenv("APP_POSTGRES_USER", "testuser")
	t.Setenv("APP_POSTGRES_PASSWORD", "testpass")
	t.Setenv("APP_POSTGRES_DBNAME", "testdb")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 18080 || cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("server values not loaded: port=%d read_timeout=%s", cfg.Server.Port, cfg.Server.ReadTimeout)
	}
	if cfg.Postgres.User != "testuser" || cfg.Postgres.Password != "testpass" || cfg.Postgres.DBName != "testdb" {
		t.Fatalf("env overrides not applied: got user=%q pass=%q db=%q", cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.DBName)
	}
	if cfg.Match.DurationSeconds != 420 || cfg.Match.GoldenGoalThreshold != 3 {
		t.Fatalf("match rules not loaded: %+v", cfg.Match)
	}
	if cfg.Match.TieBreakPolicy != "away_advances" {
		t.Fatalf("tie break policy %q, want away_advances", cfg.Match.TieBreakPolicy)
	}
}

func TestConfigLoad_Defaults(t *testing.T) {
	path := writeTempConfig(t, "logger:\n  level: info\n")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("default port %d, want 8080", cfg.Server.Port)
	}
	if cfg.Match.DurationSeconds != 360 || cfg.Match.GoldenGoalThreshold != 2 || cfg.Match.PlayersPerTeam != 4 {
		t.Fatalf("default match rules wrong: %+v", cfg.Match)
	}
	if cfg.Match.TieBreakPolicy != "home_stays" {
		t.Fatalf("default tie break %q, want home_stays", cfg.Match.TieBreakPolicy)
	}
	if cfg.NATS.Subject != "pelada.matches.archived" {
		t.Fatalf("default nats subject %q", cfg.NATS.Subject)
	}
	if cfg.Postgres.Host != "" {
		t.Fatalf("postgres host %q, want empty (in-memory mode)", cfg.Postgres.Host)
	}
}

func TestConfigLoad_MissingFileFails(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
