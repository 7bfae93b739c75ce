// Package config loads agent-ledger settings from an optional YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/agent-ledger/internal/compaction"
	"github.com/rcliao/agent-ledger/internal/ledger"
	"github.com/rcliao/agent-ledger/internal/retrieval"
	"github.com/rcliao/agent-ledger/internal/session"
)

// Config is the full runtime configuration.
type Config struct {
	DBPath     string            `yaml:"db_path"`
	ProjectID  string            `yaml:"project_id"`
	LogLevel   string            `yaml:"log_level"`
	Ledger     ledger.Config     `yaml:"ledger"`
	Compaction compaction.Config `yaml:"compaction"`
	Retrieval  retrieval.Config  `yaml:"retrieval"`
}

// Default returns the built-in configuration. DBPath is left empty and
// resolved by DefaultDBPath.
func Default() Config {
	return Config{
		ProjectID:  "default",
		LogLevel:   "info",
		Ledger:     ledger.DefaultConfig(),
		Compaction: compaction.DefaultConfig(),
		Retrieval:  retrieval.DefaultConfig(),
	}
}

// DefaultDBPath is ~/.agent-ledger/archive.db.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".agent-ledger", "archive.db")
}

// Load reads path over the defaults, then applies the environment. An empty
// path skips the file. Unknown YAML keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from AGENT_LEDGER_* variables.
func (c *Config) ApplyEnv() {
	c.DBPath = stringOr(EnvDB, c.DBPath)
	c.ProjectID = stringOr(EnvProject, c.ProjectID)
	c.LogLevel = stringOr(EnvLogLevel, c.LogLevel)
	c.Ledger.MaxCost = intOr(EnvMaxCost, c.Ledger.MaxCost)
	c.Retrieval.QueryTimeout = durationOr(EnvQueryTimeout, c.Retrieval.QueryTimeout)
}

// Validate checks every section.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ProjectID) == "" {
		return errors.New("config: project_id is required")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Session().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Retrieval.CandidateLimit < 0 || c.Retrieval.QueryTimeout < 0 || c.Retrieval.MinScore < 0 {
		return errors.New("config: retrieval values must not be negative")
	}
	return nil
}

// Session returns the session configuration.
func (c Config) Session() session.Config {
	return session.Config{
		ProjectID:  c.ProjectID,
		Ledger:     c.Ledger,
		Compaction: c.Compaction,
	}
}

// ResolveDBPath returns flag, the configured path, or the default, in that
// order.
func (c Config) ResolveDBPath(flag string) string {
	if flag != "" {
		return flag
	}
	if c.DBPath != "" {
		return c.DBPath
	}
	return DefaultDBPath()
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", s)
	}
	return l, nil
}
