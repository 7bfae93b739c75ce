// Package cli implements the agent-ledger CLI commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rcliao/agent-ledger/internal/config"
	"github.com/rcliao/agent-ledger/internal/model"
	"github.com/rcliao/agent-ledger/internal/retrieval"
	"github.com/rcliao/agent-ledger/internal/store"
	"github.com/spf13/cobra"
)

var (
	dbPath      string
	configPath  string
	projectFlag string

	cfg    config.Config
	logger *slog.Logger
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "agent-ledger",
	Short: "Budgeted conversation ledger with archive retrieval",
	Long: "A CLI around a cost-bounded conversation ledger. Archive background material, " +
		"query it the way compaction does, and replay conversations through a session.",
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle (setup reads RootCmd's flags).
	RootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if err := setup(); err != nil {
			exitErr("config", err)
		}
	}
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Archive path (default: $AGENT_LEDGER_DB or ~/.agent-ledger/archive.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	RootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", "", "Project id (default: $AGENT_LEDGER_PROJECT or config)")
	RootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

func setup() error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if projectFlag != "" {
		cfg.ProjectID = projectFlag
	}
	if lvl, _ := RootCmd.PersistentFlags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func getDBPath() string {
	return cfg.ResolveDBPath(dbPath)
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func newAugmentor(s store.Adapter) *retrieval.Augmentor {
	return retrieval.New(s, cfg.Retrieval, logger)
}

// parsePriorities parses tier names; "normal" is accepted for medium.
func parsePriorities(names []string) ([]model.PriorityTier, error) {
	var tiers []model.PriorityTier
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		t, err := model.ParsePriority(n)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return tiers, nil
}

// readInput returns the joined args, or stdin when no args are given and
// stdin is not a terminal.
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	stat, err := os.Stdin.Stat()
	if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
		return "", nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
