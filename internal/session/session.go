// Package session ties a Ledger to a compaction Policy for one logical
// conversation and keeps its compaction history.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rcliao/agent-ledger/internal/compaction"
	"github.com/rcliao/agent-ledger/internal/ledger"
	"github.com/rcliao/agent-ledger/internal/model"
)

// Config holds everything a session is built from.
type Config struct {
	ProjectID  string            `json:"project_id" yaml:"project_id"`
	Ledger     ledger.Config     `json:"ledger" yaml:"ledger"`
	Compaction compaction.Config `json:"compaction" yaml:"compaction"`
}

// ApplyDefaults fills zero fields with defaults.
func (c *Config) ApplyDefaults() {
	c.Ledger.ApplyDefaults()
	c.Compaction.ApplyDefaults()
}

// Validate checks the ledger and policy bounds together.
func (c Config) Validate() error {
	if err := c.Ledger.Validate(); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	if err := c.Compaction.Validate(c.Ledger); err != nil {
		return fmt.Errorf("compaction: %w", err)
	}
	return nil
}

// Statistics summarizes a session.
type Statistics struct {
	TotalMessages        int     `json:"total_messages"`
	TotalCost            int     `json:"total_cost"`
	MaxCost              int     `json:"max_cost"`
	UsagePercentage      float64 `json:"usage_percentage"`
	CompactionsPerformed int     `json:"compactions_performed"`
	TotalCostSaved       int     `json:"total_cost_saved"`
	TotalRetrievedCount  int     `json:"total_retrieved_count"`
}

// Session is one conversation's ledger plus its compaction history. Like
// the Ledger it owns, it is not safe for concurrent use.
type Session struct {
	id      string
	config  Config
	ledger  *ledger.Ledger
	policy  *compaction.Policy
	history []model.CompactionRecord
	logger  *slog.Logger
}

// New creates an empty session with a fresh id. retriever may be nil to
// compact without augmentation. If logger is nil, the default slog logger
// is used.
func New(cfg Config, retriever compaction.Retriever, logger *slog.Logger) (*Session, error) {
	return newSession(uuid.NewString(), cfg, retriever, logger)
}

func newSession(id string, cfg Config, retriever compaction.Retriever, logger *slog.Logger) (*Session, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session_id", id)
	return &Session{
		id:     id,
		config: cfg,
		ledger: ledger.New(cfg.Ledger),
		policy: compaction.NewPolicy(retriever, cfg.Compaction, logger),
		logger: logger,
	}, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// ProjectID returns the project the session retrieves for.
func (s *Session) ProjectID() string { return s.config.ProjectID }

// Config returns the effective configuration.
func (s *Session) Config() Config { return s.config }

// Append records a message and compacts the ledger if it crossed the
// threshold. Only invalid input is reported as an error.
func (s *Session) Append(ctx context.Context, role model.Role, content string, attrs model.Attributes) (model.Message, error) {
	m, err := s.ledger.Append(role, content, attrs)
	if err != nil {
		return model.Message{}, err
	}
	if s.ledger.ShouldCompact() {
		s.Compact(ctx)
	}
	return m, nil
}

// Compact runs the policy now. It returns nil when the ledger did not need
// compacting.
func (s *Session) Compact(ctx context.Context) *model.CompactionRecord {
	rec := s.policy.Compact(ctx, s.config.ProjectID, s.ledger)
	if rec != nil {
		s.history = append(s.history, *rec)
	}
	return rec
}

// Truncate drops the oldest messages so at most keep remain.
func (s *Session) Truncate(keep int) int {
	n := s.ledger.Truncate(keep)
	if n > 0 {
		s.logger.Info("session: truncated", "dropped", n, "kept", s.ledger.Len())
	}
	return n
}

// Messages returns a copy of the ledger, oldest first.
func (s *Session) Messages() []model.Message { return s.ledger.Messages() }

// TotalCost returns the ledger's running cost.
func (s *Session) TotalCost() int { return s.ledger.TotalCost() }

// History returns a copy of the compaction records, oldest first.
func (s *Session) History() []model.CompactionRecord {
	out := make([]model.CompactionRecord, len(s.history))
	copy(out, s.history)
	return out
}

// Statistics reports the current ledger usage and compaction totals.
func (s *Session) Statistics() Statistics {
	st := Statistics{
		TotalMessages:        s.ledger.Len(),
		TotalCost:            s.ledger.TotalCost(),
		MaxCost:              s.config.Ledger.MaxCost,
		UsagePercentage:      s.ledger.UsageFraction() * 100,
		CompactionsPerformed: len(s.history),
	}
	for _, rec := range s.history {
		st.TotalCostSaved += rec.CostSaved
		st.TotalRetrievedCount += rec.RetrievedCount
	}
	return st
}
