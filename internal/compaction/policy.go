// Package compaction decides when a ledger is over budget and rebuilds it
// from a summary, retrieved background material and the messages that must
// survive.
package compaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rcliao/agent-ledger/internal/ledger"
	"github.com/rcliao/agent-ledger/internal/model"
	"github.com/rcliao/agent-ledger/internal/retrieval"
)

// Default configuration values.
const (
	DefaultTargetUsage        = 0.65
	DefaultMinRetrievalBudget = 5000

	// NoRetrievalFloor as MinRetrievalBudget retrieves whenever any budget
	// is spare.
	NoRetrievalFloor = -1
)

// Config tunes the Policy.
type Config struct {
	// TargetUsage is the fraction of MaxCost a compacted ledger may fill,
	// retrieved material included.
	TargetUsage float64 `json:"target_usage" yaml:"target_usage"`
	// MinRetrievalBudget is the spare budget retrieval must exceed. Zero
	// takes the default; NoRetrievalFloor disables the floor.
	MinRetrievalBudget int `json:"min_retrieval_budget" yaml:"min_retrieval_budget"`
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() Config {
	return Config{
		TargetUsage:        DefaultTargetUsage,
		MinRetrievalBudget: DefaultMinRetrievalBudget,
	}
}

// ApplyDefaults fills zero fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.TargetUsage <= 0 {
		c.TargetUsage = DefaultTargetUsage
	}
	if c.MinRetrievalBudget == 0 {
		c.MinRetrievalBudget = DefaultMinRetrievalBudget
	}
}

// Validate checks the policy against the ledger bounds it will run on.
func (c Config) Validate(lc ledger.Config) error {
	if c.TargetUsage <= 0 || c.TargetUsage > 1 {
		return fmt.Errorf("target_usage must be in (0,1], got %v", c.TargetUsage)
	}
	if c.TargetUsage >= lc.CompactThreshold {
		return fmt.Errorf("target_usage %v must be below compact_threshold %v", c.TargetUsage, lc.CompactThreshold)
	}
	if c.MinRetrievalBudget < NoRetrievalFloor {
		return fmt.Errorf("min_retrieval_budget must be positive or %d, got %d", NoRetrievalFloor, c.MinRetrievalBudget)
	}
	return nil
}

// Retriever supplies background material for a compacted ledger.
type Retriever interface {
	AugmentForCompaction(ctx context.Context, projectID, query string, maxCost int) (retrieval.Outcome, error)
}

// Policy compacts ledgers. It holds no per-ledger state.
type Policy struct {
	retriever Retriever
	config    Config
	logger    *slog.Logger
	now       func() time.Time
}

// NewPolicy creates a Policy. A nil retriever disables augmentation. If
// logger is nil, the default slog logger is used.
func NewPolicy(retriever Retriever, cfg Config, logger *slog.Logger) *Policy {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Policy{retriever: retriever, config: cfg, logger: logger, now: time.Now}
}

// Config returns the policy configuration.
func (p *Policy) Config() Config { return p.config }

// Compact rebuilds l as [summary] + [retrieved] + [important] + [recent]
// when l.ShouldCompact reports true, and returns the resulting record. It
// returns nil and leaves l untouched otherwise. Compaction never fails:
// retrieval errors only drop the retrieved section.
func (p *Policy) Compact(ctx context.Context, projectID string, l *ledger.Ledger) *model.CompactionRecord {
	if !l.ShouldCompact() {
		return nil
	}
	start := p.now()
	now := start.UTC()
	lc := l.Config()

	msgs := l.Messages()
	costBefore := l.TotalCost()
	split := len(msgs) - lc.RetainWindow
	older, recent := msgs[:split], msgs[split:]

	var important, regular []model.Message
	for _, m := range older {
		if m.Attributes.Important {
			important = append(important, m)
		} else {
			regular = append(regular, m)
		}
	}

	var summary []model.Message
	summaryText := Summarize(regular)
	if summaryText != "" {
		summary = append(summary, model.Message{
			Role:       model.RoleSystem,
			Content:    summaryText,
			Timestamp:  now,
			Cost:       model.EstimateCost(summaryText),
			Attributes: model.Attributes{Kind: model.KindCompactionSummary},
		})
	}

	spare := int(p.config.TargetUsage*float64(lc.MaxCost)) -
		model.SumCost(summary) - model.SumCost(important) - model.SumCost(recent)
	if spare < 0 {
		spare = 0
	}

	outcome := p.augment(ctx, projectID, msgs, spare)

	rebuilt := make([]model.Message, 0, len(summary)+len(outcome.Items)+len(important)+len(recent))
	rebuilt = append(rebuilt, summary...)
	for _, it := range outcome.Items {
		rebuilt = append(rebuilt, it.Message(now))
	}
	rebuilt = append(rebuilt, important...)
	rebuilt = append(rebuilt, recent...)
	l.Replace(rebuilt)

	rec := &model.CompactionRecord{
		Timestamp:      now,
		MessagesBefore: len(msgs),
		MessagesAfter:  l.Len(),
		CostBefore:     costBefore,
		CostAfter:      l.TotalCost(),
		CostSaved:      costBefore - l.TotalCost(),
		SummaryText:    summaryText,
		RetrievedCount: len(outcome.Items),
	}

	p.logger.Info("compaction: ledger compacted",
		"project_id", projectID,
		"messages_before", rec.MessagesBefore,
		"messages_after", rec.MessagesAfter,
		"cost_before", rec.CostBefore,
		"cost_after", rec.CostAfter,
		"evicted", len(regular),
		"important", len(important),
		"retrieved", rec.RetrievedCount,
		"spare_budget", spare,
		"duration", time.Since(start),
	)
	return rec
}

// augment asks the retriever for up to spare cost units of background,
// queried by the latest user message. Any retrieval error yields an empty
// outcome.
func (p *Policy) augment(ctx context.Context, projectID string, msgs []model.Message, spare int) retrieval.Outcome {
	if p.retriever == nil || spare <= 0 || spare <= p.config.MinRetrievalBudget {
		return retrieval.Outcome{}
	}
	query := lastUserContent(msgs)
	if query == "" {
		return retrieval.Outcome{}
	}

	outcome, err := p.retriever.AugmentForCompaction(ctx, projectID, query, spare)
	if err != nil {
		kind := "unknown"
		var rerr *retrieval.Error
		if errors.As(err, &rerr) {
			kind = rerr.Kind.String()
		}
		p.logger.Warn("compaction: retrieval failed, continuing without augmentation",
			"project_id", projectID,
			"kind", kind,
			"err", err,
		)
		return retrieval.Outcome{}
	}
	return outcome
}

func lastUserContent(msgs []model.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}
