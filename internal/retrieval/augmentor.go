// Package retrieval pulls budget-bounded, ranked material out of the archive
// for injection into a ledger.
package retrieval

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/rcliao/agent-ledger/internal/model"
	"github.com/rcliao/agent-ledger/internal/store"
)

// Default configuration values.
const (
	DefaultCandidateLimit = 200
	DefaultQueryTimeout   = 5 * time.Second
	DefaultMinScore       = 0.1
	DefaultMaxResults     = 20

	// RelevantShare and PriorityShare split a compaction retrieval budget.
	RelevantShare = 0.75
	PriorityShare = 0.25
)

// Config tunes the Augmentor.
type Config struct {
	// CandidateLimit caps how many records a recency query pulls.
	CandidateLimit int `json:"candidate_limit" yaml:"candidate_limit"`
	// QueryTimeout bounds each store query.
	QueryTimeout time.Duration `json:"query_timeout" yaml:"query_timeout"`
	// MinScore discards weaker content-match candidates.
	MinScore float64 `json:"min_score" yaml:"min_score"`
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() Config {
	return Config{
		CandidateLimit: DefaultCandidateLimit,
		QueryTimeout:   DefaultQueryTimeout,
		MinScore:       DefaultMinScore,
	}
}

// ApplyDefaults fills zero fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.CandidateLimit <= 0 {
		c.CandidateLimit = DefaultCandidateLimit
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = DefaultQueryTimeout
	}
	if c.MinScore <= 0 {
		c.MinScore = DefaultMinScore
	}
}

// RelevantParams holds parameters for a relevance-ranked query.
type RelevantParams struct {
	ProjectID  string
	Query      string
	MaxCost    int
	Priorities []model.PriorityTier
	Window     *store.TimeWindow
}

// RecentParams holds parameters for a recency query.
type RecentParams struct {
	ProjectID  string
	Limit      int
	Priorities []model.PriorityTier
}

// SearchParams holds parameters for a keyword search.
type SearchParams struct {
	ProjectID  string
	Keywords   []string
	MaxResults int
	Priorities []model.PriorityTier
}

// Outcome is the merged result of a dual-pool retrieval.
type Outcome struct {
	Items     []model.RetrievedItem
	TotalCost int
}

// Augmentor answers retrieval queries against a store Adapter.
type Augmentor struct {
	store  store.Adapter
	config Config
	logger *slog.Logger
}

// New creates an Augmentor. A nil adapter makes every query fail as
// unavailable. If logger is nil, the default slog logger is used.
func New(adapter store.Adapter, cfg Config, logger *slog.Logger) *Augmentor {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Augmentor{store: adapter, config: cfg, logger: logger}
}

// candidateLimit tolerates a nil Augmentor so that fetch can report it as
// unavailable.
func (a *Augmentor) candidateLimit() int {
	if a == nil {
		return DefaultCandidateLimit
	}
	return a.config.CandidateLimit
}

// fetch runs one store query under the configured timeout and converts the
// records, skipping malformed ones.
func (a *Augmentor) fetch(ctx context.Context, op, projectID string, f store.Filter) ([]model.RetrievedItem, error) {
	if a == nil || a.store == nil {
		return nil, &Error{Op: op, Kind: KindUnavailable, Err: errors.New("no store configured")}
	}

	qctx, cancel := context.WithTimeout(ctx, a.config.QueryTimeout)
	defer cancel()

	records, err := a.store.Query(qctx, projectID, f)
	if err != nil {
		return nil, storeError(op, err)
	}

	items := make([]model.RetrievedItem, 0, len(records))
	for _, r := range records {
		item, err := r.Item()
		if err != nil {
			a.logger.Warn("retrieval: skip malformed record",
				"op", op,
				"project_id", projectID,
				"err", err,
			)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Relevant scores recent candidates against keywords drawn from the query and
// accumulates them, newest first, until the next one would exceed MaxCost.
// The accumulated set is returned ordered by score, highest first.
func (a *Augmentor) Relevant(ctx context.Context, p RelevantParams) ([]model.RetrievedItem, error) {
	if p.MaxCost <= 0 {
		return nil, nil
	}
	keywords := ExtractKeywords(p.Query)

	candidates, err := a.fetch(ctx, "relevant", p.ProjectID, store.Filter{
		Priorities: p.Priorities,
		Window:     p.Window,
		Limit:      a.candidateLimit(),
	})
	if err != nil {
		return nil, err
	}

	var selected []model.RetrievedItem
	used := 0
	for _, c := range candidates {
		c.RelevanceScore = ContentMatchScore(c.Content, keywords, c.Priority)
		if c.RelevanceScore < a.config.MinScore {
			continue
		}
		if used+c.Cost > p.MaxCost {
			break
		}
		selected = append(selected, c)
		used += c.Cost
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].RelevanceScore > selected[j].RelevanceScore
	})

	a.logger.Debug("retrieval: relevant",
		"project_id", p.ProjectID,
		"keywords", keywords,
		"candidates", len(candidates),
		"selected", len(selected),
		"cost", used,
		"max_cost", p.MaxCost,
	)
	return selected, nil
}

// Recent returns the newest records, unscored.
func (a *Augmentor) Recent(ctx context.Context, p RecentParams) ([]model.RetrievedItem, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = a.candidateLimit()
	}
	return a.fetch(ctx, "recent", p.ProjectID, store.Filter{
		Priorities: p.Priorities,
		Limit:      limit,
	})
}

// Search scores every record containing any keyword and returns the best
// MaxResults.
func (a *Augmentor) Search(ctx context.Context, p SearchParams) ([]model.RetrievedItem, error) {
	keywords := normalizeKeywords(p.Keywords)
	if len(keywords) == 0 {
		return nil, nil
	}
	max := p.MaxResults
	if max <= 0 {
		max = DefaultMaxResults
	}

	items, err := a.fetch(ctx, "search", p.ProjectID, store.Filter{
		Priorities:   p.Priorities,
		TextContains: keywords,
	})
	if err != nil {
		return nil, err
	}

	for i := range items {
		items[i].RelevanceScore = KeywordSearchScore(items[i].Content, keywords, items[i].Priority)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].RelevanceScore > items[j].RelevanceScore
	})
	if len(items) > max {
		items = items[:max]
	}
	return items, nil
}

// HighPriority returns the newest critical and high records that fit in
// maxCost, stopping at the first one that would overshoot.
func (a *Augmentor) HighPriority(ctx context.Context, projectID string, maxCost int) ([]model.RetrievedItem, error) {
	if maxCost <= 0 {
		return nil, nil
	}
	items, err := a.Recent(ctx, RecentParams{
		ProjectID:  projectID,
		Priorities: []model.PriorityTier{model.PriorityCritical, model.PriorityHigh},
	})
	if err != nil {
		return nil, err
	}

	used := 0
	for i, it := range items {
		if used+it.Cost > maxCost {
			return items[:i], nil
		}
		used += it.Cost
	}
	return items, nil
}

// AugmentForCompaction splits maxCost between a relevance-ranked pool
// (critical, high and medium records) and a high-priority recency pool, then
// merges them keeping the first occurrence of each id.
func (a *Augmentor) AugmentForCompaction(ctx context.Context, projectID, query string, maxCost int) (Outcome, error) {
	relevant, err := a.Relevant(ctx, RelevantParams{
		ProjectID:  projectID,
		Query:      query,
		MaxCost:    int(float64(maxCost) * RelevantShare),
		Priorities: []model.PriorityTier{model.PriorityCritical, model.PriorityHigh, model.PriorityMedium},
	})
	if err != nil {
		return Outcome{}, err
	}

	priority, err := a.HighPriority(ctx, projectID, int(float64(maxCost)*PriorityShare))
	if err != nil {
		return Outcome{}, err
	}

	return merge(relevant, priority), nil
}

// merge concatenates pools in order, dropping repeated ids, and sums the
// cost of what remains.
func merge(pools ...[]model.RetrievedItem) Outcome {
	var out Outcome
	seen := map[string]bool{}
	for _, pool := range pools {
		for _, it := range pool {
			if seen[it.ID] {
				continue
			}
			seen[it.ID] = true
			out.Items = append(out.Items, it)
			out.TotalCost += it.Cost
		}
	}
	return out
}
