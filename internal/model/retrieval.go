package model

import (
	"fmt"
	"strings"
	"time"
)

// PriorityTier is the ordered classification attached to archived records.
// Higher values rank first.
type PriorityTier int

const (
	PriorityLow PriorityTier = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

var tierNames = map[PriorityTier]string{
	PriorityLow:      "low",
	PriorityMedium:   "medium",
	PriorityHigh:     "high",
	PriorityCritical: "critical",
}

// String returns the tier name, or tier(N) for an unknown tier.
func (p PriorityTier) String() string {
	if n, ok := tierNames[p]; ok {
		return n
	}
	return fmt.Sprintf("tier(%d)", int(p))
}

// Weight is the scoring weight of the tier.
func (p PriorityTier) Weight() float64 {
	switch p {
	case PriorityCritical:
		return 1.0
	case PriorityHigh:
		return 0.8
	case PriorityMedium:
		return 0.5
	case PriorityLow:
		return 0.2
	default:
		return 0
	}
}

// Valid reports whether p is one of the four known tiers.
func (p PriorityTier) Valid() bool {
	_, ok := tierNames[p]
	return ok
}

// MarshalText encodes the tier by name and rejects unknown tiers.
func (p PriorityTier) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid priority tier %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a tier name with ParsePriority.
func (p *PriorityTier) UnmarshalText(b []byte) error {
	t, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = t
	return nil
}

// ParsePriority parses a tier name. "normal" is accepted as medium.
func ParsePriority(s string) (PriorityTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return PriorityCritical, nil
	case "high":
		return PriorityHigh, nil
	case "medium", "normal":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	}
	return 0, fmt.Errorf("invalid priority %q (valid: low, medium, high, critical)", s)
}

// RetrievedItem is an archived record converted for injection into a ledger.
type RetrievedItem struct {
	ID             string       `json:"id"`
	Content        string       `json:"content"`
	Priority       PriorityTier `json:"priority"`
	RelevanceScore float64      `json:"relevance_score"`
	Cost           int          `json:"cost"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Message converts the item into a system-role ledger message.
func (it RetrievedItem) Message(now time.Time) Message {
	return Message{
		Role:      RoleSystem,
		Content:   it.Content,
		Timestamp: now,
		Cost:      EstimateCost(it.Content),
		Attributes: Attributes{
			Kind:     KindRetrieved,
			SourceID: it.ID,
			Priority: it.Priority.String(),
		},
	}
}

// CompactionRecord captures one compaction event. Records are append-only.
type CompactionRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	MessagesBefore int       `json:"messages_before"`
	MessagesAfter  int       `json:"messages_after"`
	CostBefore     int       `json:"cost_before"`
	CostAfter      int       `json:"cost_after"`
	CostSaved      int       `json:"cost_saved"`
	SummaryText    string    `json:"summary_text,omitempty"`
	RetrievedCount int       `json:"retrieved_from_store"`
}
