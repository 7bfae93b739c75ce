// Package ledger provides the ordered, cost-accounted message log of one
// session.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/agent-ledger/internal/model"
)

// ErrInvalidMessage is returned by Append for an unknown role or empty content.
var ErrInvalidMessage = errors.New("invalid message")

// Default configuration values.
const (
	DefaultMaxCost          = 100000
	DefaultCompactThreshold = 0.85
	DefaultRetainWindow     = 10
)

// Config bounds a Ledger. RetainWindow is at least 1; a zero value means
// the default.
type Config struct {
	MaxCost          int     `json:"max_cost" yaml:"max_cost"`
	CompactThreshold float64 `json:"compact_threshold" yaml:"compact_threshold"`
	RetainWindow     int     `json:"retain_window" yaml:"retain_window"`
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxCost:          DefaultMaxCost,
		CompactThreshold: DefaultCompactThreshold,
		RetainWindow:     DefaultRetainWindow,
	}
}

// ApplyDefaults fills zero fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.MaxCost <= 0 {
		c.MaxCost = DefaultMaxCost
	}
	if c.CompactThreshold <= 0 {
		c.CompactThreshold = DefaultCompactThreshold
	}
	if c.RetainWindow <= 0 {
		c.RetainWindow = DefaultRetainWindow
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.MaxCost <= 0 {
		return fmt.Errorf("max_cost must be positive, got %d", c.MaxCost)
	}
	if c.CompactThreshold <= 0 || c.CompactThreshold > 1 {
		return fmt.Errorf("compact_threshold must be in (0,1], got %v", c.CompactThreshold)
	}
	if c.RetainWindow < 1 {
		return fmt.Errorf("retain_window must be at least 1, got %d", c.RetainWindow)
	}
	return nil
}

// Ledger is an ordered, append-only message log with a running cost total.
// It is not safe for concurrent use; one Ledger belongs to one session.
type Ledger struct {
	config   Config
	messages []model.Message
	total    int
	now      func() time.Time
}

// New creates an empty Ledger. Zero config fields take their defaults.
func New(cfg Config) *Ledger {
	cfg.ApplyDefaults()
	return &Ledger{config: cfg, now: time.Now}
}

// Config returns the ledger bounds.
func (l *Ledger) Config() Config { return l.config }

// Append validates and records a new message and returns it.
func (l *Ledger) Append(role model.Role, content string, attrs model.Attributes) (model.Message, error) {
	if !model.ValidRoles[role] {
		return model.Message{}, fmt.Errorf("%w: unknown role %q", ErrInvalidMessage, role)
	}
	if strings.TrimSpace(content) == "" {
		return model.Message{}, fmt.Errorf("%w: content is required", ErrInvalidMessage)
	}
	m := model.Message{
		Role:       role,
		Content:    content,
		Timestamp:  l.now().UTC(),
		Cost:       model.EstimateCost(content),
		Attributes: attrs,
	}
	l.messages = append(l.messages, m)
	l.total += m.Cost
	return m, nil
}

// Len returns the number of messages.
func (l *Ledger) Len() int { return len(l.messages) }

// Messages returns a copy of the log, oldest first.
func (l *Ledger) Messages() []model.Message {
	out := make([]model.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// TotalCost returns the sum of all message costs.
func (l *Ledger) TotalCost() int { return l.total }

// UsageFraction returns TotalCost / MaxCost.
func (l *Ledger) UsageFraction() float64 {
	return float64(l.total) / float64(l.config.MaxCost)
}

// ShouldCompact reports whether usage has reached the threshold and there
// are more messages than the retain window protects.
func (l *Ledger) ShouldCompact() bool {
	return l.UsageFraction() >= l.config.CompactThreshold && len(l.messages) > l.config.RetainWindow
}

// Replace swaps the whole log for msgs, recomputing the running total.
func (l *Ledger) Replace(msgs []model.Message) {
	l.messages = make([]model.Message, len(msgs))
	copy(l.messages, msgs)
	l.total = model.SumCost(l.messages)
}

// Truncate drops the oldest messages so that at most keep remain. It
// returns the number of messages removed.
func (l *Ledger) Truncate(keep int) int {
	if keep < 0 {
		keep = 0
	}
	if len(l.messages) <= keep {
		return 0
	}
	drop := len(l.messages) - keep
	for _, m := range l.messages[:drop] {
		l.total -= m.Cost
	}
	l.messages = append([]model.Message(nil), l.messages[drop:]...)
	return drop
}
