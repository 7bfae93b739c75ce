package session

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rcliao/agent-ledger/internal/compaction"
	"github.com/rcliao/agent-ledger/internal/ledger"
	"github.com/rcliao/agent-ledger/internal/model"
)

// Snapshot is the serialized form of a session.
type Snapshot struct {
	ID                string                   `json:"id"`
	ProjectID         string                   `json:"project_id"`
	Config            Config                   `json:"config"`
	Statistics        Statistics               `json:"statistics"`
	Messages          []model.Message          `json:"messages"`
	CompactionHistory []model.CompactionRecord `json:"compaction_history"`
}

// Export captures the session as a Snapshot.
func (s *Session) Export() Snapshot {
	return Snapshot{
		ID:                s.id,
		ProjectID:         s.config.ProjectID,
		Config:            s.config,
		Statistics:        s.Statistics(),
		Messages:          s.ledger.Messages(),
		CompactionHistory: s.History(),
	}
}

// Load rebuilds a session from a snapshot, keeping message order, content,
// timestamps and costs. The snapshot's statistics are recomputed, not
// trusted. Loading does not compact, even if the restored ledger is over
// its threshold; the next Append will.
func Load(snap Snapshot, retriever compaction.Retriever, logger *slog.Logger) (*Session, error) {
	cfg := snap.Config
	if cfg.ProjectID == "" {
		cfg.ProjectID = snap.ProjectID
	}
	id := snap.ID
	if id == "" {
		return nil, fmt.Errorf("load snapshot: missing id")
	}

	s, err := newSession(id, cfg, retriever, logger)
	if err != nil {
		return nil, err
	}

	msgs := make([]model.Message, len(snap.Messages))
	for i, m := range snap.Messages {
		if !model.ValidRoles[m.Role] {
			return nil, fmt.Errorf("load snapshot: message %d: %w: unknown role %q", i, ledger.ErrInvalidMessage, m.Role)
		}
		if strings.TrimSpace(m.Content) == "" {
			return nil, fmt.Errorf("load snapshot: message %d: %w: content is required", i, ledger.ErrInvalidMessage)
		}
		if m.Cost <= 0 {
			m.Cost = model.EstimateCost(m.Content)
		}
		msgs[i] = m
	}
	s.ledger.Replace(msgs)
	s.history = append(s.history, snap.CompactionHistory...)

	s.logger.Debug("session: loaded snapshot",
		"messages", len(msgs),
		"total_cost", s.ledger.TotalCost(),
		"compactions", len(s.history),
	)
	return s, nil
}

// WriteSnapshot encodes snap as indented JSON.
func WriteSnapshot(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
