// Package store defines the archive query contract consumed by retrieval and
// provides its SQLite implementation.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/agent-ledger/internal/model"
)

// ErrMalformedRecord marks a record that cannot become a RetrievedItem.
var ErrMalformedRecord = errors.New("malformed record")

// Record is a single archived entry as returned by an Adapter.
type Record struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Content   string    `json:"content"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

// Item validates the record and converts it into a RetrievedItem with its
// cost computed. The relevance score is left at zero.
func (r Record) Item() (model.RetrievedItem, error) {
	if r.ID == "" {
		return model.RetrievedItem{}, fmt.Errorf("%w: missing id", ErrMalformedRecord)
	}
	if strings.TrimSpace(r.Content) == "" {
		return model.RetrievedItem{}, fmt.Errorf("%w: %s: empty content", ErrMalformedRecord, r.ID)
	}
	tier, err := model.ParsePriority(r.Priority)
	if err != nil {
		return model.RetrievedItem{}, fmt.Errorf("%w: %s: %v", ErrMalformedRecord, r.ID, err)
	}
	if r.CreatedAt.IsZero() {
		return model.RetrievedItem{}, fmt.Errorf("%w: %s: missing created_at", ErrMalformedRecord, r.ID)
	}
	return model.RetrievedItem{
		ID:        r.ID,
		Content:   r.Content,
		Priority:  tier,
		Cost:      model.EstimateCost(r.Content),
		CreatedAt: r.CreatedAt,
	}, nil
}

// TimeWindow bounds CreatedAt. Zero ends are open.
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// Filter narrows a Query. Empty fields do not filter.
type Filter struct {
	Priorities []model.PriorityTier
	Window     *TimeWindow
	// TextContains matches records containing any of the terms,
	// case-insensitively.
	TextContains []string
	Limit        int
}

// Adapter is the read contract the ledger core needs from an archive.
// Results are ordered newest first and must be stable across repeated calls
// for the same project.
type Adapter interface {
	Query(ctx context.Context, projectID string, f Filter) ([]Record, error)
}

// ArchiveParams holds parameters for archiving content.
type ArchiveParams struct {
	ProjectID string
	Content   string
	Priority  string
}

// ForgetParams holds parameters for removing archived records.
type ForgetParams struct {
	ProjectID string
	ID        string
	Hard      bool
}
