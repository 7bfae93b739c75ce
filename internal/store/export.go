package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/agent-ledger/internal/model"
)

// ExportAll returns all live records, optionally filtered by project, in
// insertion order.
func (s *SQLiteStore) ExportAll(ctx context.Context, project string) ([]Record, error) {
	where := []string{"deleted_at IS NULL"}
	args := []interface{}{}

	if project != "" {
		where = append(where, "project = ?")
		args = append(args, project)
	}

	query := `SELECT id, project, content, priority, created_at
	          FROM records WHERE ` + strings.Join(where, " AND ") + ` ORDER BY project, created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Import archives records from an export, keeping their timestamps. New IDs
// are assigned.
func (s *SQLiteStore) Import(ctx context.Context, records []Record) (int, error) {
	imported := 0
	for _, r := range records {
		tier, err := model.ParsePriority(r.Priority)
		if err != nil {
			return imported, fmt.Errorf("record %s: %w", r.ID, err)
		}
		at := r.CreatedAt
		if at.IsZero() {
			at = time.Now()
		}
		if _, err := s.archiveAt(ctx, r.ProjectID, r.Content, tier, at.UTC()); err != nil {
			return imported, fmt.Errorf("record %s: %w", r.ID, err)
		}
		imported++
	}
	return imported, nil
}
