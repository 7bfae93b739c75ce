package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/agent-ledger/internal/chunker"
	"github.com/rcliao/agent-ledger/internal/model"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Adapter using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy io.Reader
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id          TEXT PRIMARY KEY,
		project     TEXT NOT NULL,
		content     TEXT NOT NULL,
		priority    TEXT NOT NULL DEFAULT 'medium',
		created_at  TEXT NOT NULL,
		deleted_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_records_project_created ON records(project, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_records_priority ON records(project, priority);
	CREATE INDEX IF NOT EXISTS idx_records_deleted ON records(deleted_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Archive stores content for a project. Long content is split into several
// records, one per chunk, all sharing the same timestamp and priority.
func (s *SQLiteStore) Archive(ctx context.Context, p ArchiveParams) ([]Record, error) {
	if p.ProjectID == "" {
		return nil, fmt.Errorf("project id is required")
	}
	tier := model.PriorityMedium
	if p.Priority != "" {
		var err error
		if tier, err = model.ParsePriority(p.Priority); err != nil {
			return nil, err
		}
	}
	return s.archiveAt(ctx, p.ProjectID, p.Content, tier, time.Now().UTC())
}

func (s *SQLiteStore) archiveAt(ctx context.Context, project, content string, tier model.PriorityTier, at time.Time) ([]Record, error) {
	chunks := chunker.Chunk(content, chunker.DefaultOptions())
	if len(chunks) == 0 {
		return nil, fmt.Errorf("content is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	records := make([]Record, 0, len(chunks))
	for _, c := range chunks {
		rec := Record{
			ID:        s.newID(at),
			ProjectID: project,
			Content:   c.Text,
			Priority:  tier.String(),
			CreatedAt: at,
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO records (id, project, content, priority, created_at) VALUES (?, ?, ?, ?, ?)`,
			rec.ID, rec.ProjectID, rec.Content, rec.Priority, at.Format(timeLayout))
		if err != nil {
			return nil, fmt.Errorf("insert record: %w", err)
		}
		records = append(records, rec)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return records, nil
}

// Query returns live records for a project, newest first.
func (s *SQLiteStore) Query(ctx context.Context, projectID string, f Filter) ([]Record, error) {
	where := []string{"deleted_at IS NULL", "project = ?"}
	args := []interface{}{projectID}

	if len(f.Priorities) > 0 {
		marks := make([]string, len(f.Priorities))
		for i, p := range f.Priorities {
			marks[i] = "?"
			args = append(args, p.String())
		}
		where = append(where, "priority IN ("+strings.Join(marks, ", ")+")")
	}
	if f.Window != nil {
		if !f.Window.From.IsZero() {
			where = append(where, "created_at >= ?")
			args = append(args, f.Window.From.UTC().Format(timeLayout))
		}
		if !f.Window.To.IsZero() {
			where = append(where, "created_at <= ?")
			args = append(args, f.Window.To.UTC().Format(timeLayout))
		}
	}
	var terms []string
	for _, t := range f.TextContains {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, "content LIKE ?")
			args = append(args, "%"+t+"%")
		}
	}
	if len(terms) > 0 {
		where = append(where, "("+strings.Join(terms, " OR ")+")")
	}

	query := `SELECT id, project, content, priority, created_at FROM records
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Forget soft-deletes (or hard-deletes) one record.
func (s *SQLiteStore) Forget(ctx context.Context, p ForgetParams) error {
	var res sql.Result
	var err error
	if p.Hard {
		res, err = s.db.ExecContext(ctx,
			`DELETE FROM records WHERE id = ? AND project = ?`, p.ID, p.ProjectID)
	} else {
		now := time.Now().UTC().Format(timeLayout)
		res, err = s.db.ExecContext(ctx,
			`UPDATE records SET deleted_at = ? WHERE id = ? AND project = ? AND deleted_at IS NULL`,
			now, p.ID, p.ProjectID)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record not found: %s/%s", p.ProjectID, p.ID)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord reads a row leniently; validation happens in Record.Item so a
// bad row surfaces as a malformed record rather than a failed query.
func scanRecord(row scanner) (Record, error) {
	var r Record
	var createdAt string
	if err := row.Scan(&r.ID, &r.ProjectID, &r.Content, &r.Priority, &createdAt); err != nil {
		return r, err
	}
	r.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return r, nil
}

// Compile-time interface satisfaction check.
var _ Adapter = (*SQLiteStore)(nil)
