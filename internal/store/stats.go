package store

import (
	"context"
	"os"
)

// Stats holds archive statistics.
type Stats struct {
	DBPath        string         `json:"db_path"`
	DBSizeBytes   int64          `json:"db_size_bytes"`
	TotalRecords  int            `json:"total_records"`
	ActiveRecords int            `json:"active_records"`
	Projects      []ProjectStats `json:"projects"`
}

// ProjectStats holds per-project counts.
type ProjectStats struct {
	Project    string         `json:"project"`
	Count      int            `json:"count"`
	ByPriority map[string]int `json:"by_priority"`
}

// Stats returns archive statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&st.TotalRecords)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE deleted_at IS NULL`).Scan(&st.ActiveRecords)

	rows, err := s.db.QueryContext(ctx, `
		SELECT project, priority, COUNT(*) AS cnt
		FROM records WHERE deleted_at IS NULL
		GROUP BY project, priority ORDER BY project`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	index := map[string]int{}
	for rows.Next() {
		var project, priority string
		var cnt int
		if err := rows.Scan(&project, &priority, &cnt); err != nil {
			return st, err
		}
		i, ok := index[project]
		if !ok {
			i = len(st.Projects)
			index[project] = i
			st.Projects = append(st.Projects, ProjectStats{Project: project, ByPriority: map[string]int{}})
		}
		st.Projects[i].Count += cnt
		st.Projects[i].ByPriority[priority] = cnt
	}

	return st, rows.Err()
}
