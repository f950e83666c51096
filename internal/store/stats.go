package store

import (
	"context"
	"database/sql"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath          string         `json:"db_path" yaml:"db_path"`
	DBSizeBytes     int64          `json:"db_size_bytes" yaml:"db_size_bytes"`
	WorkingItems    int            `json:"working_items" yaml:"working_items"`
	SemanticRecords int            `json:"semantic_records" yaml:"semantic_records"`
	DistinctTerms   int            `json:"distinct_terms" yaml:"distinct_terms"`
	Profiles        []ProfileStats `json:"profiles" yaml:"profiles"`
}

// ProfileStats holds per-profile counts.
type ProfileStats struct {
	ProfileID       string `json:"profile_id" yaml:"profile_id"`
	WorkingItems    int    `json:"working_items" yaml:"working_items"`
	SemanticRecords int    `json:"semantic_records" yaml:"semantic_records"`
}

// SemanticStats summarizes one profile's semantic memory.
type SemanticStats struct {
	ProfileID         string  `json:"profile_id" yaml:"profile_id"`
	Records           int     `json:"records" yaml:"records"`
	DistinctTerms     int     `json:"distinct_terms" yaml:"distinct_terms"`
	AverageImportance float64 `json:"average_importance" yaml:"average_importance"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{DBPath: s.path, Profiles: []ProfileStats{}}

	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM working_items`).Scan(&st.WorkingItems)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM semantic_records`).Scan(&st.SemanticRecords)
	s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT term) FROM semantic_terms`).Scan(&st.DistinctTerms)

	rows, err := s.db.QueryContext(ctx, `
		SELECT profile_id, SUM(working), SUM(semantic) FROM (
			SELECT profile_id, 1 AS working, 0 AS semantic FROM working_items
			UNION ALL
			SELECT profile_id, 0, 1 FROM semantic_records
		) GROUP BY profile_id ORDER BY profile_id`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var ps ProfileStats
		if err := rows.Scan(&ps.ProfileID, &ps.WorkingItems, &ps.SemanticRecords); err != nil {
			return st, err
		}
		st.Profiles = append(st.Profiles, ps)
	}
	return st, rows.Err()
}

// SemanticStats returns record count, distinct terms and mean importance for a profile.
func (s *SQLiteStore) SemanticStats(ctx context.Context, profileID string) (*SemanticStats, error) {
	st := &SemanticStats{ProfileID: profileID}
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(importance) FROM semantic_records WHERE profile_id = ?`, profileID).
		Scan(&st.Records, &avg)
	if err != nil {
		return nil, err
	}
	st.AverageImportance = avg.Float64

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT t.term) FROM semantic_terms t
		JOIN semantic_records r ON r.id = t.record_id
		WHERE r.profile_id = ?`, profileID).Scan(&st.DistinctTerms)
	if err != nil {
		return nil, err
	}
	return st, nil
}
