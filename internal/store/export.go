package store

import (
	"context"

	"github.com/rcliao/agent-recall/internal/model"
)

// ExportAll returns every semantic record, optionally filtered by profile,
// oldest first.
func (s *SQLiteStore) ExportAll(ctx context.Context, profileID string) ([]model.SemanticRecord, error) {
	query := `SELECT ` + semanticColumns + ` FROM semantic_records`
	var args []interface{}
	if profileID != "" {
		query += ` WHERE profile_id = ?`
		args = append(args, profileID)
	}
	query += ` ORDER BY profile_id, created_at, id`
	return s.queryRecords(ctx, query, args...)
}
