package store

import (
	"context"
	"fmt"
)

// PurgeResult reports what PurgeProfile removed.
type PurgeResult struct {
	ProfileID       string `json:"profile_id" yaml:"profile_id"`
	WorkingItems    int    `json:"working_items" yaml:"working_items"`
	SemanticRecords int    `json:"semantic_records" yaml:"semantic_records"`
}

// PurgeProfile deletes everything a profile owns in one transaction.
// Term rows go with their records through ON DELETE CASCADE.
func (s *SQLiteStore) PurgeProfile(ctx context.Context, profileID string) (*PurgeResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res := &PurgeResult{ProfileID: profileID}

	r, err := tx.ExecContext(ctx, `DELETE FROM working_items WHERE profile_id = ?`, profileID)
	if err != nil {
		return nil, fmt.Errorf("purge working items: %w", err)
	}
	n, _ := r.RowsAffected()
	res.WorkingItems = int(n)

	r, err = tx.ExecContext(ctx, `DELETE FROM semantic_records WHERE profile_id = ?`, profileID)
	if err != nil {
		return nil, fmt.Errorf("purge semantic records: %w", err)
	}
	n, _ = r.RowsAffected()
	res.SemanticRecords = int(n)

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}
