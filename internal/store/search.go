package store

import (
	"context"
	"fmt"

	"github.com/rcliao/agent-recall/internal/model"
)

// SearchItems implements WorkingStore. instr() is used instead of LIKE so the
// match stays case-sensitive.
func (s *SQLiteStore) SearchItems(ctx context.Context, profileID, query string) ([]model.WorkingItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+workingColumns+` FROM working_items
		 WHERE profile_id = ? AND instr(content, ?) > 0
		 ORDER BY position`, profileID, query)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}
