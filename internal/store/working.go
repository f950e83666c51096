package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rcliao/agent-recall/internal/model"
)

const workingColumns = `profile_id, position, content, created_at, updated_at`

// ListItems implements WorkingStore.
func (s *SQLiteStore) ListItems(ctx context.Context, profileID string) ([]model.WorkingItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+workingColumns+` FROM working_items WHERE profile_id = ? ORDER BY position`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// AppendItem implements WorkingStore.
func (s *SQLiteStore) AppendItem(ctx context.Context, profileID, content string) (*model.WorkingItem, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	item, err := appendItem(ctx, tx, profileID, content)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return item, nil
}

// ReplaceItems implements WorkingStore.
func (s *SQLiteStore) ReplaceItems(ctx context.Context, profileID, content string) (*model.WorkingItem, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM working_items WHERE profile_id = ?`, profileID); err != nil {
		return nil, fmt.Errorf("clear items: %w", err)
	}
	item, err := appendItem(ctx, tx, profileID, content)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return item, nil
}

func appendItem(ctx context.Context, tx *sql.Tx, profileID, content string) (*model.WorkingItem, error) {
	var last int
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) FROM working_items WHERE profile_id = ?`, profileID).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("read last position: %w", err)
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO working_items (profile_id, position, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		profileID, last+1, content, formatTime(now), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	return &model.WorkingItem{
		ProfileID: profileID,
		Position:  last + 1,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateItem implements WorkingStore.
func (s *SQLiteStore) UpdateItem(ctx context.Context, profileID string, position int, content string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE working_items SET content = ?, updated_at = ? WHERE profile_id = ? AND position = ?`,
		content, formatTime(time.Now()), profileID, position)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("item %d of %s: %w", position, profileID, ErrNotFound)
	}
	return nil
}

// DeleteItem implements WorkingStore.
func (s *SQLiteStore) DeleteItem(ctx context.Context, profileID string, position int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM working_items WHERE profile_id = ? AND position = ?`, profileID, position)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("item %d of %s: %w", position, profileID, ErrNotFound)
	}

	// Close the gap so positions stay 1..N.
	_, err = tx.ExecContext(ctx,
		`UPDATE working_items SET position = position - 1 WHERE profile_id = ? AND position > ?`,
		profileID, position)
	if err != nil {
		return fmt.Errorf("renumber items: %w", err)
	}
	return tx.Commit()
}

// ClearItems implements WorkingStore.
func (s *SQLiteStore) ClearItems(ctx context.Context, profileID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM working_items WHERE profile_id = ?`, profileID)
	if err != nil {
		return 0, fmt.Errorf("clear items: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func scanItems(rows *sql.Rows) ([]model.WorkingItem, error) {
	items := []model.WorkingItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanItem(row scanner) (model.WorkingItem, error) {
	var it model.WorkingItem
	var createdAt, updatedAt string
	if err := row.Scan(&it.ProfileID, &it.Position, &it.Content, &createdAt, &updatedAt); err != nil {
		return it, err
	}
	it.CreatedAt = parseTime(createdAt)
	it.UpdatedAt = parseTime(updatedAt)
	return it, nil
}
