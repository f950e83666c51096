package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rcliao/agent-recall/internal/model"
)

const semanticColumns = `id, profile_id, content, vector, keywords, importance, created_at`

// InsertRecord implements SemanticStore.
func (s *SQLiteStore) InsertRecord(ctx context.Context, rec *model.SemanticRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.ID == "" {
		rec.ID = s.newID(rec.CreatedAt)
	}
	if rec.Vector == nil {
		rec.Vector = map[string]float64{}
	}

	vecJSON, err := json.Marshal(rec.Vector)
	if err != nil {
		return fmt.Errorf("encode vector: %w", err)
	}
	var kwJSON *string
	if len(rec.Keywords) > 0 {
		b, _ := json.Marshal(rec.Keywords)
		s := string(b)
		kwJSON = &s
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO semantic_records (`+semanticColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ProfileID, rec.Content, string(vecJSON), kwJSON, rec.Importance, formatTime(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	for term := range rec.Vector {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO semantic_terms (record_id, term) VALUES (?, ?)`, rec.ID, term); err != nil {
			return fmt.Errorf("insert term: %w", err)
		}
	}

	return tx.Commit()
}

// GetRecord implements SemanticStore.
func (s *SQLiteStore) GetRecord(ctx context.Context, profileID, id string) (*model.SemanticRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+semanticColumns+` FROM semantic_records WHERE profile_id = ? AND id = ?`, profileID, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s of %s: %w", id, profileID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRecords implements SemanticStore.
func (s *SQLiteStore) ListRecords(ctx context.Context, profileID string, limit int) ([]model.SemanticRecord, error) {
	query := `SELECT ` + semanticColumns + ` FROM semantic_records WHERE profile_id = ?
		ORDER BY created_at DESC, id DESC`
	args := []interface{}{profileID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryRecords(ctx, query, args...)
}

func (s *SQLiteStore) queryRecords(ctx context.Context, query string, args ...interface{}) ([]model.SemanticRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []model.SemanticRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateImportance implements SemanticStore.
func (s *SQLiteStore) UpdateImportance(ctx context.Context, profileID, id string, importance float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE semantic_records SET importance = ? WHERE profile_id = ? AND id = ?`, importance, profileID, id)
	if err != nil {
		return fmt.Errorf("update importance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record %s of %s: %w", id, profileID, ErrNotFound)
	}
	return nil
}

// DeleteRecord implements SemanticStore.
func (s *SQLiteStore) DeleteRecord(ctx context.Context, profileID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM semantic_records WHERE profile_id = ? AND id = ?`, profileID, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record %s of %s: %w", id, profileID, ErrNotFound)
	}
	return nil
}

// CountDocuments implements SemanticStore.
func (s *SQLiteStore) CountDocuments(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM semantic_records`).Scan(&n)
	return n, err
}

// CountDocumentsWithTerm implements SemanticStore.
func (s *SQLiteStore) CountDocumentsWithTerm(ctx context.Context, term string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM semantic_terms WHERE term = ?`, term).Scan(&n)
	return n, err
}

func scanRecord(row scanner) (model.SemanticRecord, error) {
	var rec model.SemanticRecord
	var vecJSON, createdAt string
	var kwJSON sql.NullString

	err := row.Scan(&rec.ID, &rec.ProfileID, &rec.Content, &vecJSON, &kwJSON, &rec.Importance, &createdAt)
	if err != nil {
		return rec, err
	}

	rec.CreatedAt = parseTime(createdAt)
	rec.Vector = map[string]float64{}
	if err := json.Unmarshal([]byte(vecJSON), &rec.Vector); err != nil {
		return rec, fmt.Errorf("decode vector of %s: %w", rec.ID, err)
	}
	if kwJSON.Valid {
		json.Unmarshal([]byte(kwJSON.String), &rec.Keywords)
	}
	return rec, nil
}
