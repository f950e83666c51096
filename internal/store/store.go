// Package store provides the memory repositories and their SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/agent-recall/internal/model"
)

// ErrNotFound is returned when a working item or semantic record does not exist.
var ErrNotFound = errors.New("not found")

// WorkingStore persists a profile's ordered working memory.
// Every mutation keeps positions contiguous from 1.
type WorkingStore interface {
	// ListItems returns items ordered by position.
	ListItems(ctx context.Context, profileID string) ([]model.WorkingItem, error)

	// AppendItem adds content after the last item.
	AppendItem(ctx context.Context, profileID, content string) (*model.WorkingItem, error)

	// ReplaceItems removes every item and stores content as item 1.
	ReplaceItems(ctx context.Context, profileID, content string) (*model.WorkingItem, error)

	// UpdateItem rewrites the content at position.
	UpdateItem(ctx context.Context, profileID string, position int, content string) error

	// DeleteItem removes the item at position and renumbers the rest.
	DeleteItem(ctx context.Context, profileID string, position int) error

	// ClearItems removes every item and returns how many were removed.
	ClearItems(ctx context.Context, profileID string) (int, error)

	// SearchItems returns items whose content contains query (case-sensitive).
	SearchItems(ctx context.Context, profileID, query string) ([]model.WorkingItem, error)
}

// SemanticStore persists semantic records and the per-term document index
// used for IDF.
type SemanticStore interface {
	// InsertRecord stores rec, assigning an ID and CreatedAt when unset.
	InsertRecord(ctx context.Context, rec *model.SemanticRecord) error

	// GetRecord retrieves one record of a profile.
	GetRecord(ctx context.Context, profileID, id string) (*model.SemanticRecord, error)

	// ListRecords returns a profile's records, newest first. limit <= 0 means all.
	ListRecords(ctx context.Context, profileID string, limit int) ([]model.SemanticRecord, error)

	// UpdateImportance sets a record's importance.
	UpdateImportance(ctx context.Context, profileID, id string, importance float64) error

	// DeleteRecord removes a record and its terms.
	DeleteRecord(ctx context.Context, profileID, id string) error

	// CountDocuments counts records across all profiles.
	CountDocuments(ctx context.Context) (int, error)

	// CountDocumentsWithTerm counts records whose vector contains term.
	CountDocumentsWithTerm(ctx context.Context, term string) (int, error)

	// SemanticStats summarizes a profile's records.
	SemanticStats(ctx context.Context, profileID string) (*SemanticStats, error)

	// ExportAll returns records oldest first; an empty profileID means every profile.
	ExportAll(ctx context.Context, profileID string) ([]model.SemanticRecord, error)
}
