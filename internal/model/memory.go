// Package model defines the core memory data types.
package model

import "time"

// WorkingItem is one line of a profile's bounded working memory.
// Positions within a profile are always 1..N.
type WorkingItem struct {
	ProfileID string    `json:"profile_id"`
	Position  int       `json:"position"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SemanticRecord is a persisted memory searchable by meaning.
// Vector is L2-normalized, or empty when the content had no usable tokens.
type SemanticRecord struct {
	ID         string             `json:"id"`
	ProfileID  string             `json:"profile_id"`
	Content    string             `json:"content"`
	Vector     map[string]float64 `json:"vector,omitempty"`
	Keywords   []string           `json:"keywords,omitempty"`
	Importance float64            `json:"importance"`
	CreatedAt  time.Time          `json:"created_at"`
}

// Match is a semantic record scored against a query.
type Match struct {
	Record SemanticRecord `json:"record"`
	Score  float64        `json:"score"`
}

// Importance bounds for semantic records.
const (
	MinImportance     = 0.1
	MaxImportance     = 5.0
	DefaultImportance = 1.0
)

// ClampImportance keeps v within [MinImportance, MaxImportance].
func ClampImportance(v float64) float64 {
	if v < MinImportance {
		return MinImportance
	}
	if v > MaxImportance {
		return MaxImportance
	}
	return v
}
