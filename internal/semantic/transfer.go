package semantic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rcliao/agent-recall/internal/model"
	"github.com/rcliao/agent-recall/internal/store"
)

// ImportResult reports what Import did.
type ImportResult struct {
	Imported int `json:"imported" yaml:"imported"`
	Skipped  int `json:"skipped" yaml:"skipped"`
}

// Export returns the records of profileID (every profile when empty), oldest first.
func (s *Service) Export(ctx context.Context, profileID string) ([]model.SemanticRecord, error) {
	recs, err := s.repo.ExportAll(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return recs, nil
}

// Import stores records produced by Export. Vectors and keywords are rebuilt
// against the current corpus; IDs, importance and creation time are kept.
// A non-empty profileID re-homes records of other profiles under fresh IDs.
// Records whose ID already exists, or whose content is blank, are skipped.
func (s *Service) Import(ctx context.Context, profileID string, records []model.SemanticRecord) (*ImportResult, error) {
	res := &ImportResult{}
	for _, rec := range records {
		if profileID != "" && rec.ProfileID != profileID {
			rec.ProfileID = profileID
			rec.ID = ""
		}
		if rec.ProfileID == "" || strings.TrimSpace(rec.Content) == "" {
			res.Skipped++
			continue
		}
		if rec.ID != "" {
			_, err := s.repo.GetRecord(ctx, rec.ProfileID, rec.ID)
			if err == nil {
				res.Skipped++
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				return res, fmt.Errorf("check record %s: %w", rec.ID, err)
			}
		}
		if err := s.insert(ctx, &rec); err != nil {
			return res, fmt.Errorf("import record %s: %w", rec.ID, err)
		}
		res.Imported++
	}
	s.logger.Info("semantic records imported", "imported", res.Imported, "skipped", res.Skipped)
	return res, nil
}
