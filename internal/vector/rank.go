package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rcliao/agent-recall/internal/model"
)

const (
	recencyWindowDays = 30.0
	minRecencyFactor  = 0.1
)

// Options controls FindSimilar.
type Options struct {
	Limit       int
	Threshold   float64
	BoostRecent bool
}

// DefaultOptions returns limit 5, threshold 0.1, recency boost on.
func DefaultOptions() Options {
	return Options{Limit: 5, Threshold: 0.1, BoostRecent: true}
}

// Ranker scores stored records against a query.
type Ranker struct {
	vectorizer *Vectorizer
	now        func() time.Time
}

// NewRanker creates a Ranker. A nil clock means time.Now.
func NewRanker(v *Vectorizer, now func() time.Time) *Ranker {
	if now == nil {
		now = time.Now
	}
	return &Ranker{vectorizer: v, now: now}
}

// RecencyFactor decays linearly from 1 to 0.1 over 30 days and stays at 0.1 after.
// Records dated in the future count as brand new.
func RecencyFactor(createdAt, now time.Time) float64 {
	days := now.Sub(createdAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	return math.Max(minRecencyFactor, 1-days/recencyWindowDays)
}

// FindSimilar ranks corpus by cosine similarity to query, optionally boosted
// by recency, keeps scores at or above the threshold and returns at most
// opts.Limit matches, best first. Equal scores put the newer record first.
func (r *Ranker) FindSimilar(ctx context.Context, query string, corpus []model.SemanticRecord, opts Options) ([]model.Match, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultOptions().Limit
	}

	qv, err := r.vectorizer.Vectorize(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	if len(qv) == 0 {
		return []model.Match{}, nil
	}

	now := r.now()
	matches := []model.Match{}
	scored := 0
	for _, rec := range corpus {
		if len(rec.Vector) == 0 {
			continue
		}
		scored++
		score := CosineSimilarity(qv, rec.Vector)
		if opts.BoostRecent {
			score *= RecencyFactor(rec.CreatedAt, now)
		}
		if score >= opts.Threshold {
			matches = append(matches, model.Match{Record: rec, Score: score})
		}
	}
	similarityCandidates.Observe(float64(scored))

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Record.CreatedAt.After(matches[j].Record.CreatedAt)
	})
	if len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}
	return matches, nil
}
