package vector

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/agent-recall/internal/model"
)

var rankNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func record(t *testing.T, vz *Vectorizer, id, content string, age time.Duration) model.SemanticRecord {
	t.Helper()
	v, err := vz.Vectorize(context.Background(), content)
	require.NoError(t, err)
	return model.SemanticRecord{
		ID:         id,
		ProfileID:  "p1",
		Content:    content,
		Vector:     v,
		Importance: model.DefaultImportance,
		CreatedAt:  rankNow.Add(-age),
	}
}

func TestRecencyFactor(t *testing.T) {
	day := 24 * time.Hour
	assert.InDelta(t, 1.0, RecencyFactor(rankNow, rankNow), 1e-12)
	assert.InDelta(t, 0.5, RecencyFactor(rankNow.Add(-15*day), rankNow), 1e-12)
	assert.InDelta(t, 0.1, RecencyFactor(rankNow.Add(-29*day), rankNow), 1e-12, "floored")
	assert.InDelta(t, 0.1, RecencyFactor(rankNow.Add(-400*day), rankNow), 1e-12)
	assert.InDelta(t, 1.0, RecencyFactor(rankNow.Add(day), rankNow), 1e-12, "future counts as new")
}

func TestFindSimilar_RecencyBoost(t *testing.T) {
	vz, _ := newTestVectorizer(t, &fakeCounter{total: 10, fallback: 1})
	r := NewRanker(vz, func() time.Time { return rankNow })

	corpus := []model.SemanticRecord{
		record(t, vz, "old", "I love cats", 29*24*time.Hour),
		record(t, vz, "new", "I love cats", 0),
	}

	matches, err := r.FindSimilar(context.Background(), "cats are great", corpus, Options{Limit: 5, Threshold: 0.05, BoostRecent: true})
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "new", matches[0].Record.ID)
	assert.InDelta(t, 0.5, matches[0].Score, 1e-9)
	if len(matches) == 2 {
		assert.Greater(t, matches[0].Score, matches[1].Score)
	}

	// Without the boost both records score the same raw cosine.
	raw, err := r.FindSimilar(context.Background(), "cats are great", corpus, Options{Limit: 5, Threshold: 0.05})
	require.NoError(t, err)
	require.Len(t, raw, 2)
	assert.InDelta(t, raw[0].Score, raw[1].Score, 1e-12)
}

func TestFindSimilar_OlderNeverOutranksNewer(t *testing.T) {
	vz, _ := newTestVectorizer(t, &fakeCounter{total: 10, fallback: 1})
	r := NewRanker(vz, func() time.Time { return rankNow })

	var corpus []model.SemanticRecord
	for days := 40; days >= 0; days -= 4 {
		corpus = append(corpus, record(t, vz, fmt.Sprintf("d%02d", days), "agent remembers deployment steps", time.Duration(days)*24*time.Hour))
	}

	matches, err := r.FindSimilar(context.Background(), "deployment steps", corpus, Options{Limit: 100, Threshold: 0, BoostRecent: true})
	require.NoError(t, err)
	require.Len(t, matches, len(corpus))
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
		assert.False(t, matches[i].Record.CreatedAt.After(matches[i-1].Record.CreatedAt),
			"%s ranked below older %s", matches[i].Record.ID, matches[i-1].Record.ID)
	}
}

func TestFindSimilar_FiltersAndLimits(t *testing.T) {
	vz, _ := newTestVectorizer(t, &fakeCounter{total: 10, fallback: 1})
	r := NewRanker(vz, func() time.Time { return rankNow })

	corpus := []model.SemanticRecord{
		record(t, vz, "a", "golang channels and goroutines", 0),
		record(t, vz, "b", "golang interfaces", 0),
		record(t, vz, "c", "baking sourdough bread", 0),
		{ID: "empty", Content: "the", Vector: Vector{}, CreatedAt: rankNow},
		record(t, vz, "d", "golang generics", 0),
	}

	matches, err := r.FindSimilar(context.Background(), "golang", corpus, Options{Limit: 2, Threshold: 0.1, BoostRecent: true})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.NotEqual(t, "c", m.Record.ID)
		assert.NotEqual(t, "empty", m.Record.ID)
	}
}

func TestFindSimilar_EmptyQuery(t *testing.T) {
	vz, _ := newTestVectorizer(t, &fakeCounter{})
	r := NewRanker(vz, nil)

	corpus := []model.SemanticRecord{record(t, vz, "a", "something memorable", 0)}
	matches, err := r.FindSimilar(context.Background(), "the and of", corpus, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, matches)
}
