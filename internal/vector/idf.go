package vector

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"golang.org/x/sync/singleflight"
)

// DefaultIDFTTL is how long a computed IDF value stays cached.
const DefaultIDFTTL = time.Hour

// DocumentCounter reports corpus-wide document counts.
type DocumentCounter interface {
	CountDocuments(ctx context.Context) (int, error)
	CountDocumentsWithTerm(ctx context.Context, term string) (int, error)
}

// IDFCache caches inverse document frequencies per term in its own ristretto
// instance, so Clear never touches unrelated cached data.
//
// Concurrent misses for the same term share one computation.
type IDFCache struct {
	counter DocumentCounter
	cache   *ristretto.Cache
	ttl     time.Duration
	flight  singleflight.Group
	logger  *slog.Logger

	mu       sync.Mutex
	baseline int // corpus size at the last flush, -1 until first observed
}

// IDFOption configures an IDFCache.
type IDFOption func(*IDFCache)

// WithTTL overrides DefaultIDFTTL.
func WithTTL(d time.Duration) IDFOption {
	return func(c *IDFCache) { c.ttl = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) IDFOption {
	return func(c *IDFCache) { c.logger = l }
}

// NewIDFCache creates a cache backed by counter.
func NewIDFCache(counter DocumentCounter, opts ...IDFOption) (*IDFCache, error) {
	rc, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1 << 16,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create idf cache: %w", err)
	}
	c := &IDFCache{
		counter:  counter,
		cache:    rc,
		ttl:      DefaultIDFTTL,
		logger:   slog.Default(),
		baseline: -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// IDF returns ln(total / containing) for term, or 1.0 when the corpus is
// empty or no document contains the term.
func (c *IDFCache) IDF(ctx context.Context, term string) (float64, error) {
	if v, ok := c.cache.Get(term); ok {
		idfLookups.WithLabelValues("hit").Inc()
		return v.(float64), nil
	}
	idfLookups.WithLabelValues("miss").Inc()

	v, err, _ := c.flight.Do(term, func() (interface{}, error) {
		idf, err := c.compute(ctx, term)
		if err != nil {
			return nil, err
		}
		c.cache.SetWithTTL(term, idf, 1, c.ttl)
		return idf, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

func (c *IDFCache) compute(ctx context.Context, term string) (float64, error) {
	total, err := c.counter.CountDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	if total == 0 {
		return 1.0, nil
	}
	containing, err := c.counter.CountDocumentsWithTerm(ctx, term)
	if err != nil {
		return 0, fmt.Errorf("count documents with %q: %w", term, err)
	}
	if containing == 0 {
		return 1.0, nil
	}
	return math.Log(float64(total) / float64(containing)), nil
}

// Clear drops every cached IDF value.
func (c *IDFCache) Clear() {
	c.cache.Clear()
	idfFlushes.Inc()
}

// ObserveCorpusSize flushes the cache once the corpus has drifted by at least
// 10% (minimum one document) from the size at the previous flush. It reports
// whether a flush happened.
func (c *IDFCache) ObserveCorpusSize(total int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.baseline < 0 {
		c.baseline = total
		return false
	}
	drift := total - c.baseline
	if drift < 0 {
		drift = -drift
	}
	threshold := c.baseline / 10
	if threshold < 1 {
		threshold = 1
	}
	if drift < threshold {
		return false
	}
	c.logger.Debug("corpus changed, flushing idf cache", "previous", c.baseline, "current", total)
	c.Clear()
	c.baseline = total
	return true
}

// Close releases the underlying cache.
func (c *IDFCache) Close() {
	c.cache.Close()
}
