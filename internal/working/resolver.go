package working

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rcliao/agent-recall/internal/config"
	"github.com/rcliao/agent-recall/internal/model"
	"github.com/rcliao/agent-recall/internal/store"
)

// MaxIterations caps oldest-first eviction per resolution.
const MaxIterations = 100

// Op is the write that overflowed.
type Op int

const (
	OpAppend Op = iota
	OpReplace
)

func (o Op) String() string {
	if o == OpReplace {
		return "replace"
	}
	return "append"
}

// ErrMsgInProgress is the failure message of a resolution that found one
// already running for the same profile.
const ErrMsgInProgress = "overflow processing already in progress"

// Resolver brings a profile's working memory back under its byte limit.
type Resolver struct {
	repo          store.WorkingStore
	guard         *overflowGuard
	logger        *slog.Logger
	maxIterations int
}

// NewResolver creates a Resolver over repo.
func NewResolver(repo store.WorkingStore, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		repo:          repo,
		guard:         newOverflowGuard(),
		logger:        logger,
		maxIterations: MaxIterations,
	}
}

// Resolve commits content under cfg.CleanupStrategy. At most one resolution
// per profile runs at a time; a second one fails immediately.
func (r *Resolver) Resolve(ctx context.Context, profileID string, op Op, content string, cfg config.Memory) (res Result) {
	strategy := cfg.CleanupStrategy
	if !strategy.Valid() {
		strategy = config.TruncateOld
	}
	log := r.logger.With("profile", profileID, "op", op.String(), "strategy", string(strategy), "limit", cfg.MemoryLimit)

	if !r.guard.tryAcquire(profileID) {
		overflowResolutions.WithLabelValues(string(strategy), "busy").Inc()
		log.Warn("overflow resolution rejected, already running")
		return fail(ErrMsgInProgress)
	}
	defer r.guard.release(profileID)

	defer func() {
		outcome := "resolved"
		if !res.Success {
			outcome = "failed"
		}
		overflowResolutions.WithLabelValues(string(strategy), outcome).Inc()
	}()

	if cfg.EnableVersioning {
		log.Debug("versioning requested but not supported", "max_versions", cfg.MaxVersions)
	}

	var err error
	switch strategy {
	case config.Reject:
		return fail(fmt.Sprintf("memory limit of %d bytes exceeded (strategy: reject)", cfg.MemoryLimit))
	case config.TruncateNew:
		res, err = r.truncateNew(ctx, profileID, op, content, cfg.MemoryLimit)
	case config.Compress:
		res, err = r.compress(ctx, profileID, op, content, cfg.MemoryLimit, log)
	default:
		res, err = r.truncateOld(ctx, profileID, op, content, cfg.MemoryLimit, log)
	}
	if err != nil {
		log.Error("overflow resolution failed", "error", err)
		return fail(fmt.Sprintf("overflow resolution (%s) failed: %v", strategy, err))
	}
	res.Strategy = strategy
	res.Limit = cfg.MemoryLimit
	return res
}

func (r *Resolver) truncateOld(ctx context.Context, profileID string, op Op, content string, limit int, log *slog.Logger) (Result, error) {
	if op == OpReplace {
		return r.replaceTruncated(ctx, profileID, content, limit)
	}
	item, err := r.repo.AppendItem(ctx, profileID, content)
	if err != nil {
		return Result{}, fmt.Errorf("append item: %w", err)
	}
	return r.evictOldest(ctx, profileID, item, limit, log)
}

func (r *Resolver) truncateNew(ctx context.Context, profileID string, op Op, content string, limit int) (Result, error) {
	if op == OpReplace {
		return r.replaceTruncated(ctx, profileID, content, limit)
	}
	items, err := r.repo.ListItems(ctx, profileID)
	if err != nil {
		return Result{}, fmt.Errorf("list items: %w", err)
	}
	available := limit - formattedLength(items) - truncateNewSlack
	cut := truncateBytes(content, available)
	if cut == "" {
		return fail(fmt.Sprintf("no space available for new content (limit %d bytes)", limit)), nil
	}
	item, err := r.repo.AppendItem(ctx, profileID, cut)
	if err != nil {
		return Result{}, fmt.Errorf("append item: %w", err)
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("Memory item added, truncated to %d bytes", len(cut)),
		Item:    item,
		Length:  lengthWith(items, cut),
	}, nil
}

func (r *Resolver) compress(ctx context.Context, profileID string, op Op, content string, limit int, log *slog.Logger) (Result, error) {
	if op == OpReplace {
		return r.replaceTruncated(ctx, profileID, collapseWhitespace(content), limit)
	}
	item, err := r.repo.AppendItem(ctx, profileID, content)
	if err != nil {
		return Result{}, fmt.Errorf("append item: %w", err)
	}

	items, err := r.repo.ListItems(ctx, profileID)
	if err != nil {
		return Result{}, fmt.Errorf("list items: %w", err)
	}
	for _, it := range items {
		c := collapseWhitespace(it.Content)
		if c == it.Content {
			continue
		}
		if err := r.repo.UpdateItem(ctx, profileID, it.Position, c); err != nil {
			return Result{}, fmt.Errorf("compress item %d: %w", it.Position, err)
		}
		if it.Position == item.Position {
			item.Content = c
		}
	}
	return r.evictOldest(ctx, profileID, item, limit, log)
}

// evictOldest deletes item 1 until the memory fits or is empty.
func (r *Resolver) evictOldest(ctx context.Context, profileID string, added *model.WorkingItem, limit int, log *slog.Logger) (Result, error) {
	removed := 0
	for i := 0; ; i++ {
		items, err := r.repo.ListItems(ctx, profileID)
		if err != nil {
			return Result{}, fmt.Errorf("list items: %w", err)
		}
		length := formattedLength(items)
		if length <= limit || len(items) == 0 {
			return evicted(added, removed, length), nil
		}
		if i >= r.maxIterations {
			safetyValveHits.Inc()
			log.Warn("overflow safety valve reached", "iterations", i, "length", length, "items", len(items))
			return evicted(added, removed, length), nil
		}
		if err := r.repo.DeleteItem(ctx, profileID, 1); err != nil {
			return Result{}, fmt.Errorf("evict oldest: %w", err)
		}
		removed++
		evictedItems.Inc()
	}
}

func evicted(added *model.WorkingItem, removed, length int) Result {
	if added != nil {
		added.Position -= removed
		if added.Position < 1 {
			added = nil
		}
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("Memory item added, %d oldest item(s) removed", removed),
		Item:    added,
		Removed: removed,
		Length:  length,
	}
}

// replaceTruncated stores content as the only item, cut so "1. "+content fits.
func (r *Resolver) replaceTruncated(ctx context.Context, profileID, content string, limit int) (Result, error) {
	cut := truncateBytes(content, limit-len(line(1, "")))
	if cut == "" {
		return fail(fmt.Sprintf("no space available for new content (limit %d bytes)", limit)), nil
	}
	item, err := r.repo.ReplaceItems(ctx, profileID, cut)
	if err != nil {
		return Result{}, fmt.Errorf("replace items: %w", err)
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("Memory replaced, truncated to %d bytes", len(cut)),
		Item:    item,
		Length:  len(line(1, cut)),
	}, nil
}
