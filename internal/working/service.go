// Package working implements the bounded working memory of a profile and
// the overflow strategies that keep it within its byte limit.
package working

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rcliao/agent-recall/internal/config"
	"github.com/rcliao/agent-recall/internal/model"
	"github.com/rcliao/agent-recall/internal/store"
)

// Result is returned by every mutating operation. Failures are reported
// through Success and Message, never as errors.
type Result struct {
	Success  bool                `json:"success" yaml:"success"`
	Message  string              `json:"message" yaml:"message"`
	Item     *model.WorkingItem  `json:"item,omitempty" yaml:"item,omitempty"`
	Items    []model.WorkingItem `json:"items,omitempty" yaml:"items,omitempty"`
	Removed  int                 `json:"removed,omitempty" yaml:"removed,omitempty"`
	Length   int                 `json:"length" yaml:"length"`
	Limit    int                 `json:"limit,omitempty" yaml:"limit,omitempty"`
	Strategy config.Strategy     `json:"strategy,omitempty" yaml:"strategy,omitempty"`
}

func fail(msg string) Result {
	return Result{Message: msg}
}

// Stats describes a profile's working memory usage.
type Stats struct {
	ProfileID    string          `json:"profile_id" yaml:"profile_id"`
	Items        int             `json:"items" yaml:"items"`
	Length       int             `json:"length" yaml:"length"`
	Limit        int             `json:"limit" yaml:"limit"`
	UsagePercent float64         `json:"usage_percent" yaml:"usage_percent"`
	Available    int             `json:"available" yaml:"available"`
	AutoCleanup  bool            `json:"auto_cleanup" yaml:"auto_cleanup"`
	Strategy     config.Strategy `json:"strategy" yaml:"strategy"`
}

// Service is the working memory of every profile in a WorkingStore.
type Service struct {
	repo     store.WorkingStore
	resolver *Resolver
	locks    *profileLocks
	logger   *slog.Logger
}

// NewService creates a Service. A nil logger means slog.Default().
func NewService(repo store.WorkingStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		resolver: NewResolver(repo, logger),
		locks:    newProfileLocks(),
		logger:   logger,
	}
}

// Resolver returns the overflow resolver used by the service.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// guarded turns a panic into a failed Result.
func (s *Service) guarded(op, profileID string, res *Result) {
	if p := recover(); p != nil {
		s.logger.Error("working memory operation panicked", "op", op, "profile", profileID, "panic", p)
		*res = fail(fmt.Sprintf("%s failed: internal error", op))
	}
}

func (s *Service) internal(op, profileID string, err error) Result {
	s.logger.Error("working memory operation failed", "op", op, "profile", profileID, "error", err)
	return fail(fmt.Sprintf("%s failed: %v", op, err))
}

// Add appends content, resolving overflow according to cfg.
func (s *Service) Add(ctx context.Context, profileID, content string, cfg config.Memory) (res Result) {
	defer s.guarded("add", profileID, &res)
	if strings.TrimSpace(content) == "" {
		return fail("content cannot be empty")
	}

	unlock := s.locks.lock(profileID)
	defer unlock()

	items, err := s.repo.ListItems(ctx, profileID)
	if err != nil {
		return s.internal("add", profileID, err)
	}
	if n := lengthWith(items, content); n <= cfg.MemoryLimit {
		item, err := s.repo.AppendItem(ctx, profileID, content)
		if err != nil {
			return s.internal("add", profileID, err)
		}
		return Result{Success: true, Message: fmt.Sprintf("Memory item %d added", item.Position), Item: item, Length: n, Limit: cfg.MemoryLimit}
	}
	if !cfg.AutoCleanup {
		return fail(fmt.Sprintf("memory limit of %d bytes exceeded and auto cleanup is disabled", cfg.MemoryLimit))
	}
	return s.resolver.Resolve(ctx, profileID, OpAppend, content, cfg)
}

// Replace discards all items and stores content as the only one.
func (s *Service) Replace(ctx context.Context, profileID, content string, cfg config.Memory) (res Result) {
	defer s.guarded("replace", profileID, &res)
	if strings.TrimSpace(content) == "" {
		return fail("content cannot be empty")
	}

	unlock := s.locks.lock(profileID)
	defer unlock()

	if n := lengthWith(nil, content); n <= cfg.MemoryLimit {
		item, err := s.repo.ReplaceItems(ctx, profileID, content)
		if err != nil {
			return s.internal("replace", profileID, err)
		}
		return Result{Success: true, Message: "Memory replaced", Item: item, Length: n, Limit: cfg.MemoryLimit}
	}
	if !cfg.AutoCleanup {
		return fail(fmt.Sprintf("memory limit of %d bytes exceeded and auto cleanup is disabled", cfg.MemoryLimit))
	}
	return s.resolver.Resolve(ctx, profileID, OpReplace, content, cfg)
}

// Delete removes item number n (1-indexed) and renumbers the rest.
func (s *Service) Delete(ctx context.Context, profileID string, n int) (res Result) {
	defer s.guarded("delete", profileID, &res)
	if n < 1 {
		return fail(fmt.Sprintf("invalid item number %d", n))
	}

	unlock := s.locks.lock(profileID)
	defer unlock()

	items, err := s.repo.ListItems(ctx, profileID)
	if err != nil {
		return s.internal("delete", profileID, err)
	}
	if n > len(items) {
		return fail(fmt.Sprintf("item %d does not exist (memory has %d items)", n, len(items)))
	}
	if err := s.repo.DeleteItem(ctx, profileID, n); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(fmt.Sprintf("item %d does not exist", n))
		}
		return s.internal("delete", profileID, err)
	}
	deleted := items[n-1]
	remaining := append(items[:n-1:n-1], items[n:]...)
	return Result{Success: true, Message: fmt.Sprintf("Memory item %d deleted", n), Item: &deleted, Length: formattedLength(remaining)}
}

// Clear removes every item of the profile.
func (s *Service) Clear(ctx context.Context, profileID string) (res Result) {
	defer s.guarded("clear", profileID, &res)

	unlock := s.locks.lock(profileID)
	defer unlock()

	n, err := s.repo.ClearItems(ctx, profileID)
	if err != nil {
		return s.internal("clear", profileID, err)
	}
	return Result{Success: true, Message: fmt.Sprintf("Memory cleared, %d item(s) removed", n), Removed: n}
}

// Search returns items whose content contains query, case-sensitively.
func (s *Service) Search(ctx context.Context, profileID, query string) (res Result) {
	defer s.guarded("search", profileID, &res)
	if query == "" {
		return fail("search query cannot be empty")
	}
	items, err := s.repo.SearchItems(ctx, profileID, query)
	if err != nil {
		return s.internal("search", profileID, err)
	}
	return Result{Success: true, Message: fmt.Sprintf("Found %d matching item(s)", len(items)), Items: items}
}

// Items returns the profile's items in order.
func (s *Service) Items(ctx context.Context, profileID string) ([]model.WorkingItem, error) {
	items, err := s.repo.ListItems(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// Stats reports usage against cfg.
func (s *Service) Stats(ctx context.Context, profileID string, cfg config.Memory) (*Stats, error) {
	items, err := s.Items(ctx, profileID)
	if err != nil {
		return nil, err
	}
	length := formattedLength(items)
	st := &Stats{
		ProfileID:   profileID,
		Items:       len(items),
		Length:      length,
		Limit:       cfg.MemoryLimit,
		Available:   max(cfg.MemoryLimit-length, 0),
		AutoCleanup: cfg.AutoCleanup,
		Strategy:    cfg.CleanupStrategy,
	}
	if cfg.MemoryLimit > 0 {
		st.UsagePercent = float64(length) / float64(cfg.MemoryLimit) * 100
	}
	return st, nil
}

// Formatted renders the whole working memory.
func (s *Service) Formatted(ctx context.Context, profileID string) (string, error) {
	items, err := s.Items(ctx, profileID)
	if err != nil {
		return "", err
	}
	return Format(items), nil
}

// ForContext renders as many leading lines as fit in maxLength bytes.
func (s *Service) ForContext(ctx context.Context, profileID string, maxLength int) (string, error) {
	items, err := s.Items(ctx, profileID)
	if err != nil {
		return "", err
	}
	return forContext(items, maxLength), nil
}
