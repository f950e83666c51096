package working

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/agent-recall/internal/config"
	"github.com/rcliao/agent-recall/internal/model"
	"github.com/rcliao/agent-recall/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestService(t *testing.T) (*Service, *store.SQLiteStore, *bytes.Buffer) {
	t.Helper()
	s := newTestStore(t)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewService(s, logger), s, &logs
}

func memCfg(limit int, strategy config.Strategy) config.Memory {
	cfg := config.DefaultMemory()
	cfg.MemoryLimit = limit
	cfg.CleanupStrategy = strategy
	return cfg
}

func formatted(t *testing.T, svc *Service, profileID string) string {
	t.Helper()
	out, err := svc.Formatted(context.Background(), profileID)
	require.NoError(t, err)
	return out
}

func TestAdd_TruncateOldEvictsOldest(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	cfg := memCfg(25, config.TruncateOld)

	for _, c := range []string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc"} {
		res := svc.Add(ctx, "p1", c, cfg)
		require.True(t, res.Success, res.Message)
	}

	out := formatted(t, svc, "p1")
	assert.LessOrEqual(t, len(out), 25)
	assert.NotContains(t, out, "aaaaaaaaaa")
	assert.Contains(t, out, "cccccccccc")
	assert.True(t, strings.HasPrefix(out, "1. "))
}

func TestAdd_FitsWithoutResolution(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	cfg := memCfg(100, config.Reject)

	res := svc.Add(ctx, "p1", "first", cfg)
	require.True(t, res.Success)
	assert.Equal(t, 1, res.Item.Position)
	assert.Equal(t, len("1. first"), res.Length)

	res = svc.Add(ctx, "p1", "second", cfg)
	require.True(t, res.Success)
	assert.Equal(t, "1. first\n2. second", formatted(t, svc, "p1"))
	assert.Equal(t, len("1. first\n2. second"), res.Length)
}

func TestLengthInvariant(t *testing.T) {
	strategies := []config.Strategy{config.TruncateOld, config.TruncateNew, config.Compress}
	for _, strategy := range strategies {
		t.Run(string(strategy), func(t *testing.T) {
			ctx := context.Background()
			svc, _, _ := newTestService(t)
			cfg := memCfg(60, strategy)

			for i := 0; i < 30; i++ {
				content := strings.Repeat(fmt.Sprintf("w%d  ", i), i%7+1)
				var res Result
				if i%9 == 8 {
					res = svc.Replace(ctx, "p1", content+strings.Repeat("x", 80), cfg)
				} else {
					res = svc.Add(ctx, "p1", content, cfg)
				}
				out := formatted(t, svc, "p1")
				if res.Success {
					assert.LessOrEqual(t, len(out), cfg.MemoryLimit, "step %d: %q", i, out)
				}
			}
		})
	}
}

func TestRejectInvariant(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Memory
	}{
		{"reject strategy", memCfg(25, config.Reject)},
		{"cleanup disabled", func() config.Memory {
			c := memCfg(25, config.TruncateOld)
			c.AutoCleanup = false
			return c
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc, _, _ := newTestService(t)

			require.True(t, svc.Add(ctx, "p1", "aaaaaaaaaa", tt.cfg).Success)
			before := formatted(t, svc, "p1")

			res := svc.Add(ctx, "p1", "bbbbbbbbbb", tt.cfg)
			assert.False(t, res.Success)
			assert.Contains(t, res.Message, "25")
			assert.Equal(t, before, formatted(t, svc, "p1"))

			res = svc.Replace(ctx, "p1", strings.Repeat("c", 40), tt.cfg)
			assert.False(t, res.Success)
			assert.Equal(t, before, formatted(t, svc, "p1"))
		})
	}
}

func TestDelete_RenumbersContiguously(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	cfg := memCfg(1000, config.TruncateOld)

	for _, c := range []string{"one", "two", "three"} {
		svc.Add(ctx, "p1", c, cfg)
	}

	res := svc.Delete(ctx, "p1", 2)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "two", res.Item.Content)

	items, err := svc.Items(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Position)
	assert.Equal(t, 2, items[1].Position)
	assert.Equal(t, "three", items[1].Content)
	assert.Equal(t, "1. one\n2. three", formatted(t, svc, "p1"))
}

func TestDelete_BoundsChecked(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	svc.Add(ctx, "p1", "only", memCfg(100, config.TruncateOld))

	for _, n := range []int{0, -1, 2} {
		res := svc.Delete(ctx, "p1", n)
		assert.False(t, res.Success, "item %d", n)
		assert.Contains(t, res.Message, fmt.Sprint(n))
	}
	assert.Equal(t, "1. only", formatted(t, svc, "p1"))
}

func TestAdd_EmptyContent(t *testing.T) {
	svc, _, _ := newTestService(t)
	res := svc.Add(context.Background(), "p1", "   ", config.DefaultMemory())
	assert.False(t, res.Success)
	assert.Equal(t, "content cannot be empty", res.Message)
}

func TestCompress_CollapsesAllItems(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	cfg := memCfg(40, config.Compress)

	require.True(t, svc.Add(ctx, "p1", "a  b", cfg).Success)
	require.True(t, svc.Add(ctx, "p1", "c\t\td", cfg).Success)

	res := svc.Add(ctx, "p1", strings.Repeat("x", 26), cfg)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, config.Compress, res.Strategy)
	assert.Equal(t, 1, res.Removed)
	assert.Equal(t, "1. c d\n2. "+strings.Repeat("x", 26), formatted(t, svc, "p1"))
}

func TestTruncateNew(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	cfg := memCfg(30, config.TruncateNew)

	require.True(t, svc.Add(ctx, "p1", "hello world", cfg).Success)

	res := svc.Add(ctx, "p1", "abcdefghijklmnopqrstuvwxyz0123", cfg)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "abcdef", res.Item.Content)
	assert.Equal(t, "1. hello world\n2. abcdef", formatted(t, svc, "p1"))

	res = svc.Add(ctx, "p1", "more text here", cfg)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "no space available")
}

func TestReplace_TruncatesToFit(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	res := svc.Replace(ctx, "p1", "abcdefghijklmnop", memCfg(10, config.TruncateOld))
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "1. abcdefg", formatted(t, svc, "p1"))

	// Multi-byte runes are never split.
	res = svc.Replace(ctx, "p1", "ééééé", memCfg(10, config.TruncateNew))
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "1. ééé", formatted(t, svc, "p1"))

	res = svc.Replace(ctx, "p1", "a   b   c   d", memCfg(10, config.Compress))
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "1. a b c d", formatted(t, svc, "p1"))
}

func TestSafetyValve(t *testing.T) {
	ctx := context.Background()
	svc, s, logs := newTestService(t)

	for i := 0; i < 120; i++ {
		_, err := s.AppendItem(ctx, "p1", "x")
		require.NoError(t, err)
	}
	before := testutil.ToFloat64(safetyValveHits)

	res := svc.Add(ctx, "p1", "z", memCfg(5, config.TruncateOld))
	require.True(t, res.Success, res.Message)
	assert.Equal(t, MaxIterations, res.Removed)
	assert.Contains(t, logs.String(), "overflow safety valve reached")
	assert.Equal(t, before+1, testutil.ToFloat64(safetyValveHits))

	items, err := svc.Items(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, items, 21)
	assert.Greater(t, len(Format(items)), 5)
}

func TestVersioningIsNoop(t *testing.T) {
	ctx := context.Background()
	svc, _, logs := newTestService(t)
	cfg := memCfg(12, config.TruncateOld)
	cfg.EnableVersioning = true

	svc.Add(ctx, "p1", "aaaa", cfg)
	res := svc.Add(ctx, "p1", "bbbb", cfg)
	require.True(t, res.Success)
	assert.Contains(t, logs.String(), "versioning requested but not supported")
}

// blockingRepo parks AppendItem for one profile until release is closed.
type blockingRepo struct {
	store.WorkingStore
	profile string
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (r *blockingRepo) AppendItem(ctx context.Context, profileID, content string) (*model.WorkingItem, error) {
	if profileID == r.profile {
		r.once.Do(func() { close(r.entered) })
		<-r.release
	}
	return r.WorkingStore.AppendItem(ctx, profileID, content)
}

func TestResolve_ConcurrentSameProfile(t *testing.T) {
	ctx := context.Background()
	repo := &blockingRepo{
		WorkingStore: newTestStore(t),
		profile:      "p1",
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	r := NewResolver(repo, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	cfg := memCfg(25, config.TruncateOld)

	var wg sync.WaitGroup
	var first Result
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = r.Resolve(ctx, "p1", OpAppend, "aaaaaaaaaa", cfg)
	}()
	<-repo.entered

	second := r.Resolve(ctx, "p1", OpAppend, "bbbbbbbbbb", cfg)
	assert.False(t, second.Success)
	assert.Equal(t, ErrMsgInProgress, second.Message)

	other := r.Resolve(ctx, "p2", OpAppend, "cccccccccc", cfg)
	assert.True(t, other.Success, other.Message)

	close(repo.release)
	wg.Wait()
	assert.True(t, first.Success, first.Message)

	// The guard is free again.
	again := r.Resolve(ctx, "p1", OpAppend, "dddddddddd", cfg)
	assert.True(t, again.Success, again.Message)
}

// reentrantRepo resolves again from inside a resolution.
type reentrantRepo struct {
	store.WorkingStore
	resolver *Resolver
	nested   *Result
}

func (r *reentrantRepo) AppendItem(ctx context.Context, profileID, content string) (*model.WorkingItem, error) {
	if r.nested == nil {
		res := r.resolver.Resolve(ctx, profileID, OpAppend, "nested", memCfg(25, config.TruncateOld))
		r.nested = &res
	}
	return r.WorkingStore.AppendItem(ctx, profileID, content)
}

func TestResolve_NestedFailsFast(t *testing.T) {
	repo := &reentrantRepo{WorkingStore: newTestStore(t)}
	repo.resolver = NewResolver(repo, nil)

	res := repo.resolver.Resolve(context.Background(), "p1", OpAppend, "outer", memCfg(25, config.Compress))
	assert.True(t, res.Success, res.Message)
	require.NotNil(t, repo.nested)
	assert.False(t, repo.nested.Success)
	assert.Equal(t, ErrMsgInProgress, repo.nested.Message)
}

func TestResolve_UnknownStrategyFallsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	r := NewResolver(s, nil)
	s.AppendItem(ctx, "p1", "aaaaaaaaaa")

	res := r.Resolve(ctx, "p1", OpAppend, "bbbbbbbbbb", memCfg(15, config.Strategy("bogus")))
	require.True(t, res.Success, res.Message)
	assert.Equal(t, config.TruncateOld, res.Strategy)
	assert.Equal(t, 1, res.Removed)
}

type panickyRepo struct{ store.WorkingStore }

func (panickyRepo) ListItems(context.Context, string) ([]model.WorkingItem, error) {
	panic("boom")
}

func TestService_RecoversPanics(t *testing.T) {
	svc := NewService(panickyRepo{}, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	res := svc.Add(context.Background(), "p1", "content", config.DefaultMemory())
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "internal error")
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	cfg := memCfg(1000, config.TruncateOld)
	svc.Add(ctx, "p1", "Buy milk", cfg)
	svc.Add(ctx, "p1", "buy bread", cfg)

	res := svc.Search(ctx, "p1", "buy")
	require.True(t, res.Success)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "buy bread", res.Items[0].Content)

	assert.False(t, svc.Search(ctx, "p1", "").Success)
}

func TestClearAndStats(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	cfg := memCfg(100, config.TruncateOld)
	svc.Add(ctx, "p1", "one", cfg)
	svc.Add(ctx, "p1", "two", cfg)

	st, err := svc.Stats(ctx, "p1", cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Items)
	assert.Equal(t, len("1. one\n2. two"), st.Length)
	assert.Equal(t, 100-st.Length, st.Available)
	assert.InDelta(t, 13.0, st.UsagePercent, 0.001)

	res := svc.Clear(ctx, "p1")
	require.True(t, res.Success)
	assert.Equal(t, 2, res.Removed)
	assert.Empty(t, formatted(t, svc, "p1"))
}

func TestForContext(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	cfg := memCfg(1000, config.TruncateOld)
	for _, c := range []string{"aaa", "bbb", "ccc"} {
		svc.Add(ctx, "p1", c, cfg)
	}

	tests := []struct {
		max  int
		want string
	}{
		{100, "1. aaa\n2. bbb\n3. ccc"},
		{20, "1. aaa\n2. bbb\n3. ccc"},
		{19, "1. aaa\n2. bbb"},
		{13, "1. aaa\n2. bbb"},
		{6, "1. aaa"},
		{5, ""},
	}
	for _, tt := range tests {
		got, err := svc.ForContext(ctx, "p1", tt.max)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "max %d", tt.max)
	}
}
