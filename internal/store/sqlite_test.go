package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rcliao/agent-recall/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func contents(items []model.WorkingItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Content
	}
	return out
}

func assertContiguous(t *testing.T, items []model.WorkingItem) {
	t.Helper()
	for i, it := range items {
		if it.Position != i+1 {
			t.Fatalf("item %d has position %d, want %d", i, it.Position, i+1)
		}
	}
}

func TestAppendAndList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, c := range []string{"first", "second", "third"} {
		item, err := s.AppendItem(ctx, "p1", c)
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if item.Content != c {
			t.Errorf("expected %q, got %q", c, item.Content)
		}
	}
	s.AppendItem(ctx, "p2", "other profile")

	items, err := s.ListItems(ctx, "p1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	assertContiguous(t, items)
	if items[2].Content != "third" {
		t.Errorf("expected 'third' last, got %q", items[2].Content)
	}
}

func TestDeleteItemRenumbers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, c := range []string{"a", "b", "c", "d"} {
		s.AppendItem(ctx, "p1", c)
	}

	if err := s.DeleteItem(ctx, "p1", 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	items, _ := s.ListItems(ctx, "p1")
	assertContiguous(t, items)
	got := contents(items)
	want := []string{"a", "c", "d"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	// Oldest-first deletion, the overflow path.
	if err := s.DeleteItem(ctx, "p1", 1); err != nil {
		t.Fatalf("delete oldest: %v", err)
	}
	items, _ = s.ListItems(ctx, "p1")
	assertContiguous(t, items)
	if items[0].Content != "c" {
		t.Errorf("expected 'c' first, got %q", items[0].Content)
	}

	// Appends continue after the renumbered tail.
	item, _ := s.AppendItem(ctx, "p1", "e")
	if item.Position != 3 {
		t.Errorf("expected position 3, got %d", item.Position)
	}
}

func TestDeleteItemNotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.DeleteItem(context.Background(), "p1", 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.AppendItem(ctx, "p1", "hello   world")
	if err := s.UpdateItem(ctx, "p1", 1, "hello world"); err != nil {
		t.Fatalf("update: %v", err)
	}
	items, _ := s.ListItems(ctx, "p1")
	if items[0].Content != "hello world" {
		t.Errorf("expected update, got %q", items[0].Content)
	}
	if err := s.UpdateItem(ctx, "p1", 9, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReplaceAndClear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.AppendItem(ctx, "p1", "a")
	s.AppendItem(ctx, "p1", "b")

	item, err := s.ReplaceItems(ctx, "p1", "only")
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if item.Position != 1 {
		t.Errorf("expected position 1, got %d", item.Position)
	}
	items, _ := s.ListItems(ctx, "p1")
	if len(items) != 1 || items[0].Content != "only" {
		t.Fatalf("expected single 'only', got %v", contents(items))
	}

	n, err := s.ClearItems(ctx, "p1")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 cleared, got %d", n)
	}
	items, _ = s.ListItems(ctx, "p1")
	if len(items) != 0 {
		t.Errorf("expected empty, got %d", len(items))
	}
}

func TestInsertAndGetRecord(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rec := &model.SemanticRecord{
		ProfileID:  "p1",
		Content:    "cats purr",
		Vector:     map[string]float64{"cats": 0.6, "purr": 0.8},
		Keywords:   []string{"purr", "cats"},
		Importance: 1.0,
	}
	if err := s.InsertRecord(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected ID to be assigned")
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be assigned")
	}

	got, err := s.GetRecord(ctx, "p1", rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Vector["purr"] != 0.8 || len(got.Keywords) != 2 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("created_at %v != %v", got.CreatedAt, rec.CreatedAt)
	}

	if _, err := s.GetRecord(ctx, "p2", rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound across profiles, got %v", err)
	}
}

func TestDocumentCounts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.InsertRecord(ctx, &model.SemanticRecord{ProfileID: "p1", Content: "x", Vector: map[string]float64{"cat": 1}})
	s.InsertRecord(ctx, &model.SemanticRecord{ProfileID: "p1", Content: "y", Vector: map[string]float64{"cat": 0.6, "dog": 0.8}})
	s.InsertRecord(ctx, &model.SemanticRecord{ProfileID: "p2", Content: "z", Vector: map[string]float64{"dog": 1}})
	s.InsertRecord(ctx, &model.SemanticRecord{ProfileID: "p2", Content: "the", Vector: nil})

	total, _ := s.CountDocuments(ctx)
	if total != 4 {
		t.Errorf("expected 4 documents, got %d", total)
	}
	cats, _ := s.CountDocumentsWithTerm(ctx, "cat")
	if cats != 2 {
		t.Errorf("expected 2 with 'cat', got %d", cats)
	}
	none, _ := s.CountDocumentsWithTerm(ctx, "bird")
	if none != 0 {
		t.Errorf("expected 0 with 'bird', got %d", none)
	}
}

func TestListRecordsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range []string{"oldest", "middle", "newest"} {
		s.InsertRecord(ctx, &model.SemanticRecord{
			ProfileID: "p1", Content: c, CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}

	recs, err := s.ListRecords(ctx, "p1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 3 || recs[0].Content != "newest" || recs[2].Content != "oldest" {
		t.Fatalf("unexpected order: %+v", recs)
	}

	limited, _ := s.ListRecords(ctx, "p1", 2)
	if len(limited) != 2 {
		t.Errorf("expected 2, got %d", len(limited))
	}
}

func TestUpdateImportanceAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rec := &model.SemanticRecord{ProfileID: "p1", Content: "x", Vector: map[string]float64{"cat": 1}, Importance: 1}
	s.InsertRecord(ctx, rec)

	if err := s.UpdateImportance(ctx, "p1", rec.ID, 2.5); err != nil {
		t.Fatalf("update importance: %v", err)
	}
	got, _ := s.GetRecord(ctx, "p1", rec.ID)
	if got.Importance != 2.5 {
		t.Errorf("expected 2.5, got %v", got.Importance)
	}

	if err := s.DeleteRecord(ctx, "p1", rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n, _ := s.CountDocumentsWithTerm(ctx, "cat"); n != 0 {
		t.Errorf("expected terms to cascade, got %d", n)
	}
	if err := s.DeleteRecord(ctx, "p1", rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestPurgeProfile(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.AppendItem(ctx, "p1", "a")
	s.AppendItem(ctx, "p1", "b")
	s.AppendItem(ctx, "p2", "keep")
	s.InsertRecord(ctx, &model.SemanticRecord{ProfileID: "p1", Content: "x", Vector: map[string]float64{"cat": 1}})
	s.InsertRecord(ctx, &model.SemanticRecord{ProfileID: "p2", Content: "y", Vector: map[string]float64{"dog": 1}})

	res, err := s.PurgeProfile(ctx, "p1")
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if res.WorkingItems != 2 || res.SemanticRecords != 1 {
		t.Errorf("unexpected purge result: %+v", res)
	}
	if n, _ := s.CountDocumentsWithTerm(ctx, "cat"); n != 0 {
		t.Errorf("expected p1 terms gone, got %d", n)
	}
	if items, _ := s.ListItems(ctx, "p2"); len(items) != 1 {
		t.Errorf("expected p2 untouched, got %d items", len(items))
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.AppendItem(ctx, "p1", "a")
	s.InsertRecord(ctx, &model.SemanticRecord{ProfileID: "p1", Content: "x", Vector: map[string]float64{"cat": 1}, Importance: 1})
	s.InsertRecord(ctx, &model.SemanticRecord{ProfileID: "p2", Content: "y", Vector: map[string]float64{"cat": 0.6, "dog": 0.8}, Importance: 3})

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.WorkingItems != 1 || st.SemanticRecords != 2 || st.DistinctTerms != 2 {
		t.Errorf("unexpected totals: %+v", st)
	}
	if len(st.Profiles) != 2 || st.Profiles[0].ProfileID != "p1" || st.Profiles[0].WorkingItems != 1 {
		t.Errorf("unexpected profile stats: %+v", st.Profiles)
	}

	sem, err := s.SemanticStats(ctx, "p2")
	if err != nil {
		t.Fatalf("semantic stats: %v", err)
	}
	if sem.Records != 1 || sem.DistinctTerms != 2 || sem.AverageImportance != 3 {
		t.Errorf("unexpected semantic stats: %+v", sem)
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}
