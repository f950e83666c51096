package store

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements WorkingStore and SemanticStore using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string

	entropyMu sync.Mutex
	entropy   *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		path:    dbPath,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) newID(t time.Time) string {
	s.entropyMu.Lock()
	defer s.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS working_items (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		profile_id  TEXT NOT NULL,
		position    INTEGER NOT NULL,
		content     TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_working_profile_pos ON working_items(profile_id, position);

	CREATE TABLE IF NOT EXISTS semantic_records (
		id          TEXT PRIMARY KEY,
		profile_id  TEXT NOT NULL,
		content     TEXT NOT NULL,
		vector      TEXT NOT NULL,
		keywords    TEXT,
		importance  REAL NOT NULL DEFAULT 1.0,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_semantic_profile_created ON semantic_records(profile_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS semantic_terms (
		record_id   TEXT NOT NULL REFERENCES semantic_records(id) ON DELETE CASCADE,
		term        TEXT NOT NULL,
		PRIMARY KEY (record_id, term)
	);
	CREATE INDEX IF NOT EXISTS idx_terms_term ON semantic_terms(term);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, v)
	}
	return t
}

type scanner interface {
	Scan(dest ...interface{}) error
}
