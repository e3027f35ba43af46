// Package flags holds the hidden and favorite membership state for the
// catalog: a SQLite-backed record store plus the in-memory cache the engine
// consults on every render.
package flags

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// ItemType scopes a flag record to a channel or a whole group.
type ItemType string

const (
	ItemChannel ItemType = "channel"
	ItemGroup   ItemType = "group"
)

// Record is one flag membership fact.
type Record struct {
	SourceID string
	Type     ItemType
	ItemID   string // channel id, or group title for ItemGroup
}

// Key returns the composite signature used for O(1) membership tests.
func (r Record) Key() string {
	return r.SourceID + "/" + string(r.Type) + "/" + r.ItemID
}

// Store persists flag records in SQLite. NOT an interface - concrete type.
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates a Store at the given database path, creating tables as
// needed. Uses WAL mode for file-based databases.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so every pooled connection sees the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS hidden_items (
		source_id TEXT NOT NULL,
		item_type TEXT NOT NULL,
		item_id   TEXT NOT NULL,
		PRIMARY KEY (source_id, item_type, item_id)
	);

	CREATE TABLE IF NOT EXISTS favorites (
		source_id TEXT NOT NULL,
		item_type TEXT NOT NULL,
		item_id   TEXT NOT NULL,
		PRIMARY KEY (source_id, item_type, item_id)
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// ListHidden returns all hidden records.
func (s *Store) ListHidden() ([]Record, error) {
	return s.list("hidden_items")
}

// ListFavorites returns all favorite records.
func (s *Store) ListFavorites() ([]Record, error) {
	return s.list("favorites")
}

// AddHidden inserts a hidden record. Idempotent via INSERT OR IGNORE.
func (s *Store) AddHidden(r Record) error {
	return s.add("hidden_items", r)
}

// RemoveHidden deletes a hidden record. Removing an absent record is not
// an error.
func (s *Store) RemoveHidden(r Record) error {
	return s.remove("hidden_items", r)
}

// AddFavorite inserts a favorite record. Idempotent via INSERT OR IGNORE.
func (s *Store) AddFavorite(r Record) error {
	return s.add("favorites", r)
}

// RemoveFavorite deletes a favorite record.
func (s *Store) RemoveFavorite(r Record) error {
	return s.remove("favorites", r)
}

func (s *Store) list(table string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT source_id, item_type, item_id FROM " + table + " ORDER BY source_id, item_type, item_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var t string
		if err := rows.Scan(&r.SourceID, &t, &r.ItemID); err != nil {
			return nil, err
		}
		r.Type = ItemType(t)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) add(table string, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO "+table+" (source_id, item_type, item_id) VALUES (?, ?, ?)",
		r.SourceID, string(r.Type), r.ItemID)
	return err
}

func (s *Store) remove(table string, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"DELETE FROM "+table+" WHERE source_id = ? AND item_type = ? AND item_id = ?",
		r.SourceID, string(r.Type), r.ItemID)
	return err
}
