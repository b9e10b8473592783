/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

// Package puzzles is the SQLite catalog of puzzle definitions.
package puzzles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Seednode/crosswire/crossword"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound  = errors.New("puzzle not found")
	ErrEmptyName = errors.New("puzzle name must not be empty")
)

// Entry is one stored puzzle. Listings leave Crossword empty.
type Entry struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	Crossword *crossword.Puzzle `json:"crossword,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	DeletedAt *time.Time        `json:"deleted_at,omitempty"`
}

func (e Entry) Deleted() bool {
	return e.DeletedAt != nil
}

type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog at path. ":memory:" gives a private,
// throwaway catalog.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db}

	if err := s.createTables(); err != nil {
		db.Close()

		return nil, err
	}

	return s, nil
}

func (s *Store) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS puzzles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			crossword TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			deleted_at INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_puzzles_deleted_at ON puzzles(deleted_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Create stores a validated puzzle under name.
func (s *Store) Create(ctx context.Context, name string, p crossword.Puzzle) (Entry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Entry{}, ErrEmptyName
	}

	if err := p.Validate(); err != nil {
		return Entry{}, err
	}

	body, err := json.Marshal(p)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode puzzle: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Second)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO puzzles (name, crossword, created_at) VALUES (?, ?, ?)`,
		name, string(body), now.Unix())
	if err != nil {
		return Entry{}, fmt.Errorf("failed to insert puzzle: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read puzzle id: %w", err)
	}

	return Entry{ID: id, Name: name, Crossword: &p, CreatedAt: now}, nil
}

// Get returns a live puzzle with its definition.
func (s *Store) Get(ctx context.Context, id int64) (Entry, error) {
	entry, err := s.Lookup(ctx, id)
	if err != nil {
		return Entry{}, err
	}

	if entry.Deleted() {
		return Entry{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	return entry, nil
}

// Lookup returns a puzzle whether or not it has been soft-deleted.
func (s *Store) Lookup(ctx context.Context, id int64) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, crossword, created_at, deleted_at FROM puzzles WHERE id = ?`, id)

	var (
		entry   Entry
		body    string
		created int64
		deleted sql.NullInt64
	)

	err := row.Scan(&entry.ID, &entry.Name, &body, &created, &deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	if err != nil {
		return Entry{}, fmt.Errorf("failed to read puzzle %d: %w", id, err)
	}

	var p crossword.Puzzle
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return Entry{}, fmt.Errorf("failed to decode puzzle %d: %w", id, err)
	}

	entry.Crossword = &p
	entry.CreatedAt = time.Unix(created, 0).UTC()
	entry.DeletedAt = timeOrNil(deleted)

	return entry, nil
}

// List returns live puzzles, oldest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	return s.list(ctx, `deleted_at IS NULL`)
}

// ListDeleted returns soft-deleted puzzles, oldest first.
func (s *Store) ListDeleted(ctx context.Context) ([]Entry, error) {
	return s.list(ctx, `deleted_at IS NOT NULL`)
}

func (s *Store) list(ctx context.Context, where string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, deleted_at FROM puzzles WHERE `+where+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list puzzles: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}

	for rows.Next() {
		var (
			entry   Entry
			created int64
			deleted sql.NullInt64
		)

		if err := rows.Scan(&entry.ID, &entry.Name, &created, &deleted); err != nil {
			return nil, fmt.Errorf("failed to read puzzle row: %w", err)
		}

		entry.CreatedAt = time.Unix(created, 0).UTC()
		entry.DeletedAt = timeOrNil(deleted)

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// SoftDelete hides a live puzzle from the catalog.
func (s *Store) SoftDelete(ctx context.Context, id int64) error {
	return s.exec(ctx, id,
		`UPDATE puzzles SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC().Unix(), id)
}

// Restore returns a soft-deleted puzzle to the catalog.
func (s *Store) Restore(ctx context.Context, id int64) error {
	return s.exec(ctx, id,
		`UPDATE puzzles SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL`, id)
}

// Delete removes a puzzle permanently, live or not.
func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.exec(ctx, id, `DELETE FROM puzzles WHERE id = ?`, id)
}

// BatchRestore restores every soft-deleted puzzle.
func (s *Store) BatchRestore(ctx context.Context) (int64, error) {
	return s.batch(ctx, `UPDATE puzzles SET deleted_at = NULL WHERE deleted_at IS NOT NULL`)
}

// BatchDelete permanently removes every soft-deleted puzzle.
func (s *Store) BatchDelete(ctx context.Context) (int64, error) {
	return s.batch(ctx, `DELETE FROM puzzles WHERE deleted_at IS NOT NULL`)
}

// SeedDemo stores the demo puzzle if the catalog has never held anything.
func (s *Store) SeedDemo(ctx context.Context) (bool, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM puzzles`).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count puzzles: %w", err)
	}

	if count > 0 {
		return false, nil
	}

	if _, err := s.Create(ctx, "Demo", crossword.Demo()); err != nil {
		return false, err
	}

	return true, nil
}

func (s *Store) exec(ctx context.Context, id int64, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update puzzle %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update puzzle %d: %w", id, err)
	}

	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	return nil
}

func (s *Store) batch(ctx context.Context, query string) (int64, error) {
	res, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to update puzzles: %w", err)
	}

	return res.RowsAffected()
}

func timeOrNil(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}

	t := time.Unix(v.Int64, 0).UTC()

	return &t
}
