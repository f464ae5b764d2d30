// Package collection persists kept cards and the display-number counter
// in a local SQLite database.
package collection

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"cardforge-bot/internal/card"
)

const displayCounter = "card_display"

const schema = `
CREATE TABLE IF NOT EXISTS cards (
	id             TEXT PRIMARY KEY,
	display_number INTEGER NOT NULL,
	title          TEXT NOT NULL,
	description    TEXT NOT NULL,
	image_ref      TEXT NOT NULL,
	stats          TEXT NOT NULL,
	created_at     TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS counters (
	name  TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);
`

// Store wraps the database connection.
type Store struct {
	db *sql.DB
}

// Open creates (or opens) the database at path and ensures the schema
// exists. Use ":memory:" in tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=%d&_journal_mode=WAL&_synchronous=NORMAL", path, (5 * time.Second).Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty DB.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Add stores a finished card. Adding a card whose id already exists is
// a no-op.
func (s *Store) Add(ctx context.Context, c card.Card) error {
	stats, err := json.Marshal(c.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	const query = `
		INSERT INTO cards (id, display_number, title, description, image_ref, stats, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query,
		c.ID, c.DisplayNumber, c.Title, c.Description, c.ImageRef, string(stats), c.CreatedAt); err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

// Contains reports whether a card with the given id is kept.
func (s *Store) Contains(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM cards WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query card: %w", err)
	}
	return true, nil
}

// Remove deletes a card by id. Removing an unknown id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	return nil
}

// List returns all kept cards in display order.
func (s *Store) List(ctx context.Context) ([]card.Card, error) {
	const query = `
		SELECT id, display_number, title, description, image_ref, stats, created_at
		FROM cards ORDER BY display_number
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var cards []card.Card
	for rows.Next() {
		var c card.Card
		var stats string
		if err := rows.Scan(&c.ID, &c.DisplayNumber, &c.Title, &c.Description, &c.ImageRef, &stats, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		if err := json.Unmarshal([]byte(stats), &c.Stats); err != nil {
			return nil, fmt.Errorf("unmarshal stats for card %s: %w", c.ID, err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// NextDisplayNumber increments the persisted counter by exactly one and
// returns the new value. The read-increment-write runs in a single
// transaction so concurrent attempts cannot observe the same number.
func (s *Store) NextDisplayNumber(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin counter tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO counters (name, value) VALUES (?, 0) ON CONFLICT(name) DO NOTHING`, displayCounter); err != nil {
		return 0, fmt.Errorf("seed counter: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE counters SET value = value + 1 WHERE name = ?`, displayCounter); err != nil {
		return 0, fmt.Errorf("increment counter: %w", err)
	}

	var value int64
	if err := tx.QueryRowContext(ctx,
		`SELECT value FROM counters WHERE name = ?`, displayCounter).Scan(&value); err != nil {
		return 0, fmt.Errorf("read counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit counter tx: %w", err)
	}
	return value, nil
}
