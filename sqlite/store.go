// Package sqlite implements mesa.SessionStore using SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mesabot/mesa"
	mesajson "github.com/mesabot/mesa/json"
)

// Interface compliance check.
var _ mesa.SessionStore = (*Store)(nil)

// Store implements [mesa.SessionStore] on a SQLite database. Each Put
// rewrites the session and its events in one transaction so a crash
// mid-turn never leaves a partial record.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dsn and runs migrations. For a
// plain file path the parent directory is created as well.
func New(dsn string) (*Store, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			summary TEXT NOT NULL DEFAULT '',
			restaurant_context TEXT NOT NULL DEFAULT '',
			reservation_id TEXT NOT NULL DEFAULT '',
			booked INTEGER NOT NULL DEFAULT 0,
			fields TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			session_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			data TEXT NOT NULL,
			PRIMARY KEY (session_id, position),
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
		)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get loads a session by conversation identifier.
func (s *Store) Get(ctx context.Context, id string) (*mesa.Session, error) {
	sess := &mesa.Session{ID: id}
	var fields []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT summary, restaurant_context, reservation_id, booked, fields, created_at, updated_at
		 FROM sessions WHERE session_id = ?`, id).
		Scan(&sess.Summary, &sess.RestaurantContext, &sess.ReservationID, &sess.Booked,
			&fields, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, mesa.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if err := json.Unmarshal(fields, &sess.Fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM events WHERE session_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var dtos []json.RawMessage
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		dtos = append(dtos, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	if len(dtos) > 0 {
		array, err := json.Marshal(dtos)
		if err != nil {
			return nil, fmt.Errorf("assemble events: %w", err)
		}
		sess.Messages, err = mesajson.UnmarshalEvents(array)
		if err != nil {
			return nil, fmt.Errorf("decode events: %w", err)
		}
	}
	return sess, nil
}

// Put writes the whole session atomically, replacing its event rows.
func (s *Store) Put(ctx context.Context, sess *mesa.Session) error {
	fields, err := json.Marshal(sess.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	encoded, err := mesajson.MarshalEvents(sess.Messages)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	var dtos []json.RawMessage
	if err := json.Unmarshal(encoded, &dtos); err != nil {
		return fmt.Errorf("split events: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (session_id, summary, restaurant_context, reservation_id, booked, fields, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
			summary = excluded.summary,
			restaurant_context = excluded.restaurant_context,
			reservation_id = excluded.reservation_id,
			booked = excluded.booked,
			fields = excluded.fields,
			updated_at = excluded.updated_at`,
		sess.ID, sess.Summary, sess.RestaurantContext, sess.ReservationID, sess.Booked,
		string(fields), sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE session_id = ?`, sess.ID); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}
	for i, data := range dtos {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO events (session_id, position, data) VALUES (?, ?, ?)`,
			sess.ID, i, string(data))
		if err != nil {
			return fmt.Errorf("insert event %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
