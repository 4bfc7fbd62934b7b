package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens or creates the database at dbPath.
// Use ":memory:" for a throwaway in-process database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create store directory %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		topic TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the record for topic.
func (s *SQLiteStore) Get(ctx context.Context, topic string) (Record, error) {
	rec := Record{Topic: topic}
	var updated int64
	err := s.db.QueryRowContext(ctx,
		"SELECT body, fingerprint, updated_at FROM analyses WHERE topic = ?", topic,
	).Scan(&rec.Body, &rec.Fingerprint, &updated)
	if stderrors.Is(err, sql.ErrNoRows) {
		return Record{}, notFound(topic)
	}
	if err != nil {
		return Record{}, storeError(err, "failed to read analysis", topic)
	}
	rec.UpdatedAt = time.Unix(updated, 0).UTC()
	return rec, nil
}

// Put upserts body for topic.
func (s *SQLiteStore) Put(ctx context.Context, topic, body string) (Record, error) {
	rec := newRecord(topic, body, s.now())
	if prev, err := s.Get(ctx, topic); err == nil && prev.Fingerprint == rec.Fingerprint {
		return prev, nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (topic, body, fingerprint, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(topic) DO UPDATE SET
			body = excluded.body,
			fingerprint = excluded.fingerprint,
			updated_at = excluded.updated_at`,
		rec.Topic, rec.Body, rec.Fingerprint, rec.UpdatedAt.Unix(),
	)
	if err != nil {
		return Record{}, storeError(err, "failed to write analysis", topic)
	}
	return rec, nil
}

// Delete removes topic.
func (s *SQLiteStore) Delete(ctx context.Context, topic string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM analyses WHERE topic = ?", topic); err != nil {
		return storeError(err, "failed to delete analysis", topic)
	}
	return nil
}

// Snapshot returns all bodies.
func (s *SQLiteStore) Snapshot(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT topic, body FROM analyses ORDER BY topic")
	if err != nil {
		return nil, storeError(err, "failed to list analyses", "")
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]string)
	for rows.Next() {
		var topic, body string
		if err := rows.Scan(&topic, &body); err != nil {
			return nil, storeError(err, "failed to list analyses", "")
		}
		out[topic] = body
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err, "failed to list analyses", "")
	}
	return out, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
