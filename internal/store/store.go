// Package store persists analysis texts keyed by topic name.
//
// Two backends exist: a single JSON file suited to hand editing and version
// control, and a SQLite database. Both overwrite on Put (last write wins) and
// fingerprint every body so unchanged writes can be skipped.
package store

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/inful/mdfp"

	"github.com/noama-samreen/dasaf-cbgpt/internal/foundation/errors"
)

// ErrNotFound is the cause attached to lookups of topics with no stored text.
var ErrNotFound = stderrors.New("analysis not found")

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Record is one stored analysis.
type Record struct {
	Topic       string    `json:"-"`
	Body        string    `json:"body"`
	Fingerprint string    `json:"fingerprint"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store holds the latest analysis text per topic.
type Store interface {
	// Get returns the record for topic, or a not-found error wrapping ErrNotFound.
	Get(ctx context.Context, topic string) (Record, error)

	// Put stores body for topic. A body whose fingerprint matches the stored
	// one is not rewritten and the existing record is returned.
	Put(ctx context.Context, topic, body string) (Record, error)

	// Delete removes the analysis for topic. Deleting a missing topic is not an error.
	Delete(ctx context.Context, topic string) error

	// Snapshot returns every stored body keyed by topic.
	Snapshot(ctx context.Context) (map[string]string, error)

	// Close releases any resources held by the store.
	Close() error
}

// Open creates the store for backend at path.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendJSON:
		s, err := NewJSONStore(path)
		if err != nil {
			return nil, openError(err, BackendJSON, path)
		}
		return s, nil
	case BackendSQLite, "sqlite3":
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, openError(err, BackendSQLite, path)
		}
		return s, nil
	default:
		return nil, errors.ConfigError("unknown store backend").
			WithContext("backend", backend).
			Build()
	}
}

func openError(err error, backend, path string) error {
	return errors.WrapError(err, errors.CategoryStore, "failed to open analysis store").
		WithContext("backend", backend).
		WithContext(errors.ContextPath, path).
		Build()
}

// Fingerprint is the content fingerprint stored with each body. The topic
// name takes part so moving text between topics changes it.
func Fingerprint(topic, body string) string {
	return mdfp.CalculateFingerprintFromParts("topic: "+topic, body)
}

func storeError(err error, msg, topic string) error {
	b := errors.WrapError(err, errors.CategoryStore, msg)
	if topic != "" {
		b = b.ForTopic(topic)
	}
	return b.Build()
}

func notFound(topic string) error {
	return errors.NotFoundError("no analysis stored for topic").
		WithCause(ErrNotFound).
		ForTopic(topic).
		Build()
}

func newRecord(topic, body string, now time.Time) Record {
	return Record{
		Topic:       topic,
		Body:        body,
		Fingerprint: Fingerprint(topic, body),
		UpdatedAt:   now.UTC().Truncate(time.Second),
	}
}
