package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a record is missing from storage.
var ErrNotFound = errors.New("storage: record not found")

// ErrExists is returned when adding a record whose ID is already stored.
var ErrExists = errors.New("storage: record already exists")

// DayLayout is the key format for per-day session indexes.
const DayLayout = "2006-01-02"

// Store represents the root storage interface.
type Store interface {
	Close() error
	Sessions() SessionStore
}

// SessionStore keeps recorded equipment sessions, indexed by the day
// they started on. Sessions of a day are returned in the order they
// were added.
type SessionStore interface {
	// Add stores a session. A missing ID is derived with SessionID, so
	// adding the same session twice fails with ErrExists.
	Add(ctx context.Context, session StoredSession) (StoredSession, error)
	Get(ctx context.Context, id string) (*StoredSession, error)
	ListByDay(ctx context.Context, day string) ([]StoredSession, error)
	ListDays(ctx context.Context) ([]string, error)
	DeleteDay(ctx context.Context, day string) (int, error)
}
