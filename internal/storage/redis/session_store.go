package redis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goodtune/equtil/internal/storage"
	"github.com/redis/go-redis/v9"
)

type sessionStore struct {
	client *redis.Client
	now    func() time.Time
}

// Add validates and stores a session, deriving its ID from its content
// when missing
func (s *sessionStore) Add(ctx context.Context, stored storage.StoredSession) (storage.StoredSession, error) {
	if err := stored.Session.Validate(); err != nil {
		return storage.StoredSession{}, err
	}
	if stored.ID == "" {
		stored.ID = storage.SessionID(stored.Session)
	}
	if stored.RecordedAt.IsZero() {
		stored.RecordedAt = s.now().UTC()
	}

	script := redis.NewScript(addSessionScript)

	day := stored.Day()
	keys := []string{sessionKey(stored.ID), dayKey(day), daysSet}
	args := []interface{}{
		stored.ID,
		stored.Session.Equipment.Name,
		stored.Session.Equipment.Category.String(),
		stored.Session.Start.Format(time.RFC3339Nano),
		stored.Session.End.Format(time.RFC3339Nano),
		stored.RecordedAt.Format(time.RFC3339Nano),
		day,
	}

	if err := script.Run(ctx, s.client, keys, args...).Err(); err != nil {
		if strings.Contains(err.Error(), "session exists") {
			return storage.StoredSession{}, fmt.Errorf("session %s: %w", stored.ID, storage.ErrExists)
		}
		return storage.StoredSession{}, fmt.Errorf("failed to add session: %w", err)
	}
	return stored, nil
}

// Get retrieves a session by ID
func (s *sessionStore) Get(ctx context.Context, id string) (*storage.StoredSession, error) {
	data, err := s.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, storage.ErrNotFound
	}

	return parseStoredSession(data)
}

// ListByDay returns the sessions of a day in insertion order
func (s *sessionStore) ListByDay(ctx context.Context, day string) ([]storage.StoredSession, error) {
	ids, err := s.client.LRange(ctx, dayKey(day), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []storage.StoredSession{}, nil
	}

	// Use pipeline for efficient batch retrieval
	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))

	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, sessionKey(id))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	sessions := make([]storage.StoredSession, 0, len(ids))
	for i, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			// Hash removed behind the index; skip the dangling id.
			continue
		}

		session, err := parseStoredSession(data)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", ids[i], err)
		}
		sessions = append(sessions, *session)
	}

	return sessions, nil
}

// ListDays returns every day that has sessions, oldest first
func (s *sessionStore) ListDays(ctx context.Context) ([]string, error) {
	days, err := s.client.SMembers(ctx, daysSet).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(days)
	return days, nil
}

// DeleteDay removes every session of a day
func (s *sessionStore) DeleteDay(ctx context.Context, day string) (int, error) {
	script := redis.NewScript(deleteDayScript)

	deleted, err := script.Run(ctx, s.client, []string{dayKey(day), daysSet}, sessionPrefix, day).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to delete day %s: %w", day, err)
	}
	return deleted, nil
}
