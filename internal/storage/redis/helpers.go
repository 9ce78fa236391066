package redis

import (
	"fmt"
	"time"

	"github.com/goodtune/equtil/internal/equipment"
	"github.com/goodtune/equtil/internal/storage"
)

const (
	keyPrefix     = "equtil:"
	sessionPrefix = keyPrefix + "session:"
	daysSet       = keyPrefix + "sessions:days"
)

func sessionKey(id string) string {
	return sessionPrefix + id
}

func dayKey(day string) string {
	return keyPrefix + "sessions:day:" + day
}

// parseStoredSession converts a Redis hash to StoredSession
func parseStoredSession(data map[string]string) (*storage.StoredSession, error) {
	if len(data) == 0 {
		return nil, storage.ErrNotFound
	}

	category, err := equipment.ParseCategory(data["category"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse category: %w", err)
	}

	start, err := time.Parse(time.RFC3339Nano, data["start"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse start: %w", err)
	}

	end, err := time.Parse(time.RFC3339Nano, data["end"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse end: %w", err)
	}

	recordedAt, err := time.Parse(time.RFC3339Nano, data["recorded_at"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse recorded_at: %w", err)
	}

	return &storage.StoredSession{
		ID: data["id"],
		Session: equipment.Session{
			Equipment: equipment.Equipment{Name: data["equipment"], Category: category},
			Start:     start,
			End:       end,
		},
		RecordedAt: recordedAt,
	}, nil
}
