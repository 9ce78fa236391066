package storage

import (
	"time"

	"github.com/goodtune/equtil/internal/equipment"
	"github.com/google/uuid"
)

// sessionNamespace scopes name-based session IDs.
var sessionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/goodtune/equtil/session"))

// StoredSession is an equipment session with its storage identity.
type StoredSession struct {
	ID         string            `json:"id"`
	Session    equipment.Session `json:"session"`
	RecordedAt time.Time         `json:"recorded_at"`
}

// Day returns the index day of the session.
func (s StoredSession) Day() string {
	return s.Session.Start.Format(DayLayout)
}

// Sessions strips storage identity, preserving order.
func Sessions(stored []StoredSession) []equipment.Session {
	sessions := make([]equipment.Session, 0, len(stored))
	for _, s := range stored {
		sessions = append(sessions, s.Session)
	}
	return sessions
}

// SessionID derives a stable ID from the session's equipment, category
// and times. Equal instants in different zones give the same ID.
func SessionID(s equipment.Session) string {
	name := s.Equipment.Name + "\x00" +
		s.Equipment.Category.String() + "\x00" +
		s.Start.UTC().Format(time.RFC3339Nano) + "\x00" +
		s.End.UTC().Format(time.RFC3339Nano)
	return uuid.NewSHA1(sessionNamespace, []byte(name)).String()
}
