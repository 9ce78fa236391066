package sessionlog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goodtune/equtil/internal/equipment"
)

// LocalTimestampLayout is the zone-less timestamp form accepted alongside RFC 3339.
const LocalTimestampLayout = "2006-01-02T15:04:05"

// Record is the on-disk shape of one session in every log format.
type Record struct {
	Equipment string `yaml:"equipment" json:"equipment" msgpack:"equipment"`
	Category  string `yaml:"category" json:"category" msgpack:"category"`
	Start     string `yaml:"start" json:"start" msgpack:"start"`
	End       string `yaml:"end" json:"end" msgpack:"end"`
}

// Session converts the record into a validated session. Zone-less
// timestamps are interpreted in loc.
func (r Record) Session(loc *time.Location) (equipment.Session, error) {
	category, err := equipment.ParseCategory(r.Category)
	if err != nil {
		return equipment.Session{}, err
	}
	start, err := ParseTimestamp(r.Start, loc)
	if err != nil {
		return equipment.Session{}, fmt.Errorf("start: %w", err)
	}
	end, err := ParseTimestamp(r.End, loc)
	if err != nil {
		return equipment.Session{}, fmt.Errorf("end: %w", err)
	}
	return equipment.NewSession(strings.TrimSpace(r.Equipment), category, start, end)
}

// FromSession converts a session into its record form.
func FromSession(s equipment.Session) Record {
	return Record{
		Equipment: s.Equipment.Name,
		Category:  s.Equipment.Category.String(),
		Start:     s.Start.Format(time.RFC3339Nano),
		End:       s.End.Format(time.RFC3339Nano),
	}
}

// ParseTimestamp accepts RFC 3339 or LocalTimestampLayout.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	ts, err := time.ParseInLocation(LocalTimestampLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: want RFC 3339 or %s", s, LocalTimestampLayout)
	}
	return ts, nil
}

func toSessions(records []Record, loc *time.Location) ([]equipment.Session, error) {
	sessions := make([]equipment.Session, 0, len(records))
	for i, r := range records {
		s, err := r.Session(loc)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, stampIndex(err, i))
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func stampIndex(err error, i int) error {
	var invalid *equipment.InvalidSessionError
	if errors.As(err, &invalid) {
		invalid.Index = i
	}
	return err
}
