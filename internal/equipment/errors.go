package equipment

import (
	"errors"
	"fmt"
	"time"
)

// InvalidSessionError reports a session that violates Start < End or
// carries an unknown category.
type InvalidSessionError struct {
	// Index is the position of the session in its input, or -1 when unknown.
	Index   int
	Session Session
	Reason  string
}

func (e *InvalidSessionError) Error() string {
	name := e.Session.Equipment.Name
	if name == "" {
		name = "<unnamed>"
	}
	where := ""
	if e.Index >= 0 {
		where = fmt.Sprintf(" #%d", e.Index)
	}
	return fmt.Sprintf("invalid session%s (%s %s-%s): %s",
		where, name,
		e.Session.Start.Format(time.RFC3339),
		e.Session.End.Format(time.RFC3339),
		e.Reason)
}

// ValidateAll validates every session and stamps the index of the first
// offending one onto the returned error.
func ValidateAll(sessions []Session) error {
	for i, s := range sessions {
		if err := s.Validate(); err != nil {
			var invalid *InvalidSessionError
			if errors.As(err, &invalid) {
				invalid.Index = i
			}
			return err
		}
	}
	return nil
}
