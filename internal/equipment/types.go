package equipment

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownCategory is returned when a category name is not recognised.
var ErrUnknownCategory = errors.New("equipment: unknown category")

// Category classifies a piece of equipment.
type Category string

const (
	CategoryTreadmill  Category = "TREADMILL"
	CategoryElliptical Category = "ELLIPTICAL"
)

// Categories returns every valid category.
func Categories() []Category {
	return []Category{CategoryTreadmill, CategoryElliptical}
}

// ParseCategory normalizes a category name to uppercase and validates it.
func ParseCategory(s string) (Category, error) {
	normalized := Category(strings.ToUpper(strings.TrimSpace(s)))
	switch normalized {
	case CategoryTreadmill, CategoryElliptical:
		return normalized, nil
	default:
		return "", fmt.Errorf("%w: %q (must be TREADMILL or ELLIPTICAL)", ErrUnknownCategory, s)
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryTreadmill, CategoryElliptical:
		return true
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, accepting any case.
func (c *Category) UnmarshalText(data []byte) error {
	parsed, err := ParseCategory(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Equipment is a single named machine.
type Equipment struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// Session is one machine's use interval. Start is inclusive, End exclusive.
type Session struct {
	Equipment Equipment `json:"equipment"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// NewSession builds a session and validates it.
func NewSession(name string, category Category, start, end time.Time) (Session, error) {
	s := Session{
		Equipment: Equipment{Name: name, Category: category},
		Start:     start,
		End:       end,
	}
	if err := s.Validate(); err != nil {
		return Session{}, err
	}
	return s, nil
}

// Duration returns the length of the session.
func (s Session) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Validate checks the session invariants.
func (s Session) Validate() error {
	if !s.Equipment.Category.Valid() {
		return &InvalidSessionError{Index: -1, Session: s, Reason: fmt.Sprintf("invalid category %q", s.Equipment.Category)}
	}
	if !s.End.After(s.Start) {
		return &InvalidSessionError{Index: -1, Session: s, Reason: "end is not after start"}
	}
	return nil
}
