package shift

import (
	"fmt"
	"time"
)

// Shift is a named block of scheduled work time.
type Shift struct {
	Name  string
	Begin time.Time
	End   time.Time
}

func (s Shift) IsZero() bool {
	return s.Name == "" && s.Begin.IsZero() && s.End.IsZero()
}

// Valid reports whether the shift has both bounds set and a positive duration.
func (s Shift) Valid() bool {
	return !s.Begin.IsZero() && !s.End.IsZero() && s.End.After(s.Begin)
}

func (s Shift) Duration() time.Duration {
	return s.End.Sub(s.Begin)
}

// Contains reports whether other lies entirely within s, bounds included.
func (s Shift) Contains(other Shift) bool {
	return !other.Begin.Before(s.Begin) && !other.End.After(s.End)
}

func (s Shift) String() string {
	return fmt.Sprintf("%s [%s - %s]", s.Name, s.Begin.Format(time.RFC3339), s.End.Format(time.RFC3339))
}

// ParseError is returned when a date or time span label cannot be read.
type ParseError struct {
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %q: %s", e.Text, e.Reason)
}
