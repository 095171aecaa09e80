package domain

import (
	"fmt"
	"strings"
)

// Side identifies one of the two teams in a game. The zero value is Away.
//
// Side is an immutable value: flipping it always produces a new value through
// Negate, so a copy can never be changed through an alias.
type Side bool

const (
	// Home is the home team.
	Home Side = true
	// Away is the away team.
	Away Side = false
)

// ParseSide converts a side name ("home"/"away", case-insensitive) into a Side.
func ParseSide(name string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "home":
		return Home, nil
	case "away":
		return Away, nil
	default:
		return Away, fmt.Errorf("unknown side %q", name)
	}
}

// Negate returns the opposite side.
func (s Side) Negate() Side {
	return !s
}

// IsHome reports whether s is the home side.
func (s Side) IsHome() bool {
	return bool(s)
}

// String returns "home" or "away".
func (s Side) String() string {
	if s {
		return "home"
	}
	return "away"
}

// Is compares s with a raw boolean (true meaning home), a side name or another Side.
// Any other type never matches.
func (s Side) Is(v any) bool {
	switch other := v.(type) {
	case Side:
		return s == other
	case bool:
		return bool(s) == other
	case string:
		parsed, err := ParseSide(other)
		return err == nil && parsed == s
	default:
		return false
	}
}

// MarshalText encodes the side by name.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a side name.
func (s *Side) UnmarshalText(text []byte) error {
	parsed, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
