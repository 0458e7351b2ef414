// Package enums provides type-safe enumeration types shared by the job store
// and the HTTP API layer.
//
// Status is the only enum: the lifecycle tag of a tracked job application.
// It travels as a plain string on the wire and in the database, and as a
// closed type everywhere else. ParseStatus is the single entry point for
// turning untrusted input into a Status; anything outside the four defined
// values is rejected there.
package enums

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Status represents the lifecycle state of a job application record.
// The zero value is not a valid status; obtain one from the exported
// constants or ParseStatus.
type Status struct {
	name  string
	value int
}

// all possible values of Status
var (
	StatusNew     = Status{name: "new", value: 0}
	StatusActive  = Status{name: "active", value: 1}
	StatusSuccess = Status{name: "success", value: 2}
	StatusFailed  = Status{name: "failed", value: 3}
)

// StatusValues returns all defined statuses in declaration order.
func StatusValues() []Status {
	return []Status{StatusNew, StatusActive, StatusSuccess, StatusFailed}
}

// ParseStatus converts a string to a Status. Matching is case-insensitive
// and ignores surrounding whitespace.
func ParseStatus(v string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "new":
		return StatusNew, nil
	case "active":
		return StatusActive, nil
	case "success":
		return StatusSuccess, nil
	case "failed":
		return StatusFailed, nil
	}
	return Status{}, fmt.Errorf("invalid status: %q", v)
}

// String returns the string representation of the status.
func (s Status) String() string { return s.name }

// MarshalText implements encoding.TextMarshaler for JSON responses.
func (s Status) MarshalText() ([]byte, error) {
	if s.name == "" {
		return nil, fmt.Errorf("cannot marshal zero-value status")
	}
	return []byte(s.name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value implements driver.Valuer for database storage.
func (s Status) Value() (driver.Value, error) {
	if s.name == "" {
		return nil, fmt.Errorf("cannot store zero-value status")
	}
	return s.name, nil
}

// Scan implements sql.Scanner for database retrieval.
func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseStatus(v)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	case []byte:
		parsed, err := ParseStatus(string(v))
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	}
	return fmt.Errorf("cannot scan %T into Status", src)
}
