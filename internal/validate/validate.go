// Package validate checks user input before it is sent to a backend.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the longest accepted list or duty name, in characters.
const MaxNameLength = 255

// Kind classifies a validation failure.
type Kind string

const (
	KindRequired Kind = "required"
	KindTooLong  Kind = "too_long"
)

// Error is a local validation failure. It never reaches a backend.
type Error struct {
	Field string
	Kind  Kind
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindRequired:
		return fmt.Sprintf("%s is required", e.Field)
	case KindTooLong:
		return fmt.Sprintf("%s must be at most %d characters", e.Field, MaxNameLength)
	default:
		return fmt.Sprintf("%s is invalid", e.Field)
	}
}

// Name validates a list or duty name.
// Length is counted in characters of the name as given, before trimming.
func Name(name string) error {
	if strings.TrimSpace(name) == "" {
		return &Error{Field: "name", Kind: KindRequired}
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return &Error{Field: "name", Kind: KindTooLong}
	}
	return nil
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

// KindOf returns the validation kind of err, or "" if err is not a validation failure.
func KindOf(err error) Kind {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}
