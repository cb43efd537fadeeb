package commands

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"duties/internal/service"
)

// IDPrefix marks a duty reference by ID rather than position.
const IDPrefix = "id:"

// DutyRef identifies a duty by its 1-based position in the current listing,
// or by ID.
type DutyRef struct {
	Pos int    // 0 when ID is set
	ID  string // "" when Pos is set
}

// RefError reports a missing, malformed, or unresolvable duty reference.
type RefError struct {
	Msg string
}

func (e *RefError) Error() string { return e.Msg }

// ErrDutyRefRequired indicates no duty reference was provided.
var ErrDutyRefRequired = &RefError{Msg: "duty reference required"}

// ParseDutyRef parses a duty reference.
//
// Parsing rules:
// 1. All digits → position in the listing (must be >= 1)
// 2. id:<id> → duty ID (must be non-empty)
// 3. Otherwise → error: invalid duty reference: <ref>
func ParseDutyRef(arg string) (DutyRef, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return DutyRef{}, ErrDutyRefRequired
	}

	if isAllDigits(arg) {
		num, err := strconv.Atoi(arg)
		if err != nil || num < 1 {
			return DutyRef{}, &RefError{Msg: fmt.Sprintf("duty number out of range: %s", arg)}
		}
		return DutyRef{Pos: num}, nil
	}

	if id, ok := strings.CutPrefix(arg, IDPrefix); ok && id != "" {
		return DutyRef{ID: id}, nil
	}

	return DutyRef{}, &RefError{Msg: fmt.Sprintf("invalid duty reference: %s", arg)}
}

// Resolve finds the referenced duty in duties, the listing the user saw.
func (r DutyRef) Resolve(duties []service.Duty) (service.Duty, error) {
	if r.ID != "" {
		for _, d := range duties {
			if d.ID == r.ID {
				return d, nil
			}
		}
		return service.Duty{}, &RefError{Msg: fmt.Sprintf("duty not found: %s", r.ID)}
	}
	if r.Pos < 1 || r.Pos > len(duties) {
		return service.Duty{}, &RefError{Msg: fmt.Sprintf("duty number out of range: %d", r.Pos)}
	}
	return duties[r.Pos-1], nil
}

// String returns the reference as the user would type it.
func (r DutyRef) String() string {
	if r.ID != "" {
		return IDPrefix + r.ID
	}
	return strconv.Itoa(r.Pos)
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// resolveArgs parses the first argument as a duty reference and resolves it
// against duties. The remaining arguments are returned.
func resolveArgs(args []string, duties []service.Duty) (service.Duty, []string, error) {
	if len(args) == 0 {
		return service.Duty{}, nil, ErrDutyRefRequired
	}
	ref, err := ParseDutyRef(args[0])
	if err != nil {
		return service.Duty{}, nil, err
	}
	duty, err := ref.Resolve(duties)
	if err != nil {
		return service.Duty{}, nil, err
	}
	return duty, args[1:], nil
}
