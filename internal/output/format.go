// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"duties/internal/service"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"

	// NoListTitle heads duties that belong to no list.
	NoListTitle = "(no list)"
)

// StatusGlyph returns the checkbox shown for a status.
func StatusGlyph(s service.Status) string {
	switch s {
	case service.StatusInProgress:
		return "[~]"
	case service.StatusDone:
		return "[x]"
	default:
		return "[ ]"
	}
}

// FormatDuty formats a numbered duty line.
// Format: "{N:>4}  {GLYPH} {NAME}\n"
func FormatDuty(w io.Writer, num int, duty service.Duty) {
	fmt.Fprintf(w, "%4d  %s %s\n", num, StatusGlyph(duty.Status), normalizeTitle(duty.Name))
}

// FormatDutyInList formats a numbered duty line followed by its list name.
func FormatDutyInList(w io.Writer, num int, duty service.Duty, listName string) {
	if listName == "" {
		FormatDuty(w, num, duty)
		return
	}
	fmt.Fprintf(w, "%4d  %s %s  @%s\n", num, StatusGlyph(duty.Status), normalizeTitle(duty.Name), normalizeTitle(listName))
}

// FormatListHeader formats a list section header.
func FormatListHeader(w io.Writer, name string) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, normalizeTitle(name))
	fmt.Fprintln(w, ListSeparator)
}

// FormatListName formats a list name for the lists command.
// The active list is marked with an asterisk.
func FormatListName(w io.Writer, list service.List, active bool) {
	marker := " "
	if active {
		marker = "*"
	}
	fmt.Fprintf(w, "%s %s\n", marker, normalizeTitle(list.Name))
}

// normalizeTitle normalizes a name for display.
// - Empty or whitespace-only names become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
