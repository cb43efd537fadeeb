// Package exitcode defines exit codes for the CLI.
package exitcode

// Exit codes shared by every command.
const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, invalid name, unknown list or duty).
	UserError = 1

	// AuthError indicates an auth or configuration error.
	AuthError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3
)
