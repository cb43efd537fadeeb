package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"duties/internal/app"
	"duties/internal/config"
	"duties/internal/exitcode"
	"duties/internal/service"
	"duties/internal/store"
	"duties/internal/validate"
)

// openSession loads lists and duties, selecting listName when it is set.
// On failure the error is already reported and the exit code is returned.
func openSession(ctx context.Context, cfg *config.Config, svc service.Service, listName string, errOut io.Writer) (*app.Session, int) {
	sess := app.New(svc, cfg.Logger(errOut))
	if err := sess.Start(ctx); err != nil {
		return nil, fail(errOut, err)
	}
	if listName = strings.TrimSpace(listName); listName != "" {
		if _, err := sess.SelectList(ctx, listName); err != nil {
			return nil, fail(errOut, err)
		}
	}
	return sess, exitcode.Success
}

// fail prints err and maps it to an exit code.
func fail(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %s\n", describe(err))
	return classify(err)
}

// describe renders err for the user. Backend failures are prefixed.
func describe(err error) string {
	ne, ok := service.AsNetworkError(err)
	if ok && !ne.Unauthorized() && !ne.NotFound() {
		return "backend error: " + err.Error()
	}
	return err.Error()
}

// classify maps an error to an exit code.
func classify(err error) int {
	var (
		refErr   *RefError
		usageErr *UsageError
	)
	switch {
	case err == nil:
		return exitcode.Success
	case validate.IsValidation(err),
		errors.As(err, &refErr),
		errors.As(err, &usageErr),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrAmbiguous),
		errors.Is(err, store.ErrInvalidStatus):
		return exitcode.UserError
	case service.IsAuthError(err):
		return exitcode.AuthError
	}
	if ne, ok := service.AsNetworkError(err); ok && ne.NotFound() {
		return exitcode.UserError
	}
	return exitcode.BackendError
}

// UsageError reports a malformed invocation.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

func usageErrorf(format string, args ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// listNames maps list IDs to names.
func listNames(sess *app.Session) map[string]string {
	names := make(map[string]string)
	for _, l := range sess.Lists.Items() {
		names[l.ID] = l.Name
	}
	return names
}

// reportOK prints "ok" unless quiet.
func reportOK(cfg *config.Config, out io.Writer) {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
}

// joinArgs joins positional arguments into one name.
func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
