package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"duties/internal/app"
	"duties/internal/config"
	"duties/internal/exitcode"
	"duties/internal/output"
	"duties/internal/service"
)

func init() {
	Register(&AdvanceCmd{})
}

// AdvanceCmd implements the advance command.
// Moves a duty pending → in_progress → done → pending.
type AdvanceCmd struct {
	listName string
}

// SetListName sets the list name (for testing).
func (c *AdvanceCmd) SetListName(name string) {
	c.listName = name
}

func (c *AdvanceCmd) Name() string       { return "advance" }
func (c *AdvanceCmd) Aliases() []string  { return []string{"next"} }
func (c *AdvanceCmd) Synopsis() string   { return "Move a duty to its next status" }
func (c *AdvanceCmd) Usage() string      { return "duties advance [--list <list-name>] <ref>" }
func (c *AdvanceCmd) NeedsBackend() bool { return true }

func (c *AdvanceCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *AdvanceCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	var advanced service.Duty
	code := runOnDuty(ctx, cfg, svc, c.listName, args, io.Discard, errOut, func(ctx context.Context, sess *app.Session, duty service.Duty) error {
		var err error
		advanced, err = sess.AdvanceDuty(ctx, duty.ID)
		return err
	})
	if code == exitcode.Success && !cfg.Quiet {
		fmt.Fprintf(out, "%s %s\n", output.StatusGlyph(advanced.Status), advanced.Status)
	}
	return code
}

// runOnDuty opens a session, resolves the duty reference in args[0] against
// the listing, and applies fn to it. Extra arguments are rejected.
func runOnDuty(ctx context.Context, cfg *config.Config, svc service.Service, listName string, args []string, out, errOut io.Writer,
	fn func(context.Context, *app.Session, service.Duty) error) int {
	if len(args) == 0 {
		return fail(errOut, ErrDutyRefRequired)
	}
	ref, err := ParseDutyRef(args[0])
	if err != nil {
		return fail(errOut, err)
	}
	if len(args) > 1 {
		return fail(errOut, usageErrorf("unexpected argument: %s", args[1]))
	}

	sess, code := openSession(ctx, cfg, svc, listName, errOut)
	if code != exitcode.Success {
		return code
	}

	duty, err := ref.Resolve(sess.Duties.Items())
	if err != nil {
		return fail(errOut, err)
	}
	if err := fn(ctx, sess, duty); err != nil {
		return fail(errOut, err)
	}

	reportOK(cfg, out)
	return exitcode.Success
}
