package commands

import (
	"context"
	"flag"
	"io"

	"duties/internal/config"
	"duties/internal/exitcode"
	"duties/internal/service"
)

func init() {
	Register(&RmListCmd{})
}

// RmListCmd implements the rmlist command.
type RmListCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *RmListCmd) SetForce(force bool) {
	c.force = force
}

func (c *RmListCmd) Name() string       { return "rmlist" }
func (c *RmListCmd) Aliases() []string  { return nil }
func (c *RmListCmd) Synopsis() string   { return "Delete a list and its duties" }
func (c *RmListCmd) Usage() string      { return "duties rmlist [--force] <list-name>" }
func (c *RmListCmd) NeedsBackend() bool { return true }

func (c *RmListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *RmListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return fail(errOut, usageErrorf("list name required"))
	}

	// Selecting the list loads its duties for the emptiness check
	sess, code := openSession(ctx, cfg, svc, joinArgs(args), errOut)
	if code != exitcode.Success {
		return code
	}
	list, _ := sess.Selection.Current()

	if !c.force && len(sess.Duties.Items()) > 0 {
		return fail(errOut, usageErrorf("list not empty (use --force)"))
	}

	if err := sess.DeleteList(ctx, list.ID); err != nil {
		return fail(errOut, err)
	}

	reportOK(cfg, out)
	return exitcode.Success
}
