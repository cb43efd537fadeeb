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
	Register(&RenameListCmd{})
}

// RenameListCmd implements the renamelist command.
type RenameListCmd struct {
	to string
}

// SetTo sets the new name (for testing).
func (c *RenameListCmd) SetTo(name string) {
	c.to = name
}

func (c *RenameListCmd) Name() string       { return "renamelist" }
func (c *RenameListCmd) Aliases() []string  { return nil }
func (c *RenameListCmd) Synopsis() string   { return "Rename a list" }
func (c *RenameListCmd) Usage() string      { return "duties renamelist --to <new-name> <list-name>" }
func (c *RenameListCmd) NeedsBackend() bool { return true }

func (c *RenameListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.to, "to", "", "")
}

func (c *RenameListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return fail(errOut, usageErrorf("list name required"))
	}

	sess, code := openSession(ctx, cfg, svc, "", errOut)
	if code != exitcode.Success {
		return code
	}

	list, err := sess.Lists.Resolve(joinArgs(args))
	if err != nil {
		return fail(errOut, err)
	}
	if _, err := sess.RenameList(ctx, list.ID, c.to); err != nil {
		return fail(errOut, err)
	}

	reportOK(cfg, out)
	return exitcode.Success
}
