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
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	listName string
}

// SetListName sets the list name (for testing).
func (c *AddCmd) SetListName(name string) {
	c.listName = name
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a duty" }
func (c *AddCmd) Usage() string      { return "duties add [--list <list-name>] <name...>" }
func (c *AddCmd) NeedsBackend() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return fail(errOut, usageErrorf("name required"))
	}

	sess, code := openSession(ctx, cfg, svc, c.listName, errOut)
	if code != exitcode.Success {
		return code
	}

	if _, err := sess.CreateDuty(ctx, joinArgs(args)); err != nil {
		return fail(errOut, err)
	}

	reportOK(cfg, out)
	return exitcode.Success
}
