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
	Register(&CreateListCmd{})
}

// CreateListCmd implements the createlist command.
type CreateListCmd struct{}

func (c *CreateListCmd) Name() string       { return "createlist" }
func (c *CreateListCmd) Aliases() []string  { return []string{"addlist"} }
func (c *CreateListCmd) Synopsis() string   { return "Create a list" }
func (c *CreateListCmd) Usage() string      { return "duties createlist <list-name>" }
func (c *CreateListCmd) NeedsBackend() bool { return true }

func (c *CreateListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CreateListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return fail(errOut, usageErrorf("list name required"))
	}

	sess, code := openSession(ctx, cfg, svc, "", errOut)
	if code != exitcode.Success {
		return code
	}

	if _, err := sess.CreateList(ctx, joinArgs(args)); err != nil {
		return fail(errOut, err)
	}

	reportOK(cfg, out)
	return exitcode.Success
}
