package commands

import (
	"context"
	"flag"
	"io"

	"duties/internal/app"
	"duties/internal/config"
	"duties/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	listName string
}

// SetListName sets the list name (for testing).
func (c *RmCmd) SetListName(name string) {
	c.listName = name
}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a duty" }
func (c *RmCmd) Usage() string      { return "duties rm [--list <list-name>] <ref>" }
func (c *RmCmd) NeedsBackend() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runOnDuty(ctx, cfg, svc, c.listName, args, out, errOut, func(ctx context.Context, sess *app.Session, duty service.Duty) error {
		return sess.DeleteDuty(ctx, duty.ID)
	})
}
