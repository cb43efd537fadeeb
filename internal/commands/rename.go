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
	Register(&RenameCmd{})
}

// RenameCmd implements the rename command.
type RenameCmd struct {
	listName string
	to       string
}

// SetListName sets the list name (for testing).
func (c *RenameCmd) SetListName(name string) {
	c.listName = name
}

// SetTo sets the new name (for testing).
func (c *RenameCmd) SetTo(name string) {
	c.to = name
}

func (c *RenameCmd) Name() string       { return "rename" }
func (c *RenameCmd) Aliases() []string  { return nil }
func (c *RenameCmd) Synopsis() string   { return "Rename a duty" }
func (c *RenameCmd) Usage() string      { return "duties rename [--list <list-name>] --to <new-name> <ref>" }
func (c *RenameCmd) NeedsBackend() bool { return true }

func (c *RenameCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.StringVar(&c.to, "to", "", "")
}

func (c *RenameCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runOnDuty(ctx, cfg, svc, c.listName, args, out, errOut, func(ctx context.Context, sess *app.Session, duty service.Duty) error {
		_, err := sess.RenameDuty(ctx, duty.ID, c.to)
		return err
	})
}
