package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"duties/internal/config"
	"duties/internal/exitcode"
	"duties/internal/output"
	"duties/internal/service"
	"duties/internal/store"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command.
type ListsCmd struct{}

func (c *ListsCmd) Name() string       { return "lists" }
func (c *ListsCmd) Aliases() []string  { return nil }
func (c *ListsCmd) Synopsis() string   { return "List all lists" }
func (c *ListsCmd) Usage() string      { return "duties lists [common flags]" }
func (c *ListsCmd) NeedsBackend() bool { return true }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	lists := store.NewListStore(svc, cfg.Logger(errOut))
	if err := lists.Fetch(ctx); err != nil {
		return fail(errOut, err)
	}

	items := lists.Items()
	if len(items) == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no lists found")
	}
	for _, list := range items {
		output.FormatListName(out, list, false)
	}
	return exitcode.Success
}
