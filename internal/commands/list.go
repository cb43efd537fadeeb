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
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `duties` (no args) and `duties list --list <list-name>`.
type ListCmd struct {
	listName string
	where    string
}

// SetListName sets the list name (for testing).
func (c *ListCmd) SetListName(name string) {
	c.listName = name
}

// SetWhere sets the filter expression (for testing).
func (c *ListCmd) SetWhere(src string) {
	c.where = src
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List duties" }
func (c *ListCmd) Usage() string {
	return "duties list [--list <list-name>] [--where <expr>] [<list-name>]"
}
func (c *ListCmd) NeedsBackend() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.StringVar(&c.where, "where", "", "")
	fs.StringVar(&c.where, "w", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	listName := c.listName
	if len(args) > 0 {
		if listName != "" {
			return fail(errOut, usageErrorf("cannot use both --list and a list name argument"))
		}
		listName = joinArgs(args)
	}

	filter, err := CompileFilter(c.where)
	if err != nil {
		return fail(errOut, err)
	}

	sess, code := openSession(ctx, cfg, svc, listName, errOut)
	if code != exitcode.Success {
		return code
	}

	n, err := renderDuties(out, sess, filter)
	if err != nil {
		return fail(errOut, err)
	}
	if n == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no duties found")
	}
	return exitcode.Success
}

// renderDuties prints the session's duties numbered by position. Duties the
// filter rejects are skipped but keep their numbers, so references stay valid.
// With a selection the list name is printed as a header; without one each
// duty shows the list it belongs to. Returns the number of duties printed.
func renderDuties(w io.Writer, sess *app.Session, filter *DutyFilter) (int, error) {
	duties := sess.Duties.Items()

	selected, hasSelection := sess.Selection.Current()
	if hasSelection {
		output.FormatListHeader(w, selected.Name)
	}

	names := listNames(sess)
	printed := 0
	for i, d := range duties {
		ok, err := filter.Match(d)
		if err != nil {
			return printed, usageErrorf("%v", err)
		}
		if !ok {
			continue
		}
		if hasSelection {
			output.FormatDuty(w, i+1, d)
		} else {
			listName := ""
			if d.ListID != nil {
				listName = names[*d.ListID]
			}
			output.FormatDutyInList(w, i+1, d, listName)
		}
		printed++
	}
	return printed, nil
}
