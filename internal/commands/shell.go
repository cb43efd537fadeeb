package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"duties/internal/app"
	"duties/internal/config"
	"duties/internal/exitcode"
	"duties/internal/output"
	"duties/internal/service"
)

func init() {
	Register(&ShellCmd{})
}

// ShellCmd implements the shell command: a line-oriented session that keeps
// the active list between commands.
type ShellCmd struct {
	listName string

	// In is read for commands. Defaults to os.Stdin.
	In io.Reader
}

// SetListName sets the initially selected list (for testing).
func (c *ShellCmd) SetListName(name string) {
	c.listName = name
}

func (c *ShellCmd) Name() string       { return "shell" }
func (c *ShellCmd) Aliases() []string  { return nil }
func (c *ShellCmd) Synopsis() string   { return "Start an interactive session" }
func (c *ShellCmd) Usage() string      { return "duties shell [--list <list-name>]" }
func (c *ShellCmd) NeedsBackend() bool { return true }

func (c *ShellCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *ShellCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return fail(errOut, usageErrorf("unexpected argument: %s", args[0]))
	}

	sess, code := openSession(ctx, cfg, svc, c.listName, errOut)
	if code != exitcode.Success {
		return code
	}

	in := c.In
	if in == nil {
		in = os.Stdin
	}

	sh := &shell{sess: sess, cfg: cfg, out: out, errOut: errOut}
	scanner := bufio.NewScanner(in)
	for {
		sh.prompt()
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if quit := sh.exec(ctx, scanner.Text()); quit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "error: read input: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}

type shell struct {
	sess   *app.Session
	cfg    *config.Config
	out    io.Writer
	errOut io.Writer
}

func (sh *shell) prompt() {
	if sh.cfg.Quiet {
		return
	}
	if list, ok := sh.sess.Selection.Current(); ok {
		fmt.Fprintf(sh.out, "duties:%s> ", list.Name)
		return
	}
	fmt.Fprint(sh.out, "duties> ")
}

// exec runs one line. Returns true when the session should end.
func (sh *shell) exec(ctx context.Context, line string) bool {
	verb, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	var err error
	switch verb {
	case "":
		return false
	case "quit", "exit":
		return true
	case "help", "?":
		fmt.Fprint(sh.out, shellHelp)
	case "lists":
		sh.lists()
	case "ls":
		err = sh.ls(rest)
	case "use":
		err = sh.use(ctx, rest)
	case "clear":
		err = sh.sess.ClearSelection(ctx)
		if err == nil {
			err = sh.ls("")
		}
	case "add":
		err = sh.add(ctx, rest)
	case "rename":
		err = sh.rename(ctx, rest)
	case "advance", "next":
		err = sh.advance(ctx, rest)
	case "rm":
		err = sh.rm(ctx, rest)
	case "newlist":
		_, err = sh.sess.CreateList(ctx, rest)
		if err == nil {
			err = sh.ls("")
		}
	case "renamelist":
		err = sh.renameList(ctx, rest)
	case "rmlist":
		err = sh.rmList(ctx, rest)
	default:
		err = usageErrorf("unknown command: %s (try help)", verb)
	}

	if err != nil {
		fmt.Fprintf(sh.errOut, "error: %s\n", describe(err))
	}
	return false
}

func (sh *shell) lists() {
	items := sh.sess.Lists.Items()
	if len(items) == 0 {
		fmt.Fprintln(sh.out, "no lists found")
		return
	}
	for _, list := range items {
		output.FormatListName(sh.out, list, sh.sess.Selection.Is(list.ID))
	}
}

func (sh *shell) ls(where string) error {
	filter, err := CompileFilter(where)
	if err != nil {
		return err
	}
	n, err := renderDuties(sh.out, sh.sess, filter)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(sh.out, "no duties found")
	}
	return nil
}

func (sh *shell) use(ctx context.Context, name string) error {
	if name == "" {
		return usageErrorf("list name required")
	}
	if _, err := sh.sess.SelectList(ctx, name); err != nil {
		return err
	}
	return sh.ls("")
}

func (sh *shell) add(ctx context.Context, name string) error {
	duty, err := sh.sess.CreateDuty(ctx, name)
	if err != nil {
		return err
	}
	output.FormatDuty(sh.out, 1, duty)
	return nil
}

// refAndRest splits "<ref> <text...>" and resolves the reference.
func (sh *shell) refAndRest(s string) (service.Duty, string, error) {
	refArg, rest, _ := strings.Cut(s, " ")
	duty, _, err := resolveArgs([]string{refArg}, sh.sess.Duties.Items())
	return duty, strings.TrimSpace(rest), err
}

func (sh *shell) rename(ctx context.Context, s string) error {
	duty, name, err := sh.refAndRest(s)
	if err != nil {
		return err
	}
	_, err = sh.sess.RenameDuty(ctx, duty.ID, name)
	return err
}

func (sh *shell) advance(ctx context.Context, s string) error {
	duty, _, err := sh.refAndRest(s)
	if err != nil {
		return err
	}
	advanced, err := sh.sess.AdvanceDuty(ctx, duty.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "%s %s\n", output.StatusGlyph(advanced.Status), normalizeName(advanced.Name))
	return nil
}

func (sh *shell) rm(ctx context.Context, s string) error {
	duty, _, err := sh.refAndRest(s)
	if err != nil {
		return err
	}
	return sh.sess.DeleteDuty(ctx, duty.ID)
}

// targetList is the named list, or the active one when name is empty.
func (sh *shell) targetList(name string) (service.List, error) {
	if name != "" {
		return sh.sess.Lists.Resolve(name)
	}
	list, ok := sh.sess.Selection.Current()
	if !ok {
		return service.List{}, usageErrorf("no list selected")
	}
	return list, nil
}

func (sh *shell) renameList(ctx context.Context, name string) error {
	list, err := sh.targetList("")
	if err != nil {
		return err
	}
	_, err = sh.sess.RenameList(ctx, list.ID, name)
	return err
}

func (sh *shell) rmList(ctx context.Context, name string) error {
	list, err := sh.targetList(name)
	if err != nil {
		return err
	}
	return sh.sess.DeleteList(ctx, list.ID)
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

const shellHelp = `Commands:
  ls [<expr>]          List duties, optionally filtered
  lists                List all lists (* marks the active one)
  use <list-name>      Make a list active
  clear                Show duties from every list
  add <name...>        Create a duty in the active list
  rename <ref> <name>  Rename a duty
  advance <ref>        Move a duty to its next status
  rm <ref>             Delete a duty
  newlist <name...>    Create a list and make it active
  renamelist <name>    Rename the active list
  rmlist [<list-name>] Delete a list (default: the active one)
  help                 Show this help
  quit                 Leave the shell

<ref> is a number from the listing or id:<duty-id>.
`
