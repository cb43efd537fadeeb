package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"duties/internal/config"
	"duties/internal/exitcode"
	"duties/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "duties help" }
func (c *HelpCmd) NeedsBackend() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  duties                                             List all duties
  duties list [common flags] [--list <list-name>] [--where <expr>]
  duties add [common flags] [--list <list-name>] <name...>
  duties create [common flags] [--list <list-name>] <name...>
  duties rename [common flags] [--list <list-name>] --to <new-name> <ref>
  duties advance [common flags] [--list <list-name>] <ref>
  duties rm [common flags] [--list <list-name>] <ref>
  duties lists [common flags]
  duties createlist [common flags] <list-name>
  duties addlist [common flags] <list-name>
  duties renamelist [common flags] --to <new-name> <list-name>
  duties rmlist [common flags] [--force] <list-name>
  duties shell [common flags] [--list <list-name>]
  duties serve [common flags] [--addr <host:port>] [--db <path>]
  duties login [common flags]
  duties logout [common flags]
  duties help
  duties version

<ref> is a number from the listing or id:<duty-id>.
<expr> filters on name, status, list_id and id, e.g. status != "done".
Statuses cycle pending -> in_progress -> done -> pending.

Common flags:
  --config <dir>      Override config directory
  --api-url <url>     REST API root (env DUTIES_API_URL)
  --backend <name>    rest or googletasks (env DUTIES_BACKEND)
  --quiet             Suppress informational output
  --debug             Print debug logs to stderr
`
