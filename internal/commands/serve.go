package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"duties/internal/config"
	"duties/internal/devserver"
	"duties/internal/exitcode"
	"duties/internal/service"
)

// DBFile is the default database filename inside the config directory.
const DBFile = "duties.db"

func init() {
	Register(&ServeCmd{})
}

// ServeCmd implements the serve command: a local duties API over SQLite.
type ServeCmd struct {
	addr   string
	dbPath string
}

func (c *ServeCmd) Name() string       { return "serve" }
func (c *ServeCmd) Aliases() []string  { return nil }
func (c *ServeCmd) Synopsis() string   { return "Run a local duties API server" }
func (c *ServeCmd) Usage() string      { return "duties serve [--addr <host:port>] [--db <path>]" }
func (c *ServeCmd) NeedsBackend() bool { return false }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", devserver.DefaultAddr, "")
	fs.StringVar(&c.dbPath, "db", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return fail(errOut, usageErrorf("unexpected argument: %s", args[0]))
	}

	path := c.dbPath
	if path == "" {
		if err := cfg.EnsureDir(); err != nil {
			fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
			return exitcode.AuthError
		}
		path = filepath.Join(cfg.Dir, DBFile)
	}

	db, err := devserver.Open(path)
	if err != nil {
		fmt.Fprintf(errOut, "error: open database: %v\n", err)
		return exitcode.BackendError
	}
	defer db.Close()

	if !cfg.Quiet {
		fmt.Fprintf(out, "serving http://%s%s (db: %s)\n", c.addr, devserver.Prefix, path)
	}

	srv := devserver.New(devserver.NewStore(db), cfg.Logger(errOut))
	if err := srv.ListenAndServe(ctx, c.addr); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
