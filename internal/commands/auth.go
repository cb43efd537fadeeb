package commands

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"duties/internal/backend/googletasks"
	"duties/internal/config"
	"duties/internal/exitcode"
	"duties/internal/service"
)

const (
	callbackTimeout  = 5 * time.Minute
	exchangeTimeout  = 30 * time.Second
	callbackBasePort = 8085
	callbackPorts    = 5
)

var errNoRefreshToken = errors.New("no refresh token")

func init() {
	Register(&LoginCmd{})
	Register(&LogoutCmd{})
}

// Connector builds the Google Tasks backend from the stored credentials.
type Connector func(ctx context.Context, cfg *config.Config) (service.Service, error)

func connectGoogleTasks(ctx context.Context, cfg *config.Config) (service.Service, error) {
	c, err := googletasks.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// LoginCmd authorizes the googletasks backend and checks that its lists are
// reachable with the resulting token.
type LoginCmd struct {
	// Connect defaults to googletasks.New.
	Connect Connector
}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Authorize the Google Tasks backend" }
func (c *LoginCmd) Usage() string      { return "duties login [common flags]" }
func (c *LoginCmd) NeedsBackend() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: oauth_client.json not found in %s\n\n", cfg.Dir)
		fmt.Fprintf(errOut, setupHint, cfg.OAuthClientPath())
		return exitcode.AuthError
	}

	if cfg.HasToken() {
		n, err := c.visibleLists(ctx, cfg)
		if err == nil {
			if !cfg.Quiet {
				fmt.Fprintf(out, "already logged in (%s)\n", countLists(n))
			}
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "stored token unusable: %s\n", describe(err))
	}

	oauthConfig, err := googletasks.OAuthConfig(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	token, err := authorize(ctx, oauthConfig, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if err := saveToken(cfg.TokenPath(), token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}

	n, err := c.visibleLists(ctx, cfg)
	if err != nil {
		return fail(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "ok (%s)\n", countLists(n))
		if cfg.Backend != config.BackendGoogleTasks {
			fmt.Fprintf(errOut, "note: set %s=%s or pass --backend %s to use Google Tasks\n",
				config.EnvBackend, config.BackendGoogleTasks, config.BackendGoogleTasks)
		}
	}
	return exitcode.Success
}

// visibleLists connects with the stored token and counts the lists it can see.
func (c *LoginCmd) visibleLists(ctx context.Context, cfg *config.Config) (int, error) {
	token, err := loadToken(cfg.TokenPath())
	if err != nil {
		return 0, err
	}
	if token.RefreshToken == "" {
		return 0, errNoRefreshToken
	}

	connect := c.Connect
	if connect == nil {
		connect = connectGoogleTasks
	}
	backend, err := connect(ctx, cfg)
	if err != nil {
		return 0, err
	}
	lists, err := backend.ListLists(ctx)
	if err != nil {
		return 0, err
	}
	return len(lists), nil
}

func countLists(n int) string {
	if n == 1 {
		return "1 list"
	}
	return fmt.Sprintf("%d lists", n)
}

// authorize runs the loopback OAuth flow with PKCE and returns the exchanged token.
func authorize(ctx context.Context, oauthConfig *oauth2.Config, prompt io.Writer) (*oauth2.Token, error) {
	listener, err := listenLoopback()
	if err != nil {
		return nil, err
	}
	defer listener.Close()

	port := listener.Addr().(*net.TCPAddr).Port
	oauthConfig.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)

	verifier := oauth2.GenerateVerifier()
	cb := &callback{state: uuid.NewString(), codes: make(chan string, 1), errs: make(chan error, 1)}
	authURL := oauthConfig.AuthCodeURL(cb.state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))

	fmt.Fprintln(prompt, "Open this URL in your browser:")
	fmt.Fprintln(prompt, authURL)

	mux := http.NewServeMux()
	mux.Handle("GET /callback", cb)
	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cb.fail(err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	var code string
	select {
	case code = <-cb.codes:
	case err := <-cb.errs:
		return nil, err
	case <-time.After(callbackTimeout):
		return nil, errors.New("oauth callback timed out")
	case <-ctx.Done():
		return nil, errors.New("cancelled")
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()
	token, err := oauthConfig.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return token, nil
}

func listenLoopback() (net.Listener, error) {
	for port := callbackBasePort; port < callbackBasePort+callbackPorts; port++ {
		l, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return l, nil
		}
	}
	return nil, errors.New("could not bind to local port for OAuth callback")
}

// callback receives the authorization code on the loopback redirect.
type callback struct {
	state string
	codes chan string
	errs  chan error
}

func (cb *callback) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("state") != cb.state {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		cb.fail(errors.New("oauth state mismatch"))
		return
	}
	code := q.Get("code")
	if code == "" {
		http.Error(w, "No code in callback", http.StatusBadRequest)
		cb.fail(errors.New("no code in callback"))
		return
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, "<html><body><h1>duties is authorized</h1><p>You may close this window.</p></body></html>")
	select {
	case cb.codes <- code:
	default:
	}
}

func (cb *callback) fail(err error) {
	select {
	case cb.errs <- err:
	default:
	}
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}
	return &token, nil
}

// saveToken writes the token with mode 0600.
func saveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

const setupHint = `The googletasks backend needs OAuth credentials:

1. Go to https://console.cloud.google.com/apis/credentials
2. Create a project (or select an existing one)
3. Enable the Google Tasks API:
   https://console.cloud.google.com/apis/library/tasks.googleapis.com
4. Create an OAuth client ID of type 'Desktop app' and download the JSON file
5. Save it as:
   %s

Then run 'duties login' again.
`

// LogoutCmd forgets the Google Tasks token. The OAuth client file is kept.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string       { return "logout" }
func (c *LogoutCmd) Aliases() []string  { return nil }
func (c *LogoutCmd) Synopsis() string   { return "Forget the Google Tasks token" }
func (c *LogoutCmd) Usage() string      { return "duties logout [common flags]" }
func (c *LogoutCmd) NeedsBackend() bool { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	err := cfg.RemoveToken()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	case err != nil:
		fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
		if cfg.Backend == config.BackendGoogleTasks {
			fmt.Fprintf(errOut, "note: run 'duties login' before using the %s backend again\n", config.BackendGoogleTasks)
		}
	}
	return exitcode.Success
}
