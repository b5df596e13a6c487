// Command helpdesk is a command-line client for the TicketDesk API.
//
//	helpdesk login alice --password pw1
//	export HELPDESK_TOKEN=...
//	helpdesk tickets create --title "Printer" --description "Tray 2 jams"
//	helpdesk tickets list --status open
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ticketdesk/ticketdesk/internal/client"
)

const (
	envServer = "HELPDESK_SERVER"
	envToken  = "HELPDESK_TOKEN"

	defaultServer = "http://localhost:3001"
)

// App carries the process environment so commands can run under test.
type App struct {
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	server  string
	token   string
	json    bool
	timeout time.Duration
}

func (a *App) addGlobalFlags(fs *pflag.FlagSet) {
	server := a.Getenv(envServer)
	if server == "" {
		server = defaultServer
	}
	fs.StringVarP(&a.server, "server", "s", server, "API base URL (env "+envServer+")")
	fs.StringVarP(&a.token, "token", "t", a.Getenv(envToken), "session token (env "+envToken+")")
	fs.BoolVar(&a.json, "json", false, "print raw JSON")
	fs.DurationVar(&a.timeout, "timeout", client.DefaultTimeout, "request timeout")
}

// client builds an API client from the parsed global flags.
func (a *App) client() *client.Client {
	return client.New(a.server).WithToken(a.token)
}

// authedClient is client for commands the server rejects without a token.
func (a *App) authedClient() (*client.Client, error) {
	if a.token == "" {
		return nil, fmt.Errorf("%w: no token; pass --token or set %s (see 'helpdesk login')", errUsage, envToken)
	}
	return a.client(), nil
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}

func (a *App) writeJSON(v any) error {
	enc := json.NewEncoder(a.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func rootCommand() *Command {
	return &Command{
		Name:    "helpdesk",
		Summary: "Command-line client for the TicketDesk API.",
		Subcommands: []*Command{
			signupCommand(),
			loginCommand(),
			ticketsCommand(),
			commentsCommand(),
			adminCommand(),
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], &App{Stdout: os.Stdout, Stderr: os.Stderr, Getenv: os.Getenv})
	stop()
	os.Exit(code)
}

// run executes one invocation and returns the process exit code.
func run(ctx context.Context, args []string, app *App) int {
	err := rootCommand().Execute(ctx, app, nil, args)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(app.Stderr, "error: %v\n", err)
		return 2
	default:
		fmt.Fprintf(app.Stderr, "error: %v\n", err)
		return 1
	}
}
