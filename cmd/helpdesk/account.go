package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/ticketdesk/ticketdesk/internal/client"
)

const envPassword = "HELPDESK_PASSWORD"

func passwordFlag(fs *pflag.FlagSet) {
	fs.StringP("password", "p", "", "account password (env "+envPassword+")")
}

func readPassword(app *App, fs *pflag.FlagSet) (string, error) {
	password, _ := fs.GetString("password")
	if password == "" {
		password = app.Getenv(envPassword)
	}
	if password == "" {
		return "", fmt.Errorf("%w: --password or %s is required", errUsage, envPassword)
	}
	return password, nil
}

func signupCommand() *Command {
	return &Command{
		Name:    "signup",
		Summary: "Create an account and print its session token",
		Usage:   "<username> --password <password>",
		Flags:   passwordFlag,
		Run: func(ctx context.Context, app *App, fs *pflag.FlagSet, args []string) error {
			return authenticate(ctx, app, fs, args, (*client.Client).Signup)
		},
	}
}

func loginCommand() *Command {
	return &Command{
		Name:    "login",
		Summary: "Log in and print a session token",
		Usage:   "<username> --password <password>",
		Flags:   passwordFlag,
		Run: func(ctx context.Context, app *App, fs *pflag.FlagSet, args []string) error {
			return authenticate(ctx, app, fs, args, (*client.Client).Login)
		},
	}
}

type authFunc func(c *client.Client, ctx context.Context, username, password string) (*client.AuthResponse, error)

// authenticate prints the token alone on stdout so it can be captured
// with $(helpdesk login ...); the greeting goes to stderr.
func authenticate(ctx context.Context, app *App, fs *pflag.FlagSet, args []string, fn authFunc) error {
	if err := requireArgs(args, 1, "<username>"); err != nil {
		return err
	}
	password, err := readPassword(app, fs)
	if err != nil {
		return err
	}

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	session, err := fn(app.client(), ctx, args[0], password)
	if err != nil {
		return err
	}

	if app.json {
		return app.writeJSON(session)
	}
	role := "user"
	if session.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(app.Stderr, "authenticated as %s (%s); export %s to reuse the token\n", session.Username, role, envToken)
	fmt.Fprintln(app.Stdout, session.Token)
	return nil
}
