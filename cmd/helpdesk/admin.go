package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

func adminCommand() *Command {
	return &Command{
		Name:    "admin",
		Summary: "Admin-only listings (requires an admin token)",
		Subcommands: []*Command{
			{
				Name:    "users",
				Summary: "List every account",
				Run:     runAdminUsers,
			},
			{
				Name:    "tickets",
				Summary: "List every ticket",
				Run:     runAdminTickets,
			},
		},
	}
}

func runAdminUsers(ctx context.Context, app *App, fs *pflag.FlagSet, args []string) error {
	if err := requireArgs(args, 0); err != nil {
		return err
	}
	c, err := app.authedClient()
	if err != nil {
		return err
	}

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	users, err := c.AdminUsers(ctx)
	if err != nil {
		return err
	}
	if app.json {
		return app.writeJSON(users)
	}
	tw := tabwriter.NewWriter(app.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tADMIN")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%t\n", u.ID, u.Username, u.IsAdmin)
	}
	return tw.Flush()
}

func runAdminTickets(ctx context.Context, app *App, fs *pflag.FlagSet, args []string) error {
	if err := requireArgs(args, 0); err != nil {
		return err
	}
	c, err := app.authedClient()
	if err != nil {
		return err
	}

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	tickets, err := c.AdminTickets(ctx)
	if err != nil {
		return err
	}
	if app.json {
		return app.writeJSON(tickets)
	}
	printTickets(app.Stdout, tickets)
	return nil
}
