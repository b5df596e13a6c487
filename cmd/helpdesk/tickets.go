package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/ticketdesk/ticketdesk/internal/handler/dto"
	"github.com/ticketdesk/ticketdesk/internal/model"
)

const timeLayout = "2006-01-02 15:04"

func ticketsCommand() *Command {
	return &Command{
		Name:    "tickets",
		Summary: "List, view and manage tickets",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "List tickets, oldest first",
				Usage:   "[--status <status>] [--search <text>]",
				Flags: func(fs *pflag.FlagSet) {
					fs.String("status", "", "only tickets with exactly this status")
					fs.String("search", "", "case-insensitive match on title or description")
				},
				Run: runTicketsList,
			},
			{
				Name:    "get",
				Summary: "Show one ticket",
				Usage:   "<id>",
				Run:     runTicketsGet,
			},
			{
				Name:    "create",
				Summary: "Open a new ticket",
				Usage:   "--title <title> --description <text>",
				Flags: func(fs *pflag.FlagSet) {
					fs.String("title", "", "ticket title")
					fs.String("description", "", "ticket description")
				},
				Run: runTicketsCreate,
			},
			{
				Name:    "update",
				Summary: "Change a ticket; omitted fields keep their current value",
				Usage:   "<id> [--title <title>] [--description <text>] [--status <status>]",
				Flags: func(fs *pflag.FlagSet) {
					fs.String("title", "", "new title")
					fs.String("description", "", "new description")
					fs.String("status", "", `new status, conventionally "open" or "closed"`)
				},
				Run: runTicketsUpdate,
			},
			{
				Name:    "close",
				Summary: "Set a ticket's status to closed",
				Usage:   "<id>",
				Run: func(ctx context.Context, app *App, fs *pflag.FlagSet, args []string) error {
					return setStatus(ctx, app, args, model.TicketStatusClosed)
				},
			},
			{
				Name:    "reopen",
				Summary: "Set a ticket's status to open",
				Usage:   "<id>",
				Run: func(ctx context.Context, app *App, fs *pflag.FlagSet, args []string) error {
					return setStatus(ctx, app, args, model.TicketStatusOpen)
				},
			},
			{
				Name:    "delete",
				Summary: "Delete a ticket and its comments",
				Usage:   "<id>",
				Run:     runTicketsDelete,
			},
			{
				Name:    "solution",
				Summary: "Ask the server for a suggested fix",
				Usage:   "<id>",
				Run:     runTicketsSolution,
			},
		},
	}
}

func runTicketsList(ctx context.Context, app *App, fs *pflag.FlagSet, args []string) error {
	if err := requireArgs(args, 0); err != nil {
		return err
	}
	status, _ := fs.GetString("status")
	search, _ := fs.GetString("search")

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	tickets, err := app.client().ListTickets(ctx, model.TicketFilter{Status: status, Search: search})
	if err != nil {
		return err
	}
	if app.json {
		return app.writeJSON(tickets)
	}
	printTickets(app.Stdout, tickets)
	return nil
}

func runTicketsGet(ctx context.Context, app *App, fs *pflag.FlagSet, args []string) error {
	if err := requireArgs(args, 1, "<id>"); err != nil {
		return err
	}

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	ticket, err := app.client().GetTicket(ctx, args[0])
	if err != nil {
		return err
	}
	return app.printTicket(ticket)
}

func runTicketsCreate(ctx context.Context, app *App, fs *pflag.FlagSet, args []string) error {
	if err := requireArgs(args, 0); err != nil {
		return err
	}
	c, err := app.authedClient()
	if err != nil {
		return err
	}
	title, _ := fs.GetString("title")
	description, _ := fs.GetString("description")

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	ticket, err := c.CreateTicket(ctx, title, description)
	if err != nil {
		return err
	}
	return app.printTicket(ticket)
}

func runTicketsUpdate(ctx context.Context, app *App, fs *pflag.FlagSet, args []string) error {
	if err := requireArgs(args, 1, "<id>"); err != nil {
		return err
	}
	c, err := app.authedClient()
	if err != nil {
		return err
	}

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	// PUT replaces every field, so start from the current values.
	current, err := c.GetTicket(ctx, args[0])
	if err != nil {
		return err
	}
	req := dto.UpdateTicketRequest{
		Title:       current.Title,
		Description: current.Description,
		Status:      current.Status,
	}
	if fs.Changed("title") {
		req.Title, _ = fs.GetString("title")
	}
	if fs.Changed("description") {
		req.Description, _ = fs.GetString("description")
	}
	if fs.Changed("status") {
		req.Status, _ = fs.GetString("status")
	}

	ticket, err := c.UpdateTicket(ctx, args[0], req)
	if err != nil {
		return err
	}
	return app.printTicket(ticket)
}

func setStatus(ctx context.Context, app *App, args []string, status string) error {
	if err := requireArgs(args, 1, "<id>"); err != nil {
		return err
	}
	c, err := app.authedClient()
	if err != nil {
		return err
	}

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	current, err := c.GetTicket(ctx, args[0])
	if err != nil {
		return err
	}
	ticket, err := c.UpdateTicket(ctx, args[0], dto.UpdateTicketRequest{
		Title:       current.Title,
		Description: current.Description,
		Status:      status,
	})
	if err != nil {
		return err
	}
	return app.printTicket(ticket)
}

func runTicketsDelete(ctx context.Context, app *App, fs *pflag.FlagSet, args []string) error {
	if err := requireArgs(args, 1, "<id>"); err != nil {
		return err
	}
	c, err := app.authedClient()
	if err != nil {
		return err
	}

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	if err := c.DeleteTicket(ctx, args[0]); err != nil {
		return err
	}
	if app.json {
		return app.writeJSON(dto.DeleteResponse{Success: true})
	}
	fmt.Fprintf(app.Stdout, "deleted %s\n", args[0])
	return nil
}

func runTicketsSolution(ctx context.Context, app *App, fs *pflag.FlagSet, args []string) error {
	if err := requireArgs(args, 1, "<id>"); err != nil {
		return err
	}
	c, err := app.authedClient()
	if err != nil {
		return err
	}

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	solution, err := c.Solution(ctx, args[0])
	if err != nil {
		return err
	}
	if app.json {
		return app.writeJSON(dto.SolutionResponse{Solution: solution})
	}
	fmt.Fprintln(app.Stdout, solution)
	return nil
}

func (a *App) printTicket(t *model.Ticket) error {
	if a.json {
		return a.writeJSON(t)
	}
	tw := tabwriter.NewWriter(a.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", t.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", t.Title)
	fmt.Fprintf(tw, "Status:\t%s\n", t.Status)
	if t.Username != "" {
		fmt.Fprintf(tw, "Owner:\t%s\n", t.Username)
	}
	fmt.Fprintf(tw, "Created:\t%s\n", t.CreatedAt.Local().Format(timeLayout))
	tw.Flush()
	fmt.Fprintf(a.Stdout, "\n%s\n", t.Description)
	return nil
}

func printTickets(w io.Writer, tickets []model.Ticket) {
	if len(tickets) == 0 {
		fmt.Fprintln(w, "no tickets")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tOWNER\tCREATED\tTITLE")
	for _, t := range tickets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Status, t.Username, t.CreatedAt.Local().Format(timeLayout), t.Title)
	}
	tw.Flush()
}
