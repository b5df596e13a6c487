package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

func commentsCommand() *Command {
	return &Command{
		Name:    "comments",
		Summary: "Read and post ticket comments",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "Show a ticket's comments, oldest first",
				Usage:   "<ticket-id>",
				Run:     runCommentsList,
			},
			{
				Name:    "add",
				Summary: "Post a comment; remaining arguments are joined as the text",
				Usage:   "<ticket-id> <text...>",
				Run:     runCommentsAdd,
			},
		},
	}
}

func runCommentsList(ctx context.Context, app *App, fs *pflag.FlagSet, args []string) error {
	if err := requireArgs(args, 1, "<ticket-id>"); err != nil {
		return err
	}

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	comments, err := app.client().ListComments(ctx, args[0])
	if err != nil {
		return err
	}
	if app.json {
		return app.writeJSON(comments)
	}
	if len(comments) == 0 {
		fmt.Fprintln(app.Stdout, "no comments")
		return nil
	}
	tw := tabwriter.NewWriter(app.Stdout, 0, 4, 2, ' ', 0)
	for _, c := range comments {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.CreatedAt.Local().Format(timeLayout), c.Username, c.Content)
	}
	return tw.Flush()
}

func runCommentsAdd(ctx context.Context, app *App, fs *pflag.FlagSet, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: expected <ticket-id> <text...>", errUsage)
	}
	c, err := app.authedClient()
	if err != nil {
		return err
	}

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	comment, err := c.AddComment(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if app.json {
		return app.writeJSON(comment)
	}
	fmt.Fprintf(app.Stdout, "comment %s added to %s\n", comment.ID, args[0])
	return nil
}
