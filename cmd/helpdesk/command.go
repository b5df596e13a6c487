package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// errUsage marks errors caused by bad invocation; they exit with status 2.
var errUsage = errors.New("usage error")

// Command is a node in the CLI tree. Leaves set Run; groups set Subcommands.
type Command struct {
	Name    string
	Summary string
	// Usage is the argument synopsis after the command path, e.g. "<id> [flags]".
	Usage string

	// Flags registers leaf-specific flags. Global flags are added by the dispatcher.
	Flags func(fs *pflag.FlagSet)

	Subcommands []*Command
	Run         func(ctx context.Context, app *App, fs *pflag.FlagSet, args []string) error
}

func (c *Command) find(name string) *Command {
	for _, sub := range c.Subcommands {
		if sub.Name == name {
			return sub
		}
	}
	return nil
}

// Execute dispatches args down the tree and runs the matched leaf.
func (c *Command) Execute(ctx context.Context, app *App, path []string, args []string) error {
	path = append(path, c.Name)

	if len(c.Subcommands) > 0 {
		if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
			if len(args) == 0 {
				c.printGroupHelp(app.Stderr, path)
				return fmt.Errorf("%w: missing command", errUsage)
			}
			c.printGroupHelp(app.Stdout, path)
			return nil
		}
		sub := c.find(args[0])
		if sub == nil {
			c.printGroupHelp(app.Stderr, path)
			return fmt.Errorf("%w: unknown command %q", errUsage, strings.Join(append(path[1:], args[0]), " "))
		}
		return sub.Execute(ctx, app, path, args[1:])
	}

	fs := pflag.NewFlagSet(strings.Join(path, " "), pflag.ContinueOnError)
	fs.SetOutput(app.Stderr)
	app.addGlobalFlags(fs)
	if c.Flags != nil {
		c.Flags(fs)
	}
	fs.Usage = func() {
		fmt.Fprintf(app.Stderr, "Usage: %s %s\n\n%s\n\nFlags:\n", strings.Join(path, " "), c.Usage, c.Summary)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	return c.Run(ctx, app, fs, fs.Args())
}

func (c *Command) printGroupHelp(w io.Writer, path []string) {
	fmt.Fprintf(w, "Usage: %s <command> [flags]\n\n", strings.Join(path, " "))
	if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}
	fmt.Fprintln(w, "Commands:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, sub := range c.Subcommands {
		fmt.Fprintf(tw, "  %s\t%s\n", sub.Name, sub.Summary)
	}
	tw.Flush()
}

// requireArgs checks the positional argument count of a leaf.
func requireArgs(args []string, n int, names ...string) error {
	if len(args) == n {
		return nil
	}
	if n == 0 {
		return fmt.Errorf("%w: unexpected argument %q", errUsage, args[0])
	}
	return fmt.Errorf("%w: expected %s", errUsage, strings.Join(names, " "))
}
