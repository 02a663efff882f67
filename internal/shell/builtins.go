// Package shell is the glue component of spec §2's "Shell loop": prompt,
// read, expand aliases, tokenize, dispatch, update history, handle
// EOF/interrupt/error.
//
// Built-ins (alias, unalias, exit, help, history) are parsed with
// spf13/cobra the way _examples/other_examples/Necromancer-Labs-
// embbridge__shell.go registers commands on a shell's rootCmd — a
// teacher dependency (spf13/cobra) the original never actually wires
// into anything, put to real use here.
package shell

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"ivish/internal/alias"
	"ivish/internal/history"
)

// BuiltinNames lists the built-in commands spec §6 names beyond the
// Command Runner's surface: alias, unalias, exit, help, history.
var BuiltinNames = []string{"alias", "unalias", "exit", "help", "history"}

// Builtins implements ivish's own built-in command set.
type Builtins struct {
	Aliases  *alias.Engine
	Hist     *history.Store
	HelpFunc func() error
	Stdout   io.Writer
	Stderr   io.Writer

	// ExitRequested is set by the exit built-in; the shell loop checks it
	// after every dispatched line (spec §7's ShellExit).
	ExitRequested bool

	factories map[string]func() *cobra.Command
}

// NewBuiltins returns a Builtins wired against aliases and hist, writing
// built-in output to stdout/stderr.
func NewBuiltins(aliases *alias.Engine, hist *history.Store, help func() error, stdout, stderr io.Writer) *Builtins {
	b := &Builtins{Aliases: aliases, Hist: hist, HelpFunc: help, Stdout: stdout, Stderr: stderr}
	b.factories = map[string]func() *cobra.Command{
		"alias":   b.newAliasCmd,
		"unalias": b.newUnaliasCmd,
		"exit":    b.newExitCmd,
		"help":    b.newHelpCmd,
		"history": b.newHistoryCmd,
	}
	return b
}

// IsBuiltin reports whether name is one of ivish's own built-ins.
func (b *Builtins) IsBuiltin(name string) bool {
	_, ok := b.factories[name]
	return ok
}

// Run dispatches a builtin named head with args (the tokens after head),
// reporting handled=false if head is not a builtin.
func (b *Builtins) Run(head string, args []string) (handled bool, err error) {
	factory, ok := b.factories[head]
	if !ok {
		return false, nil
	}
	cmd := factory()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetOut(b.Stdout)
	cmd.SetErr(b.Stderr)
	if args == nil {
		// cobra treats nil args as "unset" and would read os.Args instead.
		args = []string{}
	}
	cmd.SetArgs(args)
	return true, cmd.Execute()
}

func (b *Builtins) newAliasCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "alias [name[=value]]...",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				names := b.Aliases.Names()
				sort.Strings(names)
				for _, n := range names {
					v, _ := b.Aliases.Get(n)
					fmt.Fprintln(cmd.OutOrStdout(), alias.Format(n, v, false))
				}
				return nil
			}
			var firstErr error
			for _, arg := range args {
				name, value, ok := alias.ParseDefinition(arg)
				if !ok {
					if v, exists := b.Aliases.Get(arg); exists {
						fmt.Fprintln(cmd.OutOrStdout(), alias.Format(arg, v, false))
						continue
					}
					if firstErr == nil {
						firstErr = fmt.Errorf("alias: '%s': invalid alias name", arg)
					}
					fmt.Fprintln(cmd.ErrOrStderr(), firstErr)
					continue
				}
				if err := b.Aliases.Set(name, value); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					if firstErr == nil {
						firstErr = err
					}
				}
			}
			return firstErr
		},
	}
}

func (b *Builtins) newUnaliasCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use: "unalias name...",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				b.Aliases.UnsetAll()
				return nil
			}
			var firstErr error
			for _, name := range args {
				if err := b.Aliases.Unset(name); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					if firstErr == nil {
						firstErr = err
					}
				}
			}
			return firstErr
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "remove all aliases")
	return cmd
}

func (b *Builtins) newExitCmd() *cobra.Command {
	return &cobra.Command{
		Use: "exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			b.ExitRequested = true
			return nil
		},
	}
}

func (b *Builtins) newHelpCmd() *cobra.Command {
	return &cobra.Command{
		Use: "help",
		RunE: func(cmd *cobra.Command, args []string) error {
			if b.HelpFunc == nil {
				return nil
			}
			return b.HelpFunc()
		},
	}
}

func (b *Builtins) newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use: "history",
		RunE: func(cmd *cobra.Command, args []string) error {
			for i, line := range b.Hist.Items() {
				fmt.Fprintf(cmd.OutOrStdout(), "%5d  %s\n", i+1, line)
			}
			return nil
		},
	}
}

// Names joins BuiltinNames for use in usage/help text.
func Names() string { return strings.Join(BuiltinNames, ", ") }
