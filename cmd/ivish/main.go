// Command ivish is the standalone entrypoint: invoked with no arguments
// it starts the interactive loop; with arguments, the remaining ones
// joined by a single space form a one-shot command line executed as a
// subshell (spec §6's CLI surface).
//
// Grounded on the teacher's cli.go main(): raw-terminal setup/teardown
// around a blocking read loop, an ExecRunner standing in for the
// embedding host's Command Runner. The top-level flags are parsed with
// spf13/cobra, the library the teacher's go.mod carries but never calls.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ivish/internal/cmddb"
	"ivish/internal/runner"
	"ivish/internal/shell"
	"ivish/internal/termio"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var cfg shell.Config
	var asRoot bool
	exitCode := 0

	root := &cobra.Command{
		Use:                   "ivish [command line...]",
		Short:                 "ivish is an interactive shell for a host lacking a POSIX process model",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = runShell(cfg, args, asRoot)
			return nil
		},
	}
	root.Flags().StringVar(&cfg.CmdDBPath, "cmd-db", "", "path to the command-property YAML database")
	root.Flags().StringVar(&cfg.HistoryFilePath, "history-file", "", "path to the plain-text history file")
	root.Flags().IntVar(&cfg.HistoryLimit, "history-limit", 0, "maximum retained history entries")
	root.Flags().StringVar(&cfg.AliasSeedPath, "alias-seed", "", "path to a YAML alias-seed file loaded at startup")
	// Mirrors the host's separate elevated-execution entry point: only
	// meaningful alongside a one-shot command line, not the interactive
	// loop.
	root.Flags().BoolVar(&asRoot, "as-root", false, "run the one-shot command line through the privileged entry point")
	// Flags meant for ivish itself must come before the one-shot command
	// line; anything after the first positional word belongs to that line,
	// not to ivish, so parsing stops there instead of scanning through it.
	root.Flags().SetInterspersed(false)

	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ivish:", err)
		return 1
	}
	return exitCode
}

func runShell(cfg shell.Config, oneShot []string, asRoot bool) int {
	r := &runner.ExecRunner{}

	if len(oneShot) > 0 {
		line := strings.Join(oneShot, " ")
		db, err := cmddb.Load(cfg.CmdDBPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		if asRoot {
			return shell.RunOnceAsRoot(context.Background(), r, db, line)
		}
		return shell.RunOnce(context.Background(), r, db, line)
	}

	term := termio.New(os.Stdin, os.Stdout, nil)
	if termio.IsTerminal(os.Stdin) {
		if err := term.EnableRaw(); err != nil {
			fmt.Fprintln(os.Stderr, "ivish: enable raw mode:", err)
			return 1
		}
		defer term.DisableRaw()
	}

	sh, err := shell.New(term, r, nil, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ivish:", err)
		return 1
	}

	fmt.Fprintln(os.Stdout, "ivish — type 'help' for built-ins, ^D to exit")
	return sh.Run(context.Background())
}
