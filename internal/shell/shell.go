package shell

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"

	"ivish/internal/alias"
	"ivish/internal/ansi"
	"ivish/internal/cmddb"
	"ivish/internal/completion"
	"ivish/internal/dispatch"
	"ivish/internal/envcfg"
	"ivish/internal/history"
	"ivish/internal/interrupt"
	"ivish/internal/lineeditor"
	"ivish/internal/runner"
	"ivish/internal/termio"
	"ivish/internal/tokenizer"
)

// Shell owns every long-lived collaborator (spec §3's ownership rules:
// "the shell owns history, aliases, config, the command database, and
// the line editor") and drives the read/expand/dispatch loop.
type Shell struct {
	Term       *termio.Terminal
	Editor     *lineeditor.Editor
	Hist       *history.Store
	Aliases    *alias.Engine
	DB         *cmddb.DB
	Dispatcher *dispatch.Dispatcher
	Interrupt  *interrupt.Dispatcher
	ModeSel    *dispatch.ModeSelector
	Builtins   *Builtins

	HistoryPath string
	Prompt      string
	lastExit    int
}

// Config overrides the environment-derived defaults for New, set from the
// CLI's --cmd-db/--history-file/--history-limit flags. A zero-value Config
// leaves every default in place.
type Config struct {
	CmdDBPath       string
	HistoryFilePath string
	HistoryLimit    int
	AliasSeedPath   string
}

func (c Config) withDefaults() Config {
	if c.CmdDBPath == "" {
		c.CmdDBPath = envcfg.CmdDBPath()
	}
	if c.HistoryFilePath == "" {
		c.HistoryFilePath = envcfg.HistoryFilePath()
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = history.DefaultMaxItems
	}
	if c.AliasSeedPath == "" {
		c.AliasSeedPath = envcfg.AliasSeedPath()
	}
	return c
}

// New wires up a Shell over term, with r used for external command
// execution and host as the Host Completion Provider (nil for none).
func New(term *termio.Terminal, r runner.Runner, host completion.Provider, cfg Config) (*Shell, error) {
	cfg = cfg.withDefaults()

	hist, err := history.Load(cfg.HistoryFilePath, cfg.HistoryLimit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	db, err := cmddb.Load(cfg.CmdDBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	aliases := alias.New()
	if err := aliases.LoadSeed(cfg.AliasSeedPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	colors := envcfg.LoadColors()

	ed := lineeditor.New(term, term, term.CellWidth, hist, colors)
	if host != nil {
		ed.Completion = host
	}

	s := &Shell{
		Term:        term,
		Editor:      ed,
		Hist:        hist,
		Aliases:     aliases,
		DB:          db,
		ModeSel:     dispatch.NewModeSelector(db, term),
		HistoryPath: cfg.HistoryFilePath,
		Prompt:      "ivish> ",
	}

	help := func() error {
		_, err := fmt.Fprintf(os.Stdout, "built-in commands: %s\n", Names())
		return err
	}
	s.Builtins = NewBuiltins(aliases, hist, help, term, os.Stderr)
	s.Dispatcher = dispatch.New(db, r, s.lookupCommand, s.Builtins.IsBuiltin)
	s.Dispatcher.ModeSel = s.ModeSel
	s.Interrupt = interrupt.New(db, nil)

	ed.Subline = s.aliasPreview
	return s, nil
}

// lookupCommand is the dispatch.CommandLookup the Shell hands to its
// Dispatcher (spec §4.8's "first token names a known command: internal,
// host-registered, or alias"). Outside an embedding host there is no
// registry to consult, so a standalone build falls back to the PATH
// lookup any POSIX shell performs; an embedding host supplies its own
// CommandLookup through the same hook.
func (s *Shell) lookupCommand(name string) bool {
	if s.Builtins.IsBuiltin(name) {
		return true
	}
	if _, ok := s.Aliases.Get(name); ok {
		return true
	}
	_, err := exec.LookPath(name)
	return err == nil
}

// aliasPreview renders the expanded form of the current line as a
// subline when it differs, the "alias preview" spec §2/glossary names.
func (s *Shell) aliasPreview(before, after string) string {
	line := before + after
	if line == "" {
		return ""
	}
	expanded, ok := s.Aliases.Translate(line)
	if !ok || expanded == line {
		return ""
	}
	return expanded
}

// Run drives the interactive loop until EOF or the exit built-in,
// returning the final exit code (spec §7's "Exit code of exit is the
// last-observed exit code").
func (s *Shell) Run(ctx context.Context) int {
	for {
		s.Term.WriteString(s.Prompt)
		ev := s.Editor.ReadLine()

		switch ev.Kind {
		case lineeditor.EventEOF:
			s.saveHistory()
			return s.lastExit

		case lineeditor.EventInterrupt:
			s.Term.WriteString("\r\n")
			continue

		case lineeditor.EventIOError:
			fmt.Fprintln(os.Stderr, ev.Err)
			continue

		case lineeditor.EventCompletion:
			s.printCandidates(ev.Completion.Candidates)
			continue

		case lineeditor.EventLine:
			s.Term.WriteString("\r\n")
			if s.runLine(ctx, ev.Line) {
				s.saveHistory()
				return s.lastExit
			}
		}
	}
}

// printCandidates lists ambiguous Tab-completion candidates on the
// terminal, on one line ended by "\r\n"; Run then writes the next prompt
// to the same terminal and ReadLine restores the kept line state.
func (s *Shell) printCandidates(candidates []string) {
	for _, c := range candidates {
		s.Term.WriteString(c + "  ")
	}
	s.Term.WriteString("\r\n")
}

// runLine expands, tokenizes, validates and dispatches one line entered
// at the prompt. It returns true if the shell loop should terminate.
func (s *Shell) runLine(ctx context.Context, line string) bool {
	if line != "" {
		s.Hist.Add(line)
	}

	effective := line
	if expanded, ok := s.Aliases.Translate(line); ok {
		effective = expanded
	}

	res := tokenizer.Tokenize(effective)

	if res.UnfinishedEscape != nil {
		quote := `"`
		if res.UnfinishedEscape.Kind == tokenizer.SingleQuote {
			quote = "'"
		}
		s.reportError("unfinished " + quote)
		return false
	}
	if invalid := res.InvalidDelimiters(); len(invalid) > 0 {
		s.reportError(fmt.Sprintf("invalid delimiters %v", invalid))
		return false
	}
	if len(res.Tokens) == 0 {
		return false
	}

	head := res.Tokens[0].Content
	args := make([]string, 0, len(res.Tokens)-1)
	for _, t := range res.Tokens[1:] {
		args = append(args, t.Content)
	}

	if handled, err := s.Builtins.Run(head, args); handled {
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			s.lastExit = 1
		} else if head != "exit" {
			// exit reports the last-observed exit code (spec §6), so it
			// must not zero out whatever runWithInterrupt/the dispatcher
			// last set.
			s.lastExit = 0
		}
		return s.Builtins.ExitRequested
	}

	exit, err := s.runWithInterrupt(ctx, res)
	if err != nil {
		s.reportError(err.Error())
		return false
	}
	s.lastExit = exit
	return false
}

// runWithInterrupt runs res through the dispatcher while a SIGINT
// handler forwards ^C to the interrupt dispatcher for whichever segment
// is currently the foreground command, mirroring the teacher's
// signal.Notify/signal.Reset dance around command execution.
func (s *Shell) runWithInterrupt(ctx context.Context, res tokenizer.Result) (int, error) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-sigCh:
				if name, handle, ok := s.Dispatcher.Current(); ok {
					s.Interrupt.Dispatch(name, handle, nil)
				}
			case <-done:
				return
			}
		}
	}()

	return s.Dispatcher.Run(ctx, res, os.Stdout, os.Stderr)
}

// reportError renders a ShellError in bold red to stderr, per spec §7.
func (s *Shell) reportError(msg string) {
	fmt.Fprintln(os.Stderr, ansi.Fg8(1, true, msg))
}

func (s *Shell) saveHistory() {
	if err := s.Hist.Save(s.HistoryPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

// RunOnce executes a single one-shot command line (spec §6's CLI
// surface: "with arguments ... a one-shot command line executed as a
// subshell") and returns its exit code without entering the interactive
// loop.
func RunOnce(ctx context.Context, r runner.Runner, db *cmddb.DB, line string) int {
	return runOnce(ctx, r, db, line, false)
}

// RunOnceAsRoot is RunOnce's privileged counterpart, grounded on the
// original product's dedicated `ivish_run_as_root_cmd` entry point: a
// separate, elevated way to run a one-shot command line alongside the
// ordinary one, rather than a flag the ordinary path happens to accept.
func RunOnceAsRoot(ctx context.Context, r runner.Runner, db *cmddb.DB, line string) int {
	return runOnce(ctx, r, db, line, true)
}

func runOnce(ctx context.Context, r runner.Runner, db *cmddb.DB, line string, privileged bool) int {
	res := tokenizer.Tokenize(line)
	if res.UnfinishedEscape != nil || len(res.InvalidDelimiters()) > 0 {
		fmt.Fprintln(os.Stderr, "ivish: malformed command line")
		return 1
	}
	lookup := func(name string) bool {
		_, err := exec.LookPath(name)
		return err == nil
	}
	d := dispatch.New(db, r, lookup, func(string) bool { return false })
	d.Privileged = privileged
	exit, err := d.Run(ctx, res, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return exit
}
