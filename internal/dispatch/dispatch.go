// Package dispatch implements the pipeline/sequence dispatcher of spec
// §4.8: it walks a tokenized line's delimiters, validates command heads,
// assembles pipeline/subshell segments, hands each to the Command Runner,
// and threads exit codes.
//
// Grounded on the teacher's validation/engine.go Engine (config struct,
// single Validate-style entry point, accumulated errors) and on cli.go's
// runCommand (stdio wiring, exit-code handling, geometry from the
// environment).
package dispatch

import (
	"context"
	"fmt"
	"os"
	"strings"

	"ivish/internal/cmddb"
	"ivish/internal/envcfg"
	"ivish/internal/runner"
	"ivish/internal/tokenizer"
)

// CommandLookup reports whether name is a known command: an internal
// built-in, a host-registered command, or an alias (spec §4.8). The
// dispatcher borrows this from the shell loop rather than owning a
// registry itself.
type CommandLookup func(name string) bool

// ShellName is the name the dispatcher uses to wrap internal/not-found
// pipe stages in a subshell invocation of itself (spec §4.8), e.g.
// "ivish".
const ShellName = "ivish"

// Dispatcher assembles and runs one tokenized command line.
type Dispatcher struct {
	DB       *cmddb.DB
	Runner   runner.Runner
	Lookup   CommandLookup
	// IsInternal reports whether name is one of ivish's own built-ins
	// (alias/unalias/exit/help/history), which must be wrapped in a
	// subshell invocation when they appear mid-pipeline (spec §4.8).
	IsInternal func(name string) bool

	// ModeSel selects the terminal cooking mode for each segment before it
	// runs (spec §4.9), keyed on that segment's own head rather than the
	// line's first token, since a `;`-separated line can mix raw- and
	// line-mode commands. Nil means no terminal to put in any particular
	// mode (e.g. the one-shot CLI path).
	ModeSel *ModeSelector

	// Privileged marks every segment this Dispatcher runs for the host's
	// elevated-execution entry point, mirroring that entry point's
	// standing apart from ordinary dispatch rather than being a per-call
	// option.
	Privileged bool

	// current tracks the single executing segment so the interrupt
	// dispatcher can reach it (spec §3's CommandInfo; spec §5's "single
	// dedicated queue" means at most one runs at a time).
	current *runningInfo
}

type runningInfo struct {
	name   string
	handle runner.Handle
}

// New returns a Dispatcher.
func New(db *cmddb.DB, r runner.Runner, lookup CommandLookup, isInternal func(string) bool) *Dispatcher {
	return &Dispatcher{DB: db, Runner: r, Lookup: lookup, IsInternal: isInternal}
}

// segment is one `;`-bounded command, possibly itself a pipeline of
// `|`/`|&`-joined stages.
type segment struct {
	text   string
	headOK bool
	head   string
}

// Run validates res and executes each `;`-separated segment in order,
// returning the exit code of the last segment run (spec §4.8).
func (d *Dispatcher) Run(ctx context.Context, res tokenizer.Result, stdout, stderr *os.File) (int, error) {
	segments, notFound := d.assembleSegments(res)

	lastExit := 0
	for i, seg := range segments {
		if notFound[i] {
			fmt.Fprintf(stderr, "%s: command not found\n", seg.head)
			lastExit = 127
			continue
		}
		if seg.text == "" {
			continue
		}

		cmdline, segStdout, segStdin, closeFiles, err := d.resolveRedirect(seg.text, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			lastExit = 1
			continue
		}

		exit, err := d.runSegment(ctx, cmdline, segStdout, segStdin, stderr)
		closeFiles()
		if err != nil {
			return lastExit, err
		}
		lastExit = exit
	}
	return lastExit, nil
}

// assembleSegments groups tokens/delimiters into `;`-bounded segments,
// wrapping not-found/internal heads in a subshell per spec §4.8's piped
// branch, and reports which segments have an unresolvable head.
func (d *Dispatcher) assembleSegments(res tokenizer.Result) ([]segment, []bool) {
	var segments []segment
	var notFound []bool

	lo := 0
	var stageTexts []string
	var stageDelims []string
	piped := false

	flushCommand := func(hi int) {
		if hi <= lo && len(stageTexts) == 0 {
			segments = append(segments, segment{})
			notFound = append(notFound, false)
			return
		}
		stageTexts = append(stageTexts, d.renderStage(res, lo, hi))
		head := headToken(res, lo, hi)

		if !piped {
			known := head == "" || d.knownHead(head)
			segments = append(segments, segment{text: stageTexts[0], headOK: known, head: head})
			notFound = append(notFound, !known)
		} else {
			combined := strings.Join(applyWraps(stageTexts, stageDelims, d.needsWrap), "")
			segments = append(segments, segment{text: combined, headOK: true})
			notFound = append(notFound, false)
		}

		stageTexts = nil
		stageDelims = nil
		piped = false
	}

	for _, dl := range res.Delimiters {
		switch dl.Kind {
		case tokenizer.Pipe, tokenizer.PipeErrRedi:
			stageTexts = append(stageTexts, d.renderStage(res, lo, dl.LeftHi))
			stageDelims = append(stageDelims, dl.Kind.String())
			piped = true
			lo = dl.LeftHi
		case tokenizer.CommandSep:
			flushCommand(dl.LeftHi)
			lo = dl.LeftHi
		}
	}
	flushCommand(len(res.Tokens))

	return segments, notFound
}

// applyWraps interleaves stage texts and their trailing delimiters,
// wrapping any stage whose head needs a subshell.
func applyWraps(stages []string, delims []string, needsWrap func(string) bool) []string {
	out := make([]string, 0, len(stages)*2)
	for i, s := range stages {
		text := s
		if needsWrap(headWord(s)) {
			text = ShellName + " " + quoteArg(s)
		}
		out = append(out, text)
		if i < len(delims) {
			out = append(out, " "+delims[i]+" ")
		}
	}
	return out
}

func headWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func quoteArg(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// needsWrap reports whether head must be wrapped in a `ivish ...`
// subshell invocation when it appears mid-pipeline: an internal command,
// an unresolvable command, or ivish itself (spec §4.8).
func (d *Dispatcher) needsWrap(head string) bool {
	if head == "" {
		return false
	}
	if head == ShellName {
		return true
	}
	if d.IsInternal != nil && d.IsInternal(head) {
		return true
	}
	return !d.knownHead(head)
}

func (d *Dispatcher) knownHead(head string) bool {
	if head == "" {
		return true
	}
	if d.IsInternal != nil && d.IsInternal(head) {
		return true
	}
	if d.Lookup != nil {
		return d.Lookup(head)
	}
	return true
}

func headToken(res tokenizer.Result, lo, hi int) string {
	toks := res.TokensBetween(lo, hi)
	if len(toks) == 0 {
		return ""
	}
	return toks[0].Content
}

func (d *Dispatcher) renderStage(res tokenizer.Result, lo, hi int) string {
	toks := res.TokensBetween(lo, hi)
	if len(toks) == 0 {
		return ""
	}
	start := toks[0].Start
	end := toks[len(toks)-1].End + 1
	if start >= 0 && end <= len(res.Line) && start <= end {
		return res.Line[start:end]
	}
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Content
	}
	return strings.Join(parts, " ")
}

// resolveRedirect recognises spec §6's "Wire / redirect" shape on a
// segment's rendered text and opens the named file, returning the
// command text to actually run (parentheses and redirect stripped) and
// the stdout/stdin files the Command Runner should use.
func (d *Dispatcher) resolveRedirect(text string, defaultStdout *os.File) (cmdline string, stdout, stdin *os.File, closeFn func(), err error) {
	r, ok := parseRedirect(text)
	if !ok {
		return text, defaultStdout, nil, func() {}, nil
	}
	if r.path == "" {
		return r.inner, defaultStdout, nil, func() {}, nil
	}

	f, closeFile, err := r.openFiles()
	if err != nil {
		return "", nil, nil, func() {}, err
	}
	if r.write {
		return r.inner, f, nil, closeFile, nil
	}
	return r.inner, defaultStdout, f, closeFile, nil
}

// runSegment hands one assembled command string to the Command Runner,
// wiring geometry from the environment before each invocation and
// removing the running-command record afterward (spec §4.8). The
// terminal-mode selector (spec §4.9) is applied and restored around this
// one segment, keyed on its own head, so a mixed-mode `;`-separated line
// re-selects the mode for every segment in turn.
func (d *Dispatcher) runSegment(ctx context.Context, cmdline string, stdout, stdin, stderr *os.File) (int, error) {
	head := headWord(cmdline)

	restore := func() {}
	if d.ModeSel != nil {
		r, err := d.ModeSel.Apply(head)
		if err != nil {
			return 1, err
		}
		restore = r
	}
	defer restore()

	ws := envcfg.LoadWindowSize()
	inv := runner.Invocation{
		CommandLine: cmdline,
		Stdin:       stdin,
		Stdout:      stdout,
		Stderr:      stderr,
		Columns:     ws.Columns,
		Lines:       ws.Lines,
		Privileged:  d.Privileged,
	}

	handle, err := d.Runner.Run(ctx, inv)
	if err != nil {
		return 1, fmt.Errorf("dispatch: run %q: %w", cmdline, err)
	}

	d.current = &runningInfo{name: head, handle: handle}
	defer func() { d.current = nil }()

	return handle.Wait()
}

// Current returns the name and handle of the presently executing
// foreground command, used by the interrupt dispatcher (spec §4.7).
func (d *Dispatcher) Current() (string, runner.Handle, bool) {
	if d.current == nil {
		return "", nil, false
	}
	return d.current.name, d.current.handle, true
}
