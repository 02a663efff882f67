package dispatch

import (
	"context"
	"os"
	"testing"

	"ivish/internal/cmddb"
	"ivish/internal/runner"
	"ivish/internal/tokenizer"
)

// fakeTerminal is a rawTerminal that never touches a real fd, so tests can
// exercise mode selection without a tty.
type fakeTerminal struct {
	raw        bool
	enableErr  error
	disableErr error
}

func (f *fakeTerminal) EnableRaw() error {
	if f.enableErr != nil {
		return f.enableErr
	}
	f.raw = true
	return nil
}

func (f *fakeTerminal) DisableRaw() error {
	if f.disableErr != nil {
		return f.disableErr
	}
	f.raw = false
	return nil
}

func (f *fakeTerminal) IsRaw() bool { return f.raw }

func TestModeSelectorAppliesAndRestoresRawMode(t *testing.T) {
	db := rawCmdDB(t, "vim")
	term := &fakeTerminal{}
	m := &ModeSelector{DB: db, Term: term}

	restore, err := m.Apply("vim")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !term.raw {
		t.Fatalf("expected raw mode to be enabled for vim")
	}
	restore()
	if term.raw {
		t.Fatalf("expected restore to disable raw mode")
	}
}

func TestModeSelectorLineModeIsNoopWhenAlreadyLine(t *testing.T) {
	db := rawCmdDB(t, "vim")
	term := &fakeTerminal{}
	m := &ModeSelector{DB: db, Term: term}

	restore, err := m.Apply("cat")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if term.raw {
		t.Fatalf("expected cat (default line mode) to leave the terminal out of raw mode")
	}
	restore()
	if term.raw {
		t.Fatalf("restore should remain a no-op")
	}
}

// rawTermRunner records whether the terminal was in raw mode at the moment
// each invocation's head started running.
type rawTermRunner struct {
	term      *fakeTerminal
	rawAtHead map[string]bool
}

func (r *rawTermRunner) Run(ctx context.Context, inv runner.Invocation) (runner.Handle, error) {
	head := headWord(inv.CommandLine)
	if r.rawAtHead == nil {
		r.rawAtHead = map[string]bool{}
	}
	r.rawAtHead[head] = r.term.raw
	return &fakeHandle{exit: 0}, nil
}

// TestPerSegmentModeSelectionNotPerLine guards against the bug where mode
// selection was applied once for the whole line, keyed on the line's first
// token: a line mixing a raw-mode command and a line-mode command must
// re-select the mode for each `;`-separated segment.
func TestPerSegmentModeSelectionNotPerLine(t *testing.T) {
	db := rawCmdDB(t, "less")
	term := &fakeTerminal{}
	r := &rawTermRunner{term: term}

	d := New(db, r, func(string) bool { return true }, func(string) bool { return false })
	d.ModeSel = &ModeSelector{DB: db, Term: term}

	res := tokenizer.Tokenize("less foo ; cat bar")
	devNull, _ := os.Open(os.DevNull)
	defer devNull.Close()

	if _, err := d.Run(context.Background(), res, devNull, devNull); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !r.rawAtHead["less"] {
		t.Fatalf("expected raw mode to be active while less ran")
	}
	if r.rawAtHead["cat"] {
		t.Fatalf("expected raw mode to have been restored before cat ran, not left on for the whole line")
	}
	if term.raw {
		t.Fatalf("expected raw mode to be restored after the line finished")
	}
}

// TestModeSelectionSkippedForBuiltinHeadsStillAppliesToLaterSegments
// guards against the other half of the bug: a line whose first segment is
// a builtin (which the shell loop never hands to the dispatcher at all)
// must not prevent a later segment's mode from being selected, since each
// segment now selects its own mode independently inside the dispatcher.
func TestModeSelectionSkippedForBuiltinHeadsStillAppliesToLaterSegments(t *testing.T) {
	db := rawCmdDB(t, "less")
	term := &fakeTerminal{}
	r := &rawTermRunner{term: term}

	// "alias" stands in for a builtin the shell loop would normally
	// intercept before ever reaching the dispatcher; what matters here is
	// that "less" in the second segment still gets raw mode applied.
	d := New(db, r, func(string) bool { return true }, func(name string) bool { return name == "alias" })
	d.ModeSel = &ModeSelector{DB: db, Term: term}

	res := tokenizer.Tokenize("alias ; less foo")
	devNull, _ := os.Open(os.DevNull)
	defer devNull.Close()

	if _, err := d.Run(context.Background(), res, devNull, devNull); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !r.rawAtHead["less"] {
		t.Fatalf("expected raw mode to be active while less ran, even though the first segment was a builtin")
	}
}

func rawCmdDB(t *testing.T, rawCommands ...string) *cmddb.DB {
	t.Helper()
	dir := t.TempDir()
	path := dir + "/cmddb.yaml"

	content := ""
	for _, c := range rawCommands {
		content += c + ":\n  termmode: raw\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	db, err := cmddb.Load(path)
	if err != nil {
		t.Fatalf("cmddb.Load: %v", err)
	}
	return db
}
