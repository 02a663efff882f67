package lineeditor

import (
	"errors"
	"io"
	"testing"

	"ivish/internal/completion"
	"ivish/internal/envcfg"
	"ivish/internal/history"
)

// fakeReader replays a fixed byte sequence, returning io.EOF once exhausted.
type fakeReader struct {
	data []byte
	pos  int
}

func (f *fakeReader) ReadByte() (byte, error) {
	if f.pos >= len(f.data) {
		return 0, io.EOF
	}
	b := f.data[f.pos]
	f.pos++
	return b, nil
}

type discardWriter struct{}

func (discardWriter) WriteString(s string) error { return nil }

func newTestEditor(input string) *Editor {
	return New(&fakeReader{data: []byte(input)}, discardWriter{}, nil, history.New(10), envcfg.Colors{})
}

func TestReadLineProducesLineOnEnter(t *testing.T) {
	e := newTestEditor("echo hi\r")
	ev := e.ReadLine()
	if ev.Kind != EventLine {
		t.Fatalf("Kind = %v, want EventLine", ev.Kind)
	}
	if ev.Line != "echo hi" {
		t.Fatalf("Line = %q, want %q", ev.Line, "echo hi")
	}
}

func TestEnterOnEmptyLineStillProducesLineEvent(t *testing.T) {
	e := newTestEditor("\r")
	ev := e.ReadLine()
	if ev.Kind != EventLine || ev.Line != "" {
		t.Fatalf("ev = %+v, want empty EventLine", ev)
	}
}

func TestCtrlDOnEmptyBufferRaisesEOF(t *testing.T) {
	e := newTestEditor("\x04")
	ev := e.ReadLine()
	if ev.Kind != EventEOF {
		t.Fatalf("Kind = %v, want EventEOF", ev.Kind)
	}
}

func TestCtrlDWithTextForwardDeletesInsteadOfSubmitting(t *testing.T) {
	// "ab", Home (^A) to put the cursor at the start, ^D to delete 'a',
	// then Enter to observe the result without EOF firing.
	e := newTestEditor("ab\x01\x04\r")
	ev := e.ReadLine()
	if ev.Kind != EventLine {
		t.Fatalf("Kind = %v, want EventLine (Ctrl-D with text must not raise EOF)", ev.Kind)
	}
	if ev.Line != "b" {
		t.Fatalf("Line = %q, want %q", ev.Line, "b")
	}
}

func TestCtrlCRaisesInterrupt(t *testing.T) {
	e := newTestEditor("abc\x03")
	ev := e.ReadLine()
	if ev.Kind != EventInterrupt {
		t.Fatalf("Kind = %v, want EventInterrupt", ev.Kind)
	}
}

func TestBackspaceRemovesPriorChar(t *testing.T) {
	e := newTestEditor("ab\x7f\r") // DEL = backspace
	ev := e.ReadLine()
	if ev.Line != "a" {
		t.Fatalf("Line = %q, want %q", ev.Line, "a")
	}
}

func TestHistoryPrevRecallsEntry(t *testing.T) {
	hist := history.New(10)
	hist.Add("ls -la")
	e := New(&fakeReader{data: []byte("\x10\r")}, discardWriter{}, nil, hist, envcfg.Colors{})
	ev := e.ReadLine()
	if ev.Line != "ls -la" {
		t.Fatalf("Line = %q, want %q", ev.Line, "ls -la")
	}
}

func TestEscapeArrowUpRecallsHistory(t *testing.T) {
	hist := history.New(10)
	hist.Add("pwd")
	e := New(&fakeReader{data: []byte("\x1b[A\r")}, discardWriter{}, nil, hist, envcfg.Colors{})
	ev := e.ReadLine()
	if ev.Line != "pwd" {
		t.Fatalf("Line = %q, want %q", ev.Line, "pwd")
	}
}

func TestMultiByteRuneInsertedWhole(t *testing.T) {
	e := newTestEditor("aéb\r") // 'é' is two UTF-8 bytes
	ev := e.ReadLine()
	if ev.Line != "aéb" {
		t.Fatalf("Line = %q, want %q", ev.Line, "aéb")
	}
}

func TestIOErrorPropagatesFromReader(t *testing.T) {
	boom := errors.New("boom")
	r := &errReader{err: boom}
	e := New(r, discardWriter{}, nil, history.New(10), envcfg.Colors{})
	ev := e.ReadLine()
	if ev.Kind != EventIOError {
		t.Fatalf("Kind = %v, want EventIOError", ev.Kind)
	}
	if !errors.Is(ev.Err, boom) {
		t.Fatalf("Err = %v, want %v", ev.Err, boom)
	}
}

type errReader struct{ err error }

func (r *errReader) ReadByte() (byte, error) { return 0, r.err }

func TestTabWithSingleCandidateCompletesInline(t *testing.T) {
	e := newTestEditor("ls \tfoo.txt\r")
	e.Completion = singleCandidateProvider{candidate: "file.txt", start: 3, end: 3}
	ev := e.ReadLine()
	if ev.Kind != EventLine {
		t.Fatalf("Kind = %v, want EventLine", ev.Kind)
	}
	if ev.Line != "ls file.txt foo.txt" {
		t.Fatalf("Line = %q", ev.Line)
	}
}

type singleCandidateProvider struct {
	candidate  string
	start, end int
}

func (p singleCandidateProvider) Complete(beforeCursor string) (completion.Result, error) {
	return completion.Result{
		Info:       completion.Info{Site: completion.SiteFilename, Start: p.start, End: p.end},
		Candidates: []string{p.candidate},
	}, nil
}

// TestTabWithCommonPrefixInsertsPrefixOnlyNoTrailingSpace exercises the
// multi-candidate CommonPrefix branch of complete(): spec §4.3 scopes the
// trailing-space rule to the exactly-one-candidate case, so "fo" completing
// to the shared prefix "foo" among "foo"/"food" must leave the cursor
// immediately after "foo", not "foo ".
func TestTabWithCommonPrefixInsertsPrefixOnlyNoTrailingSpace(t *testing.T) {
	e := newTestEditor("ls fo\t")
	e.Completion = commonPrefixProvider{pattern: "fo", commonPrefix: "o", candidates: []string{"foo", "food"}, start: 3, end: 5}
	ev := e.ReadLine()
	if ev.Kind != EventCompletion {
		t.Fatalf("Kind = %v, want EventCompletion", ev.Kind)
	}
	if got := e.buf.String(); got != "ls foo" {
		t.Fatalf("buffer = %q, want %q (no trailing space after a common-prefix completion)", got, "ls foo")
	}
}

type commonPrefixProvider struct {
	pattern, commonPrefix string
	candidates            []string
	start, end            int
}

func (p commonPrefixProvider) Complete(beforeCursor string) (completion.Result, error) {
	return completion.Result{
		Info:         completion.Info{Site: completion.SiteFilename, Start: p.start, End: p.end, Pattern: p.pattern},
		Candidates:   p.candidates,
		CommonPrefix: p.commonPrefix,
	}, nil
}
