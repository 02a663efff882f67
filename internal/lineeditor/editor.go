// Package lineeditor is the terminal I/O state machine of spec §4.3: it
// reads bytes, decodes control and escape sequences, mutates an
// EditBuffer, orchestrates redraw (hint, subline, error highlighting),
// and surfaces Line/Eof/Interrupt/Completion/IoError events to the shell
// loop.
//
// Grounded on the byte-at-a-time decode loop and ANSI redraw technique in
// _examples/other_examples/mattn-yagi__readline_unix.go, generalized into
// the bounded escape-sequence FSM spec §9 calls for, plus the hint/
// subline/completion machinery spec §4.3 adds on top.
package lineeditor

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"ivish/internal/ansi"
	"ivish/internal/completion"
	"ivish/internal/editbuffer"
	"ivish/internal/envcfg"
	"ivish/internal/history"
)

// ByteReader is the minimal surface the editor needs to read input
// (spec §2's Terminal I/O adapter).
type ByteReader interface {
	ReadByte() (byte, error)
}

// ByteWriter is the minimal surface the editor needs to write output.
type ByteWriter interface {
	WriteString(s string) error
}

// HintFunc produces the inline suggestion shown at the cursor, or "" for
// none (spec §4.3, "Hint" in the glossary).
type HintFunc func(before, after string) string

// SublineFunc produces the auxiliary line rendered below the prompt (e.g.
// an alias preview), or "" for none (spec glossary, "Subline").
type SublineFunc func(before, after string) string

// keptState is the retained EditBuffer snapshot carried across a
// Completion event, restored on the next ReadLine call (spec §4.3,
// glossary "Kept line state").
type keptState struct {
	text   string
	cursor int
}

// Editor is the line editor: it owns the EditBuffer and drives redraw,
// but not the Terminal (the shell constructs and owns that, per spec §3's
// ownership rules).
type Editor struct {
	in     ByteReader
	out    ByteWriter
	width  editbuffer.CellWidthFunc
	colors envcfg.Colors

	buf  *editbuffer.Buffer
	hist *history.Store

	Hint       HintFunc
	Subline    SublineFunc
	Completion completion.Provider

	oldCursorLoc int // cells, tracked across redraws
	sublineRows  int // rows of subline currently on screen, for clearing
	kept         *keptState

	escAccum []byte
	inEscape bool
}

// New constructs an Editor over in/out, using width for cell-width
// accounting and colors for syntax highlighting (spec §6 env vars). A nil
// width counts every rune as one cell.
func New(in ByteReader, out ByteWriter, width editbuffer.CellWidthFunc, hist *history.Store, colors envcfg.Colors) *Editor {
	if width == nil {
		width = func(rune) int { return 1 }
	}
	return &Editor{
		in:         in,
		out:        out,
		width:      width,
		colors:     colors,
		buf:        editbuffer.New(),
		hist:       hist,
		Completion: completion.NoopProvider{},
	}
}

// Buffer exposes the underlying edit buffer, e.g. so the shell can read
// it after an EventLine.
func (e *Editor) Buffer() *editbuffer.Buffer { return e.buf }

// ReadLine blocks, processing bytes until one of the events in spec §4.3
// is produced.
func (e *Editor) ReadLine() Event {
	if e.kept != nil {
		e.buf.ReplaceAll(e.kept.text)
		e.buf.MoveLeftBy(e.buf.Len() - e.kept.cursor)
		e.kept = nil
	} else {
		e.buf.Reset()
	}
	e.oldCursorLoc = 0
	e.sublineRows = 0

	if err := e.redraw(); err != nil {
		return Event{Kind: EventIOError, Err: err}
	}

	for {
		r, ok, err := e.nextRune()
		if err != nil {
			return Event{Kind: EventIOError, Err: err}
		}
		if !ok {
			continue // mid multi-byte sequence or mid escape lookahead
		}

		ev, handled := e.handleRune(r)
		if handled {
			return ev
		}
		if err := e.redraw(); err != nil {
			return Event{Kind: EventIOError, Err: err}
		}
	}
}

// nextRune reads one logical input unit: either a recognised escape
// sequence (packed into the private-use rune range by controlRune), or a
// decoded UTF-8 rune; ASCII control bytes come back as plain runes and
// handleRune maps them. ok is false while buffering a partial escape or
// multi-byte sequence.
func (e *Editor) nextRune() (rune, bool, error) {
	b, err := e.in.ReadByte()
	if err != nil {
		return 0, false, err
	}

	if e.inEscape {
		return e.stepEscape(b)
	}

	if b == 27 { // ESC
		e.inEscape = true
		e.escAccum = e.escAccum[:0]
		return 0, false, nil
	}

	if b < 0x80 {
		return rune(b), true, nil
	}

	// Multi-byte UTF-8 lead byte: accumulate continuation bytes.
	n := utf8SeqLen(b)
	buf := make([]byte, 1, n)
	buf[0] = b
	for len(buf) < n {
		cb, err := e.in.ReadByte()
		if err != nil {
			return 0, false, err
		}
		buf = append(buf, cb)
	}
	r, size := utf8.DecodeRune(buf)
	if r == utf8.RuneError && size <= 1 {
		return rune(b), true, nil
	}
	return r, true, nil
}

func utf8SeqLen(lead byte) int {
	switch {
	case lead&0xE0 == 0xC0:
		return 2
	case lead&0xF0 == 0xE0:
		return 3
	case lead&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}

// stepEscape accumulates bytes after ESC and resolves against
// escapeTable, per spec §4.3/§9's bounded FSM.
func (e *Editor) stepEscape(b byte) (rune, bool, error) {
	e.escAccum = append(e.escAccum, b)
	seq := string(e.escAccum)

	if ctrl, ok := escapeTable[seq]; ok {
		e.inEscape = false
		return controlRune(ctrl), true, nil
	}
	if escapeHasPrefix(seq) && len(e.escAccum) < maxEscapeLen {
		return 0, false, nil // keep buffering
	}

	// No prefix matches: discard. A lone ESC (escAccum now holding one
	// unmatched byte beyond ESC itself, or truly empty before this byte
	// arrived) resets the buffer to the history cache if browsing.
	e.inEscape = false
	if len(e.escAccum) == 1 {
		return controlRune(ctrlEscapeReset), true, nil
	}
	return 0, false, nil
}

// controlRune packs a control value into the private-use rune range so
// handleRune can dispatch both literal characters and decoded controls
// through one switch.
const controlRuneBase = 0xF0000

func controlRune(c control) rune { return rune(controlRuneBase + int(c)) }

func isControlRune(r rune) (control, bool) {
	if r >= controlRuneBase && r < controlRuneBase+0x1000 {
		return control(r - controlRuneBase), true
	}
	return ctrlNone, false
}

// handleRune applies one decoded input unit to the buffer or raises an
// event. handled is true iff ev should be returned immediately.
func (e *Editor) handleRune(r rune) (Event, bool) {
	if c, ok := isControlRune(r); ok {
		return e.handleControl(c)
	}
	if r < 0x20 || r == 0x7f {
		return e.handleControl(byteControl(byte(r)))
	}
	e.buf.InsertChar(r)
	return Event{}, false
}

func (e *Editor) handleControl(c control) (Event, bool) {
	switch c {
	case ctrlHome:
		e.buf.MoveHome()
	case ctrlEnd:
		e.buf.MoveEnd()
	case ctrlLeft:
		e.buf.MoveLeft()
	case ctrlRight:
		e.buf.MoveRight()
	case ctrlWordLeft:
		e.buf.MoveWordLeft()
	case ctrlWordRight:
		e.buf.MoveWordRight()
	case ctrlHistoryPrev:
		if e.hist != nil {
			e.hist.Prev(historyBuf{e.buf})
		}
	case ctrlHistoryNext:
		if e.hist != nil {
			e.hist.Next(historyBuf{e.buf})
		}
	case ctrlDeleteToHome:
		e.buf.DeleteToHome()
	case ctrlDeleteToEnd:
		e.buf.DeleteToEnd()
	case ctrlDeleteWordLeft:
		e.buf.DeleteWordLeft()
	case ctrlBackspace:
		e.buf.Backspace()
	case ctrlDeleteChar:
		e.buf.DeleteChar()
	case ctrlDeleteCharOrEOF:
		if e.buf.Len() == 0 {
			return Event{Kind: EventEOF}, true
		}
		e.buf.DeleteChar()
	case ctrlInterrupt:
		return Event{Kind: EventInterrupt}, true
	case ctrlAccept:
		line := e.buf.String()
		if line == "" {
			// Enter on an empty line still produces a Line event per
			// spec §4.3 ("Line(string) on Enter ... with non-empty
			// buffer" governs ^D, not Enter); an empty Enter just
			// re-prompts with an empty line.
			return Event{Kind: EventLine, Line: ""}, true
		}
		return Event{Kind: EventLine, Line: line}, true
	case ctrlCompletion:
		if ev, handled := e.complete(); handled {
			return ev, true
		}
	case ctrlEscapeReset:
		if e.hist != nil {
			e.hist.ResetToCache(historyBuf{e.buf})
		}
	case ctrlIgnored, ctrlNone:
		// beep: no-op, caller may choose to ring the bell
	}
	return Event{}, false
}

// historyBuf adapts *editbuffer.Buffer to history.EditBuffer.
type historyBuf struct{ b *editbuffer.Buffer }

func (h historyBuf) String() string     { return h.b.String() }
func (h historyBuf) ReplaceAll(s string) { h.b.ReplaceAll(s) }

// complete implements spec §4.3's Tab handling.
func (e *Editor) complete() (Event, bool) {
	before := e.buf.Before()
	res, err := e.Completion.Complete(before)
	if err != nil || len(res.Candidates) == 0 {
		return Event{}, false
	}

	if len(res.Candidates) == 1 {
		e.applyCompletion(res.Info, res.Candidates[0], true)
		return Event{}, false
	}

	if res.CommonPrefix != "" {
		// Only the prefix is inserted here (spec §4.3): the trailing-space
		// rule is scoped to the exactly-one-candidate case, so a shared
		// prefix among several candidates must not be treated as if the
		// word were complete.
		e.applyCompletion(res.Info, res.Info.Pattern+res.CommonPrefix, false)
	}
	e.kept = &keptState{text: e.buf.String(), cursor: e.buf.Cursor()}
	return Event{Kind: EventCompletion, Completion: res}, true
}

// applyCompletion replaces the matched pattern with replacement. When
// appendSpace is set, it appends a trailing space unless replacement ends
// with '/' or the cursor isn't at end-of-line (spec §4.3's single-candidate
// rule); the common-prefix case passes appendSpace false.
func (e *Editor) applyCompletion(info completion.Info, replacement string, appendSpace bool) {
	full := e.buf.String()
	runes := []rune(full)
	if info.Start < 0 || info.End > len(runes) || info.Start > info.End {
		return
	}
	atEOL := e.buf.Cursor() == e.buf.Len()

	newText := string(runes[:info.Start]) + replacement
	tailStart := info.End
	if appendSpace && !strings.HasSuffix(replacement, "/") && atEOL {
		newText += " "
	}
	newCursor := len([]rune(newText))
	newText += string(runes[tailStart:])

	e.buf.ReplaceAll(newText)
	e.buf.MoveLeftBy(e.buf.Len() - newCursor)
}

// redraw implements the nine-step algorithm of spec §4.3.
func (e *Editor) redraw() error {
	line := e.buf.String()
	before := e.buf.Before()
	after := e.buf.After()

	hints := computeHints(line, e.colors)
	beforeHints, atOrAfterHints := splitHints(hints, len(before))

	widthBefore := e.buf.WidthBeforeCursor(e.width)
	widthAfter := e.buf.WidthAfterCursor(e.width)

	var seq strings.Builder
	seq.WriteString(ansi.CursorBackward(e.oldCursorLoc))
	seq.WriteString(renderColored(before, 0, beforeHints))
	seq.WriteString(ansi.EraseRight())
	seq.WriteString(ansi.CursorBackward(widthBefore))
	seq.WriteString(ansi.CursorForward(widthBefore))

	hintText := ""
	atCursor, hasNext := e.buf.CharAtCursor()
	if e.Hint != nil && (!hasNext || unicode.IsSpace(atCursor)) {
		hintText = e.Hint(before, after)
	}
	hintWidth := 0
	if hintText != "" {
		seq.WriteString(ansi.Fg8(0, false, hintText)) // dim suggestion, conventionally styled
		hintWidth = sumRuneWidth(hintText, e.width)
	}

	seq.WriteString(renderColored(after, len(before), atOrAfterHints))
	seq.WriteString(ansi.CursorBackward(hintWidth + widthAfter))

	e.writeSubline(&seq, before, after)

	e.oldCursorLoc = widthBefore

	return e.out.WriteString(seq.String())
}

func sumRuneWidth(s string, width editbuffer.CellWidthFunc) int {
	total := 0
	for _, r := range s {
		total += width(r)
	}
	return total
}

// writeSubline clears any previously shown subline rows and, if
// e.Subline produces text, writes it below the prompt and restores the
// cursor, per spec §4.3 step 9.
func (e *Editor) writeSubline(seq *strings.Builder, before, after string) {
	if e.sublineRows > 0 {
		seq.WriteString(ansi.SaveCursor())
		for i := 0; i < e.sublineRows; i++ {
			seq.WriteString(ansi.CursorNextLine(1))
			seq.WriteString(ansi.EraseLine())
		}
		seq.WriteString(ansi.RestoreCursor())
	}

	if e.Subline == nil {
		e.sublineRows = 0
		return
	}
	text := e.Subline(before, after)
	if text == "" {
		e.sublineRows = 0
		return
	}

	rows := strings.Count(text, "\n") + 1
	seq.WriteString(ansi.SaveCursor())
	seq.WriteString(ansi.ScrollUp(rows))
	seq.WriteString(ansi.CursorNextLine(1))
	seq.WriteString(text)
	seq.WriteString(ansi.RestoreCursor())
	e.sublineRows = rows
}
