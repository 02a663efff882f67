// Package termio is the terminal I/O adapter: it reads bytes from an
// input descriptor, writes bytes to an output descriptor, owns raw-mode
// configuration, and exposes a cell-width query (spec §2). Grounded on
// the teacher's cli.go raw-terminal handling and on the syscall-level
// technique in _examples/other_examples/mattn-yagi__readline_unix.go,
// using golang.org/x/term (already exercised by several repos in the
// retrieval pack) instead of hand-rolled termios ioctls.
package termio

import (
	"io"
	"os"

	"golang.org/x/term"

	"ivish/internal/editbuffer"
	"ivish/internal/envcfg"
)

// Terminal owns an input/output file pair and its raw-mode state.
type Terminal struct {
	in     *os.File
	out    io.Writer
	state  *term.State
	isRaw  bool
	width  editbuffer.CellWidthFunc
}

// New wraps in/out. width is the Cell Width Function the host supplies
// (spec §9's design note); if nil, DefaultCellWidth is used.
func New(in *os.File, out io.Writer, width editbuffer.CellWidthFunc) *Terminal {
	if width == nil {
		width = DefaultCellWidth
	}
	return &Terminal{in: in, out: out, width: width}
}

// EnableRaw puts the input descriptor into raw mode: no local echo, no
// line buffering, so every keystroke reaches the line editor immediately.
func (t *Terminal) EnableRaw() error {
	if t.isRaw {
		return nil
	}
	state, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		return err
	}
	t.state = state
	t.isRaw = true
	return nil
}

// DisableRaw restores the terminal's previous mode, used by the terminal-
// mode selector (spec §4.9) when handing the foreground to a command that
// wants cooked input, and on shell exit.
func (t *Terminal) DisableRaw() error {
	if !t.isRaw || t.state == nil {
		return nil
	}
	err := term.Restore(int(t.in.Fd()), t.state)
	t.isRaw = false
	t.state = nil
	return err
}

// IsRaw reports whether the terminal is currently in raw mode.
func (t *Terminal) IsRaw() bool { return t.isRaw }

// ReadByte reads a single byte from the input descriptor, blocking until
// one is available. This is the suspension point spec §5 calls out for
// the reader task.
func (t *Terminal) ReadByte() (byte, error) {
	var b [1]byte
	n, err := t.in.Read(b[:])
	if n == 0 && err == nil {
		err = io.ErrUnexpectedEOF
	}
	return b[0], err
}

// Write writes p to the output descriptor, blocking until fully written.
func (t *Terminal) Write(p []byte) (int, error) {
	return t.out.Write(p)
}

// WriteString is a convenience wrapper around Write.
func (t *Terminal) WriteString(s string) error {
	_, err := t.Write([]byte(s))
	return err
}

// CellWidth returns the number of terminal columns r occupies, via the
// injected Cell Width Function.
func (t *Terminal) CellWidth(r rune) int {
	return t.width(r)
}

// Size returns the current terminal geometry, falling back to the
// COLUMNS/LINES environment variables when the ioctl fails (e.g. the
// descriptor isn't a real TTY), matching spec §4.8's geometry derivation.
func (t *Terminal) Size() (cols, lines int, err error) {
	cols, lines, err = term.GetSize(int(t.in.Fd()))
	if err != nil {
		ws := envcfg.LoadWindowSize()
		return ws.Columns, ws.Lines, nil
	}
	return cols, lines, nil
}

// IsTerminal reports whether in is connected to a real terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// DefaultCellWidth is the fallback Cell Width Function used when the host
// supplies none: ASCII control characters (below U+0020, and DEL) and the
// U+0300-U+036F combining diacritics occupy zero cells, every other rune
// occupies one (wide characters included). This is intentionally simplistic;
// spec §1 delegates real Unicode width accounting to the host.
func DefaultCellWidth(r rune) int {
	switch {
	case r < 0x20 || r == 0x7f:
		return 0
	case r >= 0x0300 && r <= 0x036f: // combining diacritics
		return 0
	default:
		return 1
	}
}
