// Package ansi builds the escape sequences the line editor emits to move
// the cursor, erase text and colour output on a terminal, per spec §6.
package ansi

import "fmt"

const esc = "\x1b["

// CursorForward moves the cursor right by n cells. n <= 0 is a no-op.
func CursorForward(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%s%dC", esc, n)
}

// CursorBackward moves the cursor left by n cells. n <= 0 is a no-op.
func CursorBackward(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%s%dD", esc, n)
}

// CursorUp moves the cursor up n rows.
func CursorUp(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%s%dA", esc, n)
}

// CursorDown moves the cursor down n rows.
func CursorDown(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%s%dB", esc, n)
}

// CursorNextLine moves the cursor down n rows to column 1.
func CursorNextLine(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%s%dE", esc, n)
}

// CursorPrevLine moves the cursor up n rows to column 1.
func CursorPrevLine(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%s%dF", esc, n)
}

// CursorColumn moves the cursor to the 1-based column n.
func CursorColumn(n int) string {
	return fmt.Sprintf("%s%dG", esc, n)
}

// EraseRight erases from the cursor to the end of the line.
func EraseRight() string {
	return esc + "0K"
}

// EraseLine erases the entire current cursor row.
func EraseLine() string {
	return esc + "2K"
}

// ClearScreen clears the screen and scrollback-visible area.
func ClearScreen() string {
	return esc + "2J"
}

// CursorHome moves the cursor to row 1, column 1.
func CursorHome() string {
	return esc + "H"
}

// SaveCursor saves the current cursor position.
func SaveCursor() string {
	return esc + "s"
}

// RestoreCursor restores the most recently saved cursor position.
func RestoreCursor() string {
	return esc + "u"
}

// ScrollUp scrolls the viewport up by n lines.
func ScrollUp(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%s%dS", esc, n)
}

// ScrollDown scrolls the viewport down by n lines.
func ScrollDown(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%s%dT", esc, n)
}

// QueryCursorPosition requests the terminal report the cursor location; the
// reply arrives on the input stream as `ESC[row;colR`.
func QueryCursorPosition() string {
	return esc + "6n"
}

// Reset clears any active foreground colour / bold attribute.
func Reset() string {
	return esc + "0m"
}

// Fg8 wraps s in an 8-colour (30-37) ANSI foreground escape, bold optional.
func Fg8(color int, bold bool, s string) string {
	if s == "" {
		return s
	}
	attr := fmt.Sprintf("%d", 30+color%8)
	if bold {
		attr = "1;" + attr
	}
	return fmt.Sprintf("%s%sm%s%s", esc, attr, s, Reset())
}

// Fg256 wraps s in a 256-colour ANSI foreground escape, bold optional. This
// is how the line editor renders unfinished-quote and invalid-delimiter
// hints (spec §4.3, §6).
func Fg256(color int, bold bool, s string) string {
	if s == "" {
		return s
	}
	if bold {
		return fmt.Sprintf("%s1;38;5;%dm%s%s", esc, color, s, Reset())
	}
	return fmt.Sprintf("%s38;5;%dm%s%s", esc, color, s, Reset())
}
