// Package editbuffer holds the logical text under edit and its cursor.
// It is pure data: no I/O, no terminal knowledge, per spec §3/§4.2.
package editbuffer

import "unicode"

// CellWidthFunc measures how many terminal columns a rune occupies. The
// line editor injects this (spec §9's design note on the cell-width
// function); EditBuffer treats it as a pure function. Grounded directly
// on the original product's cells_caculator(int) host callback, which
// this type's int-in/int-out shape matches rune-for-codepoint.
type CellWidthFunc func(r rune) int

// Buffer is the logical text under edit plus a cursor, measured in
// characters (runes), never in bytes or terminal cells.
type Buffer struct {
	text   []rune
	cursor int
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{}
}

// Reset clears the buffer and moves the cursor to 0.
func (b *Buffer) Reset() {
	b.text = b.text[:0]
	b.cursor = 0
}

// ReplaceAll replaces the entire buffer content and moves the cursor to the
// end of the new text.
func (b *Buffer) ReplaceAll(s string) {
	b.text = []rune(s)
	b.cursor = len(b.text)
}

// String returns the full buffer content.
func (b *Buffer) String() string {
	return string(b.text)
}

// Before returns the buffer content up to (not including) the cursor.
func (b *Buffer) Before() string {
	return string(b.text[:b.cursor])
}

// After returns the buffer content from the cursor to the end.
func (b *Buffer) After() string {
	return string(b.text[b.cursor:])
}

// Len returns the number of characters in the buffer.
func (b *Buffer) Len() int {
	return len(b.text)
}

// Cursor returns the current cursor position.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// CharAtCursor returns the rune at the cursor and true, or (0, false) when
// the cursor is at end-of-line.
func (b *Buffer) CharAtCursor() (rune, bool) {
	if b.cursor >= len(b.text) {
		return 0, false
	}
	return b.text[b.cursor], true
}

// InsertChar inserts r at the cursor and advances the cursor past it. It
// never splits a multi-byte UTF-8 rune because it operates in whole-rune
// units; a grapheme cluster made of several runes (e.g. a base letter
// plus a combining mark) is not treated as one unit.
func (b *Buffer) InsertChar(r rune) {
	b.text = append(b.text, 0)
	copy(b.text[b.cursor+1:], b.text[b.cursor:])
	b.text[b.cursor] = r
	b.cursor++
}

// Backspace deletes the character immediately before the cursor. Returns
// true if a character was deleted.
func (b *Buffer) Backspace() bool {
	if b.cursor == 0 {
		return false
	}
	b.text = append(b.text[:b.cursor-1], b.text[b.cursor:]...)
	b.cursor--
	return true
}

// DeleteChar deletes the character at the cursor. Returns true if a
// character was deleted.
func (b *Buffer) DeleteChar() bool {
	if b.cursor >= len(b.text) {
		return false
	}
	b.text = append(b.text[:b.cursor], b.text[b.cursor+1:]...)
	return true
}

// MoveHome moves the cursor to position 0. Returns true if it moved.
func (b *Buffer) MoveHome() bool {
	if b.cursor == 0 {
		return false
	}
	b.cursor = 0
	return true
}

// MoveEnd moves the cursor to the end of the buffer. Returns true if it
// moved.
func (b *Buffer) MoveEnd() bool {
	if b.cursor == len(b.text) {
		return false
	}
	b.cursor = len(b.text)
	return true
}

// MoveLeft moves the cursor one character left. Returns true if it moved.
func (b *Buffer) MoveLeft() bool {
	if b.cursor == 0 {
		return false
	}
	b.cursor--
	return true
}

// MoveRight moves the cursor one character right. Returns true if it
// moved.
func (b *Buffer) MoveRight() bool {
	if b.cursor >= len(b.text) {
		return false
	}
	b.cursor++
	return true
}

// MoveLeftBy moves the cursor left by up to n characters, clamped to 0.
// Returns true if it moved.
func (b *Buffer) MoveLeftBy(n int) bool {
	if n <= 0 || b.cursor == 0 {
		return false
	}
	moved := n
	if moved > b.cursor {
		moved = b.cursor
	}
	b.cursor -= moved
	return true
}

func isSpace(r rune) bool { return unicode.IsSpace(r) }

// MoveWordLeft skips a run of whitespace then a run of non-whitespace,
// moving left. Returns true if it moved.
func (b *Buffer) MoveWordLeft() bool {
	if b.cursor == 0 {
		return false
	}
	i := b.cursor
	for i > 0 && isSpace(b.text[i-1]) {
		i--
	}
	for i > 0 && !isSpace(b.text[i-1]) {
		i--
	}
	if i == b.cursor {
		return false
	}
	b.cursor = i
	return true
}

// MoveWordRight skips a run of whitespace then a run of non-whitespace,
// moving right. Returns true if it moved.
func (b *Buffer) MoveWordRight() bool {
	n := len(b.text)
	if b.cursor >= n {
		return false
	}
	i := b.cursor
	for i < n && isSpace(b.text[i]) {
		i++
	}
	for i < n && !isSpace(b.text[i]) {
		i++
	}
	if i == b.cursor {
		return false
	}
	b.cursor = i
	return true
}

// DeleteWordLeft deletes the word (and any preceding whitespace run)
// immediately to the left of the cursor. Returns true if anything was
// deleted.
func (b *Buffer) DeleteWordLeft() bool {
	start := b.cursor
	if !b.MoveWordLeft() {
		return false
	}
	b.text = append(b.text[:b.cursor], b.text[start:]...)
	return true
}

// DeleteToHome deletes everything from the start of the buffer to the
// cursor. Returns true if anything was deleted.
func (b *Buffer) DeleteToHome() bool {
	if b.cursor == 0 {
		return false
	}
	b.text = append([]rune{}, b.text[b.cursor:]...)
	b.cursor = 0
	return true
}

// DeleteToEnd deletes everything from the cursor to the end of the buffer.
// Returns true if anything was deleted.
func (b *Buffer) DeleteToEnd() bool {
	if b.cursor >= len(b.text) {
		return false
	}
	b.text = b.text[:b.cursor]
	return true
}

// WidthBeforeCursor sums the cell width function over the text before the
// cursor.
func (b *Buffer) WidthBeforeCursor(width CellWidthFunc) int {
	return sumWidth(b.text[:b.cursor], width)
}

// WidthAfterCursor sums the cell width function over the text from the
// cursor to the end.
func (b *Buffer) WidthAfterCursor(width CellWidthFunc) int {
	return sumWidth(b.text[b.cursor:], width)
}

// Width sums the cell width function over the entire buffer.
func (b *Buffer) Width(width CellWidthFunc) int {
	return sumWidth(b.text, width)
}

func sumWidth(rs []rune, width CellWidthFunc) int {
	total := 0
	for _, r := range rs {
		total += width(r)
	}
	return total
}
