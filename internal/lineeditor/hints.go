package lineeditor

import (
	"ivish/internal/ansi"
	"ivish/internal/envcfg"
	"ivish/internal/tokenizer"
)

// hintItem is a single (byte position, colour) pair the tokenizer
// surfaced for syntax highlighting, per spec §4.3.
type hintItem struct {
	position int
	color    int
}

// computeHints tokenizes line and returns the hint items for invalid
// delimiters and an unfinished quote, per spec §4.1/§4.3.
func computeHints(line string, colors envcfg.Colors) []hintItem {
	res := tokenizer.Tokenize(line)
	var items []hintItem

	for _, d := range res.InvalidDelimiters() {
		switch d.Kind {
		case tokenizer.Pipe, tokenizer.PipeErrRedi:
			items = append(items, hintItem{position: d.Position, color: colors.InvalidPipeDelimiter})
		case tokenizer.CommandSep:
			items = append(items, hintItem{position: d.Position, color: colors.InvalidCommandSeparator})
		}
	}

	if res.UnfinishedEscape != nil {
		items = append(items, hintItem{
			position: res.UnfinishedEscape.StartPosition,
			color:    colors.UnfinishedQuote,
		})
	}

	return items
}

// splitHints partitions items into those strictly before cursorByte and
// those at or after it, per spec §4.3's "one list for positions before
// the cursor, one for at or after".
func splitHints(items []hintItem, cursorByte int) (before, atOrAfter []hintItem) {
	for _, it := range items {
		if it.position < cursorByte {
			before = append(before, it)
		} else {
			atOrAfter = append(atOrAfter, it)
		}
	}
	return
}

// colorAt returns the configured colour for byte offset pos among items,
// and whether one was found.
func colorAt(items []hintItem, pos int) (int, bool) {
	for _, it := range items {
		if it.position == pos {
			return it.color, true
		}
	}
	return 0, false
}

// renderColored renders s (a slice of the buffer starting at byte offset
// startByte within the full line) wrapping each hinted character in a
// 256-colour ANSI foreground escape.
func renderColored(s string, startByte int, items []hintItem) string {
	if len(items) == 0 {
		return s
	}
	out := make([]byte, 0, len(s)+8)
	offset := startByte
	for _, r := range s {
		rs := string(r)
		if color, ok := colorAt(items, offset); ok {
			out = append(out, []byte(ansi.Fg256(color, false, rs))...)
		} else {
			out = append(out, []byte(rs)...)
		}
		offset += len(rs)
	}
	return string(out)
}
