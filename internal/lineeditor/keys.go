package lineeditor

// control names a decoded control code or recognised escape sequence,
// spec §4.3.
type control int

const (
	ctrlNone control = iota
	ctrlHome
	ctrlEnd
	ctrlLeft
	ctrlRight
	ctrlWordLeft
	ctrlWordRight
	ctrlHistoryPrev
	ctrlHistoryNext
	ctrlDeleteToHome
	ctrlDeleteToEnd
	ctrlDeleteWordLeft
	ctrlBackspace
	ctrlDeleteChar
	ctrlDeleteCharOrEOF
	ctrlInterrupt
	ctrlAccept
	ctrlCompletion
	ctrlEscapeReset
	ctrlIgnored
)

// byteControl maps the ASCII control bytes spec §4.3 names by convention.
// ASCII 1-31 and 127 are control codes; everything else printable is
// inserted.
func byteControl(b byte) control {
	switch b {
	case 1: // ^A
		return ctrlHome
	case 2: // ^B
		return ctrlLeft
	case 4: // ^D
		return ctrlDeleteCharOrEOF
	case 5: // ^E
		return ctrlEnd
	case 6: // ^F
		return ctrlRight
	case 8, 127: // ^H, DEL
		return ctrlBackspace
	case 9: // Tab
		return ctrlCompletion
	case 10, 13: // \n, \r (Enter)
		return ctrlAccept
	case 11: // ^K
		return ctrlDeleteToEnd
	case 14: // ^N
		return ctrlHistoryNext
	case 16: // ^P
		return ctrlHistoryPrev
	case 20: // ^T
		return ctrlWordLeft
	case 21: // ^U
		return ctrlDeleteToHome
	case 23: // ^W
		return ctrlDeleteWordLeft
	case 25: // ^Y
		return ctrlWordRight
	case 3: // ^C
		return ctrlInterrupt
	default:
		return ctrlNone
	}
}

// escapeTable recognises the ESC-prefixed sequences of spec §4.3. Keys are
// the bytes following ESC, up to 3 characters.
var escapeTable = map[string]control{
	"[A":  ctrlHistoryPrev,
	"[B":  ctrlHistoryNext,
	"[C":  ctrlRight,
	"[D":  ctrlLeft,
	"[H":  ctrlHome,
	"OH":  ctrlHome,
	"[F":  ctrlEnd,
	"OF":  ctrlEnd,
	"[1~": ctrlHome,
	"[7~": ctrlHome,
	"[3~": ctrlDeleteChar,
	"[4~": ctrlEnd,
}

// maxEscapeLen is the longest key in escapeTable, bounding how many
// follow-up bytes the decoder reads after ESC (spec §9's design note).
const maxEscapeLen = 3

// escapeHasPrefix reports whether any table key starts with seq, i.e.
// whether reading one more byte could still complete a match.
func escapeHasPrefix(seq string) bool {
	if _, ok := escapeTable[seq]; ok {
		return true
	}
	for k := range escapeTable {
		if len(k) > len(seq) && k[:len(seq)] == seq {
			return true
		}
	}
	return false
}
