// Package alias implements the name-to-replacement expansion engine of
// spec §4.5: cycle-broken DFS expansion, "chain next word" semantics and
// the alias name-validity and single-quoting rules.
//
// Grounded on the teacher's validation/custom_rule_engine.go shape (a
// table of named rules plus an Evaluate entry point), generalized to the
// alias-graph DFS spec.md describes.
package alias

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ivish/internal/tokenizer"
)

// illegalNameChars are the characters spec §3 forbids in an alias name:
// shell-break characters, shell-quote characters, backslash, the
// expansion characters $<> and the path separator.
const illegalNameChars = "()<>;&| \t\n\"'\\$/"

// ValidName reports whether name contains none of the illegal characters
// and is non-empty.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	return !strings.ContainsAny(name, illegalNameChars)
}

// Engine stores name -> replacement mappings and expands command lines.
type Engine struct {
	aliases map[string]string
}

// New returns an empty alias engine.
func New() *Engine {
	return &Engine{aliases: make(map[string]string)}
}

// Set defines or redefines an alias. It returns an error if name is
// invalid.
func (e *Engine) Set(name, replacement string) error {
	if !ValidName(name) {
		return fmt.Errorf("alias: '%s': invalid alias name", name)
	}
	e.aliases[name] = replacement
	return nil
}

// Get returns the replacement for name and whether it exists.
func (e *Engine) Get(name string) (string, bool) {
	v, ok := e.aliases[name]
	return v, ok
}

// Unset removes name, returning an error if it does not exist.
func (e *Engine) Unset(name string) error {
	if _, ok := e.aliases[name]; !ok {
		return fmt.Errorf("unalias: %s: not found", name)
	}
	delete(e.aliases, name)
	return nil
}

// UnsetAll removes every alias.
func (e *Engine) UnsetAll() {
	e.aliases = make(map[string]string)
}

// Names returns every defined alias name, in the order returned by
// listing (callers should sort if a stable order is required).
func (e *Engine) Names() []string {
	names := make([]string, 0, len(e.aliases))
	for n := range e.aliases {
		names = append(names, n)
	}
	return names
}

// LoadSeed reads a YAML alias-seed file at path (a flat name: replacement
// map) and defines each entry on e, the way cmddb.Load reads the
// command-property database: a missing or unreadable file is non-fatal,
// since there is nothing wrong with starting without one. An invalid
// alias name in the file is skipped rather than aborting the rest of the
// load.
func (e *Engine) LoadSeed(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("alias: read %s: %w", path, err)
	}
	var seed map[string]string
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("alias: parse %s: %w", path, err)
	}
	for name, replacement := range seed {
		e.Set(name, replacement) // an invalid name is simply skipped
	}
	return nil
}

// Translate expands a full command line, splitting it on every top-level
// `|`, `|&` and `;`, translating each segment independently and splicing
// the original delimiter text back in verbatim. It returns ("", false) if
// no segment was translated (spec §4.5).
func (e *Engine) Translate(cmdline string) (string, bool) {
	res := tokenizer.Tokenize(cmdline)
	if len(res.Tokens) == 0 {
		return "", false
	}

	var out strings.Builder
	changed := false
	segStart := 0

	writeSegment := func(lo, hi int) {
		text, ok := e.translateTokenRange(res, lo, hi)
		if ok {
			changed = true
			out.WriteString(text)
		} else {
			out.WriteString(rawSpan(res, lo, hi))
		}
	}

	for _, d := range res.Delimiters {
		writeSegment(segStart, d.LeftHi)
		out.WriteString(d.Kind.String())
		segStart = d.LeftHi
	}
	writeSegment(segStart, len(res.Tokens))

	if !changed {
		return "", false
	}
	return out.String(), true
}

// rawSpan reproduces the original text spanned by tokens [lo, hi),
// including the whitespace between them, used when a segment has no
// aliases to translate. If the token offsets cannot be used it falls back
// to the token contents joined by single spaces.
func rawSpan(res tokenizer.Result, lo, hi int) string {
	if lo >= hi {
		return ""
	}
	start := res.Tokens[lo].Start
	end := res.Tokens[hi-1].End + 1
	// A token's End is its last content byte; keep any closing quote.
	for end < len(res.Line) && (res.Line[end] == '\'' || res.Line[end] == '"') {
		end++
	}
	if start > end || end > len(res.Line) {
		return joinTokens(res.Tokens[lo:hi])
	}
	return res.Line[start:end]
}

func joinTokens(toks []tokenizer.Token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Content
	}
	return strings.Join(parts, " ")
}

// translateTokenRange implements translate_segment for the token range
// [lo, hi) of res.
func (e *Engine) translateTokenRange(res tokenizer.Result, lo, hi int) (string, bool) {
	if lo >= hi {
		return "", false
	}
	return e.translateSegment(res, lo, hi, make(map[string]bool))
}

// translateSegment is translate_segment from spec §4.5: split into first
// token and rest, recursively expand a known, not-yet-visited alias name,
// and either chain into rest under a fresh visited set (trailing-space
// rule) or append rest unchanged.
func (e *Engine) translateSegment(res tokenizer.Result, lo, hi int, visited map[string]bool) (string, bool) {
	first := res.Tokens[lo]
	restText := rawSpan(res, lo+1, hi)

	replacement, known := e.aliases[first.Content]
	if !known || visited[first.Content] {
		if restText == "" {
			return first.Content, false
		}
		return first.Content + " " + restText, false
	}

	startedEmpty := len(visited) == 0
	visited[first.Content] = true

	replRes := tokenizer.Tokenize(replacement)
	var expanded string
	if len(replRes.Tokens) == 0 {
		expanded = replacement
	} else {
		var ok bool
		expanded, ok = e.translateSegment(replRes, 0, len(replRes.Tokens), visited)
		if !ok {
			expanded = replacement
		}
	}

	if restText == "" {
		return expanded, true
	}

	if startedEmpty && strings.HasSuffix(replacement, " ") {
		chained, _ := e.translateSegment(res, lo+1, hi, make(map[string]bool))
		return expanded + chained, true
	}

	return expanded + " " + restText, true
}

// ParseDefinition parses a textual "name=value" alias definition (spec
// §4.5). ok is false if there is no '=' or the right side is empty.
func ParseDefinition(s string) (name string, value string, ok bool) {
	idx := strings.Index(s, "=")
	if idx <= 0 {
		return s, "", false
	}
	name = s[:idx]
	value = s[idx+1:]
	if value == "" {
		return name, "", false
	}
	return name, value, true
}

// QuoteValue single-quotes value for reuse in `alias name='value'` output,
// per spec §4.5: a lone `'` becomes `\'`; otherwise wrap in single quotes
// and escape every inner `'` as `'\''`.
func QuoteValue(value string) string {
	if value == "'" {
		return `\'`
	}
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range value {
		if r == '\'' {
			b.WriteString(`'\''`)
		} else {
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// Format renders a single alias in the reusable `alias [-- ]name='value'`
// form. dashes controls whether the "-- " separator is emitted, used when
// name could otherwise be mistaken for a flag.
func Format(name, value string, dashes bool) string {
	if dashes {
		return fmt.Sprintf("alias -- %s=%s", name, QuoteValue(value))
	}
	return fmt.Sprintf("alias %s=%s", name, QuoteValue(value))
}
