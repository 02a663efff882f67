package tokenizer

import "testing"

func tokenContents(res Result) []string {
	out := make([]string, len(res.Tokens))
	for i, t := range res.Tokens {
		out[i] = t.Content
	}
	return out
}

func assertTokens(t *testing.T, got []string, want ...string) {
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokens = %v, want %v", got, want)
		}
	}
}

func TestScenario1QuotesAndEscapes(t *testing.T) {
	res := Tokenize(`a 'b c' "d\"e"`)
	assertTokens(t, tokenContents(res), "a", "b c", `d"e`)
	if len(res.Delimiters) != 0 {
		t.Fatalf("delimiters = %v, want none", res.Delimiters)
	}
	if res.UnfinishedEscape != nil {
		t.Fatalf("unfinished = %v, want nil", res.UnfinishedEscape)
	}
}

func TestScenario2PipeAndSeparator(t *testing.T) {
	res := Tokenize("ls | grep foo ; echo done")
	assertTokens(t, tokenContents(res), "ls", "grep", "foo", "echo", "done")
	if len(res.Delimiters) != 2 {
		t.Fatalf("delimiters = %v, want 2", res.Delimiters)
	}
	pipe := res.Delimiters[0]
	if pipe.Kind != Pipe || !pipe.Valid {
		t.Fatalf("pipe = %+v, want valid Pipe", pipe)
	}
	if pipe.LeftLo != 0 || pipe.LeftHi != 1 {
		t.Fatalf("pipe left range = [%d,%d), want [0,1)", pipe.LeftLo, pipe.LeftHi)
	}
	sep := res.Delimiters[1]
	if sep.Kind != CommandSep || !sep.Valid {
		t.Fatalf("sep = %+v, want valid CommandSep", sep)
	}
	if sep.LeftLo != 1 || sep.LeftHi != 3 {
		t.Fatalf("sep left range = [%d,%d), want [1,3)", sep.LeftLo, sep.LeftHi)
	}
}

func TestScenario3InvalidLeadingPipe(t *testing.T) {
	res := Tokenize("| ls")
	if len(res.Delimiters) != 1 {
		t.Fatalf("delimiters = %v, want 1", res.Delimiters)
	}
	d := res.Delimiters[0]
	if d.Position != 0 {
		t.Fatalf("position = %d, want 0", d.Position)
	}
	if d.Valid {
		t.Fatalf("expected invalid delimiter")
	}
	invalid := res.InvalidDelimiters()
	if len(invalid) != 1 || invalid[0].Position != 0 {
		t.Fatalf("InvalidDelimiters = %v", invalid)
	}
}

func TestScenario4UnfinishedDoubleQuote(t *testing.T) {
	res := Tokenize(`echo "hi`)
	assertTokens(t, tokenContents(res), "echo")
	if res.UnfinishedEscape == nil {
		t.Fatalf("expected unfinished escape")
	}
	if res.UnfinishedEscape.Kind != DoubleQuote {
		t.Fatalf("kind = %v, want DoubleQuote", res.UnfinishedEscape.Kind)
	}
	wantPos := len(`echo "hi`) - len(`"hi`)
	if res.UnfinishedEscape.StartPosition != wantPos {
		t.Fatalf("start = %d, want %d", res.UnfinishedEscape.StartPosition, wantPos)
	}
	if res.Rest != `"hi` {
		t.Fatalf("rest = %q, want %q", res.Rest, `"hi`)
	}
}

func TestTrailingSemicolonValid(t *testing.T) {
	res := Tokenize("echo hi ;")
	if len(res.Delimiters) != 1 || !res.Delimiters[0].Valid {
		t.Fatalf("trailing ; should be valid: %v", res.Delimiters)
	}
}

func TestPipeErrRedi(t *testing.T) {
	res := Tokenize("a |& b")
	if len(res.Delimiters) != 1 || res.Delimiters[0].Kind != PipeErrRedi {
		t.Fatalf("delimiters = %v, want single PipeErrRedi", res.Delimiters)
	}
	if !res.Delimiters[0].Valid {
		t.Fatalf("expected valid |&")
	}
}

func TestEmptyQuotedTokenPreserved(t *testing.T) {
	res := Tokenize(`""`)
	assertTokens(t, tokenContents(res), "")
}

func TestBackslashEscapeOutsideQuotes(t *testing.T) {
	res := Tokenize(`a\ b`)
	assertTokens(t, tokenContents(res), "a b")
}

func TestTokenizeNStopsAndReportsRest(t *testing.T) {
	res := TokenizeN("one two three", 2)
	assertTokens(t, tokenContents(res), "one", "two")
	if res.Rest != "three" {
		t.Fatalf("rest = %q, want %q", res.Rest, "three")
	}
}

func TestTokensBetween(t *testing.T) {
	res := Tokenize("a b c")
	got := res.TokensBetween(1, 3)
	if len(got) != 2 || got[0].Content != "b" || got[1].Content != "c" {
		t.Fatalf("TokensBetween = %v", got)
	}
	if got := res.TokensBetween(5, 10); got != nil {
		t.Fatalf("expected nil for out-of-range, got %v", got)
	}
}
