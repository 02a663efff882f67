package cmddb

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPath(t *testing.T) {
	db, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if db.Has("anything") {
		t.Fatalf("expected no entries")
	}
}

func TestLoadMissingFile(t *testing.T) {
	db, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatalf("expected an error for a missing file")
	}
	if db.Has("anything") {
		t.Fatalf("expected an empty DB on error")
	}
}

func TestLoadParsesProperties(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cmddb.yaml")
	content := `
vim:
  termmode: raw
  intaction: thread_kill
top:
  termmode: raw
  intaction: handler_func_nl
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	db, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !db.Has("vim") {
		t.Fatalf("expected vim to be present")
	}
	if !db.Has("top") {
		t.Fatalf("expected top to be present")
	}
	if db.Has("ls") {
		t.Fatalf("ls should not be present")
	}

	if got := db.TermModeFor("vim"); got != ModeRaw {
		t.Fatalf("TermModeFor(vim) = %v, want raw", got)
	}
	if got := db.TermModeFor("ls"); got != ModeLine {
		t.Fatalf("TermModeFor(ls) = %v, want line (default)", got)
	}

	action, ok := db.IntActionFor("vim")
	if !ok || action != ThreadKill {
		t.Fatalf("IntActionFor(vim) = %v, %v, want thread_kill, true", action, ok)
	}
	action, ok = db.IntActionFor("top")
	if !ok || action != HandlerFuncNL {
		t.Fatalf("IntActionFor(top) = %v, %v, want handler_func_nl, true", action, ok)
	}
	if _, ok := db.IntActionFor("ls"); ok {
		t.Fatalf("expected no intaction for ls")
	}
}

func TestPropertyUnknownCommand(t *testing.T) {
	db := Empty()
	if _, ok := db.Property("ls", "termmode"); ok {
		t.Fatalf("expected no property on an empty DB")
	}
}

func TestNilDBIsSafe(t *testing.T) {
	var db *DB
	if db.Has("ls") {
		t.Fatalf("nil DB should report no entries")
	}
	if _, ok := db.Property("ls", "termmode"); ok {
		t.Fatalf("nil DB should report no properties")
	}
}

func TestUnrecognisedIntActionIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cmddb.yaml")
	if err := os.WriteFile(path, []byte("foo:\n  intaction: bogus\n  termmode: bogus\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	db, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := db.IntActionFor("foo"); ok {
		t.Fatalf("expected unrecognised intaction to be rejected")
	}
	if got := db.TermModeFor("foo"); got != ModeLine {
		t.Fatalf("TermModeFor = %v, want line default for unrecognised value", got)
	}
}
