// Package cmddb loads the read-only command-property table of spec §4.6
// from a YAML file named by IVISH_CMD_DB. A missing or unreadable file is
// non-fatal: the database is simply empty.
//
// Grounded on the teacher's agent_config.go YAML load/convert pattern,
// adapted from a single-agent document to a command-name-keyed property
// map.
package cmddb

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// IntAction names the interrupt-delivery semantics for a command (spec
// §3).
type IntAction string

const (
	ThreadKill     IntAction = "thread_kill"
	ThreadCancel   IntAction = "thread_cancel"
	EndOfFile      IntAction = "end_of_file"
	HandlerFunc    IntAction = "handler_func"
	HandlerFuncNL  IntAction = "handler_func_nl"
)

// TermMode names the terminal cooking mode for a command (spec §4.9).
type TermMode string

const (
	ModeLine TermMode = "line"
	ModeRaw  TermMode = "raw"
)

// entry is one command's property map, decoded generically so spec §9's
// open-ended property set round-trips even for properties cmddb itself
// does not interpret.
type entry map[string]string

// DB is the read-only, command-name-keyed property table.
type DB struct {
	entries map[string]entry
}

// Empty returns a DB with no entries, used when loading fails or
// IVISH_CMD_DB is unset.
func Empty() *DB {
	return &DB{entries: map[string]entry{}}
}

// Load reads and parses the YAML command database at path. On any error
// it returns an empty DB and the error, so callers can log and continue
// per spec §4.6's "failure to read is non-fatal" rule.
func Load(path string) (*DB, error) {
	if path == "" {
		return Empty(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Empty(), fmt.Errorf("cmddb: read %s: %w", path, err)
	}
	var raw map[string]entry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Empty(), fmt.Errorf("cmddb: parse %s: %w", path, err)
	}
	if raw == nil {
		raw = map[string]entry{}
	}
	return &DB{entries: raw}, nil
}

// Property returns the value of the named property for command, and
// whether it was present.
func (db *DB) Property(command, name string) (string, bool) {
	if db == nil {
		return "", false
	}
	e, ok := db.entries[command]
	if !ok {
		return "", false
	}
	v, ok := e[name]
	return v, ok
}

// IntActionFor returns the configured interrupt action for command, or
// ("", false) if unset or unrecognised.
func (db *DB) IntActionFor(command string) (IntAction, bool) {
	v, ok := db.Property(command, "intaction")
	if !ok {
		return "", false
	}
	switch IntAction(v) {
	case ThreadKill, ThreadCancel, EndOfFile, HandlerFunc, HandlerFuncNL:
		return IntAction(v), true
	default:
		return "", false
	}
}

// TermModeFor returns the configured terminal mode for command, defaulting
// to ModeLine when unset or unrecognised (spec §4.9).
func (db *DB) TermModeFor(command string) TermMode {
	v, ok := db.Property(command, "termmode")
	if !ok {
		return ModeLine
	}
	switch TermMode(v) {
	case ModeLine, ModeRaw:
		return TermMode(v)
	default:
		return ModeLine
	}
}

// Has reports whether command has any entry in the database at all.
func (db *DB) Has(command string) bool {
	if db == nil {
		return false
	}
	_, ok := db.entries[command]
	return ok
}
