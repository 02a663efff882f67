// Package envcfg reads the environment variables that configure ivish,
// applying defaults the way shell tooling conventionally does.
package envcfg

import (
	"os"
	"strconv"
)

// GetString retrieves a string value from an environment variable.
// If the variable is not set, returns defaultValue.
func GetString(name, defaultValue string) string {
	val := os.Getenv(name)
	if val == "" {
		return defaultValue
	}
	return val
}

// GetInt retrieves an integer value from an environment variable.
// If the variable is not set or invalid, returns defaultValue.
func GetInt(name string, defaultValue int) int {
	val := os.Getenv(name)
	if val == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// Colors holds the 256-colour highlight indices read from the environment,
// per spec §6.
type Colors struct {
	UnfinishedQuote        int
	InvalidPipeDelimiter   int
	InvalidCommandSeparator int
}

// LoadColors reads UNFINISHED_QUOTE_HINT_COLOR, INVALID_PIPE_DELIMITER_HINT_COLOR
// and INVALID_COMMAND_SEPARATOR_HINT_COLOR, defaulting each to 178.
func LoadColors() Colors {
	return Colors{
		UnfinishedQuote:         GetInt("UNFINISHED_QUOTE_HINT_COLOR", 178),
		InvalidPipeDelimiter:    GetInt("INVALID_PIPE_DELIMITER_HINT_COLOR", 178),
		InvalidCommandSeparator: GetInt("INVALID_COMMAND_SEPARATOR_HINT_COLOR", 178),
	}
}

// WindowSize holds the terminal geometry as reported by the host via
// COLUMNS/LINES, re-read on every command launch per spec §4.8.
type WindowSize struct {
	Columns int
	Lines   int
}

// LoadWindowSize reads COLUMNS and LINES, defaulting to 80x24 when unset or
// invalid.
func LoadWindowSize() WindowSize {
	return WindowSize{
		Columns: GetInt("COLUMNS", 80),
		Lines:   GetInt("LINES", 24),
	}
}

// CmdDBPath returns the path to the command-property database file from
// IVISH_CMD_DB, or "" if unset.
func CmdDBPath() string {
	return GetString("IVISH_CMD_DB", "")
}

// HistoryFilePath returns the path to the plain-text history file from
// IVISH_HISTORY_FILE, or "" if unset.
func HistoryFilePath() string {
	return GetString("IVISH_HISTORY_FILE", "")
}

// AliasSeedPath returns the path to the optional YAML alias-seed file from
// IVISH_ALIAS_SEED, or "" if unset.
func AliasSeedPath() string {
	return GetString("IVISH_ALIAS_SEED", "")
}
