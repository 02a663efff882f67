package envcfg

import (
	"os"
	"testing"
)

func TestGetStringDefault(t *testing.T) {
	os.Unsetenv("IVISH_TEST_STRING")
	if got := GetString("IVISH_TEST_STRING", "fallback"); got != "fallback" {
		t.Fatalf("GetString = %q, want fallback", got)
	}
	os.Setenv("IVISH_TEST_STRING", "set")
	defer os.Unsetenv("IVISH_TEST_STRING")
	if got := GetString("IVISH_TEST_STRING", "fallback"); got != "set" {
		t.Fatalf("GetString = %q, want set", got)
	}
}

func TestGetIntDefaultAndInvalid(t *testing.T) {
	os.Unsetenv("IVISH_TEST_INT")
	if got := GetInt("IVISH_TEST_INT", 42); got != 42 {
		t.Fatalf("GetInt unset = %d, want 42", got)
	}
	os.Setenv("IVISH_TEST_INT", "notanumber")
	defer os.Unsetenv("IVISH_TEST_INT")
	if got := GetInt("IVISH_TEST_INT", 42); got != 42 {
		t.Fatalf("GetInt invalid = %d, want 42", got)
	}
	os.Setenv("IVISH_TEST_INT", "7")
	if got := GetInt("IVISH_TEST_INT", 42); got != 7 {
		t.Fatalf("GetInt valid = %d, want 7", got)
	}
}

func TestLoadColorsDefaults(t *testing.T) {
	for _, name := range []string{
		"UNFINISHED_QUOTE_HINT_COLOR",
		"INVALID_PIPE_DELIMITER_HINT_COLOR",
		"INVALID_COMMAND_SEPARATOR_HINT_COLOR",
	} {
		os.Unsetenv(name)
	}
	c := LoadColors()
	if c.UnfinishedQuote != 178 || c.InvalidPipeDelimiter != 178 || c.InvalidCommandSeparator != 178 {
		t.Fatalf("LoadColors() = %+v, want all 178", c)
	}
}

func TestLoadWindowSizeDefaults(t *testing.T) {
	os.Unsetenv("COLUMNS")
	os.Unsetenv("LINES")
	ws := LoadWindowSize()
	if ws.Columns != 80 || ws.Lines != 24 {
		t.Fatalf("LoadWindowSize() = %+v, want 80x24", ws)
	}
}

func TestCmdDBPathAndHistoryFilePath(t *testing.T) {
	os.Unsetenv("IVISH_CMD_DB")
	if got := CmdDBPath(); got != "" {
		t.Fatalf("CmdDBPath() = %q, want empty", got)
	}
	os.Setenv("IVISH_CMD_DB", "/tmp/db.yaml")
	defer os.Unsetenv("IVISH_CMD_DB")
	if got := CmdDBPath(); got != "/tmp/db.yaml" {
		t.Fatalf("CmdDBPath() = %q, want /tmp/db.yaml", got)
	}

	os.Unsetenv("IVISH_HISTORY_FILE")
	if got := HistoryFilePath(); got != "" {
		t.Fatalf("HistoryFilePath() = %q, want empty", got)
	}
}
