package dispatch

import (
	"ivish/internal/cmddb"
	"ivish/internal/termio"
)

// rawTerminal is the raw-mode subset of *termio.Terminal a ModeSelector
// needs, narrowed to a collaborator interface so tests can exercise mode
// selection without a real tty.
type rawTerminal interface {
	EnableRaw() error
	DisableRaw() error
	IsRaw() bool
}

// ModeSelector chooses and applies the terminal cooking mode for a
// command before it runs, and restores the previous mode afterward
// (spec §4.9).
type ModeSelector struct {
	DB   *cmddb.DB
	Term rawTerminal
}

// NewModeSelector returns a ModeSelector over db and term.
func NewModeSelector(db *cmddb.DB, term *termio.Terminal) *ModeSelector {
	return &ModeSelector{DB: db, Term: term}
}

// ModeFor returns the configured mode for head, the command's name.
func (m *ModeSelector) ModeFor(head string) cmddb.TermMode {
	if m.DB == nil {
		return cmddb.ModeLine
	}
	return m.DB.TermModeFor(head)
}

// Apply puts the terminal into the mode head's command-database entry
// requires, returning a restore func that undoes it. Raw mode is only
// entered if the terminal is not already raw (spec §4.9's "line editor
// owns raw mode between commands" invariant): a raw-mode command run
// from within the line editor's own raw session is a no-op restore.
func (m *ModeSelector) Apply(head string) (restore func(), err error) {
	if m.Term == nil {
		return func() {}, nil
	}
	mode := m.ModeFor(head)
	wasRaw := m.Term.IsRaw()

	switch mode {
	case cmddb.ModeRaw:
		if wasRaw {
			return func() {}, nil
		}
		if err := m.Term.EnableRaw(); err != nil {
			return func() {}, err
		}
		return func() { m.Term.DisableRaw() }, nil
	default: // ModeLine
		if !wasRaw {
			return func() {}, nil
		}
		if err := m.Term.DisableRaw(); err != nil {
			return func() {}, err
		}
		return func() { m.Term.EnableRaw() }, nil
	}
}
