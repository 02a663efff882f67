package lineeditor

import "ivish/internal/completion"

// EventKind identifies which of the events in spec §4.3/§7 ReadLine
// returned.
type EventKind int

const (
	// EventLine carries a completed line, raised on Enter.
	EventLine EventKind = iota
	// EventEOF is raised on ^D with an empty buffer. ^D with text under
	// the cursor forward-deletes instead; it never submits the line.
	EventEOF
	// EventInterrupt is raised on ^C.
	EventInterrupt
	// EventCompletion is raised on an ambiguous Tab.
	EventCompletion
	// EventIOError is raised when a terminal write fails.
	EventIOError
)

// Event is the tagged union ReadLine returns.
type Event struct {
	Kind       EventKind
	Line       string
	Completion completion.Result
	Err        error
}
