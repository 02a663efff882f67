// Package interrupt implements the interrupt dispatcher of spec §4.7:
// given the name of the foreground command, it selects the correct ^C
// semantics from the command database and drives the runner.Handle
// accordingly.
//
// Grounded on the teacher's cli.go signal.Notify/signal.Reset dance (the
// shell and its child never both own SIGINT at once) and on
// docker_agent.go's context.WithCancel worker-cancellation pattern.
package interrupt

import (
	"ivish/internal/cmddb"
	"ivish/internal/runner"
)

// ShellHandler is the shell process's own installed SIGINT handler,
// consulted by handler_func/handler_func_nl and as the fallback when a
// command has no configured or recognised intaction (spec §4.7).
// Grounded on the original product's run_ex_command(NSString*) host
// callback: a single currently-installed function the host invokes on
// the shell's behalf, not a lookup table keyed by command name.
type ShellHandler func()

// EOFWriter delivers a synthetic EOF to the running command, used for the
// end_of_file intaction.
type EOFWriter func() error

// Dispatcher selects and carries out the correct interrupt action for the
// currently running foreground command.
type Dispatcher struct {
	db           *cmddb.DB
	shellHandler ShellHandler
}

// New returns a Dispatcher consulting db for per-command intaction, using
// shellHandler (possibly nil) as the fallback and for handler_func(_nl).
func New(db *cmddb.DB, shellHandler ShellHandler) *Dispatcher {
	return &Dispatcher{db: db, shellHandler: shellHandler}
}

// SetShellHandler replaces the installed SIGINT handler, mirroring how a
// running command may temporarily install its own handler and restore the
// shell's afterward.
func (d *Dispatcher) SetShellHandler(h ShellHandler) {
	d.shellHandler = h
}

// Dispatch delivers ^C to commandName's running instance via handle and
// eof, selecting the action from the command database per spec §4.7.
func (d *Dispatcher) Dispatch(commandName string, handle runner.Handle, eof EOFWriter) error {
	action, ok := d.db.IntActionFor(commandName)
	if !ok {
		return d.fallback(handle)
	}

	switch action {
	case cmddb.ThreadKill:
		return handle.Kill()

	case cmddb.ThreadCancel:
		handle.Cancel()
		return nil

	case cmddb.EndOfFile:
		if eof == nil {
			return nil
		}
		return eof()

	case cmddb.HandlerFunc:
		d.invokeShellHandler()
		return nil

	case cmddb.HandlerFuncNL:
		d.invokeShellHandler()
		_, err := handle.WriteInput([]byte("\n"))
		return err

	default:
		return d.fallback(handle)
	}
}

// fallback invokes the shell's installed SIGINT handler if any, else
// cancels the command's thread (spec §4.7's final sentence).
func (d *Dispatcher) fallback(handle runner.Handle) error {
	if d.shellHandler != nil {
		d.invokeShellHandler()
		return nil
	}
	handle.Cancel()
	return nil
}

func (d *Dispatcher) invokeShellHandler() {
	if d.shellHandler != nil {
		d.shellHandler()
	}
}
