// Package hostshell provides the thin, persistent-session convenience layer
// CORE SPEC §9's Open Question names (runAll, queueFunction, callFunction):
// a host embedding the engine rarely wants to drive Step() itself, so this
// package wraps pkg/interp.Interpreter the way paserati's own pkg/driver
// wraps its VM -- a small stateful session object layered over the engine's
// already-complete primitives (Run/Step/CreateNativeFunction/Call), not a
// new engine responsibility.
package hostshell

import (
	"sandboxjs/pkg/interp"
	"sandboxjs/pkg/value"
)

// Shell is a persistent interpreter session: one Interpreter plus whatever
// host functions have been registered on it so far, following
// pkg/driver.Paserati's "session object wrapping the engine" shape.
type Shell struct {
	Interp *interp.Interpreter
}

// New wraps an already-constructed Interpreter (the host is expected to
// have supplied a interp.WithParser option if it wants RunAll to
// do anything beyond EvalSource's own no-parser error).
func New(i *interp.Interpreter) *Shell {
	return &Shell{Interp: i}
}

// RunAll parses and runs source to completion and returns its value, the
// same contract as loading a script file start to finish. It is EvalSource
// under a name a host-shell caller expects (CORE SPEC §9).
func (s *Shell) RunAll(source string) (value.Value, error) {
	return s.Interp.EvalSource(source)
}

// QueueFunction registers a host Go function as a guest global so guest
// code (run via RunAll/AppendCode afterward) can call it by name. It is
// CreateNativeFunction plus the one line of bookkeeping (binding it to a
// name on the global object) every caller of CreateNativeFunction needs,
// collapsed into one call for the common case.
func (s *Shell) QueueFunction(name string, fn interface{}) error {
	gv, err := s.Interp.CreateNativeFunction(fn, false)
	if err != nil {
		return err
	}
	s.Interp.Global().PutData(name, &value.DataProperty{
		Value: gv, Writable: true, Enumerable: false, Configurable: true,
	})
	return nil
}

// CallFunction looks up name on the global object and invokes it with args,
// converting each host argument with NativeToPseudo and the result back
// with PseudoToNative -- the symmetric host-initiated counterpart to a
// guest function calling a QueueFunction-registered host callback.
func (s *Shell) CallFunction(name string, args ...interface{}) (interface{}, error) {
	dp, ok := s.Interp.Global().GetOwnData(name)
	if !ok || !dp.Value.IsCallable() {
		return nil, &guestLookupError{name: name}
	}
	gvArgs := make([]value.Value, len(args))
	for idx, a := range args {
		gv, err := s.Interp.NativeToPseudo(a)
		if err != nil {
			return nil, err
		}
		gvArgs[idx] = gv
	}
	result, err := s.Interp.Call(dp.Value, value.UndefinedValue, gvArgs)
	if err != nil {
		return nil, err
	}
	return s.Interp.PseudoToNative(result)
}

type guestLookupError struct{ name string }

func (e *guestLookupError) Error() string {
	return "sandboxjs: hostshell: no callable global named " + e.name
}
