package interp

import (
	"fmt"

	"sandboxjs/pkg/ast"
	"sandboxjs/pkg/errors"
	"sandboxjs/pkg/value"
)

// unwind implements CORE SPEC §4.3's non-local control flow: it pops
// frames off the state stack until one of them is positioned to consume
// the completion (a loop for Break/Continue, a function call boundary for
// Return, a try/finally for any kind, or Throw), or the stack empties, at
// which point a Throw completion becomes a HostError and any other kind
// is simply discarded (CORE SPEC §7.2: nothing but Program itself sits
// below the outermost frame, and Program has already been popped by the
// time unwind runs).
func (i *Interpreter) unwind(c Completion) error {
	return i.unwindTo(c, 0)
}

// unwindTo is unwind bounded to stop popping once the stack has shrunk
// back to floor frames, instead of walking all the way to the bottom. At
// floor 0 (the ordinary case) it behaves exactly like unwind. A nonzero
// floor is drainCall's: if the completion is still uncaught once the
// nested call's own frames are gone, it's left in lastChildCompletion for
// drainCall to turn into a Go error, rather than reaching into frames that
// belong to whatever called the native function in the first place.
func (i *Interpreter) unwindTo(c Completion, floor int) error {
	for len(i.stack) > floor {
		f := i.top()
		if handled, err := i.deliverCompletion(f, c); handled {
			return err
		}
		i.pop()
	}
	if floor == 0 {
		if c.Kind == Throw {
			return i.toHostError(c.Value)
		}
		return nil
	}
	i.lastChildCompletion = &c
	return nil
}

// deliverCompletion asks f's node whether it wants to intercept c (a try
// block catching a Throw, a loop catching a same-frame Break/Continue, a
// function call boundary catching a Return). It reports whether c was
// consumed and, if consumption produced a terminal error, that error.
func (i *Interpreter) deliverCompletion(f *frame, c Completion) (bool, error) {
	switch n := f.node.(type) {
	case *ast.TryStatement:
		return i.tryCatchCompletion(f, n, c)
	case *ast.WhileStatement, *ast.DoWhileStatement, *ast.ForStatement, *ast.ForInStatement:
		return i.loopCatchCompletion(f, c)
	case *ast.LabeledStatement:
		return i.labeledCatchCompletion(f, n, c)
	case *ast.SwitchStatement:
		if c.Kind == Break && c.Label == "" {
			f.result = value.UndefinedValue
			return true, nil
		}
		return false, nil
	case *callBoundaryMarker:
		return i.callBoundaryCompletion(f, c)
	default:
		return false, nil
	}
}

// toHostError converts a guest exception value that escaped the root
// frame into a HostError (CORE SPEC §7.2).
func (i *Interpreter) toHostError(v value.Value) error {
	name, message := "Error", ""
	if v.IsObject() {
		obj := v.AsObject()
		if dp, ok := obj.GetOwnData("name"); ok && dp.Value.IsString() {
			name = dp.Value.AsString()
		}
		if dp, ok := obj.GetOwnData("message"); ok {
			message = i.quickToString(dp.Value)
		}
	} else {
		message = i.quickToString(v)
	}
	return &errors.HostError{GuestName: name, GuestMessage: message}
}

// quickToString stringifies a value without a guest-callable
// toString/valueOf round trip, for use inside error formatting paths
// where re-entering the interpreter would be unsound (we may already be
// unwinding past every frame).
func (i *Interpreter) quickToString(v value.Value) string {
	switch v.Kind() {
	case value.String:
		return v.AsString()
	case value.Number:
		return value.NumberToString(v.AsNumber())
	case value.Boolean:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case value.Undefined:
		return "undefined"
	case value.Null:
		return "null"
	default:
		return fmt.Sprintf("[object %s]", v.AsObject().Class)
	}
}

// throwValue builds a Throw completion out of a guest value and stores it
// on f, the convention every node handler uses to report a guest
// exception instead of returning a Go error directly (Go errors are
// reserved for HostError/InternalError, which only ever surface once
// unwind reaches the bottom of the stack or a node handler hits a
// genuine invariant violation).
func (i *Interpreter) throwValue(f *frame, v value.Value) stepOutcome {
	f.completion = &Completion{Kind: Throw, Value: v}
	return outcomeDone
}

// throwError is throwValue for the common case of throwing a freshly
// constructed builtin error object.
func (i *Interpreter) throwError(f *frame, class, format string, args ...interface{}) stepOutcome {
	msg := fmt.Sprintf(format, args...)
	return i.throwValue(f, value.Obj(i.NewError(class, msg)))
}

// ThrowType/ThrowRange/ThrowReference/ThrowSyntax/ThrowURI implement
// value.NativeContext for native function bodies, which don't have a
// frame of their own to attach a completion to; they instead panic with
// a sentinel the call machinery recovers (see callframe.go's callNative).
func (i *Interpreter) ThrowType(format string, args ...interface{}) {
	panic(&guestThrow{value.Obj(i.NewError("TypeError", fmt.Sprintf(format, args...)))})
}
func (i *Interpreter) ThrowRange(format string, args ...interface{}) {
	panic(&guestThrow{value.Obj(i.NewError("RangeError", fmt.Sprintf(format, args...)))})
}
func (i *Interpreter) ThrowReference(format string, args ...interface{}) {
	panic(&guestThrow{value.Obj(i.NewError("ReferenceError", fmt.Sprintf(format, args...)))})
}
func (i *Interpreter) ThrowSyntax(format string, args ...interface{}) {
	panic(&guestThrow{value.Obj(i.NewError("SyntaxError", fmt.Sprintf(format, args...)))})
}
func (i *Interpreter) ThrowURI(format string, args ...interface{}) {
	panic(&guestThrow{value.Obj(i.NewError("URIError", fmt.Sprintf(format, args...)))})
}

// guestThrow is the panic sentinel a native function body raises via one
// of the Throw* helpers above; callNative recovers it and turns it back
// into a normal Throw completion so native and guest exceptions unwind
// through exactly the same path.
type guestThrow struct{ v value.Value }

func (g *guestThrow) Error() string { return "guest exception" }
