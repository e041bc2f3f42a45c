package interp

import (
	"sandboxjs/pkg/ast"
	"sandboxjs/pkg/errors"
)

// callBoundaryMarker is a synthetic frame node (not part of pkg/ast, since
// it never comes from source text) pushed under a guest function's body
// frame purely so unwind() has something to catch a Return completion
// against, the way CORE SPEC §4.3 describes a function call boundary
// stopping upward propagation of Return.
type callBoundaryMarker struct {
	pos  errors.Position
	body *ast.BlockStatement
}

func (m *callBoundaryMarker) Pos() errors.Position { return m.pos }
func (m *callBoundaryMarker) String() string        { return "<call boundary>" }

func (i *Interpreter) stepCallBoundary(f *frame, n *callBoundaryMarker) stepOutcome {
	pushed, _ := f.scratch.(bool)
	if !pushed {
		f.scratch = true
		i.pushChild(n.body, f.scope)
		return outcomeContinue
	}
	f.result = i.lastChildResult
	return outcomeDone
}

func (i *Interpreter) callBoundaryCompletion(f *frame, c Completion) (bool, error) {
	switch c.Kind {
	case Return:
		// stepCallBoundary takes the call's result from lastChildResult on
		// its next step, so the returned value is handed over there too.
		f.result = c.Value
		i.lastChildResult = c.Value
		return true, nil
	case Throw:
		// A function body finishing with an uncaught throw does not stop
		// here; it must keep propagating to the caller's own try/catch,
		// if any, so this frame does not consume it.
		return false, nil
	default:
		// A bare fall-off-the-end-of-body Normal completion, or a stray
		// Break/Continue that somehow escaped its loop (a parser bug, not
		// a runtime one) -- either way, function bodies return undefined,
		// which is f.result's zero value.
		i.lastChildResult = f.result
		return true, nil
	}
}
