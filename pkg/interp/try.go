package interp

import (
	"sandboxjs/pkg/ast"
	"sandboxjs/pkg/scope"
	"sandboxjs/pkg/value"
)

// tryPhase is the stage machine driving a TryStatement across the
// possibly-many steps its block, handler, and finalizer each take, plus
// the abrupt completions that can interrupt any of them (CORE SPEC §4.3).
type tryPhase int

const (
	tryPhaseBlock tryPhase = iota
	tryPhaseCatch
	tryPhaseFinally
	tryPhaseDone
)

type tryState struct {
	phase tryPhase
	// pending is the completion that arrived while running the try block
	// or the catch handler and must be re-delivered once finally (if any)
	// has run to completion normally. A finally that itself completes
	// abruptly overrides pending entirely, per CORE SPEC §4.3's
	// finally-wins rule.
	pending *Completion
}

func (i *Interpreter) stepTryStatement(f *frame, n *ast.TryStatement) stepOutcome {
	st, _ := f.scratch.(*tryState)
	if st == nil {
		st = &tryState{phase: tryPhaseBlock}
		f.scratch = st
		i.pushChild(n.Block, f.scope)
		return outcomeContinue
	}

	switch st.phase {
	case tryPhaseBlock:
		// The try block popped with a Normal completion (any abrupt
		// completion would have gone through tryCatchCompletion instead
		// and advanced the phase already).
		st.phase = tryPhaseFinally
		if n.Finally != nil {
			i.pushChild(n.Finally, f.scope)
			return outcomeContinue
		}
		st.phase = tryPhaseDone
		return outcomeDone

	case tryPhaseCatch:
		st.phase = tryPhaseFinally
		if n.Finally != nil {
			i.pushChild(n.Finally, f.scope)
			return outcomeContinue
		}
		st.phase = tryPhaseDone
		if st.pending != nil {
			f.completion = st.pending
		}
		return outcomeDone

	case tryPhaseFinally:
		st.phase = tryPhaseDone
		if st.pending != nil {
			f.completion = st.pending
		}
		return outcomeDone
	}
	return outcomeDone
}

// tryCatchCompletion is deliverCompletion's hook for a TryStatement frame:
// it decides whether this try/catch/finally intercepts an abrupt
// completion arriving from its block or handler.
func (i *Interpreter) tryCatchCompletion(f *frame, n *ast.TryStatement, c Completion) (bool, error) {
	st, _ := f.scratch.(*tryState)
	if st == nil {
		st = &tryState{phase: tryPhaseBlock}
		f.scratch = st
	}

	switch st.phase {
	case tryPhaseBlock:
		if c.Kind == Throw && n.Handler != nil {
			catchScope := scope.New(f.scope, f.scope.Strict)
			if n.Handler.Param != nil {
				catchScope.Bag.PutData(n.Handler.Param.Name, &value.DataProperty{
					Value: c.Value, Writable: true, Enumerable: true, Configurable: true,
				})
			}
			st.phase = tryPhaseCatch
			i.pushChild(n.Handler.Body, catchScope)
			return true, nil
		}
		// No catch, or not a throw: fall through to finally (if any),
		// remembering c to re-raise once it's run.
		st.phase = tryPhaseFinally
		st.pending = &c
		if n.Finally != nil {
			i.pushChild(n.Finally, f.scope)
			return true, nil
		}
		st.phase = tryPhaseDone
		f.completion = st.pending
		return true, nil

	case tryPhaseCatch:
		st.phase = tryPhaseFinally
		st.pending = &c
		if n.Finally != nil {
			i.pushChild(n.Finally, f.scope)
			return true, nil
		}
		st.phase = tryPhaseDone
		f.completion = st.pending
		return true, nil

	case tryPhaseFinally:
		// The finally block itself completed abruptly: this always wins
		// over whatever was pending (CORE SPEC §4.3).
		st.phase = tryPhaseDone
		f.completion = &c
		return true, nil
	}
	return false, nil
}
