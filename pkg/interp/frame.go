package interp

import (
	"sandboxjs/pkg/ast"
	"sandboxjs/pkg/scope"
	"sandboxjs/pkg/value"
)

// CompletionKind is the abrupt-completion tag CORE SPEC §4.3 describes:
// every statement handler either falls through normally or hands back one
// of these to unwind() to act on.
type CompletionKind uint8

const (
	Normal CompletionKind = iota
	Break
	Continue
	Return
	Throw
)

// Completion is the value a statement's evaluation leaves behind.
type Completion struct {
	Kind  CompletionKind
	Value value.Value // the thrown value (Throw) or the return value (Return)
	Label string      // target label for Break/Continue, "" if untargeted
}

func NormalCompletion() Completion { return Completion{Kind: Normal} }

// stage is a handler-private cursor; most handlers only need a small int
// to remember which child they're waiting on across steps, per the
// re-entrant step-granular dispatch model (CORE SPEC §4.2).
type stage int

// frame is one entry in the interpreter's state stack. Exactly one
// concrete "kind" of frame field set is populated per node type; go's lack
// of tagged unions means this is a flat struct with a discriminant rather
// than the sum type the spec describes, which is the idiomatic tradeoff a
// tree-walker in Go makes.
type frame struct {
	node  ast.Node
	scope *scope.Scope
	stg   stage

	// result is where a child frame deposits its value before popping, and
	// where this frame's own handler leaves its result for its parent to
	// read on the step after this frame pops itself.
	result value.Value

	// completion is set by statement-shaped frames when they finish with
	// an abrupt completion that must propagate to an enclosing construct
	// (loop, switch, try, function body) before reaching the caller.
	completion *Completion

	// scratch holds small per-node working state (loop index, evaluated
	// arguments so far, object literal under construction, ...). Using
	// interface{} here mirrors the teacher's own "per-node fields on the
	// frame" approach but collapses many struct fields other engines give
	// each node kind into one slot, since this interpreter's frames are
	// short-lived and dynamically typed by node kind already.
	scratch interface{}

	// ownLabel is set by LabeledStatement when it directly wraps a loop,
	// so the loop's own frame can recognize a `continue outer;`/`break
	// outer;` targeting it without unwind having to special-case loops
	// nested inside labels.
	ownLabel string

	// continueRequested is set by loopCatchCompletion when an unwind
	// delivers a Continue this frame owns; the loop-specific step handler
	// checks and clears it at the top of its own dispatch to jump straight
	// to the next-iteration phase of its stage machine.
	continueRequested bool
}
