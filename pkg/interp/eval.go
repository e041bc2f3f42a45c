package interp

import (
	"sandboxjs/pkg/ast"
	"sandboxjs/pkg/errors"
	"sandboxjs/pkg/value"
)

// Parser is the capability the engine needs to turn guest source text into
// an AST. CORE SPEC §1 calls the parser out explicitly as an external
// collaborator ("any conforming parser for the guest language's ES5 subset
// is acceptable"), so pkg/interp never implements one: New's source-
// accepting form, EvalSource (and, through it, guest direct eval), and
// AppendCode all go through whatever Parser a host wires in with
// WithParser.
type Parser interface {
	Parse(source string) (*ast.Program, error)
}

// WithParser wires in a Parser, enabling New's source-accepting form plus
// EvalSource/AppendCode. Without one, those entry points return a
// SyntaxError-flavored error rather than panicking -- an interpreter built
// only to run a pre-parsed AST via PushProgram is a valid configuration,
// and "eval was called with no parser configured" is a host wiring
// mistake the host should see as an ordinary error, not a crash.
func WithParser(p Parser) Option {
	return func(i *Interpreter) { i.parser = p }
}

func (i *Interpreter) noParserErr(who string) error {
	return &errors.SyntaxError{Msg: who + ": no Parser configured (see interp.WithParser)"}
}

// NewFromSource is the source-accepting form of the host API's
// new_interpreter(source | ast, init_fn?) (CORE SPEC §6.2): it builds an
// Interpreter exactly as New does, parses source with whatever Parser was
// wired in via WithParser, lets initFn register additional host globals
// against the constructed-but-not-yet-running engine, and queues the
// parsed program without starting to step it.
func NewFromSource(source string, initFn func(*Interpreter), opts ...Option) (*Interpreter, error) {
	i := New(opts...)
	if i.parser == nil {
		return nil, i.noParserErr("NewFromSource")
	}
	prog, err := i.parser.Parse(source)
	if err != nil {
		return nil, err
	}
	if initFn != nil {
		initFn(i)
	}
	i.PushProgram(prog)
	return i, nil
}

// EvalSource parses source with the configured Parser, computes its
// hoisting set, and drains it to completion the same way Call/Construct
// drain a nested native-to-guest call, returning its completion value.
// Guest `eval` (pkg/builtins/globals_init.go) goes through this primitive;
// AppendCode does not, it parses and queues through AppendStatements.
//
// This implementation always evaluates in the global scope: NativeContext,
// what a native "eval" function body receives, carries no reference to the
// calling frame's scope, so direct eval's ES5 "run in the caller's scope"
// nuance is not implemented here. See DESIGN.md's Open Question log.
func (i *Interpreter) EvalSource(source string) (value.Value, error) {
	if i.parser == nil {
		return value.UndefinedValue, i.noParserErr("EvalSource")
	}
	prog, err := i.parser.Parse(source)
	if err != nil {
		return value.UndefinedValue, err
	}
	if prog.HoistedVars == nil && prog.HoistedFuncs == nil {
		ast.HoistProgram(prog)
	}
	return i.drainProgram(prog)
}

// AppendCode appends source's top-level statements onto the still-live
// root Program frame (CORE SPEC §6.2), hoisting its declarations into the
// global scope first. Returns an error if the root frame has already
// completed (the stack is empty) -- append_code is only valid while the
// program that was originally pushed is still running.
func (i *Interpreter) AppendCode(source string) error {
	if i.parser == nil {
		return i.noParserErr("AppendCode")
	}
	prog, err := i.parser.Parse(source)
	if err != nil {
		return err
	}
	return i.AppendStatements(prog.Statements)
}

// AppendStatements is AppendCode's AST-accepting counterpart, for a host
// that already has parsed statements (or built them by hand) rather than
// source text.
func (i *Interpreter) AppendStatements(stmts []ast.Statement) error {
	if len(i.stack) == 0 {
		return &errors.InternalError{Msg: "append_code: root Program frame is no longer live"}
	}
	root, ok := i.stack[0].node.(*ast.Program)
	if !ok {
		return &errors.InternalError{Msg: "append_code: bottom frame is not the root Program"}
	}
	vars, funcs := ast.Hoist(stmts)
	i.hoistInto(i.globalScope, vars, funcs)
	root.Statements = append(root.Statements, stmts...)
	root.HoistedVars = append(root.HoistedVars, vars...)
	root.HoistedFuncs = append(root.HoistedFuncs, funcs...)
	return nil
}

// drainProgram pushes prog as a nested frame below the current stack depth
// and steps until that frame (and everything it pushed) has popped,
// mirroring drainCall's discipline for a nested native-to-guest call.
func (i *Interpreter) drainProgram(prog *ast.Program) (value.Value, error) {
	depth := len(i.stack)
	prevFloor := i.unwindFloor
	i.unwindFloor = depth
	defer func() { i.unwindFloor = prevFloor }()

	i.hoistInto(i.globalScope, prog.HoistedVars, prog.HoistedFuncs)
	i.push(&frame{node: prog, scope: i.globalScope})
	i.lastChildCompletion = nil
	for len(i.stack) > depth {
		if i.paused {
			errors.Fail("interp: eval'd source paused mid-evaluation; synchronous eval cannot suspend")
		}
		if err := i.Step(); err != nil {
			return value.UndefinedValue, err
		}
		if i.lastChildCompletion != nil && i.lastChildCompletion.Kind == Throw {
			v := i.lastChildCompletion.Value
			i.lastChildCompletion = nil
			return value.UndefinedValue, &guestThrow{v: v}
		}
	}
	return i.lastChildResult, nil
}
