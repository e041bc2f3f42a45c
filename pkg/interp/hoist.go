package interp

import (
	"sandboxjs/pkg/ast"
	"sandboxjs/pkg/scope"
	"sandboxjs/pkg/value"
)

// hoistInto binds vars and funcs into sc ahead of any statement actually
// running (CORE SPEC §4.4): plain `var` names first as undefined, then
// function declarations, which both create their binding and win over a
// same-named var that hoisted a moment earlier.
func (i *Interpreter) hoistInto(sc *scope.Scope, vars []string, funcs []*ast.FunctionLiteral) {
	for _, name := range vars {
		sc.Declare(name)
	}
	for _, fn := range funcs {
		sc.DeclareFunc(fn.Name, value.Obj(i.makeFunction(fn, sc)))
	}
}
