package ast

// Hoist walks stmts the way CORE SPEC §4.4 describes scope construction
// walking a function or program body: every `var` name and every
// function declaration reachable without crossing into a nested
// FunctionLiteral's own body (that body gets its own hoisting set, lazily,
// when it is called). ES5 has no block scoping (Non-goals), so a
// declaration nested inside an if/for/while/try/switch/with/labeled block
// still hoists to the nearest function or program scope, which is why this
// walk descends into those but not into FunctionLiteral bodies.
//
// A real parser can populate Program.HoistedVars/HoistedFuncs and
// FunctionLiteral.HoistedVars/HoistedFuncs itself at parse time instead;
// Hoist exists for callers that only have a bare statement list to hand
// the engine -- direct eval, append_code, and hand-built test programs.
func Hoist(stmts []Statement) (vars []string, funcs []*FunctionLiteral) {
	seenVar := map[string]bool{}
	seenFunc := map[string]bool{}
	var walkStmt func(s Statement)
	var walkStmts func(ss []Statement)

	addVar := func(name string) {
		if !seenVar[name] {
			seenVar[name] = true
			vars = append(vars, name)
		}
	}
	addFunc := func(fn *FunctionLiteral) {
		// A later declaration of the same name wins (last one hoisted
		// overwrites the binding at scope-construction time in hoistInto),
		// but we still only want to walk into a given FunctionLiteral once.
		if fn.Name != "" && seenFunc[fn.Name] {
			for idx, existing := range funcs {
				if existing.Name == fn.Name {
					funcs[idx] = fn
					return
				}
			}
		}
		seenFunc[fn.Name] = true
		funcs = append(funcs, fn)
	}

	walkStmts = func(ss []Statement) {
		for _, s := range ss {
			walkStmt(s)
		}
	}

	walkStmt = func(s Statement) {
		switch n := s.(type) {
		case *VariableDeclaration:
			for _, d := range n.Declarations {
				addVar(d.Name.Name)
			}
		case *FunctionDeclaration:
			addFunc(n.Function)
		case *BlockStatement:
			walkStmts(n.Statements)
		case *IfStatement:
			walkStmt(n.Consequent)
			if n.Alternate != nil {
				walkStmt(n.Alternate)
			}
		case *ForStatement:
			if decl, ok := n.Init.(*VariableDeclaration); ok {
				walkStmt(decl)
			}
			walkStmt(n.Body)
		case *ForInStatement:
			if decl, ok := n.Left.(*VariableDeclaration); ok {
				walkStmt(decl)
			}
			walkStmt(n.Body)
		case *WhileStatement:
			walkStmt(n.Body)
		case *DoWhileStatement:
			walkStmt(n.Body)
		case *TryStatement:
			walkStmt(n.Block)
			if n.Handler != nil {
				walkStmt(n.Handler.Body)
			}
			if n.Finally != nil {
				walkStmt(n.Finally)
			}
		case *SwitchStatement:
			for _, c := range n.Cases {
				walkStmts(c.Consequent)
			}
		case *LabeledStatement:
			walkStmt(n.Body)
		case *WithStatement:
			walkStmt(n.Body)
		default:
			// ExpressionStatement, Return/Break/Continue/Throw, Empty,
			// Debugger: no declarations of their own.
		}
	}

	walkStmts(stmts)
	return vars, funcs
}

// HoistProgram fills in p's HoistedVars/HoistedFuncs from its own
// statement list, for callers (direct eval, append_code, tests) that build
// a Program without a parser's hoisting pass already having run.
func HoistProgram(p *Program) {
	p.HoistedVars, p.HoistedFuncs = Hoist(p.Statements)
}

// HoistFunction is HoistProgram's counterpart for a FunctionLiteral body.
func HoistFunction(fn *FunctionLiteral) {
	fn.HoistedVars, fn.HoistedFuncs = Hoist(fn.Body.Statements)
}
