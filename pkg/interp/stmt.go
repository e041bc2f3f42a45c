package interp

import (
	"sandboxjs/pkg/ast"
	"sandboxjs/pkg/scope"
	"sandboxjs/pkg/value"
)

// --- Program / blocks -------------------------------------------------

func (i *Interpreter) stepProgram(f *frame, n *ast.Program) stepOutcome {
	idx, _ := f.scratch.(int)
	if idx > 0 {
		i.lastProgramValue = i.lastChildResult
	}
	if idx >= len(n.Statements) {
		return outcomeDone
	}
	f.scratch = idx + 1
	i.pushChild(n.Statements[idx], f.scope)
	return outcomeContinue
}

func (i *Interpreter) stepExpressionStatement(f *frame, n *ast.ExpressionStatement) stepOutcome {
	done, _ := f.scratch.(bool)
	if done {
		f.result = i.lastChildResult
		return outcomeDone
	}
	f.scratch = true
	i.pushChild(n.Expr, f.scope)
	return outcomeContinue
}

func (i *Interpreter) stepBlockStatement(f *frame, n *ast.BlockStatement) stepOutcome {
	idx, _ := f.scratch.(int)
	if idx >= len(n.Statements) {
		return outcomeDone
	}
	f.scratch = idx + 1
	i.pushChild(n.Statements[idx], f.scope)
	return outcomeContinue
}

// --- var declarations ---------------------------------------------------

func (i *Interpreter) stepVariableDeclaration(f *frame, n *ast.VariableDeclaration) stepOutcome {
	idx, _ := f.scratch.(int)
	if idx > 0 {
		decl := n.Declarations[idx-1]
		if err := i.assignVariable(f.scope, decl.Name.Name, i.lastChildResult); err != nil {
			return i.throwValue(f, err.(*guestThrow).v)
		}
	}
	for idx < len(n.Declarations) {
		decl := n.Declarations[idx]
		if decl.Init == nil {
			idx++
			continue
		}
		f.scratch = idx + 1
		i.pushChild(decl.Init, f.scope)
		return outcomeContinue
	}
	f.result = value.UndefinedValue
	return outcomeDone
}

// assignVariable implements CORE SPEC §4.4's identifier-assignment
// resolution: walk the scope chain for an existing binding and write
// through it, or -- when none exists -- create an implicit property on
// the global object in sloppy mode, matching ECMAScript 5's
// PutValue(Reference, V) for an unresolvable reference, and throw
// ReferenceError instead in strict code rather than silently creating a
// binding nobody declared.
func (i *Interpreter) assignVariable(sc *scope.Scope, name string, v value.Value) error {
	bag := sc.Global()
	if owner, ok := sc.Resolve(name); ok {
		bag = owner.Bag
	} else if sc.Strict {
		return &guestThrow{v: value.Obj(i.NewError("ReferenceError", name+" is not defined"))}
	}
	bag.PutData(name, &value.DataProperty{Value: v, Writable: true, Enumerable: true, Configurable: false})
	return nil
}

// --- if -------------------------------------------------------------

func (i *Interpreter) stepIfStatement(f *frame, n *ast.IfStatement) stepOutcome {
	phase, _ := f.scratch.(int)
	switch phase {
	case 0:
		f.scratch = 1
		i.pushChild(n.Test, f.scope)
		return outcomeContinue
	case 1:
		if i.lastChildResult.ToBoolean() {
			f.scratch = 2
			i.pushChild(n.Consequent, f.scope)
			return outcomeContinue
		}
		if n.Alternate != nil {
			f.scratch = 2
			i.pushChild(n.Alternate, f.scope)
			return outcomeContinue
		}
		return outcomeDone
	default:
		return outcomeDone
	}
}

// --- while / do-while -------------------------------------------------

func (i *Interpreter) stepWhileStatement(f *frame, n *ast.WhileStatement) stepOutcome {
	phase, _ := f.scratch.(int)
	if f.continueRequested {
		f.continueRequested = false
		phase = 0
	}
	switch phase {
	case 0:
		f.scratch = 1
		i.pushChild(n.Test, f.scope)
		return outcomeContinue
	case 1:
		if !i.lastChildResult.ToBoolean() {
			return outcomeDone
		}
		f.scratch = 0
		i.pushChild(n.Body, f.scope)
		return outcomeContinue
	default:
		return outcomeDone
	}
}

func (i *Interpreter) stepDoWhileStatement(f *frame, n *ast.DoWhileStatement) stepOutcome {
	phase, _ := f.scratch.(int)
	if f.continueRequested {
		f.continueRequested = false
		phase = 1
	}
	switch phase {
	case 0:
		f.scratch = 1
		i.pushChild(n.Body, f.scope)
		return outcomeContinue
	case 1:
		f.scratch = 2
		i.pushChild(n.Test, f.scope)
		return outcomeContinue
	case 2:
		if !i.lastChildResult.ToBoolean() {
			return outcomeDone
		}
		f.scratch = 0
		i.pushChild(n.Body, f.scope)
		return outcomeContinue
	default:
		return outcomeDone
	}
}

// --- for / for-in -------------------------------------------------------

const (
	forPhaseInit = iota
	forPhaseTest
	forPhaseBody
	forPhaseUpdate
)

func (i *Interpreter) stepForStatement(f *frame, n *ast.ForStatement) stepOutcome {
	phase, _ := f.scratch.(int)
	if f.continueRequested {
		f.continueRequested = false
		phase = forPhaseUpdate
	}
	switch phase {
	case forPhaseInit:
		f.scratch = forPhaseTest
		if n.Init != nil {
			i.pushChild(n.Init, f.scope)
			return outcomeContinue
		}
		return i.stepForStatement(f, n)
	case forPhaseTest:
		f.scratch = forPhaseBody
		if n.Test != nil {
			i.pushChild(n.Test, f.scope)
			return outcomeContinue
		}
		return i.stepForStatement(f, n)
	case forPhaseBody:
		if n.Test != nil && !i.lastChildResult.ToBoolean() {
			return outcomeDone
		}
		f.scratch = forPhaseUpdate
		i.pushChild(n.Body, f.scope)
		return outcomeContinue
	case forPhaseUpdate:
		f.scratch = forPhaseTest
		if n.Update != nil {
			i.pushChild(n.Update, f.scope)
			return outcomeContinue
		}
		return i.stepForStatement(f, n)
	default:
		return outcomeDone
	}
}

func (i *Interpreter) stepForInStatement(f *frame, n *ast.ForInStatement) stepOutcome {
	type forInState struct {
		keys []string
		idx  int
	}
	st, _ := f.scratch.(*forInState)
	if f.continueRequested {
		f.continueRequested = false
		if st != nil {
			return i.forInAdvance(f, n, st)
		}
	}
	if st == nil {
		// First step: evaluate the object expression, then snapshot its
		// enumerable keys (including inherited ones) up front. CORE SPEC
		// gives no ordering guarantee across a mutation mid-loop, so a
		// snapshot is a conforming, simpler choice than a live iterator.
		if _, evaluated := f.scratch.(string); !evaluated {
			f.scratch = "evaluating"
			i.pushChild(n.Right, f.scope)
			return outcomeContinue
		}
		obj := i.lastChildResult
		st = &forInState{}
		if obj.IsObject() {
			st.keys = enumerableKeysWithInherited(obj.AsObject())
		}
		f.scratch = st
		return i.forInAdvance(f, n, st)
	}
	return i.forInAdvance(f, n, st)
}

func (i *Interpreter) forInAdvance(f *frame, n *ast.ForInStatement, st interface{}) stepOutcome {
	type forInState struct {
		keys []string
		idx  int
	}
	s := st.(*forInState)
	if s.idx >= len(s.keys) {
		return outcomeDone
	}
	key := s.keys[s.idx]
	s.idx++
	if err := i.bindForInKey(f.scope, n.Left, key); err != nil {
		return i.throwValue(f, err.(*guestThrow).v)
	}
	i.pushChild(n.Body, f.scope)
	return outcomeContinue
}

func (i *Interpreter) bindForInKey(sc *scope.Scope, left ast.Node, key string) error {
	switch l := left.(type) {
	case *ast.VariableDeclaration:
		if len(l.Declarations) > 0 {
			return i.assignVariable(sc, l.Declarations[0].Name.Name, value.Str(key))
		}
	case *ast.Identifier:
		return i.assignVariable(sc, l.Name, value.Str(key))
	}
	return nil
}

func enumerableKeysWithInherited(obj *value.Object) []string {
	seen := map[string]bool{}
	var out []string
	cur := obj
	for cur != nil {
		for _, k := range cur.OwnEnumerableKeys() {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
		cur = cur.Proto
	}
	return out
}

// --- return / throw -------------------------------------------------

func (i *Interpreter) stepReturnStatement(f *frame, n *ast.ReturnStatement) stepOutcome {
	if n.Argument == nil {
		f.completion = &Completion{Kind: Return, Value: value.UndefinedValue}
		return outcomeDone
	}
	done, _ := f.scratch.(bool)
	if done {
		f.completion = &Completion{Kind: Return, Value: i.lastChildResult}
		return outcomeDone
	}
	f.scratch = true
	i.pushChild(n.Argument, f.scope)
	return outcomeContinue
}

func (i *Interpreter) stepThrowStatement(f *frame, n *ast.ThrowStatement) stepOutcome {
	done, _ := f.scratch.(bool)
	if done {
		f.completion = &Completion{Kind: Throw, Value: i.lastChildResult}
		return outcomeDone
	}
	f.scratch = true
	i.pushChild(n.Argument, f.scope)
	return outcomeContinue
}

// --- switch -------------------------------------------------------------

func (i *Interpreter) stepSwitchStatement(f *frame, n *ast.SwitchStatement) stepOutcome {
	type switchState struct {
		phase        int // 0 evaluating discriminant, 1 testing cases, 2 running statements
		discriminant value.Value
		matchedIdx   int // -1 until a case matches; len(Cases) means fell to default or ran out
		testingIdx   int
		stmtCaseIdx  int
		stmtIdx      int
	}
	st, _ := f.scratch.(*switchState)
	if st == nil {
		st = &switchState{matchedIdx: -1}
		f.scratch = st
		i.pushChild(n.Discriminant, f.scope)
		return outcomeContinue
	}

	switch st.phase {
	case 0:
		st.discriminant = i.lastChildResult
		st.phase = 1
		fallthrough
	case 1:
		for st.testingIdx < len(n.Cases) {
			c := n.Cases[st.testingIdx]
			if c.Test == nil {
				st.testingIdx++
				continue
			}
			idx := st.testingIdx
			st.testingIdx++
			st.phase = 10 + idx // encode which case's test result is coming back
			i.pushChild(c.Test, f.scope)
			return outcomeContinue
		}
		// No case matched by strict equality; run default if present.
		for idx, c := range n.Cases {
			if c.Test == nil {
				st.matchedIdx = idx
				break
			}
		}
		if st.matchedIdx == -1 {
			return outcomeDone
		}
		st.stmtCaseIdx = st.matchedIdx
		st.phase = 2
		return i.switchRunStatements(f, n, st)
	case 2:
		return i.switchRunStatements(f, n, st)
	default:
		// phase >= 10: result of testing case (phase-10).
		idx := st.phase - 10
		if strictEquals(st.discriminant, i.lastChildResult) {
			st.matchedIdx = idx
			st.stmtCaseIdx = idx
			st.phase = 2
			return i.switchRunStatements(f, n, st)
		}
		st.phase = 1
		return i.stepSwitchStatement(f, n)
	}
}

func (i *Interpreter) switchRunStatements(f *frame, n *ast.SwitchStatement, st interface{}) stepOutcome {
	type switchState struct {
		phase        int
		discriminant value.Value
		matchedIdx   int
		testingIdx   int
		stmtCaseIdx  int
		stmtIdx      int
	}
	s := st.(*switchState)
	for s.stmtCaseIdx < len(n.Cases) {
		c := n.Cases[s.stmtCaseIdx]
		if s.stmtIdx < len(c.Consequent) {
			stmt := c.Consequent[s.stmtIdx]
			s.stmtIdx++
			i.pushChild(stmt, f.scope)
			return outcomeContinue
		}
		s.stmtCaseIdx++
		s.stmtIdx = 0
	}
	return outcomeDone
}

// --- labeled / with -------------------------------------------------

func (i *Interpreter) stepLabeledStatement(f *frame, n *ast.LabeledStatement) stepOutcome {
	done, _ := f.scratch.(bool)
	if done {
		return outcomeDone
	}
	f.scratch = true
	child := &frame{node: n.Body, scope: f.scope}
	if isLoopNode(n.Body) {
		child.ownLabel = n.Label
	}
	i.push(child)
	return outcomeContinue
}

func isLoopNode(n ast.Statement) bool {
	switch n.(type) {
	case *ast.WhileStatement, *ast.DoWhileStatement, *ast.ForStatement, *ast.ForInStatement:
		return true
	default:
		return false
	}
}

func (i *Interpreter) stepWithStatement(f *frame, n *ast.WithStatement) stepOutcome {
	phase, _ := f.scratch.(int)
	switch phase {
	case 0:
		f.scratch = 1
		i.pushChild(n.Object, f.scope)
		return outcomeContinue
	case 1:
		obj := i.toObjectForWith(i.lastChildResult)
		withScope := scope.NewWith(f.scope, obj)
		f.scratch = 2
		i.pushChild(n.Body, withScope)
		return outcomeContinue
	default:
		return outcomeDone
	}
}
