package interp

import (
	"math"

	"sandboxjs/pkg/ast"
	"sandboxjs/pkg/scope"
	"sandboxjs/pkg/value"
)

func (i *Interpreter) evalLiteral(n *ast.LiteralNode) value.Value {
	switch n.Kind {
	case ast.LiteralNumber:
		return value.Num(n.Num)
	case ast.LiteralString:
		return value.Str(n.Str)
	case ast.LiteralBool:
		return value.Bool(n.Bool)
	case ast.LiteralNull:
		return value.NullValue
	case ast.LiteralRegExp:
		return value.Obj(i.newRegExp(n.RegExpPattern, n.RegExpFlags))
	default:
		return value.UndefinedValue
	}
}

func (i *Interpreter) resolveThis(sc *scope.Scope) value.Value {
	t := sc.ResolveThis()
	if t.IsUndefined() || t.IsNull() {
		return value.Obj(i.GlobalObj)
	}
	return t
}

func (i *Interpreter) toObjectForWith(v value.Value) *value.Object {
	if v.IsObject() {
		return v.AsObject()
	}
	return i.toObjectBoxed(v)
}

// --- identifiers ---------------------------------------------------------

func (i *Interpreter) stepIdentifier(f *frame, n *ast.Identifier) stepOutcome {
	awaiting, _ := f.scratch.(bool)
	if awaiting {
		f.result = i.lastChildResult
		return outcomeDone
	}
	owner, ok := f.scope.Resolve(n.Name)
	if !ok {
		if with := nearestWithScope(f.scope); with != nil {
			if v, found := i.getPropertyChain(with.Bag, n.Name); found {
				f.result = v
				return outcomeDone
			}
		}
		return i.throwError(f, "ReferenceError", "%s is not defined", n.Name)
	}
	dp, isData := owner.Bag.GetOwnData(n.Name)
	if isData {
		f.result = dp.Value
		return outcomeDone
	}
	if getter, _, isAcc := owner.Bag.GetOwnAccessor(n.Name); isAcc {
		if getter == nil {
			f.result = value.UndefinedValue
			return outcomeDone
		}
		f.scratch = true
		if err := i.pushCall(value.Obj(getter), value.Obj(owner.Bag), nil); err != nil {
			return i.throwValue(f, err.(*guestThrow).v)
		}
		return outcomeContinue
	}
	f.result = value.UndefinedValue
	return outcomeDone
}

func nearestWithScope(sc *scope.Scope) *scope.Scope {
	for cur := sc; cur != nil; cur = cur.Parent {
		if cur.IsWithScope {
			return cur
		}
		if cur.IsFunctionScope {
			return nil
		}
	}
	return nil
}

// getPropertyChain walks obj's prototype chain for a data property only
// (used by identifier resolution inside `with`, where invoking an
// accessor would need a further step; callers that must support
// accessors use stepPropertyGet in propaccess.go).
func (i *Interpreter) getPropertyChain(obj *value.Object, name string) (value.Value, bool) {
	for cur := obj; cur != nil; cur = cur.Proto {
		if dp, ok := cur.GetOwnData(name); ok {
			return dp.Value, true
		}
		if cur.IsAccessor(name) {
			return value.UndefinedValue, true
		}
	}
	return value.UndefinedValue, false
}

// --- literals needing children ------------------------------------------

func (i *Interpreter) stepArrayLiteral(f *frame, n *ast.ArrayLiteral) stepOutcome {
	idx, _ := f.scratch.(int)
	arr, _ := f.pendingArray()
	if arr == nil {
		arr = i.NewArray()
		f.setPendingArray(arr)
	}
	if idx > 0 {
		if n.Elements[idx-1] != nil {
			arr.PutData(indexKey(idx-1), &value.DataProperty{
				Value: i.lastChildResult, Writable: true, Enumerable: true, Configurable: true,
			})
		}
	}
	for idx < len(n.Elements) {
		el := n.Elements[idx]
		if el == nil {
			idx++
			continue
		}
		f.scratch = idx + 1
		i.pushChild(el, f.scope)
		return outcomeContinue
	}
	arr.PutData("length", &value.DataProperty{Value: value.Num(float64(len(n.Elements))), Writable: true})
	f.result = value.Obj(arr)
	return outcomeDone
}

func indexKey(idx int) string {
	return value.NumberToString(float64(idx))
}

// frame.scratch doubles as the array-under-construction holder via a
// small wrapper struct so it can also carry the "which index are we on"
// counter; see stepArrayLiteral.
type arrayBuildState struct {
	arr *value.Object
	idx int
}

func (f *frame) pendingArray() (*value.Object, int) {
	if st, ok := f.scratch.(*arrayBuildState); ok {
		return st.arr, st.idx
	}
	return nil, 0
}

func (f *frame) setPendingArray(arr *value.Object) {
	f.scratch = &arrayBuildState{arr: arr}
}

func (i *Interpreter) stepObjectLiteral(f *frame, n *ast.ObjectLiteral) stepOutcome {
	type objState struct {
		obj *value.Object
		idx int
	}
	st, _ := f.scratch.(*objState)
	if st == nil {
		st = &objState{obj: value.NewObject(i.ObjectProto)}
		f.scratch = st
	} else if st.idx > 0 {
		prop := n.Properties[st.idx-1]
		switch prop.Kind {
		case ast.PropertyGet:
			fn := i.lastChildResult.AsObject()
			g, _, _ := st.obj.GetOwnAccessor(prop.Key)
			st.obj.PutAccessor(prop.Key, fn, setterOf(st.obj, prop.Key), value.AccessorAttrs{Enumerable: true, Configurable: true})
			_ = g
		case ast.PropertySet:
			fn := i.lastChildResult.AsObject()
			st.obj.PutAccessor(prop.Key, getterOf(st.obj, prop.Key), fn, value.AccessorAttrs{Enumerable: true, Configurable: true})
		default:
			st.obj.PutData(prop.Key, &value.DataProperty{
				Value: i.lastChildResult, Writable: true, Enumerable: true, Configurable: true,
			})
		}
	}
	if st.idx < len(n.Properties) {
		prop := n.Properties[st.idx]
		st.idx++
		i.pushChild(prop.Value, f.scope)
		return outcomeContinue
	}
	f.result = value.Obj(st.obj)
	return outcomeDone
}

func getterOf(obj *value.Object, key string) *value.Object {
	g, _, _ := obj.GetOwnAccessor(key)
	return g
}
func setterOf(obj *value.Object, key string) *value.Object {
	_, s, _ := obj.GetOwnAccessor(key)
	return s
}

func (i *Interpreter) makeFunction(n *ast.FunctionLiteral, sc *scope.Scope) *value.Object {
	fn := value.NewObject(i.FunctionProto)
	fn.Class = value.ClassFunction
	fn.Kind = value.KindGuestFn
	fn.FnNode = n
	fn.FnStrict = n.Strict
	fn.FnParentScope = sc
	fn.FnRestParam = n.RestParam
	params := make([]string, len(n.Params))
	for idx, p := range n.Params {
		params[idx] = p.Name
	}
	fn.FnParams = params
	fn.FnName = n.Name
	arity := len(n.Params)
	fn.PutData("length", &value.DataProperty{Value: value.Num(float64(arity))})
	fn.PutData("name", &value.DataProperty{Value: value.Str(n.Name), Configurable: true})
	proto := value.NewObject(i.ObjectProto)
	proto.PutData("constructor", &value.DataProperty{Value: value.Obj(fn), Writable: true, Configurable: true})
	fn.PutData("prototype", &value.DataProperty{Value: value.Obj(proto), Writable: true})
	return fn
}

// --- unary / update -------------------------------------------------

func (i *Interpreter) stepUnaryExpression(f *frame, n *ast.UnaryExpression) stepOutcome {
	if n.Operator == "typeof" {
		if id, ok := n.Argument.(*ast.Identifier); ok {
			if _, found := f.scope.Resolve(id.Name); !found {
				f.result = value.Str("undefined")
				return outcomeDone
			}
		}
	}
	if n.Operator == "delete" {
		return i.stepDeleteExpression(f, n)
	}
	done, _ := f.scratch.(bool)
	if done {
		v := i.lastChildResult
		switch n.Operator {
		case "typeof":
			f.result = value.Str(v.TypeOf())
		case "void":
			f.result = value.UndefinedValue
		case "!":
			f.result = value.Bool(!v.ToBoolean())
		case "-":
			num, err := i.toNumber(v)
			if err != nil {
				return i.throwValue(f, err.(*guestThrow).v)
			}
			f.result = value.Num(-num)
		case "+":
			num, err := i.toNumber(v)
			if err != nil {
				return i.throwValue(f, err.(*guestThrow).v)
			}
			f.result = value.Num(num)
		case "~":
			num, err := i.toNumber(v)
			if err != nil {
				return i.throwValue(f, err.(*guestThrow).v)
			}
			f.result = value.Num(float64(^toInt32(num)))
		default:
			f.result = value.UndefinedValue
		}
		return outcomeDone
	}
	f.scratch = true
	i.pushChild(n.Argument, f.scope)
	return outcomeContinue
}

func (i *Interpreter) stepDeleteExpression(f *frame, n *ast.UnaryExpression) stepOutcome {
	member, ok := n.Argument.(*ast.MemberExpression)
	if !ok {
		f.result = value.Bool(true)
		return outcomeDone
	}
	phase, _ := f.scratch.(int)
	switch phase {
	case 0:
		f.scratch = 1
		i.pushChild(member.Object, f.scope)
		return outcomeContinue
	case 1:
		obj := i.lastChildResult
		if !member.Computed {
			key := member.Property.(*ast.Identifier).Name
			return i.finishDelete(f, obj, key)
		}
		f.scratch = &deleteState{obj: obj}
		i.pushChild(member.Property, f.scope)
		return outcomeContinue
	default:
		st := f.scratch.(*deleteState)
		key := i.quickToString(i.lastChildResult)
		return i.finishDelete(f, st.obj, key)
	}
}

type deleteState struct{ obj value.Value }

// finishDelete performs `delete obj[key]` and applies CORE SPEC §4.1's
// strict-mode rule: a refused delete (a non-configurable own property)
// throws TypeError in strict code instead of just reporting false.
func (i *Interpreter) finishDelete(f *frame, obj value.Value, key string) stepOutcome {
	ok := deleteProperty(obj, key)
	if !ok && f.scope.Strict {
		return i.throwError(f, "TypeError", "cannot delete property '%s'", key)
	}
	f.result = value.Bool(ok)
	return outcomeDone
}

func deleteProperty(obj value.Value, key string) bool {
	if !obj.IsObject() {
		return true
	}
	return obj.AsObject().DeleteOwn(key)
}

type updateState struct {
	stage    int
	isMember bool
	objVal   value.Value
	key      string
	oldVal   value.Value
	newVal   value.Value
}

// stepUpdateExpression handles both `x++`/`--x` on a plain variable and on
// a member reference (`obj.x++`), resolving the member's object/key once
// so a `[[Get]]` that runs a guest getter and the matching `[[Set]]` both
// see the same reference, not two independently re-evaluated ones.
func (i *Interpreter) stepUpdateExpression(f *frame, n *ast.UpdateExpression) stepOutcome {
	st, _ := f.scratch.(*updateState)
	if st == nil {
		member, isMember := n.Argument.(*ast.MemberExpression)
		st = &updateState{isMember: isMember}
		f.scratch = st
		if isMember {
			i.pushChild(member.Object, f.scope)
		} else {
			i.pushChild(n.Argument, f.scope)
		}
		return outcomeContinue
	}
	member, _ := n.Argument.(*ast.MemberExpression)
	switch st.stage {
	case 0:
		if st.isMember {
			st.objVal = i.lastChildResult
			if member.Computed {
				st.stage = 1
				i.pushChild(member.Property, f.scope)
				return outcomeContinue
			}
			st.key = member.Property.(*ast.Identifier).Name
			st.stage = 2
			i.push(&frame{node: &propertyGetMarker{obj: st.objVal, key: st.key}})
			return outcomeContinue
		}
		return i.finishUpdate(f, n, i.lastChildResult)
	case 1:
		st.key = i.quickToString(i.lastChildResult)
		st.stage = 2
		i.push(&frame{node: &propertyGetMarker{obj: st.objVal, key: st.key}})
		return outcomeContinue
	case 2:
		return i.finishUpdate(f, n, i.lastChildResult)
	default:
		if n.Prefix {
			f.result = st.newVal
		} else {
			f.result = st.oldVal
		}
		return outcomeDone
	}
}

func (i *Interpreter) finishUpdate(f *frame, n *ast.UpdateExpression, rawOld value.Value) stepOutcome {
	st := f.scratch.(*updateState)
	oldVal, err := i.toNumber(rawOld)
	if err != nil {
		return i.throwValue(f, err.(*guestThrow).v)
	}
	delta := 1.0
	if n.Operator == "--" {
		delta = -1.0
	}
	st.oldVal = value.Num(oldVal)
	st.newVal = value.Num(oldVal + delta)
	st.stage = 3
	if st.isMember {
		i.push(&frame{node: &propertySetMarker{obj: st.objVal, key: st.key, val: st.newVal, strict: f.scope.Strict}})
		return outcomeContinue
	}
	id := n.Argument.(*ast.Identifier)
	if err := i.assignVariable(f.scope, id.Name, st.newVal); err != nil {
		return i.throwValue(f, err.(*guestThrow).v)
	}
	if n.Prefix {
		f.result = st.newVal
	} else {
		f.result = st.oldVal
	}
	return outcomeDone
}

// --- binary / logical -------------------------------------------------

func (i *Interpreter) stepBinaryExpression(f *frame, n *ast.BinaryExpression) stepOutcome {
	type binState struct {
		left  value.Value
		phase int
	}
	st, _ := f.scratch.(*binState)
	if st == nil {
		st = &binState{}
		f.scratch = st
		i.pushChild(n.Left, f.scope)
		return outcomeContinue
	}
	if st.phase == 0 {
		st.left = i.lastChildResult
		st.phase = 1
		i.pushChild(n.Right, f.scope)
		return outcomeContinue
	}
	right := i.lastChildResult
	result, err := i.applyBinaryOp(n.Operator, st.left, right)
	if err != nil {
		return i.throwValue(f, err.(*guestThrow).v)
	}
	f.result = result
	return outcomeDone
}

func (i *Interpreter) stepLogicalExpression(f *frame, n *ast.LogicalExpression) stepOutcome {
	phase, _ := f.scratch.(int)
	switch phase {
	case 0:
		f.scratch = 1
		i.pushChild(n.Left, f.scope)
		return outcomeContinue
	case 1:
		left := i.lastChildResult
		if n.Operator == "&&" && !left.ToBoolean() {
			f.result = left
			return outcomeDone
		}
		if n.Operator == "||" && left.ToBoolean() {
			f.result = left
			return outcomeDone
		}
		f.scratch = 2
		i.pushChild(n.Right, f.scope)
		return outcomeContinue
	default:
		f.result = i.lastChildResult
		return outcomeDone
	}
}

// --- assignment -------------------------------------------------------

func (i *Interpreter) stepAssignmentExpression(f *frame, n *ast.AssignmentExpression) stepOutcome {
	if member, ok := n.Left.(*ast.MemberExpression); ok {
		return i.stepMemberAssignment(f, n, member)
	}
	type assignState struct {
		phase  int
		lhsObj value.Value
		lhsKey string
	}
	st, _ := f.scratch.(*assignState)
	if st == nil {
		st = &assignState{}
		f.scratch = st
	}
	if n.Operator == "=" {
		switch st.phase {
		case 0:
			st.phase = 1
			i.pushChild(n.Right, f.scope)
			return outcomeContinue
		default:
			rhs := i.lastChildResult
			if err := i.assignTo(f.scope, n.Left, rhs); err != nil {
				return i.throwValue(f, err.(*guestThrow).v)
			}
			f.result = rhs
			return outcomeDone
		}
	}
	// Compound assignment: evaluate left, then right, then combine.
	switch st.phase {
	case 0:
		st.phase = 1
		i.pushChild(n.Left, f.scope)
		return outcomeContinue
	case 1:
		st.lhsObj = i.lastChildResult
		st.phase = 2
		i.pushChild(n.Right, f.scope)
		return outcomeContinue
	default:
		op := n.Operator[:len(n.Operator)-1] // strip trailing '='
		result, err := i.applyBinaryOp(op, st.lhsObj, i.lastChildResult)
		if err != nil {
			return i.throwValue(f, err.(*guestThrow).v)
		}
		if err := i.assignTo(f.scope, n.Left, result); err != nil {
			return i.throwValue(f, err.(*guestThrow).v)
		}
		f.result = result
		return outcomeDone
	}
}

// assignTo handles the Identifier assignment target directly, since
// binding a variable never needs a further step. MemberExpression targets
// go through stepMemberAssignment instead, because writing through one can
// invoke a guest setter -- an arbitrary, possibly multi-step, guest call.
func (i *Interpreter) assignTo(sc *scope.Scope, lhs ast.Expression, v value.Value) error {
	id, ok := lhs.(*ast.Identifier)
	if !ok {
		return &guestThrow{v: value.Obj(i.NewError("ReferenceError", "invalid assignment target"))}
	}
	return i.assignVariable(sc, id.Name, v)
}

type memberAssignState struct {
	stage  int
	objVal value.Value
	key    string
	oldVal value.Value
}

const (
	maStageObj = iota
	maStageKey
	maStageOld
	maStageRHS
	maStageSet
)

// stepMemberAssignment handles both `obj.key = v` and the compound form
// `obj.key += v`: it evaluates the object and (if computed) the key first,
// per the left-to-right reference-then-value evaluation order, then (for
// compound operators) fetches the current value before evaluating the
// right-hand side, and finally writes through propertySetMarker so a guest
// setter is invoked the same way any other call would be.
func (i *Interpreter) stepMemberAssignment(f *frame, n *ast.AssignmentExpression, member *ast.MemberExpression) stepOutcome {
	st, _ := f.scratch.(*memberAssignState)
	if st == nil {
		f.scratch = &memberAssignState{}
		i.pushChild(member.Object, f.scope)
		return outcomeContinue
	}
	compound := n.Operator != "="
	switch st.stage {
	case maStageObj:
		st.objVal = i.lastChildResult
		if member.Computed {
			st.stage = maStageKey
			i.pushChild(member.Property, f.scope)
			return outcomeContinue
		}
		st.key = member.Property.(*ast.Identifier).Name
		return i.memberAssignAfterKey(f, n, st, compound)
	case maStageKey:
		st.key = i.quickToString(i.lastChildResult)
		return i.memberAssignAfterKey(f, n, st, compound)
	case maStageOld:
		st.oldVal = i.lastChildResult
		st.stage = maStageRHS
		i.pushChild(n.Right, f.scope)
		return outcomeContinue
	case maStageRHS:
		result := i.lastChildResult
		if compound {
			op := n.Operator[:len(n.Operator)-1]
			combined, err := i.applyBinaryOp(op, st.oldVal, result)
			if err != nil {
				return i.throwValue(f, err.(*guestThrow).v)
			}
			result = combined
		}
		st.stage = maStageSet
		i.push(&frame{node: &propertySetMarker{obj: st.objVal, key: st.key, val: result, strict: f.scope.Strict}})
		return outcomeContinue
	default:
		f.result = i.lastChildResult
		return outcomeDone
	}
}

func (i *Interpreter) memberAssignAfterKey(f *frame, n *ast.AssignmentExpression, st *memberAssignState, compound bool) stepOutcome {
	if compound {
		st.stage = maStageOld
		i.push(&frame{node: &propertyGetMarker{obj: st.objVal, key: st.key}})
		return outcomeContinue
	}
	st.stage = maStageRHS
	i.pushChild(n.Right, f.scope)
	return outcomeContinue
}

// --- conditional -------------------------------------------------

func (i *Interpreter) stepConditionalExpression(f *frame, n *ast.ConditionalExpression) stepOutcome {
	phase, _ := f.scratch.(int)
	switch phase {
	case 0:
		f.scratch = 1
		i.pushChild(n.Test, f.scope)
		return outcomeContinue
	case 1:
		f.scratch = 2
		if i.lastChildResult.ToBoolean() {
			i.pushChild(n.Consequent, f.scope)
		} else {
			i.pushChild(n.Alternate, f.scope)
		}
		return outcomeContinue
	default:
		f.result = i.lastChildResult
		return outcomeDone
	}
}

// --- member / call / new -------------------------------------------------

type memberState struct {
	obj   value.Value
	phase int
}

// stepMemberExpression evaluates obj[key] (or obj.key) through the same
// propertyGetMarker machinery a plain Identifier accessor-get uses, since a
// member read can invoke a guest getter just as readily as one can.
func (i *Interpreter) stepMemberExpression(f *frame, n *ast.MemberExpression) stepOutcome {
	st, _ := f.scratch.(*memberState)
	if st == nil {
		f.scratch = &memberState{}
		i.pushChild(n.Object, f.scope)
		return outcomeContinue
	}
	switch st.phase {
	case 0:
		st.obj = i.lastChildResult
		if n.Computed {
			st.phase = 1
			i.pushChild(n.Property, f.scope)
			return outcomeContinue
		}
		st.phase = 2
		i.push(&frame{node: &propertyGetMarker{obj: st.obj, key: n.Property.(*ast.Identifier).Name}})
		return outcomeContinue
	case 1:
		key := i.quickToString(i.lastChildResult)
		st.phase = 2
		i.push(&frame{node: &propertyGetMarker{obj: st.obj, key: key}})
		return outcomeContinue
	default:
		f.result = i.lastChildResult
		return outcomeDone
	}
}

const (
	callStageCallee = iota
	callStageCalleeKey
	callStageCalleeGet
	callStageArgs
	callStageCalling
)

type callState struct {
	stage          int
	calleeIsMember bool
	thisVal        value.Value
	fnVal          value.Value
	args           []value.Value
}

// stepCallExpression evaluates f(...args), resolving method-call `this`
// binding (CORE SPEC §4.2: calling through a MemberExpression binds `this`
// to the evaluated base object) before handing off to pushCall.
func (i *Interpreter) stepCallExpression(f *frame, n *ast.CallExpression) stepOutcome {
	st, _ := f.scratch.(*callState)
	if st == nil {
		st = &callState{}
		f.scratch = st
		if member, ok := n.Callee.(*ast.MemberExpression); ok {
			st.calleeIsMember = true
			i.pushChild(member.Object, f.scope)
			return outcomeContinue
		}
		i.pushChild(n.Callee, f.scope)
		return outcomeContinue
	}
	switch st.stage {
	case callStageCallee:
		if st.calleeIsMember {
			member := n.Callee.(*ast.MemberExpression)
			st.thisVal = i.lastChildResult
			if member.Computed {
				st.stage = callStageCalleeKey
				i.pushChild(member.Property, f.scope)
				return outcomeContinue
			}
			st.stage = callStageCalleeGet
			i.push(&frame{node: &propertyGetMarker{obj: st.thisVal, key: member.Property.(*ast.Identifier).Name}})
			return outcomeContinue
		}
		st.fnVal = i.lastChildResult
		st.thisVal = value.UndefinedValue
		return i.stepCallArgs(f, n, st)
	case callStageCalleeKey:
		key := i.quickToString(i.lastChildResult)
		st.stage = callStageCalleeGet
		i.push(&frame{node: &propertyGetMarker{obj: st.thisVal, key: key}})
		return outcomeContinue
	case callStageCalleeGet:
		st.fnVal = i.lastChildResult
		return i.stepCallArgs(f, n, st)
	case callStageArgs:
		st.args = append(st.args, i.lastChildResult)
		return i.stepCallArgs(f, n, st)
	default:
		f.result = i.lastChildResult
		return outcomeDone
	}
}

func (i *Interpreter) stepCallArgs(f *frame, n *ast.CallExpression, st *callState) stepOutcome {
	if len(st.args) < len(n.Arguments) {
		st.stage = callStageArgs
		i.pushChild(n.Arguments[len(st.args)], f.scope)
		return outcomeContinue
	}
	st.stage = callStageCalling
	if err := i.pushCall(st.fnVal, st.thisVal, st.args); err != nil {
		return i.throwValue(f, err.(*guestThrow).v)
	}
	return outcomeContinue
}

type newState struct {
	stage int
	fnVal value.Value
	args  []value.Value
}

func (i *Interpreter) stepNewExpression(f *frame, n *ast.NewExpression) stepOutcome {
	st, _ := f.scratch.(*newState)
	if st == nil {
		f.scratch = &newState{}
		i.pushChild(n.Callee, f.scope)
		return outcomeContinue
	}
	switch st.stage {
	case 0:
		st.fnVal = i.lastChildResult
		return i.stepNewArgs(f, n, st)
	case 1:
		st.args = append(st.args, i.lastChildResult)
		return i.stepNewArgs(f, n, st)
	default:
		f.result = i.lastChildResult
		return outcomeDone
	}
}

func (i *Interpreter) stepNewArgs(f *frame, n *ast.NewExpression, st *newState) stepOutcome {
	if len(st.args) < len(n.Arguments) {
		st.stage = 1
		i.pushChild(n.Arguments[len(st.args)], f.scope)
		return outcomeContinue
	}
	st.stage = 2
	if err := i.pushConstruct(st.fnVal, st.args); err != nil {
		return i.throwValue(f, err.(*guestThrow).v)
	}
	return outcomeContinue
}

// --- sequence -------------------------------------------------------

func (i *Interpreter) stepSequenceExpression(f *frame, n *ast.SequenceExpression) stepOutcome {
	idx, _ := f.scratch.(int)
	if idx >= len(n.Expressions) {
		f.result = i.lastChildResult
		return outcomeDone
	}
	f.scratch = idx + 1
	i.pushChild(n.Expressions[idx], f.scope)
	return outcomeContinue
}

// --- numeric helpers -------------------------------------------------

func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(int64(f))
}

func toUint32(f float64) uint32 {
	return uint32(toInt32(f))
}
