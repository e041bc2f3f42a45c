package interp

import (
	"sandboxjs/pkg/ast"
	"sandboxjs/pkg/errors"
	"sandboxjs/pkg/scope"
	"sandboxjs/pkg/value"
)

// stepOutcome tells the dispatcher what to do with the frame it just
// advanced: keep it on the stack (it pushed a child and is waiting), or
// pop it because its handler finished this node entirely.
type stepOutcome uint8

const (
	outcomeContinue stepOutcome = iota
	outcomeDone
)

// Step advances the top frame of the state stack by exactly one unit of
// work (CORE SPEC §4.2): it either pushes a child frame and returns, or
// finishes the current node and pops it, handing the result to whatever
// frame is now on top.
func (i *Interpreter) Step() (err error) {
	if len(i.stack) == 0 {
		return nil
	}
	if i.paused {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(*errors.InternalError); ok {
				err = ie
				return
			}
			panic(r)
		}
	}()

	f := i.top()
	outcome := i.dispatch(f)
	if outcome == outcomeDone {
		i.pop()
		if f.completion != nil && f.completion.Kind != Normal {
			return i.unwindTo(*f.completion, i.unwindFloor)
		}
		i.lastChildResult = f.result
		i.lastChildCompletion = nil
	}
	return nil
}

func (i *Interpreter) dispatch(f *frame) stepOutcome {
	switch n := f.node.(type) {
	case *ast.Program:
		return i.stepProgram(f, n)
	case *ast.ExpressionStatement:
		return i.stepExpressionStatement(f, n)
	case *ast.BlockStatement:
		return i.stepBlockStatement(f, n)
	case *ast.VariableDeclaration:
		return i.stepVariableDeclaration(f, n)
	case *ast.FunctionDeclaration:
		f.result = value.UndefinedValue
		return outcomeDone
	case *ast.IfStatement:
		return i.stepIfStatement(f, n)
	case *ast.WhileStatement:
		return i.stepWhileStatement(f, n)
	case *ast.DoWhileStatement:
		return i.stepDoWhileStatement(f, n)
	case *ast.ForStatement:
		return i.stepForStatement(f, n)
	case *ast.ForInStatement:
		return i.stepForInStatement(f, n)
	case *ast.ReturnStatement:
		return i.stepReturnStatement(f, n)
	case *ast.BreakStatement:
		f.completion = &Completion{Kind: Break, Label: n.Label}
		return outcomeDone
	case *ast.ContinueStatement:
		f.completion = &Completion{Kind: Continue, Label: n.Label}
		return outcomeDone
	case *ast.ThrowStatement:
		return i.stepThrowStatement(f, n)
	case *ast.TryStatement:
		return i.stepTryStatement(f, n)
	case *ast.SwitchStatement:
		return i.stepSwitchStatement(f, n)
	case *ast.LabeledStatement:
		return i.stepLabeledStatement(f, n)
	case *ast.WithStatement:
		return i.stepWithStatement(f, n)
	case *ast.EmptyStatement:
		f.result = value.UndefinedValue
		return outcomeDone
	case *ast.DebuggerStatement:
		f.result = value.UndefinedValue
		return outcomeDone

	case *ast.Identifier:
		return i.stepIdentifier(f, n)
	case *ast.LiteralNode:
		f.result = i.evalLiteral(n)
		return outcomeDone
	case *ast.ThisExpression:
		f.result = i.resolveThis(f.scope)
		return outcomeDone
	case *ast.ArrayLiteral:
		return i.stepArrayLiteral(f, n)
	case *ast.ObjectLiteral:
		return i.stepObjectLiteral(f, n)
	case *ast.FunctionLiteral:
		f.result = value.Obj(i.makeFunction(n, f.scope))
		return outcomeDone
	case *ast.UnaryExpression:
		return i.stepUnaryExpression(f, n)
	case *ast.UpdateExpression:
		return i.stepUpdateExpression(f, n)
	case *ast.BinaryExpression:
		return i.stepBinaryExpression(f, n)
	case *ast.LogicalExpression:
		return i.stepLogicalExpression(f, n)
	case *ast.AssignmentExpression:
		return i.stepAssignmentExpression(f, n)
	case *ast.ConditionalExpression:
		return i.stepConditionalExpression(f, n)
	case *ast.CallExpression:
		return i.stepCallExpression(f, n)
	case *ast.NewExpression:
		return i.stepNewExpression(f, n)
	case *ast.MemberExpression:
		return i.stepMemberExpression(f, n)
	case *ast.SequenceExpression:
		return i.stepSequenceExpression(f, n)

	case *callBoundaryMarker:
		return i.stepCallBoundary(f, n)
	case *nativeCallMarker:
		return i.stepNativeCall(f, n)
	case *constructWrapper:
		return i.stepConstruct(f, n)
	case *propertyGetMarker:
		return i.stepPropertyGet(f, n)
	case *propertySetMarker:
		return i.stepPropertySet(f, n)

	default:
		errors.Fail("interp: no step handler for node type %T", n)
		return outcomeDone
	}
}

// pushChild pushes a fresh frame for evaluating node within sc and leaves
// f itself in place, one level down, to resume on the next Step() once
// the child frame has popped and deposited its result/completion into
// lastChildResult/lastChildCompletion.
func (i *Interpreter) pushChild(node ast.Node, sc *scope.Scope) {
	i.push(&frame{node: node, scope: sc})
}
