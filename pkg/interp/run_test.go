package interp

import (
	"testing"

	"sandboxjs/pkg/ast"
	"sandboxjs/pkg/value"
)

// Small AST-construction helpers. There is no parser in this repo (CORE
// SPEC §1 treats it as an external collaborator -- see eval.go), so every
// test here hand-builds the tree a conforming parser would have produced.

func num(n float64) *ast.LiteralNode   { return &ast.LiteralNode{Kind: ast.LiteralNumber, Num: n} }
func str(s string) *ast.LiteralNode    { return &ast.LiteralNode{Kind: ast.LiteralString, Str: s} }
func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func program(stmts ...ast.Statement) *ast.Program {
	p := &ast.Program{Statements: stmts}
	ast.HoistProgram(p)
	return p
}

func exprStmt(e ast.Expression) *ast.ExpressionStatement {
	return &ast.ExpressionStatement{Expr: e}
}

func TestRunArithmetic(t *testing.T) {
	// 6 * 7;
	i := New()
	prog := program(exprStmt(&ast.BinaryExpression{Operator: "*", Left: num(6), Right: num(7)}))
	got, err := i.Run(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsNumber() || got.AsNumber() != 42 {
		t.Errorf("6 * 7 = %v, want 42", got)
	}
}

func TestRunStringConcatenation(t *testing.T) {
	i := New()
	prog := program(exprStmt(&ast.BinaryExpression{Operator: "+", Left: str("foo"), Right: str("bar")}))
	got, err := i.Run(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsString() != "foobar" {
		t.Errorf("got %q, want %q", got.AsString(), "foobar")
	}
}

func TestRunVarHoistingAndAssignment(t *testing.T) {
	// var a; a = 1 + 2;
	i := New()
	prog := program(
		&ast.VariableDeclaration{Declarations: []*ast.VariableDeclarator{{Name: *ident("a")}}},
		exprStmt(&ast.AssignmentExpression{
			Operator: "=",
			Left:     ident("a"),
			Right:    &ast.BinaryExpression{Operator: "+", Left: num(1), Right: num(2)},
		}),
	)
	got, err := i.Run(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsNumber() != 3 {
		t.Errorf("got %v, want 3", got)
	}
}

func TestRunWhileLoopCountsToFive(t *testing.T) {
	// var n = 0; while (n < 5) { n = n + 1; } n;
	i := New()
	prog := program(
		&ast.VariableDeclaration{Declarations: []*ast.VariableDeclarator{{Name: *ident("n"), Init: num(0)}}},
		&ast.WhileStatement{
			Test: &ast.BinaryExpression{Operator: "<", Left: ident("n"), Right: num(5)},
			Body: &ast.BlockStatement{Statements: []ast.Statement{
				exprStmt(&ast.AssignmentExpression{
					Operator: "=",
					Left:     ident("n"),
					Right:    &ast.BinaryExpression{Operator: "+", Left: ident("n"), Right: num(1)},
				}),
			}},
		},
		exprStmt(ident("n")),
	)
	got, err := i.Run(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsNumber() != 5 {
		t.Errorf("got %v, want 5", got)
	}
}

func TestRunBreakStopsLoop(t *testing.T) {
	// var n = 0; while (true) { n = n + 1; if (n == 3) { break; } } n;
	i := New()
	prog := program(
		&ast.VariableDeclaration{Declarations: []*ast.VariableDeclarator{{Name: *ident("n"), Init: num(0)}}},
		&ast.WhileStatement{
			Test: &ast.LiteralNode{Kind: ast.LiteralBool, Bool: true},
			Body: &ast.BlockStatement{Statements: []ast.Statement{
				exprStmt(&ast.AssignmentExpression{
					Operator: "=",
					Left:     ident("n"),
					Right:    &ast.BinaryExpression{Operator: "+", Left: ident("n"), Right: num(1)},
				}),
				&ast.IfStatement{
					Test:       &ast.BinaryExpression{Operator: "==", Left: ident("n"), Right: num(3)},
					Consequent: &ast.BlockStatement{Statements: []ast.Statement{&ast.BreakStatement{}}},
				},
			}},
		},
		exprStmt(ident("n")),
	)
	got, err := i.Run(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsNumber() != 3 {
		t.Errorf("got %v, want 3", got)
	}
}

func TestRunUncaughtThrowReturnsHostError(t *testing.T) {
	// throw "horrible err";
	i := New()
	prog := program(&ast.ThrowStatement{Argument: str("horrible err")})
	_, err := i.Run(prog)
	if err == nil {
		t.Fatal("expected an error from an uncaught throw")
	}
}

func TestRunTryCatchRecoversThrownValue(t *testing.T) {
	// var caught; try { throw "boom"; } catch (e) { caught = e; } caught;
	i := New()
	prog := program(
		&ast.VariableDeclaration{Declarations: []*ast.VariableDeclarator{{Name: *ident("caught")}}},
		&ast.TryStatement{
			Block: &ast.BlockStatement{Statements: []ast.Statement{
				&ast.ThrowStatement{Argument: str("boom")},
			}},
			Handler: &ast.CatchClause{
				Param: ident("e"),
				Body: &ast.BlockStatement{Statements: []ast.Statement{
					exprStmt(&ast.AssignmentExpression{Operator: "=", Left: ident("caught"), Right: ident("e")}),
				}},
			},
		},
		exprStmt(ident("caught")),
	)
	got, err := i.Run(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsString() != "boom" {
		t.Errorf("got %q, want %q", got.AsString(), "boom")
	}
}

func TestRunFinallyRunsEvenWhenTryThrows(t *testing.T) {
	// var ran = false; try { throw "x"; } catch (e) {} finally { ran = true; } ran;
	i := New()
	prog := program(
		&ast.VariableDeclaration{Declarations: []*ast.VariableDeclarator{
			{Name: *ident("ran"), Init: &ast.LiteralNode{Kind: ast.LiteralBool, Bool: false}},
		}},
		&ast.TryStatement{
			Block:   &ast.BlockStatement{Statements: []ast.Statement{&ast.ThrowStatement{Argument: str("x")}}},
			Handler: &ast.CatchClause{Param: ident("e"), Body: &ast.BlockStatement{}},
			Finally: &ast.BlockStatement{Statements: []ast.Statement{
				exprStmt(&ast.AssignmentExpression{
					Operator: "=", Left: ident("ran"), Right: &ast.LiteralNode{Kind: ast.LiteralBool, Bool: true},
				}),
			}},
		},
		exprStmt(ident("ran")),
	)
	got, err := i.Run(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.AsBool() {
		t.Error("expected finally to run and set ran = true")
	}
}

func TestAssignmentToUndeclaredNameCreatesImplicitGlobal(t *testing.T) {
	// function f() { bar = 5; } f(); bar;
	// The assignment inside f must land on the global object, not f's own
	// scope bag, so the outer read observes bar === 5 rather than throwing
	// a ReferenceError.
	i := New()
	fn := &ast.FunctionLiteral{
		Name: "f",
		Body: &ast.BlockStatement{Statements: []ast.Statement{
			exprStmt(&ast.AssignmentExpression{Operator: "=", Left: ident("bar"), Right: num(5)}),
		}},
	}
	ast.HoistFunction(fn)
	prog := program(
		&ast.FunctionDeclaration{Function: fn},
		exprStmt(&ast.CallExpression{Callee: ident("f")}),
		exprStmt(ident("bar")),
	)
	got, err := i.Run(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsNumber() != 5 {
		t.Errorf("bar = %v, want 5", got)
	}
}

func TestStrictAssignmentToUndeclaredNameThrowsReferenceError(t *testing.T) {
	// function f() { "use strict"; bar = 5; } f();
	i := New()
	fn := &ast.FunctionLiteral{
		Name:   "f",
		Strict: true,
		Body: &ast.BlockStatement{Statements: []ast.Statement{
			exprStmt(&ast.AssignmentExpression{Operator: "=", Left: ident("bar"), Right: num(5)}),
		}},
	}
	ast.HoistFunction(fn)
	prog := program(
		&ast.FunctionDeclaration{Function: fn},
		exprStmt(&ast.CallExpression{Callee: ident("f")}),
	)
	if _, err := i.Run(prog); err == nil {
		t.Fatal("expected a ReferenceError assigning to an undeclared name in strict mode")
	}
}

func TestArrayLengthAssignmentRejectsNonUint32(t *testing.T) {
	// var a = [1, 2, 3]; a.length = -1;
	i := New()
	arrLit := &ast.ArrayLiteral{Elements: []ast.Expression{num(1), num(2), num(3)}}
	prog := program(
		&ast.VariableDeclaration{Declarations: []*ast.VariableDeclarator{{Name: *ident("a"), Init: arrLit}}},
		exprStmt(&ast.AssignmentExpression{
			Operator: "=",
			Left:     &ast.MemberExpression{Object: ident("a"), Property: ident("length")},
			Right:    num(-1),
		}),
	)
	if _, err := i.Run(prog); err == nil {
		t.Fatal("expected a RangeError assigning a negative array length")
	}
}

func TestArrayLengthAssignmentShrinks(t *testing.T) {
	// var a = [1, 2, 3]; a.length = 1; a.length;
	i := New()
	arrLit := &ast.ArrayLiteral{Elements: []ast.Expression{num(1), num(2), num(3)}}
	prog := program(
		&ast.VariableDeclaration{Declarations: []*ast.VariableDeclarator{{Name: *ident("a"), Init: arrLit}}},
		exprStmt(&ast.AssignmentExpression{
			Operator: "=",
			Left:     &ast.MemberExpression{Object: ident("a"), Property: ident("length")},
			Right:    num(1),
		}),
		exprStmt(&ast.MemberExpression{Object: ident("a"), Property: ident("length")}),
	)
	got, err := i.Run(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsNumber() != 1 {
		t.Errorf("a.length = %v, want 1", got)
	}
}

func TestDeleteOfHoistedVarReturnsFalseWithoutRemoving(t *testing.T) {
	// var a = 1; delete this.a; a;
	// Hoisted vars are non-configurable (scope.Declare) and live directly
	// on the global object, so a delete reached through a MemberExpression
	// (the only shape stepDeleteExpression actually dispatches to
	// DeleteOwn) must refuse and leave the binding intact.
	i := New()
	prog := program(
		&ast.VariableDeclaration{Declarations: []*ast.VariableDeclarator{{Name: *ident("a"), Init: num(1)}}},
		exprStmt(&ast.UnaryExpression{
			Operator: "delete",
			Argument: &ast.MemberExpression{Object: &ast.ThisExpression{}, Property: ident("a")},
		}),
	)
	got, err := i.Run(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsBool() {
		t.Error("expected delete of a non-configurable property to report false")
	}
	dp, ok := i.globalScope.Bag.GetOwnData("a")
	if !ok || dp.Value.AsNumber() != 1 {
		t.Error("expected delete of a non-configurable var to leave it intact")
	}
}

func TestRunFunctionCallAndClosure(t *testing.T) {
	// function makeAdder(x) { return function(y) { return x + y; }; }
	// var add5 = makeAdder(5); add5(2);
	i := New()
	inner := &ast.FunctionLiteral{
		Params: []*ast.Identifier{ident("y")},
		Body: &ast.BlockStatement{Statements: []ast.Statement{
			&ast.ReturnStatement{Argument: &ast.BinaryExpression{Operator: "+", Left: ident("x"), Right: ident("y")}},
		}},
	}
	outer := &ast.FunctionLiteral{
		Name:   "makeAdder",
		Params: []*ast.Identifier{ident("x")},
		Body: &ast.BlockStatement{Statements: []ast.Statement{
			&ast.ReturnStatement{Argument: inner},
		}},
	}
	ast.HoistFunction(outer)
	ast.HoistFunction(inner)

	prog := program(
		&ast.FunctionDeclaration{Function: outer},
		&ast.VariableDeclaration{Declarations: []*ast.VariableDeclarator{{
			Name: *ident("add5"),
			Init: &ast.CallExpression{Callee: ident("makeAdder"), Arguments: []ast.Expression{num(5)}},
		}}},
		exprStmt(&ast.CallExpression{Callee: ident("add5"), Arguments: []ast.Expression{num(2)}}),
	)
	got, err := i.Run(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsNumber() != 7 {
		t.Errorf("got %v, want 7", got)
	}
}

func TestRunObjectLiteralPropertyAccess(t *testing.T) {
	// var o = {str: "abc", n: 4}; o.n;
	i := New()
	obj := &ast.ObjectLiteral{Properties: []*ast.Property{
		{Key: "str", Kind: ast.PropertyInit, Value: str("abc")},
		{Key: "n", Kind: ast.PropertyInit, Value: num(4)},
	}}
	prog := program(
		&ast.VariableDeclaration{Declarations: []*ast.VariableDeclarator{{Name: *ident("o"), Init: obj}}},
		exprStmt(&ast.MemberExpression{Object: ident("o"), Property: ident("n")}),
	)
	got, err := i.Run(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsNumber() != 4 {
		t.Errorf("got %v, want 4", got)
	}
}

func TestObjectLiteralPreservesInsertionOrderKeys(t *testing.T) {
	// Scenario: var a = {str: "abc", n: 4}; enumerating a's own keys must
	// yield "str" then "n" -- insertion order, not alphabetical or
	// numeric-first (CORE SPEC §3's ordered-property-map guarantee).
	i := New()
	obj := &ast.ObjectLiteral{Properties: []*ast.Property{
		{Key: "str", Kind: ast.PropertyInit, Value: str("abc")},
		{Key: "n", Kind: ast.PropertyInit, Value: num(4)},
	}}
	prog := program(&ast.VariableDeclaration{Declarations: []*ast.VariableDeclarator{{Name: *ident("a"), Init: obj}}})
	if _, err := i.Run(prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dp, ok := i.globalScope.Bag.GetOwnData("a")
	if !ok {
		t.Fatal("expected global var a to exist")
	}
	keys := dp.Value.AsObject().OwnEnumerableKeys()
	want := []string{"str", "n"}
	if len(keys) != len(want) || keys[0] != want[0] || keys[1] != want[1] {
		t.Errorf("OwnEnumerableKeys() = %v, want %v", keys, want)
	}
}

func TestInstanceofAgainstEngineRaisedTypeError(t *testing.T) {
	// NewError("TypeError", ...) must chain to the registered TypeError
	// prototype so `e instanceof TypeError` holds for engine-raised errors.
	i := New()
	errObj := i.NewError("TypeError", "bad")
	ctorDP, ok := i.GlobalObj.GetOwnData("TypeError")
	if !ok {
		t.Fatal("expected global TypeError constructor to be registered")
	}
	result, err := i.opInstanceOf(value.Obj(errObj), ctorDP.Value)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.AsBool() {
		t.Error("expected NewError(\"TypeError\", ...) instanceof TypeError to be true")
	}
}
