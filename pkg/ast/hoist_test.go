package ast

import (
	"reflect"
	"testing"
)

func id(name string) *Identifier { return &Identifier{Name: name} }

func varDecl(names ...string) *VariableDeclaration {
	decls := make([]*VariableDeclarator, len(names))
	for i, n := range names {
		decls[i] = &VariableDeclarator{Name: *id(n)}
	}
	return &VariableDeclaration{Declarations: decls}
}

func funcDecl(name string) *FunctionDeclaration {
	return &FunctionDeclaration{Function: &FunctionLiteral{Name: name, Body: &BlockStatement{}}}
}

func TestHoistCollectsVarsAcrossNestedBlocks(t *testing.T) {
	stmts := []Statement{
		varDecl("a", "b"),
		&IfStatement{
			Test:       id("a"),
			Consequent: &BlockStatement{Statements: []Statement{varDecl("c")}},
			Alternate:  varDecl("d"),
		},
		&ForStatement{
			Init: varDecl("e"),
			Body: &BlockStatement{Statements: []Statement{varDecl("f")}},
		},
		&WhileStatement{Test: id("a"), Body: varDecl("g")},
		&TryStatement{
			Block:   &BlockStatement{Statements: []Statement{varDecl("h")}},
			Handler: &CatchClause{Param: id("err"), Body: &BlockStatement{Statements: []Statement{varDecl("i")}}},
			Finally: &BlockStatement{Statements: []Statement{varDecl("j")}},
		},
	}

	vars, funcs := Hoist(stmts)
	want := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	if !reflect.DeepEqual(vars, want) {
		t.Errorf("Hoist vars = %v, want %v", vars, want)
	}
	if len(funcs) != 0 {
		t.Errorf("expected no hoisted functions, got %v", funcs)
	}
}

func TestHoistDoesNotDescendIntoNestedFunctionBody(t *testing.T) {
	inner := &FunctionLiteral{
		Name: "inner",
		Body: &BlockStatement{Statements: []Statement{varDecl("shouldNotHoist")}},
	}
	stmts := []Statement{
		&ExpressionStatement{Expr: inner},
		varDecl("outer"),
	}
	vars, _ := Hoist(stmts)
	if reflect.DeepEqual(vars, []string{"shouldNotHoist", "outer"}) {
		t.Fatalf("Hoist must not descend into a nested FunctionLiteral body")
	}
	if !reflect.DeepEqual(vars, []string{"outer"}) {
		t.Errorf("Hoist vars = %v, want [outer]", vars)
	}
}

func TestHoistLaterFunctionDeclarationWins(t *testing.T) {
	first := funcDecl("f")
	second := &FunctionDeclaration{Function: &FunctionLiteral{Name: "f", Body: &BlockStatement{}, Strict: true}}
	_, funcs := Hoist([]Statement{first, second})
	if len(funcs) != 1 {
		t.Fatalf("expected exactly one hoisted function named f, got %d", len(funcs))
	}
	if funcs[0] != second.Function {
		t.Errorf("expected the later declaration to win the hoist slot")
	}
}

func TestHoistProgramAndHoistFunctionPopulateFields(t *testing.T) {
	p := &Program{Statements: []Statement{varDecl("x"), funcDecl("g")}}
	HoistProgram(p)
	if !reflect.DeepEqual(p.HoistedVars, []string{"x"}) {
		t.Errorf("HoistedVars = %v", p.HoistedVars)
	}
	if len(p.HoistedFuncs) != 1 || p.HoistedFuncs[0].Name != "g" {
		t.Errorf("HoistedFuncs = %v", p.HoistedFuncs)
	}

	fn := &FunctionLiteral{Body: &BlockStatement{Statements: []Statement{varDecl("y")}}}
	HoistFunction(fn)
	if !reflect.DeepEqual(fn.HoistedVars, []string{"y"}) {
		t.Errorf("FunctionLiteral HoistedVars = %v", fn.HoistedVars)
	}
}

func TestHoistSwitchAndLabeledStatement(t *testing.T) {
	stmts := []Statement{
		&SwitchStatement{
			Discriminant: id("x"),
			Cases: []*CaseClause{
				{Test: id("x"), Consequent: []Statement{varDecl("a")}},
				{Consequent: []Statement{varDecl("b")}},
			},
		},
		&LabeledStatement{Label: "outer", Body: varDecl("c")},
	}
	vars, _ := Hoist(stmts)
	if !reflect.DeepEqual(vars, []string{"a", "b", "c"}) {
		t.Errorf("Hoist vars = %v", vars)
	}
}
