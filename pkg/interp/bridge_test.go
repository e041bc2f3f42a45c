package interp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sandboxjs/pkg/ast"
	"sandboxjs/pkg/value"
)

func registerGlobalFn(t *testing.T, i *Interpreter, name string, fn interface{}) {
	t.Helper()
	gv, err := i.CreateNativeFunction(fn, false)
	if err != nil {
		t.Fatalf("CreateNativeFunction(%s): %v", name, err)
	}
	i.Global().PutData(name, &value.DataProperty{Value: gv, Writable: true, Configurable: true})
}

func TestHostFunctionNeverCalledAfterUncaughtThrow(t *testing.T) {
	// throw "horrible err"; setVal(2);
	// setVal must never run: the throw unwinds before the second statement.
	i := New()
	called := false
	registerGlobalFn(t, i, "setVal", func(n float64) { called = true })

	prog := program(
		&ast.ThrowStatement{Argument: str("horrible err")},
		exprStmt(&ast.CallExpression{Callee: ident("setVal"), Arguments: []ast.Expression{num(2)}}),
	)
	if _, err := i.Run(prog); err == nil {
		t.Fatal("expected an error from the uncaught throw")
	}
	if called {
		t.Error("setVal must not have been called after an uncaught throw")
	}
}

func TestHostCounterIncrementedAcrossTwoCalls(t *testing.T) {
	// setVal(2); setVal(getVal() + 2); -- counter ends at 4.
	i := New()
	counter := 0.0
	registerGlobalFn(t, i, "setVal", func(n float64) { counter = n })
	registerGlobalFn(t, i, "getVal", func() float64 { return counter })

	prog := program(
		exprStmt(&ast.CallExpression{Callee: ident("setVal"), Arguments: []ast.Expression{num(2)}}),
		exprStmt(&ast.CallExpression{Callee: ident("setVal"), Arguments: []ast.Expression{
			&ast.BinaryExpression{
				Operator: "+",
				Left:     &ast.CallExpression{Callee: ident("getVal")},
				Right:    num(2),
			},
		}}),
	)
	if _, err := i.Run(prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counter != 4 {
		t.Errorf("counter = %v, want 4", counter)
	}
}

func TestHostFunctionReturningErrorRaisesGuestException(t *testing.T) {
	// A trailing (T, error) return with a non-nil error becomes a guest
	// exception rather than a host-side panic or silent zero value.
	i := New()
	registerGlobalFn(t, i, "fail", func() (float64, error) {
		return 0, assertErr("boom")
	})
	prog := program(exprStmt(&ast.CallExpression{Callee: ident("fail")}))
	if _, err := i.Run(prog); err == nil {
		t.Fatal("expected an error from a host function's non-nil error return")
	}
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

func TestNativeToPseudoAndBackRoundTripsSlicesAndMaps(t *testing.T) {
	i := New()
	host := map[string]interface{}{
		"str": "abc",
		"n":   float64(4),
		"arr": []interface{}{float64(1), float64(2), float64(3)},
	}
	gv, err := i.NativeToPseudo(host)
	if err != nil {
		t.Fatalf("NativeToPseudo: %v", err)
	}
	back, err := i.PseudoToNative(gv)
	if err != nil {
		t.Fatalf("PseudoToNative: %v", err)
	}
	assert.Equal(t, host, back)
}

func TestNativeToPseudoRoundTripsTime(t *testing.T) {
	i := New()
	now := time.Now().UTC().Truncate(time.Millisecond)
	gv, err := i.NativeToPseudo(now)
	if err != nil {
		t.Fatalf("NativeToPseudo: %v", err)
	}
	if gv.AsObject().Class != value.ClassDate {
		t.Fatalf("expected a Date object, got class %v", gv.AsObject().Class)
	}
	back, err := i.PseudoToNative(gv)
	if err != nil {
		t.Fatalf("PseudoToNative: %v", err)
	}
	assert.Equal(t, now, back)
}

func TestPseudoToNativeRejectsGuestFunction(t *testing.T) {
	i := New()
	fn := &ast.FunctionLiteral{Name: "f", Body: &ast.BlockStatement{}}
	ast.HoistFunction(fn)
	prog := program(&ast.FunctionDeclaration{Function: fn})
	if _, err := i.Run(prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dp, ok := i.Global().GetOwnData("f")
	if !ok {
		t.Fatal("expected global function f to exist")
	}
	if _, err := i.PseudoToNative(dp.Value); err == nil {
		t.Error("expected an error converting a guest function to a host value")
	}
}

func TestArrayNativeToPseudoPreservesExtraProperties(t *testing.T) {
	// Mirrors a regex match result: numeric elements plus "index"/"input".
	i := New()
	arr, err := i.ArrayNativeToPseudo(
		[]interface{}{"abc", "a"},
		map[string]interface{}{"index": float64(0), "input": "abc def"},
	)
	if err != nil {
		t.Fatalf("ArrayNativeToPseudo: %v", err)
	}
	elements, extra, err := i.ArrayPseudoToNative(arr)
	if err != nil {
		t.Fatalf("ArrayPseudoToNative: %v", err)
	}
	assert.Equal(t, []interface{}{"abc", "a"}, elements)
	assert.Equal(t, map[string]interface{}{"index": float64(0), "input": "abc def"}, extra)
}

func TestObjectPropertiesSurviveExport(t *testing.T) {
	// var a = {str: "abc", n: 4}; exportObj(a); -- the host sees both
	// properties with their values. A Go map has no key order, so this
	// does not check enumeration order.
	i := New()
	var exported map[string]interface{}
	registerGlobalFn(t, i, "exportObj", func(v value.Value) error {
		m, err := i.PseudoToNative(v)
		if err != nil {
			return err
		}
		exported = m.(map[string]interface{})
		return nil
	})
	obj := &ast.ObjectLiteral{Properties: []*ast.Property{
		{Key: "str", Kind: ast.PropertyInit, Value: str("abc")},
		{Key: "n", Kind: ast.PropertyInit, Value: num(4)},
	}}
	prog := program(
		&ast.VariableDeclaration{Declarations: []*ast.VariableDeclarator{{Name: *ident("a"), Init: obj}}},
		exprStmt(&ast.CallExpression{Callee: ident("exportObj"), Arguments: []ast.Expression{ident("a")}}),
	)
	if _, err := i.Run(prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, map[string]interface{}{"str": "abc", "n": float64(4)}, exported)
}
