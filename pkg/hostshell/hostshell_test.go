package hostshell

import (
	"testing"

	"sandboxjs/pkg/interp"
	"sandboxjs/pkg/value"
)

func TestQueueFunctionRegistersCallableGlobal(t *testing.T) {
	s := New(interp.New())
	if err := s.QueueFunction("double", func(n float64) float64 { return n * 2 }); err != nil {
		t.Fatalf("QueueFunction: %v", err)
	}
	dp, ok := s.Interp.Global().GetOwnData("double")
	if !ok || !dp.Value.IsCallable() {
		t.Fatal("expected a callable global named double after QueueFunction")
	}
}

func TestCallFunctionInvokesQueuedFunction(t *testing.T) {
	s := New(interp.New())
	if err := s.QueueFunction("add", func(a, b float64) float64 { return a + b }); err != nil {
		t.Fatalf("QueueFunction: %v", err)
	}
	got, err := s.CallFunction("add", 2.0, 3.0)
	if err != nil {
		t.Fatalf("CallFunction: %v", err)
	}
	if got.(float64) != 5 {
		t.Errorf("got %v, want 5", got)
	}
}

func TestCallFunctionErrorsOnMissingGlobal(t *testing.T) {
	s := New(interp.New())
	if _, err := s.CallFunction("doesNotExist"); err == nil {
		t.Fatal("expected an error calling a function that was never queued")
	}
}

func TestCallFunctionErrorsWhenGlobalIsNotCallable(t *testing.T) {
	s := New(interp.New())
	// Bind a non-function value under the name, then confirm CallFunction
	// refuses to treat it as callable rather than panicking through Call.
	gv, err := s.Interp.NativeToPseudo("not a function")
	if err != nil {
		t.Fatalf("NativeToPseudo: %v", err)
	}
	s.Interp.Global().PutData("notAFunction", &value.DataProperty{Value: gv, Writable: true, Configurable: true})
	if _, err := s.CallFunction("notAFunction"); err == nil {
		t.Fatal("expected an error calling a non-callable global")
	}
}
