// Package scope implements the lexically linked scope chain the
// interpreter resolves identifiers against (CORE SPEC §4.4). Each scope
// wraps a property bag -- a guest object with a null prototype -- so
// variable lookup and property lookup share exactly one code path.
package scope

import "sandboxjs/pkg/value"

// Scope is one link in the lexical chain. The global scope's Bag is the
// global object itself, so `var x` at top level and `window.x` (if a host
// ever exposes the global under that name) observe the same binding.
type Scope struct {
	Parent *Scope
	Bag    *value.Object
	Strict bool
	// IsFunctionScope marks a scope introduced by a function call, the
	// boundary `var` hoisting and `arguments` binding stop at. Block
	// statements do not introduce a new Scope (CORE SPEC Non-goals: no
	// block scoping), so this is only set on the global scope and on the
	// scope built for each guest function call.
	IsFunctionScope bool
	// IsWithScope marks a scope introduced by a `with` statement: lookups
	// against it fall through to the wrapped object's prototype chain
	// rather than only its own properties. A sloppy-mode assignment to a
	// name found nowhere still creates a global, as outside `with`.
	IsWithScope bool

	// ThisVal is the `this` binding introduced at a function-call scope
	// (CORE SPEC §4.2: `this` is resolved per call, not lexically like a
	// closure variable). Only meaningful when IsFunctionScope is true.
	ThisVal value.Value
}

// New creates a scope whose bag has no prototype (an ordinary property
// bag, not a guest-visible object), linked to parent.
func New(parent *Scope, strict bool) *Scope {
	s := &Scope{Parent: parent, Strict: strict}
	s.Bag = value.NewObject(nil)
	if parent != nil {
		s.Strict = s.Strict || parent.Strict
	}
	return s
}

// NewGlobal creates the root scope of an interpreter, backed by the given
// global object so its properties are guest-visible.
func NewGlobal(global *value.Object, strict bool) *Scope {
	return &Scope{Bag: global, Strict: strict, IsFunctionScope: true}
}

// NewWith creates a `with` scope wrapping obj; lookups against it are
// expected to consult obj's full prototype chain, not just its own keys,
// which is why IsWithScope is checked separately from a plain lookup.
func NewWith(parent *Scope, obj *value.Object) *Scope {
	return &Scope{Parent: parent, Bag: obj, Strict: parent.Strict, IsWithScope: true}
}

// Declare creates name in this scope's bag as a mutable, non-configurable,
// enumerable binding -- the attributes CORE SPEC §4.4 assigns to hoisted
// `var` and function declarations. If name already exists, its value is
// left untouched (hoisting must not clobber an already-initialized
// binding), matching the "don't overwrite existing functions/vars" rule in
// the CORE SPEC hoisting order.
func (s *Scope) Declare(name string) {
	if s.Bag.HasOwn(name) {
		return
	}
	s.Bag.PutData(name, &value.DataProperty{
		Value:        value.UndefinedValue,
		Writable:     true,
		Enumerable:   true,
		Configurable: false,
	})
}

// DeclareFunc creates or overwrites name in this scope's bag with fn,
// matching the hoisting order in which function declarations are bound
// after simple var declarations and override any same-named var that
// hoisted before them (CORE SPEC §4.4).
func (s *Scope) DeclareFunc(name string, fn value.Value) {
	s.Bag.PutData(name, &value.DataProperty{
		Value:        fn,
		Writable:     true,
		Enumerable:   true,
		Configurable: false,
	})
}

// Resolve walks the scope chain looking for name, returning the scope
// that owns it (not necessarily s) and whether it was found at all. A
// `with` scope is consulted via its own HasOwn plus prototype chain by
// the caller (pkg/interp), since walking prototypes is a value-layer
// concern scope intentionally stays ignorant of.
func (s *Scope) Resolve(name string) (*Scope, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Bag.HasOwn(name) {
			return cur, true
		}
		if cur.IsWithScope {
			// The with-object's prototype chain may also contain name;
			// pkg/interp's identifier resolution special-cases
			// IsWithScope and consults value-layer prototype walking
			// before giving up on this scope, so a plain HasOwn miss here
			// does not necessarily mean "not in this scope".
			continue
		}
	}
	return nil, false
}

// Global walks to the root of the chain and returns its bag.
func (s *Scope) Global() *value.Object {
	cur := s
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur.Bag
}

// NearestFunctionScope walks up to the nearest function-introduced scope,
// used to resolve `arguments` and to know where `var` hoisting should
// land for a nested block.
func (s *Scope) NearestFunctionScope() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.IsFunctionScope {
			return cur
		}
	}
	return s
}

// ResolveThis returns the `this` binding in effect for s: the ThisVal of
// the nearest enclosing function scope.
func (s *Scope) ResolveThis() value.Value {
	return s.NearestFunctionScope().ThisVal
}
