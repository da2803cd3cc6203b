package lang

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// Env binds names to values. It is only read by the engine.
//
// Lookups consult the receiver first and then the built-in functions, so a
// caller binding shadows a built-in of the same name. A nil Env is valid and
// resolves only the built-ins.
type Env map[string]Value

// Lookup resolves name in e and then in the built-ins.
func (e Env) Lookup(name string) (Value, bool) {
	if v, ok := e[name]; ok {
		return v, true
	}

	v, ok := builtins()[name]

	return v, ok
}

// Bound reports whether name resolves in e or the built-ins.
func (e Env) Bound(name string) bool {
	_, ok := e.Lookup(name)

	return ok
}

// IsFunc reports whether name resolves to a callable.
func (e Env) IsFunc(name string) bool {
	v, ok := e.Lookup(name)

	return ok && v.Type() == TypeFunc
}

// Names returns every name resolvable through e, including the built-ins,
// in sorted order.
func (e Env) Names() []string {
	names := slices.Collect(maps.Keys(builtins()))

	for name := range e {
		if _, ok := builtins()[name]; !ok {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return names
}

// Builtins returns a copy of the built-in function table.
func Builtins() Env { return maps.Clone(builtins()) }

// builtins is the immutable table of built-in functions.
var builtins = sync.OnceValue(func() Env {
	return Env{
		"not": NewFunc("not", 1, builtinNot),
		"eq":  NewFunc("eq", 2, builtinEq),
		"in":  NewFunc("in", 2, builtinIn),
		"and": NewFunc("and", 2, builtinAnd),
		"or":  NewFunc("or", 2, builtinOr),
	}
})

// anyUndefined reports whether an argument is Undefined, in which case the
// built-ins propagate Undefined.
func anyUndefined(args []Value) bool {
	return slices.ContainsFunc(args, func(v Value) bool { return !v.IsDefined() })
}

func builtinNot(args []Value) (Value, error) {
	if anyUndefined(args) {
		return Undefined(), nil
	}

	return NewBool(!args[0].Truthy()), nil
}

func builtinEq(args []Value) (Value, error) {
	if anyUndefined(args) {
		return Undefined(), nil
	}

	return NewBool(args[0].Equal(args[1])), nil
}

func builtinAnd(args []Value) (Value, error) {
	if anyUndefined(args) {
		return Undefined(), nil
	}

	return NewBool(args[0].Truthy() && args[1].Truthy()), nil
}

func builtinOr(args []Value) (Value, error) {
	if anyUndefined(args) {
		return Undefined(), nil
	}

	return NewBool(args[0].Truthy() || args[1].Truthy()), nil
}

// builtinIn tests list membership, or substring containment when both
// arguments are strings.
func builtinIn(args []Value) (Value, error) {
	if anyUndefined(args) {
		return Undefined(), nil
	}

	needle, haystack := args[0], args[1]

	switch haystack.Type() {
	case TypeList:
		return NewBool(slices.ContainsFunc(haystack.List(), needle.Equal)), nil

	case TypeString:
		if needle.Type() == TypeString {
			return NewBool(strings.Contains(haystack.Text(), needle.Text())), nil
		}
	}

	return Undefined(), ErrTypeMismatch.With(
		typeAttr("needle", needle),
		typeAttr("container", haystack),
	)
}
