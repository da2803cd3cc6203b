// Package binding builds formula environments from documents and
// command-line assignments.
//
// An environment document is YAML (or JSON, which is a YAML subset) with two
// optional top-level mappings:
//
//	vars:
//	  x: 2
//	  names: [a, b]
//	funcs:
//	  minus3:
//	    params: [a, b, c]
//	    body: a - b - c
//	  sum:
//	    params: ['...xs']
//	    body: 'reduce(xs, #acc + #, 0)'
//
// Each entry of vars is converted with [lang.FromNative]; nested mappings are
// rejected. Each entry of funcs becomes a [lang.Callable] whose body is an
// expr-lang expression (see https://expr-lang.org) over the declared
// parameters and the document's vars. A final parameter written as
// "...name" makes the function variadic and binds the remaining arguments to
// name as a list. Calls with any Undefined argument return Undefined without
// running the body. A body naming anything other than a parameter, a var, an
// expr-lang builtin or a helper is rejected with [ErrUnboundName].
//
// Bodies may use the mung helpers for PATH-like lists:
//
//	mung.prefix(list, items...)  // items moved to the front of list
//
// Command-line assignments of the form name=literal are parsed with
// [ParseVar]. The literal is a constant formula such as 3, 2.5, 'text',
// True or [1, 2]; text that is not a constant formula binds as a string.
package binding
