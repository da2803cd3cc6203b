// Package lang implements a small formula language. A single-line expression
// is compiled into a postfix token buffer and reduced against an environment
// of variables and functions, producing an integer, float, string, boolean,
// or list value.
//
// # Grammar
//
// Informal EBNF, loosest binding first:
//
//	Expression  → Additive (("and" | "or") Additive)*
//	Additive    → Relational (("+" | "-") Relational)*
//	Relational  → Term ((">=" | "<=" | ">" | "<") Term)*
//	Term        → Factor (("*" | "/" | "%") Factor)*
//	Factor      → Equality ("^" Factor)?
//	Equality    → Atom (("==" | "eq") Atom)*
//	Atom        → Call | List | "(" Expression ")" | Literal
//	Call        → Identifier "(" (Expression ("," Expression)*)? ")"
//	List        → "[" (Atom ("," Atom)*)? "]"
//	Literal     → "True" | "False" | Decimal | Integer | Identifier | String
//
// Integers are signed 64-bit. A sign is part of a numeric literal only where
// an operand is expected, so "2-3" is a subtraction and "2 - -3" is five.
// Strings are single-quoted with backslash escapes.
//
// # Precedence
//
// The ladder differs from most languages in two places:
//
//   - Equality binds tighter than every arithmetic operator, including "^".
//     "2 == 2 ^ 0" means "(2 == 2) ^ 0", which is True ^ 0, the integer 1.
//   - "and" and "or" bind loosest and evaluate both operands. Each yields a
//     Bool from the truthiness of its operands.
//
// "^" is right-associative; every other binary operator is left-associative.
//
// # Arithmetic
//
// "/" is true division and always yields a Float. "%" is floored, so a
// nonzero result takes the sign of the divisor. Integer "+", "-", "*" and "^"
// report an overflow instead of wrapping. Booleans behave as 0 and 1. "+" also
// concatenates strings and lists.
//
// # Faults
//
// [Parse] silences syntax errors and unbound names by default, returning
// [Undefined] and a nil error; use [WithFailSilently] to receive
// *[SyntaxError] and *[MissingVariableError] instead. An *[EvaluationError]
// is never silenced. That includes calling a name bound to a value that is
// not a function, which fails with [ErrNotCallable] rather than yielding
// Undefined. Any operator applied to Undefined yields Undefined.
//
// # Built-ins
//
// The functions not(x), eq(x, y), in(x, container), and(a, b) and or(a, b)
// are always available. A binding in the caller's [Env] shadows a built-in of
// the same name.
package lang
