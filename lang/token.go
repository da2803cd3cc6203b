package lang

import (
	"strconv"
	"strings"
)

// Kind identifies the variant held by a [Token].
type Kind int

const (
	// KindInt is an integer literal.
	KindInt Kind = iota

	// KindFloat is a decimal literal.
	KindFloat

	// KindString is a single-quoted string literal with its quotes removed.
	KindString

	// KindBool is a True or False literal.
	KindBool

	// KindIdent is a reference to an environment binding.
	KindIdent

	// KindOperator is a binary operator applied to the two preceding operands.
	KindOperator

	// KindCall is a function call applied to the preceding arguments.
	KindCall

	// KindList collects the preceding elements into a list.
	KindList
)

// String returns a string representation of the token kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Int"

	case KindFloat:
		return "Float"

	case KindString:
		return "String"

	case KindBool:
		return "Bool"

	case KindIdent:
		return "Ident"

	case KindOperator:
		return "Operator"

	case KindCall:
		return "Call"

	case KindList:
		return "List"

	default:
		return "Unknown"
	}
}

// Token is one entry of a postfix buffer. Literal tokens carry their typed
// payload; identifiers, operators and calls carry a name that is resolved
// only during reduction.
type Token struct {
	Kind Kind
	// Text holds the string payload, identifier, operator symbol, or callee.
	Text string
	// Int holds the integer payload, or the argument/element count of
	// [KindCall] and [KindList] tokens.
	Int   int64
	Float float64
	Bool  bool
}

// IntToken returns an integer literal token.
func IntToken(i int64) Token { return Token{Kind: KindInt, Int: i} }

// FloatToken returns a decimal literal token.
func FloatToken(f float64) Token { return Token{Kind: KindFloat, Float: f} }

// StringToken returns a string literal token. s must not include quotes.
func StringToken(s string) Token { return Token{Kind: KindString, Text: s} }

// BoolToken returns a boolean literal token.
func BoolToken(b bool) Token { return Token{Kind: KindBool, Bool: b} }

// IdentToken returns an identifier token.
func IdentToken(name string) Token { return Token{Kind: KindIdent, Text: name} }

// OperatorToken returns a binary operator token.
func OperatorToken(sym string) Token { return Token{Kind: KindOperator, Text: sym} }

// CallToken returns a call token for name applied to argc arguments.
func CallToken(name string, argc int) Token {
	return Token{Kind: KindCall, Text: name, Int: int64(argc)}
}

// ListToken returns a list marker token collecting n elements.
func ListToken(n int) Token { return Token{Kind: KindList, Int: int64(n)} }

// Count returns the argument count of a call token or the element count of a
// list token, and zero for every other kind.
func (t Token) Count() int {
	if t.Kind == KindCall || t.Kind == KindList {
		return int(t.Int)
	}

	return 0
}

// String renders the token in the notation used by the postfix dump:
// literals in source syntax, calls as name/argc and lists as [n].
func (t Token) String() string {
	switch t.Kind {
	case KindInt:
		return strconv.FormatInt(t.Int, 10)

	case KindFloat:
		return formatFloat(t.Float)

	case KindString:
		return quote(t.Text)

	case KindBool:
		return formatBool(t.Bool)

	case KindIdent, KindOperator:
		return t.Text

	case KindCall:
		return t.Text + "/" + strconv.FormatInt(t.Int, 10)

	case KindList:
		return "[" + strconv.FormatInt(t.Int, 10) + "]"

	default:
		return "?"
	}
}

// quote renders s as a single-quoted string literal.
func quote(s string) string {
	var buf strings.Builder

	buf.Grow(len(s) + 2)
	buf.WriteByte('\'')

	for _, r := range s {
		if r == '\'' || r == '\\' {
			buf.WriteByte('\\')
		}

		buf.WriteRune(r)
	}

	buf.WriteByte('\'')

	return buf.String()
}

func formatBool(b bool) string {
	if b {
		return keywordTrue
	}

	return keywordFalse
}

// formatFloat renders f so that it reads back as a decimal literal.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}

	return s
}
