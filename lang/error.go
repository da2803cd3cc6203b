package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrSyntax           = NewError("syntax error")
	ErrMissingVariable  = NewError("missing variable")
	ErrEvaluation       = NewError("evaluation failed")
	ErrMaxDepthExceeded = NewError("maximum nesting depth exceeded")
	ErrDivisionByZero   = NewError("division by zero")
	ErrOverflow         = NewError("integer overflow")
	ErrDomain           = NewError("result is not a real number")
	ErrTypeMismatch     = NewError("unsupported operand types")
	ErrNotCallable      = NewError("not callable")
	ErrArity            = NewError("argument count mismatch")
	ErrStackUnderflow   = NewError("postfix stack underflow")
	ErrInvalidValue     = NewError("invalid value")
	ErrReadInput        = NewError("failed to read input")
	ErrInvalidUTF8      = NewError("invalid UTF-8 encoding")
	ErrInputTooLarge    = NewError("input too large")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error derived from the same sentinel,
// so that errors.Is matches values produced by [Error.With] and [Error.Wrap].
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.msg == "" {
		return false
	}

	return e.msg == t.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// SyntaxError reports an expression the grammar could not match.
type SyntaxError struct {
	// Expr is the complete source expression.
	Expr string
	// Line is the text of the line containing the failure.
	Line string
	// LineNumber is the 1-based line of the failure.
	LineNumber int
	// Column is the 1-based column (in runes) of the failure.
	Column int
	// Expected lists what the grammar would have accepted at Column.
	Expected []string

	cause error
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	var buf strings.Builder

	buf.WriteString("syntax error at line ")
	buf.WriteString(strconv.Itoa(e.LineNumber))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Column))

	if e.cause != nil {
		buf.WriteString(": ")
		buf.WriteString(e.cause.Error())
	} else if len(e.Expected) > 0 {
		buf.WriteString(": expected ")
		buf.WriteString(strings.Join(e.Expected, ", "))
	}

	return buf.String()
}

// Unwrap returns [ErrSyntax] and, if present, the underlying cause.
func (e *SyntaxError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrSyntax, e.cause}
	}

	return []error{ErrSyntax}
}

// LogValue implements slog.LogValuer.
func (e *SyntaxError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrSyntax.msg),
		slog.String("expr", e.Expr),
		slog.Int("line", e.LineNumber),
		slog.Int("column", e.Column),
		slog.Any("expected", e.Expected),
	)
}

// Snippet renders the failing line with a caret under the failing column.
func (e *SyntaxError) Snippet() string {
	var src strings.Builder

	// Print the line with line number
	src.WriteString("  ")
	src.WriteString(strconv.Itoa(e.LineNumber))
	src.WriteString(" | ")
	src.WriteString(e.Line)
	src.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(strconv.Itoa(e.LineNumber))+5)
	if e.Column > 0 {
		padding += strings.Repeat(" ", e.Column-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}

// MissingVariableError reports an identifier or function name that is bound
// in neither the caller's environment nor the built-ins.
type MissingVariableError struct {
	Name string
}

// Error implements the error interface.
func (e *MissingVariableError) Error() string {
	return ErrMissingVariable.msg + ": " + strconv.Quote(e.Name)
}

// Unwrap returns [ErrMissingVariable].
func (e *MissingVariableError) Unwrap() error { return ErrMissingVariable }

// LogValue implements slog.LogValuer.
func (e *MissingVariableError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrMissingVariable.msg),
		slog.String("name", e.Name),
	)
}

// EvaluationError reports a fault raised while reducing an expression:
// numeric faults, unsupported operand types, arity mismatches, calls of
// non-callable names, and errors returned by host functions.
type EvaluationError struct {
	// Op is the operator symbol or function name being applied.
	Op string
	// Err is the fault, typically derived from one of the Err* sentinels.
	Err error
}

// Error implements the error interface.
func (e *EvaluationError) Error() string {
	return "evaluate " + strconv.Quote(e.Op) + ": " + e.Err.Error()
}

// Unwrap returns [ErrEvaluation] and the underlying fault.
func (e *EvaluationError) Unwrap() []error {
	return []error{ErrEvaluation, e.Err}
}

// LogValue implements slog.LogValuer.
func (e *EvaluationError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrEvaluation.msg),
		slog.String("op", e.Op),
		slog.Any("cause", e.Err),
	)
}

func evalError(op string, err *Error) *EvaluationError {
	return &EvaluationError{Op: op, Err: err}
}
