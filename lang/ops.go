package lang

import (
	"log/slog"
	"math"
	"strings"
)

// apply computes left op right. An Undefined operand yields Undefined.
func apply(op string, left, right Value) (Value, error) {
	if !left.IsDefined() || !right.IsDefined() {
		return Undefined(), nil
	}

	var (
		result Value
		err    *Error
	)

	switch op {
	case "+":
		result, err = add(left, right)

	case "-":
		result, err = arith(left, right, subInt, func(a, b float64) float64 { return a - b })

	case "*":
		result, err = arith(left, right, mulInt, func(a, b float64) float64 { return a * b })

	case "/":
		result, err = divide(left, right)

	case "%":
		result, err = modulo(left, right)

	case "^":
		result, err = power(left, right)

	case "==", keywordEq:
		result = NewBool(left.Equal(right))

	case "<", "<=", ">", ">=":
		result, err = compare(op, left, right)

	case keywordAnd:
		result = NewBool(left.Truthy() && right.Truthy())

	case keywordOr:
		result = NewBool(left.Truthy() || right.Truthy())

	default:
		err = ErrInvalidValue.With(slog.String("operator", op))
	}

	if err != nil {
		return Undefined(), evalError(op, err.With(
			typeAttr("left", left),
			typeAttr("right", right),
		))
	}

	return result, nil
}

// add sums numbers and concatenates strings or lists.
func add(left, right Value) (Value, *Error) {
	switch {
	case left.typ == TypeString && right.typ == TypeString:
		return NewString(left.Text() + right.Text()), nil

	case left.typ == TypeList && right.typ == TypeList:
		l, r := left.List(), right.List()
		elems := make([]Value, 0, len(l)+len(r))

		return NewList(append(append(elems, l...), r...)...), nil

	default:
		return arith(left, right, addInt, func(a, b float64) float64 { return a + b })
	}
}

// arith applies an integer operation when both operands are integral and a
// floating-point operation otherwise.
func arith(
	left, right Value,
	intOp func(a, b int64) (int64, bool),
	floatOp func(a, b float64) float64,
) (Value, *Error) {
	if !left.isNumeric() || !right.isNumeric() {
		return Undefined(), ErrTypeMismatch
	}

	if left.typ == TypeFloat || right.typ == TypeFloat {
		return NewFloat(floatOp(left.Float(), right.Float())), nil
	}

	n, ok := intOp(left.intValue(), right.intValue())
	if !ok {
		return Undefined(), ErrOverflow
	}

	return NewInt(n), nil
}

// divide is true division: the result is always a Float.
func divide(left, right Value) (Value, *Error) {
	if !left.isNumeric() || !right.isNumeric() {
		return Undefined(), ErrTypeMismatch
	}

	if right.Float() == 0 {
		return Undefined(), ErrDivisionByZero
	}

	return NewFloat(left.Float() / right.Float()), nil
}

// modulo is floored: a nonzero result takes the sign of the divisor.
func modulo(left, right Value) (Value, *Error) {
	if !left.isNumeric() || !right.isNumeric() {
		return Undefined(), ErrTypeMismatch
	}

	if right.Float() == 0 {
		return Undefined(), ErrDivisionByZero
	}

	if left.typ == TypeFloat || right.typ == TypeFloat {
		a, b := left.Float(), right.Float()

		m := math.Mod(a, b)
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}

		return NewFloat(m), nil
	}

	a, b := left.intValue(), right.intValue()

	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}

	return NewInt(m), nil
}

// power raises left to right. Integral operands with a nonnegative exponent
// produce an Int; every other combination produces a Float.
func power(left, right Value) (Value, *Error) {
	if !left.isNumeric() || !right.isNumeric() {
		return Undefined(), ErrTypeMismatch
	}

	if left.typ != TypeFloat && right.typ != TypeFloat && right.intValue() >= 0 {
		n, ok := powInt(left.intValue(), right.intValue())
		if !ok {
			return Undefined(), ErrOverflow
		}

		return NewInt(n), nil
	}

	base, exp := left.Float(), right.Float()

	if base == 0 && exp < 0 {
		return Undefined(), ErrDivisionByZero
	}

	f := math.Pow(base, exp)

	switch {
	case math.IsNaN(f) && !math.IsNaN(base) && !math.IsNaN(exp):
		return Undefined(), ErrDomain

	case math.IsInf(f, 0) && !math.IsInf(base, 0) && !math.IsInf(exp, 0):
		return Undefined(), ErrOverflow
	}

	return NewFloat(f), nil
}

// compare orders two numbers or two strings.
func compare(op string, left, right Value) (Value, *Error) {
	var c int

	switch {
	case left.isNumeric() && right.isNumeric():
		if left.typ == TypeFloat || right.typ == TypeFloat {
			a, b := left.Float(), right.Float()
			// Every ordering against NaN is false.
			if math.IsNaN(a) || math.IsNaN(b) {
				return NewBool(false), nil
			}

			c = cmp3(a, b)
		} else {
			c = cmp3(left.intValue(), right.intValue())
		}

	case left.typ == TypeString && right.typ == TypeString:
		c = strings.Compare(left.Text(), right.Text())

	default:
		return Undefined(), ErrTypeMismatch
	}

	switch op {
	case "<":
		return NewBool(c < 0), nil

	case "<=":
		return NewBool(c <= 0), nil

	case ">":
		return NewBool(c > 0), nil

	default:
		return NewBool(c >= 0), nil
	}
}

func cmp3[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1

	case a > b:
		return 1

	default:
		return 0
	}
}

// Checked integer arithmetic. Each reports false on overflow.

func addInt(a, b int64) (int64, bool) {
	c := a + b

	return c, (c > a) == (b > 0)
}

func subInt(a, b int64) (int64, bool) {
	c := a - b

	return c, (c < a) == (b > 0)
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}

	c := a * b
	if (c < 0) != ((a < 0) != (b < 0)) || c/b != a {
		return 0, false
	}

	return c, true
}

// powInt computes base^exp for exp >= 0 by repeated squaring.
func powInt(base, exp int64) (int64, bool) {
	result := int64(1)

	for exp > 0 {
		var ok bool

		if exp&1 == 1 {
			result, ok = mulInt(result, base)
			if !ok {
				return 0, false
			}
		}

		exp >>= 1

		if exp > 0 {
			base, ok = mulInt(base, base)
			if !ok {
				return 0, false
			}
		}
	}

	return result, true
}
