package lang

// Type indicates the variant held by a [Value].
type Type int

const (
	// TypeUndefined is the result of a silenced fault.
	TypeUndefined Type = iota

	// TypeInt is a 64-bit signed integer.
	TypeInt

	// TypeFloat is a 64-bit floating-point number.
	TypeFloat

	// TypeString is a string.
	TypeString

	// TypeBool is a boolean.
	TypeBool

	// TypeList is an ordered list of values.
	TypeList

	// TypeFunc is a callable environment binding.
	TypeFunc
)

// String returns a string representation of the value type.
func (t Type) String() string {
	switch t {
	case TypeUndefined:
		return "Undefined"

	case TypeInt:
		return "Int"

	case TypeFloat:
		return "Float"

	case TypeString:
		return "String"

	case TypeBool:
		return "Bool"

	case TypeList:
		return "List"

	case TypeFunc:
		return "Func"

	default:
		return "Unknown"
	}
}

// Value is the dynamically-typed result of evaluation and the type of every
// environment binding. The zero Value is Undefined.
type Value struct {
	typ  Type
	data any
}

// Callable is a host function bound in an environment. Arity is declared up
// front: the reducer consumes exactly Arity arguments from the postfix buffer,
// or at least Arity when Variadic is set.
type Callable struct {
	Name     string
	Arity    int
	Variadic bool
	Fn       func(args []Value) (Value, error)
}

// accepts reports whether c can be applied to n arguments.
func (c *Callable) accepts(n int) bool {
	if c.Variadic {
		return n >= c.Arity
	}

	return n == c.Arity
}

// Undefined returns the Undefined value.
func Undefined() Value { return Value{} }

// NewInt returns an integer value.
func NewInt(i int64) Value { return Value{typ: TypeInt, data: i} }

// NewFloat returns a floating-point value.
func NewFloat(f float64) Value { return Value{typ: TypeFloat, data: f} }

// NewString returns a string value.
func NewString(s string) Value { return Value{typ: TypeString, data: s} }

// NewBool returns a boolean value.
func NewBool(b bool) Value { return Value{typ: TypeBool, data: b} }

// NewList returns a list value holding elems.
func NewList(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}

	return Value{typ: TypeList, data: elems}
}

// NewFunc returns a callable value accepting exactly arity arguments.
func NewFunc(name string, arity int, fn func(args []Value) (Value, error)) Value {
	return NewCallable(&Callable{Name: name, Arity: arity, Fn: fn})
}

// NewVariadicFunc returns a callable value accepting minArgs or more
// arguments.
func NewVariadicFunc(name string, minArgs int, fn func(args []Value) (Value, error)) Value {
	return NewCallable(&Callable{Name: name, Arity: minArgs, Variadic: true, Fn: fn})
}

// NewCallable returns a callable value wrapping c.
func NewCallable(c *Callable) Value { return Value{typ: TypeFunc, data: c} }

// Type returns the variant held by v.
func (v Value) Type() Type { return v.typ }

// IsDefined reports whether v holds anything other than Undefined.
func (v Value) IsDefined() bool { return v.typ != TypeUndefined }

// Int returns the integer held by v, or zero for non-integers.
func (v Value) Int() int64 {
	if i, ok := v.data.(int64); ok {
		return i
	}

	return 0
}

// Float returns the number held by v as a float64, converting integers and
// booleans. It returns zero for every other type.
func (v Value) Float() float64 {
	switch v.typ {
	case TypeFloat:
		return v.data.(float64)

	case TypeInt:
		return float64(v.data.(int64))

	case TypeBool:
		if v.data.(bool) {
			return 1
		}

		return 0

	default:
		return 0
	}
}

// Text returns the string held by v, or "" for non-strings.
func (v Value) Text() string {
	if s, ok := v.data.(string); ok {
		return s
	}

	return ""
}

// Bool returns the boolean held by v, or false for non-booleans.
func (v Value) Bool() bool {
	if b, ok := v.data.(bool); ok {
		return b
	}

	return false
}

// List returns the elements held by v, or nil for non-lists. The returned
// slice must not be modified.
func (v Value) List() []Value {
	if l, ok := v.data.([]Value); ok {
		return l
	}

	return nil
}

// Callable returns the callable held by v, or nil.
func (v Value) Callable() *Callable {
	if c, ok := v.data.(*Callable); ok {
		return c
	}

	return nil
}

// Truthy reports whether v counts as true in a boolean context. Zero numbers,
// empty strings, empty lists, False and Undefined are false.
func (v Value) Truthy() bool {
	switch v.typ {
	case TypeInt:
		return v.data.(int64) != 0

	case TypeFloat:
		return v.data.(float64) != 0

	case TypeString:
		return v.data.(string) != ""

	case TypeBool:
		return v.data.(bool)

	case TypeList:
		return len(v.data.([]Value)) > 0

	case TypeFunc:
		return true

	default:
		return false
	}
}

// Equal reports whether v and w are structurally equal. Numbers compare by
// value across Int, Float and Bool; lists compare element-wise; callables
// compare by identity.
func (v Value) Equal(w Value) bool {
	if v.isNumeric() && w.isNumeric() {
		if v.typ == TypeFloat || w.typ == TypeFloat {
			return v.Float() == w.Float()
		}

		return v.intValue() == w.intValue()
	}

	if v.typ != w.typ {
		return false
	}

	switch v.typ {
	case TypeUndefined:
		return true

	case TypeString:
		return v.data.(string) == w.data.(string)

	case TypeList:
		a, b := v.List(), w.List()
		if len(a) != len(b) {
			return false
		}

		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}

		return true

	case TypeFunc:
		return v.data.(*Callable) == w.data.(*Callable)

	default:
		return false
	}
}

// isNumeric reports whether v takes part in arithmetic. Booleans count as
// the integers 0 and 1.
func (v Value) isNumeric() bool {
	return v.typ == TypeInt || v.typ == TypeFloat || v.typ == TypeBool
}

// intValue returns v as an integer, mapping booleans to 0 and 1.
func (v Value) intValue() int64 {
	if v.typ == TypeBool {
		if v.data.(bool) {
			return 1
		}

		return 0
	}

	return v.Int()
}
