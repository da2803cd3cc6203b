package lang

import (
	"encoding/json"
	"log/slog"
	"math"
	"reflect"
)

// ToNative converts v to its native Go representation: nil, int64, float64,
// string, bool, or []any. A callable converts to its rendered signature.
func (v Value) ToNative() any {
	switch v.typ {
	case TypeInt:
		return v.Int()

	case TypeFloat:
		return v.Float()

	case TypeString:
		return v.Text()

	case TypeBool:
		return v.Bool()

	case TypeList:
		elems := v.List()
		out := make([]any, len(elems))

		for i, elem := range elems {
			out[i] = elem.ToNative()
		}

		return out

	case TypeFunc:
		return FormatValue(v)

	default:
		return nil
	}
}

// FromNative converts a native Go value to a [Value]. Accepted inputs are
// nil, booleans, integers, floats, strings, slices or arrays of accepted
// inputs, *[Callable], and Value itself. Decoded YAML and JSON documents
// produce only these types, apart from mappings, which are rejected.
func FromNative(x any) (Value, error) {
	switch x := x.(type) {
	case nil:
		return Undefined(), nil

	case Value:
		return x, nil

	case *Callable:
		return NewCallable(x), nil

	case bool:
		return NewBool(x), nil

	case string:
		return NewString(x), nil

	case int:
		return NewInt(int64(x)), nil

	case int8:
		return NewInt(int64(x)), nil

	case int16:
		return NewInt(int64(x)), nil

	case int32:
		return NewInt(int64(x)), nil

	case int64:
		return NewInt(x), nil

	case uint:
		return fromUint(uint64(x))

	case uint8:
		return NewInt(int64(x)), nil

	case uint16:
		return NewInt(int64(x)), nil

	case uint32:
		return NewInt(int64(x)), nil

	case uint64:
		return fromUint(x)

	case float32:
		return NewFloat(float64(x)), nil

	case float64:
		return NewFloat(x), nil

	case []any:
		return fromSlice(len(x), func(i int) any { return x[i] })
	}

	rv := reflect.ValueOf(x)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return fromSlice(rv.Len(), func(i int) any { return rv.Index(i).Interface() })

	default:
		return Undefined(), ErrInvalidValue.
			With(slog.String("native_type", rv.Type().String()))
	}
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Undefined(), ErrOverflow.With(slog.Uint64("value", u))
	}

	return NewInt(int64(u)), nil
}

func fromSlice(n int, elem func(i int) any) (Value, error) {
	elems := make([]Value, n)

	for i := range n {
		v, err := FromNative(elem(i))
		if err != nil {
			return Undefined(), err
		}

		elems[i] = v
	}

	return NewList(elems...), nil
}

// MarshalJSON implements json.Marshaler. NaN and infinite floats, which JSON
// cannot represent, are encoded as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonSafe(v.ToNative()))
}

// MarshalYAML implements the goccy/go-yaml InterfaceMarshaler.
func (v Value) MarshalYAML() (any, error) {
	return v.ToNative(), nil
}

func jsonSafe(x any) any {
	switch x := x.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return formatFloat(x)
		}

	case []any:
		for i := range x {
			x[i] = jsonSafe(x[i])
		}
	}

	return x
}

// ToNative converts t to a map describing its kind and payload.
func (t Token) ToNative() map[string]any {
	m := map[string]any{"kind": t.Kind.String()}

	switch t.Kind {
	case KindInt:
		m["value"] = t.Int

	case KindFloat:
		m["value"] = jsonSafe(t.Float)

	case KindString:
		m["value"] = t.Text

	case KindBool:
		m["value"] = t.Bool

	case KindIdent, KindOperator:
		m["text"] = t.Text

	case KindCall:
		m["name"] = t.Text
		m["argc"] = t.Int

	case KindList:
		m["count"] = t.Int
	}

	return m
}

// MarshalJSON implements json.Marshaler.
func (t Token) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToNative())
}

func tokensToNative(tokens []Token) []any {
	out := make([]any, len(tokens))

	for i, t := range tokens {
		out[i] = t.ToNative()
	}

	return out
}
