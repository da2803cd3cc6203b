package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// FormatValue renders v in the syntax of the formula language, so that
// scalars, strings and lists read back as the same literal. Callables and
// Undefined have no literal syntax and render descriptively.
func FormatValue(v Value) string {
	var buf strings.Builder

	writeValue(&buf, v)

	return buf.String()
}

// String implements fmt.Stringer using [FormatValue].
func (v Value) String() string { return FormatValue(v) }

func writeValue(buf *strings.Builder, v Value) {
	switch v.typ {
	case TypeInt:
		buf.WriteString(strconv.FormatInt(v.Int(), 10))

	case TypeFloat:
		buf.WriteString(formatFloat(v.Float()))

	case TypeString:
		buf.WriteString(quote(v.Text()))

	case TypeBool:
		buf.WriteString(formatBool(v.Bool()))

	case TypeList:
		buf.WriteByte('[')

		for i, elem := range v.List() {
			if i > 0 {
				buf.WriteString(", ")
			}

			writeValue(buf, elem)
		}

		buf.WriteByte(']')

	case TypeFunc:
		c := v.Callable()

		buf.WriteString("<func ")
		buf.WriteString(c.Name)
		buf.WriteByte('/')
		buf.WriteString(strconv.Itoa(c.Arity))

		if c.Variadic {
			buf.WriteByte('+')
		}

		buf.WriteByte('>')

	default:
		buf.WriteString(TypeUndefined.String())
	}
}

// Format writes the postfix buffer in native token notation, one line.
func (p *Program) Format(_ context.Context, w io.Writer) error {
	_, err := fmt.Fprintln(w, p.String())

	return err
}

// FormatJSON writes the postfix buffer as a JSON array of tokens.
func (p *Program) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(p.postfix, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(p.postfix)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the postfix buffer as a YAML sequence of tokens.
func (p *Program) FormatYAML(_ context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalWithOptions(tokensToNative(p.postfix), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}
