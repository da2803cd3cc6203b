package lang

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestFormatValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{name: "undefined", value: Undefined(), want: "Undefined"},
		{name: "int", value: NewInt(-42), want: "-42"},
		{name: "float", value: NewFloat(3.5), want: "3.5"},
		{name: "whole_float", value: NewFloat(2), want: "2.0"},
		{name: "infinity", value: NewFloat(math.Inf(1)), want: "+Inf"},
		{name: "string", value: NewString(`it's \ here`), want: `'it\'s \\ here'`},
		{name: "bool", value: NewBool(true), want: "True"},
		{name: "list", value: NewList(NewInt(1), NewString("a"), NewList()), want: "[1, 'a', []]"},
		{name: "func", value: NewFunc("minus", 2, nil), want: "<func minus/2>"},
		{name: "variadic_func", value: NewVariadicFunc("sum", 1, nil), want: "<func sum/1+>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := FormatValue(tt.value); got != tt.want {
				t.Errorf("FormatValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatValueReadsBack(t *testing.T) {
	t.Parallel()

	for _, src := range []string{
		"-42", "3.5", "2.0", "'it\\'s'", "True", "[1, 'a', [], [False, 0.25]]",
	} {
		v, err := Parse(t.Context(), src, nil, WithFailSilently(false))
		if err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}

		if got := FormatValue(v); got != src {
			t.Errorf("FormatValue(Parse(%q)) = %q", src, got)
		}
	}
}

func TestProgramFormat(t *testing.T) {
	t.Parallel()

	prog, err := Compile(t.Context(), "f(x, 'a') + [1]")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer

	if err := prog.Format(t.Context(), &buf); err != nil {
		t.Fatal(err)
	}

	if got, want := buf.String(), "x 'a' f/2 1 [1] +\n"; got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}

	buf.Reset()

	if err := prog.FormatJSON(t.Context(), &buf, 0); err != nil {
		t.Fatal(err)
	}

	var tokens []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &tokens); err != nil {
		t.Fatalf("FormatJSON output is not JSON: %v\n%s", err, buf.String())
	}

	if len(tokens) != 6 {
		t.Fatalf("FormatJSON produced %d tokens, want 6", len(tokens))
	}

	if tokens[2]["kind"] != "Call" || tokens[2]["name"] != "f" || tokens[2]["argc"] != float64(2) {
		t.Errorf("call token = %v", tokens[2])
	}

	buf.Reset()

	if err := prog.FormatYAML(t.Context(), &buf, 2); err != nil {
		t.Fatal(err)
	}

	var decoded []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("FormatYAML output is not YAML: %v\n%s", err, buf.String())
	}

	if len(decoded) != 6 || decoded[5]["text"] != "+" {
		t.Errorf("FormatYAML decoded to %v", decoded)
	}

	if !strings.Contains(buf.String(), "kind: Operator") {
		t.Errorf("FormatYAML output missing operator token:\n%s", buf.String())
	}
}
