package lang

import (
	"errors"
	"slices"
	"testing"
)

func TestIsValid(t *testing.T) {
	t.Parallel()

	env := testEnv()

	tests := []struct {
		name string
		expr string
		env  Env
		want bool
	}{
		{name: "bound_variable", expr: "x * 2", env: Env{"x": NewInt(2)}, want: true},
		{name: "unbound_variable", expr: "x * 2", env: Env{}, want: false},
		{name: "nil_env", expr: "x * 2", env: nil, want: false},
		{name: "syntax_error", expr: "x * ", env: Env{"x": NewInt(2)}, want: false},
		{name: "literals_only", expr: "1 + 2.5", env: nil, want: true},
		{name: "builtin_call", expr: "not(in(1, [1]))", env: nil, want: true},
		{name: "bound_function", expr: "minus(x, 1)", env: env, want: true},
		{name: "unbound_function", expr: "plus(x, 1)", env: env, want: false},
		{name: "unbound_name_inside_list", expr: "in(1, [z])", env: env, want: false},
		// Validity does not evaluate, so runtime faults are not detected.
		{name: "division_by_zero", expr: "x / 0", env: env, want: true},
		{name: "keywords_are_not_identifiers", expr: "True and x eq 2", env: env, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsValid(t.Context(), tt.expr, tt.env); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestGetVariables(t *testing.T) {
	t.Parallel()

	env := testEnv()

	tests := []struct {
		name string
		expr string
		env  Env
		opts []Option
		want []string
	}{
		{name: "single", expr: "x > 3", env: nil, want: []string{"x"}},
		{name: "literals_only", expr: "1 + 'x'", env: nil, want: nil},
		{name: "first_appearance_order", expr: "b + a * b - c", env: nil, want: []string{"b", "a", "c"}},
		{name: "builtins_excluded", expr: "in(x, names) and not(flag)", env: env, want: []string{"x", "names", "flag"}},
		{name: "bound_functions_excluded", expr: "minus(p, q)", env: env, want: []string{"p", "q"}},
		{name: "unbound_call_kept", expr: "plus(p, q)", env: env, want: []string{"plus", "p", "q"}},
		{
			name: "functions_included",
			expr: "minus(p, not(q))",
			env:  env,
			opts: []Option{WithExcludeFunctions(false)},
			want: []string{"minus", "p", "not", "q"},
		},
		{name: "bool_keywords_skipped", expr: "True or False eq z", env: nil, want: []string{"z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := GetVariables(t.Context(), tt.expr, tt.env, tt.opts...)
			if err != nil {
				t.Fatalf("GetVariables(%q) error: %v", tt.expr, err)
			}

			if !slices.Equal(got, tt.want) {
				t.Errorf("GetVariables(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestGetVariablesSyntaxError(t *testing.T) {
	t.Parallel()

	// The fail-silently policy does not apply to variable extraction.
	_, err := GetVariables(t.Context(), "x +", nil, WithFailSilently(true))
	if !errors.Is(err, ErrSyntax) {
		t.Errorf("GetVariables error = %v, want ErrSyntax", err)
	}
}
