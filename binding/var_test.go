package binding

import (
	"errors"
	"testing"

	"github.com/ardnew/yapp/lang"
)

func TestParseVar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		name string
		want lang.Value
	}{
		{"x=2", "x", lang.NewInt(2)},
		{"x=-2", "x", lang.NewInt(-2)},
		{"y=2.5", "y", lang.NewFloat(2.5)},
		{"s='hi there'", "s", lang.NewString("hi there")},
		{"b=True", "b", lang.NewBool(true)},
		{"l=[1, 'a']", "l", lang.NewList(lang.NewInt(1), lang.NewString("a"))},
		{"n=2^10", "n", lang.NewInt(1024)},
		{" padded =3", "padded", lang.NewInt(3)},
		{"who=alice", "who", lang.NewString("alice")},
		{"path=/usr/bin", "path", lang.NewString("/usr/bin")},
		{"eq=a=b", "", lang.Undefined()},
		{"empty=", "empty", lang.NewString("")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			name, got, err := ParseVar(t.Context(), tt.in)
			if tt.name == "" {
				if err == nil {
					t.Fatalf("ParseVar(%q) = %v, want error", tt.in, got)
				}

				return
			}

			if err != nil {
				t.Fatalf("ParseVar(%q) error = %v", tt.in, err)
			}

			if name != tt.name || !got.Equal(tt.want) || got.Type() != tt.want.Type() {
				t.Errorf("ParseVar(%q) = %q, %v; want %q, %v", tt.in, name, got, tt.name, tt.want)
			}
		})
	}
}

func TestParseVar_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want error
	}{
		{"novalue", ErrInvalidBinding},
		{"=3", ErrInvalidName},
		{"9x=3", ErrInvalidName},
		{"z=1/0", lang.ErrDivisionByZero},
	}

	for _, tt := range tests {
		_, _, err := ParseVar(t.Context(), tt.in)
		if !errors.Is(err, tt.want) {
			t.Errorf("ParseVar(%q) error = %v, want %v", tt.in, err, tt.want)
		}
	}
}

func TestParseVars_LaterWins(t *testing.T) {
	t.Parallel()

	env, err := ParseVars(t.Context(), []string{"x=1", "y='a'", "x=5"})
	if err != nil {
		t.Fatal(err)
	}

	if len(env) != 2 || !env["x"].Equal(lang.NewInt(5)) {
		t.Errorf("ParseVars() = %v", env)
	}
}
