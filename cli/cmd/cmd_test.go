package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/yapp/lang"
)

const testDocument = `
vars:
  rate: 2
  names: [alice, bob]
funcs:
  scale:
    params: [v]
    body: v * rate
`

// testCLI mirrors the command tree of the yapp executable.
type testCLI struct {
	Mode string   `default:"fast"`
	Tags []string `sep:"none"`

	Eval    Eval    `cmd:""`
	Check   Check   `cmd:""`
	Vars    Vars    `cmd:""`
	Postfix Postfix `cmd:""`
	Init    Init    `cmd:""`
}

// run parses args, executes the selected command with stdin as standard
// input, and returns everything written to standard output.
func run(t *testing.T, vars kong.Vars, stdin string, args ...string) (string, error) {
	t.Helper()

	var (
		cli testCLI
		out bytes.Buffer
		ctx context.Context
	)

	parser, err := kong.New(&cli,
		kong.Writers(&out, &out),
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
		kong.BindSingletonProvider(func() context.Context { return ctx }),
		vars,
	)
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", args, err)
	}

	ctx = WithContext(WithStdin(t.Context(), strings.NewReader(stdin)), ktx)

	err = ktx.Run()

	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)

	err := os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		t.Fatal(err)
	}

	return path
}

func TestEval(t *testing.T) {
	t.Parallel()

	env := writeFile(t, "env.yaml", testDocument)

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"literal", "", []string{"eval", "1 + 2 * 3"}, "7\n"},
		{"var_flag", "", []string{"eval", "--var", "x=2", "x ^ 10"}, "1024\n"},
		{"var_list_literal", "", []string{"eval", "--var", "l=[1, 2]", "in(2, l)"}, "True\n"},
		{"env_document", "", []string{"eval", "-e", env, "scale(21)"}, "42\n"},
		{"var_overrides_document", "", []string{"eval", "-e", env, "--var", "rate=3", "rate"}, "3\n"},
		{"missing_is_undefined", "", []string{"eval", "missing + 1"}, "Undefined\n"},
		{"syntax_error_is_undefined", "", []string{"eval", "1 +"}, "Undefined\n"},
		{"stdin_formula", "2.5 * 2\n", []string{"eval"}, "5.0\n"},
		{"stdin_dash", "'a' + 'b'", []string{"eval", "-"}, "'ab'\n"},
		{"json", "", []string{"eval", "-o", "json", "--indent", "0", "[1, 2.5, 'x']"}, "[1,2.5,\"x\"]\n"},
		{"yaml", "", []string{"eval", "-o", "yaml", "-e", env, "names"}, "- alice\n- bob\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := run(t, nil, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("eval error = %v", err)
			}

			if got != tt.want {
				t.Errorf("eval output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEval_Errors(t *testing.T) {
	t.Parallel()

	bad := writeFile(t, "bad.yaml", "funcs: {f: {body: 'a +'}}")

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  error
	}{
		{"strict_missing", "", []string{"eval", "--strict", "missing"}, lang.ErrMissingVariable},
		{"strict_syntax", "", []string{"eval", "-s", "1 +"}, lang.ErrSyntax},
		{"division_by_zero", "", []string{"eval", "1 / 0"}, lang.ErrDivisionByZero},
		{"stdin_conflict", "x: 1", []string{"eval", "-e", "-"}, ErrStdinConflict},
		{"bad_document", "", []string{"eval", "-e", bad, "1"}, ErrEnvironment},
		{"missing_document", "", []string{"eval", "-e", "/nonexistent/env.yaml", "1"}, ErrEnvironment},
		{"bad_var", "", []string{"eval", "--var", "9x=1", "1"}, ErrEnvironment},
		{"max_depth", "", []string{"eval", "--max-depth", "2", "-s", "(((1)))"}, lang.ErrMaxDepthExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := run(t, nil, tt.stdin, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("eval error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEval_EnvFromStdin(t *testing.T) {
	t.Parallel()

	got, err := run(t, nil, "vars: {x: 4}", "eval", "-e", "-", "x * x")
	if err != nil {
		t.Fatal(err)
	}

	if got != "16\n" {
		t.Errorf("eval output = %q, want 16", got)
	}
}

func TestEval_DuplicateDocuments(t *testing.T) {
	t.Parallel()

	env := writeFile(t, "env.yaml", testDocument)
	link := filepath.Join(t.TempDir(), "link.yaml")

	err := os.Symlink(env, link)
	if err != nil {
		t.Skip("symlinks unavailable:", err)
	}

	srcs, err := openSources(t.Context(), []string{env, link, "-", env, "-"})
	if err != nil {
		t.Fatal(err)
	}
	defer closeSources(srcs)

	if len(srcs) != 2 || srcs[0].name != env || srcs[1].name != stdinSource {
		names := make([]string, len(srcs))
		for i, src := range srcs {
			names[i] = src.name
		}

		t.Errorf("openSources() = %v, want [%s -]", names, env)
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	env := writeFile(t, "env.yaml", testDocument)

	tests := []struct {
		name    string
		args    []string
		want    string
		invalid bool
	}{
		{"valid", []string{"check", "-e", env, "scale(rate) + 1"}, "true\n", false},
		{"builtin", []string{"check", "not(1)"}, "true\n", false},
		{"unbound", []string{"check", "-e", env, "scale(x)"}, "false\n", true},
		{"syntax", []string{"check", "1 +"}, "false\n", true},
		{"not_evaluated", []string{"check", "1 / 0"}, "true\n", false},
		{"quiet", []string{"check", "-q", "y"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := run(t, nil, "", tt.args...)

			if tt.invalid != errors.Is(err, ErrInvalid) {
				t.Errorf("check error = %v, invalid %v", err, tt.invalid)
			}

			if got != tt.want {
				t.Errorf("check output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVars(t *testing.T) {
	t.Parallel()

	env := writeFile(t, "env.yaml", testDocument)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"excludes_functions", []string{"vars", "-e", env, "a + scale(b) + not(a)"}, "a\nb\n"},
		{"all", []string{"vars", "-e", env, "--all", "a + scale(b)"}, "a\nscale\nb\n"},
		{"unbound_callee", []string{"vars", "f(x)"}, "f\nx\n"},
		{"none", []string{"vars", "1 + 2"}, ""},
		{"json", []string{"vars", "-o", "json", "-i", "0", "b + a"}, "[\"b\",\"a\"]\n"},
		{"json_empty", []string{"vars", "-o", "json", "1"}, "[]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := run(t, nil, "", tt.args...)
			if err != nil {
				t.Fatalf("vars error = %v", err)
			}

			if got != tt.want {
				t.Errorf("vars output = %q, want %q", got, tt.want)
			}
		})
	}

	_, err := run(t, nil, "", "vars", "a +")
	if !errors.Is(err, lang.ErrSyntax) {
		t.Errorf("vars(a +) error = %v, want syntax error", err)
	}
}

func TestPostfix(t *testing.T) {
	t.Parallel()

	got, err := run(t, nil, "", "postfix", "f(x, 'a') + [1]")
	if err != nil {
		t.Fatal(err)
	}

	if want := "x 'a' f/2 1 [1] +\n"; got != want {
		t.Errorf("postfix output = %q, want %q", got, want)
	}

	got, err = run(t, nil, "1 - 2\n", "postfix", "-o", "json", "-i", "0")
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(got, "[") || !strings.Contains(got, `"-"`) {
		t.Errorf("postfix JSON output = %q", got)
	}

	_, err = run(t, nil, "", "postfix", "(")
	if !errors.Is(err, lang.ErrSyntax) {
		t.Errorf("postfix error = %v, want syntax error", err)
	}
}

func TestInit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "yapp", "config.yaml")
	vars := kong.Vars{ConfigIdentifier: path}

	_, err := run(t, vars, "", "--mode", "slow", "init")
	if err != nil {
		t.Fatalf("init error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got := string(data); got != "mode: slow\n" {
		t.Errorf("config file = %q, want %q", got, "mode: slow\n")
	}

	_, err = run(t, vars, "", "init")
	if !errors.Is(err, ErrFileExists) || !errors.Is(err, ErrWriteConfig) {
		t.Errorf("init over existing file error = %v", err)
	}

	_, err = run(t, vars, "", "--tags", "a,b", "init", "--force")
	if err != nil {
		t.Fatalf("init --force error = %v", err)
	}

	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := string(data), "mode: fast\ntags:\n  - a,b\n"; got != want {
		t.Errorf("config file = %q, want %q", got, want)
	}
}
