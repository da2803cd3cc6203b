package binding

import (
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/yapp/lang"
)

// variadicPrefix marks the final parameter of a variadic function.
const variadicPrefix = "..."

// Func declares a host function in an environment document.
type Func struct {
	// Params names the arguments in call order. A final "...name" collects
	// any remaining arguments into a list.
	Params []string `json:"params,omitempty" yaml:"params,omitempty"`
	// Body is an expr-lang expression computing the result.
	Body string `json:"body" yaml:"body"`
}

// signature splits the declared parameters into fixed names and an optional
// rest name.
func (f Func) signature(name string) (fixed []string, rest string, err error) {
	seen := make(map[string]bool, len(f.Params))

	for i, param := range f.Params {
		if after, ok := strings.CutPrefix(param, variadicPrefix); ok {
			if i != len(f.Params)-1 {
				return nil, "", ErrInvalidFunc.With(
					slog.String("name", name),
					slog.String("param", param),
					slog.String("reason", "variadic parameter must be last"),
				)
			}

			param = after
			rest = after
		} else {
			fixed = append(fixed, param)
		}

		if !lang.IsIdentifier(param) || seen[param] {
			return nil, "", ErrInvalidFunc.With(
				slog.String("name", name),
				slog.String("param", param),
				slog.String("reason", "invalid or duplicate parameter"),
			)
		}

		seen[param] = true
	}

	return fixed, rest, nil
}

// compile builds a callable Value from f. The body sees consts and the
// parameters, with parameters shadowing consts. consts must already hold the
// helper namespaces (see [withHelpers]).
func (f Func) compile(name string, consts map[string]any) (lang.Value, error) {
	fixed, rest, err := f.signature(name)
	if err != nil {
		return lang.Undefined(), err
	}

	if strings.TrimSpace(f.Body) == "" {
		return lang.Undefined(), ErrInvalidFunc.With(
			slog.String("name", name),
			slog.String("reason", "empty body"),
		)
	}

	unbound, err := unboundNames(f.Body, func(ident string) bool {
		_, ok := consts[ident]

		return ok || ident == rest || slices.Contains(fixed, ident)
	})
	if err == nil && len(unbound) > 0 {
		err = ErrUnboundName.With(slog.Any("names", unbound))
	}

	if err != nil {
		return lang.Undefined(), ErrInvalidFunc.
			With(slog.String("name", name), slog.String("body", f.Body)).
			Wrap(err)
	}

	// parameters are left undeclared so that their types are decided per call
	scope := maps.Clone(consts)
	for _, param := range fixed {
		delete(scope, param)
	}

	delete(scope, rest)

	program, err := expr.Compile(f.Body,
		expr.Env(scope),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return lang.Undefined(), ErrInvalidFunc.
			With(slog.String("name", name), slog.String("body", f.Body)).
			Wrap(err)
	}

	call := makeCall(program, consts, fixed, rest)

	if rest != "" {
		return lang.NewVariadicFunc(name, len(fixed), call), nil
	}

	return lang.NewFunc(name, len(fixed), call), nil
}

// makeCall returns the host function running program against its arguments.
func makeCall(
	program *vm.Program,
	consts map[string]any,
	fixed []string,
	rest string,
) func(args []lang.Value) (lang.Value, error) {
	return func(args []lang.Value) (lang.Value, error) {
		scope := make(map[string]any, len(consts)+len(fixed)+1)
		maps.Copy(scope, consts)

		for i, arg := range args {
			if !arg.IsDefined() {
				return lang.Undefined(), nil
			}

			if i < len(fixed) {
				scope[fixed[i]] = arg.ToNative()
			}
		}

		if rest != "" {
			extra := make([]any, 0, len(args)-len(fixed))
			for _, arg := range args[len(fixed):] {
				extra = append(extra, arg.ToNative())
			}

			scope[rest] = extra
		}

		out, err := expr.Run(program, scope)
		if err != nil {
			return lang.Undefined(), err
		}

		v, err := lang.FromNative(out)
		if err != nil {
			return lang.Undefined(), ErrUnsupportedType.Wrap(err)
		}

		return v, nil
	}
}
