package lang

import (
	"context"
	"log/slog"
)

// IsValid reports whether expr is syntactically valid and every identifier
// and callee it references is bound in env or the built-ins. The expression
// is never evaluated, so faults such as division by zero are not detected.
func IsValid(ctx context.Context, expr string, env Env, opts ...Option) bool {
	o := makeOptions(opts...)

	prog, err := compile(ctx, expr, o)
	if err != nil {
		return false
	}

	for _, name := range prog.Identifiers() {
		if !env.Bound(name) {
			o.logger.TraceContext(ctx, "unbound name", slog.String("name", name))

			return false
		}
	}

	return true
}

// GetVariables returns the identifiers referenced by expr, deduplicated, in
// order of first appearance. Callee names count as identifiers.
//
// With the default [WithExcludeFunctions] policy, names bound to callables
// in env or the built-ins are omitted. A syntax error is always returned,
// regardless of the fail-silently policy.
func GetVariables(
	ctx context.Context,
	expr string,
	env Env,
	opts ...Option,
) ([]string, error) {
	o := makeOptions(opts...)

	prog, err := compile(ctx, expr, o)
	if err != nil {
		return nil, err
	}

	names := prog.Identifiers()
	if !o.excludeFunctions {
		return names, nil
	}

	vars := names[:0]

	for _, name := range names {
		if !env.IsFunc(name) {
			vars = append(vars, name)
		}
	}

	return vars, nil
}
