package binding

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ardnew/yapp/lang"
)

// ParseVar parses an assignment of the form name=literal.
//
// The literal is evaluated as a formula with no environment, so constant
// expressions such as -2, 'abc' or [1, 2] bind to their value. A literal
// that does not parse, or that refers to a name, binds as a string holding
// the literal text verbatim. Evaluation faults such as 1/0 are errors.
func ParseVar(ctx context.Context, s string) (string, lang.Value, error) {
	name, literal, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)

	if !ok {
		return "", lang.Undefined(), ErrInvalidBinding.With(slog.String("binding", s))
	}

	if !lang.IsIdentifier(name) {
		return "", lang.Undefined(), ErrInvalidName.With(slog.String("var", name))
	}

	v, err := lang.Parse(ctx, literal, nil, lang.WithFailSilently(false))
	if err != nil {
		if errors.Is(err, lang.ErrSyntax) || errors.Is(err, lang.ErrMissingVariable) {
			return name, lang.NewString(literal), nil
		}

		return "", lang.Undefined(), ErrInvalidBinding.
			With(slog.String("binding", s)).
			Wrap(err)
	}

	return name, v, nil
}

// ParseVars parses every assignment with [ParseVar] into a new environment.
// Later assignments to the same name take precedence.
func ParseVars(ctx context.Context, assignments []string) (lang.Env, error) {
	env := make(lang.Env, len(assignments))

	for _, s := range assignments {
		name, v, err := ParseVar(ctx, s)
		if err != nil {
			return nil, err
		}

		env[name] = v
	}

	return env, nil
}
