package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ardnew/yapp/lang"
	"github.com/ardnew/yapp/log"
)

// Eval evaluates a formula and prints its value.
type Eval struct {
	Input  `embed:""`
	Output `embed:""`

	Strict bool `help:"Report syntax errors and missing variables instead of printing Undefined." short:"s"`

	Formula `embed:""`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts := e.options(lang.WithFailSilently(!e.Strict))

	result := lang.Undefined()

	prog, err := e.compile(ctx, &e.Input, opts...)

	switch {
	case err == nil:
		var env lang.Env

		env, err = e.load(ctx)
		if err != nil {
			return err
		}

		result, err = prog.Evaluate(ctx, env, opts...)
		if err != nil {
			return e.wrap(err)
		}

	case !e.Strict && errors.Is(err, lang.ErrSyntax):
		log.DebugContext(ctx, "syntax error silenced", slog.Any("error", err))

	default:
		return e.wrap(err)
	}

	return e.writeValue(stdout(ctx), result)
}

func (e *Eval) wrap(err error) error {
	var (
		syntax *lang.SyntaxError
		eval   *lang.EvaluationError
	)

	switch {
	case errors.As(err, &syntax), errors.As(err, &eval):
		return err

	default:
		return lang.WrapError(err).With(slog.String("command", "eval"))
	}
}
