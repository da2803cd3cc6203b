package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ardnew/yapp/lang"
	"github.com/ardnew/yapp/log"
)

// Check reports whether a formula is syntactically valid and every name it
// references is bound. The formula is not evaluated.
type Check struct {
	Input `embed:""`

	Quiet bool `help:"Print nothing; report the result only through the exit status." short:"q"`

	Formula `embed:""`
}

// Run executes the check command. It returns [ErrInvalid] when the formula
// is not valid.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts := c.options()

	valid := false

	prog, err := c.compile(ctx, &c.Input, opts...)

	switch {
	case err == nil:
		var env lang.Env

		env, err = c.load(ctx)
		if err != nil {
			return err
		}

		valid = lang.IsValid(ctx, prog.Source(), env, opts...)

	case errors.Is(err, lang.ErrSyntax):
		log.DebugContext(ctx, "formula rejected", slog.Any("error", err))

	default:
		return err
	}

	if !c.Quiet {
		_, err = fmt.Fprintln(stdout(ctx), strconv.FormatBool(valid))
		if err != nil {
			return err
		}
	}

	if !valid {
		return ErrInvalid
	}

	return nil
}
