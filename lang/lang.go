package lang

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ardnew/yapp/log"
)

// options holds the configuration shared by [Compile], [Parse], [IsValid]
// and [GetVariables].
type options struct {
	logger           log.Logger
	maxDepth         int
	failSilently     bool
	excludeFunctions bool
}

// Option configures parsing or evaluation behavior.
type Option func(*options)

// WithFailSilently selects the fault policy of [Parse] and
// [Program.Evaluate]. When enabled (the default), syntax errors and missing
// variables produce [Undefined] and a nil error. Evaluation errors are never
// silenced.
func WithFailSilently(silent bool) Option {
	return func(o *options) {
		o.failSilently = silent
	}
}

// WithExcludeFunctions controls whether [GetVariables] omits names bound to
// callables. Enabled by default.
func WithExcludeFunctions(exclude bool) Option {
	return func(o *options) {
		o.excludeFunctions = exclude
	}
}

// WithMaxDepth sets the maximum nesting depth accepted by the grammar.
// Values less than 1 select [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func makeOptions(opts ...Option) options {
	o := options{
		maxDepth:         DefaultMaxDepth,
		failSilently:     true,
		excludeFunctions: true,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Parse compiles expr and evaluates it against env.
//
// Under the default fail-silently policy, a syntax error or a reference to a
// name bound in neither env nor the built-ins yields ([Undefined], nil).
// With WithFailSilently(false) those faults are returned as *[SyntaxError]
// and *[MissingVariableError]. An *[EvaluationError] is always returned.
func Parse(
	ctx context.Context,
	expr string,
	env Env,
	opts ...Option,
) (Value, error) {
	o := makeOptions(opts...)

	prog, err := compile(ctx, expr, o)
	if err != nil {
		return o.silence(ctx, err)
	}

	return prog.evaluate(ctx, env, o)
}

// silence applies the fail-silently policy to err.
func (o options) silence(ctx context.Context, err error) (Value, error) {
	if !o.failSilently {
		return Undefined(), err
	}

	var (
		syntaxErr  *SyntaxError
		missingErr *MissingVariableError
	)

	if errors.As(err, &syntaxErr) || errors.As(err, &missingErr) {
		o.logger.DebugContext(ctx, "fault silenced", slog.Any("error", err))

		return Undefined(), nil
	}

	return Undefined(), err
}
