package lang

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/ardnew/yapp/log"
)

// Evaluate reduces the program against env.
//
// Only [WithFailSilently] and [WithLogger] affect evaluation. Under the
// default fail-silently policy a reference to an unbound name yields
// ([Undefined], nil).
func (p *Program) Evaluate(ctx context.Context, env Env, opts ...Option) (Value, error) {
	return p.evaluate(ctx, env, makeOptions(opts...))
}

func (p *Program) evaluate(ctx context.Context, env Env, o options) (Value, error) {
	r := &reducer{
		ctx:    ctx,
		env:    env,
		stack:  slices.Clone(p.postfix),
		logger: o.logger,
		silent: o.failSilently,
	}

	result, err := r.reduce()
	if err == nil && len(r.stack) > 0 {
		err = evalError("", ErrStackUnderflow.
			With(slog.Int("unreduced_tokens", len(r.stack))))
	}

	if err != nil {
		return o.silence(ctx, err)
	}

	o.logger.TraceContext(
		ctx,
		"evaluate complete",
		slog.String("source", p.source),
		typeAttr("result_type", result),
		valueAttr("result", result),
	)

	return result, nil
}

// reducer consumes a private copy of a postfix buffer from the end.
type reducer struct {
	ctx    context.Context
	env    Env
	stack  []Token
	logger log.Logger
	silent bool
}

// pop removes and returns the last token of the buffer.
func (r *reducer) pop() (Token, error) {
	n := len(r.stack)
	if n == 0 {
		return Token{}, evalError("", ErrStackUnderflow)
	}

	t := r.stack[n-1]
	r.stack = r.stack[:n-1]

	return t, nil
}

// reduce pops one token and computes the value of the subtree it closes.
func (r *reducer) reduce() (Value, error) {
	t, err := r.pop()
	if err != nil {
		return Undefined(), err
	}

	switch t.Kind {
	case KindInt:
		return NewInt(t.Int), nil

	case KindFloat:
		return NewFloat(t.Float), nil

	case KindString:
		return NewString(t.Text), nil

	case KindBool:
		return NewBool(t.Bool), nil

	case KindIdent:
		v, ok := r.env.Lookup(t.Text)
		if !ok {
			return r.missing(t.Text)
		}

		return v, nil

	case KindList:
		elems, err := r.reduceN(t.Count())
		if err != nil {
			return Undefined(), err
		}

		return NewList(elems...), nil

	case KindOperator:
		right, err := r.reduce()
		if err != nil {
			return Undefined(), err
		}

		left, err := r.reduce()
		if err != nil {
			return Undefined(), err
		}

		return apply(t.Text, left, right)

	case KindCall:
		return r.call(t.Text, t.Count())

	default:
		return Undefined(), evalError(t.String(), ErrInvalidValue.
			With(slog.String("kind", t.Kind.String())))
	}
}

// reduceN reduces n operand subtrees and returns them in source order.
func (r *reducer) reduceN(n int) ([]Value, error) {
	vals := make([]Value, n)

	for i := n - 1; i >= 0; i-- {
		v, err := r.reduce()
		if err != nil {
			return nil, err
		}

		vals[i] = v
	}

	return vals, nil
}

// call resolves name and applies it to the argc preceding subtrees.
func (r *reducer) call(name string, argc int) (Value, error) {
	v, ok := r.env.Lookup(name)
	if !ok {
		// Discard the arguments so the buffer stays aligned with the
		// enclosing expression.
		err := r.skipN(argc)
		if err != nil {
			return Undefined(), err
		}

		return r.missing(name)
	}

	fn := v.Callable()
	if fn == nil || fn.Fn == nil {
		return Undefined(), evalError(name, ErrNotCallable.
			With(slog.String("type", v.Type().String())))
	}

	if !fn.accepts(argc) {
		return Undefined(), evalError(name, ErrArity.With(
			slog.Int("arity", fn.Arity),
			slog.Bool("variadic", fn.Variadic),
			slog.Int("argc", argc),
		))
	}

	args, err := r.reduceN(argc)
	if err != nil {
		return Undefined(), err
	}

	r.logger.TraceContext(
		r.ctx,
		"call",
		slog.String("name", name),
		slog.Int("argc", argc),
	)

	result, err := fn.Fn(args)
	if err != nil {
		var evalErr *EvaluationError
		if errors.As(err, &evalErr) {
			return Undefined(), err
		}

		return Undefined(), &EvaluationError{Op: name, Err: err}
	}

	return result, nil
}

// missing applies the fault policy to a name bound in neither the
// environment nor the built-ins.
func (r *reducer) missing(name string) (Value, error) {
	err := &MissingVariableError{Name: name}
	if !r.silent {
		return Undefined(), err
	}

	r.logger.DebugContext(r.ctx, "fault silenced", slog.Any("error", err))

	return Undefined(), nil
}

// skipN discards n operand subtrees without evaluating them.
func (r *reducer) skipN(n int) error {
	for range n {
		t, err := r.pop()
		if err != nil {
			return err
		}

		switch t.Kind {
		case KindOperator:
			err = r.skipN(2)

		case KindCall, KindList:
			err = r.skipN(t.Count())
		}

		if err != nil {
			return err
		}
	}

	return nil
}
