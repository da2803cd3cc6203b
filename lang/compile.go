package lang

import (
	"context"
	"log/slog"
	"slices"
	"strings"
)

// Program is a compiled expression: the postfix buffer produced by the
// grammar together with the flat concrete token sequence of the parse.
//
// A Program is immutable after [Compile] and safe for concurrent use.
// Each evaluation consumes its own copy of the postfix buffer.
type Program struct {
	source  string
	postfix []Token
	lexemes []Lexeme
}

// Compile parses expr into a [Program].
//
// The returned error, if any, is a *[SyntaxError]. The fail-silently policy
// does not apply to Compile.
func Compile(ctx context.Context, expr string, opts ...Option) (*Program, error) {
	return compile(ctx, expr, makeOptions(opts...))
}

func compile(ctx context.Context, expr string, o options) (*Program, error) {
	o.logger.TraceContext(
		ctx,
		"compile start",
		slog.Int("source_length", len(expr)),
		slog.Int("max_depth", o.maxDepth),
	)

	p := newParser(expr, o.maxDepth)

	err := p.parse()
	if err != nil {
		o.logger.TraceContext(ctx, "compile failed", slog.Any("error", err))

		return nil, err
	}

	o.logger.TraceContext(
		ctx,
		"compile complete",
		slog.Int("token_count", len(p.postfix)),
		slog.Int("lexeme_count", len(p.lexemes)),
	)

	return &Program{
		source:  expr,
		postfix: p.postfix,
		lexemes: p.lexemes,
	}, nil
}

// Source returns the expression the program was compiled from.
func (p *Program) Source() string { return p.source }

// Postfix returns a copy of the postfix buffer.
func (p *Program) Postfix() []Token { return slices.Clone(p.postfix) }

// Lexemes returns a copy of the flat concrete token sequence, in source
// order.
func (p *Program) Lexemes() []Lexeme { return slices.Clone(p.lexemes) }

// Identifiers returns the identifier and callee names referenced by the
// program, deduplicated, in order of first appearance.
func (p *Program) Identifiers() []string {
	var names []string

	seen := make(map[string]struct{})

	for _, lx := range p.lexemes {
		if lx.Kind != LexIdent {
			continue
		}

		if _, ok := seen[lx.Text]; ok {
			continue
		}

		seen[lx.Text] = struct{}{}
		names = append(names, lx.Text)
	}

	return names
}

// String renders the postfix buffer as space-separated tokens.
func (p *Program) String() string {
	var buf strings.Builder

	for i, t := range p.postfix {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(t.String())
	}

	return buf.String()
}
