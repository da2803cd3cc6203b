package cmd

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/ardnew/yapp/binding"
	"github.com/ardnew/yapp/lang"
	"github.com/ardnew/yapp/log"
)

// Input holds the flags shared by every command that resolves names.
type Input struct {
	Env       []string `help:"Environment document (YAML or JSON), or '-' for stdin." placeholder:"FILE"         sep:"none" short:"e" type:"path"`
	Var       []string `help:"Bind a name to a formula literal."                      placeholder:"NAME=LITERAL" sep:"none"`
	StrictEnv bool     `help:"Reject unknown keys in environment documents."`
	MaxDepth  int      `help:"Maximum nesting depth of a formula."                    default:"256"`
}

// options returns the engine options selected by the input flags.
func (in *Input) options(opts ...lang.Option) []lang.Option {
	return append([]lang.Option{
		lang.WithMaxDepth(in.MaxDepth),
		lang.WithLogger(log.Default()),
	}, opts...)
}

// readsStdin reports whether any environment document is standard input.
func (in *Input) readsStdin() bool {
	return slices.Contains(in.Env, stdinSource)
}

// document decodes and merges every environment document.
func (in *Input) document(ctx context.Context) (binding.Document, error) {
	srcs, err := openSources(ctx, in.Env)
	if err != nil {
		return binding.Document{}, err
	}
	defer closeSources(srcs)

	docs := make([]binding.Document, 0, len(srcs))

	for _, src := range srcs {
		doc, err := binding.Decode(ctx, src, in.bindingOptions()...)
		if err != nil {
			return binding.Document{}, ErrEnvironment.
				With(slog.String("source", src.name)).
				Wrap(err)
		}

		docs = append(docs, doc)
	}

	return binding.MergeDocuments(docs...), nil
}

// environment builds the environment of doc overlaid with the --var
// bindings.
func (in *Input) environment(
	ctx context.Context,
	doc binding.Document,
) (lang.Env, error) {
	env, err := doc.Env(ctx, in.bindingOptions()...)
	if err != nil {
		return nil, ErrEnvironment.Wrap(err)
	}

	vars, err := binding.ParseVars(ctx, in.Var)
	if err != nil {
		return nil, ErrEnvironment.Wrap(err)
	}

	return binding.Merge(env, vars), nil
}

// load decodes the environment documents and builds the environment.
func (in *Input) load(ctx context.Context) (lang.Env, error) {
	doc, err := in.document(ctx)
	if err != nil {
		return nil, err
	}

	return in.environment(ctx, doc)
}

func (in *Input) bindingOptions() []binding.Option {
	return []binding.Option{
		binding.WithLogger(log.Default()),
		binding.WithStrict(in.StrictEnv),
	}
}

// Formula is the positional formula argument of a command.
type Formula struct {
	Formula string `arg:"" help:"Formula text, or '-' (default) for stdin." optional:""`
}

func (f *Formula) fromStdin() bool {
	return f.Formula == "" || f.Formula == stdinSource
}

// compile compiles the formula argument, reading standard input when it is
// "-" or absent. Reading standard input for both the formula and an
// environment document is an error.
func (f *Formula) compile(
	ctx context.Context,
	in *Input,
	opts ...lang.Option,
) (*lang.Program, error) {
	if !f.fromStdin() {
		return lang.Compile(ctx, f.Formula, opts...)
	}

	if in != nil && in.readsStdin() {
		return nil, ErrStdinConflict
	}

	prog, err := lang.CompileReader(ctx, stdin(ctx), opts...)
	if errors.Is(err, lang.ErrReadInput) {
		return nil, ErrReadFormula.Wrap(err)
	}

	return prog, err
}
