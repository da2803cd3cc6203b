package cmd

import (
	"context"

	"github.com/ardnew/yapp/binding"
	"github.com/ardnew/yapp/cli/cmd/repl"
	"github.com/ardnew/yapp/log"
)

// Repl starts an interactive session evaluating formulas.
type Repl struct {
	Input `embed:""`

	Strict  bool `help:"Report syntax errors and missing variables instead of printing Undefined." short:"s"`
	History bool `default:"true" help:"Persist input history in the cache directory." negatable:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if r.readsStdin() {
		return ErrStdinConflict
	}

	doc, err := r.document(ctx)
	if err != nil {
		return err
	}

	vars, err := binding.ParseVars(ctx, r.Var)
	if err != nil {
		return ErrEnvironment.Wrap(err)
	}

	var cacheDir string

	if ktx := kongContextFrom(ctx); ktx != nil && r.History {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, repl.Config{
		Document: doc,
		Vars:     vars,
		CacheDir: cacheDir,
		Strict:   r.Strict,
		Options:  r.options(),
		Logger:   log.Default(),
	})
}
