package cmd

import (
	"context"

	"github.com/ardnew/yapp/lang"
)

// Vars lists the names a formula references, in order of first appearance.
type Vars struct {
	Input  `embed:""`
	Output `embed:""`

	All bool `help:"Include names bound to functions." short:"a"`

	Formula `embed:""`
}

// Run executes the vars command. Syntax errors are always reported.
func (v *Vars) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts := v.options(lang.WithExcludeFunctions(!v.All))

	prog, err := v.compile(ctx, &v.Input, opts...)
	if err != nil {
		return err
	}

	env, err := v.load(ctx)
	if err != nil {
		return err
	}

	names, err := lang.GetVariables(ctx, prog.Source(), env, opts...)
	if err != nil {
		return err
	}

	return v.writeNames(stdout(ctx), names)
}
