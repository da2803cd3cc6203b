package cmd

import (
	"context"

	"github.com/ardnew/yapp/lang"
	"github.com/ardnew/yapp/log"
)

// Postfix prints the postfix token buffer a formula compiles to.
type Postfix struct {
	Output `embed:""`

	MaxDepth int `default:"256" help:"Maximum nesting depth of a formula."`

	Formula `embed:""`
}

// Run executes the postfix command.
func (p *Postfix) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := p.compile(ctx, nil,
		lang.WithMaxDepth(p.MaxDepth),
		lang.WithLogger(log.Default()),
	)
	if err != nil {
		return err
	}

	return p.writeProgram(ctx, stdout(ctx), prog)
}
