package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/yapp/cli/cmd"
	"github.com/ardnew/yapp/pkg"
)

// CLI is the top-level command-line interface for yapp.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Eval    cmd.Eval    `cmd:"" default:"withargs" help:"Evaluate a formula."`
	Check   cmd.Check   `cmd:""                    help:"Check that a formula compiles against an environment."`
	Vars    cmd.Vars    `cmd:""                    help:"List the names a formula references."`
	Postfix cmd.Postfix `cmd:""                    help:"Print the postfix form of a formula."`
	Repl    cmd.Repl    `cmd:""                    help:"Start an interactive session."`
	Init    cmd.Init    `cmd:""                    help:"Write the current flags to the configuration file."`
}

// Run executes the yapp CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	vars := kong.Vars{
		"version":            pkg.Version,
		cmd.ConfigIdentifier: configPath(baseConfig),
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Apply logger flags before parsing so that parse errors are logged the
	// way the user asked, wherever the flags appear.
	cli.Log.scan(args)

	groups := make([]kong.Group, 0, 2)

	for _, group := range []kong.Group{cli.Log.group(), cli.Pprof.group()} {
		if group.Key != "" {
			groups = append(groups, group)
		}
	}

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(groups),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(resolve, configPath(baseConfig)),
		kong.Configuration(kong.JSON, configPath(baseConfigJSON)),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	cli.Log.start(ctx)

	// no-op unless built with tag pprof and a mode is selected
	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}
