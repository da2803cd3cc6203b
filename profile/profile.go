package profile

import (
	"context"
	"log/slog"

	"github.com/ardnew/yapp/log"
)

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Profiler configures a profiling session.
type Profiler struct {
	Mode  string
	Path  string
	Quiet bool
}

// Option configures a [Profiler].
type Option func(Profiler) Profiler

// New returns a Profiler with opts applied.
func New(opts ...Option) Profiler {
	var p Profiler

	for _, opt := range opts {
		p = opt(p)
	}

	return p
}

// WithMode returns a functional option for setting a profiler's mode.
func WithMode(mode string) Option {
	return func(p Profiler) Profiler {
		p.Mode = mode

		return p
	}
}

// WithPath returns a functional option for setting a profiler's output path.
func WithPath(path string) Option {
	return func(p Profiler) Profiler {
		p.Path = path

		return p
	}
}

// WithQuiet returns a functional option for silencing the profiler's own
// log output.
func WithQuiet(quiet bool) Option {
	return func(p Profiler) Profiler {
		p.Quiet = quiet

		return p
	}
}

// Start begins profiling and returns the [Stopper] that ends it.
//
// Start is a no-op when built without the pprof tag, when Mode is empty,
// or when Mode is not one of [Modes]. Both Start and Stop are always safely
// callable.
func (p Profiler) Start(ctx context.Context) Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	s := start(p.Mode, p.Path, p.Quiet)
	if _, ok := s.(ignore); ok {
		log.DebugContext(ctx, "profiling unavailable",
			slog.String("mode", p.Mode),
			slog.Bool("tag", Enabled),
		)

		return s
	}

	log.DebugContext(ctx, "pprof start",
		slog.String("mode", p.Mode),
		slog.String("dir", p.Path),
	)

	return stopFunc(func() {
		log.DebugContext(ctx, "pprof stop",
			slog.String("mode", p.Mode),
			slog.String("dir", p.Path),
		)
		s.Stop()
	})
}

type ignore struct{}

func (ignore) Stop() {}

type stopFunc func()

func (f stopFunc) Stop() { f() }
