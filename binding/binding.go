package binding

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/yapp/lang"
	"github.com/ardnew/yapp/log"
)

// Document is the decoded form of an environment document.
type Document struct {
	Vars  map[string]any  `json:"vars,omitempty"  yaml:"vars,omitempty"`
	Funcs map[string]Func `json:"funcs,omitempty" yaml:"funcs,omitempty"`
}

type options struct {
	logger log.Logger
	strict bool
}

// Option configures document loading.
type Option func(*options)

// WithLogger sets the logger used to report loaded bindings.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithStrict rejects documents containing top-level keys other than vars and
// funcs.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

func makeOptions(opts ...Option) options {
	var o options

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

func (o options) decodeOptions() []yaml.DecodeOption {
	if o.strict {
		return []yaml.DecodeOption{yaml.DisallowUnknownField()}
	}

	return nil
}

// Decode parses an environment document from r. An empty document decodes
// to an empty Document.
func Decode(ctx context.Context, r io.Reader, opts ...Option) (Document, error) {
	o := makeOptions(opts...)

	var doc Document

	err := yaml.NewDecoder(r, o.decodeOptions()...).DecodeContext(ctx, &doc)
	if err != nil && !errors.Is(err, io.EOF) {
		return Document{}, ErrDecode.Wrap(err)
	}

	return doc, nil
}

// Load decodes an environment document from r and builds its environment.
func Load(ctx context.Context, r io.Reader, opts ...Option) (lang.Env, error) {
	doc, err := Decode(ctx, r, opts...)
	if err != nil {
		return nil, err
	}

	return doc.Env(ctx, opts...)
}

// LoadFile is like [Load] but reads the document at path.
func LoadFile(ctx context.Context, path string, opts ...Option) (lang.Env, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrDecode.With(slog.String("file", path)).Wrap(err)
	}
	defer f.Close()

	env, err := Load(ctx, f, opts...)
	if err != nil {
		var e *lang.Error
		if errors.As(err, &e) {
			return nil, e.With(slog.String("file", path))
		}

		return nil, err
	}

	return env, nil
}

// Env builds the environment described by d. Function bodies may refer to
// their parameters and to any entry of d.Vars.
func (d Document) Env(ctx context.Context, opts ...Option) (lang.Env, error) {
	o := makeOptions(opts...)
	env := make(lang.Env, len(d.Vars)+len(d.Funcs))
	consts := make(map[string]any, len(d.Vars))

	for _, name := range slices.Sorted(maps.Keys(d.Vars)) {
		if !lang.IsIdentifier(name) {
			return nil, ErrInvalidName.With(slog.String("var", name))
		}

		v, err := lang.FromNative(d.Vars[name])
		if err != nil {
			return nil, ErrInvalidVar.With(slog.String("name", name)).Wrap(err)
		}

		env[name] = v
		consts[name] = v.ToNative()
	}

	for _, name := range slices.Sorted(maps.Keys(d.Funcs)) {
		if !lang.IsIdentifier(name) {
			return nil, ErrInvalidName.With(slog.String("func", name))
		}

		if _, ok := env[name]; ok {
			return nil, ErrInvalidFunc.With(
				slog.String("name", name),
				slog.String("reason", "name is also bound in vars"),
			)
		}

		fn, err := d.Funcs[name].compile(name, withHelpers(consts))
		if err != nil {
			return nil, err
		}

		env[name] = fn
	}

	o.logger.DebugContext(ctx, "environment loaded",
		slog.Int("vars", len(d.Vars)),
		slog.Int("funcs", len(d.Funcs)),
	)

	return env, nil
}

// Merge returns a new environment holding the bindings of every env, with
// later environments taking precedence.
func Merge(envs ...lang.Env) lang.Env {
	out := make(lang.Env)

	for _, env := range envs {
		maps.Copy(out, env)
	}

	return out
}

// MergeDocuments returns a new document holding the declarations of every
// doc. A later declaration replaces an earlier one of the same name, even
// when one is a var and the other a func.
func MergeDocuments(docs ...Document) Document {
	out := Document{
		Vars:  make(map[string]any),
		Funcs: make(map[string]Func),
	}

	for _, doc := range docs {
		for name, v := range doc.Vars {
			delete(out.Funcs, name)
			out.Vars[name] = v
		}

		for name, fn := range doc.Funcs {
			delete(out.Vars, name)
			out.Funcs[name] = fn
		}
	}

	return out
}
