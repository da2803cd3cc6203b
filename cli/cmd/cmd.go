package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type stdinKey struct{}

// WithStdin returns a new context.Context whose commands read standard input
// from r instead of [os.Stdin].
func WithStdin(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, stdinKey{}, r)
}

func stdin(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(stdinKey{}).(io.Reader); ok && r != nil {
		return r
	}

	return os.Stdin
}

// stdout returns the writer receiving command output.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// source is an opened environment document.
type source struct {
	io.Reader

	name  string
	close func() error
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// openSources opens each path once, in order. Paths referring to the same
// file are opened only at their first occurrence. All occurrences of "-"
// collapse into a single standard input source placed last so it reads after
// all regular files.
func openSources(ctx context.Context, paths []string) ([]source, error) {
	srcs := make([]source, 0, len(paths))
	seen := make(map[fileKey]struct{})
	hasStdin := false

	for _, path := range paths {
		if path == stdinSource {
			hasStdin = true

			continue
		}

		src, ok, err := openUniqueFile(path, seen)
		if err != nil {
			closeSources(srcs)

			return nil, err
		}

		if ok {
			srcs = append(srcs, src)
		}
	}

	if hasStdin {
		srcs = append(srcs, source{
			Reader: stdin(ctx),
			name:   stdinSource,
			close:  func() error { return nil },
		})
	}

	return srcs, nil
}

func closeSources(srcs []source) error {
	var errs []error

	for _, src := range srcs {
		errs = append(errs, src.close())
	}

	return errors.Join(errs...)
}

// openUniqueFile opens the file at path if it hasn't been seen before.
// It resolves symlinks and uses device/inode to detect duplicates.
// The returned bool is false if the file is a duplicate.
func openUniqueFile(
	path string,
	seen map[fileKey]struct{},
) (source, bool, error) {
	fail := func(err error) (source, bool, error) {
		return source{}, false, ErrEnvironment.
			With(slog.String("file", path)).
			Wrap(err)
	}

	// Resolve to absolute path to handle relative path duplicates.
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fail(err)
	}

	// Resolve symlinks to their target.
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return fail(err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fail(err)
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			return source{}, false, nil
		}

		seen[key] = struct{}{}
	}

	file, err := os.Open(resolved)
	if err != nil {
		return fail(err)
	}

	return source{Reader: file, name: path, close: file.Close}, true, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
