package lang

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// Cache memoizes compiled programs keyed by source text and grammar options.
// The zero value is ready to use, and a Cache is safe for concurrent use.
//
// Syntax errors are cached along with successful compilations.
type Cache struct {
	programs sync.Map // uint64 → *cacheEntry
	hits     atomic.Int64
	misses   atomic.Int64
}

type cacheEntry struct {
	once sync.Once
	src  string
	prog *Program
	err  error
}

// cacheKey hashes the source text with xxh3, seeded by the options that
// influence compilation.
func cacheKey(expr string, o options) uint64 {
	return xxh3.HashStringSeed(expr, uint64(o.maxDepth))
}

// Compile returns the cached program for expr, compiling it on first use.
func (c *Cache) Compile(ctx context.Context, expr string, opts ...Option) (*Program, error) {
	return c.compile(ctx, expr, makeOptions(opts...))
}

func (c *Cache) compile(ctx context.Context, expr string, o options) (*Program, error) {
	key := cacheKey(expr, o)

	actual, loaded := c.programs.LoadOrStore(key, &cacheEntry{src: expr})
	entry := actual.(*cacheEntry)

	if entry.src != expr {
		// Hash collision; bypass the cache.
		o.logger.DebugContext(ctx, "cache collision", slog.Uint64("key", key))

		return compile(ctx, expr, o)
	}

	if loaded {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}

	entry.once.Do(func() {
		entry.prog, entry.err = compile(ctx, expr, o)
	})

	o.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.Uint64("key", key),
		slog.Bool("hit", loaded),
	)

	return entry.prog, entry.err
}

// Parse is [Parse] with compilation served from the cache.
func (c *Cache) Parse(
	ctx context.Context,
	expr string,
	env Env,
	opts ...Option,
) (Value, error) {
	o := makeOptions(opts...)

	prog, err := c.compile(ctx, expr, o)
	if err != nil {
		return o.silence(ctx, err)
	}

	return prog.evaluate(ctx, env, o)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	n := 0

	c.programs.Range(func(_, _ any) bool {
		n++

		return true
	})

	return n
}

// Stats returns the number of cache hits and misses.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Reset discards every cached entry and the hit and miss counters.
func (c *Cache) Reset() {
	c.programs.Clear()
	c.hits.Store(0)
	c.misses.Store(0)
}

// MaxInputSize is the largest formula, in bytes, that [CompileReader]
// accepts.
const MaxInputSize = 1 << 20

// CompileReader reads an expression from r and compiles it. Trailing
// newlines are ignored so that a single line piped from a shell compiles as
// written. Input longer than [MaxInputSize] fails with [ErrInputTooLarge]
// without reading the remainder of r.
func CompileReader(ctx context.Context, r io.Reader, opts ...Option) (*Program, error) {
	// Pre-fetch the input concurrently with the read below.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(io.LimitReader(ra, MaxInputSize+1))
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	if len(data) > MaxInputSize {
		return nil, ErrReadInput.Wrap(ErrInputTooLarge).
			With(slog.Int("max_size", MaxInputSize))
	}

	expr := string(data)
	for len(expr) > 0 && (expr[len(expr)-1] == '\n' || expr[len(expr)-1] == '\r') {
		expr = expr[:len(expr)-1]
	}

	return Compile(ctx, expr, opts...)
}
