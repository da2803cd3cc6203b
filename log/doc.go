// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// Time formatting, caller information, verbosity and output format are
// applied at logger creation time using functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("evaluated", slog.String("expr", "x + 1"))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a logger with further options applied, and
// [Logger.With] adds attributes to every subsequent message.
//
// # Levels
//
// In addition to the four [log/slog] levels, [LevelTrace] sits below
// [LevelDebug] for step-by-step tracing of parsing and evaluation. Level and
// Format implement [encoding.TextUnmarshaler], so both bind directly to
// command-line flags.
//
// # Pretty Output
//
// With [WithPretty] (the default), text records drop quoting and JSON
// records are indented. Keys and values are colored with lipgloss when the
// output is a terminal; other writers receive plain text.
//
// # Package-Level Logger
//
// The functions [Debug], [Info], [Warn], [Error] and their Context variants
// write through the logger returned by [Default], which [Config] and
// [SetDefault] replace. Context-unaware functions use
// [DefaultContextProvider], which returns [context.TODO] by default.
package log
