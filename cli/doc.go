// Package cli contains the command line interface for yapp.
//
// # Usage
//
// Without a command, the arguments are evaluated as a formula:
//
//	yapp '2 ^ 10'
//	yapp eval -e env.yaml --var rate=3 'scale(price)'
//	yapp check -e env.yaml 'scale(x)'
//	yapp vars --all 'a + f(b)'
//	yapp postfix -o json 'f(x, 1)'
//	yapp repl -e env.yaml
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration directory
// (for example, ~/.config/yapp/config.yaml). Keys are flag names, optionally
// nested by prefix or by command:
//
//	log:
//	  level: debug
//	eval:
//	  output: json
//
// A config.json in the same directory is read as well. The init command writes
// the flags of the current invocation to config.yaml.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time: Set timestamp layout (RFC3339, kitchen, ms, none, etc.)
//   - --[no-]log-caller: Include caller information in log output
//   - --[no-]log-pretty: Style log output for a terminal
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o yapp .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/yapp/pprof)
package cli
