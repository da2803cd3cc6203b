package lang

import "log/slog"

// typeAttr describes the type of v for structured logging.
func typeAttr(key string, v Value) slog.Attr {
	return slog.String(key, v.Type().String())
}

// valueAttr renders v in native syntax for structured logging.
func valueAttr(key string, v Value) slog.Attr {
	return slog.String(key, FormatValue(v))
}
