package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf)

	if logger.Level() != DefaultLevel {
		t.Errorf("expected default level %v, got %v", DefaultLevel, logger.Level())
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("expected default format %v, got %v", DefaultFormat, logger.Format())
	}

	if logger.caller != DefaultCaller || logger.pretty != DefaultPretty {
		t.Errorf("unexpected defaults: caller=%v pretty=%v", logger.caller, logger.pretty)
	}
}

func TestLogger_Make_WithLevel_FiltersMessages(t *testing.T) {
	tests := []struct {
		name   string
		level  Level
		log    func(Logger)
		logged bool
	}{
		{"trace_at_trace", LevelTrace, func(l Logger) { l.Trace("msg") }, true},
		{"trace_at_debug", LevelDebug, func(l Logger) { l.Trace("msg") }, false},
		{"debug_at_debug", LevelDebug, func(l Logger) { l.Debug("msg") }, true},
		{"info_at_warn", LevelWarn, func(l Logger) { l.Info("msg") }, false},
		{"error_at_warn", LevelWarn, func(l Logger) { l.Error("msg") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.log(Make(&buf, WithLevel(tt.level)))

			if logged := buf.Len() > 0; logged != tt.logged {
				t.Errorf("logged = %v, want %v: %q", logged, tt.logged, buf.String())
			}
		})
	}
}

func TestLogger_Make_WithFormat_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithFormat(FormatJSON),
		WithPretty(false),
		WithLevel(LevelTrace),
		WithTimeLayout(""))

	logger.Trace("compile", slog.Int("token_count", 3))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, buf.String())
	}

	if record["level"] != "TRACE" {
		t.Errorf("level = %v, want TRACE", record["level"])
	}

	if record["token_count"] != float64(3) {
		t.Errorf("token_count = %v, want 3", record["token_count"])
	}

	if _, ok := record["time"]; ok {
		t.Errorf("time present despite empty layout: %v", record["time"])
	}
}

func TestLogger_Make_WithTimeLayout(t *testing.T) {
	tests := []struct {
		name   string
		layout string
		want   string
	}{
		{"named", "kitchen", time.Kitchen},
		{"named_punctuated", "RFC-3339", time.RFC3339},
		{"custom", "2006/01/02", "2006/01/02"},
	}

	ts := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format := makeFormatTimeFunc(tt.layout)

			if got, want := format(ts), ts.Format(tt.want); got != want {
				t.Errorf("format = %q, want %q", got, want)
			}
		})
	}

	for _, layout := range []string{"", "  ", "none"} {
		if got := makeFormatTimeFunc(layout)(ts); got != "" {
			t.Errorf("layout %q formatted time as %q", layout, got)
		}
	}
}

func TestLogger_Pretty_Text(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithTimeLayout("none"), WithLevel(LevelDebug)).
		With(slog.String("component", "lang"))

	logger.Debug("evaluate",
		slog.String("expr", "x + 1"),
		slog.Bool("silent", true),
		slog.Group("result", slog.String("type", "Int")))

	got := strings.TrimSpace(buf.String())
	want := "level=DEBUG msg=evaluate component=lang expr=x + 1 silent=true result.type=Int"

	if got != want {
		t.Errorf("pretty text =\n%q\nwant\n%q", got, want)
	}
}

func TestLogger_Pretty_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON), WithTimeLayout("none"))

	logger.Warn("fault", slog.Any("error", errors.New("boom")), slog.Int("n", 2))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("pretty JSON does not parse: %v\n%s", err, buf.String())
	}

	if record["level"] != "WARN" || record["error"] != "boom" || record["n"] != float64(2) {
		t.Errorf("unexpected record: %v", record)
	}

	if !strings.Contains(buf.String(), "\n  \"msg\": \"fault\"") {
		t.Errorf("pretty JSON is not indented:\n%s", buf.String())
	}
}

func TestLogger_Wrap_OverridesOptions(t *testing.T) {
	var first, second bytes.Buffer

	base := Make(&first, WithLevel(LevelError))
	derived := base.Wrap(WithOutput(&second), WithLevel(LevelInfo))

	derived.Info("derived")
	base.Info("base")

	if first.Len() != 0 {
		t.Errorf("base logger wrote below its level: %q", first.String())
	}

	if !strings.Contains(second.String(), "derived") {
		t.Errorf("derived logger output = %q", second.String())
	}

	if base.Level() != LevelError {
		t.Errorf("Wrap modified the base logger level: %v", base.Level())
	}
}

func TestLogger_ZeroValue_Safety(t *testing.T) {
	var logger Logger

	logger.Trace("ignored")
	logger.Error("ignored", slog.String("k", "v"))
	logger = logger.With(slog.String("k", "v"))
	logger.Info("ignored")

	if logger.Level() != 0 {
		t.Errorf("zero logger level = %v", logger.Level())
	}
}

func TestLogger_WithCaller_IncludesSource(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithCaller(true), WithFormat(FormatJSON), WithPretty(false))
	logger.Info("here")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("source does not name the calling file: %s", buf.String())
	}
}

func TestLogger_ConcurrentCalls_ThreadSafe(t *testing.T) {
	var (
		buf syncBuffer
		wg  sync.WaitGroup
	)

	logger := Make(&buf, WithTimeLayout("none"))

	for i := range 20 {
		wg.Go(func() {
			logger.Info("concurrent", slog.Int("i", i))
			_ = logger.Wrap(WithLevel(LevelDebug)).Level()
		})
	}

	wg.Wait()

	if n := strings.Count(buf.String(), "\n"); n != 20 {
		t.Errorf("got %d lines, want 20", n)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"Info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", DefaultLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	var l Level
	if err := l.UnmarshalText([]byte("nope")); err == nil {
		t.Error("UnmarshalText accepted an unknown level")
	}
}

func TestParseFormat(t *testing.T) {
	if got := ParseFormat(" JSON "); got != FormatJSON {
		t.Errorf("ParseFormat(JSON) = %v", got)
	}

	if got := ParseFormat("xml"); got != DefaultFormat {
		t.Errorf("ParseFormat(xml) = %v", got)
	}

	var f Format
	if err := f.UnmarshalText([]byte("xml")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("UnmarshalText(xml) error = %v", err)
	}
}

func TestPackage_LogFunctions_UseDefaultLogger(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithLevel(LevelDebug), WithFormat(FormatJSON), WithPretty(false))

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("message", slog.String("key", "value"))

			output := buf.String()
			if !strings.Contains(output, `"level":"`+tt.level+`"`) {
				t.Errorf("expected level %q, got: %s", tt.level, output)
			}

			if !strings.Contains(output, `"key":"value"`) {
				t.Errorf("expected attribute, got: %s", output)
			}
		})
	}
}

// syncBuffer is a bytes.Buffer safe for concurrent writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func BenchmarkLogger_Info(b *testing.B) {
	logger := Make(&bytes.Buffer{}, WithPretty(false))

	b.ReportAllocs()

	for b.Loop() {
		logger.Info("benchmark", slog.Int("n", 1))
	}
}

func BenchmarkLogger_Info_Pretty(b *testing.B) {
	logger := Make(&bytes.Buffer{})

	b.ReportAllocs()

	for b.Loop() {
		logger.Info("benchmark", slog.Int("n", 1))
	}
}

func BenchmarkLogger_Trace_Disabled(b *testing.B) {
	logger := Make(&bytes.Buffer{})

	b.ReportAllocs()

	for b.Loop() {
		logger.Trace("benchmark", slog.Int("n", 1))
	}
}
