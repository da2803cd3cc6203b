package log

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by the pretty handler. Styles come from a
// renderer bound to the output, so color is only emitted to terminals.
type palette struct {
	key, str, num, yes, no, dur, tim, null lipgloss.Style

	level map[slog.Level]lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return &palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		yes:  fg("2"),
		no:   fg("1"),
		dur:  fg("5"),
		tim:  fg("4"),
		null: fg("8"),
		level: map[slog.Level]lipgloss.Style{
			slog.Level(LevelTrace): fg("4"),
			slog.LevelDebug:        fg("4"),
			slog.LevelInfo:         fg("2"),
			slog.LevelWarn:         fg("3").Bold(true),
			slog.LevelError:        fg("1").Bold(true),
		},
	}
}

// levelStyle returns the style of the nearest defined level at or below l.
func (p *palette) levelStyle(l slog.Level) lipgloss.Style {
	for _, level := range slices.Backward(levels) {
		if l >= slog.Level(level) {
			return p.level[slog.Level(level)]
		}
	}

	return p.level[slog.Level(LevelTrace)]
}

// prettyHandler writes colorized records for a human reader: logfmt-style
// lines for [FormatText] and indented objects for [FormatJSON].
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	style  *palette
	attrs  []slog.Attr
	groups []string
	json   bool
}

func newPrettyHandler(
	w io.Writer,
	format Format,
	opts *slog.HandlerOptions,
) *prettyHandler {
	return &prettyHandler{
		opts:  *opts,
		mu:    &sync.Mutex{},
		w:     w,
		style: newPalette(w),
		json:  format == FormatJSON,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = slices.Concat(h.attrs, h.qualify(attrs))

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(h.groups[:len(h.groups):len(h.groups)], name)

	return &c
}

// qualify prefixes attribute keys with the open groups.
func (h *prettyHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if len(h.groups) == 0 {
		return attrs
	}

	prefix := strings.Join(h.groups, ".") + "."
	out := make([]slog.Attr, len(attrs))

	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}

	return out
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	builtin := []slog.Attr{
		slog.Time(slog.TimeKey, r.Time),
		slog.Any(slog.LevelKey, r.Level),
	}

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			builtin = append(builtin, slog.String(
				slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	builtin = append(builtin, slog.String(slog.MessageKey, r.Message))

	for _, a := range builtin {
		if a.Key == slog.TimeKey && r.Time.IsZero() {
			continue
		}

		// Keep the raw level for styling; ReplaceAttr only relabels it.
		if a.Key != slog.LevelKey && h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if a.Key != "" {
			fields = append(fields, a)
		}
	}

	fields = append(fields, h.attrs...)

	var own []slog.Attr

	r.Attrs(func(a slog.Attr) bool {
		own = append(own, a)

		return true
	})

	fields = append(fields, h.qualify(own)...)

	var buf bytes.Buffer

	if h.json {
		h.writeObject(&buf, fields)
	} else {
		h.writeLine(&buf, fields)
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) writeLine(buf *bytes.Buffer, fields []slog.Attr) {
	for _, a := range fields {
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}

		h.writeText(buf, a.Key, a.Value)
	}
}

// writeText writes key=value, expanding groups into dotted keys.
func (h *prettyHandler) writeText(buf *bytes.Buffer, key string, v slog.Value) {
	v = v.Resolve()

	if v.Kind() == slog.KindGroup {
		for i, a := range v.Group() {
			if i > 0 {
				buf.WriteByte(' ')
			}

			h.writeText(buf, key+"."+a.Key, a.Value)
		}

		return
	}

	buf.WriteString(h.style.key.Render(key))
	buf.WriteByte('=')
	buf.WriteString(h.render(v))
}

func (h *prettyHandler) writeObject(buf *bytes.Buffer, fields []slog.Attr) {
	h.writeMembers(buf, fields, 1)
}

func (h *prettyHandler) writeMembers(buf *bytes.Buffer, fields []slog.Attr, depth int) {
	indent := strings.Repeat("  ", depth)

	buf.WriteString("{\n")

	for i, a := range fields {
		buf.WriteString(indent)
		buf.WriteString(h.style.key.Render(strconv.Quote(a.Key)))
		buf.WriteString(": ")

		if v := a.Value.Resolve(); v.Kind() == slog.KindGroup {
			h.writeMembers(buf, v.Group(), depth+1)
		} else {
			buf.WriteString(h.renderJSON(v))
		}

		if i < len(fields)-1 {
			buf.WriteByte(',')
		}

		buf.WriteByte('\n')
	}

	buf.WriteString(strings.Repeat("  ", depth-1))
	buf.WriteByte('}')
}

// render formats a scalar for text output, without quoting.
func (h *prettyHandler) render(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return h.style.str.Render(v.String())

	case slog.KindInt64:
		return h.style.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return h.style.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return h.style.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return h.style.yes.Render("true")
		}

		return h.style.no.Render("false")

	case slog.KindDuration:
		return h.style.dur.Render(v.Duration().String())

	case slog.KindTime:
		return h.style.tim.Render(v.Time().Format(time.RFC3339))

	default:
		if level, ok := v.Any().(slog.Level); ok {
			return h.style.levelStyle(level).
				Render(strings.ToUpper(Level(level).String()))
		}

		if v.Any() == nil {
			return h.style.null.Render("<nil>")
		}

		return h.style.str.Render(v.String())
	}
}

// renderJSON formats a scalar as a JSON value.
func (h *prettyHandler) renderJSON(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return h.style.str.Render(strconv.Quote(v.String()))

	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindBool:
		return h.render(v)

	case slog.KindDuration:
		return h.style.dur.Render(strconv.Quote(v.Duration().String()))

	case slog.KindTime:
		return h.style.tim.Render(strconv.Quote(v.Time().Format(time.RFC3339)))

	default:
		if _, ok := v.Any().(slog.Level); ok {
			return `"` + h.render(v) + `"`
		}

		if v.Any() == nil {
			return h.style.null.Render("null")
		}

		if err, ok := v.Any().(error); ok {
			return h.style.str.Render(strconv.Quote(err.Error()))
		}

		data, err := json.Marshal(v.Any())
		if err != nil {
			data = []byte(strconv.Quote(v.String()))
		}

		return h.style.str.Render(string(data))
	}
}
