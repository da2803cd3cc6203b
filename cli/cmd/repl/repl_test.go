package repl

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/yapp/binding"
	"github.com/ardnew/yapp/lang"
)

func testModel(t *testing.T) model {
	t.Helper()

	doc := binding.Document{
		Vars: map[string]any{"rate": 2},
		Funcs: map[string]binding.Func{
			"scale": {Params: []string{"v"}, Body: "v * rate"},
			"sum":   {Params: []string{"...xs"}, Body: "reduce(xs, #acc + #, 0)"},
		},
	}

	m, err := newModel(t.Context(), Config{
		Document: doc,
		Vars:     lang.Env{"base": lang.NewInt(10)},
	}, NewHistory(""))
	if err != nil {
		t.Fatalf("newModel() error = %v", err)
	}

	return m
}

func typeText(m model, text string) model {
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})

	return m
}

func TestNewModel_InvalidDocument(t *testing.T) {
	t.Parallel()

	doc := binding.Document{Funcs: map[string]binding.Func{"f": {Body: "a +"}}}

	_, err := newModel(t.Context(), Config{Document: doc}, NewHistory(""))
	if !errors.Is(err, binding.ErrInvalidFunc) {
		t.Errorf("newModel() error = %v, want ErrInvalidFunc", err)
	}
}

func TestModel_Evaluate(t *testing.T) {
	t.Parallel()

	m := testModel(t)

	tests := []struct {
		input string
		want  lang.Value
	}{
		{"scale(base) + rate", lang.NewInt(22)},
		{"sum(1, 2, base)", lang.NewInt(13)},
		{"missing + 1", lang.Undefined()},
		{"1 +", lang.Undefined()},
		{"in(rate, [1, 2])", lang.NewBool(true)},
	}

	for _, tt := range tests {
		got, err := m.evaluate(tt.input)
		if err != nil {
			t.Errorf("evaluate(%q) error = %v", tt.input, err)

			continue
		}

		if !got.Equal(tt.want) || got.Type() != tt.want.Type() {
			t.Errorf("evaluate(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}

	m, err := m.setStrict("on")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.evaluate("missing + 1"); !errors.Is(err, lang.ErrMissingVariable) {
		t.Errorf("strict evaluate(missing) error = %v", err)
	}

	if _, err := m.evaluate("1 / 0"); !errors.Is(err, lang.ErrDivisionByZero) {
		t.Errorf("evaluate(1 / 0) error = %v", err)
	}
}

func TestModel_ExecuteInput(t *testing.T) {
	t.Parallel()

	m := typeText(testModel(t), "1 + 2")

	m, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Enter produced no command")
	}

	if m.input.Value() != "" {
		t.Errorf("input after Enter = %q, want empty", m.input.Value())
	}

	if e, err := m.history.GetEntry(0); err != nil || e != (HistoryEntry{"1 + 2", modeEval}) {
		t.Errorf("history entry = %v, %v", e, err)
	}

	// Empty input is ignored.
	m, cmd = m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || m.history.Len() != 1 {
		t.Errorf("Enter on empty input: cmd=%v len=%d", cmd, m.history.Len())
	}
}

func TestModel_SetUnset(t *testing.T) {
	t.Parallel()

	m := testModel(t)

	n, err := m.set("x = 5")
	if err != nil {
		t.Fatalf("set() error = %v", err)
	}

	if _, ok := m.env["x"]; ok {
		t.Error("set() modified the receiver's environment")
	}

	if got, _ := n.evaluate("x + base"); !got.Equal(lang.NewInt(15)) {
		t.Errorf("x + base = %v, want 15", got)
	}

	n, err = n.unset("x")
	if err != nil || n.env.Bound("x") {
		t.Errorf("unset(x) = %v, bound %v", err, n.env.Bound("x"))
	}

	n, err = n.unset("sum")
	if err != nil || n.env.Bound("sum") {
		t.Errorf("unset(sum) = %v, bound %v", err, n.env.Bound("sum"))
	}

	if _, err := n.unset("rate"); !errors.Is(err, binding.ErrInvalidFunc) {
		t.Errorf("unset(rate) error = %v, want ErrInvalidFunc", err)
	}

	if _, err := n.unset("nope"); !errors.Is(err, ErrUnknownName) {
		t.Errorf("unset(nope) error = %v, want ErrUnknownName", err)
	}

	if _, err := n.set(""); !errors.Is(err, ErrMissingOperand) {
		t.Errorf("set() error = %v, want ErrMissingOperand", err)
	}

	if _, err := n.set("9=1"); !errors.Is(err, binding.ErrInvalidName) {
		t.Errorf("set(9=1) error = %v, want ErrInvalidName", err)
	}
}

func TestModel_SetStrict(t *testing.T) {
	t.Parallel()

	m := testModel(t)

	for _, tt := range []struct {
		arg  string
		want bool
	}{
		{"", true},
		{"", false},
		{"on", true},
		{"off", false},
		{"TRUE", true},
	} {
		var err error

		m, err = m.setStrict(tt.arg)
		if err != nil || m.strict != tt.want {
			t.Errorf("setStrict(%q) = %v, %v; want %v", tt.arg, m.strict, err, tt.want)
		}
	}

	if _, err := m.setStrict("maybe"); err == nil {
		t.Error("setStrict(maybe) succeeded")
	}
}

func TestModel_ListBindings(t *testing.T) {
	t.Parallel()

	got := testModel(t).listBindings()

	for _, want := range []string{"base", "10 (set)", "rate", "scale(v)", "sum(...xs)"} {
		if !strings.Contains(got, want) {
			t.Errorf("listBindings() = %q, missing %q", got, want)
		}
	}

	if strings.Contains(got, "not") {
		t.Errorf("listBindings() = %q, includes built-ins", got)
	}
}

func TestModel_Commands(t *testing.T) {
	t.Parallel()

	m := testModel(t)
	m = m.toggleMode()

	if m.mode != modeCtrl {
		t.Fatal("toggleMode() did not enter command mode")
	}

	m, cmd := m.executeCommand("set y='hi'")
	if cmd == nil || !m.env["y"].Equal(lang.NewString("hi")) {
		t.Errorf("set command: y = %v", m.env["y"])
	}

	m, _ = m.executeCommand("strict")
	if !m.strict {
		t.Error("strict command did not toggle")
	}

	m, cmd = m.executeCommand("quit")
	if !m.quitting || cmd == nil {
		t.Error("quit command did not quit")
	}
}

func TestModel_ModeToggleKeepsInput(t *testing.T) {
	t.Parallel()

	m := typeText(testModel(t), "1 +")

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("after Esc: mode=%v input=%q", m.mode, m.input.Value())
	}

	m = typeText(m, "li")

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeEval || m.input.Value() != "1 +" {
		t.Errorf("after second Esc: mode=%v input=%q", m.mode, m.input.Value())
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.input.Value() != "li" {
		t.Errorf("command input = %q, want li", m.input.Value())
	}
}

func TestModel_TabCompletion(t *testing.T) {
	t.Parallel()

	m := typeText(testModel(t), "1 + sc")

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	if got := m.input.Value(); got != "1 + scale" {
		t.Errorf("after Tab: input = %q, want %q", got, "1 + scale")
	}

	m = typeText(testModel(t), "s")
	if len(m.matches) < 2 {
		t.Fatalf("matches for s = %v, want several", m.matches)
	}

	first := m.matches[0].Str
	last := m.matches[len(m.matches)-1].Str

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyShiftTab})
	if !m.tabActive || m.input.Value() != last {
		t.Errorf("after Shift-Tab: input = %q, want %q", m.input.Value(), last)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	if m.input.Value() != first {
		t.Errorf("Tab wraps to %q, want %q", m.input.Value(), first)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.tabActive || m.input.Value() != "s" || m.mode != modeEval {
		t.Errorf("Esc while cycling: input = %q tab=%v", m.input.Value(), m.tabActive)
	}
}

func TestModel_HistoryNavigation(t *testing.T) {
	t.Parallel()

	m := testModel(t)

	for _, e := range []HistoryEntry{{"1", modeEval}, {"list", modeCtrl}, {"2", modeEval}} {
		if err := m.history.Add(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	m.historyIdx = m.history.Len()

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyUp})
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyUp})

	if m.input.Value() != "list" || m.mode != modeCtrl {
		t.Errorf("Up twice: input=%q mode=%v", m.input.Value(), m.mode)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyShiftUp})
	if m.input.Value() != "list" || m.historyIdx != 1 {
		t.Errorf("Shift-Up without earlier command: input=%q idx=%d", m.input.Value(), m.historyIdx)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyDown})
	if m.input.Value() != "2" || m.mode != modeEval {
		t.Errorf("Down: input=%q mode=%v", m.input.Value(), m.mode)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyDown})
	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("Down past end: input=%q idx=%d", m.input.Value(), m.historyIdx)
	}
}

func TestModel_Quit(t *testing.T) {
	t.Parallel()

	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyCtrlD} {
		m, cmd := testModel(t).handleKey(tea.KeyMsg{Type: key})
		if !m.quitting || cmd == nil {
			t.Errorf("%v on empty input did not quit", key)
		}

		if m.View() != "" {
			t.Errorf("View() after quit = %q", m.View())
		}
	}

	m, _ := typeText(testModel(t), "abc").handleKey(tea.KeyMsg{Type: tea.KeyCtrlC})
	if m.quitting || m.input.Value() != "" {
		t.Errorf("Ctrl+C with input: quitting=%v input=%q", m.quitting, m.input.Value())
	}
}

func TestModel_View(t *testing.T) {
	t.Parallel()

	m := testModel(t)
	if !strings.Contains(m.View(), "Type a formula") {
		t.Errorf("View() = %q, want usage hint", m.View())
	}

	m = typeText(m, "scale(")
	if view := m.View(); !strings.Contains(view, "scale") || !strings.Contains(view, "v") {
		t.Errorf("View() in call = %q, want signature", view)
	}
}

func TestModel_EditMessages(t *testing.T) {
	t.Parallel()

	m := testModel(t)

	doc := binding.Document{Vars: map[string]any{"rate": 3}}

	env, err := doc.Env(t.Context())
	if err != nil {
		t.Fatal(err)
	}

	next, _ := m.Update(editDocumentMsg{doc: doc, env: env})
	m = next.(model)

	if got, _ := m.evaluate("rate + base"); !got.Equal(lang.NewInt(13)) {
		t.Errorf("rate + base after edit = %v, want 13", got)
	}

	if m.env.Bound("scale") {
		t.Error("scale still bound after edit")
	}

	next, _ = m.Update(editDeclinedMsg{})
	if !next.(model).quitting {
		t.Error("declined edit did not quit")
	}
}
