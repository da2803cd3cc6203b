package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/yapp/binding"
	"github.com/ardnew/yapp/lang"
	"github.com/ardnew/yapp/log"
)

// editDocumentMsg is sent when document editing completes successfully.
type editDocumentMsg struct {
	doc binding.Document
	env lang.Env
}

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a load
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-load error.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

// previewWidth is the widest value preview shown by the list command.
const previewWidth = 40

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help              Print this cruft
  list              List bound names
  set NAME=LITERAL  Bind a name to a formula literal
  unset NAME        Remove a binding
  strict [on|off]   Toggle reporting of syntax errors and missing variables
  edit              Edit the environment document in $EDITOR
  clear             Clear screen
  quit              Exit REPL

Usage:
  Type a formula to evaluate it
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// formatCommand formats the command echo line with prompt and input styled.
func formatCommand(input string) string {
	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

// formatCtrlCommand formats the control command echo line with prompt and input
// styled.
func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// Config configures a REPL session.
type Config struct {
	// Document is the environment document, editable with the edit command.
	Document binding.Document
	// Vars overlay the bindings of Document.
	Vars lang.Env
	// CacheDir holds the history file. Empty keeps history in memory.
	CacheDir string
	// Strict reports syntax errors and missing variables instead of
	// printing Undefined.
	Strict bool
	// Options are passed to every evaluation.
	Options []lang.Option
	Logger  log.Logger
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	doc          binding.Document
	docEnv       lang.Env      // bindings of doc
	vars         lang.Env      // bindings overlaying docEnv
	env          lang.Env      // docEnv merged with vars
	cache        *lang.Cache   // compiled formulas
	opts         []lang.Option // evaluation options
	strict       bool
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string      // backing candidate list
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
}

// Run starts an interactive session evaluating formulas against the
// environment described by cfg.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg.Logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cfg.CacheDir),
		slog.Int("var_count", len(cfg.Document.Vars)),
		slog.Int("func_count", len(cfg.Document.Funcs)),
	)

	var historyPath string
	if cfg.CacheDir != "" {
		historyPath = filepath.Join(cfg.CacheDir, baseHistory)
	}

	history := NewHistory(historyPath)

	err = history.Load()
	if err != nil {
		cfg.Logger.WarnContext(ctx, "could not load history",
			slog.String("path", historyPath),
			slog.Any("error", err),
		)
	}

	cfg.Logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	m, err := newModel(ctx, cfg, history)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(ctx context.Context, cfg Config, history *History) (model, error) {
	docEnv, err := cfg.Document.Env(ctx, binding.WithLogger(cfg.Logger))
	if err != nil {
		return model{}, err
	}

	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	m := model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		doc:        cfg.Document,
		docEnv:     docEnv,
		vars:       maps.Clone(cfg.Vars),
		cache:      new(lang.Cache),
		opts:       slices.Clone(cfg.Options),
		strict:     cfg.Strict,
		logger:     cfg.Logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
	m.rebind()

	return m, nil
}

// rebind recomputes the merged environment.
func (m *model) rebind() {
	m.env = binding.Merge(m.docEnv, m.vars)
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editDocumentMsg:
		m.doc, m.docEnv = msg.doc, msg.env
		m.rebind()
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl edit complete",
			slog.Int("binding_count", len(m.env)),
		)

		return m, tea.Println(resultStyle.Render("✔ environment updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("🗴 edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("🗴 error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	// Input line.
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hintView())
	b.WriteString("\n")

	return b.String()
}

// hintView renders the line below the input: the history position, a usage
// hint, a signature hint or the completion bar.
func (m model) hintView() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		pos := m.historyIdx + 1 // 1-based for display

		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(pos)),
			m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeEval {
			return hintStyle.Render("Type a formula or press Esc for commands")
		}

		return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") +
			" (press Esc to return)")
	}

	if len(m.matches) == 0 && m.mode == modeEval {
		call := detectFunctionCall(input, m.input.Position())
		if call.inCall {
			signature, params := getSignature(m.doc, m.env, call.name)

			return renderSignatureHint(signature, params, call.argIndex)
		}
	}

	isFunc := m.env.IsFunc
	if m.mode == modeCtrl {
		isFunc = nil
	}

	return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width, isFunc)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycleCandidates(1), nil

	case tea.KeyShiftTab:
		return m.cycleCandidates(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		return m.toggleMode(), nil

	case tea.KeyRunes, tea.KeySpace:
		// Space is a "breaking" key while tab-cycling.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// For any other key (backspace, delete, arrows, etc.),
	// update input and recompute matches without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycleCandidates selects the next (step 1) or previous (step -1) candidate
// and substitutes it for the current word. A sole candidate is completed
// and confirmed immediately.
func (m model) cycleCandidates(step int) model {
	if len(m.matches) == 0 {
		return m
	}

	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newInput := input[:m.wordStart] + replacement + input[m.wordEnd:]
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(newInput)
	m.input.SetCursor(newCursor)

	// Update word boundaries for the replaced text.
	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also auto-confirms the completion when exactly
// one candidate remains and the typed word already equals that candidate.
// autoConfirm should be false for deletions and cursor navigation so that
// the user can freely edit without unexpected completions.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	candidate := m.matches[0].Str
	word := m.input.Value()[m.wordStart:m.wordEnd]

	if word == candidate {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	// Reset both mode inputs after submission
	m.evalText = ""
	m.evalCursor = 0
	m.ctrlText = ""
	m.ctrlCursor = 0
	m.input.SetValue("")
	m.matches = nil

	err := m.history.Add(input, m.mode)
	if err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl command",
			slog.String("input", input),
		)

		return m.executeCommand(input)
	}

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl eval",
		slog.String("input", input),
	)

	echoCmd := tea.Println(formatCommand(input))

	result, err := m.evaluate(input)
	if err != nil {
		return m, tea.Sequence(echoCmd, tea.Println(formatError(err)))
	}

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl eval result",
		slog.String("result_type", result.Type().String()),
	)

	return m, tea.Sequence(
		echoCmd,
		tea.Println(resultStyle.Render(lang.FormatValue(result))),
	)
}

// evaluate parses and evaluates input against the session environment.
func (m model) evaluate(input string) (lang.Value, error) {
	opts := append(slices.Clone(m.opts), lang.WithFailSilently(!m.strict))

	return m.cache.Parse(m.ctxFunc(), input, m.env, opts...)
}

// formatError renders err, with the failing line of a syntax error.
func formatError(err error) string {
	var syntax *lang.SyntaxError
	if errors.As(err, &syntax) {
		return errorStyle.Render("error: "+err.Error()) + "\n" +
			hintStyle.Render(strings.TrimRight(syntax.Snippet(), "\n"))
	}

	return errorStyle.Render("error: " + err.Error())
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	echoCmd := tea.Println(formatCtrlCommand(input))

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", cmd),
		slog.String("arg", arg),
	)

	var (
		out string
		err error
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoCmd, tea.Quit)

	case "h", "help":
		out = helpMessage()

	case "l", "list":
		out = m.listBindings()

	case "s", "set":
		m, err = m.set(arg)

	case "u", "unset":
		m, err = m.unset(arg)

	case "strict":
		m, err = m.setStrict(arg)
		out = hintStyle.Render("strict " + onOff(m.strict))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echoCmd, m.edit())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + cmd + " (try 'help')"),
		)
	}

	switch {
	case err != nil:
		return m, tea.Sequence(echoCmd, tea.Println(formatError(err)))

	case out != "":
		return m, tea.Sequence(echoCmd, tea.Println(out))

	default:
		return m, echoCmd
	}
}

// set binds a name=literal assignment in the overlay.
func (m model) set(arg string) (model, error) {
	if arg == "" {
		return m, ErrMissingOperand
	}

	name, v, err := binding.ParseVar(m.ctxFunc(), arg)
	if err != nil {
		return m, err
	}

	m.vars = maps.Clone(m.vars)
	if m.vars == nil {
		m.vars = make(lang.Env)
	}

	m.vars[name] = v
	m.rebind()

	return m, nil
}

// unset removes name from the overlay, or from the document when the
// overlay does not bind it.
func (m model) unset(name string) (model, error) {
	if name == "" {
		return m, ErrMissingOperand
	}

	if _, ok := m.vars[name]; ok {
		m.vars = maps.Clone(m.vars)
		delete(m.vars, name)
		m.rebind()

		return m, nil
	}

	if _, ok := m.docEnv[name]; !ok {
		return m, fmt.Errorf("%w: %s", ErrUnknownName, name)
	}

	doc := binding.Document{
		Vars:  maps.Clone(m.doc.Vars),
		Funcs: maps.Clone(m.doc.Funcs),
	}
	delete(doc.Vars, name)
	delete(doc.Funcs, name)

	docEnv, err := doc.Env(m.ctxFunc(), binding.WithLogger(m.logger))
	if err != nil {
		// A func body may refer to the removed var.
		return m, err
	}

	m.doc, m.docEnv = doc, docEnv
	m.rebind()

	return m, nil
}

// setStrict sets the fault policy from arg, or toggles it when arg is empty.
func (m model) setStrict(arg string) (model, error) {
	switch strings.ToLower(arg) {
	case "":
		m.strict = !m.strict

	case "on", "true", "1":
		m.strict = true

	case "off", "false", "0":
		m.strict = false

	default:
		return m, fmt.Errorf("strict: invalid argument %q", arg)
	}

	return m, nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}

	return "off"
}

func (m model) edit() tea.Cmd {
	cmd := &editDocumentCommand{
		doc:     m.doc,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		if !cmd.edited {
			return editCancelledMsg{}
		}

		return editDocumentMsg{doc: cmd.newDoc, env: cmd.newEnv}
	})
}

// listBindings renders every name bound in the session, excluding the
// built-ins, with a preview of its value or signature.
func (m model) listBindings() string {
	var b strings.Builder

	for _, name := range slices.Sorted(maps.Keys(m.env)) {
		var preview string

		if m.env.IsFunc(name) {
			preview, _ = getSignature(m.doc, m.env, name)
		} else {
			preview = lang.FormatValue(m.env[name])
			if len(preview) > previewWidth {
				preview = preview[:previewWidth-3] + "..."
			}
		}

		if _, ok := m.vars[name]; ok {
			preview += " (set)"
		}

		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(preview))
	}

	if b.Len() == 0 {
		return hintStyle.Render("  no bindings")
	}

	return strings.TrimRight(b.String(), "\n")
}

// historyStep moves through history by step entries. When sameMode is set,
// only entries of the current mode are visited; otherwise the mode follows
// the entry. Stepping past the newest entry clears the input.
func (m model) historyStep(step int, sameMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.GetEntry(i)
		if err != nil {
			break
		}

		if sameMode && entry.Mode != m.mode {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// toggleMode switches between eval and control modes, preserving input state.
func (m model) toggleMode() model {
	if m.mode == modeEval {
		return m.switchToMode(modeCtrl)
	}

	return m.switchToMode(modeEval)
}

// switchToMode switches to the specified mode, preserving input state.
func (m model) switchToMode(mode inputMode) model {
	// Save current mode's input
	if m.mode == modeEval {
		m.evalText = m.input.Value()
		m.evalCursor = m.input.Position()
	} else {
		m.ctrlText = m.input.Value()
		m.ctrlCursor = m.input.Position()
	}

	m.mode = mode
	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}
