package repl

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/yapp/binding"
	"github.com/ardnew/yapp/lang"
)

// builtinParams names the parameters of the built-in functions.
var builtinParams = map[string][]string{
	"not": {"x"},
	"eq":  {"a", "b"},
	"and": {"a", "b"},
	"or":  {"a", "b"},
	"in":  {"x", "list"},
}

// signatureHintStyle styles for parameter hints.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // callee name
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

// detectFunctionCall analyzes the input to determine if the cursor is inside
// a function call's parameter list. It returns the function name, current
// argument index, and whether we're inside a call.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	// Scan backward from cursor to find the unmatched opening paren.
	depth := 0
	open := -1

	for i := cursor; i > 0 && open < 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')', ']':
			depth++

		case '(', '[':
			if depth > 0 {
				depth--

				continue
			}

			if r == '[' {
				// Inside a list literal, not a call.
				return functionCall{}
			}

			open = i
		}
	}

	if open < 0 {
		return functionCall{}
	}

	name, _, _ := wordBounds(input, open)
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		return functionCall{}
	}

	// Count arguments by counting commas at depth 0 in the parameter list
	argIndex := 0
	depth = 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(', '[':
			depth++

		case ')', ']':
			depth--

		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

// getSignature returns the signature and parameter names of the function
// bound to name. Functions declared in doc use their declared parameter
// names; other callables are described by their arity. Returns an empty
// signature if name is not bound to a function.
func getSignature(
	doc binding.Document,
	env lang.Env,
	name string,
) (signature string, params []string) {
	v, ok := env.Lookup(name)
	if !ok || v.Callable() == nil {
		return "", nil
	}

	if fn, declared := doc.Funcs[name]; declared {
		params = fn.Params
	} else if _, bound := env[name]; !bound {
		params = builtinParams[name]
	}

	if params == nil {
		params = arityParams(v.Callable())
	}

	return formatSignature(name, params), params
}

// arityParams names the parameters of c positionally.
func arityParams(c *lang.Callable) []string {
	if c == nil {
		return nil
	}

	params := make([]string, 0, c.Arity+1)
	for i := range c.Arity {
		params = append(params, "arg"+strconv.Itoa(i+1))
	}

	if c.Variadic {
		params = append(params, "...rest")
	}

	return params
}

// formatSignature formats a function signature with parameter names.
func formatSignature(name string, params []string) string {
	return name + "(" + strings.Join(params, ", ") + ")"
}

// renderSignatureHint renders the function signature with the current
// parameter highlighted.
func renderSignatureHint(
	signature string,
	params []string,
	currentArgIdx int,
) string {
	if signature == "" {
		return ""
	}

	openParen := strings.Index(signature, "(")
	if openParen == -1 {
		return signatureStyle.Render(signature)
	}

	funcName := signature[:openParen]

	// If no parameters, just render the signature
	if len(params) == 0 {
		return signatureNameStyle.Render(funcName) +
			signatureStyle.Render("()")
	}

	// Build the signature with highlighted current parameter
	var b strings.Builder
	b.WriteString(signatureNameStyle.Render(funcName))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		variadic := strings.HasPrefix(param, "...")

		// For variadic parameters, highlight if we're at or beyond that index
		if (variadic && currentArgIdx >= i) || (!variadic && currentArgIdx == i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
