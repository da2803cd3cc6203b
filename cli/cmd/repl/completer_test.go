package repl

import (
	"strings"
	"testing"

	"github.com/sahilm/fuzzy"
)

func TestWordBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_paren", "double(fo", 9, "fo", 7, 9},
		{"after_comma", "add(a, fo", 9, "fo", 7, 9},
		{"after_bracket", "[1, fo", 6, "fo", 4, 6},
		{"after_power", "x^fo", 4, "fo", 2, 4},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"between_operators", "a+b", 2, "b", 2, 3},
		{"underscore", "max_rate", 8, "max_rate", 0, 8},
		{"digits", "x1 + y2", 7, "y2", 5, 7},
		{"cursor_past_end", "ab", 10, "ab", 0, 2},
		{"hyphen_is_operator", "a-b", 3, "b", 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestInString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		offset int
		want   bool
	}{
		{"'abc", 2, true},
		{"'abc' + x", 8, false},
		{`"it's" + y`, 3, true},
		{`"it's" + y`, 9, false},
		{"x", 0, false},
	}

	for _, tt := range tests {
		if got := inString(tt.input, tt.offset); got != tt.want {
			t.Errorf("inString(%q, %d) = %v, want %v", tt.input, tt.offset, got, tt.want)
		}
	}
}

func TestComputeMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		mode  inputMode
		input string
		want  string // best match, or "" for none
	}{
		{"var_prefix", modeEval, "rat", "rate"},
		{"func_prefix", modeEval, "1 + sca", "scale"},
		{"builtin", modeEval, "no", "not"},
		{"empty_word", modeEval, "x + ", ""},
		{"number", modeEval, "12", ""},
		{"in_string", modeEval, "'rat", ""},
		{"command", modeCtrl, "ed", "edit"},
		{"command_argument", modeCtrl, "unset ra", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := testModel(t)
			m.mode = tt.mode
			m.input.SetValue(tt.input)
			m.input.SetCursor(len(tt.input))

			matches, _, _, _ := m.computeMatches()

			if tt.want == "" {
				if len(matches) != 0 {
					t.Errorf("computeMatches(%q) = %v, want none", tt.input, matches)
				}

				return
			}

			if len(matches) == 0 || matches[0].Str != tt.want {
				t.Errorf("computeMatches(%q) = %v, want %q first", tt.input, matches, tt.want)
			}
		})
	}
}

func TestRenderCandidateBar(t *testing.T) {
	t.Parallel()

	matches := fuzzy.Find("a", []string{"alpha", "beta", "gamma", "delta"})

	bar := renderCandidateBar(matches, -1, false, 200, func(s string) bool {
		return s == "beta"
	})

	for _, want := range []string{"a", "l", "p", "h", "(", ")"} {
		if !strings.Contains(bar, want) {
			t.Errorf("renderCandidateBar() = %q, missing %q", bar, want)
		}
	}

	narrow := renderCandidateBar(matches, -1, false, 12, nil)
	if !strings.Contains(narrow, "...") {
		t.Errorf("renderCandidateBar(width=12) = %q, want ellipsis", narrow)
	}

	if got := renderCandidateBar(nil, -1, false, 80, nil); got != "" {
		t.Errorf("renderCandidateBar(nil) = %q, want empty", got)
	}
}
