package lang

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Keywords and operator symbols recognized by the grammar.
const (
	keywordTrue  = "True"
	keywordFalse = "False"
	keywordEq    = "eq"
	keywordAnd   = "and"
	keywordOr    = "or"
)

// Operator symbols in the order they are tried at each precedence level.
// Longer symbols precede their prefixes.
var (
	logicalOps    = []string{keywordAnd, keywordOr}
	additiveOps   = []string{"+", "-"}
	relationalOps = []string{">=", "<=", ">", "<"}
	termOps       = []string{"*", "/", "%"}
	exponentOps   = []string{"^"}
	equalityOps   = []string{"==", keywordEq}
)

// Expected-token descriptions reported by syntax errors.
var (
	expectAtom = []string{
		"identifier", "number", "string", "True", "False", "'('", "'['",
	}
	expectOperator = []string{"operator", "end of input"}
)

// DefaultMaxDepth is the default limit on nested groups, lists, calls and
// exponent chains.
const DefaultMaxDepth = 256

// Position identifies a location in the source expression.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based
	Column int // 1-based, in runes
}

// LexemeKind classifies an entry of the flat concrete token sequence.
type LexemeKind int

const (
	LexIdent    LexemeKind = iota // identifier or callee name
	LexBool                       // True or False
	LexInt                        // integer literal
	LexFloat                      // decimal literal
	LexString                     // quoted string literal
	LexOperator                   // binary operator symbol or keyword
	LexPunct                      // ( ) [ ] ,
)

// String returns a string representation of the lexeme kind.
func (k LexemeKind) String() string {
	switch k {
	case LexIdent:
		return "Ident"

	case LexBool:
		return "Bool"

	case LexInt:
		return "Int"

	case LexFloat:
		return "Float"

	case LexString:
		return "String"

	case LexOperator:
		return "Operator"

	case LexPunct:
		return "Punct"

	default:
		return "Unknown"
	}
}

// Lexeme is one element of the flat concrete token sequence, in source order.
type Lexeme struct {
	Kind LexemeKind
	Text string // source text, including quotes for strings
	Pos  Position
}

// parser holds the parser state. Each call to [Compile] creates its own
// parser; the postfix buffer and lexeme sequence it builds are never shared.
type parser struct {
	input    []byte
	pos      int
	line     int
	col      int
	depth    int
	maxDepth int

	postfix []Token
	lexemes []Lexeme
}

func newParser(expr string, maxDepth int) *parser {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	return &parser{
		input:    []byte(expr),
		line:     1,
		col:      1,
		maxDepth: maxDepth,
	}
}

// parse matches the complete grammar: an expression followed by the end of
// input.
func (p *parser) parse() error {
	err := p.parseExpression()
	if err != nil {
		return err
	}

	p.skipSpace()

	if !p.eof() {
		return p.fail(expectOperator)
	}

	return nil
}

// Expression : Additive (("and" | "or") Additive)*.
func (p *parser) parseExpression() error {
	return p.parseBinary(p.parseAdditive, logicalOps)
}

// Additive : Relational (("+" | "-") Relational)*.
func (p *parser) parseAdditive() error {
	return p.parseBinary(p.parseRelational, additiveOps)
}

// Relational : Term ((">=" | "<=" | ">" | "<") Term)*.
func (p *parser) parseRelational() error {
	return p.parseBinary(p.parseTerm, relationalOps)
}

// Term : Factor (("*" | "/" | "%") Factor)*.
func (p *parser) parseTerm() error {
	return p.parseBinary(p.parseFactor, termOps)
}

// Factor : Equality ("^" Factor)?.
//
// The right operand is a complete Factor, so a chain of "^" associates to
// the right: the innermost operator is emitted first.
func (p *parser) parseFactor() error {
	err := p.enter()
	if err != nil {
		return err
	}
	defer p.leave()

	err = p.parseEquality()
	if err != nil {
		return err
	}

	p.skipSpace()

	op, ok := p.matchOperator(exponentOps)
	if !ok {
		return nil
	}

	err = p.parseFactor()
	if err != nil {
		return err
	}

	p.emit(OperatorToken(op))

	return nil
}

// Equality : Atom (("==" | "eq") Atom)*.
//
// Equality binds tighter than every arithmetic operator, including "^".
func (p *parser) parseEquality() error {
	return p.parseBinary(p.parseAtom, equalityOps)
}

// parseBinary matches operand (op operand)* and emits each operator after
// both of its operands, yielding a left-associative postfix encoding.
func (p *parser) parseBinary(operand func() error, ops []string) error {
	err := operand()
	if err != nil {
		return err
	}

	for {
		p.skipSpace()

		op, ok := p.matchOperator(ops)
		if !ok {
			return nil
		}

		err = operand()
		if err != nil {
			return err
		}

		p.emit(OperatorToken(op))
	}
}

// Atom : Call | List | "(" Expression ")" | Literal.
// Literal : Boolean | Decimal | Integer | Identifier | String.
func (p *parser) parseAtom() error {
	err := p.enter()
	if err != nil {
		return err
	}
	defer p.leave()

	p.skipSpace()

	ch := p.peek()

	switch {
	case isIdentStart(ch):
		return p.parseName()

	case ch == '[':
		return p.parseList()

	case ch == '(':
		return p.parseGroup()

	case isDigit(ch) || ((ch == '+' || ch == '-') && isDigit(p.peekAt(1))):
		return p.parseNumber()

	case ch == '\'':
		return p.parseString()

	default:
		return p.fail(expectAtom)
	}
}

// parseName matches a call, a boolean keyword, or an identifier, in that
// order of priority.
func (p *parser) parseName() error {
	pos := p.position()
	name := p.scanWord()

	// Look past whitespace for an argument list without consuming it.
	saved := p.position()

	p.skipSpace()

	if p.peek() == '(' {
		p.lex(LexIdent, name, pos)

		return p.parseCall(name)
	}

	p.seek(saved)

	switch name {
	case keywordTrue, keywordFalse:
		p.lex(LexBool, name, pos)
		p.emit(BoolToken(name == keywordTrue))

	default:
		p.lex(LexIdent, name, pos)
		p.emit(IdentToken(name))
	}

	return nil
}

// Call : identifier "(" [Expression ("," Expression)*] ")".
func (p *parser) parseCall(name string) error {
	p.punct('(')
	p.skipSpace()

	argc := 0

	if p.peek() == ')' {
		p.punct(')')
		p.emit(CallToken(name, argc))

		return nil
	}

	for {
		err := p.parseExpression()
		if err != nil {
			return err
		}

		argc++

		p.skipSpace()

		switch p.peek() {
		case ',':
			p.punct(',')

		case ')':
			p.punct(')')
			p.emit(CallToken(name, argc))

			return nil

		default:
			return p.fail([]string{"','", "')'"}, expectOperator[0])
		}
	}
}

// List : "[" [Atom ("," Atom)*] "]".
func (p *parser) parseList() error {
	p.punct('[')
	p.skipSpace()

	n := 0

	if p.peek() == ']' {
		p.punct(']')
		p.emit(ListToken(n))

		return nil
	}

	for {
		err := p.parseAtom()
		if err != nil {
			return err
		}

		n++

		p.skipSpace()

		switch p.peek() {
		case ',':
			p.punct(',')

		case ']':
			p.punct(']')
			p.emit(ListToken(n))

			return nil

		default:
			return p.fail([]string{"','", "']'"})
		}
	}
}

// Group : "(" Expression ")".
func (p *parser) parseGroup() error {
	p.punct('(')

	err := p.parseExpression()
	if err != nil {
		return err
	}

	p.skipSpace()

	if p.peek() != ')' {
		return p.fail([]string{"')'"}, expectOperator[0])
	}

	p.punct(')')

	return nil
}

// Integer : [+-] digit+.
// Decimal : [+-] digit+ "." digit*.
func (p *parser) parseNumber() error {
	pos := p.position()
	start := p.pos

	if ch := p.peek(); ch == '+' || ch == '-' {
		p.advance()
	}

	for isDigit(p.peek()) {
		p.advance()
	}

	decimal := p.peek() == '.'
	if decimal {
		p.advance()

		for isDigit(p.peek()) {
			p.advance()
		}
	}

	text := string(p.input[start:p.pos])

	if decimal {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return p.failAt(pos, nil, ErrInvalidValue.Wrap(err).
				With(slog.String("literal", text)))
		}

		p.lex(LexFloat, text, pos)
		p.emit(FloatToken(f))

		return nil
	}

	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return p.failAt(pos, nil, ErrOverflow.
			With(slog.String("literal", text)))
	}

	p.lex(LexInt, text, pos)
	p.emit(IntToken(i))

	return nil
}

// String : "'" (char | "\'" | "\\")* "'".
func (p *parser) parseString() error {
	pos := p.position()
	start := p.pos

	p.advance() // skip opening quote

	var buf strings.Builder

	for !p.eof() {
		if p.invalidRune() {
			return p.failAt(p.position(), nil, ErrInvalidUTF8)
		}

		ch := p.peek()

		switch ch {
		case '\\':
			p.advance() // skip backslash

			if p.eof() {
				return p.fail([]string{"\"'\""})
			}

			if p.invalidRune() {
				return p.failAt(p.position(), nil, ErrInvalidUTF8)
			}

			buf.WriteRune(p.peek())
			p.advance()

		case '\'':
			p.advance() // skip closing quote

			p.lex(LexString, string(p.input[start:p.pos]), pos)
			p.emit(StringToken(buf.String()))

			return nil

		case '\n', '\r':
			return p.fail([]string{"\"'\""})

		default:
			buf.WriteRune(ch)
			p.advance()
		}
	}

	return p.fail([]string{"\"'\""})
}

// matchOperator consumes the first of ops found at the current position.
// Keyword operators must not be followed by an identifier character.
func (p *parser) matchOperator(ops []string) (string, bool) {
	rest := p.input[p.pos:]

	for _, op := range ops {
		if len(rest) < len(op) || string(rest[:len(op)]) != op {
			continue
		}

		if isIdentStart(rune(op[0])) && isIdentContinue(p.peekAt(len(op))) {
			continue
		}

		pos := p.position()

		for range op {
			p.advance()
		}

		p.lex(LexOperator, op, pos)

		return op, true
	}

	return "", false
}

// enter descends one nesting level.
func (p *parser) enter() error {
	if p.depth >= p.maxDepth {
		return p.failAt(p.position(), nil, ErrMaxDepthExceeded.
			With(slog.Int("max_depth", p.maxDepth)))
	}

	p.depth++

	return nil
}

func (p *parser) leave() { p.depth-- }

// emit appends a token to the postfix buffer.
func (p *parser) emit(t Token) { p.postfix = append(p.postfix, t) }

// lex appends a lexeme to the flat token sequence.
func (p *parser) lex(kind LexemeKind, text string, pos Position) {
	p.lexemes = append(p.lexemes, Lexeme{Kind: kind, Text: text, Pos: pos})
}

// punct consumes a punctuation rune known to be at the current position.
func (p *parser) punct(ch rune) {
	p.lex(LexPunct, string(ch), p.position())
	p.advance()
}

// fail returns a syntax error at the current position.
func (p *parser) fail(expected []string, more ...string) *SyntaxError {
	return p.failAt(p.position(), slices.Concat(expected, more), nil)
}

// failAt returns a syntax error at pos.
func (p *parser) failAt(pos Position, expected []string, cause error) *SyntaxError {
	expr := string(p.input)

	// Recover the text of the failing line.
	lineStart := strings.LastIndexByte(expr[:pos.Offset], '\n') + 1

	lineEnd := strings.IndexByte(expr[pos.Offset:], '\n')
	if lineEnd < 0 {
		lineEnd = len(expr)
	} else {
		lineEnd += pos.Offset
	}

	return &SyntaxError{
		Expr:       expr,
		Line:       expr[lineStart:lineEnd],
		LineNumber: pos.Line,
		Column:     pos.Column,
		Expected:   expected,
		cause:      cause,
	}
}

// seek moves the cursor back to a previously saved position.
func (p *parser) seek(pos Position) {
	p.pos = pos.Offset
	p.line = pos.Line
	p.col = pos.Column
}

// Helper methods

func (p *parser) scanWord() string {
	start := p.pos

	for !p.eof() && isIdentContinue(p.peek()) {
		p.advance()
	}

	return string(p.input[start:p.pos])
}

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

// invalidRune reports whether the input at the current position is not a
// valid UTF-8 encoding.
func (p *parser) invalidRune() bool {
	r, size := utf8.DecodeRune(p.input[p.pos:])

	return r == utf8.RuneError && size <= 1 && !p.eof()
}

// peekAt returns the byte n positions ahead as a rune, or 0 past the end.
// Only used to inspect ASCII lookahead.
func (p *parser) peekAt(n int) rune {
	if p.pos+n >= len(p.input) {
		return 0
	}

	return rune(p.input[p.pos+n])
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRune(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{
		Offset: p.pos,
		Line:   p.line,
		Column: p.col,
	}
}

func (p *parser) skipSpace() {
	for !p.eof() && isSpace(p.peek()) {
		p.advance()
	}
}

// Character classification

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentContinue(r rune) bool {
	return isIdentStart(r) || isDigit(r) || r == '_'
}

// IsIdentifier reports whether name can be referenced from a formula: a
// letter followed by letters, digits or underscores, and not a keyword.
func IsIdentifier(name string) bool {
	switch name {
	case "", keywordTrue, keywordFalse, keywordEq, keywordAnd, keywordOr:
		return false
	}

	for i, r := range name {
		if i == 0 && !isIdentStart(r) || !isIdentContinue(r) {
			return false
		}
	}

	return true
}
