// Package lexer converts Lox source text into a stream of tokens.
//
// A Lexer holds a single cursor over an immutable source string. Tokens are
// produced lazily, one per call to Next, and their literals are substrings of
// the source. A Lexer must not be shared between goroutines.
package lexer

import "github.com/deepnoodle-ai/lox/internal/token"

const (
	msgUnterminatedString = "Unterminated string."
	msgUnexpectedChar     = "Unexpected character."
)

// Lexer scans source text one token at a time.
type Lexer struct {
	input   string
	start   int // offset of the first byte of the token being scanned
	current int // offset of the next byte to consume
	line    int
}

// New returns a Lexer positioned at the start of input, on line 1.
func New(input string) *Lexer {
	return &Lexer{input: input, line: 1}
}

// Line returns the line the cursor is currently on.
func (l *Lexer) Line() int {
	return l.line
}

// Next scans and returns the next token. Once the input is exhausted every
// call returns an EOF token.
func (l *Lexer) Next() token.Token {
	l.skipWhitespace()
	l.start = l.current
	if l.atEnd() {
		return l.makeToken(token.EOF)
	}
	c := l.advance()
	switch {
	case isAlpha(c):
		return l.readIdentifier()
	case isDigit(c):
		return l.readNumber()
	}
	switch c {
	case '(':
		return l.makeToken(token.LPAREN)
	case ')':
		return l.makeToken(token.RPAREN)
	case '{':
		return l.makeToken(token.LBRACE)
	case '}':
		return l.makeToken(token.RBRACE)
	case ';':
		return l.makeToken(token.SEMICOLON)
	case ',':
		return l.makeToken(token.COMMA)
	case '.':
		return l.makeToken(token.PERIOD)
	case '-':
		return l.makeToken(token.MINUS)
	case '+':
		return l.makeToken(token.PLUS)
	case '/':
		return l.makeToken(token.SLASH)
	case '*':
		return l.makeToken(token.ASTERISK)
	case '!':
		return l.makeTwoCharToken('=', token.NOT_EQ, token.BANG)
	case '=':
		return l.makeTwoCharToken('=', token.EQ, token.ASSIGN)
	case '<':
		return l.makeTwoCharToken('=', token.LT_EQUALS, token.LT)
	case '>':
		return l.makeTwoCharToken('=', token.GT_EQUALS, token.GT)
	case '"':
		return l.readString()
	}
	return l.errorToken(msgUnexpectedChar)
}

// Tokenize scans the whole input and returns every token, ending with EOF.
func Tokenize(input string) []token.Token {
	l := New(input)
	var tokens []token.Token
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

func (l *Lexer) atEnd() bool {
	return l.current >= len(l.input)
}

func (l *Lexer) advance() byte {
	c := l.input[l.current]
	l.current++
	return c
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.input[l.current]
}

func (l *Lexer) peekNext() byte {
	if l.current+1 >= len(l.input) {
		return 0
	}
	return l.input[l.current+1]
}

func (l *Lexer) match(expected byte) bool {
	if l.atEnd() || l.input[l.current] != expected {
		return false
	}
	l.current++
	return true
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() {
		switch l.peek() {
		case ' ', '\r', '\t':
			l.current++
		case '\n':
			l.line++
			l.current++
		case '/':
			switch l.peekNext() {
			case '/':
				for !l.atEnd() && l.peek() != '\n' {
					l.current++
				}
			case '*':
				l.skipBlockComment()
			default:
				return
			}
		default:
			return
		}
	}
}

// skipBlockComment consumes a /* ... */ comment. Comments do not nest and an
// unterminated comment runs to the end of the input.
func (l *Lexer) skipBlockComment() {
	l.current += 2
	for !l.atEnd() {
		if l.peek() == '*' && l.peekNext() == '/' {
			l.current += 2
			return
		}
		if l.advance() == '\n' {
			l.line++
		}
	}
}

func (l *Lexer) readIdentifier() token.Token {
	for isAlpha(l.peek()) || isDigit(l.peek()) {
		l.current++
	}
	return l.makeToken(token.LookupIdentifier(l.input[l.start:l.current]))
}

func (l *Lexer) readNumber() token.Token {
	for isDigit(l.peek()) {
		l.current++
	}
	// A fractional part needs at least one digit after the dot
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.current++
		for isDigit(l.peek()) {
			l.current++
		}
	}
	return l.makeToken(token.NUMBER)
}

func (l *Lexer) readString() token.Token {
	startLine := l.line
	for !l.atEnd() && l.peek() != '"' {
		if l.peek() == '\n' {
			l.line++
		}
		l.current++
	}
	if l.atEnd() {
		return token.Token{Type: token.ILLEGAL, Literal: msgUnterminatedString, Line: startLine}
	}
	l.current++ // closing quote
	return token.Token{Type: token.STRING, Literal: l.input[l.start:l.current], Line: startLine}
}

func (l *Lexer) makeTwoCharToken(next byte, two, one token.Type) token.Token {
	if l.match(next) {
		return l.makeToken(two)
	}
	return l.makeToken(one)
}

func (l *Lexer) makeToken(typ token.Type) token.Token {
	return token.Token{
		Type:    typ,
		Literal: l.input[l.start:l.current],
		Line:    l.line,
	}
}

func (l *Lexer) errorToken(message string) token.Token {
	return token.Token{Type: token.ILLEGAL, Literal: message, Line: l.line}
}

func isAlpha(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
