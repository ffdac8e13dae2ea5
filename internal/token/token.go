// Package token defines language keywords and tokens used when lexing source code.
package token

import "fmt"

// Type identifies the kind of a token. The set of types is closed.
type Type uint8

// Token represents one token lexed from the input source code. The Literal is
// a substring of the source, except for ILLEGAL tokens where it holds the
// diagnostic message.
type Token struct {
	Type    Type
	Literal string
	Line    int // 1-indexed line of the token's first character
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q (line %d)", t.Type, t.Literal, t.Line)
}

// Token types
const (
	// Single-character tokens
	LPAREN Type = iota
	RPAREN
	LBRACE
	RBRACE
	COMMA
	PERIOD
	MINUS
	PLUS
	SEMICOLON
	SLASH
	ASTERISK

	// One or two character tokens
	BANG
	NOT_EQ
	ASSIGN
	EQ
	GT
	GT_EQUALS
	LT
	LT_EQUALS

	// Literals
	IDENT
	STRING
	NUMBER

	// Keywords
	AND
	CLASS
	ELSE
	FALSE
	FOR
	FUN
	IF
	NIL
	OR
	PRINT
	RETURN
	SUPER
	THIS
	TRUE
	VAR
	WHILE

	ILLEGAL
	EOF

	typeCount
)

// Count is the number of token types. Tables indexed by Type use it as their
// length.
const Count = int(typeCount)

var names = [...]string{
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	COMMA:     ",",
	PERIOD:    ".",
	MINUS:     "-",
	PLUS:      "+",
	SEMICOLON: ";",
	SLASH:     "/",
	ASTERISK:  "*",
	BANG:      "!",
	NOT_EQ:    "!=",
	ASSIGN:    "=",
	EQ:        "==",
	GT:        ">",
	GT_EQUALS: ">=",
	LT:        "<",
	LT_EQUALS: "<=",
	IDENT:     "IDENT",
	STRING:    "STRING",
	NUMBER:    "NUMBER",
	AND:       "and",
	CLASS:     "class",
	ELSE:      "else",
	FALSE:     "false",
	FOR:       "for",
	FUN:       "fun",
	IF:        "if",
	NIL:       "nil",
	OR:        "or",
	PRINT:     "print",
	RETURN:    "return",
	SUPER:     "super",
	THIS:      "this",
	TRUE:      "true",
	VAR:       "var",
	WHILE:     "while",
	ILLEGAL:   "ILLEGAL",
	EOF:       "EOF",
}

// String returns the source spelling for operators and keywords, or an upper
// case name for literal and marker types.
func (t Type) String() string {
	if int(t) < len(names) {
		return names[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Reserved keywords
var keywords = map[string]Type{
	"and":    AND,
	"class":  CLASS,
	"else":   ELSE,
	"false":  FALSE,
	"for":    FOR,
	"fun":    FUN,
	"if":     IF,
	"nil":    NIL,
	"or":     OR,
	"print":  PRINT,
	"return": RETURN,
	"super":  SUPER,
	"this":   THIS,
	"true":   TRUE,
	"var":    VAR,
	"while":  WHILE,
}

// LookupIdentifier used to determinate whether identifier is keyword nor not
func LookupIdentifier(identifier string) Type {
	if tok, ok := keywords[identifier]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether the type is one of the reserved keywords.
func (t Type) IsKeyword() bool {
	return t >= AND && t <= WHILE
}
