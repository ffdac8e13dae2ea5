package compiler

import "github.com/deepnoodle-ai/lox/internal/token"

// Precedence order for operators
const (
	NONE       int = iota
	ASSIGNMENT // =
	OR         // or
	AND        // and
	EQUALITY   // == !=
	COMPARISON // < > <= >=
	TERM       // + -
	FACTOR     // * /
	UNARY      // ! -
	CALL       // . ()
	PRIMARY
)

// Precedences for each token type. Tokens that never appear in infix
// position have precedence NONE.
var precedences = [token.Count]int{
	token.OR:        OR,
	token.AND:       AND,
	token.EQ:        EQUALITY,
	token.NOT_EQ:    EQUALITY,
	token.GT:        COMPARISON,
	token.GT_EQUALS: COMPARISON,
	token.LT:        COMPARISON,
	token.LT_EQUALS: COMPARISON,
	token.PLUS:      TERM,
	token.MINUS:     TERM,
	token.ASTERISK:  FACTOR,
	token.SLASH:     FACTOR,
}
