package dis

import (
	"fmt"
	"io"

	"github.com/deepnoodle-ai/lox/internal/lexer"
	"github.com/deepnoodle-ai/lox/internal/token"
)

// Tokens scans the source and writes one line per token: the line number
// (or "|" when unchanged), the numeric token type and the lexeme. Error
// tokens show their message in place of a lexeme.
func Tokens(w io.Writer, source string) {
	l := lexer.New(source)
	line := -1
	for {
		tok := l.Next()
		if tok.Line != line {
			fmt.Fprint(w, colorLine.Apply(fmt.Sprintf("%4d ", tok.Line)))
			line = tok.Line
		} else {
			fmt.Fprint(w, colorLine.Apply("   | "))
		}
		text := tok.Literal
		if tok.Type == token.ILLEGAL {
			text = colorError.Apply(text)
		}
		fmt.Fprintf(w, "%2d '%s'\n", tok.Type, text)
		if tok.Type == token.EOF {
			return
		}
	}
}
