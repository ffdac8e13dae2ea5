// Package compiler compiles Lox source code into bytecode in a single pass.
//
// There is no syntax tree. The compiler pulls tokens from the lexer on demand
// and a Pratt parser emits instructions directly into a bytecode.Chunk as each
// construct is recognized.
//
// # Variables
//
// Variables declared at the top level are globals. They are stored by name in
// the virtual machine and accessed via DefineGlobal/GetGlobal/SetGlobal, with
// the name held in the constant pool. Variables declared inside a block are
// locals. A local occupies a fixed stack slot while its block is active and is
// accessed via GetLocal/SetLocal.
//
// # Script Result
//
// An expression statement that ends the program keeps its value on the stack
// and the final Return yields it. Its semicolon may be omitted, so "1 + 2" is
// a complete program that evaluates to 3. A top-level "return" statement ends
// the program early with the given value.
//
// # Errors
//
// After reporting an error the compiler enters panic mode. Further errors are
// suppressed until it resynchronizes at a statement boundary, after which
// compilation continues so that every independent error in the program is
// reported in one pass.
package compiler

import (
	"fmt"

	"github.com/deepnoodle-ai/lox/bytecode"
	"github.com/deepnoodle-ai/lox/errz"
	"github.com/deepnoodle-ai/lox/internal/lexer"
	"github.com/deepnoodle-ai/lox/internal/token"
	"github.com/deepnoodle-ai/lox/op"
	"github.com/deepnoodle-ai/lox/value"
	"github.com/hashicorp/go-multierror"
)

const (
	// MaxLocals is the maximum number of local variables in scope at once.
	MaxLocals = 256

	// MaxJump is the largest forward or backward jump distance in bytes.
	MaxJump = 0xffff

	// placeholder is written as a jump operand until the target is known.
	placeholder = 0xff

	// DefaultChunkName is used when no filename is given.
	DefaultChunkName = "script"
)

type parseFn func(canAssign bool)

// Compiler is used to compile Lox source code into a bytecode.Chunk.
type Compiler struct {
	// l is our lexer
	l *lexer.Lexer

	// previous is the token most recently consumed.
	previous token.Token

	// current is the next token to be consumed.
	current token.Token

	// The chunk being written.
	chunk *bytecode.Chunk

	// errors collected during compilation
	errors *multierror.Error

	// panicMode suppresses errors until the next statement boundary.
	panicMode bool

	// Local variables currently in scope, indexed by stack slot.
	locals []local

	// Block nesting depth. Zero is the top level.
	scopeDepth int

	// Constant pool indexes of global names already added.
	names map[string]byte

	// Pratt parsing rules, indexed by token type.
	prefixFns [token.Count]parseFn
	infixFns  [token.Count]parseFn

	// The filename of the input
	filename string
}

// Option is a configuration function for a Compiler.
type Option func(*Compiler)

// WithFilename sets the source filename. It is used as the chunk name.
func WithFilename(filename string) Option {
	return func(c *Compiler) {
		c.filename = filename
	}
}

// Compile compiles the given source code into a chunk. On failure the chunk
// is nil and the error is a *multierror.Error holding one *errz.CompileError
// per problem found.
func Compile(source string, options ...Option) (*bytecode.Chunk, error) {
	c := newCompiler(source, options...)
	c.advance()
	for !c.match(token.EOF) {
		c.declaration(true)
	}
	c.emitOp(op.Return)
	if err := c.errors.ErrorOrNil(); err != nil {
		return nil, err
	}
	return c.chunk, nil
}

func newCompiler(source string, options ...Option) *Compiler {
	c := &Compiler{
		l:     lexer.New(source),
		names: map[string]byte{},
	}
	for _, opt := range options {
		opt(c)
	}
	name := c.filename
	if name == "" {
		name = DefaultChunkName
	}
	c.chunk = bytecode.NewChunk(name)

	// Register prefix functions
	c.registerPrefix(token.LPAREN, c.grouping)
	c.registerPrefix(token.MINUS, c.unary)
	c.registerPrefix(token.BANG, c.unary)
	c.registerPrefix(token.IDENT, c.variable)
	c.registerPrefix(token.STRING, c.str)
	c.registerPrefix(token.NUMBER, c.number)
	c.registerPrefix(token.FALSE, c.literal)
	c.registerPrefix(token.NIL, c.literal)
	c.registerPrefix(token.TRUE, c.literal)

	// Register infix functions
	c.registerInfix(token.MINUS, c.binary)
	c.registerInfix(token.PLUS, c.binary)
	c.registerInfix(token.SLASH, c.binary)
	c.registerInfix(token.ASTERISK, c.binary)
	c.registerInfix(token.NOT_EQ, c.binary)
	c.registerInfix(token.EQ, c.binary)
	c.registerInfix(token.GT, c.binary)
	c.registerInfix(token.GT_EQUALS, c.binary)
	c.registerInfix(token.LT, c.binary)
	c.registerInfix(token.LT_EQUALS, c.binary)
	c.registerInfix(token.AND, c.and)
	c.registerInfix(token.OR, c.or)
	return c
}

func (c *Compiler) registerPrefix(tokenType token.Type, fn parseFn) {
	c.prefixFns[tokenType] = fn
}

func (c *Compiler) registerInfix(tokenType token.Type, fn parseFn) {
	c.infixFns[tokenType] = fn
}

// advance moves to the next token, reporting and skipping any error tokens
// produced by the lexer.
func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.l.Next()
		if c.current.Type != token.ILLEGAL {
			break
		}
		c.errorAtCurrent(c.current.Literal)
	}
}

func (c *Compiler) consume(tokenType token.Type, message string) {
	if c.current.Type == tokenType {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *Compiler) check(tokenType token.Type) bool {
	return c.current.Type == tokenType
}

func (c *Compiler) match(tokenType token.Type) bool {
	if !c.check(tokenType) {
		return false
	}
	c.advance()
	return true
}

// synchronize skips tokens until a likely statement boundary.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Type != token.EOF {
		if c.previous.Type == token.SEMICOLON {
			return
		}
		switch c.current.Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR,
			token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}

func (c *Compiler) error(message string) {
	c.errorAt(c.previous, message)
}

func (c *Compiler) errorAtCurrent(message string) {
	c.errorAt(c.current, message)
}

func (c *Compiler) errorAt(tok token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	var where string
	switch tok.Type {
	case token.EOF:
		where = " at end"
	case token.ILLEGAL:
	default:
		where = fmt.Sprintf(" at '%s'", tok.Literal)
	}
	c.errors = multierror.Append(c.errors, &errz.CompileError{
		Line:    tok.Line,
		Where:   where,
		Message: message,
	})
	c.errors.ErrorFormat = errz.ListFormat
}

func (c *Compiler) emitByte(b byte, line int) {
	c.chunk.Write(b, line)
}

func (c *Compiler) emitOp(code op.Code) {
	c.chunk.WriteOp(code, c.previous.Line)
}

func (c *Compiler) emitOpAt(code op.Code, line int) {
	c.chunk.WriteOp(code, line)
}

func (c *Compiler) emitOperand(code op.Code, operand byte) {
	c.chunk.WriteOp(code, c.previous.Line)
	c.chunk.Write(operand, c.previous.Line)
}

func (c *Compiler) makeConstant(v value.Value) byte {
	index, err := c.chunk.AddConstant(v)
	if err != nil {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(index)
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitOperand(op.Constant, c.makeConstant(v))
}

// emitJump writes a jump instruction with a placeholder offset and returns
// the position of the offset for patchJump.
func (c *Compiler) emitJump(code op.Code) int {
	c.emitOp(code)
	c.emitByte(placeholder, c.previous.Line)
	c.emitByte(placeholder, c.previous.Line)
	return c.chunk.Len() - 2
}

// patchJump points the jump whose offset is at the given position to the
// next instruction to be written.
func (c *Compiler) patchJump(offset int) {
	jump := c.chunk.Len() - offset - 2
	if jump > MaxJump {
		c.error("Too much code to jump over.")
	}
	c.chunk.Patch(offset, byte(jump>>8))
	c.chunk.Patch(offset+1, byte(jump))
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(op.Loop)
	offset := c.chunk.Len() - loopStart + 2
	if offset > MaxJump {
		c.error("Loop body too large.")
	}
	c.emitByte(byte(offset>>8), c.previous.Line)
	c.emitByte(byte(offset), c.previous.Line)
}
