package compiler

import (
	"github.com/deepnoodle-ai/lox/internal/token"
	"github.com/deepnoodle-ai/lox/op"
)

// declaration compiles one declaration or statement. topLevel is true only
// for statements directly in the program body.
func (c *Compiler) declaration(topLevel bool) {
	if c.match(token.VAR) {
		c.varDeclaration()
	} else {
		c.statement(topLevel)
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.match(token.ASSIGN) {
		c.expression()
	} else {
		c.emitOp(op.Nil)
	}
	c.consume(token.SEMICOLON, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

// parseVariable consumes a variable name and declares it. For globals it
// returns the constant index of the name.
func (c *Compiler) parseVariable(message string) byte {
	c.consume(token.IDENT, message)
	c.declareVariable()
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous)
}

func (c *Compiler) defineVariable(global byte) {
	if c.scopeDepth > 0 {
		if len(c.locals) > 0 {
			c.markInitialized()
		}
		return
	}
	c.emitOperand(op.DefineGlobal, global)
}

func (c *Compiler) statement(topLevel bool) {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement(topLevel)
	}
}

func (c *Compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration(false)
	}
	c.consume(token.RBRACE, "Expect '}' after block.")
}

func (c *Compiler) printStatement() {
	line := c.previous.Line
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after value.")
	c.emitOpAt(op.Print, line)
}

// expressionStatement discards the value of the expression, unless this is
// the last statement of the program, in which case the value is left on the
// stack as the program's result and the semicolon is optional.
func (c *Compiler) expressionStatement(topLevel bool) {
	c.expression()
	if topLevel && c.check(token.EOF) {
		return
	}
	c.consume(token.SEMICOLON, "Expect ';' after expression.")
	if topLevel && c.check(token.EOF) {
		return
	}
	c.emitOp(op.Pop)
}

func (c *Compiler) returnStatement() {
	if c.match(token.SEMICOLON) {
		c.emitOp(op.Nil)
	} else {
		c.expression()
		c.consume(token.SEMICOLON, "Expect ';' after return value.")
	}
	c.emitOp(op.Return)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LPAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(op.JumpIfFalse)
	c.emitOp(op.Pop)
	c.statement(false)

	elseJump := c.emitJump(op.Jump)
	c.patchJump(thenJump)
	c.emitOp(op.Pop)

	if c.match(token.ELSE) {
		c.statement(false)
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := c.chunk.Len()
	c.consume(token.LPAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(op.JumpIfFalse)
	c.emitOp(op.Pop)
	c.statement(false)
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(op.Pop)
}

func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, "Expect '(' after 'for'.")
	switch {
	case c.match(token.SEMICOLON):
		// No initializer
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement(false)
	}

	loopStart := c.chunk.Len()
	exitJump := -1
	if !c.match(token.SEMICOLON) {
		c.expression()
		c.consume(token.SEMICOLON, "Expect ';' after loop condition.")
		exitJump = c.emitJump(op.JumpIfFalse)
		c.emitOp(op.Pop)
	}

	if !c.match(token.RPAREN) {
		bodyJump := c.emitJump(op.Jump)
		incrementStart := c.chunk.Len()
		c.expression()
		c.emitOp(op.Pop)
		c.consume(token.RPAREN, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement(false)
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(op.Pop)
	}
	c.endScope()
}
