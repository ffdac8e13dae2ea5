package compiler

import (
	"errors"
	"strconv"

	"github.com/deepnoodle-ai/lox/internal/token"
	"github.com/deepnoodle-ai/lox/op"
	"github.com/deepnoodle-ai/lox/value"
)

func (c *Compiler) expression() {
	c.parsePrecedence(ASSIGNMENT)
}

// parsePrecedence compiles an expression whose operators all bind at least
// as tightly as the given precedence.
func (c *Compiler) parsePrecedence(precedence int) {
	c.advance()
	prefix := c.prefixFns[c.previous.Type]
	if prefix == nil {
		c.error("Expect expression.")
		return
	}
	canAssign := precedence <= ASSIGNMENT
	prefix(canAssign)

	for precedence <= precedences[c.current.Type] {
		c.advance()
		c.infixFns[c.previous.Type](canAssign)
	}
	if canAssign && c.match(token.ASSIGN) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func (c *Compiler) number(canAssign bool) {
	n, err := strconv.ParseFloat(c.previous.Literal, 64)
	// Out of range literals become +Inf.
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(value.Number(n))
}

func (c *Compiler) str(canAssign bool) {
	lit := c.previous.Literal
	c.emitConstant(value.String(lit[1 : len(lit)-1]))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.previous.Type {
	case token.FALSE:
		c.emitOp(op.False)
	case token.NIL:
		c.emitOp(op.Nil)
	case token.TRUE:
		c.emitOp(op.True)
	}
}

func (c *Compiler) unary(canAssign bool) {
	operator := c.previous
	c.parsePrecedence(UNARY)
	switch operator.Type {
	case token.BANG:
		c.emitOpAt(op.Not, operator.Line)
	case token.MINUS:
		c.emitOpAt(op.Negate, operator.Line)
	}
}

func (c *Compiler) binary(canAssign bool) {
	operator := c.previous
	c.parsePrecedence(precedences[operator.Type] + 1)
	line := operator.Line
	switch operator.Type {
	case token.NOT_EQ:
		c.emitOpAt(op.Equal, line)
		c.emitOpAt(op.Not, line)
	case token.EQ:
		c.emitOpAt(op.Equal, line)
	case token.GT:
		c.emitOpAt(op.Greater, line)
	case token.GT_EQUALS:
		c.emitOpAt(op.Less, line)
		c.emitOpAt(op.Not, line)
	case token.LT:
		c.emitOpAt(op.Less, line)
	case token.LT_EQUALS:
		c.emitOpAt(op.Greater, line)
		c.emitOpAt(op.Not, line)
	case token.PLUS:
		c.emitOpAt(op.Add, line)
	case token.MINUS:
		c.emitOpAt(op.Subtract, line)
	case token.ASTERISK:
		c.emitOpAt(op.Multiply, line)
	case token.SLASH:
		c.emitOpAt(op.Divide, line)
	}
}

// and leaves the left operand on the stack when it is falsey, otherwise
// discards it and evaluates the right operand.
func (c *Compiler) and(canAssign bool) {
	endJump := c.emitJump(op.JumpIfFalse)
	c.emitOp(op.Pop)
	c.parsePrecedence(AND)
	c.patchJump(endJump)
}

// or leaves the left operand on the stack when it is truthy, otherwise
// discards it and evaluates the right operand.
func (c *Compiler) or(canAssign bool) {
	elseJump := c.emitJump(op.JumpIfFalse)
	endJump := c.emitJump(op.Jump)
	c.patchJump(elseJump)
	c.emitOp(op.Pop)
	c.parsePrecedence(OR)
	c.patchJump(endJump)
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp op.Code
	var arg byte
	if slot := c.resolveLocal(name); slot != -1 {
		getOp, setOp, arg = op.GetLocal, op.SetLocal, byte(slot)
	} else {
		getOp, setOp, arg = op.GetGlobal, op.SetGlobal, c.identifierConstant(name)
	}
	if canAssign && c.match(token.ASSIGN) {
		c.expression()
		c.emitOperand(setOp, arg)
	} else {
		c.emitOperand(getOp, arg)
	}
}

// identifierConstant returns the constant pool index of a global's name,
// adding it on first use.
func (c *Compiler) identifierConstant(name token.Token) byte {
	if index, ok := c.names[name.Literal]; ok {
		return index
	}
	index := c.makeConstant(value.String(name.Literal))
	if !c.panicMode {
		c.names[name.Literal] = index
	}
	return index
}
