package compiler

import (
	"github.com/deepnoodle-ai/lox/internal/token"
	"github.com/deepnoodle-ai/lox/op"
)

// local is a variable declared inside a block. Its index in Compiler.locals
// is its stack slot.
type local struct {
	name string
	// depth is the scope depth of the declaring block, or -1 while the
	// variable's initializer is being compiled.
	depth int
}

func (c *Compiler) beginScope() {
	c.scopeDepth++
}

// endScope discards the locals declared in the innermost block.
func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.emitOp(op.Pop)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *Compiler) addLocal(name token.Token) {
	if len(c.locals) == MaxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.locals = append(c.locals, local{name: name.Literal, depth: -1})
}

// declareVariable records the variable just consumed as a local if we are
// inside a block. Globals need no declaration.
func (c *Compiler) declareVariable() {
	if c.scopeDepth == 0 {
		return
	}
	name := c.previous
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if l.name == name.Literal {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

// resolveLocal returns the stack slot of the named local, or -1 if the name
// refers to a global.
func (c *Compiler) resolveLocal(name token.Token) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name.Literal {
			if c.locals[i].depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (c *Compiler) markInitialized() {
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}
