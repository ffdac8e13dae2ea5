package lox

import (
	"github.com/deepnoodle-ai/lox/value"
	"github.com/deepnoodle-ai/lox/vm"
)

// Session provides stateful execution for REPL and incremental evaluation.
// Unlike Eval, which creates a fresh VM on each call, a Session keeps one VM
// so that globals defined by earlier evaluations remain accessible.
type Session struct {
	machine *vm.VirtualMachine
	opts    []Option
}

// NewSession creates a Session. Options that configure the VM are applied
// once, when the session's VM is created.
func NewSession(opts ...Option) *Session {
	o := collectOptions(opts...)
	return &Session{
		machine: vm.New(o.vmOpts()...),
		opts:    opts,
	}
}

// Eval evaluates source code within this session.
func (s *Session) Eval(source string) (value.Value, error) {
	opts := append(append([]Option{}, s.opts...), WithVM(s.machine))
	return Eval(source, opts...)
}

// Globals returns a copy of the session's global variables.
func (s *Session) Globals() map[string]value.Value {
	return s.machine.Globals()
}

// Reset forgets all global variables.
func (s *Session) Reset() error {
	return s.machine.Reset()
}

// VM returns the session's virtual machine.
func (s *Session) VM() *vm.VirtualMachine {
	return s.machine
}
