package vm

import (
	"github.com/deepnoodle-ai/lox/bytecode"
	"github.com/deepnoodle-ai/lox/op"
	"github.com/deepnoodle-ai/lox/value"
)

// StepMode selects which instructions an observer is told about.
type StepMode uint8

const (
	// StepAll reports every instruction. The execution tracer uses it.
	StepAll StepMode = iota

	// StepNone reports nothing.
	StepNone

	// StepSampled reports every SampleInterval-th instruction.
	StepSampled

	// StepOnLine reports the first instruction of each new source line.
	StepOnLine
)

// ObserverConfig is read once, when the VM is created.
type ObserverConfig struct {
	StepMode StepMode

	// SampleInterval applies to StepSampled only. Values <= 0 mean 1.
	SampleInterval int
}

// NewObserverConfig returns a config for mode with a sample interval of 1000.
func NewObserverConfig(mode StepMode) ObserverConfig {
	return ObserverConfig{
		StepMode:       mode,
		SampleInterval: 1000,
	}
}

// NormalizeConfig clamps the sample interval to at least 1.
func NormalizeConfig(cfg ObserverConfig) ObserverConfig {
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 1
	}
	return cfg
}

// Observer watches a VM execute. OnStep runs on the VM's goroutine before
// the reported instruction executes.
type Observer interface {
	Config() ObserverConfig

	// OnStep returns false to stop the run with ErrHalted.
	OnStep(event StepEvent) bool
}

// StepEvent describes the instruction about to execute.
type StepEvent struct {
	Chunk      *bytecode.Chunk
	Offset     int
	Opcode     op.Code
	OpcodeName string
	Line       int

	// Stack is a snapshot of the operand stack, bottom first.
	Stack []value.Value
}

// NoOpObserver is an Observer that does nothing. Embed it to implement only
// the methods you need.
type NoOpObserver struct{}

// Config returns a config that observes every step.
func (NoOpObserver) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

// OnStep does nothing and continues execution.
func (NoOpObserver) OnStep(StepEvent) bool {
	return true
}

// ObserverFunc adapts a function to the Observer interface. It observes every
// step.
type ObserverFunc func(event StepEvent) bool

// Config returns a config that observes every step.
func (f ObserverFunc) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

// OnStep calls f.
func (f ObserverFunc) OnStep(event StepEvent) bool {
	return f(event)
}
