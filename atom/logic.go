package atom

import (
	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/status"
)

// logicGate latches a boolean per input port and recomputes a combining
// function whenever any line changes, per spec.md §4.4.5. A non-zero
// message value is true.
type logicGate struct {
	Ports
	fired
	noopFinalize

	state []bool
	combine func([]bool) bool
}

func newLogicGate(n int, combine func([]bool) bool) logicGate {
	return logicGate{Ports: NewPorts(n, 1), state: make([]bool, n), combine: combine}
}

func (m *logicGate) Initialize(Context) *status.Error { m.sigma = kernel.TimeInfinity; return nil }

func (m *logicGate) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	any := false
	for i := range m.In {
		if msg, ok := m.In[i].Highest(); ok {
			m.state[i] = msg.Value != 0
			any = true
		}
	}
	m.settle(any)
	return nil
}

func (m *logicGate) Lambda(Context) *status.Error {
	value := 0.0
	if m.combine(m.state) {
		value = 1
	}
	m.Out[0].Stage(kernel.Message{Value: value})
	return nil
}

func (m *logicGate) Observation(t, e kernel.Time) kernel.ObservationMessage {
	value := 0.0
	if m.combine(m.state) {
		value = 1
	}
	return kernel.ObservationMessage{Time: t, X: value, E: e}
}

func allTrue(s []bool) bool {
	for _, v := range s {
		if !v {
			return false
		}
	}
	return true
}

func anyTrue(s []bool) bool {
	for _, v := range s {
		if v {
			return true
		}
	}
	return false
}

// LogicalAnd2 emits 1 only while both inputs are non-zero.
type LogicalAnd2 struct{ logicGate }

func NewLogicalAnd2() *LogicalAnd2 { return &LogicalAnd2{logicGate: newLogicGate(2, allTrue)} }

// LogicalAnd3 is LogicalAnd2 over three inputs.
type LogicalAnd3 struct{ logicGate }

func NewLogicalAnd3() *LogicalAnd3 { return &LogicalAnd3{logicGate: newLogicGate(3, allTrue)} }

// LogicalOr2 emits 1 while either input is non-zero.
type LogicalOr2 struct{ logicGate }

func NewLogicalOr2() *LogicalOr2 { return &LogicalOr2{logicGate: newLogicGate(2, anyTrue)} }

// LogicalOr3 is LogicalOr2 over three inputs.
type LogicalOr3 struct{ logicGate }

func NewLogicalOr3() *LogicalOr3 { return &LogicalOr3{logicGate: newLogicGate(3, anyTrue)} }

// LogicalInvert emits the boolean complement of its single input.
type LogicalInvert struct{ logicGate }

func NewLogicalInvert() *LogicalInvert {
	return &LogicalInvert{logicGate: newLogicGate(1, func(s []bool) bool { return !s[0] })}
}
