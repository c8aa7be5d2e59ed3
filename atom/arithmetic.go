package atom

import (
	"math"

	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/status"
)

// fired is shared by every pure-function atom in this file: it fires
// (sigma = 0) the instant any input delivers a message, then falls back to
// +∞ on the following internal transition, per spec.md §4.4.2's
// "setting sigma = 0 whenever at least one port delivered a message"
// pattern.
type fired struct {
	sigma kernel.Time
}

func (f *fired) Sigma() kernel.Time { return f.sigma }

// settle is called at the top of Transition: it returns true if any input
// carried a message this step (the atom should recompute and re-fire),
// false if this is the trailing internal call that resets sigma to +∞.
func (f *fired) settle(anyInput bool) bool {
	if anyInput {
		f.sigma = kernel.TimeZero
		return true
	}
	f.sigma = kernel.TimeInfinity
	return false
}

// Sum adds its N inputs; missing updates are carried forward by the last
// value/slope/curvature seen on that port, per spec.md §4.4.2.
type Sum struct {
	Ports
	fired
	noopFinalize

	state []kernel.Message
}

// NewSum constructs a sum atom over n input ports.
func NewSum(n int) *Sum {
	return &Sum{Ports: NewPorts(n, 1), state: make([]kernel.Message, n)}
}

func (m *Sum) Initialize(Context) *status.Error {
	m.sigma = kernel.TimeInfinity
	return nil
}

func (m *Sum) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	any := false
	for i := range m.In {
		if msg, ok := m.In[i].Highest(); ok {
			m.state[i] = msg
			any = true
		}
	}
	m.settle(any)
	return nil
}

func (m *Sum) Lambda(Context) *status.Error {
	var out kernel.Message
	for _, s := range m.state {
		out.Value += s.Value
		out.Slope += s.Slope
		out.Curvature += s.Curvature
	}
	m.Out[0].Stage(out)
	return nil
}

func (m *Sum) Observation(t, e kernel.Time) kernel.ObservationMessage {
	var v, s float64
	for _, st := range m.state {
		v += st.Value
		s += st.Slope
	}
	return kernel.ObservationMessage{Time: t, X: v, XPrime: s, E: e}
}

// WSum is Sum with a fixed per-input coefficient.
type WSum struct {
	Ports
	fired
	noopFinalize

	Coeff []float64
	state []kernel.Message
}

// NewWSum constructs a weighted-sum atom with one coefficient per input.
func NewWSum(coeff []float64) *WSum {
	n := len(coeff)
	return &WSum{Ports: NewPorts(n, 1), Coeff: coeff, state: make([]kernel.Message, n)}
}

func (m *WSum) Initialize(Context) *status.Error {
	for _, c := range m.Coeff {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return status.New(status.ErrAbstractWSumCoeff, "")
		}
	}
	m.sigma = kernel.TimeInfinity
	return nil
}

func (m *WSum) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	any := false
	for i := range m.In {
		if msg, ok := m.In[i].Highest(); ok {
			m.state[i] = msg
			any = true
		}
	}
	m.settle(any)
	return nil
}

func (m *WSum) Lambda(Context) *status.Error {
	var out kernel.Message
	for i, s := range m.state {
		c := m.Coeff[i]
		out.Value += c * s.Value
		out.Slope += c * s.Slope
		out.Curvature += c * s.Curvature
	}
	m.Out[0].Stage(out)
	return nil
}

func (m *WSum) Observation(t, e kernel.Time) kernel.ObservationMessage {
	var v, s float64
	for i, st := range m.state {
		v += m.Coeff[i] * st.Value
		s += m.Coeff[i] * st.Slope
	}
	return kernel.ObservationMessage{Time: t, X: v, XPrime: s, E: e}
}

// Multiplier combines its two inputs' polynomials via the product rule, up
// to curvature order.
type Multiplier struct {
	Ports
	fired
	noopFinalize

	a, b kernel.Message
}

func NewMultiplier() *Multiplier {
	return &Multiplier{Ports: NewPorts(2, 1)}
}

func (m *Multiplier) Initialize(Context) *status.Error { m.sigma = kernel.TimeInfinity; return nil }

func (m *Multiplier) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	any := false
	if msg, ok := m.In[0].Highest(); ok {
		m.a = msg
		any = true
	}
	if msg, ok := m.In[1].Highest(); ok {
		m.b = msg
		any = true
	}
	m.settle(any)
	return nil
}

func (m *Multiplier) Lambda(Context) *status.Error {
	value := m.a.Value * m.b.Value
	slope := m.a.Value*m.b.Slope + m.b.Value*m.a.Slope
	curvature := m.a.Value*m.b.Curvature + m.b.Value*m.a.Curvature + 2*m.a.Slope*m.b.Slope
	m.Out[0].Stage(kernel.Message{Value: value, Slope: slope, Curvature: curvature})
	return nil
}

func (m *Multiplier) Observation(t, e kernel.Time) kernel.ObservationMessage {
	return kernel.ObservationMessage{Time: t, X: m.a.Value * m.b.Value, E: e}
}

// unaryChain is embedded by every single-input pure-function atom (gain,
// power, square, inverse, exp, log, sin, cos): each supplies fn/dfn, the
// function and its derivative, and unaryChain handles the port plumbing
// and first-order chain rule (slope propagation).
type unaryChain struct {
	Ports
	fired
	noopFinalize

	in kernel.Message

	fn  func(float64) (float64, *status.Error)
	dfn func(float64) float64
}

func newUnaryChain(fn func(float64) (float64, *status.Error), dfn func(float64) float64) unaryChain {
	return unaryChain{Ports: NewPorts(1, 1), fn: fn, dfn: dfn}
}

func (m *unaryChain) Initialize(Context) *status.Error { m.sigma = kernel.TimeInfinity; return nil }

func (m *unaryChain) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	any := false
	if msg, ok := m.In[0].Highest(); ok {
		m.in = msg
		any = true
	}
	m.settle(any)
	return nil
}

func (m *unaryChain) Lambda(Context) *status.Error {
	value, err := m.fn(m.in.Value)
	if err != nil {
		return err
	}
	slope := m.dfn(m.in.Value) * m.in.Slope
	m.Out[0].Stage(kernel.Message{Value: value, Slope: slope})
	return nil
}

func (m *unaryChain) Observation(t, e kernel.Time) kernel.ObservationMessage {
	value, _ := m.fn(m.in.Value)
	return kernel.ObservationMessage{Time: t, X: value, E: e}
}

// Gain multiplies its input by a fixed constant K. K is kept alongside the
// unaryChain closure (which captures it for Lambda/Observation) purely so
// the value survives archival.
type Gain struct {
	unaryChain
	K float64
}

func NewGain(k float64) *Gain {
	return &Gain{
		unaryChain: newUnaryChain(
			func(v float64) (float64, *status.Error) { return k * v, nil },
			func(float64) float64 { return k },
		),
		K: k,
	}
}

// Power raises its input to a fixed positive integer N. N is kept alongside
// the unaryChain closure purely so the value survives archival.
type Power struct {
	unaryChain
	N int
}

func NewPower(n int) *Power {
	p := &Power{N: n}
	p.unaryChain = newUnaryChain(
		func(v float64) (float64, *status.Error) {
			if n <= 0 {
				return 0, status.New(status.ErrPowerN, "")
			}
			return math.Pow(v, float64(n)), nil
		},
		func(v float64) float64 { return float64(n) * math.Pow(v, float64(n-1)) },
	)
	return p
}

// Square is Power with N fixed to 2.
func NewSquare() *Power { return NewPower(2) }

// Inverse computes 1/v, surfacing ErrInverseInput when v is exactly zero
// (spec.md §4.4.2).
type Inverse struct{ unaryChain }

func NewInverse() *Inverse {
	inv := &Inverse{}
	inv.unaryChain = newUnaryChain(
		func(v float64) (float64, *status.Error) {
			if v == 0 {
				return 0, status.New(status.ErrInverseInput, "")
			}
			return 1 / v, nil
		},
		func(v float64) float64 {
			if v == 0 {
				return 0
			}
			return -1 / (v * v)
		},
	)
	return inv
}

// Exp computes e^v.
type Exp struct{ unaryChain }

func NewExp() *Exp {
	ex := &Exp{}
	ex.unaryChain = newUnaryChain(
		func(v float64) (float64, *status.Error) { return math.Exp(v), nil },
		math.Exp,
	)
	return ex
}

// Log computes the natural log of v, surfacing ErrLogInput for v <= 0.
type Log struct{ unaryChain }

func NewLog() *Log {
	lg := &Log{}
	lg.unaryChain = newUnaryChain(
		func(v float64) (float64, *status.Error) {
			if v <= 0 {
				return 0, status.New(status.ErrLogInput, "")
			}
			return math.Log(v), nil
		},
		func(v float64) float64 {
			if v <= 0 {
				return 0
			}
			return 1 / v
		},
	)
	return lg
}

// Sin computes sin(v).
type Sin struct{ unaryChain }

func NewSin() *Sin {
	s := &Sin{}
	s.unaryChain = newUnaryChain(
		func(v float64) (float64, *status.Error) { return math.Sin(v), nil },
		math.Cos,
	)
	return s
}

// Cos computes cos(v).
type Cos struct{ unaryChain }

func NewCos() *Cos {
	c := &Cos{}
	c.unaryChain = newUnaryChain(
		func(v float64) (float64, *status.Error) { return math.Cos(v), nil },
		func(v float64) float64 { return -math.Sin(v) },
	)
	return c
}

// Integer rounds its input to the nearest integer value.
type Integer struct{ unaryChain }

func NewInteger() *Integer {
	it := &Integer{}
	it.unaryChain = newUnaryChain(
		func(v float64) (float64, *status.Error) { return math.Round(v), nil },
		func(float64) float64 { return 0 },
	)
	return it
}
