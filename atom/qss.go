package atom

import (
	"math"

	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/status"
)

// QSS1Integrator is the order-1 quantized-state integrator: state X, its
// quantized value q, and a single derivative u. Port 0 is x_dot (next
// derivative), port 1 is reset (hard jump). Output emits
// (X + u·sigma, 0, 0), the state at the next internal event.
type QSS1Integrator struct {
	Ports
	noopFinalize

	X, DQ float64

	q     float64
	u     float64
	sigma kernel.Time
}

const (
	qssPortXDot = 0
	qssPortReset = 1
)

// NewQSS1Integrator constructs an integrator with its two input ports
// (x_dot, reset) and single output port already sized.
func NewQSS1Integrator() *QSS1Integrator {
	return &QSS1Integrator{Ports: NewPorts(2, 1)}
}

func (m *QSS1Integrator) Sigma() kernel.Time { return m.sigma }

func (m *QSS1Integrator) Initialize(Context) *status.Error {
	if math.IsNaN(m.X) || math.IsInf(m.X, 0) {
		return status.New(status.ErrAbstractIntegratorX, "")
	}
	if !(m.DQ > 0) {
		return status.New(status.ErrAbstractIntegratorDQ, "")
	}
	m.q = m.X
	m.u = 0
	m.sigma = kernel.TimeInfinity
	return nil
}

func (m *QSS1Integrator) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	if reset, ok := m.In[qssPortReset].Highest(); ok {
		m.X = reset.Value
		m.q = m.X
		m.u = 0
		m.sigma = kernel.TimeZero
		return nil
	}

	if msg, ok := m.In[qssPortXDot].Highest(); ok {
		m.X = m.X + m.u*e
		m.u = msg.Value
		if m.X > m.q+m.DQ || m.X < m.q-m.DQ {
			m.sigma = kernel.TimeZero
			return nil
		}
		if cross, ok := nextQuantumCrossing(0, 0, m.u, m.X, m.q, m.DQ); ok {
			m.sigma = cross
		} else {
			m.sigma = kernel.TimeInfinity
		}
		return nil
	}

	// Internal transition: advance by the current derivative over sigma.
	m.X = m.X + m.u*e
	m.q = m.X
	if m.u == 0 {
		m.sigma = kernel.TimeInfinity
	} else {
		m.sigma = m.DQ / math.Abs(m.u)
	}
	return nil
}

// Lambda runs before Transition, so q/u here still reflect the state as of
// the last transition; extrapolate forward by the pending sigma to emit the
// value the integrator is about to commit, not the stale one.
func (m *QSS1Integrator) Lambda(Context) *status.Error {
	m.Out[0].Stage(kernel.Message{Value: m.X + m.u*m.sigma})
	return nil
}

func (m *QSS1Integrator) Observation(t, e kernel.Time) kernel.ObservationMessage {
	return kernel.ObservationMessage{Time: t, X: m.X + m.u*e, XPrime: m.u, E: e}
}

// QSS2Integrator is the order-2 integrator: adds the second derivative mu
// (the slope of u) and resolves crossings via the quadratic branch of
// nextQuantumCrossing.
type QSS2Integrator struct {
	Ports
	noopFinalize

	X, DQ float64

	q, u, mu float64
	sigma    kernel.Time
}

func NewQSS2Integrator() *QSS2Integrator {
	return &QSS2Integrator{Ports: NewPorts(2, 1)}
}

func (m *QSS2Integrator) Sigma() kernel.Time { return m.sigma }

func (m *QSS2Integrator) Initialize(Context) *status.Error {
	if math.IsNaN(m.X) || math.IsInf(m.X, 0) {
		return status.New(status.ErrAbstractIntegratorX, "")
	}
	if !(m.DQ > 0) {
		return status.New(status.ErrAbstractIntegratorDQ, "")
	}
	m.q = m.X
	m.u, m.mu = 0, 0
	m.sigma = kernel.TimeInfinity
	return nil
}

func (m *QSS2Integrator) advance(e kernel.Time) {
	m.X = m.X + m.u*e + m.mu*e*e/2
}

func (m *QSS2Integrator) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	if reset, ok := m.In[qssPortReset].Highest(); ok {
		m.X = reset.Value
		m.q = m.X
		m.u, m.mu = 0, 0
		m.sigma = kernel.TimeZero
		return nil
	}

	if msg, ok := m.In[qssPortXDot].Highest(); ok {
		m.advance(e)
		m.u = msg.Value
		m.mu = msg.Slope
		if m.X > m.q+m.DQ || m.X < m.q-m.DQ {
			m.sigma = kernel.TimeZero
			return nil
		}
		if cross, ok := nextQuantumCrossing(0, m.mu/2, m.u, m.X, m.q, m.DQ); ok {
			m.sigma = cross
		} else {
			m.sigma = kernel.TimeInfinity
		}
		return nil
	}

	m.advance(e)
	m.q = m.X
	m.u += m.mu * e
	if cross, ok := nextQuantumCrossing(0, m.mu/2, m.u, m.X, m.q, m.DQ); ok {
		m.sigma = cross
	} else {
		m.sigma = kernel.TimeInfinity
	}
	return nil
}

// Lambda runs before Transition, so q/u/mu here still reflect the state as
// of the last transition; extrapolate forward by the pending sigma to emit
// the value and slope the integrator is about to commit.
func (m *QSS2Integrator) Lambda(Context) *status.Error {
	m.Out[0].Stage(kernel.Message{
		Value: m.X + m.u*m.sigma + m.mu*m.sigma*m.sigma/2,
		Slope: m.u + m.mu*m.sigma,
	})
	return nil
}

func (m *QSS2Integrator) Observation(t, e kernel.Time) kernel.ObservationMessage {
	return kernel.ObservationMessage{
		Time:         t,
		X:            m.X + m.u*e + m.mu*e*e/2,
		XPrime:       m.u + m.mu*e,
		XDoublePrime: m.mu,
		E:            e,
	}
}

// QSS3Integrator is the order-3 integrator: adds the third derivative pu
// and resolves crossings through the cubic branch of nextQuantumCrossing.
type QSS3Integrator struct {
	Ports
	noopFinalize

	X, DQ float64

	q, u, mu, pu float64
	sigma        kernel.Time
}

func NewQSS3Integrator() *QSS3Integrator {
	return &QSS3Integrator{Ports: NewPorts(2, 1)}
}

func (m *QSS3Integrator) Sigma() kernel.Time { return m.sigma }

func (m *QSS3Integrator) Initialize(Context) *status.Error {
	if math.IsNaN(m.X) || math.IsInf(m.X, 0) {
		return status.New(status.ErrAbstractIntegratorX, "")
	}
	if !(m.DQ > 0) {
		return status.New(status.ErrAbstractIntegratorDQ, "")
	}
	m.q = m.X
	m.u, m.mu, m.pu = 0, 0, 0
	m.sigma = kernel.TimeInfinity
	return nil
}

func (m *QSS3Integrator) advance(e kernel.Time) {
	m.X = m.X + m.u*e + m.mu*e*e/2 + m.pu*e*e*e/3
}

func (m *QSS3Integrator) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	if reset, ok := m.In[qssPortReset].Highest(); ok {
		m.X = reset.Value
		m.q = m.X
		m.u, m.mu, m.pu = 0, 0, 0
		m.sigma = kernel.TimeZero
		return nil
	}

	if msg, ok := m.In[qssPortXDot].Highest(); ok {
		m.advance(e)
		m.u = msg.Value
		m.mu = msg.Slope
		m.pu = msg.Curvature
		if m.X > m.q+m.DQ || m.X < m.q-m.DQ {
			m.sigma = kernel.TimeZero
			return nil
		}
		if cross, ok := nextQuantumCrossing(m.pu/3, m.mu/2, m.u, m.X, m.q, m.DQ); ok {
			m.sigma = cross
		} else {
			m.sigma = kernel.TimeInfinity
		}
		return nil
	}

	m.advance(e)
	m.q = m.X
	m.u += m.mu*e + m.pu*e*e
	m.mu += 2 * m.pu * e
	if cross, ok := nextQuantumCrossing(m.pu/3, m.mu/2, m.u, m.X, m.q, m.DQ); ok {
		m.sigma = cross
	} else {
		m.sigma = kernel.TimeInfinity
	}
	return nil
}

// Lambda runs before Transition, so q/u/mu here still reflect the state as
// of the last transition; extrapolate forward by the pending sigma to emit
// the value, slope and curvature the integrator is about to commit.
func (m *QSS3Integrator) Lambda(Context) *status.Error {
	s2 := m.sigma * m.sigma
	m.Out[0].Stage(kernel.Message{
		Value:     m.X + m.u*m.sigma + m.mu*s2/2 + m.pu*s2*m.sigma/3,
		Slope:     m.u + m.mu*m.sigma + m.pu*s2,
		Curvature: m.mu/2 + m.pu*m.sigma,
	})
	return nil
}

func (m *QSS3Integrator) Observation(t, e kernel.Time) kernel.ObservationMessage {
	x := m.X + m.u*e + m.mu*e*e/2 + m.pu*e*e*e/3
	return kernel.ObservationMessage{
		Time:         t,
		X:            x,
		XPrime:       m.u + m.mu*e + m.pu*e*e,
		XDoublePrime: m.mu + 2*m.pu*e,
		E:            e,
	}
}
