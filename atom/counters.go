package atom

import (
	"math"

	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/status"
)

// Counter increments Number on every message received on its single input
// port; it never schedules an internal event on its own (spec.md §4.4.3).
// Number saturates at math.MaxInt64 rather than wrapping (SPEC_FULL.md
// Open Question 2).
type Counter struct {
	Ports
	noopFinalize

	Number int64
}

func NewCounter() *Counter {
	return &Counter{Ports: NewPorts(1, 0)}
}

func (m *Counter) Sigma() kernel.Time { return kernel.TimeInfinity }

func (m *Counter) Initialize(Context) *status.Error { m.Number = 0; return nil }

func (m *Counter) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	msgs := m.In[0].Messages()
	if len(msgs) == 0 {
		return nil
	}
	if m.Number > math.MaxInt64-int64(len(msgs)) {
		m.Number = math.MaxInt64
		return nil
	}
	m.Number += int64(len(msgs))
	return nil
}

func (m *Counter) Lambda(Context) *status.Error { return nil }

func (m *Counter) Observation(t, e kernel.Time) kernel.ObservationMessage {
	return kernel.ObservationMessage{Time: t, X: float64(m.Number), E: e}
}

// Constant emits Value once at Offset, then never again.
type Constant struct {
	Ports
	noopFinalize

	Value  float64
	Offset kernel.Time

	sigma  kernel.Time
	fired  bool
}

func NewConstant(value float64, offset kernel.Time) *Constant {
	return &Constant{Ports: NewPorts(0, 1), Value: value, Offset: offset}
}

func (m *Constant) Sigma() kernel.Time { return m.sigma }

func (m *Constant) Initialize(Context) *status.Error {
	if math.IsNaN(m.Offset) || m.Offset < 0 {
		return status.New(status.ErrConstantOffset, "")
	}
	if math.IsNaN(m.Value) {
		return status.New(status.ErrConstantValue, "")
	}
	m.sigma = m.Offset
	return nil
}

func (m *Constant) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	if m.fired {
		m.sigma = kernel.TimeInfinity
		return nil
	}
	m.fired = true
	m.sigma = kernel.TimeInfinity
	return nil
}

func (m *Constant) Lambda(Context) *status.Error {
	m.Out[0].Stage(kernel.Message{Value: m.Value})
	return nil
}

func (m *Constant) Observation(t, e kernel.Time) kernel.ObservationMessage {
	return kernel.ObservationMessage{Time: t, X: m.Value, E: e}
}

// TimeFuncKind selects the waveform TimeFunc samples.
type TimeFuncKind uint8

const (
	TimeFuncSine TimeFuncKind = iota
	TimeFuncSquare
	TimeFuncLinear
)

// TimeFunc samples a fixed waveform every Timestep, with no inputs.
type TimeFunc struct {
	Ports
	noopFinalize

	Kind     TimeFuncKind
	Timestep kernel.Time

	elapsed float64
}

func NewTimeFunc(kind TimeFuncKind, timestep kernel.Time) *TimeFunc {
	return &TimeFunc{Ports: NewPorts(0, 1), Kind: kind, Timestep: timestep}
}

func (m *TimeFunc) Sigma() kernel.Time { return m.Timestep }

func (m *TimeFunc) Initialize(Context) *status.Error {
	if !(m.Timestep > 0) {
		return status.New(status.ErrTimeFuncTimestep, "")
	}
	m.elapsed = 0
	return nil
}

func (m *TimeFunc) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	m.elapsed += float64(e)
	return nil
}

func (m *TimeFunc) sample() float64 {
	switch m.Kind {
	case TimeFuncSine:
		return math.Sin(m.elapsed)
	case TimeFuncSquare:
		if math.Mod(m.elapsed, 2*math.Pi) < math.Pi {
			return 1
		}
		return -1
	case TimeFuncLinear:
		return m.elapsed
	default:
		return 0
	}
}

func (m *TimeFunc) Lambda(Context) *status.Error {
	m.Out[0].Stage(kernel.Message{Value: m.sample()})
	return nil
}

func (m *TimeFunc) Observation(t, e kernel.Time) kernel.ObservationMessage {
	return kernel.ObservationMessage{Time: t, X: m.sample(), E: e}
}

// Accumulator gates a sum over N (value, enable) input pairs: each pair
// adds its value only when its enable line is non-zero (spec.md §4.4.3).
// Port 2*i is the value line, port 2*i+1 the enable line for pair i.
type Accumulator struct {
	Ports
	fired
	noopFinalize

	n       int
	values  []float64
	enabled []bool
	total   float64
}

func NewAccumulator(n int) *Accumulator {
	return &Accumulator{
		Ports:   NewPorts(2*n, 1),
		n:       n,
		values:  make([]float64, n),
		enabled: make([]bool, n),
	}
}

func (m *Accumulator) Initialize(Context) *status.Error {
	m.sigma = kernel.TimeInfinity
	return nil
}

func (m *Accumulator) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	any := false
	for i := 0; i < m.n; i++ {
		if msg, ok := m.In[2*i].Highest(); ok {
			m.values[i] = msg.Value
			any = true
		}
		if msg, ok := m.In[2*i+1].Highest(); ok {
			m.enabled[i] = msg.Value != 0
			any = true
		}
	}
	if !any {
		m.sigma = kernel.TimeInfinity
		return nil
	}
	total := 0.0
	for i := 0; i < m.n; i++ {
		if m.enabled[i] {
			total += m.values[i]
		}
	}
	m.total = total
	m.sigma = kernel.TimeZero
	return nil
}

func (m *Accumulator) Lambda(Context) *status.Error {
	m.Out[0].Stage(kernel.Message{Value: m.total})
	return nil
}

func (m *Accumulator) Observation(t, e kernel.Time) kernel.ObservationMessage {
	return kernel.ObservationMessage{Time: t, X: m.total, E: e}
}
