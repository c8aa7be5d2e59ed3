package atom

import (
	"math"

	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/status"
)

// wakeUpTime projects the linear part of the stored polynomial onto
// threshold and returns the delay until it gets there, or +∞ when the
// slope is zero or points away. This is how cross/filter/compare ring a
// wake-up for a crossing that happens between input events.
func wakeUpTime(threshold, value, slope float64) kernel.Time {
	if slope == 0 {
		return kernel.TimeInfinity
	}
	d := (threshold - value) / slope
	if d > 0 {
		return d
	}
	return kernel.TimeInfinity
}

// Cross emits on one of two output ports (down = Out[0], up = Out[1])
// depending on which side of Threshold the incoming value lies; the zone
// is sticky and only switches on an actual crossing, using the slope sign
// to break near-threshold ties (spec.md §4.4.2). Between input events the
// atom wakes itself at the projected crossing instant so a ramping QSS2/3
// input cannot slip past the threshold unnoticed.
type Cross struct {
	Ports
	fired
	noopFinalize

	Threshold float64

	value, slope float64
	above        bool
	started      bool
}

func NewCross(threshold float64) *Cross {
	return &Cross{Ports: NewPorts(1, 2), Threshold: threshold}
}

func (m *Cross) Initialize(Context) *status.Error {
	m.sigma = kernel.TimeInfinity
	return nil
}

func (m *Cross) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	if msg, any := m.In[0].Highest(); any {
		m.value = msg.Value
		m.slope = msg.Slope
	} else if m.started {
		// Wake-up: advance the stored polynomial to now.
		m.value += m.slope * e
	} else {
		m.sigma = kernel.TimeInfinity
		return nil
	}

	newAbove := m.value > m.Threshold
	if kernel.AlmostEqual(m.value, m.Threshold, kernel.CrossingTolerance) {
		newAbove = m.slope > 0
	}

	if !m.started {
		m.above = newAbove
		m.started = true
		m.sigma = wakeUpTime(m.Threshold, m.value, m.slope)
		return nil
	}

	if newAbove != m.above {
		m.above = newAbove
		m.sigma = kernel.TimeZero
		return nil
	}
	m.sigma = wakeUpTime(m.Threshold, m.value, m.slope)
	return nil
}

func (m *Cross) Lambda(Context) *status.Error {
	out := kernel.Message{Value: m.value, Slope: m.slope}
	if m.above {
		m.Out[1].Stage(out)
	} else {
		m.Out[0].Stage(out)
	}
	return nil
}

func (m *Cross) Observation(t, e kernel.Time) kernel.ObservationMessage {
	return kernel.ObservationMessage{Time: t, X: m.value, XPrime: m.slope, E: e}
}

// Filter passes its input through on Out[0] and additionally fires Out[1]
// (upper hit) or Out[2] (lower hit) when the value reaches either bound.
// Preconditions: Lower < Upper. Like Cross, it rings a wake-up when the
// stored polynomial is projected to reach a bound between input events.
type Filter struct {
	Ports
	fired
	noopFinalize

	Lower, Upper float64

	value, slope float64
	started      bool
	hitUpper     bool
	hitLower     bool
}

func NewFilter(lower, upper float64) *Filter {
	return &Filter{Ports: NewPorts(1, 3), Lower: lower, Upper: upper}
}

func (m *Filter) Initialize(Context) *status.Error {
	if !(m.Lower < m.Upper) {
		return status.New(status.ErrFilterThreshold, "")
	}
	m.sigma = kernel.TimeInfinity
	return nil
}

func (m *Filter) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	prevUpper, prevLower := m.hitUpper, m.hitLower

	msg, any := m.In[0].Highest()
	if any {
		m.value = msg.Value
		m.slope = msg.Slope
		m.started = true
	} else if m.started {
		m.value += m.slope * e
	} else {
		m.sigma = kernel.TimeInfinity
		return nil
	}

	m.hitUpper = m.value >= m.Upper
	m.hitLower = m.value <= m.Lower

	if any || (m.hitUpper && !prevUpper) || (m.hitLower && !prevLower) {
		m.sigma = kernel.TimeZero
		return nil
	}
	m.sigma = math.Min(
		wakeUpTime(m.Upper, m.value, m.slope),
		wakeUpTime(m.Lower, m.value, m.slope),
	)
	return nil
}

func (m *Filter) Lambda(Context) *status.Error {
	m.Out[0].Stage(kernel.Message{Value: m.value})
	if m.hitUpper {
		m.Out[1].Stage(kernel.Message{Value: m.value})
	}
	if m.hitLower {
		m.Out[2].Stage(kernel.Message{Value: m.value})
	}
	return nil
}

func (m *Filter) Observation(t, e kernel.Time) kernel.ObservationMessage {
	return kernel.ObservationMessage{Time: t, X: m.value, E: e}
}

// Flipflop latches the last value seen on port 0 and emits it only when
// port 1 (the event line) delivers a message.
type Flipflop struct {
	Ports
	fired
	noopFinalize

	latched float64
}

func NewFlipflop() *Flipflop {
	return &Flipflop{Ports: NewPorts(2, 1)}
}

func (m *Flipflop) Initialize(Context) *status.Error {
	m.sigma = kernel.TimeInfinity
	return nil
}

func (m *Flipflop) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	if msg, ok := m.In[0].Highest(); ok {
		m.latched = msg.Value
	}
	if _, ok := m.In[1].Highest(); ok {
		m.sigma = kernel.TimeZero
		return nil
	}
	m.sigma = kernel.TimeInfinity
	return nil
}

func (m *Flipflop) Lambda(Context) *status.Error {
	m.Out[0].Stage(kernel.Message{Value: m.latched})
	return nil
}

func (m *Flipflop) Observation(t, e kernel.Time) kernel.ObservationMessage {
	return kernel.ObservationMessage{Time: t, X: m.latched, E: e}
}

// Compare emits 1 when its input is at or above Threshold, 0 otherwise,
// re-firing on every input change and additionally solving the difference
// polynomial's linear term for the next sign change so a ramping input
// flips the output between events.
type Compare struct {
	Ports
	fired
	noopFinalize

	Threshold float64

	value, slope float64
	result       bool
	started      bool
}

func NewCompare(threshold float64) *Compare {
	return &Compare{Ports: NewPorts(1, 1), Threshold: threshold}
}

func (m *Compare) Initialize(Context) *status.Error {
	m.sigma = kernel.TimeInfinity
	return nil
}

func (m *Compare) compare() bool {
	if kernel.AlmostEqual(m.value, m.Threshold, kernel.CrossingTolerance) {
		return m.slope > 0
	}
	return m.value >= m.Threshold
}

func (m *Compare) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	if msg, any := m.In[0].Highest(); any {
		m.value = msg.Value
		m.slope = msg.Slope
		m.started = true
		m.result = m.compare()
		m.sigma = kernel.TimeZero
		return nil
	}
	if !m.started {
		m.sigma = kernel.TimeInfinity
		return nil
	}
	m.value += m.slope * e
	if res := m.compare(); res != m.result {
		m.result = res
		m.sigma = kernel.TimeZero
		return nil
	}
	m.sigma = wakeUpTime(m.Threshold, m.value, m.slope)
	return nil
}

func (m *Compare) Lambda(Context) *status.Error {
	result := 0.0
	if m.result {
		result = 1
	}
	m.Out[0].Stage(kernel.Message{Value: result})
	return nil
}

func (m *Compare) Observation(t, e kernel.Time) kernel.ObservationMessage {
	result := 0.0
	if m.result {
		result = 1
	}
	return kernel.ObservationMessage{Time: t, X: result, E: e}
}
