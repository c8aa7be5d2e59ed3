package atom

import (
	"math"
	"sort"

	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/status"
)

// Generator has four input ports — value override (0), next-time override
// (1), add-to-r (2), multiply-r (3) — and one output. Its value and
// time-advance may each be pulled from an external source or held
// constant; spec.md §4.4.4.
type Generator struct {
	Ports
	noopFinalize

	ValueSource kernel.ID
	TASource    kernel.ID
	ConstValue  float64
	ConstTA     kernel.Time

	r            float64
	pendingValue float64
	sigma        kernel.Time
}

const (
	genPortValueOverride = 0
	genPortTAOverride    = 1
	genPortAddR          = 2
	genPortMultiplyR     = 3
)

func NewGenerator() *Generator {
	return &Generator{Ports: NewPorts(4, 1), ValueSource: kernel.InvalidID, TASource: kernel.InvalidID, r: 1}
}

func (m *Generator) Sigma() kernel.Time { return m.sigma }

func (m *Generator) pullValue(ctx Context) (float64, *status.Error) {
	if !m.ValueSource.Valid() {
		return m.ConstValue, nil
	}
	src, err := ctx.Source(m.ValueSource)
	if err != nil {
		return 0, err
	}
	return src.Next()
}

func (m *Generator) pullTA(ctx Context) (kernel.Time, *status.Error) {
	var ta kernel.Time
	if !m.TASource.Valid() {
		ta = m.ConstTA
	} else {
		src, err := ctx.Source(m.TASource)
		if err != nil {
			return 0, err
		}
		v, err := src.Next()
		if err != nil {
			return 0, err
		}
		ta = v
	}
	if math.IsNaN(ta) || math.IsInf(ta, 0) || ta < 0 {
		return 0, status.New(status.ErrGeneratorTA, "")
	}
	return ta, nil
}

func (m *Generator) Initialize(ctx Context) *status.Error {
	value, err := m.pullValue(ctx)
	if err != nil {
		return err
	}
	if math.IsNaN(value) {
		return status.New(status.ErrGeneratorValue, "")
	}
	ta, err := m.pullTA(ctx)
	if err != nil {
		return err
	}
	m.pendingValue = value
	m.sigma = ta
	return nil
}

func (m *Generator) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	overridden := false
	if msg, ok := m.In[genPortValueOverride].Highest(); ok {
		m.pendingValue = msg.Value
		overridden = true
	}
	if msg, ok := m.In[genPortTAOverride].Highest(); ok {
		m.sigma = msg.Value
		overridden = true
	}
	if msg, ok := m.In[genPortAddR].Highest(); ok {
		m.r += msg.Value
		overridden = true
	}
	if msg, ok := m.In[genPortMultiplyR].Highest(); ok {
		m.r *= msg.Value
		overridden = true
	}
	if overridden {
		return nil
	}

	value, err := m.pullValue(ctx)
	if err != nil {
		return err
	}
	ta, err := m.pullTA(ctx)
	if err != nil {
		return err
	}
	m.pendingValue = value
	m.sigma = ta
	return nil
}

func (m *Generator) Lambda(Context) *status.Error {
	m.Out[0].Stage(kernel.Message{Value: m.pendingValue * m.r})
	return nil
}

func (m *Generator) Observation(t, e kernel.Time) kernel.ObservationMessage {
	return kernel.ObservationMessage{Time: t, X: m.pendingValue * m.r, E: e}
}

// Queue is a FIFO of dated messages sorted by wakeup time; TA is the
// default hold delay applied to every enqueued message (spec.md §4.4.4).
type Queue struct {
	Ports
	noopFinalize

	TA kernel.Time

	pending []kernel.DatedMessage
	nextDue kernel.Time
	sigma   kernel.Time
}

func NewQueue(ta kernel.Time) *Queue {
	return &Queue{Ports: NewPorts(1, 1), TA: ta}
}

func (m *Queue) Sigma() kernel.Time { return m.sigma }

func (m *Queue) Initialize(Context) *status.Error {
	m.pending = nil
	m.nextDue = kernel.TimeInfinity
	m.sigma = kernel.TimeInfinity
	return nil
}

func (m *Queue) recompute(t kernel.Time) {
	if len(m.pending) > 0 {
		m.nextDue = m.pending[0].WakeupTime
		m.sigma = m.nextDue - t
	} else {
		m.nextDue = kernel.TimeInfinity
		m.sigma = kernel.TimeInfinity
	}
}

func (m *Queue) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	if len(m.pending) > 0 && t >= m.nextDue {
		m.pending = m.pending[1:]
	}
	if msg, ok := m.In[0].Highest(); ok {
		m.pending = append(m.pending, kernel.DatedMessage{
			WakeupTime: t + m.TA, Value: msg.Value, Slope: msg.Slope, Curvature: msg.Curvature,
		})
	}
	m.recompute(t)
	return nil
}

func (m *Queue) Lambda(Context) *status.Error {
	if len(m.pending) == 0 {
		return nil
	}
	head := m.pending[0]
	m.Out[0].Stage(kernel.Message{Value: head.Value, Slope: head.Slope, Curvature: head.Curvature})
	return nil
}

func (m *Queue) Observation(t, e kernel.Time) kernel.ObservationMessage {
	if len(m.pending) == 0 {
		return kernel.ObservationMessage{Time: t, E: e}
	}
	return kernel.ObservationMessage{Time: t, X: m.pending[0].Value, E: e}
}

// DynamicQueue is Queue with ta pulled from an external source on every
// enqueue instead of a fixed constant.
type DynamicQueue struct {
	Ports
	noopFinalize

	TASource kernel.ID

	pending []kernel.DatedMessage
	nextDue kernel.Time
	sigma   kernel.Time
}

func NewDynamicQueue(taSource kernel.ID) *DynamicQueue {
	return &DynamicQueue{Ports: NewPorts(1, 1), TASource: taSource}
}

func (m *DynamicQueue) Sigma() kernel.Time { return m.sigma }

func (m *DynamicQueue) Initialize(Context) *status.Error {
	m.pending = nil
	m.nextDue = kernel.TimeInfinity
	m.sigma = kernel.TimeInfinity
	return nil
}

func (m *DynamicQueue) recompute(t kernel.Time) {
	if len(m.pending) > 0 {
		m.nextDue = m.pending[0].WakeupTime
		m.sigma = m.nextDue - t
	} else {
		m.nextDue = kernel.TimeInfinity
		m.sigma = kernel.TimeInfinity
	}
}

func (m *DynamicQueue) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	if len(m.pending) > 0 && t >= m.nextDue {
		m.pending = m.pending[1:]
	}
	if msg, ok := m.In[0].Highest(); ok {
		src, err := ctx.Source(m.TASource)
		if err != nil {
			return err
		}
		ta, err := src.Next()
		if err != nil {
			return err
		}
		if math.IsNaN(ta) || ta < 0 {
			return status.New(status.ErrQueueTA, "")
		}
		m.pending = append(m.pending, kernel.DatedMessage{
			WakeupTime: t + ta, Value: msg.Value, Slope: msg.Slope, Curvature: msg.Curvature,
		})
	}
	m.recompute(t)
	return nil
}

func (m *DynamicQueue) Lambda(Context) *status.Error {
	if len(m.pending) == 0 {
		return nil
	}
	head := m.pending[0]
	m.Out[0].Stage(kernel.Message{Value: head.Value, Slope: head.Slope, Curvature: head.Curvature})
	return nil
}

func (m *DynamicQueue) Observation(t, e kernel.Time) kernel.ObservationMessage {
	if len(m.pending) == 0 {
		return kernel.ObservationMessage{Time: t, E: e}
	}
	return kernel.ObservationMessage{Time: t, X: m.pending[0].Value, E: e}
}

// PriorityQueue pulls a delay from an external source on every enqueue and
// reinserts the queue sorted by wakeup time, so arrivals can be delivered
// out of arrival order (spec.md §4.4.4, scenario 5).
type PriorityQueue struct {
	Ports
	noopFinalize

	TASource kernel.ID

	pending []kernel.DatedMessage
	nextDue kernel.Time
	sigma   kernel.Time
}

func NewPriorityQueue(taSource kernel.ID) *PriorityQueue {
	return &PriorityQueue{Ports: NewPorts(1, 1), TASource: taSource}
}

func (m *PriorityQueue) Sigma() kernel.Time { return m.sigma }

func (m *PriorityQueue) Initialize(Context) *status.Error {
	m.pending = nil
	m.nextDue = kernel.TimeInfinity
	m.sigma = kernel.TimeInfinity
	return nil
}

func (m *PriorityQueue) recompute(t kernel.Time) {
	if len(m.pending) > 0 {
		m.nextDue = m.pending[0].WakeupTime
		m.sigma = m.nextDue - t
	} else {
		m.nextDue = kernel.TimeInfinity
		m.sigma = kernel.TimeInfinity
	}
}

func (m *PriorityQueue) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	if len(m.pending) > 0 && t >= m.nextDue {
		m.pending = m.pending[1:]
	}
	if msg, ok := m.In[0].Highest(); ok {
		src, err := ctx.Source(m.TASource)
		if err != nil {
			return err
		}
		ta, err := src.Next()
		if err != nil {
			return err
		}
		if math.IsNaN(ta) || ta < 0 {
			return status.New(status.ErrQueueTA, "")
		}
		dm := kernel.DatedMessage{WakeupTime: t + ta, Value: msg.Value, Slope: msg.Slope, Curvature: msg.Curvature}
		idx := sort.Search(len(m.pending), func(i int) bool { return m.pending[i].WakeupTime > dm.WakeupTime })
		m.pending = append(m.pending, kernel.DatedMessage{})
		copy(m.pending[idx+1:], m.pending[idx:])
		m.pending[idx] = dm
	}
	m.recompute(t)
	return nil
}

func (m *PriorityQueue) Lambda(Context) *status.Error {
	if len(m.pending) == 0 {
		return nil
	}
	head := m.pending[0]
	m.Out[0].Stage(kernel.Message{Value: head.Value, Slope: head.Slope, Curvature: head.Curvature})
	return nil
}

func (m *PriorityQueue) Observation(t, e kernel.Time) kernel.ObservationMessage {
	if len(m.pending) == 0 {
		return kernel.ObservationMessage{Time: t, E: e}
	}
	return kernel.ObservationMessage{Time: t, X: m.pending[0].Value, E: e}
}
