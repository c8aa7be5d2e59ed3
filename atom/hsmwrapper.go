package atom

import (
	"github.com/vle-forge/irritator-sub000/hsm"
	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/source"
	"github.com/vle-forge/irritator-sub000/status"
)

// HSMWrapper is the atom that drives an hsm.Table/Execution through the
// simulation's DEVS lifecycle: the four input ports feed hsm.EventInputChanged,
// an expiring hsm.ConditionSigma wait feeds hsm.EventWakeUp, and queued
// hsm.OutputMessage values drain onto the matching output port at Lambda
// (spec.md §4.4.6).
type HSMWrapper struct {
	Ports
	noopFinalize

	Table     *hsm.Table
	Engine    hsm.Engine
	Constants hsm.Constants
	Source    kernel.ID

	exec  hsm.Execution
	sigma kernel.Time
}

const hsmMaxPorts = 4

// NewHSMWrapper constructs a wrapper bound to table, with four inbound
// event ports and four outbound message ports.
func NewHSMWrapper(table *hsm.Table, consts hsm.Constants) *HSMWrapper {
	return &HSMWrapper{Ports: NewPorts(hsmMaxPorts, hsmMaxPorts), Table: table, Constants: consts, Source: kernel.InvalidID}
}

func (m *HSMWrapper) Sigma() kernel.Time { return m.sigma }

func (m *HSMWrapper) resolveSource(ctx Context) (*source.Source, *status.Error) {
	if !m.Source.Valid() {
		return nil, nil
	}
	return ctx.Source(m.Source)
}

func (m *HSMWrapper) recomputeSigma() {
	if m.exec.OutputCount > 0 {
		m.sigma = kernel.TimeZero
		return
	}
	if m.exec.CurrentState < 0 || m.exec.CurrentState >= len(m.Table.States) {
		m.sigma = kernel.TimeInfinity
		return
	}
	st := &m.Table.States[m.exec.CurrentState]
	if st.Condition.Type == hsm.ConditionSigma {
		if m.exec.Timer <= 0 {
			m.sigma = kernel.TimeZero
		} else {
			m.sigma = m.exec.Timer
		}
		return
	}
	m.sigma = kernel.TimeInfinity
}

func (m *HSMWrapper) Initialize(ctx Context) *status.Error {
	src, err := m.resolveSource(ctx)
	if err != nil {
		return err
	}
	if err := m.Engine.Start(m.Table, &m.exec, m.Constants, src); err != nil {
		return err
	}
	m.recomputeSigma()
	return nil
}

func (m *HSMWrapper) Transition(ctx Context, t, e, r kernel.Time) *status.Error {
	src, err := m.resolveSource(ctx)
	if err != nil {
		return err
	}

	m.exec.ClearPorts()
	anyInput := false
	for i := 0; i < hsmMaxPorts; i++ {
		if msg, ok := m.In[i].Highest(); ok {
			m.exec.SetPort(i, int64(msg.Value))
			anyInput = true
		}
	}

	if anyInput {
		if _, err := m.Engine.Dispatch(m.Table, &m.exec, m.Constants, src, hsm.EventInputChanged); err != nil {
			return err
		}
		m.recomputeSigma()
		return nil
	}

	if m.exec.CurrentState >= 0 && m.exec.CurrentState < len(m.Table.States) {
		st := &m.Table.States[m.exec.CurrentState]
		if st.Condition.Type == hsm.ConditionSigma {
			m.exec.Timer -= e
			if m.exec.Timer <= 0 {
				if _, err := m.Engine.Dispatch(m.Table, &m.exec, m.Constants, src, hsm.EventWakeUp); err != nil {
					return err
				}
			}
		}
	}
	m.recomputeSigma()
	return nil
}

func (m *HSMWrapper) Lambda(Context) *status.Error {
	for _, out := range m.exec.DrainOutputs() {
		if out.Port >= 0 && out.Port < hsmMaxPorts {
			m.Out[out.Port].Stage(out.Value)
		}
	}
	return nil
}

func (m *HSMWrapper) Observation(t, e kernel.Time) kernel.ObservationMessage {
	return kernel.ObservationMessage{Time: t, X: float64(m.exec.CurrentState), E: e}
}
