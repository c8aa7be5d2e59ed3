// Package atom implements the atomic-model family: the QSS1/2/3
// integrators, the arithmetic/operator atoms built on top of them, the
// queue and generator family, the logical gates, and the HSM wrapper.
// Every atom is a DEVS block exposing the same five-verb contract
// (spec.md §4.4): Initialize, Transition, Lambda, Observation, Finalize.
package atom

import (
	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/port"
	"github.com/vle-forge/irritator-sub000/source"
	"github.com/vle-forge/irritator-sub000/status"
)

// Context is the narrow surface an atom needs from its owning simulation:
// resolving an externally-mounted source id into the live source.Source
// view, used by generator/queue/dynamic_queue/priority_queue and any
// source-backed atom.
type Context interface {
	Source(id kernel.ID) (*source.Source, *status.Error)
}

// Dynamics is the DEVS atomic-model contract every atom implements.
// Transition receives t (current time), e (elapsed since tl), r (remaining
// until the scheduled tn) exactly as spec.md §4.4 describes; whether the
// call is internal, external, or confluent is inferred by the caller from
// whether any input port carries a message.
type Dynamics interface {
	Initialize(ctx Context) *status.Error
	Transition(ctx Context, t, e, r kernel.Time) *status.Error
	Lambda(ctx Context) *status.Error
	Observation(t, e kernel.Time) kernel.ObservationMessage
	Finalize(ctx Context) *status.Error

	// Sigma is the time-advance until this atom's next internal event,
	// recomputed by Initialize/Transition.
	Sigma() kernel.Time

	// Inputs/Outputs expose the atom's port views for the port fabric and
	// the simulation driver's fan-out pass to bind against.
	Inputs() []*port.Input
	Outputs() []*port.Output
}

// Ports is the embeddable port block every atom built in this package
// carries: a fixed slice of input views and output edges/scratch slots
// sized once at construction, never resized afterward.
type Ports struct {
	In  []port.Input
	Out []port.Output
}

// NewPorts allocates a Ports block with numIn input views and numOut
// output slots.
func NewPorts(numIn, numOut int) Ports {
	return Ports{In: make([]port.Input, numIn), Out: make([]port.Output, numOut)}
}

// Inputs satisfies Dynamics.Inputs via embedding.
func (p *Ports) Inputs() []*port.Input {
	out := make([]*port.Input, len(p.In))
	for i := range p.In {
		out[i] = &p.In[i]
	}
	return out
}

// Outputs satisfies Dynamics.Outputs via embedding.
func (p *Ports) Outputs() []*port.Output {
	out := make([]*port.Output, len(p.Out))
	for i := range p.Out {
		out[i] = &p.Out[i]
	}
	return out
}

// noopFinalize is embedded by atoms that own no resource requiring
// cleanup, so the atom's own Finalize method need not be written.
type noopFinalize struct{}

func (noopFinalize) Finalize(Context) *status.Error { return nil }
