// Package simulation implements the top-level driver: model/connection/
// observer/source management, the pairing-heap scheduler bindings, and the
// two-sub-pass fan-out algorithm that ties the atomic-model family, the HSM
// engine, the port fabric, and the observer pipeline into one stepped
// simulation loop. Grounded on spec.md §4.5 and the simulation<A>/model<A>
// driver in original_source/lib/include/irritator/core.hpp.
package simulation

import (
	"github.com/vle-forge/irritator-sub000/atom"
	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/pheap"
)

// Model is one scheduled entity: its dynamics payload, its scheduler
// handle, the last/next event times, and (optionally) the observer
// attached to it, per spec.md §3's model shape.
type Model struct {
	Dynamics   atom.Dynamics
	ObserverID kernel.ID

	handle pheap.Handle
	tl, tn kernel.Time
}

// Tl returns the time of this model's last event.
func (m *Model) Tl() kernel.Time { return m.tl }

// Tn returns the time of this model's next scheduled event.
func (m *Model) Tn() kernel.Time { return m.tn }

// SetTimes overwrites tl/tn directly, bypassing the scheduler. Used only by
// the archiver when restoring a model's event-time bookkeeping verbatim
// from a saved stream; ordinary simulation code must go through wake()
// instead so the pairing heap stays consistent.
func (m *Model) SetTimes(tl, tn kernel.Time) {
	m.tl = tl
	m.tn = tn
}
