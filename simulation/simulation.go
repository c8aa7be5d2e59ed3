package simulation

import (
	"github.com/vle-forge/irritator-sub000/atom"
	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/observer"
	"github.com/vle-forge/irritator-sub000/pheap"
	"github.com/vle-forge/irritator-sub000/port"
	"github.com/vle-forge/irritator-sub000/source"
	"github.com/vle-forge/irritator-sub000/status"
)

// Limits bounds the interval a Simulation runs over.
type Limits struct {
	Begin kernel.Time
	End   kernel.Time
}

// Reserve sizes the arenas and buffers a Simulation preallocates, mirroring
// the arena store's `reserve(n)` operation (spec.md §4.1) across every
// entity kind the driver owns.
type Reserve struct {
	Models       int
	Observers    int
	Sources      int
	OverflowBlocks int
	MaxOverflowBlocks int
	Messages     int
	HeapNodes    int
}

// DefaultReserve returns a modest starting capacity for every arena, all of
// which grow geometrically on demand.
func DefaultReserve() Reserve {
	return Reserve{Models: 64, Observers: 16, Sources: 8, OverflowBlocks: 32, Messages: 256, HeapNodes: 64}
}

type activeOutput struct {
	model kernel.ID
	port  int
}

// Simulation is the top-level driver: it owns every model, the scheduler,
// the port fabric, the shared message buffer, the attached observers, and
// the mounted external sources, and implements atom.Context so atoms can
// resolve their own source handles during Transition/Initialize.
type Simulation struct {
	Limits Limits

	t         kernel.Time
	lastValid kernel.Time

	models    *kernel.Arena[*Model]
	heap      *pheap.Heap
	fabric    *port.Fabric
	buffer    *port.MessageBuffer
	observers *kernel.Arena[*observer.Observer]
	sources   *kernel.Arena[*source.Source]
	driver    *source.Driver

	activeOutputs []activeOutput
}

// New constructs a Simulation bounded by limits, with arenas sized per
// reserve and its own external-source driver (sourceCapacity providers).
func New(limits Limits, reserve Reserve, sourceCapacity int) *Simulation {
	return &Simulation{
		Limits:    limits,
		models:    kernel.NewArena[*Model](reserve.Models),
		heap:      pheap.New(reserve.HeapNodes),
		fabric:    port.NewFabric(reserve.OverflowBlocks, reserve.MaxOverflowBlocks),
		buffer:    port.NewMessageBuffer(reserve.Messages),
		observers: kernel.NewArena[*observer.Observer](reserve.Observers),
		sources:   kernel.NewArena[*source.Source](reserve.Sources),
		driver:    source.NewDriver(sourceCapacity),
	}
}

// T returns the simulation's current time.
func (s *Simulation) T() kernel.Time { return s.t }

// LastT returns the latest valid simulation time: the step time before the
// current one, never the +∞ an exhausted scheduler leaves behind and never
// a time past Limits.End.
func (s *Simulation) LastT() kernel.Time { return s.lastValid }

// RestoreTime sets the simulation's current time directly, bypassing
// Initialize. Used by the archiver once every model/source has been
// rebuilt from a saved stream, so Run() resumes from the saved instant
// instead of Limits.Begin.
func (s *Simulation) RestoreTime(t kernel.Time) {
	s.t = t
	s.lastValid = t
	s.buffer.Reset()
	s.activeOutputs = s.activeOutputs[:0]
}

// RestoreModel binds id into the scheduler using its already-restored tn,
// without invoking Dynamics.Initialize — the archiver's counterpart to the
// model-binding half of Initialize(), for a model whose full dynamics
// state (including tl/tn) was just populated by UnmarshalBinary.
func (s *Simulation) RestoreModel(id kernel.ID) *status.Error {
	m := s.models.Get(id)
	if m == nil {
		return status.New(status.ErrUnknownModel, "")
	}
	mdl := *m
	mdl.handle = s.heap.Alloc(mdl.tn, id)
	return nil
}

// SourceDriver exposes the underlying provider registry so callers can
// Register providers before Mount-ing them.
func (s *Simulation) SourceDriver() *source.Driver { return s.driver }

// MountSource mounts a Source on the given provider/client and returns the
// id atoms use via Context.Source to resolve it.
func (s *Simulation) MountSource(kind source.Kind, providerID kernel.ID, client int) (kernel.ID, *status.Error) {
	src, err := s.driver.Mount(kind, providerID, client)
	if err != nil {
		return kernel.InvalidID, err
	}
	return s.sources.Alloc(src), nil
}

// Source implements atom.Context.
func (s *Simulation) Source(id kernel.ID) (*source.Source, *status.Error) {
	src := s.sources.Get(id)
	if src == nil {
		return nil, status.New(status.ErrUnknownSource, "")
	}
	return *src, nil
}

// AddModel allocates a new model around dyn with no attached observer.
func (s *Simulation) AddModel(dyn atom.Dynamics) kernel.ID {
	return s.models.Alloc(&Model{Dynamics: dyn, ObserverID: kernel.InvalidID, handle: pheap.InvalidHandle})
}

// Clone duplicates the model registered under id: the new model carries a
// deep copy of the dynamics state but none of the original's connections
// or observer, and is not scheduled until the next Initialize.
func (s *Simulation) Clone(id kernel.ID) (kernel.ID, *status.Error) {
	m := s.Model(id)
	if m == nil {
		return kernel.InvalidID, status.New(status.ErrUnknownModel, "")
	}
	dyn, err := atom.Clone(m.Dynamics)
	if err != nil {
		return kernel.InvalidID, err
	}
	return s.AddModel(dyn), nil
}

// Deallocate frees the model registered under id: its scheduler node is
// removed and destroyed, its observer slot released, and its arena slot
// recycled. Edges held by other models that still target id are swept
// lazily the next time the fabric iterates them.
func (s *Simulation) Deallocate(id kernel.ID) *status.Error {
	m := s.models.Get(id)
	if m == nil {
		return status.New(status.ErrUnknownModel, "")
	}
	mdl := *m
	if mdl.handle != pheap.InvalidHandle {
		if s.heap.IsInTree(mdl.handle) {
			s.heap.Remove(mdl.handle)
		}
		s.heap.Destroy(mdl.handle)
	}
	if mdl.ObserverID.Valid() {
		s.observers.Free(mdl.ObserverID)
	}
	s.models.Free(id)
	return nil
}

// AddObserver attaches obs to model, replacing any previously attached
// observer.
func (s *Simulation) AddObserver(model kernel.ID, obs *observer.Observer) *status.Error {
	m := s.models.Get(model)
	if m == nil {
		return status.New(status.ErrUnknownModel, "")
	}
	if (*m).ObserverID.Valid() {
		s.observers.Free((*m).ObserverID)
	}
	(*m).ObserverID = s.observers.Alloc(obs)
	return nil
}

// Unobserve detaches the observer attached to model, if any, releasing its
// arena slot.
func (s *Simulation) Unobserve(model kernel.ID) *status.Error {
	m := s.models.Get(model)
	if m == nil {
		return status.New(status.ErrUnknownModel, "")
	}
	if (*m).ObserverID.Valid() {
		s.observers.Free((*m).ObserverID)
		(*m).ObserverID = kernel.InvalidID
	}
	return nil
}

// Observer returns the observer attached to id, or nil if none was ever
// registered under that id.
func (s *Simulation) Observer(id kernel.ID) *observer.Observer {
	if !id.Valid() {
		return nil
	}
	obs := s.observers.Get(id)
	if obs == nil {
		return nil
	}
	return *obs
}

// Model returns the model registered under id, or nil.
func (s *Simulation) Model(id kernel.ID) *Model {
	m := s.models.Get(id)
	if m == nil {
		return nil
	}
	return *m
}

// IterateModels visits every live model in stable arena order, exposing the
// full Model record (including tl/tn) to callers such as the archiver that
// need more than Dynamics alone.
func (s *Simulation) IterateModels(fn func(id kernel.ID, m *Model) bool) {
	s.models.Iterate(func(id kernel.ID, m **Model) bool {
		return fn(id, *m)
	})
}

// IterateSources visits every mounted source in stable arena order.
func (s *Simulation) IterateSources(fn func(id kernel.ID, src *source.Source) bool) {
	s.sources.Iterate(func(id kernel.ID, src **source.Source) bool {
		return fn(id, *src)
	})
}

// IterateConnections visits every live edge in the port fabric as
// (srcModel, srcPort, dstModel, dstPort) tuples, in model/port declaration
// order, matching the archiver's connection-tuple stream (spec.md §6).
func (s *Simulation) IterateConnections(fn func(srcModel kernel.ID, srcPort int, dstModel kernel.ID, dstPort int)) {
	alive := func(id kernel.ID) bool { return s.Model(id) != nil }
	s.IterateModels(func(srcID kernel.ID, mdl *Model) bool {
		for portIdx, out := range mdl.Dynamics.Outputs() {
			s.fabric.Iterate(out, alive, func(target kernel.ID, dstPort int) {
				fn(srcID, portIdx, target, dstPort)
			})
		}
		return true
	})
}

// CanConnect checks an edge without creating it: both endpoints must
// resolve, both port indices must be in range, and the type pair must be
// allowed by the compatibility matrix (atom.CanConnect). A nil return
// means a Connect on the same quadruple would be accepted, barring
// duplicates and container growth.
func (s *Simulation) CanConnect(srcModel kernel.ID, srcPort int, dstModel kernel.ID, dstPort int) *status.Error {
	src := s.Model(srcModel)
	if src == nil {
		return status.New(status.ErrUnknownModel, "")
	}
	if srcPort < 0 || srcPort >= len(src.Dynamics.Outputs()) {
		return status.New(status.ErrUnknownPort, "")
	}
	dst := s.Model(dstModel)
	if dst == nil {
		return status.New(status.ErrUnknownModel, "")
	}
	if dstPort < 0 || dstPort >= len(dst.Dynamics.Inputs()) {
		return status.New(status.ErrUnknownPort, "")
	}
	if !atom.CanConnect(src.Dynamics, srcPort, dst.Dynamics, dstPort) {
		return status.New(status.ErrConnectionIncompatible, "")
	}
	return nil
}

// Connect wires an edge from srcModel's srcPort-th output to dstModel's
// dstPort-th input, via the shared port fabric.
func (s *Simulation) Connect(srcModel kernel.ID, srcPort int, dstModel kernel.ID, dstPort int) *status.Error {
	if err := s.CanConnect(srcModel, srcPort, dstModel, dstPort); err != nil {
		return err
	}
	src := s.Model(srcModel)
	return s.fabric.Connect(src.Dynamics.Outputs()[srcPort], dstModel, dstPort)
}

// Disconnect removes the edge added by a matching Connect call.
func (s *Simulation) Disconnect(srcModel kernel.ID, srcPort int, dstModel kernel.ID, dstPort int) *status.Error {
	src := s.Model(srcModel)
	if src == nil {
		return status.New(status.ErrUnknownModel, "")
	}
	outs := src.Dynamics.Outputs()
	if srcPort < 0 || srcPort >= len(outs) {
		return status.New(status.ErrUnknownPort, "")
	}
	return s.fabric.Disconnect(outs[srcPort], dstModel, dstPort)
}
