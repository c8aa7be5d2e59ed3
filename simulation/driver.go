package simulation

import (
	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/port"
	"github.com/vle-forge/irritator-sub000/status"
)

// nextTn computes a model's next event time from its current time and
// time-advance, nudging strictly past t when sigma is zero so a model that
// just fired at t never reschedules itself at the same instant (spec.md
// §4.5's nextafter guard).
func nextTn(t, sigma kernel.Time) kernel.Time {
	if sigma <= 0 {
		return kernel.NextAfterZero(t)
	}
	return t + sigma
}

// Initialize runs spec.md §4.5's initialize(): prepares every mounted
// source, resets t to Limits.Begin, runs every model's Initialize, binds
// tl/tn and a heap node, then primes every observer with an initial
// sample.
func (s *Simulation) Initialize() *status.Error {
	trace("initialize", "begin", s.Limits.Begin, "end", s.Limits.End)
	if err := s.driver.Prepare(); err != nil {
		return err
	}

	s.t = s.Limits.Begin
	s.lastValid = s.Limits.Begin
	s.buffer.Reset()
	s.activeOutputs = s.activeOutputs[:0]

	var initErr *status.Error
	s.models.Iterate(func(id kernel.ID, m **Model) bool {
		mdl := *m
		if err := mdl.Dynamics.Initialize(s); err != nil {
			initErr = err
			return false
		}
		mdl.tl = s.t
		mdl.tn = nextTn(s.t, mdl.Dynamics.Sigma())
		mdl.handle = s.heap.Alloc(mdl.tn, id)
		return true
	})
	if initErr != nil {
		return initErr
	}

	s.models.Iterate(func(id kernel.ID, m **Model) bool {
		mdl := *m
		if obs := s.Observer(mdl.ObserverID); obs != nil {
			obs.Update(mdl.Dynamics.Observation(s.t, s.t-mdl.tl))
		}
		return true
	})
	trace("initialize done", "models", s.models.Len())
	return nil
}

// Run advances the simulation by one step: it pops every model tied at the
// scheduler's current top tn, runs lambda/observation/transition on each
// and reschedules it, then fans the step's output messages out to their
// targets (spec.md §4.5 run()).
//
// A popped model is only internally (or confluently) due when its own tn
// matches the step time; a model that reaches the top purely because
// fanOut's wake forced its scheduler key forward has not reached its own
// time-advance yet, so lambda and the observation sample are skipped for
// it — only transition(t,e,r) runs, exactly as an external event in the
// classical DEVS sense never produces output.
func (s *Simulation) Run() *status.Error {
	if s.heap.Empty() {
		s.t = kernel.TimeInfinity
		return nil
	}

	s.lastValid = s.t
	tn := s.heap.Tn(s.heap.Top())
	if tn > s.Limits.End {
		s.t = s.Limits.End
		return nil
	}
	s.t = tn

	var immediate []kernel.ID
	for !s.heap.Empty() && s.heap.Tn(s.heap.Top()) == tn {
		h := s.heap.Pop()
		immediate = append(immediate, s.heap.ModelID(h))
	}
	trace("scheduler pop", "tn", tn, "count", len(immediate))

	s.activeOutputs = s.activeOutputs[:0]

	for _, id := range immediate {
		mdl := s.Model(id)
		if mdl == nil {
			continue
		}

		due := mdl.tn <= s.t
		e := s.t - mdl.tl
		r := mdl.tn - s.t

		if due {
			for _, out := range mdl.Dynamics.Outputs() {
				out.ClearStaged()
			}
			if err := mdl.Dynamics.Lambda(s); err != nil {
				return err
			}
			for i, out := range mdl.Dynamics.Outputs() {
				if out.Staged() {
					s.activeOutputs = append(s.activeOutputs, activeOutput{model: id, port: i})
				}
			}
			if obs := s.Observer(mdl.ObserverID); obs != nil {
				obs.Update(mdl.Dynamics.Observation(s.t, e))
			}
		}

		if err := mdl.Dynamics.Transition(s, s.t, e, r); err != nil {
			return err
		}
		for _, in := range mdl.Dynamics.Inputs() {
			in.Reset()
		}

		mdl.tl = s.t
		mdl.tn = nextTn(s.t, mdl.Dynamics.Sigma())
		s.heap.Reintegrate(mdl.tn, mdl.handle)
	}

	s.fanOut()
	return nil
}

// fanOut runs spec.md §4.5's two sub-pass fan-out: it sizes every target
// input port's reserved capacity in the shared buffer, binds each target
// port once, copies every edge's message, and re-wakes each target so it
// becomes due at the current time.
func (s *Simulation) fanOut() {
	if len(s.activeOutputs) == 0 {
		return
	}

	type binding struct {
		model kernel.ID
		port  int
	}

	alive := func(id kernel.ID) bool { return s.Model(id) != nil }

	capacities := map[binding]int{}
	order := make([]binding, 0, len(s.activeOutputs))
	total := 0

	for _, ao := range s.activeOutputs {
		mdl := s.Model(ao.model)
		if mdl == nil {
			continue
		}
		out := mdl.Dynamics.Outputs()[ao.port]
		s.fabric.Iterate(out, alive, func(target kernel.ID, portIdx int) {
			b := binding{target, portIdx}
			if capacities[b] == 0 {
				order = append(order, b)
			}
			capacities[b]++
			total++
		})
	}
	if total == 0 {
		return
	}

	s.buffer.Grow(total)

	positions := make(map[binding]int, len(order))
	cursor := 0
	for _, b := range order {
		positions[b] = cursor
		cursor += capacities[b]

		targetModel := s.Model(b.model)
		if targetModel == nil {
			continue
		}
		inputs := targetModel.Dynamics.Inputs()
		if b.port < 0 || b.port >= len(inputs) {
			continue
		}
		inputs[b.port].Bind(s.buffer, positions[b], capacities[b])
	}

	for _, ao := range s.activeOutputs {
		mdl := s.Model(ao.model)
		if mdl == nil {
			continue
		}
		out := mdl.Dynamics.Outputs()[ao.port]
		msg := out.Msg
		s.fabric.Iterate(out, alive, func(target kernel.ID, portIdx int) {
			targetModel := s.Model(target)
			if targetModel == nil {
				return
			}
			inputs := targetModel.Dynamics.Inputs()
			if portIdx < 0 || portIdx >= len(inputs) {
				return
			}
			port.Deliver(inputs[portIdx], msg)
			s.wake(targetModel)
		})
	}
}

// wake brings mdl's scheduler key forward to the current time, the
// "re-wake" half of the fan-out pass (spec.md §4.5). It deliberately does
// not touch mdl.tn: that field stays the model's own next internally-due
// time, so Run can tell a forced-early pop (external transition only)
// apart from a pop that matches the model's own time-advance (internal or
// confluent transition, with lambda). Every node still in the scheduler
// at this point has a key strictly greater than t, so the decrease is
// always valid.
func (s *Simulation) wake(mdl *Model) {
	s.heap.Decrease(s.t, mdl.handle)
}

// Finalize flushes every observer's trailing interpolation segment, calls
// Finalize on every dynamics, then releases the external source providers.
func (s *Simulation) Finalize() *status.Error {
	trace("finalize", "t", s.t)
	var finalErr *status.Error
	s.models.Iterate(func(id kernel.ID, m **Model) bool {
		mdl := *m
		if obs := s.Observer(mdl.ObserverID); obs != nil {
			obs.Finalize()
		}
		if err := mdl.Dynamics.Finalize(s); err != nil {
			finalErr = err
			return false
		}
		return true
	})
	if finalErr != nil {
		return finalErr
	}
	return s.driver.Finalize()
}
