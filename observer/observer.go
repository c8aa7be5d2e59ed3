// Package observer implements the two-ring observation pipeline attached
// to a model: a raw ring of post-lambda observation_message snapshots and
// a linearized ring sampled at a fixed time_step, QSS-aware interpolation
// bridging the two. Grounded on spec.md §4.8.
package observer

import (
	"github.com/vle-forge/irritator-sub000/kernel"
)

// InterpolationKind selects which QSS derivative order the linearizer
// uses to extrapolate between raw samples.
type InterpolationKind uint8

const (
	InterpolationNone InterpolationKind = iota
	InterpolationQSS1
	InterpolationQSS2
	InterpolationQSS3
)

// ring is a fixed-capacity circular buffer of observation_message; once
// full, Push overwrites the oldest entry.
type ring struct {
	buf   []kernel.ObservationMessage
	head  int
	count int
}

func newRing(capacity int) ring {
	return ring{buf: make([]kernel.ObservationMessage, capacity)}
}

func (r *ring) push(msg kernel.ObservationMessage) (overwrote bool) {
	idx := (r.head + r.count) % len(r.buf)
	if r.count == len(r.buf) {
		r.head = (r.head + 1) % len(r.buf)
		overwrote = true
	} else {
		r.count++
	}
	r.buf[idx] = msg
	return overwrote
}

func (r *ring) at(i int) kernel.ObservationMessage {
	return r.buf[(r.head+i)%len(r.buf)]
}

func (r *ring) len() int { return r.count }

func (r *ring) last() (kernel.ObservationMessage, bool) {
	if r.count == 0 {
		return kernel.ObservationMessage{}, false
	}
	return r.at(r.count - 1), true
}

func (r *ring) clear() {
	r.head, r.count = 0, 0
}

// Observer captures a model's raw observation stream and, when configured
// with a TimeStep, linearizes it into a second ring sampled at fixed
// intervals, using Kind's polynomial order to interpolate between raw
// samples (spec.md §4.8).
type Observer struct {
	Kind     InterpolationKind
	TimeStep kernel.Time

	raw    ring
	linear ring

	bufferFull     bool
	dataLost       bool
	useLinearBuffer bool
}

// NewObserver constructs an observer with rawCapacity raw-ring slots and
// linearCapacity linearized-ring slots. A zero TimeStep (or linearCapacity
// of 0) disables linearization; useLinear reports whether the linearized
// ring is active.
func NewObserver(rawCapacity, linearCapacity int, kind InterpolationKind, timeStep kernel.Time) *Observer {
	o := &Observer{
		Kind:     kind,
		TimeStep: timeStep,
		raw:      newRing(rawCapacity),
	}
	if linearCapacity > 0 && timeStep > 0 {
		o.linear = newRing(linearCapacity)
		o.useLinearBuffer = true
	}
	return o
}

// BufferFull reports whether the raw ring has reached capacity at least
// once since construction or the last Clear.
func (o *Observer) BufferFull() bool { return o.bufferFull }

// DataLost reports whether an overwrite has ever discarded an unread raw
// sample. Clear preserves this flag, per spec.md §4.8.
func (o *Observer) DataLost() bool { return o.dataLost }

// UseLinearBuffer reports whether this observer was configured with a
// linearized ring.
func (o *Observer) UseLinearBuffer() bool { return o.useLinearBuffer }

// RawLen returns the number of samples currently held in the raw ring.
func (o *Observer) RawLen() int { return o.raw.len() }

// LinearLen returns the number of samples currently held in the
// linearized ring.
func (o *Observer) LinearLen() int { return o.linear.len() }

// RawAt returns the i'th raw sample, oldest first.
func (o *Observer) RawAt(i int) kernel.ObservationMessage { return o.raw.at(i) }

// LinearAt returns the i'th linearized sample, oldest first.
func (o *Observer) LinearAt(i int) kernel.ObservationMessage { return o.linear.at(i) }

// Update pushes msg into the raw ring, latching data_lost if that push
// overwrote an unconsumed sample, then flushes every full time_step
// interval that now lies strictly before msg.Time into the linearized
// ring (spec.md §4.8: "interpolates from each message up to the next
// message's timestamp, stepping by time_step").
func (o *Observer) Update(msg kernel.ObservationMessage) {
	if o.raw.push(msg) {
		o.dataLost = true
	}
	if o.raw.len() == cap(o.raw.buf) {
		o.bufferFull = true
	}
	if !o.useLinearBuffer {
		return
	}
	if o.raw.len() < 2 {
		return
	}
	prev := o.raw.at(o.raw.len() - 2)
	o.flushSegment(prev, msg.Time)
}

// flushSegment samples Interpolate at every time_step boundary in
// [from.Time, upTo), pushing each sample into the linearized ring.
func (o *Observer) flushSegment(from kernel.ObservationMessage, upTo kernel.Time) {
	if o.TimeStep <= 0 {
		return
	}
	t := from.Time
	for t < upTo {
		e := t - from.Time
		o.linear.push(kernel.ObservationMessage{
			Time:   t,
			X:      o.Interpolate(from, e),
			XPrime: from.XPrime,
			E:      e,
		})
		t += o.TimeStep
	}
}

// Interpolate extrapolates from's polynomial forward by e, truncated to
// the configured Kind's order: none holds the value flat, QSS1 applies
// the first derivative, QSS2 adds the half-curvature term. QSS3 uses the
// same quadratic as QSS2: an ObservationMessage carries no third-derivative
// term, so no cubic term is applied.
func (o *Observer) Interpolate(from kernel.ObservationMessage, e kernel.Time) float64 {
	switch o.Kind {
	case InterpolationNone:
		return from.X
	case InterpolationQSS1:
		return from.X + from.XPrime*e
	case InterpolationQSS2:
		return from.X + from.XPrime*e + from.XDoublePrime*e*e/2
	case InterpolationQSS3:
		return from.X + from.XPrime*e + from.XDoublePrime*e*e/2
	default:
		return from.X
	}
}

// Finalize flushes the trailing partial segment — from the last raw
// sample up to itself — so the linearized ring's final time_step window
// is not silently dropped (spec.md §4.8: "the last partial segment is
// flushed at finalize").
func (o *Observer) Finalize() {
	if !o.useLinearBuffer {
		return
	}
	last, ok := o.raw.last()
	if !ok {
		return
	}
	if o.raw.len() < 2 {
		o.linear.push(last)
		return
	}
	o.flushSegment(last, last.Time+o.TimeStep*0.5)
}

// Clear empties both rings but preserves data_lost, per spec.md §4.8.
func (o *Observer) Clear() {
	o.raw.clear()
	o.linear.clear()
	o.bufferFull = false
}

// Monotone reports whether the linearized ring's timestamps are
// non-decreasing, the invariant spec.md §6 property 5 requires.
func (o *Observer) Monotone() bool {
	for i := 1; i < o.linear.len(); i++ {
		if o.linear.at(i).Time < o.linear.at(i-1).Time {
			return false
		}
	}
	return true
}
