package port

import "github.com/vle-forge/irritator-sub000/kernel"

// Input is a view, not a store: (position, size, capacity) index a shared
// MessageBuffer. Its lifetime is one simulation step; the simulation driver
// resets every input port's view at the end of each step (spec.md §4.5).
type Input struct {
	buffer   *MessageBuffer
	position int
	size     int
	capacity int
}

// Bind attaches the input port to buf, with capacity reserved for this
// step's fan-out (the sizing sub-pass computes capacity before any
// message is copied).
func (p *Input) Bind(buf *MessageBuffer, position, capacity int) {
	p.buffer = buf
	p.position = position
	p.size = 0
	p.capacity = capacity
}

// Reset clears the view, called once per step after transitions run.
func (p *Input) Reset() {
	*p = Input{}
}

// push appends msg to the port's reserved slice, used only by the fan-out
// copy pass. It is the caller's responsibility to have sized capacity to
// cover every edge targeting this port.
func (p *Input) push(msg kernel.Message) {
	idx := p.position + p.size
	p.buffer.Set(idx, msg)
	p.size++
}

// Messages returns the messages delivered to this port during the current
// step, empty if none arrived.
func (p *Input) Messages() []kernel.Message {
	if p.buffer == nil || p.size == 0 {
		return nil
	}
	return p.buffer.Slice(p.position, p.size)
}

// HasMessage reports whether any message arrived on this port this step.
func (p *Input) HasMessage() bool { return p.size > 0 }

// Highest returns the highest-precedence message delivered this step,
// using kernel.Message.Less's lexicographic-max ordering over
// (value, slope, curvature), as the QSS integrators' external transition
// requires when more than one message lands on x_dot in the same step.
func (p *Input) Highest() (kernel.Message, bool) {
	msgs := p.Messages()
	if len(msgs) == 0 {
		return kernel.Message{}, false
	}
	best := msgs[0]
	for _, m := range msgs[1:] {
		if best.Less(m) {
			best = m
		}
	}
	return best, true
}

// Edge is one fan-out destination: a target model and the input port
// index on that model.
type Edge struct {
	Target kernel.ID
	Port   int
}

const edgesPerBlock = 4

// block is one node in an output port's overflow chain, holding up to
// edgesPerBlock edges plus the link to the next block.
type block struct {
	edges [edgesPerBlock]Edge
	count int
	next  kernel.ID
}

// Output is a fixed 4-wide static edge array plus a lazily-allocated
// linked list of overflow blocks, so the common small-fanout case never
// touches the block arena. It also carries the scratch message slot
// lambda writes into for this step.
type Output struct {
	edges     [edgesPerBlock]Edge
	edgeCount int
	overflow  kernel.ID

	// Msg is the scratch slot lambda stages into for the current step.
	// staged is tracked separately from the value: an all-zero message is
	// a legitimate payload (a logic gate emitting false), not "no output".
	Msg    kernel.Message
	staged bool
}

// Stage records msg as this port's output for the current step.
func (o *Output) Stage(msg kernel.Message) {
	o.Msg = msg
	o.staged = true
}

// Staged reports whether lambda staged a message on this port this step.
func (o *Output) Staged() bool { return o.staged }

// ClearStaged resets the scratch slot, called by the driver before lambda
// runs.
func (o *Output) ClearStaged() {
	o.Msg = kernel.Message{}
	o.staged = false
}

// EdgeCount returns the total number of live edges, static plus overflow.
// It is O(1) for the common case (no overflow) and otherwise walks the
// block chain, since the chain length is not separately tracked.
func (o *Output) EdgeCount(blocks *kernel.Arena[block]) int {
	n := o.edgeCount
	b := o.overflow
	for b.Valid() {
		blk := blocks.Get(b)
		if blk == nil {
			break
		}
		n += blk.count
		b = blk.next
	}
	return n
}
