// Package port implements the port/connection fabric: input ports as
// lightweight views over a shared per-step message buffer, and output
// ports whose fan-out edges live in a fixed small array plus lazily
// allocated linked overflow blocks. Grounded on spec.md §3/§4.3 and the
// node/block_node/input_port types in original_source/core.hpp.
package port

import "github.com/vle-forge/irritator-sub000/kernel"

// MessageBuffer is the simulation's shared, single-step message store.
// Input ports index into it by (position, size); its contents are only
// meaningful for the step in which they were written.
type MessageBuffer struct {
	messages []kernel.Message
}

// NewMessageBuffer returns an empty buffer with room for capacity messages
// preallocated.
func NewMessageBuffer(capacity int) *MessageBuffer {
	return &MessageBuffer{messages: make([]kernel.Message, 0, capacity)}
}

// Reset empties the buffer for a new step without releasing capacity.
func (b *MessageBuffer) Reset() {
	b.messages = b.messages[:0]
}

// Grow resizes the buffer to exactly total messages (all zero-valued),
// called once per step by the fan-out sizing pass before any copy.
func (b *MessageBuffer) Grow(total int) {
	if cap(b.messages) < total {
		b.messages = make([]kernel.Message, total)
		return
	}
	b.messages = b.messages[:total]
	for i := range b.messages {
		b.messages[i] = kernel.Message{}
	}
}

// Append writes msg at the next free slot and returns its index. Callers
// (the fan-out copy pass) are responsible for keeping that index
// consistent with the target input port's (position, size) bookkeeping.
func (b *MessageBuffer) Append(msg kernel.Message) int {
	b.messages = append(b.messages, msg)
	return len(b.messages) - 1
}

// Set writes msg at an already-reserved index (used during the fan-out
// copy pass once Grow has sized the buffer).
func (b *MessageBuffer) Set(index int, msg kernel.Message) {
	b.messages[index] = msg
}

// Slice returns the sub-slice [position, position+size) of the buffer.
func (b *MessageBuffer) Slice(position, size int) []kernel.Message {
	return b.messages[position : position+size]
}

// Len returns the buffer's current length.
func (b *MessageBuffer) Len() int { return len(b.messages) }
