package port

import (
	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/status"
)

// Fabric owns the overflow-block arena shared by every Output port in a
// simulation. Output ports themselves only store a handle into it, so
// cloning/copying a model's inline dynamics never deep-copies the fan-out
// list.
type Fabric struct {
	blocks   *kernel.Arena[block]
	maxBlocks int // 0 means unlimited
}

// NewFabric constructs a fabric whose overflow-block arena starts with
// room for capacity blocks. maxBlocks, if non-zero, bounds how many
// overflow blocks may ever be allocated, surfacing
// status.ErrConnectionContainerFull once exhausted.
func NewFabric(capacity, maxBlocks int) *Fabric {
	blocks := kernel.NewArena[block](capacity)
	// Retire slot 0's first generation so ID(0), the zero value of an
	// Output's overflow handle, never resolves to a live block.
	blocks.Free(blocks.Alloc(block{next: kernel.InvalidID}))
	return &Fabric{
		blocks:    blocks,
		maxBlocks: maxBlocks,
	}
}

func (f *Fabric) contains(out *Output, target kernel.ID, portIdx int) bool {
	for i := 0; i < out.edgeCount; i++ {
		if out.edges[i].Target == target && out.edges[i].Port == portIdx {
			return true
		}
	}
	b := out.overflow
	for b.Valid() {
		blk := f.blocks.Get(b)
		if blk == nil {
			break
		}
		for i := 0; i < blk.count; i++ {
			if blk.edges[i].Target == target && blk.edges[i].Port == portIdx {
				return true
			}
		}
		b = blk.next
	}
	return false
}

// Connect adds an edge (target, portIdx) to out's fan-out list, growing
// first in the static array, then lazily in overflow blocks.
func (f *Fabric) Connect(out *Output, target kernel.ID, portIdx int) *status.Error {
	if f.contains(out, target, portIdx) {
		return status.New(status.ErrConnectionAlreadyExists, "")
	}

	if out.edgeCount < edgesPerBlock {
		out.edges[out.edgeCount] = Edge{Target: target, Port: portIdx}
		out.edgeCount++
		return nil
	}

	// Walk the overflow chain looking for spare room in an existing block.
	var lastID kernel.ID = kernel.InvalidID
	cur := out.overflow
	for cur.Valid() {
		blk := f.blocks.Get(cur)
		if blk == nil {
			break
		}
		if blk.count < edgesPerBlock {
			blk.edges[blk.count] = Edge{Target: target, Port: portIdx}
			blk.count++
			return nil
		}
		lastID = cur
		cur = blk.next
	}

	if f.maxBlocks > 0 && f.blocks.Len() >= f.maxBlocks {
		return status.New(status.ErrConnectionContainerFull, "")
	}

	newID := f.blocks.Alloc(block{next: kernel.InvalidID})
	nb := f.blocks.Get(newID)
	nb.edges[0] = Edge{Target: target, Port: portIdx}
	nb.count = 1

	if lastID.Valid() {
		f.blocks.Get(lastID).next = newID
	} else {
		out.overflow = newID
	}
	return nil
}

// Disconnect removes the first matching edge (target, portIdx), freeing
// any overflow block left empty by the removal and compacting the chain.
func (f *Fabric) Disconnect(out *Output, target kernel.ID, portIdx int) *status.Error {
	for i := 0; i < out.edgeCount; i++ {
		if out.edges[i].Target == target && out.edges[i].Port == portIdx {
			// Compact the static array by pulling the last element in.
			out.edgeCount--
			out.edges[i] = out.edges[out.edgeCount]
			out.edges[out.edgeCount] = Edge{}
			return nil
		}
	}

	var prevID kernel.ID = kernel.InvalidID
	cur := out.overflow
	for cur.Valid() {
		blk := f.blocks.Get(cur)
		if blk == nil {
			break
		}
		for i := 0; i < blk.count; i++ {
			if blk.edges[i].Target == target && blk.edges[i].Port == portIdx {
				blk.count--
				blk.edges[i] = blk.edges[blk.count]
				blk.edges[blk.count] = Edge{}

				if blk.count == 0 {
					next := blk.next
					if prevID.Valid() {
						f.blocks.Get(prevID).next = next
					} else {
						out.overflow = next
					}
					f.blocks.Free(cur)
				}
				return nil
			}
		}
		prevID = cur
		cur = blk.next
	}

	return status.New(status.ErrUnknownPort, "no matching edge to disconnect")
}

// Iterate yields each (target, portIdx) edge of out exactly once. alive
// reports whether a target model id is still live; stale edges are swept
// (disconnected) as they are observed, so a subsequent Iterate never sees
// them again.
func (f *Fabric) Iterate(out *Output, alive func(kernel.ID) bool, fn func(target kernel.ID, portIdx int)) {
	i := 0
	for i < out.edgeCount {
		e := out.edges[i]
		if !alive(e.Target) {
			out.edgeCount--
			out.edges[i] = out.edges[out.edgeCount]
			out.edges[out.edgeCount] = Edge{}
			continue
		}
		fn(e.Target, e.Port)
		i++
	}

	var prevID kernel.ID = kernel.InvalidID
	cur := out.overflow
	for cur.Valid() {
		blk := f.blocks.Get(cur)
		if blk == nil {
			break
		}
		j := 0
		for j < blk.count {
			e := blk.edges[j]
			if !alive(e.Target) {
				blk.count--
				blk.edges[j] = blk.edges[blk.count]
				blk.edges[blk.count] = Edge{}
				continue
			}
			fn(e.Target, e.Port)
			j++
		}

		next := blk.next
		if blk.count == 0 {
			if prevID.Valid() {
				f.blocks.Get(prevID).next = next
			} else {
				out.overflow = next
			}
			f.blocks.Free(cur)
			cur = next
			continue
		}
		prevID = cur
		cur = next
	}
}

// Deliver copies msg into dst's reserved slot (the fan-out copy sub-pass).
func Deliver(dst *Input, msg kernel.Message) {
	dst.push(msg)
}
