// Package pheap implements the intrusive pairing heap used to schedule
// models by their next-event time (tn). It is grounded directly on the
// heap<A>/scheduller<A> pair in the originating C++ kernel
// (original_source/lib/include/irritator/core.hpp): a min-heap keyed on
// (tn, model id), where every live node is addressed by a stable 32-bit
// handle stored inside the owning model rather than by pointer.
package pheap

import (
	"math"

	"github.com/vle-forge/irritator-sub000/kernel"
)

// InvalidHandle is the reserved null handle (0xffffffff), matching the
// original implementation's sentinel.
const InvalidHandle Handle = math.MaxUint32

// Handle addresses one node in the heap. It survives Remove/Pop (the node
// becomes detached, not destroyed) and is only invalidated by Destroy.
type Handle uint32

type node struct {
	tn    kernel.Time
	id    kernel.ID
	prev  Handle
	next  Handle
	child Handle
}

// Heap is a pairing heap of (tn, model id) keyed nodes with O(1) insert and
// meld of trees within one heap and amortized O(log n) decrease-key/pop.
type Heap struct {
	nodes    []node
	freeList []Handle
	root     Handle
	size     int
}

// New constructs an empty heap with room for capacity nodes preallocated.
func New(capacity int) *Heap {
	return &Heap{
		nodes: make([]node, 0, capacity),
		root:  InvalidHandle,
	}
}

// Size returns the number of live (allocated, not destroyed) nodes,
// including detached ones.
func (h *Heap) Size() int { return h.size }

// Empty reports whether the tree has no root, i.e. no node is currently
// in-tree. Detached-but-not-destroyed nodes do not count.
func (h *Heap) Empty() bool { return h.root == InvalidHandle }

func (h *Heap) at(e Handle) *node { return &h.nodes[e] }

// Alloc allocates a new node for (tn, id) and inserts it into the tree,
// returning its handle.
func (h *Heap) Alloc(tn kernel.Time, id kernel.ID) Handle {
	var e Handle
	if n := len(h.freeList); n > 0 {
		e = h.freeList[n-1]
		h.freeList = h.freeList[:n-1]
		h.nodes[e] = node{tn: tn, id: id, prev: InvalidHandle, next: InvalidHandle, child: InvalidHandle}
	} else {
		e = Handle(len(h.nodes))
		h.nodes = append(h.nodes, node{tn: tn, id: id, prev: InvalidHandle, next: InvalidHandle, child: InvalidHandle})
	}
	h.size++
	h.Insert(e)
	return e
}

// Destroy releases elem's slot entirely; elem must not be used again.
// Callers must Remove (or Pop) elem first if it is currently in-tree.
func (h *Heap) Destroy(elem Handle) {
	h.freeList = append(h.freeList, elem)
	h.size--
}

// IsInTree reports whether elem is the root, or has any non-null link,
// which per the scheduler's invariant is exactly the in-tree condition.
func (h *Heap) IsInTree(elem Handle) bool {
	if elem == InvalidHandle {
		return false
	}
	if elem == h.root {
		return true
	}
	n := h.at(elem)
	return n.prev != InvalidHandle || n.next != InvalidHandle || n.child != InvalidHandle
}

// Tn returns the scheduled time for elem.
func (h *Heap) Tn(elem Handle) kernel.Time { return h.at(elem).tn }

// ModelID returns the model id associated with elem.
func (h *Heap) ModelID(elem Handle) kernel.ID { return h.at(elem).id }

// Top returns the handle with the smallest tn, or InvalidHandle if empty.
func (h *Heap) Top() Handle { return h.root }

// detachSubheap removes elem from its sibling list (used when elem is a
// non-root child being pulled out for a merge or removal).
func (h *Heap) detachSubheap(elem Handle) {
	n := h.at(elem)
	if n.prev != InvalidHandle {
		prev := h.at(n.prev)
		if prev.child == elem {
			prev.child = n.next
		} else {
			prev.next = n.next
		}
	}
	if n.next != InvalidHandle {
		h.at(n.next).prev = n.prev
	}
	n.prev = InvalidHandle
	n.next = InvalidHandle
}

// merge melds two root-only trees a and b (no siblings attached) and
// returns the new root.
func (h *Heap) merge(a, b Handle) Handle {
	if a == InvalidHandle {
		return b
	}
	if b == InvalidHandle {
		return a
	}
	na, nb := h.at(a), h.at(b)
	if nb.tn < na.tn {
		a, b = b, a
		na, nb = nb, na
	}
	// b becomes the leftmost child of a.
	nb.next = na.child
	if na.child != InvalidHandle {
		h.at(na.child).prev = b
	}
	nb.prev = a
	na.child = b
	return a
}

// mergePairs performs the standard two-pass pairing-heap merge over a
// sibling list rooted at the given first child handle.
func (h *Heap) mergePairs(first Handle) Handle {
	if first == InvalidHandle {
		return InvalidHandle
	}
	// Detach the sibling chain from its parent pointers; we only need next.
	var firstPass []Handle
	cur := first
	for cur != InvalidHandle {
		next := h.at(cur).next
		h.at(cur).prev = InvalidHandle
		h.at(cur).next = InvalidHandle
		firstPass = append(firstPass, cur)
		cur = next
	}

	var merged []Handle
	i := 0
	for i+1 < len(firstPass) {
		merged = append(merged, h.merge(firstPass[i], firstPass[i+1]))
		i += 2
	}
	if i < len(firstPass) {
		merged = append(merged, firstPass[i])
	}

	result := InvalidHandle
	for i := len(merged) - 1; i >= 0; i-- {
		result = h.merge(merged[i], result)
	}
	return result
}

// Insert inserts an already-allocated, detached node into the tree.
func (h *Heap) Insert(elem Handle) {
	n := h.at(elem)
	n.prev = InvalidHandle
	n.next = InvalidHandle
	h.root = h.merge(h.root, elem)
}

// Reintegrate is an alias for Insert used by callers that just popped or
// removed elem and are putting it back with a (possibly new) tn already
// stored via the Heap's node — see scheduler's Reintegrate, which also
// updates tn.
func (h *Heap) Reintegrate(tn kernel.Time, elem Handle) {
	h.at(elem).tn = tn
	h.Insert(elem)
}

// Remove takes elem out of the tree (if it is in-tree); elem remains
// allocated and can be reinserted via Insert/Reintegrate.
func (h *Heap) Remove(elem Handle) {
	if !h.IsInTree(elem) {
		return
	}
	if elem == h.root {
		h.Pop()
		return
	}
	n := h.at(elem)
	child := n.child
	h.detachSubheap(elem)
	n.child = InvalidHandle
	merged := h.mergePairs(child)
	h.root = h.merge(h.root, merged)
}

// Pop removes and returns the current root.
func (h *Heap) Pop() Handle {
	top := h.root
	if top == InvalidHandle {
		return InvalidHandle
	}
	n := h.at(top)
	child := n.child
	n.child = InvalidHandle
	h.root = h.mergePairs(child)
	return top
}

// Decrease lowers elem's tn (elem must already be in-tree with a tn
// greater than the new value) and re-melds it to the root if needed.
func (h *Heap) Decrease(tn kernel.Time, elem Handle) {
	n := h.at(elem)
	n.tn = tn
	if elem == h.root {
		return
	}
	h.detachSubheap(elem)
	h.root = h.merge(h.root, elem)
}

// Increase raises elem's tn; because a pairing heap has no efficient
// in-place increase-key, this removes and reinserts the node (still
// amortized O(log n)).
func (h *Heap) Increase(tn kernel.Time, elem Handle) {
	if elem == h.root {
		h.Pop()
		h.at(elem).tn = tn
		h.Insert(elem)
		return
	}
	n := h.at(elem)
	child := n.child
	h.detachSubheap(elem)
	n.child = InvalidHandle
	merged := h.mergePairs(child)
	h.root = h.merge(h.root, merged)

	n.tn = tn
	h.Insert(elem)
}

// Merge melds src's tree into h's tree; src is left empty. src's nodes are
// copied into h, so a handle obtained from src addresses the same node in
// h once offset by the number of nodes h held before the call.
func (h *Heap) Merge(src *Heap) {
	offset := Handle(len(h.nodes))
	shift := func(e Handle) Handle {
		if e == InvalidHandle {
			return e
		}
		return e + offset
	}
	for _, n := range src.nodes {
		n.prev, n.next, n.child = shift(n.prev), shift(n.next), shift(n.child)
		h.nodes = append(h.nodes, n)
	}
	for _, e := range src.freeList {
		h.freeList = append(h.freeList, shift(e))
	}
	h.size += src.size
	h.root = h.merge(h.root, shift(src.root))
	*src = Heap{root: InvalidHandle}
}
